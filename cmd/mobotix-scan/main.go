// Package main contains a command to scan a Mobotix pan-tilt camera through
// a route of preset positions, capturing frames and converting them at each
// stop.
package main

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/waggle-sensor/mobotixscan/capture"
	"github.com/waggle-sensor/mobotixscan/mobotix"
	"github.com/waggle-sensor/mobotixscan/scan"
)

var logger = golog.NewDevelopmentLogger("mobotix-scan")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// defaultRoute sweeps every preset column by column.
const defaultRoute = "1,5,9,13,17,21,25,29,2,6,10,14,18,22,26,30,3,7,11,15,19,23,27,31,4,8,12,16,20,24,28"

// Arguments for the command.
type Arguments struct {
	Host          string `flag:"ip,required,usage=camera IP or URL"`
	User          string `flag:"user,default=admin,usage=camera user ID"`
	Password      string `flag:"password,required,usage=camera password"`
	WorkDir       string `flag:"workdir,default=/data,usage=working directory for captured frames"`
	Frames        int    `flag:"frames,default=1,usage=frames to capture per attempt"`
	Presets       string `flag:"preset,usage=comma-separated preset route (0 = capture without moving; default sweeps all 32)"`
	Directions    string `flag:"directions,usage=compass-direction route overriding -preset (e.g. NS,EH,SWG)"`
	StartPreset   int    `flag:"start-preset,default=1,usage=starting preset anchoring a compass-direction route"`
	Loops         int    `flag:"loops,default=-1,usage=scan loops to perform (negative = forever)"`
	LoopSleep     int    `flag:"loopsleep,default=300,usage=seconds to sleep between full scans"`
	CameraTimeout int    `flag:"camera-timeout,default=30,usage=seconds allowed per capture attempt"`
	Mode          string `flag:"mode,default=presets,usage=scan mode (presets or custom)"`
	Direction     string `flag:"direction,default=right,usage=movement direction for custom scans"`
	Speeds        string `flag:"speed,default=1,usage=comma-separated per-preset movement speeds (custom mode)"`
	Durations     string `flag:"duration,default=1000,usage=comma-separated per-preset movement durations in ms (custom mode)"`
	Shots         string `flag:"shots,default=1,usage=comma-separated per-preset image counts (custom mode)"`
	Archive       string `flag:"archive,usage=archive directory to copy finalized artifacts into"`
	CaptureBinary string `flag:"capture-binary,usage=path of the camera capture interface"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	presets, err := parseRoute(argsParsed)
	if err != nil {
		return err
	}

	transport, err := mobotix.NewTransport(mobotix.TransportConfig{
		Host:     argsParsed.Host,
		User:     argsParsed.User,
		Password: argsParsed.Password,
	}, logger)
	if err != nil {
		return err
	}
	controller := mobotix.NewPTController(transport, logger)

	imager, err := capture.NewImager(capture.Config{
		Host:     argsParsed.Host,
		User:     argsParsed.User,
		Password: argsParsed.Password,
		Frames:   argsParsed.Frames,
		Binary:   argsParsed.CaptureBinary,
	}, logger)
	if err != nil {
		return err
	}
	converter, err := capture.NewFFmpegConverter()
	if err != nil {
		return err
	}
	finalizer := capture.NewFinalizer(converter, logger)

	var uploader scan.Uploader
	if argsParsed.Archive != "" {
		uploader = scan.ArchiveUploader{Dir: argsParsed.Archive}
	} else {
		uploader = scan.NopUploader{Logger: logger}
	}

	cfg := scan.Config{
		WorkDir:        argsParsed.WorkDir,
		Presets:        presets,
		Loops:          argsParsed.Loops,
		LoopSleep:      time.Duration(argsParsed.LoopSleep) * time.Second,
		CaptureTimeout: time.Duration(argsParsed.CameraTimeout) * time.Second,
	}

	switch argsParsed.Mode {
	case "presets":
	case "custom":
		speeds, err := scan.ParseInts(argsParsed.Speeds)
		if err != nil {
			return err
		}
		durationsMs, err := scan.ParseInts(argsParsed.Durations)
		if err != nil {
			return err
		}
		shots, err := scan.ParseInts(argsParsed.Shots)
		if err != nil {
			return err
		}
		durations := make([]time.Duration, 0, len(durationsMs))
		for _, ms := range durationsMs {
			durations = append(durations, time.Duration(ms)*time.Millisecond)
		}
		cfg.Direction = mobotix.Direction(argsParsed.Direction)
		cfg.Speeds = speeds
		cfg.Durations = durations
		cfg.Shots = shots
	default:
		return errors.Errorf("unknown scan mode %q", argsParsed.Mode)
	}

	scanner, err := scan.NewScanner(cfg, controller, imager, finalizer, uploader, logger)
	if err != nil {
		return err
	}

	if argsParsed.Mode == "custom" {
		return scanner.ScanCustom(ctx)
	}
	return scanner.ScanPresets(ctx)
}

func parseRoute(args Arguments) ([]int, error) {
	if args.Directions != "" {
		return scan.DirectionPresets(args.StartPreset, args.Directions)
	}
	if args.Presets == "" {
		return scan.ParseInts(defaultRoute)
	}
	return scan.ParseInts(args.Presets)
}
