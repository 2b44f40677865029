// Package mobotix controls a Mobotix pan-tilt camera head over its HTTP
// serial-bridge control channel.
package mobotix

import (
	"github.com/pkg/errors"
)

// Command is a wire-format command understood by the camera's RS-232 control
// bridge, already URL-encoded for the control channel. The byte values are
// fixed by the pan-tilt unit firmware and must be reproduced exactly.
type Command string

// Direction of a continuous pan or tilt movement.
type Direction string

// The four movement directions the pan-tilt unit understands.
const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

const (
	// StopCommand halts any in-progress movement.
	StopCommand Command = "%FF%01%00%00%00%00%01"
	// ResetCommand moves the head back to its home position.
	ResetCommand Command = "%FF%01%00%0F%00%00%10"
)

// ErrCommandNotFound is returned when a preset, direction, or speed falls
// outside the unit's fixed command tables. It indicates a caller error; no
// command was sent to the camera.
var ErrCommandNotFound = errors.New("no command for the requested preset or movement")

var presetCommands = map[int]Command{
	1:  "%FF%01%00%07%00%01%09",
	2:  "%FF%01%00%07%00%02%0A",
	3:  "%FF%01%00%07%00%03%0B",
	4:  "%FF%01%00%07%00%04%0C",
	5:  "%FF%01%00%07%00%05%0D",
	6:  "%FF%01%00%07%00%06%0E",
	7:  "%FF%01%00%07%00%07%0F",
	8:  "%FF%01%00%07%00%08%10",
	9:  "%FF%01%00%07%00%09%11",
	10: "%FF%01%00%07%00%10%18",
	11: "%FF%01%00%07%00%11%19",
	12: "%FF%01%00%07%00%12%1A",
	13: "%FF%01%00%07%00%13%1B",
	14: "%FF%01%00%07%00%14%1C",
	15: "%FF%01%00%07%00%15%1D",
	16: "%FF%01%00%07%00%16%1E",
	17: "%FF%01%00%07%00%17%1F",
	18: "%FF%01%00%07%00%18%20",
	19: "%FF%01%00%07%00%19%21",
	20: "%FF%01%00%07%00%20%28",
	21: "%FF%01%00%07%00%21%29",
	22: "%FF%01%00%07%00%22%2A",
	23: "%FF%01%00%07%00%23%2B",
	24: "%FF%01%00%07%00%24%2C",
	25: "%FF%01%00%07%00%25%2D",
	26: "%FF%01%00%07%00%26%2E",
	27: "%FF%01%00%07%00%27%2F",
	28: "%FF%01%00%07%00%28%30",
	29: "%FF%01%00%07%00%29%31",
	30: "%FF%01%00%07%00%30%38",
	31: "%FF%01%00%07%00%31%39",
	32: "%FF%01%00%07%00%32%3A",
}

var speedCommands = map[Direction]map[int]Command{
	DirectionRight: {
		1: "%FF%01%00%02%01%00%04",
		2: "%FF%01%00%02%0F%00%12",
		3: "%FF%01%00%02%1F%00%22",
		4: "%FF%01%00%02%2F%00%32",
		5: "%FF%01%00%02%FF%00%02",
	},
	DirectionLeft: {
		1: "%FF%01%00%04%01%00%06",
		2: "%FF%01%00%04%0F%00%14",
		3: "%FF%01%00%04%1F%00%24",
		4: "%FF%01%00%04%2F%00%34",
		5: "%FF%01%00%04%FF%00%04",
	},
	DirectionUp: {
		1: "%FF%01%00%08%00%01%0A",
		2: "%FF%01%00%08%00%0F%18",
		3: "%FF%01%00%08%00%1F%28",
		4: "%FF%01%00%08%00%2F%38",
		5: "%FF%01%00%08%00%FF%08",
	},
	DirectionDown: {
		1: "%FF%01%00%10%00%01%12",
		2: "%FF%01%00%10%00%0F%20",
		3: "%FF%01%00%10%00%1F%30",
		4: "%FF%01%00%10%00%2F%40",
		5: "%FF%01%00%10%00%FF%10",
	},
}

// NumPresets is how many stored positions the pan-tilt unit can recall.
const NumPresets = 32

// PresetCommand returns the wire command recalling stored position id (1-32).
func PresetCommand(id int) (Command, error) {
	cmd, ok := presetCommands[id]
	if !ok {
		return "", errors.Wrapf(ErrCommandNotFound, "preset %d", id)
	}
	return cmd, nil
}

// SpeedCommand returns the wire command starting a continuous move in the
// given direction at speed level 1-5.
func SpeedCommand(direction Direction, speed int) (Command, error) {
	table, ok := speedCommands[direction]
	if !ok {
		return "", errors.Wrapf(ErrCommandNotFound, "direction %q", direction)
	}
	cmd, ok := table[speed]
	if !ok {
		return "", errors.Wrapf(ErrCommandNotFound, "direction %q speed %d", direction, speed)
	}
	return cmd, nil
}
