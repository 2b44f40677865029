// Package scan drives full pan-tilt scan routines: moving the camera
// through a route of preset positions, capturing and finalizing frames at
// each stop, and handing the artifacts to an uploader.
package scan

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// directionPresets maps compass-direction mnemonics to preset numbers on
// the first quadrant plane. Each compass point has four elevations:
// S(ky), H(orizon), B(elow horizon), G(round).
var directionPresets = map[string]int{
	"SS": 1, "SH": 2, "SBH": 3, "SG": 4,
	"SWS": 5, "SWH": 6, "SWB": 7, "SWG": 8,
	"WS": 9, "WH": 10, "WB": 11, "WG": 12,
	"NWS": 13, "NWH": 14, "NWB": 15, "NWG": 16,
	"NS": 17, "NH": 18, "NB": 19, "NG": 20,
	"NES": 21, "NEH": 22, "NEB": 23, "NEG": 24,
	"ES": 25, "EH": 26, "EB": 27, "EG": 28,
	"SES": 29, "SEH": 30, "SEB": 31, "SEG": 32,
}

// DirectionPresets converts comma-separated compass-direction mnemonics to
// preset numbers relative to the quadrant plane of the starting preset.
func DirectionPresets(start int, directions string) ([]int, error) {
	plane := ((start - 1) / 4) * 4
	var presets []int
	for _, mnemonic := range strings.Split(directions, ",") {
		mnemonic = strings.ToUpper(strings.TrimSpace(mnemonic))
		base, ok := directionPresets[mnemonic]
		if !ok {
			return nil, errors.Errorf("unknown direction %q", mnemonic)
		}
		presets = append(presets, (plane+base)%33)
	}
	return presets, nil
}

// ParseInts parses a comma-separated list of integers, the route format
// used on the command line.
func ParseInts(s string) ([]int, error) {
	var values []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Errorf("invalid integer list %q: %q is not an integer", s, part)
		}
		values = append(values, v)
	}
	return values, nil
}
