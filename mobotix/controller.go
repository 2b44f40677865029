package mobotix

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.uber.org/multierr"
)

// PTController sequences motion commands for the pan-tilt head. It keeps no
// motion state of its own; only commands issued are modeled, never the
// head's physical position.
type PTController struct {
	sender Sender
	clock  clock.Clock
	logger golog.Logger
}

// NewPTController returns a controller issuing commands through sender.
func NewPTController(sender Sender, logger golog.Logger) *PTController {
	return newPTController(sender, clock.New(), logger)
}

func newPTController(sender Sender, clk clock.Clock, logger golog.Logger) *PTController {
	return &PTController{sender: sender, clock: clk, logger: logger}
}

// MoveToPreset recalls the stored position id, returning the device
// acknowledgement.
func (c *PTController) MoveToPreset(ctx context.Context, id int) (string, error) {
	cmd, err := PresetCommand(id)
	if err != nil {
		return "", err
	}
	return c.sender.Send(ctx, cmd)
}

// Move starts a continuous move in the given direction at speed level 1-5,
// blocks the calling goroutine for duration, then stops. The stop command is
// issued even when the move command fails: a head left moving after a
// partial failure is worse than a redundant stop.
func (c *PTController) Move(ctx context.Context, direction Direction, speed int, duration time.Duration) error {
	cmd, err := SpeedCommand(direction, speed)
	if err != nil {
		return err
	}
	_, moveErr := c.sender.Send(ctx, cmd)
	if moveErr != nil {
		c.logger.Warnw("move command failed, still issuing stop",
			"direction", direction, "speed", speed, "error", moveErr)
	}
	select {
	case <-ctx.Done():
	case <-c.clock.After(duration):
	}
	_, stopErr := c.sender.Send(ctx, StopCommand)
	if stopErr != nil && ctx.Err() != nil {
		// ctx may have been canceled mid-move; the head must still be halted.
		_, stopErr = c.sender.Send(context.Background(), StopCommand)
	}
	return multierr.Combine(moveErr, stopErr)
}

// Stop halts any in-progress movement.
func (c *PTController) Stop(ctx context.Context) (string, error) {
	return c.sender.Send(ctx, StopCommand)
}

// RemoteReset moves the head back to its home position.
func (c *PTController) RemoteReset(ctx context.Context) (string, error) {
	return c.sender.Send(ctx, ResetCommand)
}
