package mobotix

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

// fakeSender records wire commands and can be told to fail particular calls.
type fakeSender struct {
	mu    sync.Mutex
	sent  []Command
	fails map[int]error
}

func (f *fakeSender) Send(ctx context.Context, cmd Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.sent)
	f.sent = append(f.sent, cmd)
	if err := f.fails[call]; err != nil {
		return "", err
	}
	return "OK", nil
}

func (f *fakeSender) commands() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command{}, f.sent...)
}

func TestMoveToPreset(t *testing.T) {
	sender := &fakeSender{}
	controller := NewPTController(sender, golog.NewTestLogger(t))

	ack, err := controller.MoveToPreset(context.Background(), 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ack, test.ShouldEqual, "OK")
	test.That(t, sender.commands(), test.ShouldResemble, []Command{"%FF%01%00%07%00%03%0B"})
}

func TestMoveToPresetNotFound(t *testing.T) {
	sender := &fakeSender{}
	controller := NewPTController(sender, golog.NewTestLogger(t))

	_, err := controller.MoveToPreset(context.Background(), 33)
	test.That(t, errors.Is(err, ErrCommandNotFound), test.ShouldBeTrue)
	test.That(t, sender.commands(), test.ShouldHaveLength, 0)
}

func TestMove(t *testing.T) {
	sender := &fakeSender{}
	controller := newPTController(sender, clock.New(), golog.NewTestLogger(t))

	start := time.Now()
	err := controller.Move(context.Background(), DirectionRight, 2, 30*time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, time.Since(start), test.ShouldBeGreaterThanOrEqualTo, 30*time.Millisecond)
	test.That(t, sender.commands(), test.ShouldResemble, []Command{
		"%FF%01%00%02%0F%00%12",
		StopCommand,
	})
}

func TestMoveNotFound(t *testing.T) {
	sender := &fakeSender{}
	controller := NewPTController(sender, golog.NewTestLogger(t))

	err := controller.Move(context.Background(), Direction("sideways"), 1, time.Millisecond)
	test.That(t, errors.Is(err, ErrCommandNotFound), test.ShouldBeTrue)
	err = controller.Move(context.Background(), DirectionUp, 9, time.Millisecond)
	test.That(t, errors.Is(err, ErrCommandNotFound), test.ShouldBeTrue)
	// a bad direction or speed must not reach the transport at all
	test.That(t, sender.commands(), test.ShouldHaveLength, 0)
}

func TestMoveStopsAfterFailedMove(t *testing.T) {
	moveErr := errors.New("transport down")
	sender := &fakeSender{fails: map[int]error{0: moveErr}}
	controller := newPTController(sender, clock.New(), golog.NewTestLogger(t))

	err := controller.Move(context.Background(), DirectionLeft, 1, time.Millisecond)
	test.That(t, errors.Is(err, moveErr), test.ShouldBeTrue)
	// the stop command still goes out after the failed move
	test.That(t, sender.commands(), test.ShouldResemble, []Command{
		"%FF%01%00%04%01%00%06",
		StopCommand,
	})
}

func TestStopAndRemoteReset(t *testing.T) {
	sender := &fakeSender{}
	controller := NewPTController(sender, golog.NewTestLogger(t))

	_, err := controller.Stop(context.Background())
	test.That(t, err, test.ShouldBeNil)
	_, err = controller.RemoteReset(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sender.commands(), test.ShouldResemble, []Command{StopCommand, ResetCommand})
}
