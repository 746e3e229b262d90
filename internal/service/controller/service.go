package controller

import (
	"context"
	"sync"
	"time"

	alarm "github.com/AlbertDoesNothing/Myriad/internal/domain/alarm"
	"github.com/AlbertDoesNothing/Myriad/internal/logger"
)

// commandQueueSize bounds commands injected between loop iterations.
const commandQueueSize = 8

// poller yields pending command bytes without blocking.
type poller interface {
	Poll() (byte, bool)
}

// service owns the state machine and runs the cooperative control loop.
// The loop goroutine is the only writer; snapshot reads from other
// goroutines go through the mutex.
type service struct {
	// machine is the alarm state machine driven by the loop.
	machine *alarm.Machine
	// commands carries bytes injected by the status surface.
	commands chan byte
	// poll is the yield between loop iterations.
	poll time.Duration
	// mu protects machine access between the loop and snapshot readers.
	mu sync.Mutex
}

// newService wraps the machine for the control loop and the status surface.
func newService(machine *alarm.Machine, poll time.Duration) *service {
	return &service{
		machine:  machine,
		commands: make(chan byte, commandQueueSize),
		poll:     poll,
	}
}

// Command queues one injected command byte for the next loop iterations.
// It reports false when the queue is full.
func (s *service) Command(b byte) bool {
	select {
	case s.commands <- b:
		return true
	default:
		return false
	}
}

// Snapshot returns the current machine state.
func (s *service) Snapshot() alarm.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.Snapshot()
}

// loop runs the controller until the context is cancelled. Each iteration
// consumes at most one command byte (serial link first, injected commands
// second), advances the machine once, and yields. Pattern timing never comes
// from the yield: the machine keys every transition off elapsed-time checks,
// so the loop only has to come around faster than the shortest interval.
func (s *service) loop(ctx context.Context, serial poller) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Leave the hardware quiet before releasing it.
			s.mu.Lock()
			s.machine.HandleCommand(alarm.CommandDeactivate)
			s.mu.Unlock()

			logger.Info(ctx, "Control loop stopped")

			return nil
		case <-ticker.C:
		}

		b, ok := byte(0), false
		if serial != nil {
			b, ok = serial.Poll()
		}

		if !ok {
			select {
			case b = <-s.commands:
				ok = true
			default:
			}
		}

		s.mu.Lock()

		if ok {
			wasActive := s.machine.Active()
			s.machine.HandleCommand(b)

			switch {
			case b == alarm.CommandActivate && !wasActive:
				logger.Info(ctx, "Alarm activated")
			case b == alarm.CommandDeactivate && wasActive:
				logger.Info(ctx, "Alarm deactivated")
			case b != alarm.CommandActivate && b != alarm.CommandDeactivate:
				logger.DebugKV(ctx, "Ignoring unknown command byte", "byte", b)
			}
		}

		s.machine.Tick()
		s.mu.Unlock()
	}
}
