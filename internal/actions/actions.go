// Package actions runs the timed output sequences of the base station:
// the drive-toward-charger pulse and the host board power-cycle.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/dock-sensor/internal/gpio"
)

// Action names a triggerable sequence.
type Action string

const (
	ActionGoToCharger Action = "go_to_charger"
	ActionRestart     Action = "restart"
)

// Pulse widths. Downstream hardware depends on these exact durations.
const (
	DrivePulse = 250 * time.Millisecond

	RestartHigh1 = 4000 * time.Millisecond
	RestartLow1  = 5000 * time.Millisecond
	RestartHigh2 = 2000 * time.Millisecond
	RestartLow2  = 15000 * time.Millisecond
)

// ErrBusy is returned when a sequence is requested while another is running.
var ErrBusy = errors.New("actions: sequence already running")

// ErrUnknownAction is returned for action names that are not defined.
var ErrUnknownAction = errors.New("actions: unknown action")

// Step is one level change followed by a hold.
type Step struct {
	Line  gpio.Line
	Value int
	Hold  time.Duration
}

// GoToChargerSteps asserts the drive line low for DrivePulse, then restores it.
func GoToChargerSteps() []Step {
	return []Step{
		{Line: gpio.LineDrive, Value: 0, Hold: DrivePulse},
		{Line: gpio.LineDrive, Value: 1},
	}
}

// RestartSteps power-cycles the host board and finishes with a drive pulse.
func RestartSteps() []Step {
	steps := []Step{
		{Line: gpio.LineRestart, Value: 1, Hold: RestartHigh1},
		{Line: gpio.LineRestart, Value: 0, Hold: RestartLow1},
		{Line: gpio.LineRestart, Value: 1, Hold: RestartHigh2},
		{Line: gpio.LineRestart, Value: 0, Hold: RestartLow2},
	}
	return append(steps, GoToChargerSteps()...)
}

// Steps returns the sequence for an action.
func Steps(a Action) ([]Step, error) {
	switch a {
	case ActionGoToCharger:
		return GoToChargerSteps(), nil
	case ActionRestart:
		return RestartSteps(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Sequencer runs at most one sequence at a time on a set of outputs.
type Sequencer struct {
	out   gpio.Outputs
	sleep SleepFunc
	mu    sync.Mutex
	wg    sync.WaitGroup
}

// NewSequencer creates a Sequencer. A nil sleep uses Sleep.
func NewSequencer(out gpio.Outputs, sleep SleepFunc) *Sequencer {
	if sleep == nil {
		sleep = Sleep
	}
	return &Sequencer{out: out, sleep: sleep}
}

// Run executes the sequence for a and blocks until it finishes.
// It returns ErrBusy without touching the outputs if another sequence holds
// the lines.
func (s *Sequencer) Run(ctx context.Context, a Action) error {
	steps, err := Steps(a)
	if err != nil {
		return err
	}
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()
	return s.run(ctx, a, steps)
}

// Start begins the sequence for a on its own goroutine and returns a channel
// that receives the result. Busy and unknown-action errors are returned
// immediately.
func (s *Sequencer) Start(ctx context.Context, a Action) (<-chan error, error) {
	steps, err := Steps(a)
	if err != nil {
		return nil, err
	}
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}

	done := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.mu.Unlock()
		done <- s.run(ctx, a, steps)
	}()
	return done, nil
}

// Wait blocks until every sequence begun with Start has returned, including
// any restore of idle levels after cancellation.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

func (s *Sequencer) run(ctx context.Context, a Action, steps []Step) error {
	log.Printf("action: %s started", a)
	for i, st := range steps {
		if err := s.out.Set(st.Line, st.Value); err != nil {
			s.restoreIdle()
			return fmt.Errorf("%s step %d: %w", a, i, err)
		}
		if st.Hold <= 0 {
			continue
		}
		if err := s.sleep(ctx, st.Hold); err != nil {
			s.restoreIdle()
			return fmt.Errorf("%s step %d: %w", a, i, err)
		}
	}
	log.Printf("action: %s finished", a)
	return nil
}

// restoreIdle puts both lines back at rest after an interrupted sequence.
func (s *Sequencer) restoreIdle() {
	for _, line := range []gpio.Line{gpio.LineRestart, gpio.LineDrive} {
		if err := s.out.Set(line, line.Idle()); err != nil {
			log.Printf("action: restore %s idle: %v", line, err)
		}
	}
}
