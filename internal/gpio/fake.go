package gpio

import (
	"sync"
	"time"
)

// Write records one Set call on a FakeOutputs.
type Write struct {
	Line  Line
	Value int
	At    time.Time
}

// FakeOutputs is a test double that records every level change.
// Safe for concurrent use: sequences run on their own goroutine.
type FakeOutputs struct {
	mu sync.Mutex

	// Now stamps each write; defaults to time.Now.
	Now func() time.Time

	writes []Write
	levels map[Line]int

	// SetError, if set, will be returned by Set.
	SetError error

	closed bool
}

// NewFakeOutputs creates a FakeOutputs with both lines at their idle levels.
func NewFakeOutputs() *FakeOutputs {
	return &FakeOutputs{
		Now: time.Now,
		levels: map[Line]int{
			LineRestart: LineRestart.Idle(),
			LineDrive:   LineDrive.Idle(),
		},
	}
}

// Set records the write and updates the line level.
func (f *FakeOutputs) Set(line Line, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.writes = append(f.writes, Write{Line: line, Value: value, At: f.Now()})
	f.levels[line] = value
	return nil
}

// Close marks the outputs as closed and restores idle levels.
func (f *FakeOutputs) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[LineRestart] = LineRestart.Idle()
	f.levels[LineDrive] = LineDrive.Idle()
	f.closed = true
	return nil
}

// Writes returns a copy of all recorded writes.
func (f *FakeOutputs) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// Level returns the current level of line.
func (f *FakeOutputs) Level(line Line) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[line]
}

// Closed reports whether Close was called.
func (f *FakeOutputs) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
