package adc

import (
	"errors"
	"testing"

	"github.com/sweeney/dock-sensor/internal/logic"
)

func TestFakeReaderRead(t *testing.T) {
	samples := []logic.Sample{
		{A3: 100, A2: 2500, A1: 400, A0: 400},
		{A3: 3000, A2: 100, A1: 50, A0: 2500},
		{A3: 1000, A2: 1000, A1: 1000, A0: 1000},
	}

	f := NewFakeReader(samples)

	for i, want := range samples {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %+v, got %+v", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != samples[2] {
		t.Errorf("repeat: expected %+v, got %+v", samples[2], got)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]logic.Sample{{A3: 1}})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]logic.Sample{{A3: 1}})

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	samples := []logic.Sample{{A3: 1}, {A3: 2}}

	f := NewFakeReader(samples)
	f.Read()
	f.Reset()

	got, _ := f.Read()
	if got.A3 != 1 {
		t.Errorf("after reset: expected A3=1, got %d", got.A3)
	}
}
