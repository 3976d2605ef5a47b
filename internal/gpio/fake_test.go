package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestNewFakeOutputsIdleLevels(t *testing.T) {
	f := NewFakeOutputs()
	if f.Level(LineRestart) != 0 {
		t.Errorf("restart: expected idle 0, got %d", f.Level(LineRestart))
	}
	if f.Level(LineDrive) != 1 {
		t.Errorf("drive: expected idle 1, got %d", f.Level(LineDrive))
	}
	if len(f.Writes()) != 0 {
		t.Errorf("expected no writes, got %d", len(f.Writes()))
	}
}

func TestFakeOutputsRecordsWrites(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFakeOutputs()
	f.Now = func() time.Time { return at }

	if err := f.Set(LineDrive, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(LineDrive, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writes := f.Writes()
	if len(writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(writes))
	}
	if writes[0] != (Write{Line: LineDrive, Value: 0, At: at}) {
		t.Errorf("write 0: got %+v", writes[0])
	}
	if f.Level(LineDrive) != 1 {
		t.Errorf("drive level: got %d, want 1", f.Level(LineDrive))
	}
}

func TestFakeOutputsError(t *testing.T) {
	f := NewFakeOutputs()
	f.SetError = errors.New("line busy")

	if err := f.Set(LineRestart, 1); err == nil {
		t.Error("expected error")
	}
	if len(f.Writes()) != 0 {
		t.Error("failed writes should not be recorded")
	}
}

func TestFakeOutputsCloseRestoresIdle(t *testing.T) {
	f := NewFakeOutputs()
	f.Set(LineRestart, 1)
	f.Set(LineDrive, 0)

	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed() {
		t.Error("should be closed after Close()")
	}
	if f.Level(LineRestart) != 0 || f.Level(LineDrive) != 1 {
		t.Errorf("expected idle levels after close, got restart=%d drive=%d", f.Level(LineRestart), f.Level(LineDrive))
	}
}

func TestLineString(t *testing.T) {
	if LineRestart.String() != "restart" {
		t.Errorf("got %q", LineRestart.String())
	}
	if LineDrive.String() != "drive" {
		t.Errorf("got %q", LineDrive.String())
	}
	if Line(7).String() != "line(7)" {
		t.Errorf("got %q", Line(7).String())
	}
}
