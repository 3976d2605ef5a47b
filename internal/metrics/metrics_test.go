package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/sweeney/dock-sensor/internal/logic"
)

func TestObserveCycleSetsGauges(t *testing.T) {
	before := testutil.ToFloat64(CyclesTotal)

	ObserveCycle(
		logic.Sample{A3: 100, A2: 2500, A1: 400, A0: 4095},
		logic.Flags{WiFi: true, Shutdown: true},
		nil,
	)

	assert.Equal(t, before+1, testutil.ToFloat64(CyclesTotal))
	assert.Equal(t, float64(100), testutil.ToFloat64(LineRaw.WithLabelValues("a3")))
	assert.Equal(t, float64(2500), testutil.ToFloat64(LineRaw.WithLabelValues("a2")))
	assert.Equal(t, float64(400), testutil.ToFloat64(LineRaw.WithLabelValues("a1")))
	assert.Equal(t, float64(4095), testutil.ToFloat64(LineRaw.WithLabelValues("a0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Flag.WithLabelValues("wifi")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Flag.WithLabelValues("shutdown")))
	assert.Equal(t, float64(0), testutil.ToFloat64(Flag.WithLabelValues("searching")))
	assert.Equal(t, float64(0), testutil.ToFloat64(Flag.WithLabelValues("charging")))
}

func TestObserveCycleCountsEvents(t *testing.T) {
	c := EventsTotal.WithLabelValues(string(logic.EventChargingStart))
	before := testutil.ToFloat64(c)

	ObserveCycle(logic.Sample{}, logic.Flags{Charging: true}, []logic.Event{
		{Type: logic.EventChargingStart},
	})

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestObserveAction(t *testing.T) {
	ok := ActionsTotal.WithLabelValues("restart", "ok")
	failed := ActionsTotal.WithLabelValues("restart", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ObserveAction("restart", nil)
	ObserveAction("restart", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestCounterIncrementNoPanic(t *testing.T) {
	assert.NotPanics(t, func() { ReadErrorsTotal.Inc() })
	assert.NotPanics(t, func() { PublishErrorsTotal.WithLabelValues("mqtt").Inc() })
	assert.NotPanics(t, func() { PublishErrorsTotal.WithLabelValues("redis").Inc() })
}
