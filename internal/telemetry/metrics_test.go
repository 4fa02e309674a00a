package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_CountersStartAtZero(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Dispatched))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Completed))
}

func TestNewMetrics_IndependentRegistriesDontCollide(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.Dispatched.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Dispatched))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Dispatched))
}
