package obs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.IncRowParsed()
	m.IncRowParsed()
	m.IncRowSkipped()
	m.IncEvent()
	m.IncMatch()
	m.IncReject()
	m.IncRecord()

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RowsParsed)
	assert.Equal(t, uint64(1), snap.RowsSkipped)
	assert.Equal(t, uint64(1), snap.Events)
	assert.Equal(t, uint64(1), snap.Matches)
	assert.Equal(t, uint64(1), snap.Rejects)
	assert.Equal(t, uint64(1), snap.Records)
}

func TestMetricsInputDepthHighWater(t *testing.T) {
	m := NewMetrics()
	m.ObserveInputDepth(3)
	m.ObserveInputDepth(9)
	m.ObserveInputDepth(5)
	m.ObserveInputDepth(-1)
	assert.Equal(t, uint64(9), m.Snapshot().InputDepthHighWater)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.IncRowParsed()
	m.IncEvent()
	m.ObserveRead(time.Second)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLatencyStats(t *testing.T) {
	var l LatencyStats
	l.Observe(2 * time.Millisecond)
	l.Observe(4 * time.Millisecond)
	l.Observe(6 * time.Millisecond)

	snap := l.Snapshot()
	assert.Equal(t, uint64(3), snap.Count)
	assert.Equal(t, 2*time.Millisecond, snap.Min)
	assert.Equal(t, 6*time.Millisecond, snap.Max)
	assert.Equal(t, 4*time.Millisecond, snap.Avg)
}

func TestLatencyStatsEmpty(t *testing.T) {
	var l LatencyStats
	assert.Equal(t, LatencySnapshot{}, l.Snapshot())
}

func TestParseLogLevel(t *testing.T) {
	for raw, want := range map[string]LogLevel{
		"debug": LogLevelDebug, "INFO": LogLevelInfo, "warn": LogLevelWarn,
		"warning": LogLevelWarn, "Error": LogLevelError, "": LogLevelInfo,
	} {
		got, err := ParseLogLevel(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseLogLevel("verbose")
	assert.ErrorIs(t, err, ErrUnknownLogLevel)
}
