package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats for one engine run.
// All methods are nil-safe so call sites never have to guard.
type Metrics struct {
	rowsParsed  uint64
	rowsSkipped uint64
	events      uint64
	matches     uint64
	rejects     uint64
	records     uint64

	inputDepthHighWater uint64

	readLatency     LatencyStats
	dispatchLatency LatencyStats
	writeLatency    LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	RowsParsed  uint64
	RowsSkipped uint64
	Events      uint64
	Matches     uint64
	Rejects     uint64
	Records     uint64

	InputDepthHighWater uint64

	ReadLatency     LatencySnapshot
	DispatchLatency LatencySnapshot
	WriteLatency    LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncRowParsed records one successfully parsed input row.
func (m *Metrics) IncRowParsed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rowsParsed, 1)
}

// IncRowSkipped records one dropped input row.
func (m *Metrics) IncRowSkipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rowsSkipped, 1)
}

// IncEvent records one fully processed order event.
func (m *Metrics) IncEvent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.events, 1)
}

// IncMatch records one trade.
func (m *Metrics) IncMatch() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.matches, 1)
}

// IncReject records one REJECTED record.
func (m *Metrics) IncReject() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rejects, 1)
}

// IncRecord records one emitted output record.
func (m *Metrics) IncRecord() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.records, 1)
}

// ObserveInputDepth tracks the input queue's high-water mark.
func (m *Metrics) ObserveInputDepth(depth int) {
	if m == nil || depth < 0 {
		return
	}
	d := uint64(depth)
	for {
		cur := atomic.LoadUint64(&m.inputDepthHighWater)
		if d <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&m.inputDepthHighWater, cur, d) {
			break
		}
	}
}

// ObserveRead measures the input reading phase.
func (m *Metrics) ObserveRead(d time.Duration) {
	if m == nil {
		return
	}
	m.readLatency.Observe(d)
}

// ObserveDispatch measures the routing phase.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchLatency.Observe(d)
}

// ObserveWrite measures the output writing phase.
func (m *Metrics) ObserveWrite(d time.Duration) {
	if m == nil {
		return
	}
	m.writeLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		RowsParsed:          atomic.LoadUint64(&m.rowsParsed),
		RowsSkipped:         atomic.LoadUint64(&m.rowsSkipped),
		Events:              atomic.LoadUint64(&m.events),
		Matches:             atomic.LoadUint64(&m.matches),
		Rejects:             atomic.LoadUint64(&m.rejects),
		Records:             atomic.LoadUint64(&m.records),
		InputDepthHighWater: atomic.LoadUint64(&m.inputDepthHighWater),
		ReadLatency:         m.readLatency.Snapshot(),
		DispatchLatency:     m.dispatchLatency.Snapshot(),
		WriteLatency:        m.writeLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
