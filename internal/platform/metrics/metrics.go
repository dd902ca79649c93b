package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	importsTotal     uint64
	rowsTotal        uint64
	rowErrorsTotal   uint64
	daysTotal        uint64
	correctedDays    uint64
	fileShapeRejects uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordReconciliation counts one engine run over rows raw rows.
func (c *Collector) RecordReconciliation(rows, rowErrors, days, corrected int) {
	atomic.AddUint64(&c.importsTotal, 1)
	atomic.AddUint64(&c.rowsTotal, uint64(rows))
	atomic.AddUint64(&c.rowErrorsTotal, uint64(rowErrors))
	atomic.AddUint64(&c.daysTotal, uint64(days))
	atomic.AddUint64(&c.correctedDays, uint64(corrected))
}

func (c *Collector) RecordFileShapeReject() {
	atomic.AddUint64(&c.fileShapeRejects, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           errs,
		"rateLimitedTotal":      limited,
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"reconciliationsTotal":  atomic.LoadUint64(&c.importsTotal),
		"rowsTotal":             atomic.LoadUint64(&c.rowsTotal),
		"rowErrorsTotal":        atomic.LoadUint64(&c.rowErrorsTotal),
		"daysTotal":             atomic.LoadUint64(&c.daysTotal),
		"correctedDaysTotal":    atomic.LoadUint64(&c.correctedDays),
		"fileShapeRejectsTotal": atomic.LoadUint64(&c.fileShapeRejects),
	}
}
