/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: comparison.go
Description: Run metrics for the validation engine. Counts comparisons,
observations and the rows that could not be evaluated or classified, so
long-running services can report engine activity.
*/

package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ComparisonMetrics is a point-in-time copy of the collector's counters
type ComparisonMetrics struct {
	Comparisons    int64         `json:"comparisons"`
	Failures       int64         `json:"failures"`
	Observations   int64         `json:"observations"`
	Unevaluable    int64         `json:"unevaluable"`
	Unclassifiable int64         `json:"unclassifiable"`
	TotalDuration  time.Duration `json:"total_duration"`
	Uptime         time.Duration `json:"uptime"`
}

// Collector accumulates comparison metrics. It is safe for concurrent use.
type Collector struct {
	comparisons    atomic.Int64
	failures       atomic.Int64
	observations   atomic.Int64
	unevaluable    atomic.Int64
	unclassifiable atomic.Int64
	durationNs     atomic.Int64
	startTime      time.Time
}

// NewCollector creates a collector with zeroed counters
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordComparison records a successful comparison
func (c *Collector) RecordComparison(observations, unevaluable, unclassifiable int, duration time.Duration) {
	c.comparisons.Add(1)
	c.observations.Add(int64(observations))
	c.unevaluable.Add(int64(unevaluable))
	c.unclassifiable.Add(int64(unclassifiable))
	c.durationNs.Add(int64(duration))
}

// RecordFailure records a comparison rejected before processing
func (c *Collector) RecordFailure() {
	c.failures.Add(1)
}

// Snapshot returns the current counter values
func (c *Collector) Snapshot() ComparisonMetrics {
	return ComparisonMetrics{
		Comparisons:    c.comparisons.Load(),
		Failures:       c.failures.Load(),
		Observations:   c.observations.Load(),
		Unevaluable:    c.unevaluable.Load(),
		Unclassifiable: c.unclassifiable.Load(),
		TotalDuration:  time.Duration(c.durationNs.Load()),
		Uptime:         time.Since(c.startTime),
	}
}

// LogSnapshot writes the current counters to the logger
func (c *Collector) LogSnapshot(logger *logrus.Logger) {
	s := c.Snapshot()
	logger.WithFields(logrus.Fields{
		"comparisons":    s.Comparisons,
		"failures":       s.Failures,
		"observations":   s.Observations,
		"unevaluable":    s.Unevaluable,
		"unclassifiable": s.Unclassifiable,
		"total_duration": s.TotalDuration,
		"uptime":         s.Uptime,
	}).Debug("Validation metrics")
}
