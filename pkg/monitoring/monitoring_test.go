/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: monitoring_test.go
Description: Tests for comparison metrics and the profiler.
*/

package monitoring

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCollector tests concurrent counter updates
func TestCollector(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordComparison(4, 1, 2, time.Millisecond)
		}()
	}
	wg.Wait()
	c.RecordFailure()

	s := c.Snapshot()
	assert.Equal(t, int64(10), s.Comparisons)
	assert.Equal(t, int64(1), s.Failures)
	assert.Equal(t, int64(40), s.Observations)
	assert.Equal(t, int64(10), s.Unevaluable)
	assert.Equal(t, int64(20), s.Unclassifiable)
	assert.Equal(t, 10*time.Millisecond, s.TotalDuration)
	assert.True(t, s.Uptime >= 0)
}

// TestLogSnapshot tests that counters are written as fields
func TestLogSnapshot(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	c := NewCollector()
	c.RecordComparison(3, 0, 0, time.Millisecond)
	c.LogSnapshot(logger)

	assert.Contains(t, buf.String(), `"comparisons":1`)
	assert.Contains(t, buf.String(), `"observations":3`)
	assert.Contains(t, buf.String(), "Validation metrics")
}

// TestProfiler tests that CPU and heap profiles are written
func TestProfiler(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	p := NewProfiler(t.TempDir(), logger)
	_, err := p.Stop()
	assert.Error(t, err)

	require.NoError(t, p.Start())
	assert.Error(t, p.Start())

	results, err := p.Stop()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cpu", results[0].Type)
	assert.Equal(t, "heap", results[1].Type)
	for _, r := range results {
		assert.FileExists(t, r.OutputFile)
	}
}
