package indexer

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Add(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "candidates", 100, 10)

	tracker.Start()
	tracker.Add(25)
	tracker.Add(25)
	tracker.Add(50)

	output := buf.String()
	assert.Contains(t, output, "candidates: 100/100")
	assert.Contains(t, output, "100.0%")
	assert.Equal(t, 100, tracker.Current())
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "docs", 100, 50)

	tracker.Start()
	tracker.Add(10)
	assert.Empty(t, buf.String(), "should not report before the interval")

	tracker.Add(40)
	assert.Contains(t, buf.String(), "50/100")
}

func TestProgressTracker_Clamp(t *testing.T) {
	tracker := NewProgressTracker(nil, "docs", 10, 1)
	tracker.Start()
	tracker.Add(15)
	assert.Equal(t, 10, tracker.Current())
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "docs", 10, 1)

	tracker.Add(5)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
	assert.Zero(t, tracker.Current())
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "standards", 4, 10)

	tracker.Start()
	tracker.Add(3)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "3/4")
	assert.True(t, strings.HasSuffix(output, "\n"), "finish should end the line")
}

func TestProgressTracker_Concurrent(t *testing.T) {
	tracker := NewProgressTracker(nil, "docs", 1000, 10)
	tracker.Start()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				tracker.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, tracker.Current())
}
