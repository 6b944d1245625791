package trace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHierarchy(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []spanRecord{
		{Name: "child-b", SpanID: "c2", ParentID: "root", Start: start.Add(2 * time.Millisecond), End: start.Add(3 * time.Millisecond), Duration: time.Millisecond},
		{Name: "child-a", SpanID: "c1", ParentID: "root", Start: start.Add(time.Millisecond), End: start.Add(2 * time.Millisecond), Duration: time.Millisecond},
		{Name: "root", SpanID: "root", Start: start, End: start.Add(5 * time.Millisecond), Duration: 5 * time.Millisecond},
		{Name: "orphan", SpanID: "o1", ParentID: "gone", Start: start.Add(time.Second), End: start.Add(2 * time.Second), Duration: time.Second},
	}

	roots := buildHierarchy(records)
	require.Len(t, roots, 2)
	assert.Equal(t, "root", roots[0].Name)
	assert.Equal(t, 5.0, roots[0].DurationMs)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "child-a", roots[0].Children[0].Name)
	assert.Equal(t, "child-b", roots[0].Children[1].Name)
	assert.Equal(t, "orphan", roots[1].Name)
}

func TestStartSpan_Disabled(t *testing.T) {
	shutdown, err := InitTracer("test", false, "")
	require.NoError(t, err)
	defer shutdown()

	ctx := context.Background()
	got, span := StartSpan(ctx, "noop")
	span.End()
	assert.Equal(t, ctx, got)
}

func TestInitTracer_WritesReport(t *testing.T) {
	dir := t.TempDir()
	shutdown, err := InitTracer("test", true, dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		tracer = nil
		spanRecorder = nil
		outputDir = ""
	})

	ctx, parent := StartSpan(context.Background(), "Dispatch", Delivery("d-1", "pull_request", "o/r")...)
	_, child := StartSpan(ctx, "SyncLabels")
	child.End()
	parent.End()
	shutdown()

	data, err := os.ReadFile(filepath.Join(dir, "performance-report.json"))
	require.NoError(t, err)

	var report PerformanceReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Spans, 1)
	assert.Equal(t, "Dispatch", report.Spans[0].Name)
	assert.Equal(t, "d-1", report.Spans[0].Attributes["github.delivery"])
	require.Len(t, report.Spans[0].Children, 1)
	assert.Equal(t, "SyncLabels", report.Spans[0].Children[0].Name)
}
