package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer       trace.Tracer
	spanRecorder *SpanRecorder
	outputDir    string
)

// SpanRecorder records finished spans; deliveries end spans concurrently
type SpanRecorder struct {
	mu    sync.Mutex
	spans []spanRecord
}

type spanRecord struct {
	Name       string
	Duration   time.Duration
	Start      time.Time
	End        time.Time
	ParentID   string
	SpanID     string
	Attributes map[string]string
}

type SpanInfo struct {
	Name       string            `json:"name"`
	DurationMs float64           `json:"durationMs"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []SpanInfo        `json:"children,omitempty"`
}

type PerformanceReport struct {
	Spans           []SpanInfo `json:"spans"`
	TotalDurationMs float64    `json:"totalDurationMs"`
	Timestamp       string     `json:"timestamp"`
}

// InitTracer initializes OpenTelemetry tracing
func InitTracer(serviceName string, enabled bool, outDir string) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	spanRecorder = &SpanRecorder{spans: make([]spanRecord, 0)}
	outputDir = outDir

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(&recordingSpanProcessor{recorder: spanRecorder}),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(serviceName)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Silently fail
		_ = tp.Shutdown(ctx)
		_ = ExportReport()
	}

	return shutdown, nil
}

// StartSpan starts a new span
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Delivery returns the attributes identifying one webhook delivery
func Delivery(deliveryID, event, repo string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("github.delivery", deliveryID),
		attribute.String("github.event", event),
		attribute.String("github.repo", repo),
	}
}

// recordingSpanProcessor records spans for the JSON report
type recordingSpanProcessor struct {
	recorder *SpanRecorder
}

func (p *recordingSpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {}

func (p *recordingSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if p.recorder == nil {
		return
	}
	parentID := ""
	if s.Parent().IsValid() {
		parentID = s.Parent().SpanID().String()
	}
	attrs := make(map[string]string, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	p.recorder.add(spanRecord{
		Name:       s.Name(),
		Duration:   s.EndTime().Sub(s.StartTime()),
		Start:      s.StartTime(),
		End:        s.EndTime(),
		SpanID:     s.SpanContext().SpanID().String(),
		ParentID:   parentID,
		Attributes: attrs,
	})
}

func (p *recordingSpanProcessor) Shutdown(ctx context.Context) error   { return nil }
func (p *recordingSpanProcessor) ForceFlush(ctx context.Context) error { return nil }

func (r *SpanRecorder) add(record spanRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, record)
}

func (r *SpanRecorder) snapshot() []spanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]spanRecord, len(r.spans))
	copy(out, r.spans)
	return out
}

// ExportReport exports the performance report to a JSON file
func ExportReport() error {
	if spanRecorder == nil || outputDir == "" {
		return nil
	}
	records := spanRecorder.snapshot()
	if len(records) == 0 {
		return nil
	}

	hierarchy := buildHierarchy(records)

	totalDurationMs := 0.0
	for _, span := range hierarchy {
		totalDurationMs += span.DurationMs
	}

	report := PerformanceReport{
		Spans:           hierarchy,
		TotalDurationMs: totalDurationMs,
		Timestamp:       time.Now().Format(time.RFC3339Nano),
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportPath := filepath.Join(outputDir, "performance-report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// buildHierarchy converts flat span records into a tree. Spans whose parent
// was not recorded become roots.
func buildHierarchy(records []spanRecord) []SpanInfo {
	infos := make(map[string]*SpanInfo, len(records))
	for _, record := range records {
		infos[record.SpanID] = &SpanInfo{
			Name:       record.Name,
			DurationMs: float64(record.Duration.Microseconds()) / 1000.0,
			Start:      record.Start.Format(time.RFC3339Nano),
			End:        record.End.Format(time.RFC3339Nano),
			Attributes: record.Attributes,
		}
	}

	children := make(map[string][]string)
	var roots []string
	for _, record := range records {
		if _, ok := infos[record.ParentID]; record.ParentID == "" || !ok {
			roots = append(roots, record.SpanID)
			continue
		}
		children[record.ParentID] = append(children[record.ParentID], record.SpanID)
	}

	var build func(id string) SpanInfo
	build = func(id string) SpanInfo {
		info := *infos[id]
		for _, childID := range children[id] {
			info.Children = append(info.Children, build(childID))
		}
		sort.Slice(info.Children, func(i, j int) bool {
			return info.Children[i].Start < info.Children[j].Start
		})
		return info
	}

	rootSpans := make([]SpanInfo, 0, len(roots))
	for _, id := range roots {
		rootSpans = append(rootSpans, build(id))
	}

	sort.Slice(rootSpans, func(i, j int) bool {
		return rootSpans[i].Start < rootSpans[j].Start
	})

	return rootSpans
}
