package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return exporter, tp
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func serve(h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	exporter, _ := installExporter(t)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}))
	rr := serve(h, http.MethodGet, "/search-articles?query=go", nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "GET /search-articles" {
		t.Errorf("span name = %q", span.Name)
	}
	if span.SpanKind != trace.SpanKindServer {
		t.Errorf("span kind = %v", span.SpanKind)
	}
	attrs := attrMap(span.Attributes)
	if got := attrs["http.request.method"].AsString(); got != "GET" {
		t.Errorf("http.request.method = %q", got)
	}
	if got := attrs["url.path"].AsString(); got != "/search-articles" {
		t.Errorf("url.path = %q", got)
	}
	if got := attrs["http.response.status_code"].AsInt64(); got != 200 {
		t.Errorf("http.response.status_code = %d", got)
	}
	if got := rr.Header().Get(TraceIDHeader); len(got) != 32 {
		t.Errorf("trace id header = %q", got)
	}
}

func TestMiddleware_NamesSpanAfterRoute(t *testing.T) {
	exporter, _ := installExporter(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /articles/{id}", func(http.ResponseWriter, *http.Request) {})
	serve(Middleware(mux), http.MethodGet, "/articles/42", nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "GET /articles/{id}" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if got := attrMap(spans[0].Attributes)["http.route"].AsString(); got != "GET /articles/{id}" {
		t.Errorf("http.route = %q", got)
	}
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	exporter, _ := installExporter(t)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := serve(h, http.MethodGet, "/process-url", map[string]string{
		"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})

	const want = "4bf92f3577b34da6a3ce929d0e0e4736"
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].SpanContext.TraceID().String(); got != want {
		t.Errorf("trace id = %s, want %s", got, want)
	}
	if got := rr.Header().Get(TraceIDHeader); got != want {
		t.Errorf("header trace id = %s, want %s", got, want)
	}
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   codes.Code
	}{
		{"5xx marks error", http.StatusBadGateway, codes.Error},
		{"4xx does not", http.StatusBadRequest, codes.Unset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, _ := installExporter(t)
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			serve(h, http.MethodGet, "/process-url", nil)

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if spans[0].Status.Code != tt.want {
				t.Errorf("status = %v, want %v", spans[0].Status.Code, tt.want)
			}
		})
	}
}

func TestTransport_InjectsTraceContext(t *testing.T) {
	exporter, _ := installExporter(t)

	var gotParent string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	client := &http.Client{Transport: &Transport{}}
	ctx, parent := Start(context.Background(), "panel.search")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstream.URL+"/search-articles?query=go", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	parent.End()

	if req.Header.Get("traceparent") != "" {
		t.Error("caller's request must not be modified")
	}
	traceID := parent.SpanContext().TraceID().String()
	if !strings.Contains(gotParent, traceID) {
		t.Errorf("traceparent = %q, want trace id %s", gotParent, traceID)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected client and parent spans, got %d", len(spans))
	}
	client0 := spans[0]
	if client0.SpanKind != trace.SpanKindClient || client0.Name != "GET /search-articles" {
		t.Errorf("client span = %q kind %v", client0.Name, client0.SpanKind)
	}
	if client0.Parent.SpanID() != parent.SpanContext().SpanID() {
		t.Error("client span should be a child of the caller's span")
	}
	if client0.Status.Code != codes.Error {
		t.Errorf("client span status = %v, want Error for 503", client0.Status.Code)
	}
}

func TestStartAndRecordError(t *testing.T) {
	exporter, _ := installExporter(t)

	_, span := Start(context.Background(), "article.process")
	RecordError(span, nil)
	RecordError(span, errors.New("fetch failed"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "article.process" {
		t.Errorf("name = %q", spans[0].Name)
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status.Code)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("events = %d, want 1 recorded error", len(spans[0].Events))
	}
}
