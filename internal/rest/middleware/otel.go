package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pbinitiative/zenflow/internal/config"
	otelint "github.com/pbinitiative/zenflow/internal/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconvV4 "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// countingBody counts the bytes the handler read from the request.
type countingBody struct {
	io.ReadCloser
	read int64
	err  error
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.read += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		b.err = err
	}
	return n, err
}

// statusWriter remembers the status code and the response size, and injects the trace context into
// the response headers before they are sent.
type statusWriter struct {
	http.ResponseWriter
	ctx     context.Context
	status  int
	written int64
	err     error
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	otel.GetTextMapPropagator().Inject(w.ctx, propagation.HeaderCarrier(w.Header()))
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	if err != nil {
		w.err = err
	}
	return n, err
}

// Opentelemetry traces and meters requests by their chi route pattern.
func Opentelemetry(conf config.Tracing) func(next http.Handler) http.Handler {
	tracer := otel.GetTracerProvider().Tracer("zenflow-http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx = transferHeaders(ctx, r, conf.TransferHeaders)
			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(semconvV4.NetAttributesFromHTTPRequest("tcp", r)...),
				trace.WithAttributes(transferHeaderAttributes(r, conf.TransferHeaders)...),
			)
			defer span.End()

			r = r.WithContext(ctx)
			body := &countingBody{ReadCloser: r.Body}
			if r.Body != nil {
				r.Body = body
			}
			sw := &statusWriter{ResponseWriter: w, ctx: ctx}

			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			span.SetName(r.Method + " " + route)
			span.SetAttributes(semconvV4.HTTPServerAttributesFromHTTPRequest(conf.Name, route, r)...)
			traceResponse(span, body, sw)
			meterRequest(r, route, sw, time.Since(started))
		})
	}
}

func traceResponse(span trace.Span, body *countingBody, sw *statusWriter) {
	if body.read > 0 {
		span.SetAttributes(otelhttp.ReadBytesKey.Int64(body.read))
	}
	if body.err != nil {
		span.SetAttributes(otelint.ReadErrorKey.String(body.err.Error()))
	}
	if sw.written > 0 {
		span.SetAttributes(otelhttp.WroteBytesKey.Int64(sw.written))
	}
	if sw.err != nil {
		span.RecordError(sw.err)
		span.SetAttributes(otelint.WriteErrorKey.String(sw.err.Error()))
	}
	if sw.status > 0 {
		span.SetAttributes(semconvV4.HTTPAttributesFromHTTPStatusCode(sw.status)...)
		span.SetStatus(semconvV4.SpanStatusFromHTTPStatusCode(sw.status))
	}
}

func meterRequest(r *http.Request, route string, sw *statusWriter, latency time.Duration) {
	status := sw.status
	if status == 0 {
		status = http.StatusOK
	}
	attrs := metric.WithAttributes(
		attribute.String("path", route),
		attribute.String("method", r.Method),
		attribute.Int("status", status),
	)
	ctx := r.Context()
	otelint.RequestTotal.Add(ctx, 1, attrs)
	if r.ContentLength > 0 {
		otelint.RequestBodySize.Add(ctx, float64(r.ContentLength), attrs)
	}
	if sw.written > 0 {
		otelint.ResponseBodySize.Add(ctx, float64(sw.written), attrs)
	}
	otelint.RequestDuration.Record(ctx, float64(latency.Milliseconds()), attrs)
}

func transferHeaders(ctx context.Context, r *http.Request, headers []string) context.Context {
	for _, header := range headers {
		ctx = context.WithValue(ctx, otelint.TransferHeaderKey(header), r.Header.Get(header))
	}
	return ctx
}

func transferHeaderAttributes(r *http.Request, headers []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(headers))
	for _, header := range headers {
		attrs = append(attrs, attribute.String(header, r.Header.Get(header)))
	}
	return attrs
}
