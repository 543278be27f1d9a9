package otel

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const requestMeter = "zenflow-http"

// request instruments of the REST server; noop until SetupOtel runs
var (
	RequestTotal     metric.Int64Counter     = noop.Int64Counter{}
	RequestBodySize  metric.Float64Counter   = noop.Float64Counter{}
	ResponseBodySize metric.Float64Counter   = noop.Float64Counter{}
	RequestDuration  metric.Float64Histogram = noop.Float64Histogram{}
)

const (
	ReadErrorKey  = attribute.Key("http.read_error")
	WriteErrorKey = attribute.Key("http.write_error")
)

// TransferHeaderKey keys the values of configured transfer headers in a request context.
type TransferHeaderKey string

func setupRequestInstruments() error {
	meter := otel.Meter(requestMeter)
	var err, errJoin error
	RequestTotal, err = meter.Int64Counter("request_total", metric.WithDescription("Requests served per route"))
	errJoin = errors.Join(errJoin, err)
	RequestBodySize, err = meter.Float64Counter("request_body_size", metric.WithUnit("By"), metric.WithDescription("Received request body size, bytes"))
	errJoin = errors.Join(errJoin, err)
	ResponseBodySize, err = meter.Float64Counter("response_body_size", metric.WithUnit("By"), metric.WithDescription("Sent response body size, bytes"))
	errJoin = errors.Join(errJoin, err)
	RequestDuration, err = meter.Float64Histogram("request_duration", metric.WithUnit("ms"), metric.WithDescription("Time the server took to handle the request, milliseconds"))
	errJoin = errors.Join(errJoin, err)
	if errJoin != nil {
		return fmt.Errorf("failed to create request instruments: %w", errJoin)
	}
	return nil
}
