// Package tracing sets up an optional OpenTelemetry pipeline for the
// diagnosis engine's host process. The engine itself never blocks on I/O;
// spans are emitted by the callers driving it (the replay command, or an
// embedding service) around ingestion and analysis calls.
package tracing

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/helixtrade/causegraph/internal/logging"
)

const (
	serviceName    = "causegraph"
	serviceVersion = "0.1.0"
	setupTimeout   = 5 * time.Second
)

// Config controls the exporter. Disabled tracing still yields a working
// Provider whose tracers produce no-op spans.
type Config struct {
	Enabled     bool
	Endpoint    string // OTLP gRPC endpoint, host:port
	TLSCAPath   string // CA bundle for endpoint verification, optional
	TLSInsecure bool   // skip certificate verification
}

// Provider owns the tracer provider lifecycle.
type Provider struct {
	tp      *sdktrace.TracerProvider
	logger  *logging.Logger
	enabled bool
}

// NewProvider builds the OTLP pipeline and installs it globally. With
// Enabled false it returns a no-op provider and no error.
func NewProvider(cfg Config) (*Provider, error) {
	logger := logging.GetLogger("tracing")
	if !cfg.Enabled {
		return &Provider{logger: logger}, nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("tracing enabled but no endpoint configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	creds, err := transportCredentials(cfg, logger)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(creds)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing initialized, endpoint %s", cfg.Endpoint)

	return &Provider{tp: tp, logger: logger, enabled: true}, nil
}

func transportCredentials(cfg Config, logger *logging.Logger) (credentials.TransportCredentials, error) {
	if cfg.TLSInsecure {
		logger.Warn("tracing TLS certificate verification disabled")
		return credentials.NewTLS(&tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		}), nil
	}
	if cfg.TLSCAPath != "" {
		pem, err := os.ReadFile(cfg.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("reading CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no usable certificates in %s", cfg.TLSCAPath)
		}
		return credentials.NewTLS(&tls.Config{
			RootCAs:    pool,
			MinVersion: tls.VersionTLS12,
		}), nil
	}
	return insecure.NewCredentials(), nil
}

// Tracer returns a named tracer from the installed provider. Safe to call
// on a disabled provider.
func (p *Provider) Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

// Enabled reports whether spans are actually exported.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Shutdown flushes buffered spans. No-op when tracing is disabled.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		p.logger.ErrorWithErr("shutting down tracer provider", err)
		return err
	}
	return nil
}
