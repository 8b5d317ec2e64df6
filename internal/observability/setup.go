package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	promreg "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/ncecere/llm_observability/backend/internal/config"
)

// Provider wires OTLP tracing and Prometheus metrics. A nil Provider is a
// valid no-op, so callers never branch on whether telemetry is enabled.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *metric.MeterProvider
	promExporter   *prometheus.Exporter
	promHandler    http.Handler
	shutdownFuncs  []func(context.Context) error

	httpRequestCounter *promreg.CounterVec
	httpRequestLatency *promreg.HistogramVec
	callLatencyHist    *promreg.HistogramVec
	callTokensCounter  *promreg.CounterVec
	callStatusCounter  *promreg.CounterVec
}

func Setup(ctx context.Context, cfg config.ObservabilityConfig) (*Provider, error) {
	if !cfg.EnableOTLP && !cfg.EnableMetrics {
		return nil, nil
	}

	provider := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("llm-observability"),
		),
	)
	if err != nil {
		return nil, err
	}

	if cfg.EnableOTLP {
		endpoint := strings.TrimSpace(cfg.OTLPEndpoint)
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		opts := []otlptracegrpc.Option{}
		switch {
		case strings.HasPrefix(endpoint, "http://"):
			endpoint = strings.TrimPrefix(endpoint, "http://")
			opts = append(opts, otlptracegrpc.WithInsecure())
		case strings.HasPrefix(endpoint, "https://"):
			endpoint = strings.TrimPrefix(endpoint, "https://")
		default:
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))

		exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		provider.tracerProvider = tp
		provider.shutdownFuncs = append(provider.shutdownFuncs, tp.Shutdown)
	}

	if cfg.EnableMetrics {
		registry := promreg.NewRegistry()
		promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, err
		}
		mp := metric.NewMeterProvider(
			metric.WithReader(promExporter),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		provider.meterProvider = mp
		provider.promExporter = promExporter
		provider.promHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
		provider.shutdownFuncs = append(provider.shutdownFuncs, mp.Shutdown)

		httpRequests := promreg.NewCounterVec(
			promreg.CounterOpts{
				Namespace: "llm_observability",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		)
		latencyBuckets := []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10}
		httpLatency := promreg.NewHistogramVec(
			promreg.HistogramOpts{
				Namespace: "llm_observability",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   latencyBuckets,
			},
			[]string{"method", "route", "status"},
		)
		callLatency := promreg.NewHistogramVec(
			promreg.HistogramOpts{
				Namespace: "llm_observability",
				Name:      "llm_call_duration_seconds",
				Help:      "Latency of recorded LLM calls.",
				Buckets:   latencyBuckets,
			},
			[]string{"model", "status"},
		)
		tokenCounter := promreg.NewCounterVec(
			promreg.CounterOpts{
				Namespace: "llm_observability",
				Name:      "llm_tokens_total",
				Help:      "Total prompt/completion tokens recorded.",
			},
			[]string{"model", "type"},
		)
		statusCounter := promreg.NewCounterVec(
			promreg.CounterOpts{
				Namespace: "llm_observability",
				Name:      "llm_calls_total",
				Help:      "Total recorded LLM calls by outcome.",
			},
			[]string{"model", "status"},
		)
		for _, collector := range []promreg.Collector{httpRequests, httpLatency, callLatency, tokenCounter, statusCounter} {
			if err := registry.Register(collector); err != nil {
				return nil, err
			}
		}
		provider.httpRequestCounter = httpRequests
		provider.httpRequestLatency = httpLatency
		provider.callLatencyHist = callLatency
		provider.callTokensCounter = tokenCounter
		provider.callStatusCounter = statusCounter
	}

	return provider, nil
}

func (p *Provider) PrometheusHandler() http.Handler {
	if p == nil || p.promHandler == nil {
		return nil
	}
	return p.promHandler
}

func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	if p == nil {
		return nil
	}
	return p.tracerProvider
}

func (p *Provider) RecordHTTPRequest(_ context.Context, method, route string, status int, duration time.Duration) {
	if p == nil {
		return
	}

	statusLabel := strconv.Itoa(status)

	if p.httpRequestCounter != nil {
		p.httpRequestCounter.WithLabelValues(method, route, statusLabel).Inc()
	}
	if p.httpRequestLatency != nil {
		p.httpRequestLatency.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
	}
}

// RecordCall mirrors an ingested call log into the process-level metrics.
func (p *Provider) RecordCall(model, status string, latency time.Duration) {
	if p == nil {
		return
	}
	if p.callStatusCounter != nil {
		p.callStatusCounter.WithLabelValues(model, status).Inc()
	}
	if p.callLatencyHist != nil {
		p.callLatencyHist.WithLabelValues(model, status).Observe(latency.Seconds())
	}
}

func (p *Provider) RecordTokens(model string, promptTokens, completionTokens int64) {
	if p == nil || p.callTokensCounter == nil {
		return
	}
	if promptTokens > 0 {
		p.callTokensCounter.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		p.callTokensCounter.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}
