package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/voxelnet/internal/logging"
)

// ShutdownFunc завершает подсистему наблюдаемости
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// TelemetryOptions настраивает трассировку
type TelemetryOptions struct {
	ServiceName string
	Enabled     bool
	// SampleRatio - доля корневых трасс, 0 или >= 1 означает все
	SampleRatio float64
}

func (o TelemetryOptions) sampler() sdktrace.Sampler {
	if o.SampleRatio <= 0 || o.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.SampleRatio))
}

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// Без Enabled остаётся no-op провайдер по умолчанию, спаны хранилища ничего не стоят.
func InitTelemetry(ctx context.Context, opts TelemetryOptions) (ShutdownFunc, error) {
	if !opts.Enabled {
		logging.Debug("OpenTelemetry отключён")
		return noopShutdown, nil
	}

	// Адрес коллектора задаётся OTEL_EXPORTER_OTLP_*, по умолчанию localhost:4318
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(opts.sampler()),
	)
	otel.SetTracerProvider(tp)
	logging.Info("OpenTelemetry: service=%s, sample=%.2f", opts.ServiceName, opts.SampleRatio)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
