// Package telemetry wires the OpenTelemetry trace, metric and log pipelines to an OTLP collector.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// HookFn runs once the providers are installed, typically to bridge the logger into the log pipeline.
type HookFn func(ctx context.Context) (context.Context, error)

// StopFn flushes and shuts the providers down within timeout.
type StopFn func(ctx context.Context, timeout time.Duration)

type shutdownFn func(ctx context.Context) error

// Observe installs the global tracer, meter and logger providers and starts the Go runtime metrics.
// With telemetry disabled only the propagators are set and the returned StopFn does nothing.
func Observe(ctx context.Context, name string, version string, env string, hookFn HookFn, opts ...Option) (context.Context, StopFn, error) {
	options := NewOptions(opts...)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !options.enabled {
		log.Ctx(ctx).Info().Str("stage", "startup").Str("component", "telemetry").Msg("telemetry disabled")
		return ctx, func(context.Context, time.Duration) {}, nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", name),
			attribute.String("service.version", version),
			attribute.String("deployment.environment", env),
		),
	)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	var shutdowns []shutdownFn

	stopFn := func(ctx context.Context, timeout time.Duration) {
		stop(ctx, timeout, shutdowns)
	}

	tp, err := newTracerProvider(ctx, res, options)
	if err != nil {
		stopFn(ctx, options.timeout)
		return ctx, nil, err
	}

	shutdowns = append(shutdowns, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mp, err := newMeterProvider(ctx, res, options)
	if err != nil {
		stopFn(ctx, options.timeout)
		return ctx, nil, err
	}

	shutdowns = append(shutdowns, mp.Shutdown)
	otel.SetMeterProvider(mp)

	lp, err := newLoggerProvider(ctx, res, options)
	if err != nil {
		stopFn(ctx, options.timeout)
		return ctx, nil, err
	}

	shutdowns = append(shutdowns, lp.Shutdown)
	global.SetLoggerProvider(lp)

	err = runtime.Start(runtime.WithMeterProvider(mp))
	if err != nil {
		stopFn(ctx, options.timeout)
		return ctx, nil, fmt.Errorf("failed to start runtime metrics: %w", err)
	}

	if hookFn != nil {
		ctx, err = hookFn(ctx)
		if err != nil {
			stopFn(ctx, options.timeout)
			return ctx, nil, fmt.Errorf("failed to run telemetry hook: %w", err)
		}
	}

	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", "telemetry").
		Str("endpoint", options.endpoint).Msg("telemetry enabled")

	return ctx, stopFn, nil
}

func stop(ctx context.Context, timeout time.Duration, shutdowns []shutdownFn) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error

	// reverse creation order
	for i := len(shutdowns) - 1; i >= 0; i-- {
		err := shutdowns[i](ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", "telemetry").Err(err).Msg("failed to stop telemetry")
		return
	}

	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", "telemetry").Msg("telemetry stopped")
}

func newTracerProvider(ctx context.Context, res *resource.Resource, options *Options) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(options.endpoint)}
	if options.insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, options *Options) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(options.endpoint)}
	if options.insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	), nil
}

func newLoggerProvider(ctx context.Context, res *resource.Resource, options *Options) (*sdklog.LoggerProvider, error) {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(options.endpoint)}
	if options.insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}

	exp, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP log exporter: %w", err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(res),
	), nil
}
