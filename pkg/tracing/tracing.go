package tracing

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"

	"sweep_bot/pkg/logger"
)

type ctxKey string

const (
	TraceIDKey ctxKey = "trace_id"
	SpanIDKey  ctxKey = "span_id"
)

var (
	// лучше бы передавать аргументом, но так совпадает с logger
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Enabled bool
	Host    string
	Port    int
}

// Init jaeger при Enabled, иначе глобальный noop-трейсер.
func Init(conf Config) (func(), error) {
	if !conf.Enabled {
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		return func() {}, nil
	}
	_, closer, err := InitTracer(conf)
	if err != nil {
		return nil, err
	}
	return closer, nil
}

func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	jMetricsFactory := metrics.NullFactory
	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan открывает дочерний спан и кладёт trace/span id в контекст для логов.
func StartSpan(ctx context.Context, op string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	if sc, ok := span.Context().(jaeger.SpanContext); ok {
		ctx = context.WithValue(ctx, TraceIDKey, sc.TraceID().String())
		ctx = context.WithValue(ctx, SpanIDKey, sc.SpanID().String())
	}
	return span, ctx
}

// TraceID: id трейса из контекста или пустая строка.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}
