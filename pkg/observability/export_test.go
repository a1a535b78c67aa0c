package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ProbeBuildResource exposes buildResource to the external test package.
func ProbeBuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// ProbeSamplerSpan builds the sampler selectSampler(cfg) would choose
// and reports whether it samples a root span with no parent.
func ProbeSamplerSpan(cfg Config) bool {
	sampler := selectSampler(cfg)

	result := sampler.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{1},
		Name:          "probe",
		Kind:          trace.SpanKindInternal,
	})

	return result.Decision != sdktrace.Drop
}
