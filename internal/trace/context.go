package trace

import "context"

type ctxKey struct{}

// FromContext returns the Tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx; nil attaches Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext names the span enclosing the work a context carries.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

type spanKey struct{}

// CurrentSpan returns the enclosing span of ctx, zero if none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanKey{}).(SpanContext)
	return sc
}

// WithSpan makes s the enclosing span of ctx. Disabled spans leave ctx as is.
func WithSpan(ctx context.Context, s *Span) context.Context {
	if s == nil || s.id == 0 {
		return ctx
	}
	return context.WithValue(ctx, spanKey{}, SpanContext{SpanID: s.id, GID: s.gid})
}

// BeginChild starts a span under the enclosing span of ctx.
func BeginChild(ctx context.Context, t Tracer, scope Scope, name string) *Span {
	return Begin(t, scope, name, CurrentSpan(ctx).SpanID)
}
