// Package observability lets a binary watch the pipeline, the cache and
// outgoing HTTP without the libraries importing a metrics backend.
//
// Libraries look hooks up from the context they were handed:
//
//	observability.Pipeline(ctx).OnFrameStart(ctx, tag, entries)
//
// A binary either registers process-wide hooks once at startup with
// [Register], or scopes them to one call tree with [WithHooks], which is
// how the CLI drives its progress spinner. Unset hooks do nothing.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the layout pipeline.
type PipelineHooks interface {
	OnTimelineStart(ctx context.Context, revisions int)
	OnTimelineComplete(ctx context.Context, frames int, duration time.Duration, err error)

	// One pair per revision, including cache hits.
	OnFrameStart(ctx context.Context, tag string, entries int)
	OnFrameComplete(ctx context.Context, tag string, nodes int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups. keyType is "frame", "artifact" or
// "http".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outgoing API requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is called for transport failures, not for error statuses.
	OnError(ctx context.Context, method, host, path string, err error)
}

// Hooks bundles one implementation of each hook interface. Nil fields
// fall back to the enclosing registration.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

// NoopPipelineHooks ignores every event. Embed it to implement only
// some of the methods.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnTimelineStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnTimelineComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnFrameStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnFrameComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

func noop() Hooks {
	return Hooks{Pipeline: NoopPipelineHooks{}, Cache: NoopCacheHooks{}, HTTP: NoopHTTPHooks{}}
}

var global atomic.Pointer[Hooks]

func init() {
	h := noop()
	global.Store(&h)
}

// Register replaces the process-wide hooks. Nil fields keep the hook
// that is currently registered.
func Register(h Hooks) {
	merged := h.over(*global.Load())
	global.Store(&merged)
}

// Reset restores the process-wide no-op hooks.
func Reset() {
	h := noop()
	global.Store(&h)
}

// Registered returns the process-wide hooks.
func Registered() Hooks {
	return *global.Load()
}

type ctxKey struct{}

// WithHooks returns a context whose lookups see h ahead of the
// process-wide hooks.
func WithHooks(ctx context.Context, h Hooks) context.Context {
	return context.WithValue(ctx, ctxKey{}, h.over(from(ctx)))
}

func from(ctx context.Context) Hooks {
	if ctx != nil {
		if h, ok := ctx.Value(ctxKey{}).(Hooks); ok {
			return h
		}
	}
	return *global.Load()
}

func (h Hooks) over(base Hooks) Hooks {
	if h.Pipeline == nil {
		h.Pipeline = base.Pipeline
	}
	if h.Cache == nil {
		h.Cache = base.Cache
	}
	if h.HTTP == nil {
		h.HTTP = base.HTTP
	}
	return h
}

// Pipeline returns the pipeline hooks in effect for ctx.
func Pipeline(ctx context.Context) PipelineHooks { return from(ctx).Pipeline }

// Cache returns the cache hooks in effect for ctx.
func Cache(ctx context.Context) CacheHooks { return from(ctx).Cache }

// HTTP returns the HTTP hooks in effect for ctx.
func HTTP(ctx context.Context) HTTPHooks { return from(ctx).HTTP }
