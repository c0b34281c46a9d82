package pulplib

import "context"

// Hook system allows observing and adjusting orchestrated operations without
// modifying core code. Hooks are held by the Session (never global) and run
// sequentially in registration order; they are never executed concurrently
// with each other at the same hook point.

// Hooks defines the available extension points.
type Hooks struct {
	// PrePublish hooks run before distributors are selected for a publish.
	// Every hook runs and sees the original options; the first non-nil
	// replacement returned anywhere in the chain wins. When no hook returns
	// a replacement the original options are kept.
	PrePublish []PrePublishHook

	// PostPublish hooks run after a publish completes successfully, with the
	// original repository and the options actually used.
	PostPublish []PostPublishHook
}

// HookContext carries information through a hook chain.
type HookContext struct {
	Context context.Context

	// Metadata is custom state passed between hooks in one chain.
	Metadata map[string]any

	// StopChain stops processing remaining hooks at this point.
	StopChain bool
}

// NewHookContext creates a hook context.
func NewHookContext(ctx context.Context) *HookContext {
	return &HookContext{
		Context:  ctx,
		Metadata: make(map[string]any),
	}
}

// PrePublishHook may replace the publish options. Returning nil keeps the
// options seen so far.
type PrePublishHook func(hctx *HookContext, repo *Repository, options PublishOptions) (*PublishOptions, error)

// PostPublishHook observes a completed publish.
type PostPublishHook func(hctx *HookContext, repo *Repository, options PublishOptions) error

// executePrePublish runs the full PrePublish chain. Every hook is evaluated
// with the original options; the first non-nil replacement observed is
// adopted once the chain has finished.
func (h *Hooks) executePrePublish(ctx context.Context, repo *Repository, options PublishOptions) (PublishOptions, error) {
	if h == nil || len(h.PrePublish) == 0 {
		return options, nil
	}

	hctx := NewHookContext(ctx)
	var adopted *PublishOptions
	for _, hook := range h.PrePublish {
		replacement, err := hook(hctx, repo, options)
		if err != nil {
			return options, err
		}
		if replacement != nil && adopted == nil {
			adopted = replacement
		}
		if hctx.StopChain {
			break
		}
	}
	if adopted != nil {
		return *adopted, nil
	}
	return options, nil
}

// executePostPublish runs the PostPublish chain.
func (h *Hooks) executePostPublish(ctx context.Context, repo *Repository, options PublishOptions) error {
	if h == nil || len(h.PostPublish) == 0 {
		return nil
	}

	hctx := NewHookContext(ctx)
	for _, hook := range h.PostPublish {
		if err := hook(hctx, repo, options); err != nil {
			return err
		}
		if hctx.StopChain {
			break
		}
	}
	return nil
}
