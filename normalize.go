package configarray

import (
	"context"
	"fmt"
)

// ExtraConfigTypes enables non-plain-object shapes inside the input list
// passed to New. Both default to disabled, matching the conservative default
// of rejecting shapes the caller hasn't opted into.
type ExtraConfigTypes struct {
	Array    bool
	Function bool
}

// Factory is a config entry supplied as a callable. It is invoked with the
// caller-supplied factory context and must return a plain entry, a nested
// list, or a Deferred value; returning another Factory fails normalization
// with ErrInvalidReturn.
type Factory func(factoryContext any) (any, error)

// Deferred represents a config value a factory could not produce
// synchronously. Normalize awaits it by calling Resolve; NormalizeSync
// rejects it outright with ErrAsyncNotSupported since it guarantees zero
// suspension.
type Deferred interface {
	Resolve(ctx context.Context) (any, error)
}

type deferredFunc func(ctx context.Context) (any, error)

func (f deferredFunc) Resolve(ctx context.Context) (any, error) { return f(ctx) }

// NewDeferred wraps a plain function as a Deferred value.
func NewDeferred(fn func(ctx context.Context) (any, error)) Deferred {
	return deferredFunc(fn)
}

func (ca *ConfigArray) normalizeItem(ctx context.Context, item any, factoryContext any, allowAsync bool) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch v := item.(type) {
	case map[string]any:
		e := Entry(v)
		if ca.preprocessConfig != nil {
			pe, err := ca.preprocessConfig(ca, e)
			if err != nil {
				return nil, err
			}
			e = pe
		}
		return []Entry{e}, nil

	case []any:
		if !ca.extraConfigTypes.Array {
			return nil, ErrUnexpectedArray
		}
		var out []Entry
		for _, sub := range v {
			flat, err := ca.normalizeItem(ctx, sub, factoryContext, allowAsync)
			if err != nil {
				return nil, err
			}
			out = append(out, flat...)
		}
		return out, nil

	case Factory:
		if !ca.extraConfigTypes.Function {
			return nil, ErrUnexpectedFunction
		}
		result, err := v(factoryContext)
		if err != nil {
			return nil, err
		}
		return ca.normalizeFactoryResult(ctx, result, factoryContext, allowAsync)

	case func(any) (any, error):
		return ca.normalizeItem(ctx, Factory(v), factoryContext, allowAsync)

	case Deferred:
		if !allowAsync {
			return nil, ErrAsyncNotSupported
		}
		resolved, err := v.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		return ca.normalizeFactoryResult(ctx, resolved, factoryContext, allowAsync)

	default:
		return nil, fmt.Errorf("configarray: unsupported config entry type %T", item)
	}
}

// normalizeFactoryResult handles whatever a Factory (or an awaited Deferred)
// produced. A factory returning another factory is always an error,
// regardless of whether arrays are enabled for plain nested lists.
func (ca *ConfigArray) normalizeFactoryResult(ctx context.Context, result any, factoryContext any, allowAsync bool) ([]Entry, error) {
	switch result.(type) {
	case Factory, func(any) (any, error):
		return nil, ErrInvalidReturn
	default:
		return ca.normalizeItem(ctx, result, factoryContext, allowAsync)
	}
}
