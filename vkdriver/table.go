package vkdriver

import (
	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/internal/handle"
)

// table maps opaque handles to the driver objects behind them. All tables of
// a Driver share one id sequence so a handle is never reused.
type table[T any] struct {
	kind gfx.Kind
	ids  *uint64
	objs map[gfx.Handle]T
}

func newTable[T any](kind gfx.Kind, ids *uint64) *table[T] {
	return &table[T]{
		kind: kind,
		ids:  ids,
		objs: map[gfx.Handle]T{},
	}
}

func (t *table[T]) add(obj T) gfx.Handle {
	*t.ids++
	h := gfx.Handle{Kind: t.kind, ID: *t.ids}
	t.objs[h] = obj
	return h
}

func (t *table[T]) get(h gfx.Handle) (T, error) {
	obj, ok := t.objs[h]
	if !ok || h.Kind != t.kind {
		var zero T
		return zero, errors.Wrapf(handle.ErrNotLive, "%s %s", t.kind, h)
	}
	return obj, nil
}

func (t *table[T]) remove(h gfx.Handle) (T, bool) {
	obj, ok := t.objs[h]
	if ok {
		delete(t.objs, h)
	}
	return obj, ok
}

func (t *table[T]) len() int {
	return len(t.objs)
}
