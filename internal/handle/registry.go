package handle

import (
	"github.com/cockroachdb/errors"
)

type entry struct {
	handle  Handle
	owner   Handle
	release func()
}

// Registry records which handles are owned, borrowed or merely referenced.
// Owned handles are released through the registry only, in reverse order of
// acquisition. Borrowed handles are never released; they disappear with their
// lender. A Registry is not safe for concurrent use.
type Registry struct {
	stack    []*entry
	owned    map[Handle]*entry
	borrowed map[Handle]Handle
	refs     map[Handle][]Handle
}

func NewRegistry() *Registry {
	return &Registry{
		owned:    map[Handle]*entry{},
		borrowed: map[Handle]Handle{},
		refs:     map[Handle][]Handle{},
	}
}

// Own records h as exclusively owned by owner and pushes its release action.
// owner may be the null handle for top-level objects.
func (r *Registry) Own(h, owner Handle, release func()) error {
	if h.Null() {
		return errors.Newf("own: null %s handle", h.Kind)
	}
	if r.Live(h) {
		return errors.Newf("own: %s already registered", h)
	}
	if !owner.Null() && !r.Live(owner) {
		return errors.Wrapf(ErrNotLive, "own %s: owner %s", h, owner)
	}
	e := &entry{handle: h, owner: owner, release: release}
	r.stack = append(r.stack, e)
	r.owned[h] = e
	return nil
}

// Borrow records h as lent by lender. It is dropped, never released, when the
// lender goes away.
func (r *Registry) Borrow(h, lender Handle) error {
	if h.Null() {
		return errors.Newf("borrow: null %s handle", h.Kind)
	}
	if !r.Live(lender) {
		return errors.Wrapf(ErrNotLive, "borrow %s: lender %s", h, lender)
	}
	if r.Live(h) {
		return errors.Newf("borrow: %s already registered", h)
	}
	r.borrowed[h] = lender
	return nil
}

// Reference records that holder uses target without owning it. target cannot
// be released while holder is live.
func (r *Registry) Reference(holder, target Handle) error {
	if !r.Live(holder) {
		return errors.Wrapf(ErrNotLive, "reference holder %s", holder)
	}
	if !r.Live(target) {
		return errors.Wrapf(ErrNotLive, "reference target %s", target)
	}
	r.refs[holder] = append(r.refs[holder], target)
	return nil
}

// Live reports whether h is currently owned or borrowed.
func (r *Registry) Live(h Handle) bool {
	if _, ok := r.owned[h]; ok {
		return true
	}
	_, ok := r.borrowed[h]
	return ok
}

// Owns reports whether h is owned by the registry.
func (r *Registry) Owns(h Handle) bool {
	_, ok := r.owned[h]
	return ok
}

// Owner returns the owner recorded for an owned handle.
func (r *Registry) Owner(h Handle) (Handle, bool) {
	e, ok := r.owned[h]
	if !ok {
		return Handle{}, false
	}
	return e.owner, true
}

// Lender returns the handle that lent h.
func (r *Registry) Lender(h Handle) (Handle, bool) {
	l, ok := r.borrowed[h]
	return l, ok
}

// References returns the handles holder refers to.
func (r *Registry) References(holder Handle) []Handle {
	return append([]Handle(nil), r.refs[holder]...)
}

// Len returns the number of owned handles.
func (r *Registry) Len() int {
	return len(r.stack)
}

// Release runs the release action of h immediately. It is meant for transient
// objects; everything else is released by Unwind.
func (r *Registry) Release(h Handle) error {
	e, ok := r.owned[h]
	if !ok {
		return errors.Wrapf(ErrNotOwned, "release %s", h)
	}
	if d, ok := r.dependent(h); ok {
		return errors.Wrapf(ErrStillReferenced, "release %s: used by %s", h, d)
	}

	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i] == e {
			r.stack = append(r.stack[:i], r.stack[i+1:]...)
			break
		}
	}
	delete(r.owned, h)
	delete(r.refs, h)
	for b, lender := range r.borrowed {
		if lender == h {
			delete(r.borrowed, b)
			delete(r.refs, b)
		}
	}

	if e.release != nil {
		e.release()
	}
	return nil
}

// Unwind releases every owned handle, most recent first. Calling it again is a
// no-op.
func (r *Registry) Unwind() error {
	var errs error
	for len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		if err := r.Release(top.handle); err != nil {
			errs = errors.CombineErrors(errs, err)
			// Drop it anyway so a broken link cannot wedge the unwind.
			r.stack = r.stack[:len(r.stack)-1]
			delete(r.owned, top.handle)
			if top.release != nil {
				top.release()
			}
		}
	}
	return errs
}

func (r *Registry) dependent(h Handle) (Handle, bool) {
	for _, e := range r.stack {
		if e.owner == h {
			return e.handle, true
		}
	}
	for holder, targets := range r.refs {
		if holder == h {
			continue
		}
		for _, t := range targets {
			if t == h {
				return holder, true
			}
		}
	}
	return Handle{}, false
}
