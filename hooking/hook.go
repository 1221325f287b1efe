// Package hooking lets observers attach to register-level activity without
// the observed object knowing who is listening.
package hooking

import "reflect"

// HookPos names a site at which a hook can be triggered.
type HookPos struct {
	Name string
}

// HookCtx is passed to every hook invocation. Domain is the object that
// triggered the hook, Pos where it happened. Item carries the primary payload
// (for example a journal entry) and Detail any extra information.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase provides the bookkeeping for types that implement Hookable.
// The zero value is ready to use.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook registers a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

// RemoveHook unregisters a hook. Unknown hooks are ignored.
func (h *HookableBase) RemoveHook(hook Hook) {
	if !isComparable(hook) {
		return
	}

	for i, registered := range h.hookList {
		if isComparable(registered) && registered == hook {
			h.hookList = append(h.hookList[:i], h.hookList[i+1:]...)
			return
		}
	}
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	if !isComparable(hook) {
		return
	}

	for _, registered := range h.hookList {
		if isComparable(registered) && registered == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the registered hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

// Func values are not comparable and would panic on ==.
func isComparable(hook Hook) bool {
	return reflect.TypeOf(hook).Comparable()
}
