// Package domain provides building blocks shared by domain services.
package domain

import (
	"context"
)

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	AfterCreate HookEvent = "after_create"
	AfterUpdate HookEvent = "after_update"
	AfterDelete HookEvent = "after_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, payload T) error

// HookRegistry stores lifecycle hooks for a payload type.
// Registration happens during wiring; Run is safe for concurrent use afterwards.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, payload T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of hooks registered for event.
func (r *HookRegistry[T]) Len(event HookEvent) int {
	return len(r.hooks[event])
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}

// OnAfterUpdate registers a hook to run after update or patch.
func (r *HookRegistry[T]) OnAfterUpdate(hook Hook[T]) {
	r.On(AfterUpdate, hook)
}

// OnAfterDelete registers a hook to run after delete.
func (r *HookRegistry[T]) OnAfterDelete(hook Hook[T]) {
	r.On(AfterDelete, hook)
}

// OnAll registers the same hook for every mutation event.
func (r *HookRegistry[T]) OnAll(hook Hook[T]) {
	r.On(AfterCreate, hook)
	r.On(AfterUpdate, hook)
	r.On(AfterDelete, hook)
}
