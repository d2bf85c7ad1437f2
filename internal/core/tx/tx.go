// Package tx defines the transaction boundary contract used by domain
// services, keeping them free of storage imports.
package tx

import "context"

// Runner executes fn inside a database transaction carried in the context.
// Nested calls join the outer transaction.
type Runner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopRunner runs fn without any transaction. Used in tests.
type NopRunner struct{}

// RunInTransaction implements Runner.
func (NopRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
