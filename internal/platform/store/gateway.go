// Package store provides the key-value persistence gateway the domain
// components write their snapshots through.
package store

import (
	"context"
	"errors"
)

// Logical keys shared by every gateway backend.
const (
	KeyProducts     = "products"
	KeyTransactions = "transactions"
	KeyProfile      = "profile"
	KeyInsight      = "insight"
)

// ErrNotFound indicates the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// ErrUnavailable indicates the underlying store rejected or failed the call.
// Callers decide their own retry policy; the gateway never retries.
var ErrUnavailable = errors.New("store: unavailable")

// Gateway is the single-key persistence contract. Payloads are opaque JSON
// documents; a Save replaces the whole value atomically for that key.
type Gateway interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}
