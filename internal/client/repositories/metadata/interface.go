// Package metadata is a scoped key/value repository over the console's
// sqlite database. Each scope is an independent namespace of keys; the
// session store keeps one scope per browsing session.
package metadata

import (
	"context"
)

type Repository interface {
	Set(ctx context.Context, key string, value []byte) error
	// List returns every key of the scope; an empty scope yields an
	// empty map.
	List(ctx context.Context) (map[string][]byte, error)
	// Clear removes every key of the scope.
	Clear(ctx context.Context) error
}
