package cache

import (
	"context"
	"strings"
	"time"

	"github.com/ironlog/ironlog/internal"
)

// Ownership remembers positive ownership answers of another checker.
// Owner columns never change once a row exists, so a cached "yes" stays
// true; a deleted row is still reported missing by the handler's own
// scoped query. Negative answers and errors are never cached.
type Ownership struct {
	next  internal.OwnershipChecker
	cache Cache[bool]
	ttl   time.Duration
}

// NewOwnership wraps next with c. Entries live for ttl.
func NewOwnership(next internal.OwnershipChecker, c Cache[bool], ttl time.Duration) *Ownership {
	return &Ownership{next: next, cache: c, ttl: ttl}
}

// OwnedRowExists implements internal.OwnershipChecker.
func (o *Ownership) OwnedRowExists(ctx context.Context, table, id, ownerField, ownerID string) (bool, error) {
	key := strings.Join([]string{"owner", table, ownerField, id, ownerID}, ":")
	return GetOrSet(ctx, o.cache, key, func(ctx context.Context) (bool, time.Duration, error) {
		ok, err := o.next.OwnedRowExists(ctx, table, id, ownerField, ownerID)
		if err != nil || !ok {
			return false, -1, err
		}
		return true, o.ttl, nil
	})
}

var _ internal.OwnershipChecker = (*Ownership)(nil)
