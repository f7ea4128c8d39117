package service

import (
	"context"
	"errors"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

// ownedGuard loads a resource and checks the principal may act on it.
// The authorizer is only consulted once the resource is known to exist.
type ownedGuard[T domain.Owned] struct {
	load     func(ctx context.Context, id string) (T, error)
	authz    ports.Authorizer
	notFound error
}

func (g ownedGuard[T]) check(ctx context.Context, principal domain.Principal, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, g.notFound
	}

	res, err := g.load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return zero, g.notFound
		}
		return zero, domain.Dependency("load resource", err)
	}

	if g.authz.Authorize(principal, res.OwnerID()) == domain.Deny {
		return zero, domain.ErrForbidden
	}
	return res, nil
}
