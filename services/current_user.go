package services

import (
	"context"

	"storeit/models"
	"storeit/utils"
)

// CurrentUserResolver resolves the authenticated caller of an operation. A
// nil user with a nil error means nobody is signed in.
type CurrentUserResolver interface {
	CurrentUser(ctx context.Context) (*models.SessionUser, error)
}

// SessionResolver reads the user the auth middleware stored on the context.
type SessionResolver struct{}

func (SessionResolver) CurrentUser(ctx context.Context) (*models.SessionUser, error) {
	user, ok := utils.SessionUserFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ResolverFunc adapts a function to CurrentUserResolver.
type ResolverFunc func(ctx context.Context) (*models.SessionUser, error)

func (f ResolverFunc) CurrentUser(ctx context.Context) (*models.SessionUser, error) {
	return f(ctx)
}

const maxListLimit = 500

// clampLimit applies the default for non-positive limits and caps the rest.
func clampLimit(limit, def int) int64 {
	if limit <= 0 {
		return int64(def)
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return int64(limit)
}
