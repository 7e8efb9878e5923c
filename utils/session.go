package utils

import (
	"context"

	"storeit/models"
)

type ctxKey int

const (
	sessionUserKey ctxKey = iota
	requestMetaKey
)

// RequestMeta describes the HTTP request an operation runs under.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

func WithSessionUser(ctx context.Context, user models.SessionUser) context.Context {
	return context.WithValue(ctx, sessionUserKey, user)
}

func SessionUserFromContext(ctx context.Context) (models.SessionUser, bool) {
	user, ok := ctx.Value(sessionUserKey).(models.SessionUser)
	if !ok || user.ID == "" {
		return models.SessionUser{}, false
	}
	return user, true
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, meta)
}

func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey).(RequestMeta)
	return meta, ok
}
