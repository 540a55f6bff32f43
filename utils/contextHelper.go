package utils

import "context"

type contextKey string

const (
	contextKeyUserId        contextKey = "userId"
	contextKeyUsername      contextKey = "username"
	contextKeyCorrelationId contextKey = "correlationId"
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(contextKeyUserId).(int)
	return v, ok
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, contextKeyUserId, userId)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(contextKeyUsername).(string)
	return v, ok
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKeyUsername, username)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(contextKeyCorrelationId).(string)
	return v, ok
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, contextKeyCorrelationId, correlationId)
}
