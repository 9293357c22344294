package audit

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"userhub.org/internal/auth"
	"userhub.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit entry enriched with request and user context.
// Events cover the auth-relevant actions: user.registered, auth.login,
// auth.denied, ratelimit.throttled.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}

	zfields := []zap.Field{
		zap.String("type", "audit"),
		zap.String("event", event),
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		zfields = append(zfields, zap.String("request_id", rid))
	}
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		zfields = append(zfields, zap.String("user_id", claims.Subject))
	}
	if len(fields) > 0 {
		zfields = append(zfields, zap.Any("fields", fields))
	}

	obs.Logger().Info(event, zfields...)
	return nil
}
