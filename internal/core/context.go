package core

import "context"

type contextKey string

const ctxKeyOrigin contextKey = "run_origin"

// Origin identifies who started a run. It is attached to run logs.
type Origin struct {
	IP        string
	UserAgent string
}

// ContextWithOrigin adds the run origin to ctx.
func ContextWithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, o)
}

// OriginFromContext returns the origin stored by ContextWithOrigin, or the
// zero Origin.
func OriginFromContext(ctx context.Context) Origin {
	o, _ := ctx.Value(ctxKeyOrigin).(Origin)
	return o
}

// logArgs returns the non-empty origin fields as slog key-value pairs.
func (o Origin) logArgs() []any {
	var args []any
	if o.IP != "" {
		args = append(args, "client_ip", o.IP)
	}
	if o.UserAgent != "" {
		args = append(args, "user_agent", o.UserAgent)
	}
	return args
}
