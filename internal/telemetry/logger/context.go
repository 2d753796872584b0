package logger

import "context"

type contextKey string

const (
	loggerKey   contextKey = "minikv.logger"
	connIDKey   contextKey = "minikv.conn_id"
	clientIDKey contextKey = "minikv.client_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithConnID tags the context with a connection id.
func WithConnID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, connIDKey, connID)
}

// ConnIDFromContext returns the connection id, or "".
func ConnIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connIDKey).(string); ok {
		return id
	}
	return ""
}

// WithClientID tags the context with the client slot id.
func WithClientID(ctx context.Context, clientID int) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// ClientIDFromContext returns the client slot id and whether one was set.
func ClientIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(clientIDKey).(int)
	return id, ok
}

// L is FromContext enriched with the connection and client ids found in ctx.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if connID := ConnIDFromContext(ctx); connID != "" {
		l = l.With("conn_id", connID)
	}
	if clientID, ok := ClientIDFromContext(ctx); ok {
		l = l.With("client_id", clientID)
	}
	return l
}
