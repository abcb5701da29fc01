package httpapi

import (
	"context"
	"net/http"
)

type contextKey string

const routeContextKey contextKey = "route_pattern"

// routeLabel is filled by the matched route so outer middleware can label metrics with the
// pattern instead of the raw path.
type routeLabel struct {
	pattern string
}

func withRouteLabel(ctx context.Context) (context.Context, *routeLabel) {
	label := &routeLabel{}
	return context.WithValue(ctx, routeContextKey, label), label
}

func routeLabelFromContext(ctx context.Context) (*routeLabel, bool) {
	label, ok := ctx.Value(routeContextKey).(*routeLabel)
	return label, ok
}

func labelRoute(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := routeLabelFromContext(r.Context()); ok {
			label.pattern = pattern
		}
		next.ServeHTTP(w, r)
	})
}
