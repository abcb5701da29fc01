package httpapi

import (
	"net/http"

	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/metrics"
)

type RouterOptions struct {
	Logger             *logging.Logger
	Metrics            *metrics.Manager
	CORSAllowedOrigins []string
	// AdminToken protects the editing routes; empty leaves them open.
	AdminToken string
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.Metrics)
	registerPublicRoutes(mux, handler)
	registerAdminRoutes(mux, handler, opts.AdminToken)

	return RequestTracing(RequestLogging(logger, opts.Metrics, CORS(opts.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
