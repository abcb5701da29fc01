package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/usecase"
)

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
	maxRequestBodyBytes = 1 << 20
)

type Handler struct {
	session   *usecase.LeagueSession
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(session *usecase.LeagueSession, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		session:   session,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(h.session.Mode()),
	})
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.GetSyncStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.session.Status())
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := h.startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func parseOptionalInt(raw, name string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return &v, nil
}

func parseLimit(raw string, fallback, max int) (int, error) {
	v, err := parseOptionalInt(raw, "latest")
	if err != nil {
		return 0, err
	}
	if v == nil {
		return fallback, nil
	}
	if *v <= 0 {
		return 0, fmt.Errorf("%w: latest must be positive", usecase.ErrInvalidInput)
	}
	if *v > max {
		return max, nil
	}
	return *v, nil
}
