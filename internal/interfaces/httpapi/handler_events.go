package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/starleague/internal/usecase"
)

const (
	eventBufferSize   = 16
	eventKeepAliveGap = 25 * time.Second
)

// StreamEvents pushes one server-sent event per applied change so pages can re-render. Slow
// readers lose intermediate events; each event carries the mirror version, so a client that
// sees a gap refetches.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "httpapi.Handler.StreamEvents")
	defer span.End()

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	events := make(chan usecase.ChangeEvent, eventBufferSize)
	unsubscribe := h.session.Subscribe(func(ev usecase.ChangeEvent) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "event stream flush unsupported", "error", err)
		return
	}

	keepAlive := time.NewTicker(eventKeepAliveGap)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case ev := <-events:
			payload, err := sonic.Marshal(changeEventDTO{
				Collection: ev.Collection,
				Version:    ev.Version,
				Mode:       string(ev.Mode),
			})
			if err != nil {
				h.logger.WarnContext(ctx, "encode change event failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
