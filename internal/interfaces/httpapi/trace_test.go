package httpapi

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/starleague/internal/platform/logging"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.ListStandings", want: true},
		{name: "validation span", in: "httpapi.Handler.validateRequest", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "usecase span", in: "usecase.LeagueSession.CreateTeam", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHandlerStartSpan_SkipsRequestsWithoutParent(t *testing.T) {
	api := newTestAPI(t, leagueFixture())
	h := NewHandler(api.session, logging.NewNop())

	ctx := context.Background()
	got, span := h.startSpan(ctx, "httpapi.Handler.ListTeams")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected the context to be returned unchanged")
	}
	if trace.SpanFromContext(got).SpanContext().IsValid() {
		t.Fatalf("expected no span for a request without a parent span")
	}
}
