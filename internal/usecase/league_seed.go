package usecase

import (
	"context"

	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/team"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "t1", Name: "ستارز", City: "الرباط"},
		{ID: "t2", Name: "فينيكس", City: "الدار البيضاء"},
		{ID: "t3", Name: "المجرة", City: "فاس"},
	}
}

func SeedMatches() []fixture.Match {
	return []fixture.Match{
		{ID: "m1", HomeID: "t1", AwayID: "t2", Date: "2025-09-10", Time: "18:00", Venue: "ستاد النجوم", HomeGoals: fixture.Goals(2), AwayGoals: fixture.Goals(1)},
		{ID: "m2", HomeID: "t3", AwayID: "t1", Date: "2025-09-15", Time: "20:00", Venue: "ملعب المجرة"},
	}
}

// SeedIfEmpty fills an empty teams or matches collection with demo data and writes it out like
// any other local edit. It reports whether anything was seeded.
func (s *LeagueSession) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return false, err
	}
	return s.seedIfEmptyLocked(ctx), nil
}

func (s *LeagueSession) seedIfEmptyLocked(ctx context.Context) bool {
	seeded := false
	if len(s.mirror.Teams()) == 0 {
		s.commitTeamsLocked(ctx, SeedTeams())
		seeded = true
	}
	if len(s.mirror.Matches()) == 0 {
		s.commitMatchesLocked(ctx, SeedMatches())
		seeded = true
	}
	if seeded {
		s.logger.InfoContext(ctx, "seeded demo league data",
			"teams", len(s.mirror.Teams()),
			"matches", len(s.mirror.Matches()),
		)
	}
	return seeded
}
