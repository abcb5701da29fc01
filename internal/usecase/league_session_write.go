package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/starleague/internal/domain/content"
	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/site"
	"github.com/riskibarqy/starleague/internal/domain/team"
	"github.com/riskibarqy/starleague/internal/platform/localcache"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// PendingPlayersKey holds registrations that could not reach the remote store.
	PendingPlayersKey = "players_pending"
)

type TeamInput struct {
	Name     string
	City     string
	Logo     string
	Group    string
	Password string
}

type MatchInput struct {
	HomeID    string
	AwayID    string
	Date      string
	Time      string
	Venue     string
	HomeGoals *int
	AwayGoals *int
	Category  string
	Round     int
}

type PlayerInput struct {
	Name     string
	TeamID   string
	Category string
	Position string
	Photo    string
}

type SiteInput struct {
	NameAr        string
	NameFr        string
	Logo          string
	PublicBaseURL string
}

// RegisteredPlayer reports where a registration landed. Queued means the remote push failed and
// the player was kept in the local cache.
type RegisteredPlayer struct {
	Player content.Player
	Key    string
	Queued bool
}

func (s *LeagueSession) CreateTeam(ctx context.Context, input TeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.CreateTeam", team.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return team.Team{}, err
	}
	newID, err := s.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}
	item, err := buildTeam(newID, input)
	if err != nil {
		return team.Team{}, err
	}

	current := s.mirror.Teams()
	next := make([]team.Team, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, item)
	s.commitTeamsLocked(ctx, next)
	return item, nil
}

func (s *LeagueSession) UpdateTeam(ctx context.Context, teamID string, input TeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.UpdateTeam", team.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return team.Team{}, err
	}
	teamID = strings.TrimSpace(teamID)
	item, err := buildTeam(teamID, input)
	if err != nil {
		return team.Team{}, err
	}

	current := s.mirror.Teams()
	next := make([]team.Team, 0, len(current))
	found := false
	for _, t := range current {
		if t.ID == teamID {
			t = item
			found = true
		}
		next = append(next, t)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	s.commitTeamsLocked(ctx, next)
	return item, nil
}

// DeleteTeam refuses to remove a team that any match still references.
func (s *LeagueSession) DeleteTeam(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.DeleteTeam", team.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return err
	}
	teamID = strings.TrimSpace(teamID)
	if fixture.ReferencesTeam(s.mirror.Matches(), teamID) {
		return fmt.Errorf("%w: team=%s", ErrTeamInUse, teamID)
	}

	current := s.mirror.Teams()
	next := make([]team.Team, 0, len(current))
	for _, t := range current {
		if t.ID != teamID {
			next = append(next, t)
		}
	}
	if len(next) == len(current) {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	s.commitTeamsLocked(ctx, next)
	return nil
}

func (s *LeagueSession) CreateMatch(ctx context.Context, input MatchInput) (fixture.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.CreateMatch", fixture.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return fixture.Match{}, err
	}
	newID, err := s.ids.NewID()
	if err != nil {
		return fixture.Match{}, fmt.Errorf("generate match id: %w", err)
	}
	item, err := s.buildMatchLocked(newID, input)
	if err != nil {
		return fixture.Match{}, err
	}

	current := s.mirror.Matches()
	next := make([]fixture.Match, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, item)
	s.commitMatchesLocked(ctx, next)
	return item, nil
}

func (s *LeagueSession) UpdateMatch(ctx context.Context, matchID string, input MatchInput) (fixture.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.UpdateMatch", fixture.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return fixture.Match{}, err
	}
	matchID = strings.TrimSpace(matchID)
	item, err := s.buildMatchLocked(matchID, input)
	if err != nil {
		return fixture.Match{}, err
	}

	current := s.mirror.Matches()
	next := make([]fixture.Match, 0, len(current))
	found := false
	for _, m := range current {
		if m.ID == matchID {
			m = item
			found = true
		}
		next = append(next, m)
	}
	if !found {
		return fixture.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	s.commitMatchesLocked(ctx, next)
	return item, nil
}

func (s *LeagueSession) DeleteMatch(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.DeleteMatch", fixture.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return err
	}
	matchID = strings.TrimSpace(matchID)

	current := s.mirror.Matches()
	next := make([]fixture.Match, 0, len(current))
	for _, m := range current {
		if m.ID != matchID {
			next = append(next, m)
		}
	}
	if len(next) == len(current) {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	s.commitMatchesLocked(ctx, next)
	return nil
}

// UpdateSite merges the non-empty fields into the site document.
func (s *LeagueSession) UpdateSite(ctx context.Context, input SiteInput) (site.Config, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.UpdateSite", site.Collection)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritableLocked(); err != nil {
		return site.Config{}, err
	}

	cfg := s.mirror.State().Site
	fields := make(map[string]any)
	if v := strings.TrimSpace(input.NameAr); v != "" {
		cfg.NameAr = v
		fields["nameAr"] = v
	}
	if v := strings.TrimSpace(input.NameFr); v != "" {
		cfg.NameFr = v
		fields["nameFr"] = v
	}
	if v := strings.TrimSpace(input.Logo); v != "" {
		cfg.Logo = v
		fields["logo"] = v
	}
	if v := site.NormalizeBaseURL(input.PublicBaseURL); v != "" {
		cfg.PublicBaseURL = v
		fields["publicBaseUrl"] = v
	}
	if len(fields) == 0 {
		return site.Config{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	s.mirror.setSite(cfg)
	s.publishLocked(site.Collection, false)
	s.storeCache(ctx, site.Collection)
	s.dispatch(ctx, site.Collection, writePatch, func(ctx context.Context) error {
		return s.remote.Update(ctx, site.Collection, fields)
	})
	return cfg, nil
}

// RegisterPlayer pushes a new player registration. When the push fails the registration is kept
// in the local cache instead, so the caller never loses it.
func (s *LeagueSession) RegisterPlayer(ctx context.Context, input PlayerInput) (RegisteredPlayer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.RegisterPlayer", content.PlayersCollection)
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.Name == "" {
		return RegisteredPlayer{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if input.Category != "" && fixture.NormalizeCategory(input.Category) == "" {
		return RegisteredPlayer{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
	}

	s.mu.Lock()
	if err := s.checkWritableLocked(); err != nil {
		s.mu.Unlock()
		return RegisteredPlayer{}, err
	}
	idx := team.NewIndex(s.mirror.Teams())
	s.mu.Unlock()

	if !idx.Has(input.TeamID) {
		return RegisteredPlayer{}, fmt.Errorf("%w: unknown team %q", ErrInvalidInput, input.TeamID)
	}
	newID, err := s.ids.NewID()
	if err != nil {
		return RegisteredPlayer{}, fmt.Errorf("generate player id: %w", err)
	}

	player := content.Player{
		ID:       newID,
		Name:     input.Name,
		TeamID:   input.TeamID,
		Club:     idx[input.TeamID].Name,
		Category: fixture.NormalizeCategory(input.Category),
		Position: strings.TrimSpace(input.Position),
		Photo:    strings.TrimSpace(input.Photo),
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	key, err := s.remote.Push(pushCtx, content.PlayersCollection, player)
	if err == nil {
		s.metrics.IncRemoteWrite(content.PlayersCollection)
		return RegisteredPlayer{Player: player, Key: key}, nil
	}

	s.metrics.IncRemoteWriteError(content.PlayersCollection)
	s.logger.WarnContext(ctx, "player push failed, keeping registration locally",
		"player_id", player.ID,
		"team_id", player.TeamID,
		"error", err,
	)
	s.pendingMu.Lock()
	pending := loadPending(ctx, s)
	pending = append(pending, player)
	s.cache.Store(ctx, PendingPlayersKey, pending)
	s.pendingMu.Unlock()
	return RegisteredPlayer{Player: player, Queued: true}, nil
}

// PendingPlayers lists registrations kept locally after a failed push.
func (s *LeagueSession) PendingPlayers(ctx context.Context) []content.Player {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return loadPending(ctx, s)
}

// FlushPendingPlayers pushes the queued registrations again. Players whose push still fails
// stay queued. It returns how many were delivered.
func (s *LeagueSession) FlushPendingPlayers(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.FlushPendingPlayers", content.PlayersCollection)
	defer span.End()

	s.mu.Lock()
	err := s.checkWritableLocked()
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	pending := loadPending(ctx, s)
	if len(pending) == 0 {
		return 0, nil
	}

	remaining := make([]content.Player, 0, len(pending))
	var lastErr error
	for _, player := range pending {
		pushCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
		_, err := s.remote.Push(pushCtx, content.PlayersCollection, player)
		cancel()
		if err != nil {
			s.metrics.IncRemoteWriteError(content.PlayersCollection)
			remaining = append(remaining, player)
			lastErr = err
			continue
		}
		s.metrics.IncRemoteWrite(content.PlayersCollection)
	}

	if len(remaining) == 0 {
		s.cache.Remove(ctx, PendingPlayersKey)
	} else {
		s.cache.Store(ctx, PendingPlayersKey, remaining)
		s.logger.WarnContext(ctx, "pending players still queued", "remaining", len(remaining), "error", lastErr)
	}
	return len(pending) - len(remaining), nil
}

func loadPending(ctx context.Context, s *LeagueSession) []content.Player {
	return nonNil(localcache.Load(ctx, s.cache, PendingPlayersKey, []content.Player{}))
}

func (s *LeagueSession) checkWritableLocked() error {
	switch s.mode {
	case SessionModeClosed:
		return ErrSessionClosed
	case SessionModeIdle:
		return fmt.Errorf("%w: session not initialized", ErrDependencyUnavailable)
	default:
		return nil
	}
}

func (s *LeagueSession) commitTeamsLocked(ctx context.Context, teams []team.Team) {
	s.mirror.setTeams(teams)
	s.commitLocked(ctx, team.Collection, team.RemoteCollection(teams))
}

func (s *LeagueSession) commitMatchesLocked(ctx context.Context, matches []fixture.Match) {
	s.mirror.setMatches(matches)
	s.commitLocked(ctx, fixture.Collection, fixture.RemoteCollection(matches))
}

// commitLocked publishes a local edit, mirrors it to the local cache unconditionally and sends
// the whole collection to the remote store in the background.
func (s *LeagueSession) commitLocked(ctx context.Context, collection string, remoteValue []map[string]any) {
	s.recordSizes()
	s.publishLocked(collection, affectsDerived(collection))
	s.storeCache(ctx, collection)
	s.dispatch(ctx, collection, writeReplace, func(ctx context.Context) error {
		if len(remoteValue) == 0 {
			return s.remote.Remove(ctx, collection)
		}
		return s.remote.Write(ctx, collection, remoteValue)
	})
}

// writeKind tells dispatch whether a queued write may be dropped in favour of a newer one.
type writeKind int

const (
	// writeReplace sends the whole collection, so a newer replace makes it redundant.
	writeReplace writeKind = iota
	// writePatch sends only some fields and is always delivered.
	writePatch
)

// dispatch runs a remote write on the write pool. Writes for one collection run one at a time
// in dispatch order. A replace superseded by a newer replace for the same collection is skipped;
// patches never are. Failures are logged and counted; the optimistic local state stands.
func (s *LeagueSession) dispatch(ctx context.Context, collection string, kind writeKind, write func(context.Context) error) {
	s.writeMu.Lock()
	ticket := writeTicket{collection: collection, n: s.writeIssued[collection]}
	s.writeIssued[collection]++
	if kind == writeReplace {
		s.writeSeq[collection]++
	}
	seq := s.writeSeq[collection]
	s.pending++
	s.writeMu.Unlock()

	baseCtx := context.WithoutCancel(ctx)
	s.writeWG.Add(1)
	err := s.writes.Submit(func() {
		defer s.finishWrite()

		s.writeMu.Lock()
		for s.writeTurn[collection] != ticket.n {
			s.writeTurnCond.Wait()
		}
		superseded := kind == writeReplace && s.writeSeq[collection] != seq
		s.writeMu.Unlock()
		defer s.releaseTurn(ticket)
		if superseded {
			return
		}

		writeCtx, cancel := context.WithTimeout(baseCtx, s.cfg.WriteTimeout)
		defer cancel()

		start := time.Now()
		s.metrics.IncRemoteWrite(collection)
		if err := write(writeCtx); err != nil {
			s.metrics.IncRemoteWriteError(collection)
			s.writeMu.Lock()
			s.failedWrites++
			s.writeMu.Unlock()
			s.logger.WarnContext(writeCtx, "remote write failed",
				"collection", collection,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
		}
	})
	if err != nil {
		s.releaseTurn(ticket)
		s.finishWrite()
		s.metrics.IncRemoteWriteError(collection)
		s.logger.WarnContext(ctx, "remote write not scheduled", "collection", collection, "error", err)
	}
}

// writeTicket is a write's place in its collection's queue.
type writeTicket struct {
	collection string
	n          uint64
}

// releaseTurn marks ticket done and hands the collection to the next ticket. A ticket released
// before its turn (never scheduled) is skipped when the turn reaches it.
func (s *LeagueSession) releaseTurn(ticket writeTicket) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTurn[ticket.collection] != ticket.n {
		s.writeDone[ticket] = struct{}{}
		return
	}
	next := ticket.n + 1
	for {
		skip := writeTicket{collection: ticket.collection, n: next}
		if _, ok := s.writeDone[skip]; !ok {
			break
		}
		delete(s.writeDone, skip)
		next++
	}
	s.writeTurn[ticket.collection] = next
	s.writeTurnCond.Broadcast()
}

func (s *LeagueSession) finishWrite() {
	s.writeMu.Lock()
	s.pending--
	s.writeMu.Unlock()
	s.writeWG.Done()
}

func buildTeam(teamID string, input TeamInput) (team.Team, error) {
	item := team.Team{
		ID:       strings.TrimSpace(teamID),
		Name:     strings.TrimSpace(input.Name),
		City:     strings.TrimSpace(input.City),
		Logo:     strings.TrimSpace(input.Logo),
		Group:    strings.ToUpper(strings.TrimSpace(input.Group)),
		Password: input.Password,
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return item, nil
}

func (s *LeagueSession) buildMatchLocked(matchID string, input MatchInput) (fixture.Match, error) {
	item := fixture.Match{
		ID:        strings.TrimSpace(matchID),
		HomeID:    strings.TrimSpace(input.HomeID),
		AwayID:    strings.TrimSpace(input.AwayID),
		Date:      strings.TrimSpace(input.Date),
		Time:      strings.TrimSpace(input.Time),
		Venue:     strings.TrimSpace(input.Venue),
		HomeGoals: input.HomeGoals,
		AwayGoals: input.AwayGoals,
		Round:     input.Round,
	}
	if err := item.Validate(); err != nil {
		return fixture.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Category != "" {
		item.Category = fixture.NormalizeCategory(input.Category)
		if item.Category == "" {
			return fixture.Match{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
		}
	}
	if item.Date != "" {
		if _, err := time.Parse(dateLayout, item.Date); err != nil {
			return fixture.Match{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if item.Time != "" {
		if _, err := time.Parse(timeLayout, item.Time); err != nil {
			return fixture.Match{}, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
		}
	}

	idx := team.NewIndex(s.mirror.Teams())
	if !idx.Has(item.HomeID) || !idx.Has(item.AwayID) {
		return fixture.Match{}, fmt.Errorf("%w: home and away must be existing teams", ErrInvalidInput)
	}
	return item, nil
}
