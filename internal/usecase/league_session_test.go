package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/starleague/internal/domain/content"
	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/team"
	remotemock "github.com/riskibarqy/starleague/internal/mocks/domain/remote"
	"github.com/riskibarqy/starleague/internal/platform/id"
	"github.com/riskibarqy/starleague/internal/platform/localcache"
	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

const (
	teamsJSON   = `{"t1":{"name":"Stars","city":"Rabat","group":"a"},"t2":{"name":"Phoenix","group":"a"},"t3":{"name":"Galaxy","group":"b"}}`
	matchesJSON = `[{"id":"m1","homeId":"t1","awayId":"t2","date":"2025-09-10","homeGoals":2,"awayGoals":1,"category":"U11","round":1},{"id":"m2","homeId":"t3","awayId":"t1","date":"2025-09-15","round":2}]`
)

type capturedFeeds struct {
	mu  sync.Mutex
	fns map[string]func(snapshot.Snapshot)
}

func (c *capturedFeeds) fire(t *testing.T, path string, snap snapshot.Snapshot) {
	t.Helper()
	c.mu.Lock()
	fn, ok := c.fns[path]
	c.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for %s", path)
	}
	fn(snap)
}

func (c *capturedFeeds) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

func raw(path, body string) snapshot.Snapshot {
	return snapshot.Snapshot{Path: path, Raw: []byte(body)}
}

func expectReads(store *remotemock.Store, reads map[string]snapshot.Snapshot, failures map[string]error) {
	for path, snap := range reads {
		store.On("Read", mock.Anything, path).Return(snap, nil).Once()
	}
	for path, err := range failures {
		store.On("Read", mock.Anything, path).Return(snapshot.Snapshot{}, err).Once()
	}
}

func expectSubscribes(t *testing.T, store *remotemock.Store) *capturedFeeds {
	feeds := &capturedFeeds{fns: make(map[string]func(snapshot.Snapshot))}
	sub := remotemock.NewSubscription(t)
	sub.On("Close").Return(nil).Maybe()
	store.
		On("Subscribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			feeds.mu.Lock()
			feeds.fns[args.String(1)] = args.Get(2).(func(snapshot.Snapshot))
			feeds.mu.Unlock()
		}).
		Return(sub, nil)
	return feeds
}

func newTestSession(t *testing.T, store *remotemock.Store, cache *localcache.Adapter, cfg LeagueSessionConfig) *LeagueSession {
	t.Helper()
	if cache == nil {
		cache = localcache.NewAdapter(localcache.NewMemoryBackend(), localcache.Options{Logger: logging.NewNop()})
	}
	session, err := NewLeagueSession(store, cache, id.NewSequence("n"), cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("new league session: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close(context.Background())
	})
	return session
}

func onlineSession(t *testing.T, cfg LeagueSessionConfig) (*LeagueSession, *remotemock.Store, *capturedFeeds) {
	t.Helper()
	store := remotemock.NewStore(t)
	expectReads(store, map[string]snapshot.Snapshot{
		"teams":   raw("teams", teamsJSON),
		"matches": raw("matches", matchesJSON),
		"site":    {Path: "site"},
	}, nil)
	feeds := expectSubscribes(t, store)
	session := newTestSession(t, store, nil, cfg)
	if err := session.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return session, store, feeds
}

func TestLeagueSession_InitOnlineLoadsAndSubscribes(t *testing.T) {
	t.Parallel()

	session, _, feeds := onlineSession(t, LeagueSessionConfig{})

	if session.Mode() != SessionModeOnline {
		t.Fatalf("unexpected mode: %s", session.Mode())
	}
	if feeds.count() != len(CoreCollections) {
		t.Fatalf("unexpected subscription count: got=%d want=%d", feeds.count(), len(CoreCollections))
	}
	state := session.State()
	if len(state.Teams) != 3 || len(state.Matches) != 2 {
		t.Fatalf("unexpected mirror size: teams=%d matches=%d", len(state.Teams), len(state.Matches))
	}

	standings := session.Derived().Standings
	if len(standings) != 3 {
		t.Fatalf("unexpected standings count: %d", len(standings))
	}
	if standings[0].TeamID != "t1" || standings[0].Points != 3 {
		t.Fatalf("unexpected leader: %+v", standings[0])
	}
	if got := session.Site().NameFr; got == "" {
		t.Fatalf("expected default site config")
	}
}

func TestLeagueSession_InitFallsBackToCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := localcache.NewAdapter(localcache.NewMemoryBackend(), localcache.Options{Logger: logging.NewNop()})
	cache.Store(ctx, team.Collection, team.RemoteCollection([]team.Team{{ID: "t9", Name: "Cached"}}))

	store := remotemock.NewStore(t)
	expectReads(store, map[string]snapshot.Snapshot{
		"matches": raw("matches", matchesJSON),
		"site":    {Path: "site"},
	}, map[string]error{
		"teams": errors.New("network down"),
	})

	session := newTestSession(t, store, cache, LeagueSessionConfig{})
	if err := session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if session.Mode() != SessionModeOffline {
		t.Fatalf("unexpected mode: %s", session.Mode())
	}
	state := session.State()
	if len(state.Teams) != 1 || state.Teams[0].ID != "t9" {
		t.Fatalf("expected cached teams, got %+v", state.Teams)
	}
	if len(state.Matches) != 0 {
		t.Fatalf("offline load must not use remote matches, got %d", len(state.Matches))
	}
	if session.Status().Subscriptions != 0 {
		t.Fatalf("offline session must not subscribe")
	}
}

func TestLeagueSession_AuxiliaryFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	store := remotemock.NewStore(t)
	expectReads(store, map[string]snapshot.Snapshot{
		"teams":   raw("teams", teamsJSON),
		"matches": raw("matches", matchesJSON),
		"site":    {Path: "site"},
		"videos":  raw("videos", `[{"embed":"https://youtu.be/x"}]`),
	}, map[string]error{
		"news": errors.New("permission denied"),
	})
	expectSubscribes(t, store)

	session := newTestSession(t, store, nil, LeagueSessionConfig{Collections: []string{"news", "videos"}})
	if err := session.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	if session.Mode() != SessionModeOnline {
		t.Fatalf("auxiliary failure must not switch to offline, got %s", session.Mode())
	}
	state := session.State()
	if state.News == nil || len(state.News) != 0 {
		t.Fatalf("expected empty news, got %+v", state.News)
	}
	if len(state.Videos) != 1 {
		t.Fatalf("expected one video, got %d", len(state.Videos))
	}
}

func TestLeagueSession_IgnoresFirstEmptyTeamsNotification(t *testing.T) {
	t.Parallel()

	session, _, feeds := onlineSession(t, LeagueSessionConfig{})

	feeds.fire(t, team.Collection, snapshot.Snapshot{Path: team.Collection})
	if got := len(session.State().Teams); got != 3 {
		t.Fatalf("first empty notification must be ignored, teams=%d", got)
	}

	feeds.fire(t, team.Collection, snapshot.Snapshot{Path: team.Collection})
	if got := len(session.State().Teams); got != 0 {
		t.Fatalf("second empty notification must clear teams, teams=%d", got)
	}
	if got := len(session.Derived().Standings); got != 0 {
		t.Fatalf("standings must follow the cleared teams, got %d", got)
	}
}

func TestLeagueSession_NotificationRecomputesStandings(t *testing.T) {
	t.Parallel()

	session, _, feeds := onlineSession(t, LeagueSessionConfig{})

	var events []ChangeEvent
	unsubscribe := session.Subscribe(func(ev ChangeEvent) { events = append(events, ev) })
	defer unsubscribe()

	feeds.fire(t, fixture.Collection, raw("matches", `[{"id":"m1","homeId":"t1","awayId":"t2","homeGoals":0,"awayGoals":3}]`))

	if len(events) != 1 || events[0].Collection != fixture.Collection {
		t.Fatalf("unexpected events: %+v", events)
	}
	leader := events[0].Derived.Standings[0]
	if leader.TeamID != "t2" || leader.Points != 3 {
		t.Fatalf("unexpected leader after notification: %+v", leader)
	}
}

func TestLeagueSession_CreateTeamIsOptimisticWhenRemoteFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.On("Write", mock.Anything, team.Collection, mock.Anything).Return(errors.New("write rejected")).Once()

	created, err := session.CreateTeam(ctx, TeamInput{Name: "  Atlas ", Group: "c"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if created.ID != "n1" || created.Name != "Atlas" || created.Group != "C" {
		t.Fatalf("unexpected team: %+v", created)
	}
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}

	if !team.NewIndex(session.State().Teams).Has("n1") {
		t.Fatalf("created team missing from mirror")
	}
	cached, err := team.Decode(session.cache.LoadSnapshot(ctx, team.Collection))
	if err != nil {
		t.Fatalf("decode cached teams: %v", err)
	}
	if !team.NewIndex(cached).Has("n1") {
		t.Fatalf("created team missing from local cache")
	}
	if got := session.Status().FailedWrites; got != 1 {
		t.Fatalf("unexpected failed writes: %d", got)
	}
}

func TestLeagueSession_DeleteTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.On("Write", mock.Anything, team.Collection, mock.Anything).Return(nil).Maybe()

	testCases := []struct {
		name    string
		teamID  string
		wantErr error
	}{
		{name: "referenced by a match", teamID: "t1", wantErr: ErrTeamInUse},
		{name: "missing", teamID: "t404", wantErr: ErrNotFound},
	}
	for _, tc := range testCases {
		if err := session.DeleteTeam(ctx, tc.teamID); !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
	if got := len(session.State().Teams); got != 3 {
		t.Fatalf("rejected deletes must not change teams, got %d", got)
	}
}

func TestLeagueSession_DeletingLastMatchRemovesCollection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.On("Write", mock.Anything, fixture.Collection, mock.Anything).Return(nil).Maybe()
	store.On("Remove", mock.Anything, fixture.Collection).Return(nil).Once()

	for _, matchID := range []string{"m1", "m2"} {
		if err := session.DeleteMatch(ctx, matchID); err != nil {
			t.Fatalf("delete %s: %v", matchID, err)
		}
		if err := session.WaitWrites(ctx); err != nil {
			t.Fatalf("wait writes: %v", err)
		}
	}
	if got := len(session.State().Matches); got != 0 {
		t.Fatalf("expected no matches, got %d", got)
	}
}

func TestLeagueSession_CreateMatchValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.On("Write", mock.Anything, fixture.Collection, mock.Anything).Return(nil).Once()

	testCases := []struct {
		name  string
		input MatchInput
	}{
		{name: "same team", input: MatchInput{HomeID: "t1", AwayID: "t1"}},
		{name: "unknown team", input: MatchInput{HomeID: "t1", AwayID: "t404"}},
		{name: "bad date", input: MatchInput{HomeID: "t1", AwayID: "t2", Date: "10/09/2025"}},
		{name: "bad category", input: MatchInput{HomeID: "t1", AwayID: "t2", Category: "U99"}},
	}
	for _, tc := range testCases {
		if _, err := session.CreateMatch(ctx, tc.input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	created, err := session.CreateMatch(ctx, MatchInput{HomeID: "t2", AwayID: "t3", Date: "2025-10-01", Time: "17:30", Category: "u13", Round: 3})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if created.Category != "U13" || created.Played() {
		t.Fatalf("unexpected match: %+v", created)
	}
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}
}

func TestLeagueSession_SelectResetsUnavailableValues(t *testing.T) {
	t.Parallel()

	session, _, _ := onlineSession(t, LeagueSessionConfig{})

	var got []string
	unsubscribe := session.Subscribe(func(ev ChangeEvent) { got = append(got, ev.Collection) })

	round := 9
	view := session.Select(fixture.Selection{Category: "U15", Group: "A", Round: &round})
	if view.Selection.Category != "" || view.Selection.Round != nil {
		t.Fatalf("unavailable values must reset, got %+v", view.Selection)
	}
	if view.Selection.Group != "A" {
		t.Fatalf("available group must be kept, got %q", view.Selection.Group)
	}
	if session.Derived().Fixtures.Selection.Group != "A" {
		t.Fatalf("stored selection not updated")
	}

	unsubscribe()
	session.Select(fixture.Selection{})
	if len(got) != 1 || got[0] != CollectionSelection {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestLeagueSession_FixtureViewMemoizedPerVersion(t *testing.T) {
	t.Parallel()

	session, _, feeds := onlineSession(t, LeagueSessionConfig{})

	first := session.FixtureView(fixture.Selection{Group: "a"})
	second := session.FixtureView(fixture.Selection{Group: " A "})
	if session.views.Len() != 1 {
		t.Fatalf("expected equivalent selections to share one entry, got %d", session.views.Len())
	}
	if len(first.Groups) != len(second.Groups) {
		t.Fatalf("memoized view differs: %+v vs %+v", first, second)
	}

	feeds.fire(t, fixture.Collection, raw("matches", `[{"id":"m1","homeId":"t1","awayId":"t2","homeGoals":0,"awayGoals":3}]`))
	if session.views.Len() != 0 {
		t.Fatalf("expected views of older versions to be dropped, got %d", session.views.Len())
	}

	view := session.FixtureView(fixture.Selection{})
	total := 0
	for _, group := range view.Groups {
		total += len(group.Matches)
	}
	if total != 1 {
		t.Fatalf("expected view of the new version, got %d matches", total)
	}
}

func TestLeagueSession_SeedsEmptyLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := remotemock.NewStore(t)
	expectReads(store, map[string]snapshot.Snapshot{
		"teams":   {Path: "teams"},
		"matches": {Path: "matches"},
		"site":    {Path: "site"},
	}, nil)
	expectSubscribes(t, store)
	store.On("Write", mock.Anything, team.Collection, mock.Anything).Return(nil).Once()
	store.On("Write", mock.Anything, fixture.Collection, mock.Anything).Return(nil).Once()

	session := newTestSession(t, store, nil, LeagueSessionConfig{SeedDemoData: true})
	if err := session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}

	state := session.State()
	if len(state.Teams) != len(SeedTeams()) || len(state.Matches) != len(SeedMatches()) {
		t.Fatalf("unexpected seeded sizes: teams=%d matches=%d", len(state.Teams), len(state.Matches))
	}
	if leader := session.Derived().Standings[0]; leader.TeamID != "t1" {
		t.Fatalf("unexpected seeded leader: %+v", leader)
	}
}

func TestLeagueSession_RejectsWritesOutsideLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := remotemock.NewStore(t)
	session := newTestSession(t, store, nil, LeagueSessionConfig{})

	if _, err := session.CreateTeam(ctx, TeamInput{Name: "Early"}); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable before init, got %v", err)
	}
	if err := session.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := session.CreateTeam(ctx, TeamInput{Name: "Late"}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed after close, got %v", err)
	}
	if err := session.Init(ctx); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed on init after close, got %v", err)
	}
}

func TestLeagueSession_RegisterPlayerQueuesOnPushFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.On("Push", mock.Anything, content.PlayersCollection, mock.Anything).Return("", errors.New("offline")).Once()
	store.On("Push", mock.Anything, content.PlayersCollection, mock.Anything).Return("-Nx1", nil).Once()

	queued, err := session.RegisterPlayer(ctx, PlayerInput{Name: "Youssef", TeamID: "t1", Category: "u11"})
	if err != nil {
		t.Fatalf("register player: %v", err)
	}
	if !queued.Queued || queued.Player.Club != "Stars" || queued.Player.Category != "U11" {
		t.Fatalf("unexpected queued registration: %+v", queued)
	}

	pushed, err := session.RegisterPlayer(ctx, PlayerInput{Name: "Amine", TeamID: "t2"})
	if err != nil {
		t.Fatalf("register player: %v", err)
	}
	if pushed.Queued || pushed.Key != "-Nx1" {
		t.Fatalf("unexpected pushed registration: %+v", pushed)
	}

	pending := session.PendingPlayers(ctx)
	if len(pending) != 1 || pending[0].Name != "Youssef" {
		t.Fatalf("unexpected pending players: %+v", pending)
	}

	if _, err := session.RegisterPlayer(ctx, PlayerInput{Name: "Nobody", TeamID: "t404"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown team, got %v", err)
	}
}

func TestLeagueSession_UpdateSiteMergesFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.
		On("Update", mock.Anything, "site", mock.MatchedBy(func(fields map[string]any) bool {
			return len(fields) == 2 && fields["nameFr"] == "LIGUE TEST" && fields["publicBaseUrl"] == "https://league.example/"
		})).
		Return(nil).
		Once()

	cfg, err := session.UpdateSite(ctx, SiteInput{NameFr: "LIGUE TEST", PublicBaseURL: "https://league.example"})
	if err != nil {
		t.Fatalf("update site: %v", err)
	}
	if cfg.NameAr == "" || cfg.NameFr != "LIGUE TEST" {
		t.Fatalf("unexpected site config: %+v", cfg)
	}
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}

	if _, err := session.UpdateSite(ctx, SiteInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}
}

func TestLeagueSession_FlushPendingPlayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{})
	store.On("Push", mock.Anything, content.PlayersCollection, mock.Anything).Return("", errors.New("offline")).Twice()
	store.On("Push", mock.Anything, content.PlayersCollection, mock.Anything).Return("-Nx2", nil).Twice()

	for _, name := range []string{"Youssef", "Amine"} {
		if _, err := session.RegisterPlayer(ctx, PlayerInput{Name: name, TeamID: "t1"}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if got := len(session.PendingPlayers(ctx)); got != 2 {
		t.Fatalf("expected two queued players, got %d", got)
	}

	flushed, err := session.FlushPendingPlayers(ctx)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if flushed != 2 {
		t.Fatalf("unexpected flushed count: %d", flushed)
	}
	if got := len(session.PendingPlayers(ctx)); got != 0 {
		t.Fatalf("expected empty queue after flush, got %d", got)
	}
}

func TestLeagueSession_QueuedSiteUpdatesAllReachRemote(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{WriteWorkers: 8})

	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu       sync.Mutex
		received []map[string]any
	)
	store.
		On("Update", mock.Anything, "site", mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			received = append(received, args.Get(2).(map[string]any))
			first := len(received) == 1
			mu.Unlock()
			if first {
				close(started)
				<-release
			}
		}).
		Return(nil).
		Times(4)

	if _, err := session.UpdateSite(ctx, SiteInput{NameAr: "A"}); err != nil {
		t.Fatalf("update site: %v", err)
	}
	<-started
	if _, err := session.UpdateSite(ctx, SiteInput{NameFr: "B"}); err != nil {
		t.Fatalf("update site: %v", err)
	}
	if _, err := session.UpdateSite(ctx, SiteInput{Logo: "https://x/logo.png"}); err != nil {
		t.Fatalf("update site: %v", err)
	}
	if _, err := session.UpdateSite(ctx, SiteInput{NameFr: "C"}); err != nil {
		t.Fatalf("update site: %v", err)
	}
	close(release)
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}

	want := []map[string]any{
		{"nameAr": "A"},
		{"nameFr": "B"},
		{"logo": "https://x/logo.png"},
		{"nameFr": "C"},
	}
	if len(received) != len(want) {
		t.Fatalf("expected %d remote updates, got %v", len(want), received)
	}
	for i := range want {
		if len(received[i]) != len(want[i]) {
			t.Fatalf("update %d: got %v want %v", i, received[i], want[i])
		}
		for k, v := range want[i] {
			if received[i][k] != v {
				t.Fatalf("update %d: got %v want %v", i, received[i], want[i])
			}
		}
	}
	if got := session.Site(); got.NameAr != "A" || got.NameFr != "C" || got.Logo != "https://x/logo.png" {
		t.Fatalf("unexpected mirrored site: %+v", got)
	}
}

func TestLeagueSession_QueuedTeamWritesCollapseToLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session, store, _ := onlineSession(t, LeagueSessionConfig{WriteWorkers: 8})

	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu     sync.Mutex
		writes [][]map[string]any
	)
	store.
		On("Write", mock.Anything, team.Collection, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			writes = append(writes, args.Get(2).([]map[string]any))
			first := len(writes) == 1
			mu.Unlock()
			if first {
				close(started)
				<-release
			}
		}).
		Return(nil)

	if _, err := session.CreateTeam(ctx, TeamInput{Name: "Atlas"}); err != nil {
		t.Fatalf("create team: %v", err)
	}
	<-started
	for _, name := range []string{"Comets", "Orion"} {
		if _, err := session.CreateTeam(ctx, TeamInput{Name: name}); err != nil {
			t.Fatalf("create team %s: %v", name, err)
		}
	}
	close(release)
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}

	if len(writes) != 2 {
		t.Fatalf("expected the first and the latest write, got %d writes", len(writes))
	}
	if got := len(writes[1]); got != 6 {
		t.Fatalf("latest write should carry every team, got %d", got)
	}
}

func TestLeagueSession_IdenticalIDLessMatchesStayDistinct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := remotemock.NewStore(t)
	expectReads(store, map[string]snapshot.Snapshot{
		"teams":   raw("teams", teamsJSON),
		"matches": raw("matches", `[{"homeId":"t1","awayId":"t2","date":"2025-09-10"},{"homeId":"t1","awayId":"t2","date":"2025-09-10"}]`),
		"site":    {Path: "site"},
	}, nil)
	expectSubscribes(t, store)
	store.On("Write", mock.Anything, fixture.Collection, mock.Anything).Return(nil).Once()

	session := newTestSession(t, store, nil, LeagueSessionConfig{})
	if err := session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	matches := session.State().Matches
	if len(matches) != 2 || matches[0].ID == matches[1].ID {
		t.Fatalf("expected two distinct match ids, got %+v", matches)
	}

	if err := session.DeleteMatch(ctx, matches[0].ID); err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if err := session.WaitWrites(ctx); err != nil {
		t.Fatalf("wait writes: %v", err)
	}
	remaining := session.State().Matches
	if len(remaining) != 1 || remaining[0].ID != matches[1].ID {
		t.Fatalf("delete removed more than one match: %+v", remaining)
	}
}
