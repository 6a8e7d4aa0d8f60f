package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/soccerscore/internal/bkktime"
	"github.com/albapepper/soccerscore/internal/document"
	"github.com/albapepper/soccerscore/internal/store"
)

func mustDoc(t *testing.T, raw string) document.Document {
	t.Helper()
	d, err := document.Decode([]byte(raw))
	require.NoError(t, err)
	return d
}

func mustDocs(t *testing.T, raw string) []document.Document {
	t.Helper()
	ds, err := document.DecodeList([]byte(raw))
	require.NoError(t, err)
	return ds
}

// fakeSource serves canned payloads. Each call decodes a fresh copy so the
// pipeline can mutate what it receives.
type fakeSource struct {
	t         *testing.T
	leagues   string
	seasons   map[int64]string
	teams     map[int64]string
	matches   map[int64]string
	standings map[int64]string

	failOn string
	calls  []string
}

func (f *fakeSource) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn == call {
		return fmt.Errorf("upstream down: %s", call)
	}
	return nil
}

func (f *fakeSource) ListSubscribedLeagues(context.Context) ([]document.Document, error) {
	if err := f.record("leagues"); err != nil {
		return nil, err
	}
	return mustDocs(f.t, f.leagues), nil
}

func (f *fakeSource) ListSeasons(_ context.Context, leagueID int64) ([]document.Document, error) {
	if err := f.record(fmt.Sprintf("seasons:%d", leagueID)); err != nil {
		return nil, err
	}
	return mustDocs(f.t, or(f.seasons[leagueID], "[]")), nil
}

func (f *fakeSource) ListTeams(_ context.Context, countryID int64) ([]document.Document, error) {
	if err := f.record(fmt.Sprintf("teams:%d", countryID)); err != nil {
		return nil, err
	}
	return mustDocs(f.t, or(f.teams[countryID], "[]")), nil
}

func (f *fakeSource) ListMatches(_ context.Context, seasonID int64) ([]document.Document, error) {
	if err := f.record(fmt.Sprintf("matches:%d", seasonID)); err != nil {
		return nil, err
	}
	return mustDocs(f.t, or(f.matches[seasonID], "[]")), nil
}

func (f *fakeSource) GetStandings(_ context.Context, seasonID int64) (document.Document, error) {
	if err := f.record(fmt.Sprintf("standings:%d", seasonID)); err != nil {
		return nil, err
	}
	raw, ok := f.standings[seasonID]
	if !ok {
		return nil, fmt.Errorf("no standings for season %d", seasonID)
	}
	return mustDoc(f.t, raw), nil
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func newFixtureSource(t *testing.T) *fakeSource {
	return &fakeSource{
		t:       t,
		leagues: `[{"league_id": 237, "country_id": 42, "name": "Premier League"}]`,
		seasons: map[int64]string{
			237: `[{"season_id": 300, "is_current": 0, "name": "22/23"},
			       {"season_id": 352, "is_current": 1, "name": "23/24"}]`,
		},
		teams: map[int64]string{
			42: `[{"team_id": 5, "name": "Arsenal", "logo": "a.png"},
			      {"team_id": 6, "name": "Chelsea", "logo": "c.png"}]`,
		},
		matches: map[int64]string{
			352: `[{"match_id": 2, "season_id": 352, "match_start": "2024-03-02 12:00:00", "match_start_iso": "2024-03-02T12:00:00+00:00"},
			       {"match_id": 1, "season_id": 352, "match_start": "2024-03-01 13:00:00", "match_start_iso": "2024-03-01T13:00:00+00:00"}]`,
		},
		standings: map[int64]string{
			352: `{"season_id": 352, "league_id": 237, "standings": [{"team_id": 5, "position": 1, "points": 50}]}`,
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_AllStages(t *testing.T) {
	src := newFixtureSource(t)
	st := store.NewMemory()
	ctx := context.Background()

	result, err := NewPipeline(src, st, quietLogger()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.LeaguesUpserted)
	assert.Equal(t, 2, result.TeamsUpserted)
	assert.Equal(t, 2, result.MatchesUpserted)
	assert.Equal(t, 1, result.StandingsUpserted)
	assert.Equal(t, []string{"leagues", "seasons:237", "teams:42", "matches:352", "standings:352"}, src.calls)

	leagues, err := st.Find(ctx, store.Leagues, store.All)
	require.NoError(t, err)
	require.Len(t, leagues, 1)
	assert.Len(t, leagues[0].List("season_data"), 2)

	matches, err := st.Find(ctx, store.Matches, store.All)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	// Inserted in kick-off order.
	first, _ := matches[0].Int("match_id")
	assert.Equal(t, int64(1), first)
	assert.Equal(t, "2024-03-01 20:00:00", matches[0]["match_start_th"])
	assert.Equal(t, "2024-03-02 19:00:00", matches[1]["match_start_th"])

	standings, err := st.Find(ctx, store.Standings, store.Where("season_id", int64(352)))
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Len(t, standings[0].List("standings"), 1)
}

func TestRun_Idempotent(t *testing.T) {
	src := newFixtureSource(t)
	st := store.NewMemory()
	p := NewPipeline(src, st, quietLogger())
	ctx := context.Background()

	_, err := p.Run(ctx)
	require.NoError(t, err)
	_, err = p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, st.Count(store.Leagues))
	assert.Equal(t, 2, st.Count(store.Teams))
	assert.Equal(t, 2, st.Count(store.Matches))
	assert.Equal(t, 1, st.Count(store.Standings))
}

func TestSyncStandings_ReplacesRows(t *testing.T) {
	src := newFixtureSource(t)
	st := store.NewMemory()
	p := NewPipeline(src, st, quietLogger())
	ctx := context.Background()

	_, err := p.Run(ctx)
	require.NoError(t, err)

	src.standings[352] = `{"season_id": 352, "standings": [{"team_id": 6, "position": 1}, {"team_id": 5, "position": 2}]}`
	var result Result
	require.NoError(t, p.SyncStandings(ctx, &result))

	docs, err := st.Find(ctx, store.Standings, store.All)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	rows := docs[0].List("standings")
	require.Len(t, rows, 2)
	leader, _ := rows[0].Int("team_id")
	assert.Equal(t, int64(6), leader)
	// Fields absent from the new payload survive the merge.
	assert.Equal(t, int64(237), docs[0]["league_id"])
}

func TestRun_AbortsOnFirstError(t *testing.T) {
	src := newFixtureSource(t)
	src.failOn = "teams:42"
	st := store.NewMemory()

	result, err := NewPipeline(src, st, quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync teams")

	// Leagues committed before the failure remain.
	assert.Equal(t, 1, result.LeaguesUpserted)
	assert.Equal(t, 1, st.Count(store.Leagues))
	assert.Equal(t, 0, st.Count(store.Matches))
	assert.NotContains(t, src.calls, "matches:352")
}

func TestSyncLeagues_SeasonFailureWritesNothing(t *testing.T) {
	src := newFixtureSource(t)
	src.failOn = "seasons:237"
	st := store.NewMemory()

	var result Result
	err := NewPipeline(src, st, quietLogger()).SyncLeagues(context.Background(), &result)
	require.Error(t, err)
	assert.Equal(t, 0, st.Count(store.Leagues))
}

func TestSyncMatches_BadTimestamp(t *testing.T) {
	src := newFixtureSource(t)
	src.matches[352] = `[{"match_id": 1, "match_start": "01/03/2024 13:00", "match_start_iso": "2024-03-01T13:00:00+00:00"}]`
	st := store.NewMemory()

	_, err := NewPipeline(src, st, quietLogger()).Run(context.Background())
	require.Error(t, err)

	var fe *bkktime.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "01/03/2024 13:00", fe.Value)
	assert.Equal(t, 0, st.Count(store.Matches))
	assert.Equal(t, 0, st.Count(store.Standings))
}

func TestCurrentSeasonIDs(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	leagues := []string{
		`{"league_id": 1, "season_data": [{"season_id": 10, "is_current": 0}, {"season_id": 11, "is_current": 1}, {"season_id": 12, "is_current": 1}]}`,
		`{"league_id": 2, "season_data": [{"season_id": 20, "is_current": 0}]}`,
		`{"league_id": 3}`,
		`{"league_id": 4, "season_data": [{"season_id": 40, "is_current": true}]}`,
	}
	for _, raw := range leagues {
		d := mustDoc(t, raw)
		key, err := store.KeyOf(store.Leagues, d)
		require.NoError(t, err)
		require.NoError(t, st.Upsert(ctx, store.Leagues, key, d))
	}

	ids, err := CurrentSeasonIDs(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 40}, ids)
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("Matches")
	require.NoError(t, err)
	assert.Equal(t, StageMatches, s)

	_, err = ParseStage("players")
	assert.Error(t, err)
}

func TestResult_Summary(t *testing.T) {
	r := Result{LeaguesUpserted: 1, TeamsUpserted: 2, MatchesUpserted: 3, StandingsUpserted: 4}
	assert.Equal(t, "leagues=1 teams=2 matches=3 standings=4 duration=0s", r.Summary())
}

func TestResult_Upserted(t *testing.T) {
	assert.Equal(t, 0, Result{Duration: time.Second}.Upserted())
	assert.Equal(t, 10, Result{LeaguesUpserted: 1, TeamsUpserted: 2, MatchesUpserted: 3, StandingsUpserted: 4}.Upserted())
}

func TestRun_PartialResultCountsCommittedWrites(t *testing.T) {
	src := newFixtureSource(t)
	src.failOn = "standings:352"

	result, err := NewPipeline(src, store.NewMemory(), quietLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 5, result.Upserted())
}
