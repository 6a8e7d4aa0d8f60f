package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/albapepper/soccerscore/internal/bkktime"
	"github.com/albapepper/soccerscore/internal/document"
	"github.com/albapepper/soccerscore/internal/metrics"
	"github.com/albapepper/soccerscore/internal/store"
)

// Source is the subset of the provider client the pipeline reads from.
type Source interface {
	ListSubscribedLeagues(ctx context.Context) ([]document.Document, error)
	ListSeasons(ctx context.Context, leagueID int64) ([]document.Document, error)
	ListTeams(ctx context.Context, countryID int64) ([]document.Document, error)
	ListMatches(ctx context.Context, seasonID int64) ([]document.Document, error)
	GetStandings(ctx context.Context, seasonID int64) (document.Document, error)
}

// Stage names one step of the pipeline.
type Stage string

const (
	StageLeagues   Stage = "leagues"
	StageTeams     Stage = "teams"
	StageMatches   Stage = "matches"
	StageStandings Stage = "standings"
)

// Stages lists every stage in execution order. Later stages read what
// earlier ones wrote.
var Stages = []Stage{StageLeagues, StageTeams, StageMatches, StageStandings}

// ParseStage resolves a stage name.
func ParseStage(name string) (Stage, error) {
	for _, s := range Stages {
		if string(s) == strings.ToLower(name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q (want one of leagues, teams, matches, standings)", name)
}

// Pipeline copies provider data into the store. Calls are strictly
// sequential; the first error aborts the run and leaves committed writes in
// place.
type Pipeline struct {
	source Source
	store  store.Store
	logger *slog.Logger
}

// NewPipeline creates a pipeline over source and st.
func NewPipeline(source Source, st store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{source: source, store: st, logger: logger}
}

// Run executes all four stages in order.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	return p.RunStages(ctx, Stages...)
}

// RunStages executes the given stages in the order given.
func (p *Pipeline) RunStages(ctx context.Context, stages ...Stage) (Result, error) {
	start := time.Now()
	var result Result

	for i, stage := range stages {
		p.logger.Info(fmt.Sprintf("Stage %d/%d: syncing %s...", i+1, len(stages), stage))
		if err := p.runStage(ctx, stage, &result); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("sync %s: %w", stage, err)
		}
	}

	result.Duration = time.Since(start)
	if len(stages) == len(Stages) {
		metrics.LastSyncSuccess.SetToCurrentTime()
	}
	p.logger.Info("Sync complete", "summary", result.Summary())
	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, result *Result) (err error) {
	start := time.Now()
	defer func() {
		metrics.SyncStageDuration.WithLabelValues(string(stage), metrics.StatusLabel(err)).
			Observe(time.Since(start).Seconds())
	}()

	switch stage {
	case StageLeagues:
		err = p.SyncLeagues(ctx, result)
	case StageTeams:
		err = p.SyncTeams(ctx, result)
	case StageMatches:
		err = p.SyncMatches(ctx, result)
	case StageStandings:
		err = p.SyncStandings(ctx, result)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}
	return err
}

// SyncLeagues fetches the subscribed leagues and their seasons, then upserts
// each league with its seasons embedded as season_data. All season lists
// are fetched before the first write.
func (p *Pipeline) SyncLeagues(ctx context.Context, result *Result) error {
	leagues, err := p.source.ListSubscribedLeagues(ctx)
	if err != nil {
		return fmt.Errorf("fetch leagues: %w", err)
	}

	seasons := make([][]document.Document, len(leagues))
	for i, league := range leagues {
		leagueID, ok := league.Int("league_id")
		if !ok {
			return fmt.Errorf("league without league_id: %v", league)
		}
		seasons[i], err = p.source.ListSeasons(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("fetch seasons for league %d: %w", leagueID, err)
		}
	}

	for i, league := range leagues {
		seasonData := make([]any, len(seasons[i]))
		for j, s := range seasons[i] {
			seasonData[j] = map[string]any(s)
		}
		league["season_data"] = seasonData
		if err := p.upsert(ctx, store.Leagues, league, result); err != nil {
			return err
		}
	}

	p.logger.Info("Leagues done", "count", result.LeaguesUpserted)
	return nil
}

// SyncTeams fetches the teams of every stored league's country. Leagues that
// share a country fetch it again.
func (p *Pipeline) SyncTeams(ctx context.Context, result *Result) error {
	leagues, err := p.store.Find(ctx, store.Leagues, store.All)
	if err != nil {
		return fmt.Errorf("load leagues: %w", err)
	}

	for _, league := range leagues {
		countryID, ok := league.Int("country_id")
		if !ok {
			return fmt.Errorf("league %v has no country_id", league["league_id"])
		}
		teams, err := p.source.ListTeams(ctx, countryID)
		if err != nil {
			return fmt.Errorf("fetch teams for country %d: %w", countryID, err)
		}
		for _, team := range teams {
			if err := p.upsert(ctx, store.Teams, team, result); err != nil {
				return err
			}
		}
	}

	p.logger.Info("Teams done", "count", result.TeamsUpserted)
	return nil
}

// SyncMatches fetches the matches of every current season, orders them by
// kick-off and stores each with its Bangkok kick-off time.
func (p *Pipeline) SyncMatches(ctx context.Context, result *Result) error {
	seasonIDs, err := CurrentSeasonIDs(ctx, p.store)
	if err != nil {
		return err
	}

	for _, seasonID := range seasonIDs {
		matches, err := p.source.ListMatches(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("fetch matches for season %d: %w", seasonID, err)
		}

		sort.SliceStable(matches, func(i, j int) bool {
			a, _ := matches[i].String("match_start_iso")
			b, _ := matches[j].String("match_start_iso")
			return a < b
		})

		for _, match := range matches {
			start, _ := match.String("match_start")
			local, err := bkktime.FromUTC(start)
			if err != nil {
				return fmt.Errorf("match %v: %w", match["match_id"], err)
			}
			match["match_start_th"] = local
			if err := p.upsert(ctx, store.Matches, match, result); err != nil {
				return err
			}
		}
		p.logger.Info("Season matches synced", "season_id", seasonID, "count", len(matches))
	}

	p.logger.Info("Matches done", "count", result.MatchesUpserted)
	return nil
}

// SyncStandings fetches the standings of every current season. The stored
// ranking rows are replaced wholesale on each run.
func (p *Pipeline) SyncStandings(ctx context.Context, result *Result) error {
	seasonIDs, err := CurrentSeasonIDs(ctx, p.store)
	if err != nil {
		return err
	}

	for _, seasonID := range seasonIDs {
		standing, err := p.source.GetStandings(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("fetch standings for season %d: %w", seasonID, err)
		}
		if err := p.upsert(ctx, store.Standings, standing, result); err != nil {
			return err
		}
	}

	p.logger.Info("Standings done", "count", result.StandingsUpserted)
	return nil
}

func (p *Pipeline) upsert(ctx context.Context, c store.Collection, doc document.Document, result *Result) error {
	key, err := store.KeyOf(c, doc)
	if err != nil {
		return err
	}
	if err := p.store.Upsert(ctx, c, key, doc); err != nil {
		return fmt.Errorf("upsert %s %s: %w", c, key.String(), err)
	}
	result.count(c)
	metrics.DocumentsUpsertedTotal.WithLabelValues(string(c)).Inc()
	return nil
}

// CurrentSeasonIDs returns, for each stored league in store order, the first
// season flagged is_current. Leagues without one are skipped.
func CurrentSeasonIDs(ctx context.Context, st store.Store) ([]int64, error) {
	leagues, err := st.Find(ctx, store.Leagues, store.All)
	if err != nil {
		return nil, fmt.Errorf("load leagues: %w", err)
	}

	ids := make([]int64, 0, len(leagues))
	for _, league := range leagues {
		if id, ok := CurrentSeason(league); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CurrentSeason returns the season_id of the first season in the league's
// season_data with is_current set.
func CurrentSeason(league document.Document) (int64, bool) {
	for _, season := range league.List("season_data") {
		if document.Truthy(season["is_current"]) {
			return season.Int("season_id")
		}
	}
	return 0, false
}
