// Package seed runs the provider-to-store sync pipeline:
// leagues -> teams -> matches -> standings.
package seed

import (
	"fmt"
	"time"

	"github.com/albapepper/soccerscore/internal/store"
)

// Result tracks counts from a sync run. Counts reflect writes that were
// committed, including those of a stage that later failed.
type Result struct {
	LeaguesUpserted   int
	TeamsUpserted     int
	MatchesUpserted   int
	StandingsUpserted int
	Duration          time.Duration
}

// Upserted returns the number of documents written across all collections.
func (r Result) Upserted() int {
	return r.LeaguesUpserted + r.TeamsUpserted + r.MatchesUpserted + r.StandingsUpserted
}

func (r *Result) count(c store.Collection) {
	switch c {
	case store.Leagues:
		r.LeaguesUpserted++
	case store.Teams:
		r.TeamsUpserted++
	case store.Matches:
		r.MatchesUpserted++
	case store.Standings:
		r.StandingsUpserted++
	}
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"leagues=%d teams=%d matches=%d standings=%d duration=%s",
		r.LeaguesUpserted, r.TeamsUpserted,
		r.MatchesUpserted, r.StandingsUpserted,
		r.Duration.Round(time.Millisecond),
	)
}
