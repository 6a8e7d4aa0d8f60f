package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/soccerscore/internal/api/respond"
	"github.com/albapepper/soccerscore/internal/document"
	"github.com/albapepper/soccerscore/internal/store"
)

// matchesQuery holds the optional kick-off window of GetMatches. A bound
// applies when its parameter is present, even if empty.
type matchesQuery struct {
	DateFrom string `validate:"omitempty,bkktime"`
	DateTo   string `validate:"omitempty,bkktime"`
	HasFrom  bool
	HasTo    bool
}

func parseMatchesQuery(r *http.Request) matchesQuery {
	values := r.URL.Query()
	q := matchesQuery{
		DateFrom: values.Get("date_from"),
		HasFrom:  values.Has("date_from"),
	}
	if q.HasFrom {
		q.DateTo = values.Get("date_to")
		q.HasTo = values.Has("date_to")
	}
	return q
}

func (q matchesQuery) cacheKey(seasonID int64) string {
	key := fmt.Sprintf("matches:%d", seasonID)
	if q.HasFrom {
		key += ":from=" + q.DateFrom
	}
	if q.HasTo {
		key += ":to=" + q.DateTo
	}
	return key
}

func parseSeasonID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "seasonID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeInvalidSeason, "Season ID must be an integer")
		return 0, false
	}
	return id, true
}

// GetStandings returns the ranking rows of a season with team name and logo
// attached.
// @Summary Get season standings
// @Description Returns the standings rows of a season. Each row carries team_name and team_logo when the team is known. An unknown season returns an empty array.
// @Tags soccer
// @Produce json
// @Param seasonId path int true "Season ID"
// @Success 200 {array} map[string]interface{}
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /standings/{seasonId} [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := parseSeasonID(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("standings:%d", seasonID), func(ctx context.Context) (any, error) {
		return h.standings(ctx, seasonID)
	})
}

// standings loads the season's Standing document and enriches its rows. When
// several documents share the season, the last one found is used; when
// several teams share an id, the last one found supplies the fields.
func (h *Handler) standings(ctx context.Context, seasonID int64) ([]document.Document, error) {
	docs, err := h.store.Find(ctx, store.Standings, store.Where("season_id", seasonID))
	if err != nil {
		return nil, fmt.Errorf("find standings: %w", err)
	}

	rows := []document.Document{}
	for _, doc := range docs {
		rows = doc.List("standings")
	}
	if rows == nil {
		rows = []document.Document{}
	}

	for _, row := range rows {
		teamID, ok := row["team_id"]
		if !ok {
			continue
		}
		teams, err := h.store.Find(ctx, store.Teams, store.Where("team_id", teamID))
		if err != nil {
			return nil, fmt.Errorf("find team %v: %w", teamID, err)
		}
		for _, team := range teams {
			if logo, ok := team["logo"]; ok {
				row["team_logo"] = logo
			}
			if name, ok := team["name"]; ok {
				row["team_name"] = name
			}
		}
	}
	return rows, nil
}

// GetMatches returns the matches of a season, optionally restricted to a
// kick-off window in Bangkok time. Both bounds are exclusive and compare as
// strings, so a bare date bounds at the start of that day. date_to is only
// honoured together with date_from.
// @Summary Get season matches
// @Description Returns the matches of a season in store order. date_from keeps matches with match_start_th after it; adding date_to also keeps only those before it. Bounds compare as strings, so a bare date bounds at the start of that day. date_to alone is ignored.
// @Tags soccer
// @Produce json
// @Param seasonId path int true "Season ID"
// @Param date_from query string false "Exclusive lower bound, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD (Bangkok time)"
// @Param date_to query string false "Exclusive upper bound, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD (Bangkok time); requires date_from"
// @Success 200 {array} map[string]interface{}
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /matches/{seasonId} [get]
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := parseSeasonID(w, r)
	if !ok {
		return
	}

	q := parseMatchesQuery(r)
	if err := h.validate.StructCtx(r.Context(), q); err != nil {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeInvalidDate,
			"date_from and date_to must use the format YYYY-MM-DD HH:MM:SS or YYYY-MM-DD")
		return
	}

	h.serveCached(w, r, q.cacheKey(seasonID), func(ctx context.Context) (any, error) {
		return h.matches(ctx, seasonID, q)
	})
}

func (h *Handler) matches(ctx context.Context, seasonID int64, q matchesQuery) ([]document.Document, error) {
	filter := store.Where("season_id", seasonID)
	if q.HasFrom {
		filter = filter.Gt("match_start_th", q.DateFrom)
		if q.HasTo {
			filter = filter.Lt("match_start_th", q.DateTo)
		}
	}

	docs, err := h.store.Find(ctx, store.Matches, filter)
	if err != nil {
		return nil, fmt.Errorf("find matches: %w", err)
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return docs, nil
}
