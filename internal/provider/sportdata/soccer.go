package sportdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/albapepper/soccerscore/internal/document"
)

// Provider paths, relative to the soccer base URL.
const (
	pathLeagues   = "/leagues"
	pathSeasons   = "/seasons"
	pathTeams     = "/teams"
	pathMatches   = "/matches"
	pathStandings = "/standings"
)

// ListSubscribedLeagues returns the leagues the API key is subscribed to.
func (c *Client) ListSubscribedLeagues(ctx context.Context) ([]document.Document, error) {
	return c.list(ctx, pathLeagues, url.Values{"subscribed": {"true"}})
}

// ListSeasons returns every season of a league.
func (c *Client) ListSeasons(ctx context.Context, leagueID int64) ([]document.Document, error) {
	return c.list(ctx, pathSeasons, idParam("league_id", leagueID))
}

// ListTeams returns every team of a country.
func (c *Client) ListTeams(ctx context.Context, countryID int64) ([]document.Document, error) {
	return c.list(ctx, pathTeams, idParam("country_id", countryID))
}

// ListMatches returns every match of a season.
func (c *Client) ListMatches(ctx context.Context, seasonID int64) ([]document.Document, error) {
	return c.list(ctx, pathMatches, idParam("season_id", seasonID))
}

// GetStandings returns the single standings object of a season.
func (c *Client) GetStandings(ctx context.Context, seasonID int64) (document.Document, error) {
	data, err := c.get(ctx, pathStandings, idParam("season_id", seasonID))
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, &UpstreamError{Endpoint: pathStandings, Err: fmt.Errorf("no standings for season %d", seasonID)}
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, &UpstreamError{Endpoint: pathStandings, Err: err}
	}
	return doc, nil
}

func (c *Client) list(ctx context.Context, path string, params url.Values) ([]document.Document, error) {
	data, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return []document.Document{}, nil
	}
	docs, err := document.DecodeList(data)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	return docs, nil
}

func idParam(name string, id int64) url.Values {
	return url.Values{name: {strconv.FormatInt(id, 10)}}
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
