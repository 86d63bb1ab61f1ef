package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
)

const sourceName = "api_football"

// APIFootballClient implements FootballDataSource for the API-Football
// (RapidAPI) v3 feed.
type APIFootballClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	host       string
	apiKey     string
	leagues    map[string]config.LeagueConfig
	seasons    []int
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// NewAPIFootballClient creates a client for the configured leagues.
// Responses are cached briefly: odds for one fixture are requested by
// both the collector and the generator within the same scheduling window.
func NewAPIFootballClient(cfg *config.Config, httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *APIFootballClient {
	ttl := time.Duration(cfg.APIFootball.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &APIFootballClient{
		httpClient: httpClient,
		baseURL:    cfg.APIFootball.BaseURL,
		host:       cfg.APIFootball.Host,
		apiKey:     cfg.APIFootball.APIKey,
		leagues:    cfg.Leagues,
		seasons:    cfg.Ingestion.Seasons,
		cache:      gocache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// Name returns the name of the data source
func (c *APIFootballClient) Name() string {
	return sourceName
}

// fixtureEnvelope mirrors the relevant part of the v3 fixtures payload
type fixtureEnvelope struct {
	Response []struct {
		Fixture struct {
			ID   int    `json:"id"`
			Date string `json:"date"`
			Venue struct {
				Name string `json:"name"`
			} `json:"venue"`
			Status struct {
				Long string `json:"long"`
			} `json:"status"`
		} `json:"fixture"`
		League struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"league"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Goals struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"goals"`
	} `json:"response"`
}

// oddsEnvelope mirrors the relevant part of the v3 odds payload
type oddsEnvelope struct {
	Response []struct {
		Bookmakers []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Bets []struct {
				Name   string `json:"name"`
				Values []struct {
					Value string `json:"value"`
					Odd   string `json:"odd"`
				} `json:"values"`
			} `json:"bets"`
		} `json:"bookmakers"`
	} `json:"response"`
}

// FetchFixtures retrieves fixtures scheduled on a date for one league,
// trying each configured season since season boundaries straddle summer.
func (c *APIFootballClient) FetchFixtures(ctx context.Context, league string, date time.Time) ([]models.Fixture, error) {
	leagueCfg, ok := c.leagues[league]
	if !ok {
		return nil, NewDataSourceError(sourceName, ErrCodeInvalidData, fmt.Sprintf("league %s not configured", league), models.ErrUnknownLeague)
	}

	var fixtures []models.Fixture
	for _, season := range c.seasons {
		params := url.Values{}
		params.Set("league", strconv.Itoa(leagueCfg.ID))
		params.Set("season", strconv.Itoa(season))
		params.Set("date", date.Format("2006-01-02"))

		var envelope fixtureEnvelope
		if err := c.get(ctx, "fixtures", params, &envelope); err != nil {
			return nil, err
		}

		for _, item := range envelope.Response {
			kickoff, err := time.Parse(time.RFC3339, item.Fixture.Date)
			if err != nil {
				c.logger.WithField("fixture_id", item.Fixture.ID).Warn("Skipping fixture with unparseable kickoff time")
				continue
			}
			fixtures = append(fixtures, models.Fixture{
				ID:         item.Fixture.ID,
				Date:       kickoff.UTC(),
				League:     league,
				LeagueName: item.League.Name,
				Country:    item.League.Country,
				HomeTeam:   item.Teams.Home.Name,
				AwayTeam:   item.Teams.Away.Name,
				Venue:      item.Fixture.Venue.Name,
				Status:     item.Fixture.Status.Long,
			})
		}
	}

	return fixtures, nil
}

// FetchResults retrieves finished matches for one league within a date range
func (c *APIFootballClient) FetchResults(ctx context.Context, league string, start, end time.Time) ([]models.MatchResult, error) {
	leagueCfg, ok := c.leagues[league]
	if !ok {
		return nil, NewDataSourceError(sourceName, ErrCodeInvalidData, fmt.Sprintf("league %s not configured", league), models.ErrUnknownLeague)
	}

	var results []models.MatchResult
	for _, season := range c.seasons {
		params := url.Values{}
		params.Set("league", strconv.Itoa(leagueCfg.ID))
		params.Set("season", strconv.Itoa(season))
		params.Set("from", start.Format("2006-01-02"))
		params.Set("to", end.Format("2006-01-02"))
		params.Set("status", "FT")

		var envelope fixtureEnvelope
		if err := c.get(ctx, "fixtures", params, &envelope); err != nil {
			return nil, err
		}

		for _, item := range envelope.Response {
			if item.Goals.Home == nil || item.Goals.Away == nil {
				continue
			}
			kickoff, err := time.Parse(time.RFC3339, item.Fixture.Date)
			if err != nil {
				continue
			}
			results = append(results, models.MatchResult{
				FixtureID: item.Fixture.ID,
				Date:      kickoff.UTC(),
				League:    league,
				HomeTeam:  item.Teams.Home.Name,
				AwayTeam:  item.Teams.Away.Name,
				HomeGoals: *item.Goals.Home,
				AwayGoals: *item.Goals.Away,
			})
		}
	}

	return results, nil
}

// FetchOdds retrieves the market odds for one fixture, averaged per
// (bet type, bet value) across bookmakers. Odds arrive as decimal
// strings; they are averaged in decimal space and only converted to
// float at the edge to avoid accumulating binary round-off.
func (c *APIFootballClient) FetchOdds(ctx context.Context, fixtureID int) ([]models.OddsRecord, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	var envelope oddsEnvelope
	if err := c.get(ctx, "odds", params, &envelope); err != nil {
		return nil, err
	}

	type accumulator struct {
		betType    string
		betValue   string
		sum        decimal.Decimal
		count      int
		bookmakers map[int]struct{}
	}
	acc := make(map[string]*accumulator)

	for _, entry := range envelope.Response {
		for _, bookmaker := range entry.Bookmakers {
			for _, bet := range bookmaker.Bets {
				for _, value := range bet.Values {
					odd, err := decimal.NewFromString(value.Odd)
					if err != nil || odd.LessThanOrEqual(decimal.NewFromInt(1)) {
						continue
					}
					key := bet.Name + "_" + value.Value
					a, ok := acc[key]
					if !ok {
						a = &accumulator{
							betType:    bet.Name,
							betValue:   value.Value,
							bookmakers: make(map[int]struct{}),
						}
						acc[key] = a
					}
					a.sum = a.sum.Add(odd)
					a.count++
					a.bookmakers[bookmaker.ID] = struct{}{}
				}
			}
		}
	}

	now := time.Now().UTC()
	records := make([]models.OddsRecord, 0, len(acc))
	for _, a := range acc {
		avg, _ := a.sum.Div(decimal.NewFromInt(int64(a.count))).Round(4).Float64()
		records = append(records, models.OddsRecord{
			FixtureID:   fixtureID,
			BetType:     a.betType,
			BetValue:    a.betValue,
			AverageOdd:  avg,
			Bookmakers:  len(a.bookmakers),
			CollectedAt: now,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].BetType != records[j].BetType {
			return records[i].BetType < records[j].BetType
		}
		return records[i].BetValue < records[j].BetValue
	})

	return records, nil
}

// get performs a cached GET against the API and decodes the envelope
func (c *APIFootballClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	cacheKey := endpoint + "?" + params.Encode()
	if cached, found := c.cache.Get(cacheKey); found {
		return json.Unmarshal(cached.([]byte), out)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewDataSourceError(sourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return NewDataSourceError(sourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()
	metrics.APIRequestDuration.Observe(time.Since(started).Seconds())
	metrics.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(sourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(sourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(sourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewDataSourceError(sourceName, ErrCodeNetworkError, "failed to read response body", err)
	}

	c.cache.SetDefault(cacheKey, body)
	return json.Unmarshal(body, out)
}
