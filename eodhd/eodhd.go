// Package eodhd fetches end-of-day and live instrument prices from the EODHD
// API (https://eodhd.com). Responses are cached on disk so repeated runs in
// the same day never hit the network twice for the same query.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
)

const baseURL = "https://eodhd.com/api"

// Client queries the EODHD API with an account's api token.
type Client struct {
	apiKey  string
	daily   *http.Client
	monthly *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		daily:   newDailyCachingClient(),
		monthly: newMonthlyCachingClient(),
	}
}

// Daily returns the closing prices for an EODHD ticker (typically
// "SYMBOL.EXCHANGE") over the given range, bounds included, tagged with the
// instrument id they should be recorded under.
func (c *Client) Daily(ctx context.Context, instrumentID, ticker string, r date.Range) ([]portivue.PricePoint, error) {
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		baseURL, url.PathEscape(ticker), c.apiKey, r.From, r.To)

	type row struct {
		Date  date.Date       `json:"date"`
		Close decimal.Decimal `json:"close"`
	}
	var content []row
	if err := c.getJSON(ctx, c.daily, addr, &content); err != nil {
		return nil, fmt.Errorf("eod %s: %w", ticker, err)
	}

	out := make([]portivue.PricePoint, 0, len(content))
	for _, p := range content {
		out = append(out, portivue.PricePoint{
			InstrumentID: instrumentID,
			Date:         p.Date,
			Close:        p.Close.InexactFloat64(),
			Source:       portivue.SourceFeed,
		})
	}
	return out, nil
}

// Latest returns the most recent traded price for a ticker and its quote
// time. A quote without a usable timestamp gets the current time.
func (c *Client) Latest(ctx context.Context, ticker string) (float64, time.Time, error) {
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s",
		baseURL, url.PathEscape(ticker), c.apiKey)

	var jobj any
	if err := c.getJSON(ctx, c.daily, addr, &jobj); err != nil {
		return 0, time.Time{}, fmt.Errorf("real-time %s: %w", ticker, err)
	}

	val, err := jsonFloat(jobj, "$.close")
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("real-time %s: %w", ticker, err)
	}

	at := time.Now().UTC()
	if ts, err := jsonFloat(jobj, "$.timestamp"); err == nil && ts > 0 {
		at = time.Unix(int64(ts), 0).UTC()
	}
	return val, at, nil
}

// SearchResult is one listing returned by the symbol search endpoint.
type SearchResult struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Country  string `json:"Country"`
	Currency string `json:"Currency"`
	Type     string `json:"Type"`
	ISIN     string `json:"ISIN"`
}

// Ticker returns the full EODHD ticker for a search result.
func (r SearchResult) Ticker() string { return r.Code + "." + r.Exchange }

// Search finds listings matching a free-text query (symbol, name or ISIN).
// Listings move slowly, so results are cached for a month.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	addr := fmt.Sprintf("%s/search/%s?fmt=json&api_token=%s",
		baseURL, url.PathEscape(query), c.apiKey)

	var content []SearchResult
	if err := c.getJSON(ctx, c.monthly, addr, &content); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return content, nil
}

// getJSON performs a GET and unmarshals the JSON response body into data.
func (c *Client) getJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

// jsonFloat extracts a float from a decoded JSON document by path. The API is
// loose about types: values come back as floats, as numeric strings with
// comma decimal separators, or as "NA" when there is no quote.
func jsonFloat(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", path, err)
	}
	// jsonpath sometimes wraps a single answer in a list; keep the first.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %q: not a number: %q", path, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("parsing %q: unexpected value %v", path, jval)
	}
}
