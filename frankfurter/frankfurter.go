// Package frankfurter fetches daily ECB reference FX rates from the
// Frankfurter API (https://frankfurter.app). The feed publishes one snapshot
// per business day, quoted against EUR; Snapshot.Rebase turns it into rates
// against any base the feed covers.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
)

// Client queries the Frankfurter API. The zero value is not usable; call New.
type Client struct {
	// BaseURL may be overridden for tests.
	BaseURL string
	HTTP    *http.Client
}

func New() *Client {
	return &Client{
		BaseURL: "https://api.frankfurter.app",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Snapshot is one day of reference rates: 1 unit of Base buys Rates[code]
// units of each quoted currency.
type Snapshot struct {
	Base  string
	Date  date.Date
	Rates map[string]float64
}

// Latest returns the most recent published snapshot, always EUR-based.
func (c *Client) Latest(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/latest", nil)
	if err != nil {
		return Snapshot{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("frankfurter: %v", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, err
	}

	var payload struct {
		Base  string             `json:"base"`
		Date  date.Date          `json:"date"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Snapshot{}, fmt.Errorf("frankfurter: %w", err)
	}
	return Snapshot{Base: payload.Base, Date: payload.Date, Rates: payload.Rates}, nil
}

// Rebase re-expresses the snapshot against another base by cross-division.
// The target must be quoted in the snapshot (or be the base itself); the old
// base joins the quoted side at the reciprocal rate.
func (s Snapshot) Rebase(base string) (Snapshot, error) {
	base = strings.ToUpper(base)
	if base == s.Base {
		return s, nil
	}
	b, ok := s.Rates[base]
	if !ok || b == 0 {
		return Snapshot{}, fmt.Errorf("%s->%s not provided by the feed", s.Base, base)
	}
	out := make(map[string]float64, len(s.Rates))
	for code, rate := range s.Rates {
		if code == base {
			continue
		}
		out[code] = rate / b
	}
	out[s.Base] = 1.0 / b
	return Snapshot{Base: base, Date: s.Date, Rates: out}, nil
}

// FxRates flattens the snapshot into rate rows for the rate store: one row
// per quoted currency, quote->base, so a stored row answers "how much base
// is one unit of this currency worth".
func (s Snapshot) FxRates() []portivue.FxRate {
	out := make([]portivue.FxRate, 0, len(s.Rates))
	for code, rate := range s.Rates {
		if rate == 0 {
			continue
		}
		out = append(out, portivue.FxRate{
			Base:  code,
			Quote: s.Base,
			Date:  s.Date,
			Rate:  1.0 / rate,
		})
	}
	return out
}
