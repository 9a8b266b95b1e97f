package yata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/torn-watcher/internal/domain"
)

// Client reads the community foreign-stock export: current shelf quantities
// of every item in every country Torn players can fly to.
type Client struct {
	httpClient *http.Client
	url        string
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}, url: url}
}

type export struct {
	Stocks map[string]struct {
		Update int64 `json:"update"`
		Stocks []struct {
			ID       int64  `json:"id"`
			Name     string `json:"name"`
			Quantity int64  `json:"quantity"`
			Cost     int64  `json:"cost"`
		} `json:"stocks"`
	} `json:"stocks"`
}

// ForeignStock returns every (item, country) quantity, sorted by country then item id.
func (c *Client) ForeignStock(ctx context.Context) ([]domain.ForeignStock, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch foreign stock: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch foreign stock: unexpected status %d", resp.StatusCode)
	}

	var ex export
	if err := json.NewDecoder(resp.Body).Decode(&ex); err != nil {
		return nil, fmt.Errorf("decode foreign stock: %w", err)
	}

	var out []domain.ForeignStock
	for country, shelf := range ex.Stocks {
		for _, s := range shelf.Stocks {
			out = append(out, domain.ForeignStock{
				ItemID:      s.ID,
				CountryCode: country,
				Name:        s.Name,
				Quantity:    s.Quantity,
				Cost:        s.Cost,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CountryCode != out[j].CountryCode {
			return out[i].CountryCode < out[j].CountryCode
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}
