package torn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client issues GET requests against the Torn API. The API key travels as a
// query parameter, so transport errors are stripped of the request URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// User fetches selections for a player. id 0 means the key owner.
func (c *Client) User(ctx context.Context, key string, id int64, selections ...string) (*UserResponse, error) {
	path := "/user/"
	if id != 0 {
		path += strconv.FormatInt(id, 10)
	}
	var out UserResponse
	if _, err := c.get(ctx, path, key, selections, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Items(ctx context.Context, key string) (*ItemsResponse, error) {
	var out ItemsResponse
	raw, err := c.get(ctx, "/torn/", key, []string{SelItems}, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

func (c *Client) Stocks(ctx context.Context, key string) (*StocksResponse, error) {
	var out StocksResponse
	raw, err := c.get(ctx, "/torn/", key, []string{SelStocks}, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

// Bazaar returns the bazaar listings of an item.
func (c *Client) Bazaar(ctx context.Context, key string, itemID int64) ([]Listing, error) {
	var out MarketResponse
	if _, err := c.get(ctx, "/market/"+strconv.FormatInt(itemID, 10), key, []string{SelBazaar}, &out); err != nil {
		return nil, err
	}
	return out.Bazaar, nil
}

func (c *Client) get(ctx context.Context, path, key string, selections []string, out interface{}) ([]byte, error) {
	q := url.Values{}
	q.Set("selections", strings.Join(selections, ","))
	q.Set("key", key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return body, nil
}

// IsAPIError reports whether err carries a Torn error payload.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
