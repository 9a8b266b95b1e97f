package torn

import "fmt"

// APIError is the {"error":{"code":N,"error":"..."}} body Torn answers with
// instead of data. It is a soft failure: the caller skips the unit.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("torn api error %d: %s", e.Code, e.Message)
}

// Selections requested by the functions.
const (
	SelBars      = "bars"
	SelCooldowns = "cooldowns"
	SelTravel    = "travel"
	SelEducation = "education"
	SelProfile   = "profile"
	SelEvents    = "events"
	SelItems     = "items"
	SelStocks    = "stocks"
	SelBazaar    = "bazaar"
)

type Bar struct {
	Current  int64 `json:"current"`
	Maximum  int64 `json:"maximum"`
	FullTime int64 `json:"fulltime"`
}

type Chain struct {
	Current  int64 `json:"current"`
	Maximum  int64 `json:"maximum"`
	Timeout  int64 `json:"timeout"`
	Cooldown int64 `json:"cooldown"`
}

type Cooldowns struct {
	Drug    int64 `json:"drug"`
	Medical int64 `json:"medical"`
	Booster int64 `json:"booster"`
}

type Travel struct {
	Destination string `json:"destination"`
	Timestamp   int64  `json:"timestamp"`
	Departed    int64  `json:"departed"`
	TimeLeft    int64  `json:"time_left"`
}

type Status struct {
	Description string `json:"description"`
	Details     string `json:"details"`
	State       string `json:"state"`
	Until       int64  `json:"until"`
}

type Event struct {
	Timestamp int64  `json:"timestamp"`
	Event     string `json:"event"`
	Seen      int    `json:"seen"`
}

// UserResponse covers every user selection the functions request. A section
// is nil when its selection was not requested.
type UserResponse struct {
	PlayerID          int64            `json:"player_id"`
	Name              string           `json:"name"`
	Energy            *Bar             `json:"energy"`
	Nerve             *Bar             `json:"nerve"`
	Happy             *Bar             `json:"happy"`
	Life              *Bar             `json:"life"`
	Chain             *Chain           `json:"chain"`
	Cooldowns         *Cooldowns       `json:"cooldowns"`
	Travel            *Travel          `json:"travel"`
	Status            *Status          `json:"status"`
	EducationCurrent  int64            `json:"education_current"`
	EducationTimeLeft *int64           `json:"education_timeleft"`
	Events            map[string]Event `json:"events"`
}

type ItemInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	MarketValue int64  `json:"market_value"`
	Circulation int64  `json:"circulation"`
}

type ItemsResponse struct {
	Items map[string]ItemInfo `json:"items"`
	Raw   []byte              `json:"-"`
}

type StockInfo struct {
	StockID      int64   `json:"stock_id"`
	Acronym      string  `json:"acronym"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
}

type StocksResponse struct {
	Stocks map[string]StockInfo `json:"stocks"`
	Raw    []byte               `json:"-"`
}

type Listing struct {
	ID       int64 `json:"ID"`
	Cost     int64 `json:"cost"`
	Quantity int64 `json:"quantity"`
}

type MarketResponse struct {
	Bazaar []Listing `json:"bazaar"`
}
