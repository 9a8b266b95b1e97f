package transition

import (
	"fmt"

	"github.com/torn-watcher/internal/domain"
)

// LowStockThreshold is the quantity below which a shelf counts as running low.
const LowStockThreshold = 50

type StockKind string

const (
	StockNone StockKind = ""
	StockOut  StockKind = "out_of_stock"
	StockBack StockKind = "back_in_stock"
	StockLow  StockKind = "low_stock"
)

// Stock picks the message template for a quantity move from last to current.
func Stock(last, current int64) StockKind {
	switch {
	case current == 0 && last > 0:
		return StockOut
	case current > 0 && last == 0:
		return StockBack
	case current > 0 && current < LowStockThreshold && last >= LowStockThreshold:
		return StockLow
	default:
		return StockNone
	}
}

// StockNotice renders the message for kind. It returns false for StockNone.
func StockNotice(a domain.StockAlert, current int64, kind StockKind) (domain.Notice, bool) {
	where := countryName(a.CountryCode)
	n := domain.Notice{UserID: a.UserID, Kind: string(kind)}
	switch kind {
	case StockOut:
		n.Title = fmt.Sprintf("❌ %s Out of Stock", a.ItemName)
		n.Body = fmt.Sprintf("%s sold out in %s", a.ItemName, where)
	case StockBack:
		n.Title = fmt.Sprintf("✅ %s Back in Stock", a.ItemName)
		n.Body = fmt.Sprintf("%d %s available in %s", current, a.ItemName, where)
	case StockLow:
		n.Title = fmt.Sprintf("⚠️ %s Low Stock", a.ItemName)
		n.Body = fmt.Sprintf("Only %d %s left in %s", current, a.ItemName, where)
	default:
		return n, false
	}
	return n, true
}

var countries = map[string]string{
	"mex": "Mexico",
	"cay": "Cayman Islands",
	"can": "Canada",
	"haw": "Hawaii",
	"uni": "United Kingdom",
	"arg": "Argentina",
	"swi": "Switzerland",
	"jap": "Japan",
	"chi": "China",
	"uae": "UAE",
	"sou": "South Africa",
}

func countryName(code string) string {
	if name, ok := countries[code]; ok {
		return name
	}
	return code
}
