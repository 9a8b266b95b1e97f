package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/torn-watcher/internal/domain"
)

func TestStock(t *testing.T) {
	tests := []struct {
		name          string
		last, current int64
		want          StockKind
	}{
		{"restock", 0, 5, StockBack},
		{"sold out", 5, 0, StockOut},
		{"drops under threshold", 60, 40, StockLow},
		{"already low", 40, 35, StockNone},
		{"stays empty", 0, 0, StockNone},
		{"plenty left", 500, 120, StockNone},
		{"exact threshold is not low", 60, 50, StockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stock(tt.last, tt.current))
		})
	}
}

func TestStockNotice(t *testing.T) {
	a := domain.StockAlert{UserID: 7, ItemName: "Xanax", CountryCode: "jap"}

	n, ok := StockNotice(a, 12, StockLow)

	assert.True(t, ok)
	assert.Equal(t, int64(7), n.UserID)
	assert.Equal(t, string(StockLow), n.Kind)
	assert.Equal(t, "Only 12 Xanax left in Japan", n.Body)

	_, ok = StockNotice(a, 12, StockNone)
	assert.False(t, ok)
}
