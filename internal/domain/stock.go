package domain

import "fmt"

// StockAlert tracks the last seen quantity of an item in a foreign country for one user.
type StockAlert struct {
	UserID      int64  `json:"user_id" dynamodbav:"user_id"`
	AlertKey    string `json:"-" dynamodbav:"alert_key"`
	ItemID      int64  `json:"item_id" dynamodbav:"item_id"`
	CountryCode string `json:"country_code" dynamodbav:"country_code"`
	ItemName    string `json:"item_name" dynamodbav:"item_name"`
	LastQty     int64  `json:"last_qty" dynamodbav:"last_qty"`
}

// StockAlertKey builds the sort key for an (item, country) pair.
func StockAlertKey(itemID int64, countryCode string) string {
	return fmt.Sprintf("%d#%s", itemID, countryCode)
}

// ForeignStock is the current shelf quantity of an item abroad.
type ForeignStock struct {
	ItemID      int64
	CountryCode string
	Name        string
	Quantity    int64
	Cost        int64
}
