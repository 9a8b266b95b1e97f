package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable            = "enable"
	fieldEnabled           = "enabled"
	fieldUpdatedAt         = "updated_at"
	fieldCheckedAt         = "checked_at"
	fieldLastQty           = "last_qty"
	fieldWatched           = "watched"
	fieldLowestBazaarPrice = "lowest_bazaar_price"
)
