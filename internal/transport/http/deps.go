package http

import (
	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/application/market"
	"github.com/torn-watcher/internal/infrastructure/dynamo"
	"github.com/torn-watcher/internal/infrastructure/push"
	"github.com/torn-watcher/internal/infrastructure/torn"
	"github.com/torn-watcher/internal/infrastructure/yata"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Credentials      credential.Source
	UserRepo         *dynamo.UserRepo
	DeviceRepo       *dynamo.DeviceRepo
	NotificationRepo *dynamo.NotificationRepo
	ChainTargetRepo  *dynamo.ChainTargetRepo
	StockAlertRepo   *dynamo.StockAlertRepo
	ItemRepo         *dynamo.ItemRepo
	StockRepo        *dynamo.StockRepo
	EventRepo        *dynamo.EventRepo
	Torn             *torn.Client
	StockFeed        *yata.Client
	Push             push.Gateway
	Archiver         market.Archiver // nil when S3_BUCKET_NAME is unset
}
