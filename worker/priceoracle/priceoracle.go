package priceoracle

import (
	"context"
	"fmt"
	"time"

	"lendfi/core"
	"lendfi/pkg/resthttp"
	"lendfi/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Worker pulls the latest round of every listed asset's price feed and
// persists rounds that pass validation. Rejected rounds are only logged,
// valuation keeps using the last accepted round until the feed recovers.
type Worker struct {
	worker.BaseJob
	endpoint string
	db       core.Database
	assets   core.IAssetStore
	prices   core.IPriceStore
	oracle   core.IOracleService
}

// New new price oracle worker
func New(
	location string,
	endpoint string,
	database core.Database,
	assets core.IAssetStore,
	prices core.IPriceStore,
	oracle core.IOracleService,
) *Worker {
	job := Worker{
		endpoint: endpoint,
		db:       database,
		assets:   assets,
		prices:   prices,
		oracle:   oracle,
	}

	l, _ := time.LoadLocation(location)
	job.Cron = cron.New(cron.WithLocation(l))
	job.Cron.AddFunc("@every 10s", job.Tick)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	assets, err := w.assets.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("assets.All")
		return err
	}

	for _, asset := range assets {
		if asset.OracleFeedID == "" {
			continue
		}

		if err := w.pollFeed(ctx, asset); err != nil {
			log.WithError(err).Errorln("poll feed", asset.OracleFeedID)
		}
	}

	return nil
}

func (w *Worker) pollFeed(ctx context.Context, asset *core.Asset) error {
	round, raw, err := w.fetchLatestRound(ctx, asset.OracleFeedID)
	if err != nil {
		return err
	}

	latest, notFound, err := w.prices.Latest(ctx, asset.OracleFeedID)
	if err != nil && !notFound {
		return err
	}

	if latest != nil && round.RoundID <= latest.RoundID {
		return nil
	}

	if _, err := w.oracle.Validate(ctx, round, latest, asset.OracleDecimals, time.Now()); err != nil {
		return err
	}

	round.Content = raw
	return w.db.Tx(func(tx *db.DB) error {
		return w.prices.Create(ctx, tx, round)
	})
}

// fetchLatestRound reads a Chainlink style latest round payload:
// round id, answer, answered-in round and the feed's updatedAt.
func (w *Worker) fetchLatestRound(ctx context.Context, feedID string) (*core.PriceRound, types.JSONText, error) {
	url := fmt.Sprintf("%s/feeds/%s/latest", w.endpoint, feedID)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, nil, err
	}

	if resp.IsError() {
		return nil, nil, fmt.Errorf("feed %s: status %d", feedID, resp.StatusCode())
	}

	var body struct {
		RoundID         string `json:"roundId"`
		Answer          string `json:"answer"`
		AnsweredInRound string `json:"answeredInRound"`
		UpdatedAt       int64  `json:"updatedAt"`
	}
	if err := resthttp.ParseResponse(resp, &body); err != nil {
		return nil, nil, err
	}

	answer, err := decimal.NewFromString(body.Answer)
	if err != nil {
		return nil, nil, fmt.Errorf("feed %s: bad answer %q", feedID, body.Answer)
	}

	round := &core.PriceRound{
		FeedID:          feedID,
		RoundID:         cast.ToUint64(body.RoundID),
		AnsweredInRound: cast.ToUint64(body.AnsweredInRound),
		Price:           answer,
		RoundAt:         time.Unix(body.UpdatedAt, 0),
	}

	return round, types.JSONText(resp.Body()), nil
}
