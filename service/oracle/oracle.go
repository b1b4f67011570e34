package oracle

import (
	"context"
	"time"

	"lendfi/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	// PriceTimeout max round age, boundary inclusive
	PriceTimeout = 8 * time.Hour
	// VolatilityWindow a large move older than this is rejected
	VolatilityWindow = time.Hour
)

// MaxVolatility max accepted move against the previous round
var MaxVolatility = decimal.NewFromFloat(0.2)

type oracleService struct {
	prices core.IPriceStore
}

// New new oracle service
func New(prices core.IPriceStore) core.IOracleService {
	return &oracleService{prices: prices}
}

// Validate runs the round through the validation pipeline and returns the
// USD price scaled out of the feed's decimals. It holds no state and is
// invoked on every valuation; results must not be cached across calls.
func (s *oracleService) Validate(ctx context.Context, round, prev *core.PriceRound, oracleDecimals int32, now time.Time) (decimal.Decimal, error) {
	if !round.Price.IsPositive() {
		return decimal.Zero, core.ErrOracleInvalidPrice
	}

	if round.AnsweredInRound < round.RoundID {
		return decimal.Zero, core.ErrOracleStalePrice
	}

	age := now.Sub(round.RoundAt)
	if age > PriceTimeout {
		return decimal.Zero, core.ErrOracleTimeout
	}

	// a fresh large move is a market event, a stale large move is a
	// broken feed
	if prev != nil && prev.Price.IsPositive() && age >= VolatilityWindow {
		move := round.Price.Sub(prev.Price).Abs().Div(prev.Price)
		if move.GreaterThan(MaxVolatility) {
			return decimal.Zero, core.ErrOracleInvalidPriceVolatility
		}
	}

	return round.Price.Shift(-oracleDecimals), nil
}

func (s *oracleService) Price(ctx context.Context, asset *core.Asset, now time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("feed", asset.OracleFeedID)

	round, notFound, err := s.prices.Latest(ctx, asset.OracleFeedID)
	if err != nil {
		if notFound {
			return decimal.Zero, core.ErrOracleInvalidPrice
		}

		log.WithError(err).Errorln("prices.Latest")
		return decimal.Zero, err
	}

	var prev *core.PriceRound
	if p, notFound, err := s.prices.Previous(ctx, asset.OracleFeedID, round.RoundID); err == nil {
		prev = p
	} else if !notFound {
		log.WithError(err).Errorln("prices.Previous")
		return decimal.Zero, err
	}

	return s.Validate(ctx, round, prev, asset.OracleDecimals, now)
}
