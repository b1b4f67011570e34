package position

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendfi/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBorrowCreditLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	// 10 units at $1000 with a 65% borrow threshold: credit limit $6500
	env.listAsset("btc", core.TierCrossA, 6500, 7500)
	env.setPrice("btc", 1000)
	env.fund("alice", "btc", 10)
	env.seedPool(10000)

	position, err := env.svc.Open(ctx, "alice", "btc", false)
	require.NoError(t, err)
	pid := position.PositionID

	require.NoError(t, env.svc.Supply(ctx, "alice", pid, "btc", decimal.NewFromInt(10)))

	t.Run("borrow up to the limit", func(t *testing.T) {
		require.NoError(t, env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(6500)))

		require.True(t, env.balance("alice", "base").Equal(decimal.NewFromInt(6500)))

		pool, err := env.pools.Find(ctx)
		require.NoError(t, err)
		require.True(t, pool.TotalBorrows.Equal(decimal.NewFromInt(6500)))
		require.True(t, pool.TotalCash.Equal(decimal.NewFromInt(3500)))

		fresh, err := env.positions.Find(ctx, "alice", pid)
		require.NoError(t, err)
		require.True(t, fresh.DebtAmount.Equal(decimal.NewFromInt(6500)))
	})

	t.Run("one cent past the limit fails", func(t *testing.T) {
		err := env.svc.Borrow(ctx, "alice", pid, decimal.NewFromFloat(0.01))
		require.ErrorIs(t, err, core.ErrExceedsCreditLimit)

		var limitErr *core.LimitError
		require.True(t, errors.As(err, &limitErr))
		require.True(t, limitErr.Limit.Equal(decimal.NewFromInt(6500)))
	})

	t.Run("more collateral raises the limit", func(t *testing.T) {
		env.fund("bob", "btc", 20)

		position, err := env.svc.Open(ctx, "bob", "btc", false)
		require.NoError(t, err)

		require.NoError(t, env.svc.Supply(ctx, "bob", position.PositionID, "btc", decimal.NewFromInt(10)))
		err = env.svc.Borrow(ctx, "bob", position.PositionID, decimal.NewFromInt(7000))
		require.ErrorIs(t, err, core.ErrExceedsCreditLimit)

		// doubling the collateral doubles the limit
		require.NoError(t, env.svc.Supply(ctx, "bob", position.PositionID, "btc", decimal.NewFromInt(10)))
		err = env.svc.Borrow(ctx, "bob", position.PositionID, decimal.NewFromInt(7000))

		// limit is now 13000, but the pool only has 3500 cash left
		require.ErrorIs(t, err, core.ErrInsufficientLiquidity)
		require.NoError(t, env.svc.Borrow(ctx, "bob", position.PositionID, decimal.NewFromInt(3500)))
	})
}

func TestBorrowLiquidity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.listAsset("btc", core.TierCrossA, 6500, 7500)
	env.setPrice("btc", 1000)
	env.fund("alice", "btc", 100)

	position, err := env.svc.Open(ctx, "alice", "btc", false)
	require.NoError(t, err)
	pid := position.PositionID

	require.NoError(t, env.svc.Supply(ctx, "alice", pid, "btc", decimal.NewFromInt(100)))

	t.Run("no pool", func(t *testing.T) {
		err := env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(100))
		require.ErrorIs(t, err, core.ErrInsufficientLiquidity)
	})

	t.Run("cash below request", func(t *testing.T) {
		env.seedPool(100)

		err := env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(200))
		require.ErrorIs(t, err, core.ErrInsufficientLiquidity)

		var limitErr *core.LimitError
		require.True(t, errors.As(err, &limitErr))
		require.True(t, limitErr.Limit.Equal(decimal.NewFromInt(100)))
	})

	t.Run("invalid amount", func(t *testing.T) {
		err := env.svc.Borrow(ctx, "alice", pid, decimal.Zero)
		require.ErrorIs(t, err, core.ErrInvalidAmount)
	})
}

func TestRepay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.listAsset("btc", core.TierCrossA, 6500, 7500)
	env.setPrice("btc", 1000)
	env.fund("alice", "btc", 10)
	env.seedPool(10000)

	position, err := env.svc.Open(ctx, "alice", "btc", false)
	require.NoError(t, err)
	pid := position.PositionID

	require.NoError(t, env.svc.Supply(ctx, "alice", pid, "btc", decimal.NewFromInt(10)))

	t.Run("round trip leaves the pool unchanged", func(t *testing.T) {
		require.NoError(t, env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(1000)))
		require.NoError(t, env.svc.Repay(ctx, "alice", pid, decimal.NewFromInt(1000)))

		pool, err := env.pools.Find(ctx)
		require.NoError(t, err)
		require.True(t, pool.TotalBorrows.IsZero())
		require.True(t, pool.TotalCash.Equal(decimal.NewFromInt(10000)))
		require.True(t, pool.TotalAccruedInterest.IsZero())

		fresh, err := env.positions.Find(ctx, "alice", pid)
		require.NoError(t, err)
		require.True(t, fresh.DebtAmount.IsZero())
		require.True(t, env.balance("alice", "base").IsZero())
	})

	t.Run("repay with no debt", func(t *testing.T) {
		env.fund("alice", "base", 100)
		err := env.svc.Repay(ctx, "alice", pid, decimal.NewFromInt(100))
		require.ErrorIs(t, err, core.ErrInvalidAmount)
	})

	t.Run("overpayment is capped at the debt", func(t *testing.T) {
		require.NoError(t, env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(500)))
		// wallet holds 100 + 500 borrowed; a 800 repayment only takes 500
		require.NoError(t, env.svc.Repay(ctx, "alice", pid, decimal.NewFromInt(800)))

		require.True(t, env.balance("alice", "base").Equal(decimal.NewFromInt(100)))

		fresh, err := env.positions.Find(ctx, "alice", pid)
		require.NoError(t, err)
		require.True(t, fresh.DebtAmount.IsZero())
	})
}

func TestDebtWithInterest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.listAsset("btc", core.TierCrossA, 6500, 7500)
	env.listAsset("alt", core.TierIsolated, 4000, 5000)
	env.seedPool(10000)

	t.Run("no debt reads as stored", func(t *testing.T) {
		position := &core.Position{DebtAmount: decimal.Zero}
		debt, err := env.svc.DebtWithInterest(ctx, position, time.Now())
		require.NoError(t, err)
		require.True(t, debt.IsZero())
	})

	t.Run("debt grows with time", func(t *testing.T) {
		now := time.Now()
		position := &core.Position{
			DebtAmount:          decimal.NewFromInt(1000),
			LastInterestAccrual: now.Add(-24 * time.Hour),
			AssetIDs:            []string{"btc"},
		}

		debt, err := env.svc.DebtWithInterest(ctx, position, now)
		require.NoError(t, err)
		require.True(t, debt.GreaterThan(decimal.NewFromInt(1000)))
		// a day at a few percent stays well under 1%
		require.True(t, debt.LessThan(decimal.NewFromInt(1010)))
	})

	t.Run("riskier collateral pays more", func(t *testing.T) {
		now := time.Now()
		cross := &core.Position{
			DebtAmount:          decimal.NewFromInt(1000),
			LastInterestAccrual: now.Add(-24 * time.Hour),
			AssetIDs:            []string{"btc"},
		}
		isolated := &core.Position{
			DebtAmount:          decimal.NewFromInt(1000),
			LastInterestAccrual: now.Add(-24 * time.Hour),
			AssetIDs:            []string{"alt"},
		}

		crossDebt, err := env.svc.DebtWithInterest(ctx, cross, now)
		require.NoError(t, err)
		isolatedDebt, err := env.svc.DebtWithInterest(ctx, isolated, now)
		require.NoError(t, err)

		require.True(t, isolatedDebt.GreaterThan(crossDebt))
	})

	t.Run("highest tier wins", func(t *testing.T) {
		position := &core.Position{AssetIDs: []string{"btc", "alt"}}
		tier, err := env.svc.HighestTier(ctx, position)
		require.NoError(t, err)
		require.Equal(t, core.TierIsolated, tier)
	})
}

func TestBorrowIsolatedNoCollateral(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.listAsset("alt", core.TierIsolated, 4000, 5000)
	env.setPrice("alt", 100)
	env.fund("alice", "alt", 100)
	env.seedPool(10000)

	position, err := env.svc.Open(ctx, "alice", "alt", true)
	require.NoError(t, err)
	pid := position.PositionID

	// bound at open but nothing supplied yet
	err = env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(10))
	require.ErrorIs(t, err, core.ErrNoIsolatedCollateral)

	t.Run("withdrawn to zero reads the same", func(t *testing.T) {
		require.NoError(t, env.svc.Supply(ctx, "alice", pid, "alt", decimal.NewFromInt(10)))
		require.NoError(t, env.svc.Withdraw(ctx, "alice", pid, "alt", decimal.NewFromInt(10)))

		err := env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(10))
		require.ErrorIs(t, err, core.ErrNoIsolatedCollateral)
	})
}

func TestTierFollowsSuppliedCollateral(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.listAsset("usd", core.TierStable, 9000, 9500)
	env.listAsset("eth", core.TierCrossB, 5000, 6000)
	env.setPrice("usd", 1)
	env.fund("alice", "usd", 1000)

	// opened naming a CROSS_B asset, but only stable collateral is supplied
	position, err := env.svc.Open(ctx, "alice", "eth", false)
	require.NoError(t, err)

	tier, err := env.svc.HighestTier(ctx, position)
	require.NoError(t, err)
	require.Equal(t, core.TierStable, tier)

	require.NoError(t, env.svc.Supply(ctx, "alice", position.PositionID, "usd", decimal.NewFromInt(1000)))

	fresh, err := env.positions.Find(ctx, "alice", position.PositionID)
	require.NoError(t, err)

	tier, err = env.svc.HighestTier(ctx, fresh)
	require.NoError(t, err)
	require.Equal(t, core.TierStable, tier)
}

func TestIsolationDebtCap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	asset := env.listAsset("alt", core.TierIsolated, 4000, 5000)
	asset.IsolationDebtCap = decimal.NewFromInt(1000)
	env.setPrice("alt", 100)
	env.fund("alice", "alt", 100)
	env.seedPool(10000)

	position, err := env.svc.Open(ctx, "alice", "alt", true)
	require.NoError(t, err)
	pid := position.PositionID

	// 100 units at $100 with a 40% threshold: credit limit $4000
	require.NoError(t, env.svc.Supply(ctx, "alice", pid, "alt", decimal.NewFromInt(100)))

	require.NoError(t, env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(800)))

	updated, _ := env.assets.Find(ctx, "alt")
	require.True(t, updated.TotalIsolationDebt.Equal(decimal.NewFromInt(800)))

	err = env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(300))
	require.ErrorIs(t, err, core.ErrIsolationDebtCapExceeded)

	require.NoError(t, env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(200)))

	t.Run("repaid principal frees the cap", func(t *testing.T) {
		require.NoError(t, env.svc.Repay(ctx, "alice", pid, decimal.NewFromInt(500)))

		updated, _ := env.assets.Find(ctx, "alt")
		require.True(t, updated.TotalIsolationDebt.Equal(decimal.NewFromInt(500)))

		require.NoError(t, env.svc.Borrow(ctx, "alice", pid, decimal.NewFromInt(500)))
	})
}
