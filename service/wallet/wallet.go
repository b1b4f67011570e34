package wallet

import (
	"context"

	"lendfi/core"

	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type walletService struct {
	store core.IWalletStore
}

// New new wallet ledger service
func New(store core.IWalletStore) core.IWalletService {
	return &walletService{store: store}
}

func (s *walletService) Balance(ctx context.Context, userID, assetID string) (decimal.Decimal, error) {
	balance, err := s.find(ctx, userID, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.Balance, nil
}

func (s *walletService) Transfer(ctx context.Context, tx *db.DB, fromID, toID, assetID string, amount decimal.Decimal, memo string) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if err := s.debit(ctx, tx, fromID, assetID, amount); err != nil {
		return err
	}

	if err := s.credit(ctx, tx, toID, assetID, amount); err != nil {
		return err
	}

	return s.store.CreateTransfer(ctx, tx, &core.Transfer{
		TraceID:    foxuuid.New(),
		UserID:     fromID,
		OpponentID: toID,
		AssetID:    assetID,
		Amount:     amount,
		Memo:       memo,
	})
}

func (s *walletService) Mint(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, memo string) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if err := s.credit(ctx, tx, userID, assetID, amount); err != nil {
		return err
	}

	return s.store.CreateTransfer(ctx, tx, &core.Transfer{
		TraceID:    foxuuid.New(),
		OpponentID: userID,
		AssetID:    assetID,
		Amount:     amount,
		Memo:       memo,
	})
}

func (s *walletService) Burn(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, memo string) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if err := s.debit(ctx, tx, userID, assetID, amount); err != nil {
		return err
	}

	return s.store.CreateTransfer(ctx, tx, &core.Transfer{
		TraceID: foxuuid.New(),
		UserID:  userID,
		AssetID: assetID,
		Amount:  amount,
		Memo:    memo,
	})
}

func (s *walletService) debit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal) error {
	balance, err := s.find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if balance.Balance.LessThan(amount) {
		return &core.TokenBalanceError{AssetID: assetID, UserID: userID, Available: balance.Balance}
	}

	balance.Balance = balance.Balance.Sub(amount)
	return s.store.SaveBalance(ctx, tx, balance)
}

func (s *walletService) credit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal) error {
	balance, err := s.find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	balance.Balance = balance.Balance.Add(amount)
	return s.store.SaveBalance(ctx, tx, balance)
}

func (s *walletService) find(ctx context.Context, userID, assetID string) (*core.WalletBalance, error) {
	balance, err := s.store.FindBalance(ctx, userID, assetID)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.WalletBalance{
				UserID:  userID,
				AssetID: assetID,
				Balance: decimal.Zero,
			}, nil
		}

		return nil, err
	}

	return balance, nil
}
