package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/pagination"
)

// DriverCommissionRate is the share of an order total credited to the driver
// when the delivery completes.
var DriverCommissionRate = decimal.NewFromFloat(0.15)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages wallet balances and their append-only ledger.
type Service interface {
	GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error)
	AddFunds(ctx context.Context, input FundsInput) (*models.WalletAccount, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.WalletAccount, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionPage, error)
	CreditDriverEarnings(ctx context.Context, tx *gorm.DB, orderID, driverID uuid.UUID, orderTotal decimal.Decimal) (decimal.Decimal, error)
}

// FundsInput captures one wallet credit.
type FundsInput struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Type        enums.WalletTransactionType
	Description string
	ReferenceID *uuid.UUID
}

// TransactionPage is one page of ledger rows plus the cursor for the next.
type TransactionPage struct {
	Transactions []models.WalletTransaction
	NextCursor   string
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService builds a wallet service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByUser(ctx, userID)
}

func (s *service) AddFunds(ctx context.Context, input FundsInput) (*models.WalletAccount, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid wallet transaction type %q", input.Type))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return creditFunds(ctx, s.repo.WithTx(tx), input)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUser(ctx, input.UserID)
}

func (s *service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.WalletAccount, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.EnsureAccount(ctx, userID); err != nil {
			return err
		}
		rows, err := repo.DeductBalance(ctx, userID, amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient funds")
		}
		return repo.CreateTransaction(ctx, &models.WalletTransaction{
			UserID:      userID,
			Amount:      amount.Neg(),
			Description: "wallet withdrawal",
			Type:        enums.WalletTransactionWithdrawal,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUser(ctx, userID)
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListTransactions(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &TransactionPage{Transactions: rows}
	if len(rows) > limit {
		page.Transactions = rows[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// CreditDriverEarnings pays the driver their commission for a delivered order.
// It runs on the caller's transaction so the credit commits or rolls back with
// the status flip.
func (s *service) CreditDriverEarnings(ctx context.Context, tx *gorm.DB, orderID, driverID uuid.UUID, orderTotal decimal.Decimal) (decimal.Decimal, error) {
	if tx == nil {
		return decimal.Zero, fmt.Errorf("transaction handle required")
	}
	if driverID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}

	commission := orderTotal.Mul(DriverCommissionRate).Round(2)
	if !commission.IsPositive() {
		return decimal.Zero, nil
	}

	ref := orderID
	if err := creditFunds(ctx, s.repo.WithTx(tx), FundsInput{
		UserID:      driverID,
		Amount:      commission,
		Type:        enums.WalletTransactionEarning,
		Description: "delivery earnings",
		ReferenceID: &ref,
	}); err != nil {
		return decimal.Zero, err
	}
	return commission, nil
}

func creditFunds(ctx context.Context, repo Repository, input FundsInput) error {
	if err := repo.EnsureAccount(ctx, input.UserID); err != nil {
		return err
	}
	rows, err := repo.AddBalance(ctx, input.UserID, input.Amount)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.New("wallet account missing after ensure")
	}
	description := input.Description
	if description == "" {
		description = "wallet credit"
	}
	return repo.CreateTransaction(ctx, &models.WalletTransaction{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Description: description,
		Type:        input.Type,
		ReferenceID: input.ReferenceID,
	})
}
