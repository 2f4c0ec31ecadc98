package rewards

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages reward accounts, their level, and the points ledger.
type Service interface {
	GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error)
	AddPoints(ctx context.Context, input PointsInput) (*models.RewardAccount, error)
	UpdateTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionPage, error)
}

// PointsInput captures one signed points adjustment.
type PointsInput struct {
	UserID      uuid.UUID
	Points      int
	Type        enums.RewardTransactionType
	Description string
	ReferenceID *uuid.UUID
}

// TransactionPage is one page of ledger rows plus the cursor for the next.
type TransactionPage struct {
	Transactions []models.RewardTransaction
	NextCursor   string
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService builds a rewards service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByUser(ctx, userID)
}

// AddPoints applies a signed delta to the account, recomputes the level, and
// appends the ledger row in one transaction. A delta that would drive the
// balance negative is refused.
func (s *service) AddPoints(ctx context.Context, input PointsInput) (*models.RewardAccount, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Points == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points delta must be non-zero")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid reward transaction type %q", input.Type))
	}

	var account *models.RewardAccount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.EnsureAccount(ctx, input.UserID); err != nil {
			return err
		}
		rows, err := repo.AdjustPoints(ctx, input.UserID, input.Points)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient points")
		}

		updated, err := repo.FindByUser(ctx, input.UserID)
		if err != nil {
			return err
		}
		level := enums.RewardLevelForPoints(updated.Points)
		if level != updated.Level {
			if err := repo.SetLevel(ctx, input.UserID, level); err != nil {
				return err
			}
			updated.Level = level
		}

		description := input.Description
		if description == "" {
			description = "points adjustment"
		}
		if err := repo.CreateTransaction(ctx, &models.RewardTransaction{
			UserID:      input.UserID,
			Points:      input.Points,
			Description: description,
			Type:        input.Type,
			ReferenceID: input.ReferenceID,
		}); err != nil {
			return err
		}

		account = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateTotalSpent bumps the lifetime spend counter. It only ever grows.
func (s *service) UpdateTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if amount.IsZero() {
		return nil
	}
	if err := s.repo.EnsureAccount(ctx, userID); err != nil {
		return err
	}
	_, err := s.repo.AddTotalSpent(ctx, userID, amount)
	return err
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
