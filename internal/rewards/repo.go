package rewards

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	"github.com/moh9765/dispatchly-backend/pkg/pagination"
)

// Repository manages persistence for reward accounts and their ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureAccount(ctx context.Context, userID uuid.UUID) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error)
	AdjustPoints(ctx context.Context, userID uuid.UUID, delta int) (int64, error)
	SetLevel(ctx context.Context, userID uuid.UUID, level enums.RewardLevel) error
	AddTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error)
	CreateTransaction(ctx context.Context, txn *models.RewardTransaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.RewardTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rewards repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureAccount creates the account row if it does not exist yet. Safe under
// concurrent callers thanks to the user_id unique index.
func (r *repository) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	account := models.RewardAccount{
		UserID:     userID,
		Level:      enums.RewardLevelBronze,
		TotalSpent: decimal.Zero,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&account).Error
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error) {
	var account models.RewardAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AdjustPoints applies a signed delta, refusing any change that would drive
// the balance negative. Zero rows means either no account or not enough
// points.
func (r *repository) AdjustPoints(ctx context.Context, userID uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RewardAccount{}).
		Where("user_id = ? AND points + ? >= 0", userID, delta).
		Update("points", gorm.Expr("points + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *repository) SetLevel(ctx context.Context, userID uuid.UUID, level enums.RewardLevel) error {
	return r.db.WithContext(ctx).
		Model(&models.RewardAccount{}).
		Where("user_id = ?", userID).
		Update("level", level).Error
}

func (r *repository) AddTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RewardAccount{}).
		Where("user_id = ?", userID).
		Update("total_spent", gorm.Expr("total_spent + ?", amount))
	return res.RowsAffected, res.Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.RewardTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.RewardTransaction, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var txns []models.RewardTransaction
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
