package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/moh9765/dispatchly-backend/pkg/db"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/pagination"
)

// Repository manages persistence for wallet accounts and their ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureAccount(ctx context.Context, userID uuid.UUID) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error)
	AddBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error)
	DeductBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error)
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureAccount creates the wallet row if it does not exist yet. A concurrent
// creator losing the race on the user_id unique index is treated as success.
func (r *repository) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	account := models.WalletAccount{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: decimal.Zero,
	}
	if err := r.db.WithContext(ctx).Create(&account).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "wallet_accounts_user_id_key") {
			return nil
		}
		return err
	}
	return nil
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) AddBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	return res.RowsAffected, res.Error
}

// DeductBalance only touches the row when the balance covers the amount, so
// concurrent withdrawals cannot drive it negative.
func (r *repository) DeductBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	return res.RowsAffected, res.Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var txns []models.WalletTransaction
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
