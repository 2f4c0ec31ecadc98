package rewards

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRewardsRepo struct {
	accounts map[uuid.UUID]*models.RewardAccount
	ledger   []models.RewardTransaction
}

func newStubRewardsRepo() *stubRewardsRepo {
	return &stubRewardsRepo{accounts: map[uuid.UUID]*models.RewardAccount{}}
}

func (s *stubRewardsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRewardsRepo) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	if _, ok := s.accounts[userID]; !ok {
		s.accounts[userID] = &models.RewardAccount{
			ID:         uuid.New(),
			UserID:     userID,
			Level:      enums.RewardLevelBronze,
			TotalSpent: decimal.Zero,
		}
	}
	return nil
}

func (s *stubRewardsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (s *stubRewardsRepo) AdjustPoints(ctx context.Context, userID uuid.UUID, delta int) (int64, error) {
	account, ok := s.accounts[userID]
	if !ok || account.Points+delta < 0 {
		return 0, nil
	}
	account.Points += delta
	return 1, nil
}

func (s *stubRewardsRepo) SetLevel(ctx context.Context, userID uuid.UUID, level enums.RewardLevel) error {
	if account, ok := s.accounts[userID]; ok {
		account.Level = level
	}
	return nil
}

func (s *stubRewardsRepo) AddTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (int64, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return 0, nil
	}
	account.TotalSpent = account.TotalSpent.Add(amount)
	return 1, nil
}

func (s *stubRewardsRepo) CreateTransaction(ctx context.Context, txn *models.RewardTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	s.ledger = append(s.ledger, *txn)
	return nil
}

func (s *stubRewardsRepo) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.RewardTransaction, error) {
	var rows []models.RewardTransaction
	for _, txn := range s.ledger {
		if txn.UserID == userID {
			rows = append(rows, txn)
		}
	}
	return rows, nil
}

func newTestRewardsService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, repo)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestAddPointsPromotesLevel(t *testing.T) {
	repo := newStubRewardsRepo()
	userID := uuid.New()
	repo.accounts[userID] = &models.RewardAccount{
		ID: uuid.New(), UserID: userID, Points: 150, Level: enums.RewardLevelBronze,
	}
	svc := newTestRewardsService(t, repo)

	account, err := svc.AddPoints(context.Background(), PointsInput{
		UserID: userID,
		Points: 60,
		Type:   enums.RewardTransactionEarned,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if account.Points != 210 {
		t.Fatalf("expected 210 points got %d", account.Points)
	}
	if account.Level != enums.RewardLevelSilver {
		t.Fatalf("crossing 200 must promote to Silver got %s", account.Level)
	}
	if len(repo.ledger) != 1 || repo.ledger[0].Points != 60 {
		t.Fatalf("expected one ledger row of 60 got %+v", repo.ledger)
	}
}

func TestRedemptionDemotesLevel(t *testing.T) {
	repo := newStubRewardsRepo()
	userID := uuid.New()
	repo.accounts[userID] = &models.RewardAccount{
		ID: uuid.New(), UserID: userID, Points: 520, Level: enums.RewardLevelGold,
	}
	svc := newTestRewardsService(t, repo)

	account, err := svc.AddPoints(context.Background(), PointsInput{
		UserID: userID,
		Points: -400,
		Type:   enums.RewardTransactionRedeemed,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if account.Points != 120 {
		t.Fatalf("expected 120 points got %d", account.Points)
	}
	if account.Level != enums.RewardLevelBronze {
		t.Fatalf("level must track the new balance got %s", account.Level)
	}
}

func TestRedemptionInsufficientPoints(t *testing.T) {
	repo := newStubRewardsRepo()
	userID := uuid.New()
	repo.accounts[userID] = &models.RewardAccount{
		ID: uuid.New(), UserID: userID, Points: 50, Level: enums.RewardLevelBronze,
	}
	svc := newTestRewardsService(t, repo)

	_, err := svc.AddPoints(context.Background(), PointsInput{
		UserID: userID,
		Points: -100,
		Type:   enums.RewardTransactionRedeemed,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT got %v", err)
	}
	if repo.accounts[userID].Points != 50 {
		t.Fatalf("points must be untouched got %d", repo.accounts[userID].Points)
	}
	if len(repo.ledger) != 0 {
		t.Fatalf("refused redemption must not write a ledger row, got %d", len(repo.ledger))
	}
}

func TestAddPointsValidation(t *testing.T) {
	svc := newTestRewardsService(t, newStubRewardsRepo())
	ctx := context.Background()

	_, err := svc.AddPoints(ctx, PointsInput{UserID: uuid.New(), Points: 0, Type: enums.RewardTransactionEarned})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for zero delta got %v", err)
	}

	_, err = svc.AddPoints(ctx, PointsInput{UserID: uuid.New(), Points: 10, Type: "bogus"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for bad type got %v", err)
	}
}

func TestUpdateTotalSpent(t *testing.T) {
	repo := newStubRewardsRepo()
	userID := uuid.New()
	svc := newTestRewardsService(t, repo)
	ctx := context.Background()

	err := svc.UpdateTotalSpent(ctx, userID, decimal.NewFromFloat(-1))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for negative amount got %v", err)
	}

	if err := svc.UpdateTotalSpent(ctx, userID, decimal.Zero); err != nil {
		t.Fatalf("zero amount is a no-op, got %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Fatal("zero amount must not create an account")
	}

	if err := svc.UpdateTotalSpent(ctx, userID, decimal.NewFromFloat(13.00)); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !repo.accounts[userID].TotalSpent.Equal(decimal.NewFromFloat(13.00)) {
		t.Fatalf("expected total spent 13.00 got %s", repo.accounts[userID].TotalSpent)
	}
}

func TestGetOrCreateAccountDefaults(t *testing.T) {
	repo := newStubRewardsRepo()
	svc := newTestRewardsService(t, repo)

	account, err := svc.GetOrCreateAccount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if account.Points != 0 || account.Level != enums.RewardLevelBronze {
		t.Fatalf("new accounts start at 0 points Bronze, got %d %s", account.Points, account.Level)
	}
}
