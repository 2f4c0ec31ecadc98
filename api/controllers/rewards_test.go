package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	rewardsvc "github.com/moh9765/dispatchly-backend/internal/rewards"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/pagination"
)

type stubRewardsService struct {
	getFn  func(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error)
	addFn  func(ctx context.Context, input rewardsvc.PointsInput) (*models.RewardAccount, error)
	listFn func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*rewardsvc.TransactionPage, error)
}

func (s *stubRewardsService) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*models.RewardAccount, error) {
	return s.getFn(ctx, userID)
}

func (s *stubRewardsService) AddPoints(ctx context.Context, input rewardsvc.PointsInput) (*models.RewardAccount, error) {
	return s.addFn(ctx, input)
}

func (s *stubRewardsService) UpdateTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	panic("not implemented")
}

func (s *stubRewardsService) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*rewardsvc.TransactionPage, error) {
	return s.listFn(ctx, userID, params)
}

func TestRewardAccountPayload(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()

	svc := &stubRewardsService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.RewardAccount, error) {
			return &models.RewardAccount{
				ID:         accountID,
				UserID:     userID,
				Points:     320,
				Level:      enums.RewardLevelSilver,
				TotalSpent: decimal.NewFromFloat(320.00),
			}, nil
		},
	}

	handler := RewardAccount(svc, nil)
	req := withActor(mustRequest(t, http.MethodGet, "/", ""), userID, string(enums.UserRoleCustomer))
	resp := serve(handler, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			AccountID uuid.UUID `json:"account_id"`
			Points    int       `json:"points"`
			Level     string    `json:"level"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccountID != accountID || envelope.Data.Points != 320 || envelope.Data.Level != "Silver" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestRewardRedeemNegatesPoints(t *testing.T) {
	userID := uuid.New()

	svc := &stubRewardsService{
		addFn: func(ctx context.Context, input rewardsvc.PointsInput) (*models.RewardAccount, error) {
			if input.Points != -150 {
				t.Fatalf("expected -150 points got %d", input.Points)
			}
			if input.Type != enums.RewardTransactionRedeemed {
				t.Fatalf("unexpected type %s", input.Type)
			}
			return &models.RewardAccount{ID: uuid.New(), UserID: userID, Points: 50, Level: enums.RewardLevelBronze}, nil
		},
	}

	handler := RewardRedeem(svc, nil)
	req := withActor(mustRequest(t, http.MethodPost, "/", `{"points": 150}`), userID, string(enums.UserRoleCustomer))
	resp := serve(handler, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRewardRedeemInsufficientPoints(t *testing.T) {
	svc := &stubRewardsService{
		addFn: func(ctx context.Context, input rewardsvc.PointsInput) (*models.RewardAccount, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient points")
		},
	}

	handler := RewardRedeem(svc, nil)
	req := withActor(mustRequest(t, http.MethodPost, "/", `{"points": 5000}`), uuid.New(), string(enums.UserRoleCustomer))
	resp := serve(handler, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeConflict) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestRewardRedeemRejectsNonPositive(t *testing.T) {
	handler := RewardRedeem(&stubRewardsService{}, nil)
	req := withActor(mustRequest(t, http.MethodPost, "/", `{"points": -10}`), uuid.New(), string(enums.UserRoleCustomer))
	resp := serve(handler, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
