package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moh9765/dispatchly-backend/api/responses"
	"github.com/moh9765/dispatchly-backend/api/validators"
	rewardsvc "github.com/moh9765/dispatchly-backend/internal/rewards"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
)

type rewardAccountResponse struct {
	AccountID  uuid.UUID       `json:"account_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Points     int             `json:"points"`
	Level      string          `json:"level"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func newRewardAccountResponse(account *models.RewardAccount) rewardAccountResponse {
	if account == nil {
		return rewardAccountResponse{}
	}
	return rewardAccountResponse{
		AccountID:  account.ID,
		UserID:     account.UserID,
		Points:     account.Points,
		Level:      account.Level.String(),
		TotalSpent: account.TotalSpent,
	}
}

// RewardAccount returns the caller's reward account, creating it on first
// touch.
func RewardAccount(svc rewardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.GetOrCreateAccount(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRewardAccountResponse(account))
	}
}

// RewardRedeem spends points from the caller's balance. Redeeming more than
// the balance is refused.
func RewardRedeem(svc rewardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload redeemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.AddPoints(r.Context(), rewardsvc.PointsInput{
			UserID:      userID,
			Points:      -payload.Points,
			Type:        enums.RewardTransactionRedeemed,
			Description: "points redemption",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRewardAccountResponse(account))
	}
}

// RewardTransactions lists the caller's points ledger, newest first.
func RewardTransactions(svc rewardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListTransactions(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"transactions": page.Transactions,
			"next_cursor":  page.NextCursor,
		})
	}
}

type redeemRequest struct {
	Points int `json:"points" validate:"required,gt=0"`
}
