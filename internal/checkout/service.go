package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/internal/orders"
	"github.com/moh9765/dispatchly-backend/internal/products"
	"github.com/moh9765/dispatchly-backend/internal/rewards"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
	"github.com/moh9765/dispatchly-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderBroadcaster interface {
	Broadcast(ctx context.Context, orderID uuid.UUID) (int, error)
}

type pointsAccruer interface {
	AddPoints(ctx context.Context, input rewards.PointsInput) (*models.RewardAccount, error)
	UpdateTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

// CheckoutInput is a customer's order request. Prices are never taken from
// the client; the catalog is the only source of truth.
type CheckoutInput struct {
	CustomerID      uuid.UUID
	Items           []ItemInput
	DeliveryAddress types.DeliveryAddress
}

// ItemInput is one requested product line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutResult reports what checkout produced, including whether the
// best-effort side effects ran.
type CheckoutResult struct {
	OrderID       uuid.UUID
	TotalAmount   decimal.Decimal
	PointsAwarded int
	Broadcasted   bool
}

type service struct {
	tx          txRunner
	ordersRepo  orders.Repository
	productRepo products.Repository
	rewards     pointsAccruer
	broadcaster orderBroadcaster
	logg        *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	productRepo products.Repository,
	rewardsSvc pointsAccruer,
	broadcaster orderBroadcaster,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if rewardsSvc == nil {
		return nil, fmt.Errorf("rewards service required")
	}
	if broadcaster == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          tx,
		ordersRepo:  ordersRepo,
		productRepo: productRepo,
		rewards:     rewardsSvc,
		broadcaster: broadcaster,
		logg:        logg,
	}, nil
}

// Execute validates the request, creates the pending order with price
// snapshots and a server-computed total, then fires the best-effort side
// effects. Reward accrual and broadcast failures are logged and swallowed;
// the order itself must survive them.
func (s *service) Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(input.Items))
		seen := make(map[uuid.UUID]struct{}, len(input.Items))
		for _, item := range input.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
		found, err := productRepo.FindActiveByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Product, len(found))
		for _, product := range found {
			byID[product.ID] = product
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not found", item.ProductID))
			}
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		created, err := ordersRepo.Create(ctx, &models.Order{
			CustomerID:      input.CustomerID,
			Status:          enums.OrderStatusPending,
			TotalAmount:     total,
			DeliveryAddress: input.DeliveryAddress,
			Items:           items,
		})
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
	}
	result.PointsAwarded = s.accruePoints(ctx, order)
	result.Broadcasted = s.broadcastOrder(ctx, order.ID)
	return result, nil
}

func validateInput(input CheckoutInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required for every item")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if missing := input.DeliveryAddress.MissingFields(); len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "incomplete delivery address").
			WithDetails(map[string]any{"missing_fields": missing})
	}
	return nil
}

func (s *service) accruePoints(ctx context.Context, order *models.Order) int {
	points := int(order.TotalAmount.Round(0).IntPart())
	if points <= 0 {
		return 0
	}

	ref := order.ID
	_, err := s.rewards.AddPoints(ctx, rewards.PointsInput{
		UserID:      order.CustomerID,
		Points:      points,
		Type:        enums.RewardTransactionEarned,
		Description: fmt.Sprintf("order %s purchase", order.ID),
		ReferenceID: &ref,
	})
	if err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), fmt.Sprintf("accruing reward points failed: %v", err))
		return 0
	}
	if err := s.rewards.UpdateTotalSpent(ctx, order.CustomerID, order.TotalAmount); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), fmt.Sprintf("updating total spent failed: %v", err))
	}
	return points
}

func (s *service) broadcastOrder(ctx context.Context, orderID uuid.UUID) bool {
	if _, err := s.broadcaster.Broadcast(ctx, orderID); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, orderID.String()), fmt.Sprintf("broadcasting order failed: %v", err))
		return false
	}
	return true
}
