package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
)

type stubBroadcastService struct {
	broadcastFn func(ctx context.Context, orderID uuid.UUID) (int, error)
	acceptFn    func(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error)
	rejectFn    func(ctx context.Context, orderID, driverID uuid.UUID) error
	offersFn    func(ctx context.Context, driverID uuid.UUID) ([]models.Order, error)
	updateFn    func(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, driverID *uuid.UUID) (*models.Order, error)
	positionFn  func(ctx context.Context, driverID uuid.UUID, lat, lng float64) error
}

func (s *stubBroadcastService) Broadcast(ctx context.Context, orderID uuid.UUID) (int, error) {
	if s.broadcastFn != nil {
		return s.broadcastFn(ctx, orderID)
	}
	return 0, nil
}

func (s *stubBroadcastService) ListOffers(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	if s.offersFn != nil {
		return s.offersFn(ctx, driverID)
	}
	return nil, nil
}

func (s *stubBroadcastService) Accept(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, orderID, driverID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no offer for this driver")
}

func (s *stubBroadcastService) Reject(ctx context.Context, orderID, driverID uuid.UUID) error {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, orderID, driverID)
	}
	return nil
}

func (s *stubBroadcastService) DirectAssign(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubBroadcastService) UpdateDeliveryStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, driverID *uuid.UUID) (*models.Order, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, orderID, status, driverID)
	}
	panic("not implemented")
}

func (s *stubBroadcastService) UpdatePosition(ctx context.Context, driverID uuid.UUID, lat, lng float64) error {
	if s.positionFn != nil {
		return s.positionFn(ctx, driverID, lat, lng)
	}
	panic("not implemented")
}

func TestBroadcastOrderReportsCount(t *testing.T) {
	orderID := uuid.New()
	svc := &stubBroadcastService{
		broadcastFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			return 3, nil
		},
	}

	handler := BroadcastOrder(svc, nil)
	req := withOrderID(mustRequest(t, http.MethodPost, "/", ""), orderID)
	resp := serve(handler, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			DriversNotified int `json:"drivers_notified"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DriversNotified != 3 {
		t.Fatalf("expected 3 got %d", envelope.Data.DriversNotified)
	}
}

func TestBroadcastOrderInvalidID(t *testing.T) {
	handler := BroadcastOrder(&stubBroadcastService{}, nil)
	resp := serve(handler, mustRequest(t, http.MethodPost, "/", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcceptOfferConflict(t *testing.T) {
	orderID := uuid.New()
	svc := &stubBroadcastService{
		acceptFn: func(ctx context.Context, id, driverID uuid.UUID) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order no longer available")
		},
	}

	handler := AcceptOffer(svc, nil)
	req := withActor(withOrderID(mustRequest(t, http.MethodPost, "/", ""), orderID), uuid.New(), string(enums.UserRoleDriver))
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

func TestAcceptOfferSuccess(t *testing.T) {
	orderID := uuid.New()
	driverID := uuid.New()
	svc := &stubBroadcastService{
		acceptFn: func(ctx context.Context, id, driver uuid.UUID) (*models.Order, error) {
			if driver != driverID {
				t.Fatalf("unexpected driver %s", driver)
			}
			return &models.Order{ID: id, DriverID: &driver, Status: enums.OrderStatusInTransit}, nil
		},
	}

	handler := AcceptOffer(svc, nil)
	req := withActor(withOrderID(mustRequest(t, http.MethodPost, "/", ""), orderID), driverID, string(enums.UserRoleDriver))
	resp := serve(handler, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			OrderID uuid.UUID `json:"order_id"`
			Status  string    `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID || envelope.Data.Status != "in_transit" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAcceptOfferRequiresAuth(t *testing.T) {
	handler := AcceptOffer(&stubBroadcastService{}, nil)
	req := withOrderID(mustRequest(t, http.MethodPost, "/", ""), uuid.New())
	resp := serve(handler, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
