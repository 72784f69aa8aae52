package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	errors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	"github.com/feebook/feebook/internal/feeplan"
	"github.com/feebook/feebook/internal/gateway"
	"github.com/google/uuid"
)

const orderCurrency = "INR"

// FeePlanAPI is the slice of the fee plan service the order manager needs.
type FeePlanAPI interface {
	GetFeePlan(id int64) (*feeplanmodel.FeePlan, error)
}

// Service translates a payment intent into a gateway-ready order. Exactly one
// Order row per successful call; the fee plan is never mutated here.
type Service struct {
	repo     Repository
	feePlans FeePlanAPI
	gateway  gateway.API
	logger   *slog.Logger
}

func NewService(repo Repository, feePlans FeePlanAPI, gw gateway.API, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		feePlans: feePlans,
		gateway:  gw,
		logger:   logger,
	}
}

// CreateOrder mints a gateway order plus checkout session for the fee plan.
// The amount is taken from the stored plan; any amount a client sends is
// ignored by construction.
func (s *Service) CreateOrder(ctx context.Context, dto CreateOrderDTO) (*OrderSession, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("create order validation failed", "error", err)
		return nil, err
	}

	plan, err := s.feePlans.GetFeePlan(dto.FeePlanID)
	if err != nil {
		return nil, err
	}

	if plan.MemberID != dto.MemberID || plan.ProviderID != dto.ProviderID {
		s.logger.Warn("order intent does not match fee plan ownership",
			"fee_plan_id", dto.FeePlanID,
			"member_id", dto.MemberID,
			"provider_id", dto.ProviderID)
		return nil, errors.ErrUnauthorizedOwner
	}

	if feeplan.DeriveStatus(plan, time.Now()) == feeplanmodel.StatusPaid {
		s.logger.Warn("rejecting order for already paid fee plan", "fee_plan_id", plan.ID)
		return nil, errors.ErrAlreadyPaid
	}

	orderRef := fmt.Sprintf("fb_%s", uuid.NewString())
	tags := map[string]string{
		"fee_plan_id": strconv.FormatInt(plan.ID, 10),
		"member_id":   strconv.FormatInt(plan.MemberID, 10),
		"provider_id": strconv.FormatInt(plan.ProviderID, 10),
	}

	gwResp, err := s.gateway.CreateOrder(ctx, &gatewaytypes.CreateOrderRequest{
		OrderID:     orderRef,
		Amount:      plan.Amount,
		Currency:    orderCurrency,
		CustomerRef: strconv.FormatInt(plan.MemberID, 10),
		OrderTags:   tags,
	})
	if err != nil {
		s.logger.Error("gateway order creation failed", "error", err, "fee_plan_id", plan.ID)
		return nil, err
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode order tags", err)
	}

	now := time.Now()
	o := &ordermodel.Order{
		ExternalOrderID:  gwResp.ExternalOrderID,
		FeePlanID:        plan.ID,
		MemberID:         plan.MemberID,
		ProviderID:       plan.ProviderID,
		ConsumerID:       dto.ConsumerID,
		Amount:           plan.Amount,
		Status:           ordermodel.StatusActive,
		PaymentSessionID: gwResp.PaymentSessionID,
		OrderTags:        tagsJSON,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(o); err != nil {
		s.logger.Error("failed to persist order", "error", err,
			"external_order_id", gwResp.ExternalOrderID,
			"fee_plan_id", plan.ID)
		return nil, errors.NewInternalError("failed to persist order", err)
	}

	s.logger.Info("order created",
		"order_id", o.ID,
		"external_order_id", o.ExternalOrderID,
		"fee_plan_id", plan.ID,
		"amount", plan.Amount.StringFixed(2))

	return &OrderSession{
		OrderID:          o.ID,
		ExternalOrderID:  o.ExternalOrderID,
		PaymentSessionID: o.PaymentSessionID,
		Amount:           o.Amount.StringFixed(2),
		Currency:         orderCurrency,
	}, nil
}

// FindByExternalID resolves a gateway-assigned order id to the stored order.
func (s *Service) FindByExternalID(externalOrderID string) (*ordermodel.Order, error) {
	o, err := s.repo.GetByExternalID(externalOrderID)
	if err != nil {
		s.logger.Error("order not found by external id", "external_order_id", externalOrderID, "error", err)
		return nil, errors.ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) GetByID(id int64) (*ordermodel.Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrOrderNotFound
	}
	return o, nil
}
