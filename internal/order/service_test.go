package order_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	"github.com/feebook/feebook/internal/order"
	"github.com/shopspring/decimal"
)

func TestOrder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Order Suite")
}

// Mock order repository for testing
type mockOrderRepo struct {
	orders      map[int64]*ordermodel.Order
	createError error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int64]*ordermodel.Order)}
}

func (m *mockOrderRepo) Create(o *ordermodel.Order) error {
	if m.createError != nil {
		return m.createError
	}
	o.ID = int64(len(m.orders) + 1)
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(id int64) (*ordermodel.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return o, nil
}

func (m *mockOrderRepo) GetByExternalID(externalOrderID string) (*ordermodel.Order, error) {
	for _, o := range m.orders {
		if o.ExternalOrderID == externalOrderID {
			return o, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockOrderRepo) MarkTerminal(id int64, status string) (bool, error) {
	return false, nil
}

func (m *mockOrderRepo) ListActiveOlderThan(cutoff time.Time, limit int) ([]*ordermodel.Order, error) {
	return nil, nil
}

// Mock fee plan lookup for testing
type mockFeePlanAPI struct {
	plans map[int64]*feeplanmodel.FeePlan
}

func (m *mockFeePlanAPI) GetFeePlan(id int64) (*feeplanmodel.FeePlan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, apperrors.ErrFeePlanNotFound
	}
	copied := *plan
	return &copied, nil
}

// Mock payment gateway for testing
type mockGateway struct {
	createResp  *gatewaytypes.CreateOrderResponse
	createError error
	lastRequest *gatewaytypes.CreateOrderRequest
}

func (m *mockGateway) CreateOrder(ctx context.Context, req *gatewaytypes.CreateOrderRequest) (*gatewaytypes.CreateOrderResponse, error) {
	m.lastRequest = req
	if m.createError != nil {
		return nil, m.createError
	}
	return m.createResp, nil
}

func (m *mockGateway) GetOrder(ctx context.Context, externalOrderID string) (*gatewaytypes.OrderState, error) {
	return nil, errors.New("not used")
}

func (m *mockGateway) GetOrderPayments(ctx context.Context, externalOrderID string) ([]gatewaytypes.PaymentRecord, error) {
	return nil, errors.New("not used")
}

var _ = Describe("Service", func() {
	var (
		repo     *mockOrderRepo
		feePlans *mockFeePlanAPI
		gw       *mockGateway
		service  *order.Service
		ctx      context.Context
	)

	const (
		planID     = int64(10)
		memberID   = int64(5)
		providerID = int64(100)
	)

	amount := decimal.NewFromInt(25000)

	intent := func() order.CreateOrderDTO {
		consumerID := int64(7)
		return order.CreateOrderDTO{
			FeePlanID:  planID,
			MemberID:   memberID,
			ProviderID: providerID,
			ConsumerID: &consumerID,
		}
	}

	BeforeEach(func() {
		repo = newMockOrderRepo()
		feePlans = &mockFeePlanAPI{plans: map[int64]*feeplanmodel.FeePlan{
			planID: {
				ID:         planID,
				MemberID:   memberID,
				ProviderID: providerID,
				Name:       "Term 1 Tuition",
				Amount:     amount,
				DueDate:    time.Now().Add(30 * 24 * time.Hour),
			},
		}}
		gw = &mockGateway{createResp: &gatewaytypes.CreateOrderResponse{
			ExternalOrderID:  "cf_order_1",
			PaymentSessionID: "session_abc",
			OrderStatus:      gatewaytypes.OrderStateActive,
		}}
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = order.NewService(repo, feePlans, gw, logger)
	})

	Describe("CreateOrder", func() {
		It("mints a checkout session priced from the stored plan", func() {
			session, err := service.CreateOrder(ctx, intent())
			Expect(err).NotTo(HaveOccurred())
			Expect(session.ExternalOrderID).To(Equal("cf_order_1"))
			Expect(session.PaymentSessionID).To(Equal("session_abc"))
			Expect(session.Amount).To(Equal("25000.00"))
			Expect(session.Currency).To(Equal("INR"))

			// The gateway was asked for the plan's amount, not anything the
			// client could have supplied.
			Expect(gw.lastRequest.Amount.Equal(amount)).To(BeTrue())

			o := repo.orders[session.OrderID]
			Expect(o).NotTo(BeNil())
			Expect(o.Status).To(Equal(ordermodel.StatusActive))
			Expect(o.Amount.Equal(amount)).To(BeTrue())
			Expect(o.FeePlanID).To(Equal(planID))
		})

		It("rejects an intent whose member or provider does not match the plan", func() {
			dto := intent()
			dto.MemberID = memberID + 1
			_, err := service.CreateOrder(ctx, dto)
			Expect(err).To(Equal(apperrors.ErrUnauthorizedOwner))

			dto = intent()
			dto.ProviderID = providerID + 1
			_, err = service.CreateOrder(ctx, dto)
			Expect(err).To(Equal(apperrors.ErrUnauthorizedOwner))

			Expect(repo.orders).To(BeEmpty())
		})

		It("refuses to sell an already paid fee plan", func() {
			settled := int64(99)
			feePlans.plans[planID].PaidViaOrderID = &settled

			_, err := service.CreateOrder(ctx, intent())
			Expect(err).To(Equal(apperrors.ErrAlreadyPaid))
			Expect(repo.orders).To(BeEmpty())
		})

		It("treats an offline-paid plan as paid too", func() {
			feePlans.plans[planID].IsOfflinePaid = true

			_, err := service.CreateOrder(ctx, intent())
			Expect(err).To(Equal(apperrors.ErrAlreadyPaid))
		})

		It("persists nothing when the gateway call fails", func() {
			gw.createError = apperrors.NewGatewayUnavailableError("payment gateway unreachable", nil)

			_, err := service.CreateOrder(ctx, intent())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeGatewayUnavailable))
			Expect(repo.orders).To(BeEmpty())
		})

		It("fails for unknown fee plans", func() {
			dto := intent()
			dto.FeePlanID = 4242
			_, err := service.CreateOrder(ctx, dto)
			Expect(err).To(Equal(apperrors.ErrFeePlanNotFound))
		})

		It("rejects an incomplete intent", func() {
			_, err := service.CreateOrder(ctx, order.CreateOrderDTO{FeePlanID: planID})
			Expect(err).To(HaveOccurred())
			Expect(repo.orders).To(BeEmpty())
		})
	})

	Describe("FindByExternalID", func() {
		It("maps a miss to order not found", func() {
			_, err := service.FindByExternalID("cf_order_unknown")
			Expect(err).To(Equal(apperrors.ErrOrderNotFound))
		})
	})
})
