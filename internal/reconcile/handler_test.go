package reconcile_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	"github.com/feebook/feebook/internal/reconcile"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/shopspring/decimal"
)

var _ = Describe("Handler", func() {
	var (
		orders    *mockOrderRepo
		plans     *mockPlanRepo
		providers *mockProviderRepo
		gw        *mockGateway
		handler   *reconcile.Handler
	)

	amount := decimal.NewFromInt(2500)

	BeforeEach(func() {
		orders = newMockOrderRepo()
		plans = newMockPlanRepo()
		providers = newMockProviderRepo()
		gw = &mockGateway{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		ledger := transaction.NewService(newMockTransactionRepo(), logger)
		settlements := newMockSettlements(orders, plans, providers)
		engine := reconcile.NewEngine(orders, plans, ledger, settlements, gw, &mockPublisher{}, logger)
		handler = reconcile.NewHandler(engine, logger)

		orders.orders[1] = &ordermodel.Order{
			ID:              1,
			ExternalOrderID: "cf_order_1",
			FeePlanID:       10,
			MemberID:        5,
			ProviderID:      100,
			Amount:          amount,
			Status:          ordermodel.StatusActive,
			CreatedAt:       time.Now().Add(-time.Hour),
		}
		plans.plans[10] = &feeplanmodel.FeePlan{
			ID:         10,
			MemberID:   5,
			ProviderID: 100,
			Amount:     amount,
			DueDate:    time.Now().Add(24 * time.Hour),
		}
		gw.state = &gatewaytypes.OrderState{Status: gatewaytypes.OrderStatePaid, Amount: amount, Currency: "INR"}
	})

	Describe("VerifyOrder", func() {
		It("requires an order_id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/pg/verify-order", nil)
			rec := httptest.NewRecorder()

			handler.VerifyOrder(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns the reconciled order state inside the response envelope", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/pg/verify-order?order_id=cf_order_1", nil)
			rec := httptest.NewRecorder()

			handler.VerifyOrder(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body struct {
				Success bool                       `json:"success"`
				Data    reconcile.VerificationView `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Success).To(BeTrue())
			Expect(body.Data.Order.Status).To(Equal(ordermodel.StatusPaid))
			Expect(body.Data.Order.ExternalOrderID).To(Equal("cf_order_1"))
		})

		It("marks failures with success false and a structured error", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/pg/verify-order?order_id=cf_order_unknown", nil)
			rec := httptest.NewRecorder()

			handler.VerifyOrder(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))

			var body map[string]json.RawMessage
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKey("success"))
			Expect(string(body["success"])).To(Equal("false"))
			Expect(body).To(HaveKey("error"))
			Expect(body).NotTo(HaveKey("data"))
		})

		It("answers 202 while the gateway outcome is unknown", func() {
			gw.getOrderErr = apperrors.NewGatewayUnavailableError("payment gateway unreachable", nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/pg/verify-order?order_id=cf_order_1", nil)
			rec := httptest.NewRecorder()

			handler.VerifyOrder(rec, req)
			Expect(rec.Code).To(Equal(http.StatusAccepted))
		})

		It("answers 404 for an unknown reference", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/pg/verify-order?order_id=cf_order_unknown", nil)
			rec := httptest.NewRecorder()

			handler.VerifyOrder(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("HandleWebhook", func() {
		post := func(payload string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pg/webhook", bytes.NewBufferString(payload))
			rec := httptest.NewRecorder()
			handler.HandleWebhook(rec, req)
			return rec
		}

		It("verifies the referenced order and acknowledges", func() {
			rec := post(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"cf_order_id":"cf_order_1"}}}`)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body struct {
				Success bool              `json:"success"`
				Data    map[string]string `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Success).To(BeTrue())
			Expect(body.Data["status"]).To(Equal("processed"))

			o, err := orders.GetByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Status).To(Equal(ordermodel.StatusPaid))
		})

		It("acknowledges webhooks for orders it never created", func() {
			rec := post(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"cf_order_id":"cf_order_unknown"}}}`)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body struct {
				Success bool              `json:"success"`
				Data    map[string]string `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Success).To(BeTrue())
			Expect(body.Data["status"]).To(Equal("ignored"))
		})

		It("rejects an undecodable payload", func() {
			rec := post(`{not json`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a payload without an order reference", func() {
			rec := post(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{}}}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
