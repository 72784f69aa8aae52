package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/feebook/feebook/internal/core/events"
	"github.com/feebook/feebook/internal/feeplan"
	"github.com/feebook/feebook/internal/gateway"
	"github.com/feebook/feebook/internal/order"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine reconciles local order state against the gateway. VerifyOrder is the
// single settlement entry point shared by the webhook handler, the client
// poll endpoint, and the stuck-order sweep; whichever caller arrives first
// wins and every other caller converges on the same outcome.
type Engine struct {
	orders      order.Repository
	plans       feeplan.Repository
	ledger      Ledger
	settlements Settlements
	gateway     gateway.API
	publisher   Publisher
	locks       *orderLocks
	logger      *slog.Logger
}

func NewEngine(
	orders order.Repository,
	plans feeplan.Repository,
	ledger Ledger,
	settlements Settlements,
	gw gateway.API,
	publisher Publisher,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		orders:      orders,
		plans:       plans,
		ledger:      ledger,
		settlements: settlements,
		gateway:     gw,
		publisher:   publisher,
		locks:       newOrderLocks(),
		logger:      logger,
	}
}

// VerifyOrder fetches the authoritative gateway state for the order, records
// every reported payment attempt in the ledger, and applies at most one
// terminal transition. Safe to call any number of times, from any caller,
// concurrently: the provider wallet is credited exactly once per order.
//
// ref is either the gateway-assigned external order id or the numeric local
// order id.
func (e *Engine) VerifyOrder(ctx context.Context, ref string) (*Result, error) {
	o, err := e.resolveOrder(ref)
	if err != nil {
		return nil, err
	}

	// Terminal orders never change again; serve the stored snapshot without
	// touching the gateway.
	if o.IsTerminal() {
		return e.snapshot(o)
	}

	// Gateway reads happen outside the per-order lock. A slow gateway must
	// not stall verification of other notifications for the same order.
	state, err := e.gateway.GetOrder(ctx, o.ExternalOrderID)
	if err != nil {
		return nil, e.gatewayFailure(err, o)
	}

	payments, err := e.gateway.GetOrderPayments(ctx, o.ExternalOrderID)
	if err != nil {
		return nil, e.gatewayFailure(err, o)
	}

	sawSuccess, successAmount, err := e.recordPayments(o, payments)
	if err != nil {
		return nil, err
	}

	target := targetStatus(state.Status, sawSuccess)
	if target == ordermodel.StatusActive {
		e.logger.Info("order still active after verification",
			"order_id", o.ID,
			"external_order_id", o.ExternalOrderID,
			"gateway_status", state.Status)
		return e.snapshot(o)
	}

	release := e.locks.acquire(o.ID)
	defer release()

	settlement := Settlement{
		OrderID:    o.ID,
		Target:     target,
		FeePlanID:  o.FeePlanID,
		ProviderID: o.ProviderID,
	}
	if target == ordermodel.StatusPaid {
		settlement.Amount = successAmount
		if settlement.Amount.IsZero() {
			settlement.Amount = o.Amount
		}
		settlement.ReceiptURL = fmt.Sprintf("receipts/%s", uuid.NewString())
	}

	// One atomic unit: status flip, fee plan stamp, wallet credit. On error
	// nothing landed and the order is still ACTIVE, so the next verification
	// retries the whole settlement instead of serving a half-settled snapshot.
	outcome, err := e.settlements.SettleOrder(settlement)
	if err != nil {
		e.logger.Error("settlement write failed, order left for retry",
			"error", err, "order_id", o.ID, "target_status", target)
		return nil, apperrors.NewInternalError("failed to settle order", err)
	}

	// Reload: a concurrent verifier may have won the transition with a
	// different terminal state.
	o, err = e.orders.GetByID(o.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to reload order", err)
	}

	if !outcome.Transitioned {
		e.logger.Info("order already settled by a concurrent verification",
			"order_id", o.ID, "status", o.Status)
		return e.snapshot(o)
	}

	if target == ordermodel.StatusPaid {
		if !outcome.PlanStamped {
			// Another order already paid this plan. The order itself settled
			// at the gateway so it stays PAID, but crediting the wallet again
			// would double-count the fee. Flag for moderators instead.
			e.logger.Error("fee plan already paid via a different order",
				"order_id", o.ID,
				"external_order_id", o.ExternalOrderID,
				"fee_plan_id", o.FeePlanID,
				"amount", settlement.Amount.StringFixed(2))
			return nil, apperrors.NewInconsistentStateError(
				"fee plan was already paid through another order", nil)
		}
		e.publishSettled(ctx, o, settlement.Amount)
	} else {
		e.logger.Info("order closed without payment",
			"order_id", o.ID,
			"external_order_id", o.ExternalOrderID,
			"final_status", target)
		e.publisher.Publish(ctx, events.NewOrderClosedEvent(
			o.ID, o.ExternalOrderID, o.FeePlanID, o.ProviderID, target))
	}

	latest, err := e.ledger.LatestByOrder(o.ID)
	if err != nil {
		latest = nil
	}
	return &Result{Order: o, Transaction: latest, Transitioned: true}, nil
}

func (e *Engine) publishSettled(ctx context.Context, o *ordermodel.Order, amount decimal.Decimal) {
	e.logger.Info("order settled",
		"order_id", o.ID,
		"external_order_id", o.ExternalOrderID,
		"fee_plan_id", o.FeePlanID,
		"provider_id", o.ProviderID,
		"amount", amount.StringFixed(2))

	externalPaymentID := ""
	if latest, err := e.ledger.LatestByOrder(o.ID); err == nil && latest != nil && latest.ExternalPaymentID != nil {
		externalPaymentID = *latest.ExternalPaymentID
	}

	e.publisher.Publish(ctx, events.NewOrderSettledEvent(
		o.ID, o.ExternalOrderID, o.FeePlanID, o.ProviderID, amount, externalPaymentID))
}

// recordPayments writes every gateway-reported attempt into the ledger. When
// the gateway has no attempts yet, a placeholder row keeps one record per
// order that a later identified attempt claims.
func (e *Engine) recordPayments(o *ordermodel.Order, payments []gatewaytypes.PaymentRecord) (bool, decimal.Decimal, error) {
	if len(payments) == 0 {
		_, err := e.ledger.RecordAttempt(transaction.Attempt{
			OrderID:    o.ID,
			FeePlanID:  o.FeePlanID,
			ConsumerID: o.ConsumerID,
			Status:     txmodel.StatusNotAttempted,
			Amount:     o.Amount,
			Currency:   "INR",
		})
		if err != nil {
			return false, decimal.Zero, apperrors.NewInternalError("failed to record payment attempt", err)
		}
		return false, decimal.Zero, nil
	}

	sawSuccess := false
	successAmount := decimal.Zero
	for _, p := range payments {
		status := transaction.MapGatewayStatus(p.Status)

		t, err := e.ledger.RecordAttempt(transaction.Attempt{
			OrderID:           o.ID,
			FeePlanID:         o.FeePlanID,
			ConsumerID:        o.ConsumerID,
			ExternalPaymentID: p.ExternalPaymentID,
			Status:            status,
			Amount:            p.Amount,
			Currency:          p.Currency,
			Method:            p.Method,
			BankReference:     p.BankReference,
			Gateway:           p.Gateway,
			Message:           p.Message,
			PaymentTime:       p.CompletedAt,
		})
		if err != nil {
			return false, decimal.Zero, apperrors.NewInternalError("failed to record payment attempt", err)
		}

		// The ledger row is authoritative after merge, not the raw gateway
		// record: a stale FAILED notification must not hide a settled row.
		if t.Status == txmodel.StatusSuccess {
			sawSuccess = true
			successAmount = t.Amount
		}
	}
	return sawSuccess, successAmount, nil
}

// SetOfflinePaid records a payment the provider collected outside the
// gateway. It only flips the plan flag and recomputes status; the ledger and
// the provider wallet are untouched because no money moved through us.
func (e *Engine) SetOfflinePaid(ctx context.Context, providerID, feePlanID int64, paid bool) (*feeplanmodel.FeePlan, error) {
	plan, err := e.plans.GetByID(feePlanID)
	if err != nil {
		return nil, apperrors.ErrFeePlanNotFound
	}

	if plan.ProviderID != providerID {
		return nil, apperrors.ErrUnauthorizedOwner
	}

	// A plan settled through the gateway is immutable; toggling offline-paid
	// on it would let a provider mask or fake a real settlement.
	if plan.PaidViaOrderID != nil {
		e.logger.Warn("rejecting offline-paid toggle on gateway-settled plan",
			"fee_plan_id", feePlanID, "paid_via_order_id", *plan.PaidViaOrderID)
		return nil, apperrors.ErrAlreadyPaid
	}

	plan.IsOfflinePaid = paid
	status := feeplan.DeriveStatus(plan, time.Now())

	if err := e.plans.SetOfflinePaid(feePlanID, paid, status); err != nil {
		e.logger.Error("failed to set offline-paid flag",
			"error", err, "fee_plan_id", feePlanID, "paid", paid)
		return nil, apperrors.NewInternalError("failed to update fee plan", err)
	}

	e.logger.Info("offline-paid flag updated",
		"fee_plan_id", feePlanID, "provider_id", providerID, "paid", paid)

	e.publisher.Publish(ctx, events.NewFeePlanOfflinePaidEvent(feePlanID, providerID, paid))

	plan.Status = status
	return plan, nil
}

// SweepStaleOrders re-verifies ACTIVE orders older than the cutoff. Missed
// webhooks are the common cause; each order goes through the same VerifyOrder
// path as every other caller.
func (e *Engine) SweepStaleOrders(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := e.orders.ListActiveOlderThan(cutoff, limit)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to list stale orders", err)
	}

	settled := 0
	for _, o := range stale {
		res, err := e.VerifyOrder(ctx, o.ExternalOrderID)
		if err != nil {
			e.logger.Warn("sweep: verification failed",
				"order_id", o.ID,
				"external_order_id", o.ExternalOrderID,
				"error", err)
			continue
		}
		if res.Transitioned {
			settled++
		}
	}

	e.logger.Info("sweep finished", "scanned", len(stale), "transitioned", settled)
	return settled, nil
}

func (e *Engine) resolveOrder(ref string) (*ordermodel.Order, error) {
	if o, err := e.orders.GetByExternalID(ref); err == nil {
		return o, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if o, err := e.orders.GetByID(id); err == nil {
			return o, nil
		}
	}
	return nil, apperrors.ErrOrderNotFound
}

func (e *Engine) snapshot(o *ordermodel.Order) (*Result, error) {
	latest, err := e.ledger.LatestByOrder(o.ID)
	if err != nil {
		latest = nil
	}
	return &Result{Order: o, Transaction: latest, Transitioned: false}, nil
}

// gatewayFailure maps a gateway read error into the verification contract:
// the outcome is unknown, nothing local changed, the caller should retry.
func (e *Engine) gatewayFailure(err error, o *ordermodel.Order) error {
	if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
		// We created this order at the gateway; it not knowing the order is
		// a data problem, not a transient one.
		e.logger.Error("gateway does not recognize order",
			"order_id", o.ID, "external_order_id", o.ExternalOrderID)
		return apperrors.NewInconsistentStateError("gateway does not recognize order", err)
	}

	e.logger.Warn("verification pending, gateway unavailable",
		"order_id", o.ID,
		"external_order_id", o.ExternalOrderID,
		"error", err)
	return apperrors.NewVerificationPendingError("payment verification pending, retry shortly", err)
}

// targetStatus folds the ledger outcome and the gateway order state into the
// order's next status. The ledger wins: a settled payment means PAID no
// matter what the order snapshot said.
func targetStatus(gatewayState string, sawSuccess bool) string {
	if sawSuccess {
		return ordermodel.StatusPaid
	}

	switch gatewayState {
	case gatewaytypes.OrderStatePaid:
		return ordermodel.StatusPaid
	case gatewaytypes.OrderStateExpired:
		return ordermodel.StatusExpired
	case gatewaytypes.OrderStateTerminated:
		return ordermodel.StatusTerminated
	case gatewaytypes.OrderStateTerminationRequested:
		return ordermodel.StatusTerminationRequested
	default:
		return ordermodel.StatusActive
	}
}
