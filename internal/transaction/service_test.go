package transaction_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
	txmodel "github.com/feebook/feebook/internal/core/datamodel/transaction"
	"github.com/feebook/feebook/internal/transaction"
	"github.com/shopspring/decimal"
)

func TestTransaction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Suite")
}

// Mock transaction repository for testing
type mockTransactionRepo struct {
	nextID      int64
	rows        map[int64]*txmodel.Transaction
	createError error
	updateError error
	createCalls int
	updateCalls int
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{rows: make(map[int64]*txmodel.Transaction)}
}

func (m *mockTransactionRepo) Create(t *txmodel.Transaction) error {
	if m.createError != nil {
		return m.createError
	}
	m.createCalls++
	m.nextID++
	t.ID = m.nextID
	copied := *t
	m.rows[t.ID] = &copied
	return nil
}

func (m *mockTransactionRepo) Update(t *txmodel.Transaction) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.updateCalls++
	copied := *t
	m.rows[t.ID] = &copied
	return nil
}

func (m *mockTransactionRepo) GetByExternalPaymentID(externalPaymentID string) (*txmodel.Transaction, error) {
	for _, row := range m.rows {
		if row.ExternalPaymentID != nil && *row.ExternalPaymentID == externalPaymentID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockTransactionRepo) GetPlaceholderByOrderID(orderID int64) (*txmodel.Transaction, error) {
	for _, row := range m.rows {
		if row.OrderID == orderID && row.ExternalPaymentID == nil {
			copied := *row
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockTransactionRepo) GetLatestByOrderID(orderID int64) (*txmodel.Transaction, error) {
	var latest *txmodel.Transaction
	for _, row := range m.rows {
		if row.OrderID != orderID {
			continue
		}
		if row.Status == txmodel.StatusSuccess {
			copied := *row
			return &copied, nil
		}
		if latest == nil || row.ID > latest.ID {
			latest = row
		}
	}
	if latest == nil {
		return nil, errors.New("not found")
	}
	copied := *latest
	return &copied, nil
}

func (m *mockTransactionRepo) ListByOrderID(orderID int64) ([]*txmodel.Transaction, error) {
	var out []*txmodel.Transaction
	for _, row := range m.rows {
		if row.OrderID == orderID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTransactionRepo) ListByConsumer(consumerID int64, filters transaction.Filters, limit, offset int) ([]*txmodel.Transaction, error) {
	var out []*txmodel.Transaction
	for _, row := range m.rows {
		if row.ConsumerID != nil && *row.ConsumerID == consumerID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

var _ = Describe("ResolveStatus", func() {
	It("advances along the settlement path", func() {
		got, conflict := transaction.ResolveStatus(txmodel.StatusNotAttempted, txmodel.StatusPending)
		Expect(got).To(Equal(txmodel.StatusPending))
		Expect(conflict).To(BeFalse())

		got, conflict = transaction.ResolveStatus(txmodel.StatusPending, txmodel.StatusSuccess)
		Expect(got).To(Equal(txmodel.StatusSuccess))
		Expect(conflict).To(BeFalse())

		got, conflict = transaction.ResolveStatus(txmodel.StatusPending, txmodel.StatusFailed)
		Expect(got).To(Equal(txmodel.StatusFailed))
		Expect(conflict).To(BeFalse())
	})

	It("never moves backwards", func() {
		got, conflict := transaction.ResolveStatus(txmodel.StatusPending, txmodel.StatusNotAttempted)
		Expect(got).To(Equal(txmodel.StatusPending))
		Expect(conflict).To(BeFalse())

		got, conflict = transaction.ResolveStatus(txmodel.StatusSuccess, txmodel.StatusPending)
		Expect(got).To(Equal(txmodel.StatusSuccess))
		Expect(conflict).To(BeFalse())

		got, conflict = transaction.ResolveStatus(txmodel.StatusVoid, txmodel.StatusPending)
		Expect(got).To(Equal(txmodel.StatusVoid))
		Expect(conflict).To(BeFalse())
	})

	It("lets success win conflicting terminal claims", func() {
		got, conflict := transaction.ResolveStatus(txmodel.StatusFailed, txmodel.StatusSuccess)
		Expect(got).To(Equal(txmodel.StatusSuccess))
		Expect(conflict).To(BeTrue())

		got, conflict = transaction.ResolveStatus(txmodel.StatusSuccess, txmodel.StatusFailed)
		Expect(got).To(Equal(txmodel.StatusSuccess))
		Expect(conflict).To(BeTrue())
	})

	It("keeps the first terminal state when neither side is success", func() {
		got, conflict := transaction.ResolveStatus(txmodel.StatusCancelled, txmodel.StatusUserDropped)
		Expect(got).To(Equal(txmodel.StatusCancelled))
		Expect(conflict).To(BeTrue())
	})

	It("treats identical statuses as a no-op", func() {
		got, conflict := transaction.ResolveStatus(txmodel.StatusPending, txmodel.StatusPending)
		Expect(got).To(Equal(txmodel.StatusPending))
		Expect(conflict).To(BeFalse())
	})
})

var _ = Describe("MapGatewayStatus", func() {
	It("maps every known gateway payment state", func() {
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStateSuccess)).To(Equal(txmodel.StatusSuccess))
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStateFailed)).To(Equal(txmodel.StatusFailed))
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStateCancelled)).To(Equal(txmodel.StatusCancelled))
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStateUserDropped)).To(Equal(txmodel.StatusUserDropped))
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStateVoid)).To(Equal(txmodel.StatusVoid))
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStateNotAttempted)).To(Equal(txmodel.StatusNotAttempted))
		Expect(transaction.MapGatewayStatus(gatewaytypes.PaymentStatePending)).To(Equal(txmodel.StatusPending))
	})

	It("treats unknown states as pending rather than terminal", func() {
		Expect(transaction.MapGatewayStatus("SOMETHING_NEW")).To(Equal(txmodel.StatusPending))
	})
})

var _ = Describe("Service", func() {
	var (
		repo    *mockTransactionRepo
		service *transaction.Service
	)

	amount := decimal.NewFromInt(1800)

	attempt := func(extID, status string) transaction.Attempt {
		consumerID := int64(7)
		return transaction.Attempt{
			OrderID:           1,
			FeePlanID:         10,
			ConsumerID:        &consumerID,
			ExternalPaymentID: extID,
			Status:            status,
			Amount:            amount,
			Currency:          "INR",
		}
	}

	BeforeEach(func() {
		repo = newMockTransactionRepo()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = transaction.NewService(repo, logger)
	})

	Describe("RecordAttempt", func() {
		It("inserts a new identified attempt once", func() {
			t, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusPending))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).NotTo(BeZero())
			Expect(*t.ExternalPaymentID).To(Equal("cf_pay_1"))
			Expect(repo.createCalls).To(Equal(1))
		})

		It("merges repeated notifications for the same payment into one row", func() {
			first, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusPending))
			Expect(err).NotTo(HaveOccurred())

			second, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusSuccess))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.Status).To(Equal(txmodel.StatusSuccess))
			Expect(repo.createCalls).To(Equal(1))
			Expect(len(repo.rows)).To(Equal(1))
		})

		It("never downgrades a settled row on a stale failure", func() {
			_, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusSuccess))
			Expect(err).NotTo(HaveOccurred())

			t, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusFailed))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(txmodel.StatusSuccess))
		})

		It("skips the write entirely when nothing changed", func() {
			_, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusSuccess))
			Expect(err).NotTo(HaveOccurred())
			updatesBefore := repo.updateCalls

			_, err = service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusSuccess))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.updateCalls).To(Equal(updatesBefore))
		})

		It("keeps one placeholder per order", func() {
			a := attempt("", "")
			_, err := service.RecordAttempt(a)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RecordAttempt(a)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.createCalls).To(Equal(1))
			row, err := repo.GetPlaceholderByOrderID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Status).To(Equal(txmodel.StatusNotAttempted))
		})

		It("lets the first identified attempt claim the placeholder", func() {
			_, err := service.RecordAttempt(attempt("", ""))
			Expect(err).NotTo(HaveOccurred())

			now := time.Now()
			a := attempt("cf_pay_1", txmodel.StatusSuccess)
			a.PaymentTime = &now
			a.BankReference = "UTR987"

			t, err := service.RecordAttempt(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(repo.rows)).To(Equal(1))
			Expect(*t.ExternalPaymentID).To(Equal("cf_pay_1"))
			Expect(t.Status).To(Equal(txmodel.StatusSuccess))
			Expect(t.BankReference).To(Equal("UTR987"))
			Expect(t.PaymentTime).NotTo(BeNil())
		})

		It("propagates repository insert failures", func() {
			repo.createError = errors.New("connection refused")
			_, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusPending))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LatestByOrder", func() {
		It("prefers the settled attempt over later failed ones", func() {
			_, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusSuccess))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RecordAttempt(attempt("cf_pay_2", txmodel.StatusFailed))
			Expect(err).NotTo(HaveOccurred())

			latest, err := service.LatestByOrder(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.Status).To(Equal(txmodel.StatusSuccess))
		})
	})

	Describe("ListByConsumer", func() {
		It("caps an unreasonable page size", func() {
			_, err := service.RecordAttempt(attempt("cf_pay_1", txmodel.StatusPending))
			Expect(err).NotTo(HaveOccurred())

			txs, err := service.ListByConsumer(7, transaction.Filters{}, 100000, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(txs).To(HaveLen(1))
		})
	})
})
