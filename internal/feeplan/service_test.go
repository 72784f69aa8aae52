package feeplan_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/feebook/feebook/internal"
	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	"github.com/feebook/feebook/internal/feeplan"
	"github.com/shopspring/decimal"
)

func TestFeePlan(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FeePlan Suite")
}

// Mock fee plan repository for testing
type mockFeePlanRepo struct {
	plans       map[int64]*feeplanmodel.FeePlan
	createError error
	getError    error
	claimError  error
}

func newMockFeePlanRepo() *mockFeePlanRepo {
	return &mockFeePlanRepo{plans: make(map[int64]*feeplanmodel.FeePlan)}
}

func (m *mockFeePlanRepo) Create(plan *feeplanmodel.FeePlan) error {
	if m.createError != nil {
		return m.createError
	}
	plan.ID = int64(len(m.plans) + 1)
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockFeePlanRepo) GetByID(id int64) (*feeplanmodel.FeePlan, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	plan, ok := m.plans[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *plan
	return &copied, nil
}

func (m *mockFeePlanRepo) ListByProvider(providerID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error) {
	var out []*feeplanmodel.FeePlan
	for _, plan := range m.plans {
		if plan.ProviderID == providerID {
			copied := *plan
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockFeePlanRepo) ListByMember(memberID int64, limit, offset int) ([]*feeplanmodel.FeePlan, error) {
	var out []*feeplanmodel.FeePlan
	for _, plan := range m.plans {
		if plan.MemberID == memberID {
			copied := *plan
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockFeePlanRepo) UpdateDetails(id int64, name, description string, dueDate time.Time, status string) error {
	return nil
}

func (m *mockFeePlanRepo) SetOfflinePaid(id int64, paid bool, status string) error {
	plan, ok := m.plans[id]
	if !ok {
		return errors.New("not found")
	}
	plan.IsOfflinePaid = paid
	plan.Status = status
	return nil
}

func (m *mockFeePlanRepo) SetConsumerClaimsPaid(id int64, claims bool) error {
	if m.claimError != nil {
		return m.claimError
	}
	plan, ok := m.plans[id]
	if !ok {
		return errors.New("not found")
	}
	plan.ConsumerClaimsPaid = claims
	return nil
}

func (m *mockFeePlanRepo) MarkPaidViaOrder(feePlanID, orderID int64, receiptURL string) (bool, error) {
	plan, ok := m.plans[feePlanID]
	if !ok {
		return false, errors.New("not found")
	}
	if plan.PaidViaOrderID != nil {
		return *plan.PaidViaOrderID == orderID, nil
	}
	plan.PaidViaOrderID = &orderID
	plan.ReceiptURL = &receiptURL
	plan.Status = feeplanmodel.StatusPaid
	return true, nil
}

var _ = Describe("DeriveStatus", func() {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	It("is DUE before the due date", func() {
		plan := &feeplanmodel.FeePlan{DueDate: now.Add(24 * time.Hour)}
		Expect(feeplan.DeriveStatus(plan, now)).To(Equal(feeplanmodel.StatusDue))
	})

	It("is OVERDUE after the due date", func() {
		plan := &feeplanmodel.FeePlan{DueDate: now.Add(-24 * time.Hour)}
		Expect(feeplan.DeriveStatus(plan, now)).To(Equal(feeplanmodel.StatusOverdue))
	})

	It("is PAID when settled through an order, even past due", func() {
		orderID := int64(1)
		plan := &feeplanmodel.FeePlan{DueDate: now.Add(-24 * time.Hour), PaidViaOrderID: &orderID}
		Expect(feeplan.DeriveStatus(plan, now)).To(Equal(feeplanmodel.StatusPaid))
	})

	It("is PAID when the provider flagged it offline-paid", func() {
		plan := &feeplanmodel.FeePlan{DueDate: now.Add(-24 * time.Hour), IsOfflinePaid: true}
		Expect(feeplan.DeriveStatus(plan, now)).To(Equal(feeplanmodel.StatusPaid))
	})

	It("ignores the consumer's unverified claim", func() {
		plan := &feeplanmodel.FeePlan{DueDate: now.Add(-24 * time.Hour), ConsumerClaimsPaid: true}
		Expect(feeplan.DeriveStatus(plan, now)).To(Equal(feeplanmodel.StatusOverdue))
	})
})

var _ = Describe("CreateFeePlanDTO", func() {
	valid := func() feeplan.CreateFeePlanDTO {
		return feeplan.CreateFeePlanDTO{
			MemberID: 5,
			Name:     "Term 1 Tuition",
			Amount:   decimal.NewFromInt(25000),
			DueDate:  time.Now().Add(30 * 24 * time.Hour),
		}
	}

	It("accepts a well-formed request", func() {
		dto := valid()
		Expect(dto.Validate()).To(Succeed())
	})

	It("rejects a missing member", func() {
		dto := valid()
		dto.MemberID = 0
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("rejects an empty name", func() {
		dto := valid()
		dto.Name = ""
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("rejects a non-positive amount", func() {
		dto := valid()
		dto.Amount = decimal.Zero
		Expect(dto.Validate()).To(HaveOccurred())

		dto.Amount = decimal.NewFromInt(-100)
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("rejects an amount above the cap", func() {
		dto := valid()
		dto.Amount = decimal.NewFromInt(10000001)
		Expect(dto.Validate()).To(HaveOccurred())
	})

	It("rejects a zero due date", func() {
		dto := valid()
		dto.DueDate = time.Time{}
		Expect(dto.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("Service", func() {
	var (
		repo    *mockFeePlanRepo
		service *feeplan.Service
	)

	const providerID = int64(100)

	BeforeEach(func() {
		repo = newMockFeePlanRepo()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = feeplan.NewService(repo, logger)
	})

	Describe("CreateFeePlan", func() {
		It("persists the plan with a derived status", func() {
			plan, err := service.CreateFeePlan(providerID, feeplan.CreateFeePlanDTO{
				MemberID: 5,
				Name:     "Bus Fee March",
				Amount:   decimal.NewFromInt(1800),
				DueDate:  time.Now().Add(-10 * 24 * time.Hour),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.ID).NotTo(BeZero())
			Expect(plan.ProviderID).To(Equal(providerID))
			Expect(plan.Status).To(Equal(feeplanmodel.StatusOverdue))
		})

		It("does not persist an invalid plan", func() {
			_, err := service.CreateFeePlan(providerID, feeplan.CreateFeePlanDTO{})
			Expect(err).To(HaveOccurred())
			Expect(repo.plans).To(BeEmpty())
		})
	})

	Describe("GetFeePlanForProvider", func() {
		BeforeEach(func() {
			repo.plans[1] = &feeplanmodel.FeePlan{ID: 1, ProviderID: providerID, MemberID: 5}
		})

		It("returns plans the provider owns", func() {
			plan, err := service.GetFeePlanForProvider(1, providerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.ID).To(Equal(int64(1)))
		})

		It("denies other providers", func() {
			_, err := service.GetFeePlanForProvider(1, providerID+1)
			Expect(err).To(Equal(apperrors.ErrUnauthorizedOwner))
		})

		It("maps missing plans to not found", func() {
			_, err := service.GetFeePlanForProvider(42, providerID)
			Expect(err).To(Equal(apperrors.ErrFeePlanNotFound))
		})
	})

	Describe("ClaimPaid", func() {
		BeforeEach(func() {
			repo.plans[1] = &feeplanmodel.FeePlan{ID: 1, ProviderID: providerID, MemberID: 5}
		})

		It("flags the plan without changing its status", func() {
			Expect(service.ClaimPaid(1, true)).To(Succeed())
			Expect(repo.plans[1].ConsumerClaimsPaid).To(BeTrue())
			Expect(repo.plans[1].Status).NotTo(Equal(feeplanmodel.StatusPaid))
		})

		It("fails for unknown plans", func() {
			Expect(service.ClaimPaid(42, true)).To(Equal(apperrors.ErrFeePlanNotFound))
		})
	})
})
