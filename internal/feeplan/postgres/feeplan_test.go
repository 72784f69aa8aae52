package postgres

import (
	"testing"
	"time"

	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	feeplanpkg "github.com/feebook/feebook/internal/feeplan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestFeePlanRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FeePlanRepository Suite")
}

type SQLiteFeePlan struct {
	ID                 int64     `gorm:"primaryKey"`
	MemberID           int64     `gorm:"column:member_id;not null"`
	ProviderID         int64     `gorm:"column:provider_id;not null"`
	Name               string    `gorm:"column:name;not null"`
	Description        string    `gorm:"column:description"`
	Amount             string    `gorm:"column:amount;not null"`
	DueDate            time.Time `gorm:"column:due_date;not null"`
	Status             string    `gorm:"column:status;default:'DUE'"`
	IsOfflinePaid      bool      `gorm:"column:is_offline_paid;default:false"`
	ConsumerClaimsPaid bool      `gorm:"column:consumer_claims_paid;default:false"`
	ReceiptURL         *string   `gorm:"column:receipt_url"`
	PaidViaOrderID     *int64    `gorm:"column:paid_via_order_id"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (SQLiteFeePlan) TableName() string {
	return "fee_plans"
}

var _ = Describe("FeePlanRepository", func() {
	var (
		db   *gorm.DB
		repo feeplanpkg.Repository
	)

	newPlan := func() *feeplanmodel.FeePlan {
		return &feeplanmodel.FeePlan{
			MemberID:   5,
			ProviderID: 100,
			Name:       "Term 1 Tuition",
			Amount:     decimal.NewFromInt(25000),
			DueDate:    time.Now().Add(30 * 24 * time.Hour),
			Status:     feeplanmodel.StatusDue,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteFeePlan{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewFeePlanRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create and GetByID", func() {
		It("round-trips a fee plan including the decimal amount", func() {
			plan := newPlan()
			Expect(repo.Create(plan)).To(Succeed())
			Expect(plan.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(plan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Term 1 Tuition"))
			Expect(got.Amount.Equal(decimal.NewFromInt(25000))).To(BeTrue())
			Expect(got.PaidViaOrderID).To(BeNil())
		})

		It("errors for a non-existent id", func() {
			_, err := repo.GetByID(99999)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListByProvider", func() {
		It("returns the provider's plans ordered by due date", func() {
			later := newPlan()
			later.Name = "Later"
			later.DueDate = time.Now().Add(60 * 24 * time.Hour)
			Expect(repo.Create(later)).To(Succeed())

			sooner := newPlan()
			sooner.Name = "Sooner"
			Expect(repo.Create(sooner)).To(Succeed())

			other := newPlan()
			other.ProviderID = 200
			Expect(repo.Create(other)).To(Succeed())

			plans, err := repo.ListByProvider(100, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(2))
			Expect(plans[0].Name).To(Equal("Sooner"))
			Expect(plans[1].Name).To(Equal("Later"))
		})
	})

	Describe("MarkPaidViaOrder", func() {
		var plan *feeplanmodel.FeePlan

		BeforeEach(func() {
			plan = newPlan()
			Expect(repo.Create(plan)).To(Succeed())
		})

		It("stamps an unclaimed plan", func() {
			stamped, err := repo.MarkPaidViaOrder(plan.ID, 1, "receipts/abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(stamped).To(BeTrue())

			got, err := repo.GetByID(plan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(feeplanmodel.StatusPaid))
			Expect(*got.PaidViaOrderID).To(Equal(int64(1)))
			Expect(*got.ReceiptURL).To(Equal("receipts/abc"))
		})

		It("is idempotent for the same order", func() {
			stamped, err := repo.MarkPaidViaOrder(plan.ID, 1, "receipts/abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(stamped).To(BeTrue())

			stamped, err = repo.MarkPaidViaOrder(plan.ID, 1, "receipts/abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(stamped).To(BeTrue())
		})

		It("refuses a second order and keeps the first stamp", func() {
			stamped, err := repo.MarkPaidViaOrder(plan.ID, 1, "receipts/first")
			Expect(err).NotTo(HaveOccurred())
			Expect(stamped).To(BeTrue())

			stamped, err = repo.MarkPaidViaOrder(plan.ID, 2, "receipts/second")
			Expect(err).NotTo(HaveOccurred())
			Expect(stamped).To(BeFalse())

			got, err := repo.GetByID(plan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.PaidViaOrderID).To(Equal(int64(1)))
			Expect(*got.ReceiptURL).To(Equal("receipts/first"))
		})
	})

	Describe("SetOfflinePaid", func() {
		It("updates the flag and the persisted status together", func() {
			plan := newPlan()
			Expect(repo.Create(plan)).To(Succeed())

			Expect(repo.SetOfflinePaid(plan.ID, true, feeplanmodel.StatusPaid)).To(Succeed())

			got, err := repo.GetByID(plan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsOfflinePaid).To(BeTrue())
			Expect(got.Status).To(Equal(feeplanmodel.StatusPaid))
		})
	})

	Describe("SetConsumerClaimsPaid", func() {
		It("flips only the claim flag", func() {
			plan := newPlan()
			Expect(repo.Create(plan)).To(Succeed())

			Expect(repo.SetConsumerClaimsPaid(plan.ID, true)).To(Succeed())

			got, err := repo.GetByID(plan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ConsumerClaimsPaid).To(BeTrue())
			Expect(got.Status).To(Equal(feeplanmodel.StatusDue))
		})
	})
})
