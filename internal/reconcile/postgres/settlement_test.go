package postgres

import (
	"testing"
	"time"

	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	ordermodel "github.com/feebook/feebook/internal/core/datamodel/order"
	providermodel "github.com/feebook/feebook/internal/core/datamodel/provider"
	reconcilepkg "github.com/feebook/feebook/internal/reconcile"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSettlementRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SettlementRepository Suite")
}

type SQLiteOrder struct {
	ID              int64     `gorm:"primaryKey"`
	ExternalOrderID string    `gorm:"column:external_order_id;not null;uniqueIndex"`
	FeePlanID       int64     `gorm:"column:fee_plan_id;not null"`
	MemberID        int64     `gorm:"column:member_id;not null"`
	ProviderID      int64     `gorm:"column:provider_id;not null"`
	Amount          string    `gorm:"column:amount;not null"`
	Status          string    `gorm:"column:status;default:'ACTIVE'"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (SQLiteOrder) TableName() string {
	return "orders"
}

type SQLiteFeePlan struct {
	ID             int64     `gorm:"primaryKey"`
	MemberID       int64     `gorm:"column:member_id;not null"`
	ProviderID     int64     `gorm:"column:provider_id;not null"`
	Name           string    `gorm:"column:name;not null"`
	Amount         string    `gorm:"column:amount;not null"`
	DueDate        time.Time `gorm:"column:due_date;not null"`
	Status         string    `gorm:"column:status;default:'DUE'"`
	ReceiptURL     *string   `gorm:"column:receipt_url"`
	PaidViaOrderID *int64    `gorm:"column:paid_via_order_id"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (SQLiteFeePlan) TableName() string {
	return "fee_plans"
}

type SQLiteProvider struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Email         string    `gorm:"column:email;not null"`
	WalletBalance float64   `gorm:"column:wallet_balance;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (SQLiteProvider) TableName() string {
	return "providers"
}

var _ = Describe("SettlementRepository", func() {
	var (
		db   *gorm.DB
		repo reconcilepkg.Settlements
	)

	const (
		orderID    = int64(1)
		planID     = int64(10)
		providerID = int64(100)
	)

	amount := decimal.NewFromInt(2500)

	settlement := func(target string) reconcilepkg.Settlement {
		return reconcilepkg.Settlement{
			OrderID:    orderID,
			Target:     target,
			FeePlanID:  planID,
			ReceiptURL: "receipts/abc",
			ProviderID: providerID,
			Amount:     amount,
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteOrder{}, &SQLiteFeePlan{}, &SQLiteProvider{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewSettlementRepository(db)

		Expect(db.Create(&SQLiteOrder{
			ID:              orderID,
			ExternalOrderID: "cf_order_1",
			FeePlanID:       planID,
			MemberID:        5,
			ProviderID:      providerID,
			Amount:          "2500",
			Status:          ordermodel.StatusActive,
		}).Error).To(Succeed())

		Expect(db.Create(&SQLiteFeePlan{
			ID:         planID,
			MemberID:   5,
			ProviderID: providerID,
			Name:       "Term 1 Tuition",
			Amount:     "2500",
			DueDate:    time.Now().Add(24 * time.Hour),
			Status:     feeplanmodel.StatusDue,
		}).Error).To(Succeed())

		Expect(db.Create(&SQLiteProvider{
			ID:    providerID,
			Name:  "Sunrise Academy",
			Email: "admin@sunrise.example",
		}).Error).To(Succeed())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	It("lands the status flip, plan stamp and wallet credit together", func() {
		out, err := repo.SettleOrder(settlement(ordermodel.StatusPaid))
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Transitioned).To(BeTrue())
		Expect(out.PlanStamped).To(BeTrue())

		var o SQLiteOrder
		Expect(db.First(&o, orderID).Error).To(Succeed())
		Expect(o.Status).To(Equal(ordermodel.StatusPaid))

		var plan SQLiteFeePlan
		Expect(db.First(&plan, planID).Error).To(Succeed())
		Expect(plan.Status).To(Equal(feeplanmodel.StatusPaid))
		Expect(plan.PaidViaOrderID).NotTo(BeNil())
		Expect(*plan.PaidViaOrderID).To(Equal(orderID))
		Expect(plan.ReceiptURL).NotTo(BeNil())

		var p providermodel.Provider
		Expect(db.First(&p, providerID).Error).To(Succeed())
		Expect(p.WalletBalance.Equal(amount)).To(BeTrue())
	})

	It("settles only once for the same order", func() {
		_, err := repo.SettleOrder(settlement(ordermodel.StatusPaid))
		Expect(err).NotTo(HaveOccurred())

		out, err := repo.SettleOrder(settlement(ordermodel.StatusPaid))
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Transitioned).To(BeFalse())
		Expect(out.PlanStamped).To(BeFalse())

		var p providermodel.Provider
		Expect(db.First(&p, providerID).Error).To(Succeed())
		Expect(p.WalletBalance.Equal(amount)).To(BeTrue())
	})

	It("skips the plan stamp and credit on a non-paid terminal state", func() {
		out, err := repo.SettleOrder(settlement(ordermodel.StatusExpired))
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Transitioned).To(BeTrue())
		Expect(out.PlanStamped).To(BeFalse())

		var plan SQLiteFeePlan
		Expect(db.First(&plan, planID).Error).To(Succeed())
		Expect(plan.PaidViaOrderID).To(BeNil())

		var p providermodel.Provider
		Expect(db.First(&p, providerID).Error).To(Succeed())
		Expect(p.WalletBalance.IsZero()).To(BeTrue())
	})

	It("never credits when a different order already paid the plan", func() {
		other := int64(99)
		Expect(db.Model(&SQLiteFeePlan{}).Where("id = ?", planID).
			Update("paid_via_order_id", other).Error).To(Succeed())

		out, err := repo.SettleOrder(settlement(ordermodel.StatusPaid))
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Transitioned).To(BeTrue())
		Expect(out.PlanStamped).To(BeFalse())

		var o SQLiteOrder
		Expect(db.First(&o, orderID).Error).To(Succeed())
		Expect(o.Status).To(Equal(ordermodel.StatusPaid))

		var plan SQLiteFeePlan
		Expect(db.First(&plan, planID).Error).To(Succeed())
		Expect(*plan.PaidViaOrderID).To(Equal(other))

		var p providermodel.Provider
		Expect(db.First(&p, providerID).Error).To(Succeed())
		Expect(p.WalletBalance.IsZero()).To(BeTrue())
	})
})
