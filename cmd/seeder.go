package cmd

import (
	"fmt"
	"log"
	"time"

	feeplanmodel "github.com/feebook/feebook/internal/core/datamodel/feeplan"
	membermodel "github.com/feebook/feebook/internal/core/datamodel/member"
	providermodel "github.com/feebook/feebook/internal/core/datamodel/provider"
	usermodel "github.com/feebook/feebook/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"transactions", "orders", "fee_plans", "members", "users", "providers", "moderator_queries"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		now := time.Now()

		p := &providermodel.Provider{
			Name:          "Green Valley School",
			Email:         "accounts@greenvalley.example",
			WalletBalance: decimal.Zero,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := db.Where(providermodel.Provider{Name: p.Name}).FirstOrCreate(p).Error; err != nil {
			log.Fatalf("failed to seed provider: %v", err)
		}

		consumerID := int64(1)
		m := &membermodel.Member{
			ProviderID: p.ID,
			ConsumerID: &consumerID,
			Name:       "Aarav Sharma",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := db.Where(membermodel.Member{ProviderID: p.ID, Name: m.Name}).FirstOrCreate(m).Error; err != nil {
			log.Fatalf("failed to seed member: %v", err)
		}

		users := []*usermodel.User{
			{
				Email:        "provider@feebook.dev",
				PasswordHash: string(hash),
				Name:         "Provider Admin",
				Role:         usermodel.RoleProvider,
				ProviderID:   &p.ID,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			{
				Email:        "consumer@feebook.dev",
				PasswordHash: string(hash),
				Name:         "Ravi Sharma",
				Role:         usermodel.RoleConsumer,
				ConsumerID:   &consumerID,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			{
				Email:        "moderator@feebook.dev",
				PasswordHash: string(hash),
				Name:         "Platform Moderator",
				Role:         usermodel.RoleModerator,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
		}
		for _, u := range users {
			if err := db.Where(usermodel.User{Email: u.Email}).FirstOrCreate(u).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, err)
			}
			fmt.Println("seeded user:", u.Email)
		}

		plans := []*feeplanmodel.FeePlan{
			{
				MemberID:    m.ID,
				ProviderID:  p.ID,
				Name:        "Term 1 Tuition",
				Description: "Tuition fee for the first term",
				Amount:      decimal.NewFromInt(25000),
				DueDate:     now.AddDate(0, 1, 0),
				Status:      feeplanmodel.StatusDue,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				MemberID:    m.ID,
				ProviderID:  p.ID,
				Name:        "Bus Fee March",
				Description: "Transport for March",
				Amount:      decimal.NewFromInt(1800),
				DueDate:     now.AddDate(0, 0, -10),
				Status:      feeplanmodel.StatusOverdue,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		}
		for _, plan := range plans {
			if err := db.Where(feeplanmodel.FeePlan{MemberID: plan.MemberID, Name: plan.Name}).FirstOrCreate(plan).Error; err != nil {
				log.Fatalf("failed to seed fee plan %s: %v", plan.Name, err)
			}
			fmt.Println("seeded fee plan:", plan.Name)
		}

		fmt.Println("seeding complete")
	},
}
