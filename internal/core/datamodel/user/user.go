package user

import "time"

const (
	RoleConsumer  = "consumer"
	RoleProvider  = "provider"
	RoleModerator = "moderator"
)

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"column:name"`
	Role         string    `gorm:"column:role;default:consumer"`
	ProviderID   *int64    `gorm:"column:provider_id"`
	ConsumerID   *int64    `gorm:"column:consumer_id"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
