package member

import "time"

// Member is a provider-side roster entry. A consumer account may link to it
// after enrollment; fee plans always hang off the member.
type Member struct {
	ID         int64     `gorm:"primaryKey"`
	ProviderID int64     `gorm:"column:provider_id;not null;index"`
	ConsumerID *int64    `gorm:"column:consumer_id;index"`
	Name       string    `gorm:"column:name;not null"`
	Email      string    `gorm:"column:email"`
	Phone      string    `gorm:"column:phone"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`
}

func (Member) TableName() string {
	return "members"
}
