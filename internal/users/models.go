package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"size:255"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PhotoURL  string    `json:"photoUrl" gorm:"size:1000"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;default:'verified'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

// DeletionSummary reports what removing an account released.
type DeletionSummary struct {
	UserID          uuid.UUID `json:"userId"`
	Email           string    `json:"email"`
	BookingsDeleted int64     `json:"bookingsDeleted"`
	SeatsReleased   int64     `json:"seatsReleased"`
}
