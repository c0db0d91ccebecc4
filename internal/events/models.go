package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a catalog entry. AvailableSeats is owned by the booking ledger;
// catalog updates never write either seat column.
type Event struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title          string    `json:"title" gorm:"not null;size:255"`
	Image          string    `json:"image" gorm:"size:1000"`
	Category       string    `json:"category" gorm:"size:100;index"`
	Description    string    `json:"description" gorm:"type:text"`
	Location       string    `json:"location" gorm:"size:255"`
	Date           time.Time `json:"date" gorm:"not null;index"`
	Price          float64   `json:"price" gorm:"not null;check:price >= 0"`
	OrganizerName  string    `json:"organizerName" gorm:"size:255"`
	OrganizerEmail string    `json:"organizerEmail" gorm:"size:255;index"`
	OrganizerPhoto string    `json:"organizerPhoto" gorm:"size:1000"`
	TotalSeats     int       `json:"totalSeats" gorm:"not null;check:total_seats > 0"`
	AvailableSeats int       `json:"availableSeats" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// HasStarted reports whether the event date is at or before now.
func (e *Event) HasStarted(now time.Time) bool {
	return !e.Date.After(now)
}

type PaginatedEvents struct {
	Events     []Event `json:"events"`
	TotalCount int64   `json:"totalCount"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
