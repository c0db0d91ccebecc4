package events

import "time"

type CreateEventRequest struct {
	Title          string    `json:"title" binding:"required,min=3,max=255"`
	Image          string    `json:"image" binding:"omitempty,url"`
	Category       string    `json:"category" binding:"required,max=100"`
	Description    string    `json:"description" binding:"max=5000"`
	Location       string    `json:"location" binding:"required,max=255"`
	Date           time.Time `json:"date" binding:"required"`
	Price          float64   `json:"price" binding:"min=0"`
	TotalSeats     int       `json:"totalSeats" binding:"required,min=1,max=100000"`
	OrganizerName  string    `json:"organizerName" binding:"max=255"`
	OrganizerPhoto string    `json:"organizerPhoto" binding:"omitempty,url"`
}

// UpdateEventRequest carries descriptive fields only; seat counts are not editable.
type UpdateEventRequest struct {
	Title          *string    `json:"title" binding:"omitempty,min=3,max=255"`
	Image          *string    `json:"image" binding:"omitempty,url"`
	Category       *string    `json:"category" binding:"omitempty,max=100"`
	Description    *string    `json:"description" binding:"omitempty,max=5000"`
	Location       *string    `json:"location" binding:"omitempty,max=255"`
	Date           *time.Time `json:"date"`
	Price          *float64   `json:"price" binding:"omitempty,min=0"`
	OrganizerName  *string    `json:"organizerName" binding:"omitempty,max=255"`
	OrganizerPhoto *string    `json:"organizerPhoto" binding:"omitempty,url"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Category string `form:"category"`
}

func (r UpdateEventRequest) toUpdates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Image != nil {
		updates["image"] = *r.Image
	}
	if r.Category != nil {
		updates["category"] = *r.Category
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Location != nil {
		updates["location"] = *r.Location
	}
	if r.Date != nil {
		updates["date"] = *r.Date
	}
	if r.Price != nil {
		updates["price"] = *r.Price
	}
	if r.OrganizerName != nil {
		updates["organizer_name"] = *r.OrganizerName
	}
	if r.OrganizerPhoto != nil {
		updates["organizer_photo"] = *r.OrganizerPhoto
	}
	return updates
}
