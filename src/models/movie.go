package models

import (
	"cbs/src/types"
	"time"
)

type Movie struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	HallID           uint      `json:"hall_id,omitempty"`
	Title            string    `json:"title,omitempty"`
	StartTime        time.Time `json:"start_time,omitempty"`
	TicketPrice      uint64    `json:"ticket_price"`
	AvailableTickets uint      `json:"available_tickets"`

	Hall Hall `gorm:"foreignKey:hall_id" json:"hall,omitempty"`

	types.Timestamps
}

// Started reports whether booking and cancellation have closed for the
// showing. There is no explicit status column; state is derived from the
// clock and the inventory counter at call time.
func (m *Movie) Started(now time.Time) bool {
	return !now.Before(m.StartTime)
}

func (m *Movie) SoldOut() bool {
	return m.AvailableTickets == 0
}
