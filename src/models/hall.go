package models

import "cbs/src/types"

// Hall is a physical screening venue with a fixed seat capacity. Halls
// are created by an administrator and never resized afterwards; movies
// snapshot the capacity at creation time.
type Hall struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Name       string `json:"name,omitempty"`
	TotalSeats uint   `json:"total_seats,omitempty"`

	Movies []Movie `json:"movies,omitempty"`

	types.Timestamps
}
