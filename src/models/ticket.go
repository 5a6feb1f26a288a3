package models

import "cbs/src/types"

// Ticket is the token record for one booked seat-slot. The primary key
// doubles as the token ID; the sequence starts at 1 so 0 can stand for
// "no token" in lookups. The composite unique index on (movie_id,
// owner_id) is the live movie→owner→token index: it both answers "does
// this address already hold a ticket for this movie" and makes a second
// concurrent mint for the same pair fail at the database.
type Ticket struct {
	ID         uint   `gorm:"primarykey" json:"token_id"`
	OwnerID    uint   `gorm:"uniqueIndex:idx_ticket_movie_owner" json:"-"`
	MovieID    uint   `gorm:"uniqueIndex:idx_ticket_movie_owner" json:"movie_id,omitempty"`
	Owner      string `gorm:"size:42" json:"owner,omitempty"`
	TotalSeats uint   `json:"total_seats,omitempty"`
	TotalCost  uint64 `json:"total_cost"`
	CheckedIn  bool   `json:"checked_in"`

	// Complimentary tickets (airdrop claims) never took a seat from the
	// paid inventory, so cancellation must not put one back.
	Complimentary bool `json:"complimentary,omitempty"`

	Movie Movie  `gorm:"foreignKey:movie_id" json:"movie,omitempty"`
	Buyer User   `gorm:"foreignKey:owner_id" json:"-"`
	Slug  string `json:"resource_id,omitempty"`

	types.Timestamps
}
