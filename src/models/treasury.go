package models

import (
	"cbs/src/types"

	"gorm.io/gorm"
)

// Treasury is the single escrow row for the whole service. Balance is
// every unit currently held (booked fares awaiting the show, pending
// refund obligations included); Withdrawable is the slice of Balance
// the operator may take out. Withdrawable <= Balance must hold after
// every operation, the gap being money reserved for refunds of
// unconsummated bookings.
type Treasury struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Balance      uint64 `json:"balance"`
	Withdrawable uint64 `json:"withdrawable"`

	types.Timestamps
}

// GetTreasury returns the escrow row, creating it on first use.
func GetTreasury(tx *gorm.DB) (*Treasury, error) {
	treasury := Treasury{ID: 1}
	if err := tx.FirstOrCreate(&treasury, Treasury{ID: 1}).Error; err != nil {
		return nil, err
	}
	return &treasury, nil
}
