package models

import (
	"cbs/src/types"
	"time"
)

// Airdrop is a Merkle-gated free-mint window. One window per movie,
// created once; the root is never overwritten.
type Airdrop struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	MovieID    uint      `gorm:"uniqueIndex" json:"movie_id,omitempty"`
	MerkleRoot string    `gorm:"size:66" json:"merkle_root,omitempty"`
	StartAt    time.Time `json:"start_at,omitempty"`
	EndAt      time.Time `json:"end_at,omitempty"`

	Movie Movie `gorm:"foreignKey:movie_id" json:"movie,omitempty"`

	types.Timestamps
}

// Open reports whether now falls inside [StartAt, EndAt).
func (a *Airdrop) Open(now time.Time) bool {
	return !now.Before(a.StartAt) && now.Before(a.EndAt)
}

// Claim is the permanent per-(movie, address) claimed flag. Rows are
// never deleted, so a claim survives later ticket transfers or burns.
type Claim struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	MovieID uint   `gorm:"uniqueIndex:idx_claim_movie_address" json:"movie_id,omitempty"`
	Address string `gorm:"uniqueIndex:idx_claim_movie_address;size:42" json:"address,omitempty"`

	types.Timestamps
}
