package models

import (
	"cbs/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrailLog is the audit record emitted by every successful state change.
// Rows are written inside the same transaction as the change itself, so
// the trail never records an operation that was rolled back.
type TrailLog struct {
	ID        uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	Type      types.TrailType `json:"type"`
	Initiator string          `gorm:"size:42" json:"initiator"`
	Group     string          `json:"group"`
	Metadata  types.JSONB     `json:"metadata"`

	types.Timestamps
}

// AppendTrail records an audit row in the caller's transaction.
func AppendTrail(tx *gorm.DB, typ types.TrailType, initiator string, group string, metadata types.JSONB) error {
	entry := TrailLog{
		ID:        uuid.New(),
		Type:      typ,
		Initiator: initiator,
		Group:     group,
		Metadata:  metadata,
	}
	return tx.Create(&entry).Error
}
