package models

import "cbs/src/types"

type User struct {
	ID      uint       `gorm:"primarykey" json:"id"`
	Address string     `gorm:"uniqueIndex;size:42" json:"address"`
	Name    string     `json:"name,omitempty"`
	Email   string     `json:"email,omitempty"`
	Role    types.Role `gorm:"default:'member'" json:"role,omitempty"`
	Balance uint64     `json:"balance"`

	Tickets []Ticket `gorm:"foreignKey:owner_id" json:"tickets,omitempty"`

	types.Timestamps
}
