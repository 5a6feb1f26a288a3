package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported source type for JSONB")
	}
}

type CreateHallRequestBody struct {
	Name       string `json:"name" binding:"required"`
	TotalSeats uint   `json:"total_seats" binding:"required,gt=0"`
}

type CreateMovieRequestBody struct {
	HallID      uint   `json:"hall" binding:"required"`
	Title       string `json:"title" binding:"required"`
	StartTime   string `json:"start_time" binding:"required,futuredate" time_format:"2006-01-02 15:04:05 -07:00"`
	TicketPrice uint64 `json:"ticket_price"`
}

type BookTicketRequestBody struct {
	MovieID uint   `json:"movie" binding:"required"`
	Value   uint64 `json:"value" binding:"required"`
}

type TransferTicketRequestBody struct {
	To string `json:"to" binding:"required,len=42,startswith=0x"`
}

type WithdrawRequestBody struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

type DepositRequestBody struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

type CreateAirdropRequestBody struct {
	MovieID    uint   `json:"movie" binding:"required"`
	MerkleRoot string `json:"merkle_root" binding:"required,len=66,startswith=0x"`
	StartAt    string `json:"start_at" binding:"required" time_format:"2006-01-02 15:04:05 -07:00"`
	EndAt      string `json:"end_at" binding:"required" time_format:"2006-01-02 15:04:05 -07:00"`
}

type ClaimRequestBody struct {
	MovieID uint     `json:"movie" binding:"required"`
	Proof   []string `json:"proof" binding:"required"`
}

type RegisterUserRequestBody struct {
	Address string `json:"address" binding:"required,len=42,startswith=0x"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

type LoginRequestBody struct {
	Address string `json:"address" binding:"required,len=42,startswith=0x"`
}

type CheckInRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type Role string

const (
	ROLE_ADMIN  Role = "admin"
	ROLE_MEMBER Role = "member"
)

// TrailType names the audit records written alongside each successful
// state change.
type TrailType string

const (
	TRAIL_HALL_CREATED    TrailType = "HallCreated"
	TRAIL_MOVIE_CREATED   TrailType = "MovieCreated"
	TRAIL_TICKET_BOOKED   TrailType = "TicketBooked"
	TRAIL_TICKET_CANCELED TrailType = "TicketCanceled"
	TRAIL_TICKET_MOVED    TrailType = "TicketTransferred"
	TRAIL_CHECKED_IN      TrailType = "TicketCheckedIn"
	TRAIL_WITHDRAWAL      TrailType = "Withdrawal"
	TRAIL_AIRDROP_CREATED TrailType = "AirdropMovieCreated"
	TRAIL_CLAIMED         TrailType = "Claimed"
	TRAIL_DEPOSIT         TrailType = "Deposit"
)

type Claims struct {
	Address string `json:"address"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
