// Package registry owns the ticket token records: their metadata, the
// movie→owner→token index, and the mint/burn/check-in transitions.
// Every function operates inside a caller-provided transaction; the
// booking and airdrop ledgers are the only callers, which is how the
// minter capability of the design is enforced in-process. The registry
// validates token existence only; authorization against the caller is
// the ledger's job.
package registry

import (
	"cbs/src/models"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var (
	ErrDoubleBooking     = errors.New("registry: address already holds a ticket for this movie")
	ErrTokenNotFound     = errors.New("registry: token does not exist")
	ErrAlreadyCheckedIn  = errors.New("registry: token already checked in")
	ErrOwnerNotFound     = errors.New("registry: owner account does not exist")
	ErrTransferToHolder  = errors.New("registry: recipient already holds a ticket for this movie")
	ErrTransferToUnknown = errors.New("registry: recipient account does not exist")
)

// Mint allocates the next token ID and records the full ticket
// metadata. The double-booking guard is checked against the live index
// inside the same transaction, and the composite unique index on
// (movie_id, owner_id) backs it up under concurrent commits.
func Mint(tx *gorm.DB, owner *models.User, movieID uint, seats uint, totalCost uint64, title string, complimentary bool) (uint, error) {
	if owner == nil || owner.ID == 0 {
		return 0, ErrOwnerNotFound
	}
	var held int64
	if err := tx.
		Model(&models.Ticket{}).
		Where(&models.Ticket{MovieID: movieID, OwnerID: owner.ID}).
		Count(&held).
		Error; err != nil {
		return 0, err
	}
	if held > 0 {
		return 0, ErrDoubleBooking
	}
	ticket := models.Ticket{
		OwnerID:       owner.ID,
		Owner:         owner.Address,
		MovieID:       movieID,
		TotalSeats:    seats,
		TotalCost:     totalCost,
		Complimentary: complimentary,
	}
	if err := tx.Create(&ticket).Error; err != nil {
		return 0, err
	}
	ticket.Slug = fmt.Sprintf("%s-%d", slug.Make(title), ticket.ID)
	if err := tx.
		Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("slug", ticket.Slug).
		Error; err != nil {
		return 0, err
	}
	return ticket.ID, nil
}

// Burn deletes the token and its metadata. The delete is unscoped so
// the (movie, owner) index entry is freed immediately and the pair can
// book again.
func Burn(tx *gorm.DB, tokenID uint) error {
	res := tx.Unscoped().Delete(&models.Ticket{}, tokenID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// MarkAsCheckedIn flips the one-way redeemed flag. A second call fails
// rather than succeeding idempotently.
func MarkAsCheckedIn(tx *gorm.DB, tokenID uint) error {
	var ticket models.Ticket
	if err := tx.First(&ticket, tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if ticket.CheckedIn {
		return ErrAlreadyCheckedIn
	}
	return tx.
		Model(&models.Ticket{}).
		Where("id = ?", tokenID).
		Update("checked_in", true).
		Error
}

// GetTokenMetadata resolves a live token. Burned tokens are gone for
// good; their IDs are never reissued.
func GetTokenMetadata(db *gorm.DB, tokenID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := db.Preload("Movie").Preload("Movie.Hall").First(&ticket, tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// TokenFor resolves the movie→owner→token index entry; 0 means the
// address holds no live ticket for the movie.
func TokenFor(db *gorm.DB, movieID, ownerID uint) (uint, error) {
	var ticket models.Ticket
	err := db.
		Select("id").
		Where(&models.Ticket{MovieID: movieID, OwnerID: ownerID}).
		First(&ticket).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ticket.ID, nil
}

// Transfer is the ownership-change hook. It re-homes the index entry
// and the recorded buyer in one step, keeping the one-ticket-per-movie
// rule intact for direct transfers outside the booking flow.
func Transfer(tx *gorm.DB, tokenID uint, newOwner *models.User) error {
	if newOwner == nil || newOwner.ID == 0 {
		return ErrTransferToUnknown
	}
	var ticket models.Ticket
	if err := tx.First(&ticket, tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	held, err := TokenFor(tx, ticket.MovieID, newOwner.ID)
	if err != nil {
		return err
	}
	if held != 0 {
		return ErrTransferToHolder
	}
	return tx.
		Model(&models.Ticket{}).
		Where("id = ?", tokenID).
		Updates(map[string]any{"owner_id": newOwner.ID, "owner": newOwner.Address}).
		Error
}
