// Package airdrop is the Merkle-gated claim ledger: one whitelist
// window per movie, one free mint per whitelisted address. Claims
// bypass the booking ledger's payment path entirely and delegate the
// mint to the registry at cost zero.
package airdrop

import (
	"cbs/src/db"
	"cbs/src/merkle"
	"cbs/src/models"
	"cbs/src/registry"
	"cbs/src/types"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrMovieNotFound  = errors.New("airdrop: movie does not exist")
	ErrWindowExists   = errors.New("airdrop: an airdrop already exists for this movie")
	ErrWindowNotFound = errors.New("airdrop: no airdrop exists for this movie")
	ErrWindowClosed   = errors.New("airdrop: claim window is not open")
	ErrAlreadyClaimed = errors.New("airdrop: address has already claimed")
	ErrInvalidProof   = errors.New("airdrop: merkle proof does not verify")
	ErrBadWindow      = errors.New("airdrop: window must end after it starts")
)

// DelegateNewAirdropForMovie opens the single claim window for a movie.
// Existing windows are never overwritten.
func DelegateNewAirdropForMovie(initiator string, movieID uint, root string, startAt, endAt time.Time) (uint, error) {
	if !endAt.After(startAt) {
		return 0, ErrBadWindow
	}
	if _, err := merkle.ParseHash(root); err != nil {
		return 0, err
	}
	var windowID uint
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var movie models.Movie
		if err := tx.First(&movie, movieID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovieNotFound
			}
			return err
		}
		var existing int64
		if err := tx.
			Model(&models.Airdrop{}).
			Where(&models.Airdrop{MovieID: movieID}).
			Count(&existing).
			Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrWindowExists
		}
		window := models.Airdrop{
			MovieID:    movieID,
			MerkleRoot: root,
			StartAt:    startAt,
			EndAt:      endAt,
		}
		if err := tx.Create(&window).Error; err != nil {
			return err
		}
		windowID = window.ID
		return models.AppendTrail(tx, types.TRAIL_AIRDROP_CREATED, initiator, "airdrops", types.JSONB{
			"id":    window.ID,
			"movie": movieID,
			"root":  root,
		})
	})
	if err != nil {
		return 0, err
	}
	return windowID, nil
}

// Claim verifies the caller's whitelist proof and mints their free
// ticket. The claimed flag is permanent; a second claim fails no matter
// how valid the proof. Seat inventory is not touched; airdropped
// tickets ride on top of the hall capacity.
func Claim(caller *models.User, movieID uint, proof []string) (uint, error) {
	leaf, err := merkle.LeafForAddress(caller.Address)
	if err != nil {
		return 0, err
	}
	var tokenID uint
	gdb := db.GetDb()
	err = gdb.Transaction(func(tx *gorm.DB) error {
		var window models.Airdrop
		if err := tx.
			Where(&models.Airdrop{MovieID: movieID}).
			Preload("Movie").
			First(&window).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWindowNotFound
			}
			return err
		}
		if !window.Open(time.Now()) {
			return ErrWindowClosed
		}
		var claimed int64
		if err := tx.
			Model(&models.Claim{}).
			Where(&models.Claim{MovieID: movieID, Address: caller.Address}).
			Count(&claimed).
			Error; err != nil {
			return err
		}
		if claimed > 0 {
			return ErrAlreadyClaimed
		}
		ok, err := merkle.VerifyStrings(proof, window.MerkleRoot, leaf)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidProof
		}
		if err := tx.Create(&models.Claim{MovieID: movieID, Address: caller.Address}).Error; err != nil {
			return err
		}
		id, err := registry.Mint(tx, caller, movieID, 1, 0, window.Movie.Title, true)
		if err != nil {
			return err
		}
		tokenID = id
		return models.AppendTrail(tx, types.TRAIL_CLAIMED, caller.Address, "airdrops", types.JSONB{
			"token": tokenID,
			"movie": movieID,
		})
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}
