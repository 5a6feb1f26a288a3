// Package cinema is the booking ledger: halls, showings, paid
// bookings, time-tiered cancellation refunds, venue check-in, and the
// operator treasury. Each operation runs in a single database
// transaction, so callers racing for the last seat or the same refund
// are serialized and the loser fails cleanly with no partial state.
// Token bookkeeping is delegated to the registry package.
package cinema

import (
	"cbs/src/config"
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/registry"
	"cbs/src/types"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrHallNotFound        = errors.New("cinema: hall does not exist")
	ErrMovieNotFound       = errors.New("cinema: movie does not exist")
	ErrEmptyName           = errors.New("cinema: name must not be empty")
	ErrNoCapacity          = errors.New("cinema: hall must have at least one seat")
	ErrStartTimeNotFuture  = errors.New("cinema: start time must be in the future")
	ErrMovieStarted        = errors.New("cinema: movie has already started")
	ErrSoldOut             = errors.New("cinema: no tickets available")
	ErrInsufficientValue   = errors.New("cinema: paid amount is below the ticket price")
	ErrInsufficientBalance = errors.New("cinema: account balance too low")
	ErrNotTicketOwner      = errors.New("cinema: caller does not own this ticket")
	ErrTicketRedeemed      = errors.New("cinema: ticket is already checked in")
	ErrCheckInTooEarly     = errors.New("cinema: check-in has not opened yet")
	ErrWithdrawExceeds     = errors.New("cinema: amount exceeds withdrawable funds")
)

// AddNewHall registers a venue with a fixed capacity. Halls are
// immutable once created.
func AddNewHall(initiator string, name string, totalSeats uint) (uint, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	if totalSeats == 0 {
		return 0, ErrNoCapacity
	}
	hall := models.Hall{Name: name, TotalSeats: totalSeats}
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hall).Error; err != nil {
			return err
		}
		return models.AppendTrail(tx, types.TRAIL_HALL_CREATED, initiator, "halls", types.JSONB{
			"id":    hall.ID,
			"name":  hall.Name,
			"seats": hall.TotalSeats,
		})
	})
	if err != nil {
		return 0, err
	}
	return hall.ID, nil
}

// AddNewMovie schedules a showing. The seat inventory snapshots the
// hall capacity at creation time; later showings in the same hall do
// not share it.
func AddNewMovie(initiator string, hallID uint, title string, startTime time.Time, ticketPrice uint64) (uint, error) {
	if title == "" {
		return 0, ErrEmptyName
	}
	if !startTime.After(time.Now()) {
		return 0, ErrStartTimeNotFuture
	}
	var movieID uint
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var hall models.Hall
		if err := tx.First(&hall, hallID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHallNotFound
			}
			return err
		}
		movie := models.Movie{
			HallID:           hall.ID,
			Title:            title,
			StartTime:        startTime,
			TicketPrice:      ticketPrice,
			AvailableTickets: hall.TotalSeats,
		}
		if err := tx.Create(&movie).Error; err != nil {
			return err
		}
		movieID = movie.ID
		return models.AppendTrail(tx, types.TRAIL_MOVIE_CREATED, initiator, "movies", types.JSONB{
			"id":    movie.ID,
			"hall":  hall.ID,
			"title": movie.Title,
		})
	})
	if err != nil {
		return 0, err
	}
	return movieID, nil
}

// BookTicket escrows the attached value and mints a one-seat token for
// the caller. The inventory decrement is a guarded update, so two
// bookings racing for the last seat are decided by whichever commits
// first; the other observes zero availability and aborts. Overpayment
// above the ticket price is retained as operator revenue and credited
// straight to the withdrawable ledger.
func BookTicket(caller *models.User, movieID uint, value uint64) (uint, error) {
	var tokenID uint
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var movie models.Movie
		if err := tx.First(&movie, movieID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovieNotFound
			}
			return err
		}
		now := time.Now()
		if movie.Started(now) {
			return ErrMovieStarted
		}
		if value < movie.TicketPrice {
			return ErrInsufficientValue
		}
		res := tx.
			Model(&models.Movie{}).
			Where("id = ? AND available_tickets >= 1", movie.ID).
			UpdateColumn("available_tickets", gorm.Expr("available_tickets - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSoldOut
		}
		res = tx.
			Model(&models.User{}).
			Where("id = ? AND balance >= ?", caller.ID, value).
			UpdateColumn("balance", gorm.Expr("balance - ?", value))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		excess := value - movie.TicketPrice
		if _, err := models.GetTreasury(tx); err != nil {
			return err
		}
		if err := tx.
			Model(&models.Treasury{}).
			Where("id = 1").
			UpdateColumns(map[string]any{
				"balance":      gorm.Expr("balance + ?", value),
				"withdrawable": gorm.Expr("withdrawable + ?", excess),
			}).
			Error; err != nil {
			return err
		}
		id, err := registry.Mint(tx, caller, movie.ID, 1, movie.TicketPrice, movie.Title, false)
		if err != nil {
			return err
		}
		tokenID = id
		return models.AppendTrail(tx, types.TRAIL_TICKET_BOOKED, caller.Address, "tickets", types.JSONB{
			"token": tokenID,
			"movie": movie.ID,
			"value": value,
		})
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// RefundPercent is the cancellation refund tier for a given clock and
// showtime. Tiers tighten as the show approaches: more than two hours
// out the full fare comes back, inside two hours half, inside the last
// hour a quarter.
func RefundPercent(now, startTime time.Time) uint64 {
	left := startTime.Sub(now)
	switch {
	case left > 2*time.Hour:
		return 100
	case left > time.Hour:
		return 50
	default:
		return 25
	}
}

// CancelTicket burns the caller's token and refunds the tiered share
// of its cost. Ownership is read fresh inside the transaction since
// tokens are transferable. All internal state (inventory, token,
// treasury) is settled before the refund is credited to the owner, and
// any failure rolls back the whole operation.
func CancelTicket(caller *models.User, ticketID uint) (uint64, error) {
	var refund uint64
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		ticket, err := registry.GetTokenMetadata(tx, ticketID)
		if err != nil {
			return err
		}
		now := time.Now()
		if ticket.Movie.Started(now) {
			return ErrMovieStarted
		}
		if ticket.CheckedIn {
			return ErrTicketRedeemed
		}
		if ticket.OwnerID != caller.ID {
			return ErrNotTicketOwner
		}
		pct := RefundPercent(now, ticket.Movie.StartTime)
		refund = ticket.TotalCost * pct / 100
		retained := ticket.TotalCost - refund

		// complimentary tickets never decremented the inventory, so
		// restoring a seat for one would push availability past the
		// hall capacity
		if !ticket.Complimentary {
			if err := tx.
				Model(&models.Movie{}).
				Where("id = ?", ticket.MovieID).
				UpdateColumn("available_tickets", gorm.Expr("available_tickets + ?", ticket.TotalSeats)).
				Error; err != nil {
				return err
			}
		}
		if err := registry.Burn(tx, ticketID); err != nil {
			return err
		}
		res := tx.
			Model(&models.Treasury{}).
			Where("id = 1 AND balance >= ?", refund).
			UpdateColumns(map[string]any{
				"balance":      gorm.Expr("balance - ?", refund),
				"withdrawable": gorm.Expr("withdrawable + ?", retained),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", ticket.OwnerID).
			UpdateColumn("balance", gorm.Expr("balance + ?", refund)).
			Error; err != nil {
			return err
		}
		return models.AppendTrail(tx, types.TRAIL_TICKET_CANCELED, caller.Address, "tickets", types.JSONB{
			"token":  ticketID,
			"movie":  ticket.MovieID,
			"refund": refund,
		})
	})
	if err != nil {
		return 0, err
	}
	return refund, nil
}

// CheckInTicket redeems a token at the venue. Admission opens thirty
// minutes before showtime; once a ticket is checked in its full cost
// belongs to the operator and no refund path remains. The token is
// kept as the redeemed record, not burned.
func CheckInTicket(initiator string, ticketID uint) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		ticket, err := registry.GetTokenMetadata(tx, ticketID)
		if err != nil {
			return err
		}
		opens := ticket.Movie.StartTime.Add(-config.CheckInWindow * time.Minute)
		if time.Now().Before(opens) {
			return ErrCheckInTooEarly
		}
		if err := registry.MarkAsCheckedIn(tx, ticketID); err != nil {
			if errors.Is(err, registry.ErrAlreadyCheckedIn) {
				return ErrTicketRedeemed
			}
			return err
		}
		if _, err := models.GetTreasury(tx); err != nil {
			return err
		}
		if err := tx.
			Model(&models.Treasury{}).
			Where("id = 1").
			UpdateColumn("withdrawable", gorm.Expr("withdrawable + ?", ticket.TotalCost)).
			Error; err != nil {
			return err
		}
		return models.AppendTrail(tx, types.TRAIL_CHECKED_IN, initiator, "tickets", types.JSONB{
			"token": ticketID,
			"movie": ticket.MovieID,
		})
	})
}

// Withdraw moves operator revenue out of escrow. The guarded update
// rejects any amount exceeding either the withdrawable ledger or the
// escrow balance, so funds reserved for refunds can never leave.
func Withdraw(admin *models.User, amount uint64) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := models.GetTreasury(tx); err != nil {
			return err
		}
		res := tx.
			Model(&models.Treasury{}).
			Where("id = 1 AND withdrawable >= ? AND balance >= ?", amount, amount).
			UpdateColumns(map[string]any{
				"balance":      gorm.Expr("balance - ?", amount),
				"withdrawable": gorm.Expr("withdrawable - ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWithdrawExceeds
		}
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", admin.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).
			Error; err != nil {
			return err
		}
		return models.AppendTrail(tx, types.TRAIL_WITHDRAWAL, admin.Address, "treasury", types.JSONB{
			"amount": amount,
		})
	})
}

// Deposit credits the caller's on-ledger balance.
func Deposit(caller *models.User, amount uint64) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", caller.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).
			Error; err != nil {
			return err
		}
		return models.AppendTrail(tx, types.TRAIL_DEPOSIT, caller.Address, "wallet", types.JSONB{
			"amount": amount,
		})
	})
}

// TransferTicket re-homes a token to another account through the
// registry's ownership hook. Only the current owner may move it.
func TransferTicket(caller *models.User, ticketID uint, toAddress string) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		ticket, err := registry.GetTokenMetadata(tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.OwnerID != caller.ID {
			return ErrNotTicketOwner
		}
		var recipient models.User
		if err := tx.Where(&models.User{Address: toAddress}).First(&recipient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return registry.ErrTransferToUnknown
			}
			return err
		}
		if err := registry.Transfer(tx, ticketID, &recipient); err != nil {
			return err
		}
		return models.AppendTrail(tx, types.TRAIL_TICKET_MOVED, caller.Address, "tickets", types.JSONB{
			"token": ticketID,
			"to":    recipient.Address,
		})
	})
}
