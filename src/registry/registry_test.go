package registry

import (
	"cbs/src/models"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("error opening test database: %s", err.Error())
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Hall{},
		&models.Movie{},
		&models.Ticket{},
	); err != nil {
		t.Fatalf("error migration: %s", err.Error())
	}
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, address string) *models.User {
	t.Helper()
	user := models.User{Address: address, Name: "Test User", Email: address + "@example.com"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("error seeding user: %s", err.Error())
	}
	return &user
}

func seedMovie(t *testing.T, gdb *gorm.DB, seats uint) *models.Movie {
	t.Helper()
	hall := models.Hall{Name: "Hall A", TotalSeats: seats}
	if err := gdb.Create(&hall).Error; err != nil {
		t.Fatalf("error seeding hall: %s", err.Error())
	}
	movie := models.Movie{
		HallID:           hall.ID,
		Title:            "Night Screening",
		StartTime:        time.Now().Add(24 * time.Hour),
		TicketPrice:      500,
		AvailableTickets: seats,
	}
	if err := gdb.Create(&movie).Error; err != nil {
		t.Fatalf("error seeding movie: %s", err.Error())
	}
	return &movie
}

func TestMintAllocatesSequentialTokenIDs(t *testing.T) {
	gdb := newTestDB(t)
	movie := seedMovie(t, gdb, 20)

	first := seedUser(t, gdb, "0x1111111111111111111111111111111111111111")
	second := seedUser(t, gdb, "0x2222222222222222222222222222222222222222")

	id1, err := Mint(gdb, first, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)
	assert.Equal(t, uint(1), id1)

	id2, err := Mint(gdb, second, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)
	assert.Equal(t, uint(2), id2)

	ticket, err := GetTokenMetadata(gdb, id1)
	assert.Nil(t, err)
	assert.Equal(t, first.Address, ticket.Owner)
	assert.Equal(t, uint(1), ticket.TotalSeats)
	assert.Equal(t, uint64(500), ticket.TotalCost)
	assert.Equal(t, movie.ID, ticket.MovieID)
	assert.False(t, ticket.CheckedIn)
	assert.False(t, ticket.Complimentary)
	assert.Contains(t, ticket.Slug, "night-screening")
}

func TestMintRejectsDoubleBooking(t *testing.T) {
	gdb := newTestDB(t)
	movie := seedMovie(t, gdb, 20)
	user := seedUser(t, gdb, "0x1111111111111111111111111111111111111111")

	_, err := Mint(gdb, user, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)

	_, err = Mint(gdb, user, movie.ID, 1, 500, movie.Title, false)
	assert.ErrorIs(t, err, ErrDoubleBooking)
}

func TestBurnFreesIndexEntry(t *testing.T) {
	gdb := newTestDB(t)
	movie := seedMovie(t, gdb, 20)
	user := seedUser(t, gdb, "0x1111111111111111111111111111111111111111")

	id, err := Mint(gdb, user, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)

	assert.Nil(t, Burn(gdb, id))

	_, err = GetTokenMetadata(gdb, id)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	held, err := TokenFor(gdb, movie.ID, user.ID)
	assert.Nil(t, err)
	assert.Zero(t, held)

	// the pair may book again once the token is gone
	id2, err := Mint(gdb, user, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)
	assert.Greater(t, id2, id)
}

func TestBurnUnknownToken(t *testing.T) {
	gdb := newTestDB(t)

	assert.ErrorIs(t, Burn(gdb, 42), ErrTokenNotFound)
}

func TestMarkAsCheckedInIsOneWay(t *testing.T) {
	gdb := newTestDB(t)
	movie := seedMovie(t, gdb, 20)
	user := seedUser(t, gdb, "0x1111111111111111111111111111111111111111")

	id, err := Mint(gdb, user, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)

	assert.Nil(t, MarkAsCheckedIn(gdb, id))

	ticket, err := GetTokenMetadata(gdb, id)
	assert.Nil(t, err)
	assert.True(t, ticket.CheckedIn)

	assert.ErrorIs(t, MarkAsCheckedIn(gdb, id), ErrAlreadyCheckedIn)
	assert.ErrorIs(t, MarkAsCheckedIn(gdb, 42), ErrTokenNotFound)
}

func TestTransferRehomesIndex(t *testing.T) {
	gdb := newTestDB(t)
	movie := seedMovie(t, gdb, 20)
	seller := seedUser(t, gdb, "0x1111111111111111111111111111111111111111")
	buyer := seedUser(t, gdb, "0x2222222222222222222222222222222222222222")

	id, err := Mint(gdb, seller, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)

	assert.Nil(t, Transfer(gdb, id, buyer))

	ticket, err := GetTokenMetadata(gdb, id)
	assert.Nil(t, err)
	assert.Equal(t, buyer.ID, ticket.OwnerID)
	assert.Equal(t, buyer.Address, ticket.Owner)

	held, err := TokenFor(gdb, movie.ID, seller.ID)
	assert.Nil(t, err)
	assert.Zero(t, held)
	held, err = TokenFor(gdb, movie.ID, buyer.ID)
	assert.Nil(t, err)
	assert.Equal(t, id, held)

	// the old owner is free to book the same movie again
	_, err = Mint(gdb, seller, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)
}

func TestTransferRejectsRecipientAlreadyHolding(t *testing.T) {
	gdb := newTestDB(t)
	movie := seedMovie(t, gdb, 20)
	seller := seedUser(t, gdb, "0x1111111111111111111111111111111111111111")
	buyer := seedUser(t, gdb, "0x2222222222222222222222222222222222222222")

	id, err := Mint(gdb, seller, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)
	_, err = Mint(gdb, buyer, movie.ID, 1, 500, movie.Title, false)
	assert.Nil(t, err)

	assert.ErrorIs(t, Transfer(gdb, id, buyer), ErrTransferToHolder)
	assert.ErrorIs(t, Transfer(gdb, 42, buyer), ErrTokenNotFound)
}
