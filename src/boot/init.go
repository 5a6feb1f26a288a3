package boot

import (
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
	"log"
	"os"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	gdb := db.GetDb()

	err := gdb.AutoMigrate(
		&models.User{},
		&models.Hall{},
		&models.Movie{},
		&models.Ticket{},
		&models.Airdrop{},
		&models.Claim{},
		&models.Treasury{},
		&models.TrailLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	if _, err := models.GetTreasury(gdb); err != nil {
		log.Fatalf("error seeding treasury: %s", err.Error())
	}
	SeedAdmin(gdb)

	return gdb
}

// SeedAdmin provisions the administrator account from ADMIN_ADDRESS.
// The grant happens once at deployment; re-running is a no-op.
func SeedAdmin(gdb *gorm.DB) {
	address := os.Getenv("ADMIN_ADDRESS")
	if address == "" {
		return
	}
	admin := models.User{
		Address: address,
		Name:    "Administrator",
		Email:   os.Getenv("ADMIN_EMAIL"),
		Role:    types.ROLE_ADMIN,
	}
	if err := gdb.Where(&models.User{Address: address}).FirstOrCreate(&admin).Error; err != nil {
		log.Printf("Could not seed admin account: %s\n", err.Error())
		return
	}
	if admin.Role != types.ROLE_ADMIN {
		gdb.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", types.ROLE_ADMIN)
	}
}
