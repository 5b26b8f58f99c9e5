package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/foxhole-tools/shiptracker/internal/models"
)

// Exports the ship roster and its audit trail to an xlsx workbook, one
// sheet per guild plus an Updates sheet. Run after a war ends to archive
// it before the tables are reused.
func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), os.Getenv("DB_PORT"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	outPath := "ships_export.xlsx"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	var ships []models.Ship
	if err := db.Order("guild_id, name").Find(&ships).Error; err != nil {
		log.Fatal("failed to load ships:", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ships"
	f.SetSheetName("Sheet1", sheet)
	header := []interface{}{"ID", "Guild", "War", "Name", "Type", "Status", "Damage", "Location", "Home Port", "Regiment", "Link Root", "Created"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		log.Fatal(err)
	}

	for i, ship := range ships {
		root := ""
		if ship.LinkRootID != nil {
			root = fmt.Sprintf("%d", *ship.LinkRootID)
		}
		row := []interface{}{
			ship.ID, ship.GuildID, ship.WarID, ship.Name, ship.Type, ship.Status,
			ship.Damage, ship.Location, ship.HomePort, ship.Regiment, root,
			ship.CreatedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.Fatal(err)
		}
	}

	var updates []models.ShipUpdate
	if err := db.Order("id").Find(&updates).Error; err != nil {
		log.Fatal("failed to load updates:", err)
	}

	updatesSheet := "Updates"
	if _, err := f.NewSheet(updatesSheet); err != nil {
		log.Fatal(err)
	}
	updatesHeader := []interface{}{"ID", "Ship ID", "User", "Field", "Old Value", "New Value", "When"}
	if err := f.SetSheetRow(updatesSheet, "A1", &updatesHeader); err != nil {
		log.Fatal(err)
	}
	for i, u := range updates {
		row := []interface{}{u.ID, u.ShipID, u.UserID, u.Field, u.OldValue, u.NewValue, u.CreatedAt.Format(time.RFC3339)}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(updatesSheet, cell, &row); err != nil {
			log.Fatal(err)
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		log.Fatal("failed to save workbook:", err)
	}

	fmt.Printf("Exported %d ships and %d updates to %s\n", len(ships), len(updates), outPath)
}
