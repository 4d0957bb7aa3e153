package database

import (
	"fmt"
	"log"

	"github.com/anjiri1684/timetable/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedCatalog fills an empty catalog with a small demo faculty. It does
// nothing once any room exists.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Room{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		log.Println("Catalog already seeded.")
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		records := []interface{}{
			&[]models.Instructor{{Name: "Ana Ionescu"}, {Name: "Mihai Popescu"}, {Name: "Elena Radu"}},
			&[]models.Room{{Name: "C112", Capacity: 30}, {Name: "C210", Capacity: 60}, {Name: "L3", Capacity: 16}},
			&[]models.Course{{Name: "Algebra", Year: 1}, {Name: "Logic", Year: 1}, {Name: "Databases", Year: 2}, {Name: "Networks", Year: 3}},
			&[]models.Group{
				{Name: "911", StudentCount: 28, AssignedYear: 1},
				{Name: "912", StudentCount: 26, AssignedYear: 1},
				{Name: "921", StudentCount: 24, AssignedYear: 2},
				{Name: "931", StudentCount: 15, AssignedYear: 3},
			},
		}
		for _, r := range records {
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}

		var slots []models.HourSlot
		for h := 8; h < 20; h += 2 {
			slots = append(slots, models.HourSlot{
				StartTime: datatypes.NewTime(h, 0, 0, 0),
				EndTime:   datatypes.NewTime(h+2, 0, 0, 0),
			})
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	log.Println("✅ Demo catalog seeded successfully")
	return nil
}
