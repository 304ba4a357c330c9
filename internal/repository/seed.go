package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/timmy/epigraph/internal/domain"
	"gorm.io/gorm"
)

// builtinScripts is a small local catalog for development databases.
// Hosted deployments maintain ancient_scripts themselves.
var builtinScripts = []domain.AncientScript{
	{Name: "Sumerian Cuneiform", Code: "xsux", Period: "c. 3400 BCE - 100 CE", Region: "Mesopotamia", Description: "Wedge-shaped signs pressed into clay tablets."},
	{Name: "Egyptian Hieroglyphs", Code: "egyp", Period: "c. 3200 BCE - 400 CE", Region: "Egypt", Description: "Logographic and alphabetic signs carved on monuments and written on papyrus."},
	{Name: "Linear B", Code: "linb", Period: "c. 1450 - 1200 BCE", Region: "Aegean", Description: "Syllabic script used for Mycenaean Greek."},
	{Name: "Phoenician", Code: "phnx", Period: "c. 1050 - 150 BCE", Region: "Levant", Description: "Consonantal alphabet ancestral to Greek and Aramaic."},
	{Name: "Old Turkic Orkhon", Code: "orkh", Period: "c. 700 - 1000 CE", Region: "Central Asia", Description: "Runiform script of the Orkhon and Yenisei inscriptions."},
	{Name: "Oracle Bone Script", Code: "hani", Period: "c. 1250 - 1050 BCE", Region: "China", Description: "Earliest attested Chinese characters, carved on bones and shells."},
	{Name: "Maya Glyphs", Code: "maya", Period: "c. 300 BCE - 1500 CE", Region: "Mesoamerica", Description: "Logosyllabic script on stelae, ceramics and codices."},
	{Name: "Ancient Greek", Code: "grek", Period: "c. 800 BCE - 600 CE", Region: "Mediterranean", Description: "Alphabet with vowels adapted from Phoenician."},
}

// SeedScripts inserts the builtin catalog entries whose name is not present yet.
// Returns the number of rows inserted.
func SeedScripts(ctx context.Context, db *gorm.DB) (int, error) {
	inserted := 0
	for _, s := range builtinScripts {
		var existing domain.AncientScript
		err := db.WithContext(ctx).Where("name = ?", s.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return inserted, err
		}

		row := s
		row.ID = uuid.New().String()
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
