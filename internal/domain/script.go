package domain

import "time"

// AncientScript is a cataloged writing system. Rows are reference data maintained
// out-of-band and are only ever read by this service.
type AncientScript struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Code        string    `gorm:"type:text;not null" json:"code"`
	Period      string    `gorm:"type:text;not null" json:"period"`
	Region      string    `gorm:"type:text;not null" json:"region"`
	Description string    `gorm:"type:text;default:''" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for AncientScript.
func (AncientScript) TableName() string {
	return "ancient_scripts"
}
