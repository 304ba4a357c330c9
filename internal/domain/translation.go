package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AnalysisData is an opaque JSON object stored alongside a translation.
type AnalysisData map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the object.
//   - error: non-nil if marshaling fails.
func (d AnalysisData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
//
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (d *AnalysisData) Scan(value interface{}) error {
	if value == nil {
		*d = AnalysisData{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan AnalysisData")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, d)
}

// Translation is one analyzed inscription image. It is inserted once per
// successful analysis and never updated afterwards.
type Translation struct {
	ID              string         `gorm:"type:text;primaryKey" json:"id"`
	UserID          *string        `gorm:"type:text;index:idx_translations_user" json:"user_id"`
	ImageURL        string         `gorm:"type:text;not null" json:"image_url"`
	ScriptID        *string        `gorm:"type:text" json:"script_id"`
	OriginalText    string         `gorm:"type:text;default:''" json:"original_text"`
	TranslatedText  string         `gorm:"type:text;default:''" json:"translated_text"`
	ConfidenceScore int            `gorm:"default:0" json:"confidence_score"`
	AnalysisData    AnalysisData   `gorm:"type:text" json:"analysis_data"`
	IsPublic        bool           `gorm:"index:idx_translations_public" json:"is_public"`
	Script          *AncientScript `gorm:"foreignKey:ScriptID;references:ID" json:"ancient_scripts,omitempty"`
	CreatedAt       time.Time      `gorm:"index:idx_translations_created" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Translation.
func (Translation) TableName() string {
	return "translations"
}
