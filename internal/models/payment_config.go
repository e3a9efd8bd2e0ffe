package models

import (
	"bytes"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// PaymentConfig holds one provider's settings. Settings is a JSON object whose
// keys are provider specific (coinpay uses app_id, secret, gateway_url, return_url).
type PaymentConfig struct {
	ID        uint           `gorm:"primarykey"`
	UUID      string         `gorm:"uniqueIndex;type:varchar(36);not null"`
	Provider  string         `gorm:"uniqueIndex;type:varchar(50);not null"` // e.g., "coinpay"
	Name      string         `gorm:"type:varchar(100);not null;default:'Payment Method'"`
	Settings  datatypes.JSON `gorm:"type:json;not null"`
	Enable    bool           `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SettingsMap decodes Settings keeping numbers as json.Number, so numeric
// app ids above 2^53 survive unchanged.
func (c PaymentConfig) SettingsMap() (map[string]interface{}, error) {
	settings := map[string]interface{}{}
	if len(c.Settings) == 0 {
		return settings, nil
	}
	dec := json.NewDecoder(bytes.NewReader(c.Settings))
	dec.UseNumber()
	if err := dec.Decode(&settings); err != nil {
		return nil, err
	}
	return settings, nil
}
