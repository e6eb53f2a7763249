package model

import "time"

// Generator describes one generator set, including the consumable part
// numbers shown on the service screen. Name is the shop label (e.g. KMD) and
// Model the manufacturer line (e.g. Pai Kane).
type Generator struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	Model          string    `gorm:"size:128" json:"model"`
	AirFilter      string    `gorm:"size:256" json:"airFilter"`
	OilFilter      string    `gorm:"size:256" json:"oilFilter"`
	FuelFilter     string    `gorm:"size:256" json:"fuelFilter"`
	FanBelt        string    `gorm:"size:256" json:"fanBelt"`
	WaterSeparator string    `gorm:"size:256" json:"waterSeparator"`
	UpdatedAt      time.Time `json:"-"`
}
