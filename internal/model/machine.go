package model

import "time"

// MachineType classifies a refrigeration machine.
type MachineType string

const (
	MachineFreezer MachineType = "FREEZER"
	MachineChiller MachineType = "CHILLER"
)

// Machine describes one refrigeration unit. The set is replaced wholesale on
// each successful configuration sync.
type Machine struct {
	ID              string      `gorm:"primaryKey;size:64" json:"id"`
	Name            string      `gorm:"size:256;not null" json:"name"`
	Type            MachineType `gorm:"size:32;not null" json:"type"`
	DefaultSetpoint float64     `json:"defaultSetpoint"`
	UpdatedAt       time.Time   `json:"-"`
}

// Meter describes one electricity meter.
type Meter struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	UpdatedAt time.Time `json:"-"`
}
