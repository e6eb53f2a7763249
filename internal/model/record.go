package model

import (
	"fmt"
	"time"
)

// RecordType discriminates the kinds of log records held in the ledger.
type RecordType string

const (
	RecordTemperature      RecordType = "TEMPERATURE"
	RecordMaintenance      RecordType = "MAINTENANCE"
	RecordMeterReading     RecordType = "METER_READING"
	RecordGeneratorRun     RecordType = "GENERATOR_RUN"
	RecordGeneratorService RecordType = "GENERATOR_SERVICE"
)

// Severity grades a maintenance issue.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityCritical Severity = "CRITICAL"
)

// LogRecord is one logged event. The kind-specific payloads of the record
// union are flattened into nullable columns discriminated by RecordType;
// exactly one of MachineID, MeterID and GeneratorID is set, consistent with
// the kind.
type LogRecord struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	RecordType  RecordType `gorm:"size:32;not null;index" json:"recordType"`
	Timestamp   time.Time  `gorm:"not null;index" json:"timestamp"`
	MachineID   *string    `gorm:"size:64;index" json:"machineId,omitempty"`
	MeterID     *string    `gorm:"size:64;index" json:"meterId,omitempty"`
	GeneratorID *string    `gorm:"size:64;index" json:"generatorId,omitempty"`
	RecordedBy  string     `gorm:"size:128" json:"recordedBy,omitempty"`

	// SyncedToSheet flips false -> true once the remote ledger has
	// acknowledged the record. The only sanctioned reversal is the
	// administrative reset-all escape hatch.
	SyncedToSheet bool `gorm:"not null;index" json:"syncedToSheet"`

	CreatedAt time.Time `json:"-"`

	// TEMPERATURE
	CurrentTemp  *float64 `json:"currentTemp,omitempty"`
	SetpointTemp *float64 `json:"setpointTemp,omitempty"`
	IsAnomaly    *bool    `json:"isAnomaly,omitempty"`

	// MAINTENANCE
	IssueDescription *string   `json:"issueDescription,omitempty"`
	Severity         *Severity `gorm:"size:16" json:"severity,omitempty"`
	ActionTaken      *string   `json:"actionTaken,omitempty"`
	AISuggestedFix   *string   `json:"aiSuggestedFix,omitempty"`

	// METER_READING
	Value *float64 `json:"value,omitempty"`

	// GENERATOR_RUN / GENERATOR_SERVICE
	RunHours       *float64 `json:"runHours,omitempty"`
	ServiceType    *string  `gorm:"size:128" json:"serviceType,omitempty"`
	PartsReplaced  *string  `json:"partsReplaced,omitempty"`
	NextServiceDue *string  `gorm:"size:64" json:"nextServiceDue,omitempty"`
	AIAdvice       *string  `json:"aiAdvice,omitempty"`

	// Shared free-text note (temperature, generator run).
	Notes *string `json:"notes,omitempty"`

	// Base64 photo payload, data-URI prefix included when captured locally.
	PhotoData *string `json:"photoData,omitempty"`
}

// EntityID returns the owning-entity reference for the record's kind.
func (r *LogRecord) EntityID() string {
	switch r.RecordType {
	case RecordTemperature, RecordMaintenance:
		if r.MachineID != nil {
			return *r.MachineID
		}
	case RecordMeterReading:
		if r.MeterID != nil {
			return *r.MeterID
		}
	case RecordGeneratorRun, RecordGeneratorService:
		if r.GeneratorID != nil {
			return *r.GeneratorID
		}
	}
	return ""
}

// Validate checks the kind tag and the exclusive owning-entity invariant.
func (r *LogRecord) Validate() error {
	switch r.RecordType {
	case RecordTemperature, RecordMaintenance, RecordMeterReading,
		RecordGeneratorRun, RecordGeneratorService:
	default:
		return fmt.Errorf("unknown record type %q", r.RecordType)
	}

	refs := 0
	if r.MachineID != nil && *r.MachineID != "" {
		refs++
	}
	if r.MeterID != nil && *r.MeterID != "" {
		refs++
	}
	if r.GeneratorID != nil && *r.GeneratorID != "" {
		refs++
	}
	if refs != 1 {
		return fmt.Errorf("record %q must reference exactly one entity, has %d", r.ID, refs)
	}
	if r.EntityID() == "" {
		return fmt.Errorf("record %q entity reference does not match its type %s", r.ID, r.RecordType)
	}
	return nil
}
