package status

import (
	"sort"
	"time"

	"facility-logbook-backend/internal/model"
)

// Health of one refrigeration machine derived from its recent logs.
const (
	HealthGood  = "GOOD"
	HealthIssue = "ISSUE"
)

// recentWindow is how far back an issue still counts against a machine.
const recentWindow = 24 * time.Hour

// Generator service-interval thresholds in run hours.
const (
	ServiceWarnHours = 450
	ServiceDueHours  = 500
)

const (
	ServiceGood     = "GOOD"
	ServiceWarning  = "WARNING"
	ServiceCritical = "CRITICAL"
)

// regularService is the service-type label that resets the interval clock.
const regularService = "Regular Service"

// MachineHealth reports ISSUE when the machine has a maintenance record or an
// anomalous temperature reading within the last 24 hours, else GOOD.
func MachineHealth(logs []model.LogRecord, machineID string, now time.Time) string {
	for _, rec := range logs {
		if rec.MachineID == nil || *rec.MachineID != machineID {
			continue
		}
		if now.Sub(rec.Timestamp) > recentWindow {
			continue
		}
		switch rec.RecordType {
		case model.RecordMaintenance:
			return HealthIssue
		case model.RecordTemperature:
			if rec.IsAnomaly != nil && *rec.IsAnomaly {
				return HealthIssue
			}
		}
	}
	return HealthGood
}

// ServiceStatus summarizes a generator's position in its service interval.
type ServiceStatus struct {
	HoursSince      float64 `json:"hoursSince"`
	Status          string  `json:"status"`
	CurrentReading  float64 `json:"currentReading"`
	LastServiceDate string  `json:"lastServiceDate"`
}

type reading struct {
	timestamp time.Time
	runHours  float64
}

// GeneratorService derives hours-since-last-service for one generator from
// its run-hour counters. The counter logged with the service entry is
// preferred; otherwise the latest reading at or before the service timestamp
// stands in for it.
func GeneratorService(logs []model.LogRecord, generatorID string) ServiceStatus {
	var readings []reading
	var services []model.LogRecord

	for _, rec := range logs {
		if rec.GeneratorID == nil || *rec.GeneratorID != generatorID {
			continue
		}
		switch rec.RecordType {
		case model.RecordGeneratorRun:
			if rec.RunHours != nil {
				readings = append(readings, reading{rec.Timestamp, *rec.RunHours})
			}
		case model.RecordGeneratorService:
			services = append(services, rec)
			if rec.RunHours != nil {
				readings = append(readings, reading{rec.Timestamp, *rec.RunHours})
			}
		}
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].timestamp.After(readings[j].timestamp)
	})

	var currentReading float64
	if len(readings) > 0 {
		currentReading = readings[0].runHours
	}

	var lastService *model.LogRecord
	for i := range services {
		if services[i].ServiceType == nil || *services[i].ServiceType != regularService {
			continue
		}
		if lastService == nil || services[i].Timestamp.After(lastService.Timestamp) {
			lastService = &services[i]
		}
	}

	hoursSince := currentReading
	lastServiceDate := "None"
	if lastService != nil {
		lastServiceDate = lastService.Timestamp.Format("2006-01-02")
		if lastService.RunHours != nil {
			hoursSince = max(0, currentReading-*lastService.RunHours)
		} else {
			var readingAtService float64
			for _, r := range readings {
				if !r.timestamp.After(lastService.Timestamp) {
					readingAtService = r.runHours
					break
				}
			}
			hoursSince = max(0, currentReading-readingAtService)
		}
	}

	result := ServiceStatus{
		HoursSince:      hoursSince,
		Status:          ServiceGood,
		CurrentReading:  currentReading,
		LastServiceDate: lastServiceDate,
	}
	if hoursSince >= ServiceDueHours {
		result.Status = ServiceCritical
	} else if hoursSince >= ServiceWarnHours {
		result.Status = ServiceWarning
	}
	return result
}
