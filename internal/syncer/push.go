package syncer

import (
	"context"
	"log"
	"strings"
	"time"

	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
)

// The remote transport exposes one endpoint action per record kind, so the
// pending set is partitioned into up to three batches. Batches are attempted
// independently: one transport failure must not strand the other kinds.

// PushPending pushes every not-yet-acknowledged record and returns the
// identities of the batches that completed without error. The caller is
// responsible for MarkSynced; records in a failed batch stay pending and are
// replayed on the next cycle.
func (o *Orchestrator) PushPending(ctx context.Context) ([]string, error) {
	pending, err := o.store.ListPendingLogs(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	cfg := o.loadEntityConfig(ctx)

	var machineRecs, meterRecs, genRecs []model.LogRecord
	for _, rec := range pending {
		switch rec.RecordType {
		case model.RecordTemperature, model.RecordMaintenance:
			machineRecs = append(machineRecs, rec)
		case model.RecordMeterReading:
			meterRecs = append(meterRecs, rec)
		case model.RecordGeneratorRun, model.RecordGeneratorService:
			genRecs = append(genRecs, rec)
		}
	}

	var synced []string

	if len(machineRecs) > 0 {
		rows := make([]bridge.MachineLogRow, 0, len(machineRecs))
		for _, rec := range machineRecs {
			rows = append(rows, machineRow(rec, cfg))
		}
		if err := o.sheet.PushMachineLogs(ctx, rows); err != nil {
			log.Printf("Machine batch push failed (%d records stay pending): %v", len(machineRecs), err)
		} else {
			synced = appendIDs(synced, machineRecs)
		}
	}

	if len(meterRecs) > 0 {
		rows := make([]bridge.MeterLogRow, 0, len(meterRecs))
		for _, rec := range meterRecs {
			rows = append(rows, meterRow(rec, cfg))
		}
		if err := o.sheet.PushMeterLogs(ctx, rows); err != nil {
			log.Printf("Meter batch push failed (%d records stay pending): %v", len(meterRecs), err)
		} else {
			synced = appendIDs(synced, meterRecs)
		}
	}

	if len(genRecs) > 0 {
		rows := make([]bridge.GeneratorLogRow, 0, len(genRecs))
		for _, rec := range genRecs {
			rows = append(rows, generatorRow(rec, cfg))
		}
		if err := o.sheet.PushGeneratorLogs(ctx, rows); err != nil {
			log.Printf("Generator batch push failed (%d records stay pending): %v", len(genRecs), err)
		} else {
			synced = appendIDs(synced, genRecs)
		}
	}

	return synced, nil
}

func appendIDs(ids []string, recs []model.LogRecord) []string {
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	return ids
}

// wireDate renders the localized date column the sheet displays.
func wireDate(ts time.Time) string {
	return ts.Local().Format("1/2/2006, 3:04:05 PM")
}

func recordedBy(rec model.LogRecord) string {
	if rec.RecordedBy == "" {
		return "Unknown"
	}
	return rec.RecordedBy
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// stripPhoto drops the data-URI prefix; the sheet stores bare base64.
func stripPhoto(p *string) string {
	if p == nil {
		return ""
	}
	if i := strings.Index(*p, ","); i >= 0 {
		return (*p)[i+1:]
	}
	return *p
}

func machineRow(rec model.LogRecord, cfg entityConfig) bridge.MachineLogRow {
	id := deref(rec.MachineID)
	row := bridge.MachineLogRow{
		Machine:    cfg.machineName(id),
		Date:       wireDate(rec.Timestamp),
		RecordedBy: recordedBy(rec),
		ID:         rec.ID,
		MachineID:  id,
		Timestamp:  rec.Timestamp.UTC().Format(time.RFC3339),
	}
	if rec.RecordType == model.RecordTemperature {
		row.Type = "Temperature"
		row.Value = derefFloat(rec.CurrentTemp)
		row.Target = derefFloat(rec.SetpointTemp)
		row.Notes = deref(rec.Notes)
		if rec.IsAnomaly != nil && *rec.IsAnomaly {
			row.AI = "Anomaly"
		} else {
			row.AI = "Normal"
		}
		return row
	}
	row.Type = "Maintenance"
	row.Value = deref(rec.IssueDescription)
	if rec.Severity != nil {
		row.Target = string(*rec.Severity)
	} else {
		row.Target = ""
	}
	row.Notes = deref(rec.ActionTaken)
	row.AI = deref(rec.AISuggestedFix)
	row.Photo = stripPhoto(rec.PhotoData)
	return row
}

func meterRow(rec model.LogRecord, cfg entityConfig) bridge.MeterLogRow {
	id := deref(rec.MeterID)
	return bridge.MeterLogRow{
		Date:       wireDate(rec.Timestamp),
		MeterName:  cfg.meterName(id),
		Value:      derefFloat(rec.Value),
		RecordedBy: recordedBy(rec),
		Photo:      stripPhoto(rec.PhotoData),
		ID:         rec.ID,
		MeterID:    id,
		Timestamp:  rec.Timestamp.UTC().Format(time.RFC3339),
	}
}

func generatorRow(rec model.LogRecord, cfg entityConfig) bridge.GeneratorLogRow {
	id := deref(rec.GeneratorID)
	row := bridge.GeneratorLogRow{
		Date:       wireDate(rec.Timestamp),
		RecordedBy: recordedBy(rec),
		ID:         rec.ID,
		Timestamp:  rec.Timestamp.UTC().Format(time.RFC3339),
		GenID:      id,
		GenName:    cfg.generatorName(id),
	}
	if rec.RecordType == model.RecordGeneratorRun {
		row.Type = "RUN_HOURS"
		row.RunHours = derefFloat(rec.RunHours)
		row.Notes = deref(rec.Notes)
		return row
	}
	row.Type = "SERVICE"
	// Service records may legitimately lack a counter reading; the sheet
	// column stays blank rather than showing a spurious zero.
	if rec.RunHours != nil {
		row.RunHours = *rec.RunHours
	} else {
		row.RunHours = ""
	}
	row.Notes = deref(rec.ServiceType)
	row.Parts = deref(rec.PartsReplaced)
	row.Photo = stripPhoto(rec.PhotoData)
	row.AI = deref(rec.AIAdvice)
	return row
}
