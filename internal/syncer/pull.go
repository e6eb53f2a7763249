package syncer

import (
	"context"
	"log"
	"strings"

	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
)

// PullAll fetches the remote ledger's full record set per kind, reconstructs
// typed records from the loose rows, and merges the survivors into the Local
// Ledger. A remote record whose identity already exists locally is dropped
// (local wins); malformed rows are skipped individually, never the whole
// pull. Returns the merged ledger newest-first.
func (o *Orchestrator) PullAll(ctx context.Context) ([]model.LogRecord, error) {
	local, err := o.store.ListLogs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(local))
	for _, rec := range local {
		seen[rec.ID] = true
	}

	cfg := o.loadEntityConfig(ctx)

	var incoming []model.LogRecord
	collect := func(recs []model.LogRecord) {
		for _, rec := range recs {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			incoming = append(incoming, rec)
		}
	}

	if rows, err := o.sheet.FetchMachineLogs(ctx); err != nil {
		logPhaseError("machine log pull", err)
	} else {
		collect(parseMachineLogRows(rows, cfg))
	}

	if rows, err := o.sheet.FetchMeterLogs(ctx); err != nil {
		logPhaseError("meter log pull", err)
	} else {
		collect(parseMeterLogRows(rows, cfg))
	}

	if rows, err := o.sheet.FetchGeneratorLogs(ctx); err != nil {
		logPhaseError("generator log pull", err)
	} else {
		collect(parseGeneratorLogRows(rows, cfg))
	}

	if len(incoming) > 0 {
		inserted, err := o.store.MergeRemoteLogs(ctx, incoming)
		if err != nil {
			return nil, err
		}
		log.Printf("Pulled %d remote records, merged %d new", len(incoming), inserted)
	}

	return o.store.ListLogs(ctx)
}

// Remote-origin records are constructed already acknowledged: they came from
// the remote ledger, so there is nothing left to push.

func parseMachineLogRows(rows []bridge.Row, cfg entityConfig) []model.LogRecord {
	var recs []model.LogRecord
	for _, row := range rows {
		id := fieldString(row, "id")
		if id == "" {
			continue
		}
		machineID := resolveEntity(
			fieldString(row, "machineId"),
			fieldString(row, "machineName", "machine"),
			cfg.machineIDByName,
		)
		if machineID == "" {
			continue
		}
		ts, ok := rowTimestamp(row)
		if !ok {
			continue
		}

		rec := model.LogRecord{
			ID:            id,
			Timestamp:     ts,
			MachineID:     &machineID,
			RecordedBy:    fieldString(row, "recordedBy"),
			SyncedToSheet: true,
		}
		if fieldString(row, "type") == "Temperature" {
			cur, curOK := fieldFloat(row, "value")
			set, _ := fieldFloat(row, "target")
			if !curOK {
				continue
			}
			anomaly := strings.Contains(fieldString(row, "ai"), "Anomaly")
			rec.RecordType = model.RecordTemperature
			rec.CurrentTemp = &cur
			rec.SetpointTemp = &set
			rec.Notes = optString(fieldString(row, "notes"))
			rec.IsAnomaly = &anomaly
		} else {
			rec.RecordType = model.RecordMaintenance
			rec.IssueDescription = optString(fieldString(row, "value"))
			if sev := fieldString(row, "target"); sev != "" {
				s := model.Severity(strings.ToUpper(sev))
				rec.Severity = &s
			}
			rec.ActionTaken = optString(fieldString(row, "notes"))
			rec.AISuggestedFix = optString(fieldString(row, "ai"))
		}
		recs = append(recs, rec)
	}
	return recs
}

func parseMeterLogRows(rows []bridge.Row, cfg entityConfig) []model.LogRecord {
	var recs []model.LogRecord
	for _, row := range rows {
		id := fieldString(row, "id")
		if id == "" {
			continue
		}
		meterID := resolveEntity(
			fieldString(row, "meterId"),
			fieldString(row, "meterName"),
			cfg.meterIDByName,
		)
		if meterID == "" {
			continue
		}
		ts, ok := rowTimestamp(row)
		if !ok {
			continue
		}
		value, ok := fieldFloat(row, "value")
		if !ok {
			continue
		}

		recs = append(recs, model.LogRecord{
			ID:            id,
			RecordType:    model.RecordMeterReading,
			Timestamp:     ts,
			MeterID:       &meterID,
			RecordedBy:    fieldString(row, "recordedBy"),
			SyncedToSheet: true,
			Value:         &value,
		})
	}
	return recs
}

func parseGeneratorLogRows(rows []bridge.Row, cfg entityConfig) []model.LogRecord {
	var recs []model.LogRecord
	for _, row := range rows {
		id := fieldString(row, "id")
		if id == "" {
			continue
		}
		genID := resolveEntity(
			fieldString(row, "genId"),
			fieldString(row, "genName"),
			cfg.generatorIDByName,
		)
		if genID == "" {
			continue
		}
		ts, ok := rowTimestamp(row)
		if !ok {
			continue
		}

		rec := model.LogRecord{
			ID:            id,
			Timestamp:     ts,
			GeneratorID:   &genID,
			RecordedBy:    fieldString(row, "recordedBy"),
			SyncedToSheet: true,
		}
		runHours, hasRunHours := fieldFloat(row, "runHours")
		if fieldString(row, "type") == "RUN_HOURS" {
			rec.RecordType = model.RecordGeneratorRun
			// A run record without a parseable counter degrades to zero
			// rather than being dropped; the entry itself is still news.
			rec.RunHours = &runHours
			rec.Notes = optString(fieldString(row, "notes"))
		} else {
			rec.RecordType = model.RecordGeneratorService
			rec.ServiceType = optString(fieldString(row, "notes"))
			rec.PartsReplaced = optString(fieldString(row, "parts"))
			if hasRunHours {
				rec.RunHours = &runHours
			}
			rec.AIAdvice = optString(fieldString(row, "ai"))
		}
		recs = append(recs, rec)
	}
	return recs
}
