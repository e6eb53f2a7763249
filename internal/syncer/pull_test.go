package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
)

func TestPullAll_MergesRemoteRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// One record already known locally, still pending.
	require.NoError(t, s.AppendLog(ctx, &model.LogRecord{
		ID: "local-1", RecordType: model.RecordTemperature, Timestamp: now,
		MachineID: strPtr("cf-01"), CurrentTemp: f64Ptr(-21),
	}))

	sheet := &mockSheet{
		fetchMachineLogs: func(ctx context.Context) ([]bridge.Row, error) {
			return []bridge.Row{
				{
					// Same identity as the local record; local wins.
					"id": "local-1", "machineId": "cf-01", "type": "Temperature",
					"value": -5.0, "target": -18.0,
					"isoTimestamp": now.Format(time.RFC3339),
				},
				{
					"id": "remote-t", "machineId": "cf-01", "type": "Temperature",
					"value": -18.2, "target": -18.0, "ai": "Anomaly: rising trend",
					"isoTimestamp": now.Add(-time.Hour).Format(time.RFC3339),
				},
			}, nil
		},
		fetchMeterLogs: func(ctx context.Context) ([]bridge.Row, error) {
			return []bridge.Row{{
				"id": "remote-m", "meterId": "m-03", "value": 5521.0,
				"isoTimestamp": now.Add(-2 * time.Hour).Format(time.RFC3339),
			}}, nil
		},
	}
	o := New(testConfig(), s, sheet)

	logs, err := o.PullAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Newest first.
	assert.Equal(t, "local-1", logs[0].ID)
	assert.Equal(t, "remote-t", logs[1].ID)
	assert.Equal(t, "remote-m", logs[2].ID)

	byID := make(map[string]model.LogRecord)
	for _, rec := range logs {
		byID[rec.ID] = rec
	}

	// The local copy was not overwritten.
	require.NotNil(t, byID["local-1"].CurrentTemp)
	assert.Equal(t, -21.0, *byID["local-1"].CurrentTemp)
	assert.False(t, byID["local-1"].SyncedToSheet)

	// Remote-origin records arrive already acknowledged.
	assert.True(t, byID["remote-t"].SyncedToSheet)
	require.NotNil(t, byID["remote-t"].IsAnomaly)
	assert.True(t, *byID["remote-t"].IsAnomaly)

	assert.Equal(t, model.RecordMeterReading, byID["remote-m"].RecordType)
	require.NotNil(t, byID["remote-m"].Value)
	assert.Equal(t, 5521.0, *byID["remote-m"].Value)

	// Pulling the same rows again changes nothing.
	logs, err = o.PullAll(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestPullAll_SkipsMalformedRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sheet := &mockSheet{
		fetchMachineLogs: func(ctx context.Context) ([]bridge.Row, error) {
			return []bridge.Row{
				// No identity.
				{"machineId": "cf-01", "type": "Temperature", "value": -18.0,
					"isoTimestamp": now.Format(time.RFC3339)},
				// No entity reference.
				{"id": "no-entity", "type": "Temperature", "value": -18.0,
					"isoTimestamp": now.Format(time.RFC3339)},
				// No timestamp.
				{"id": "no-ts", "machineId": "cf-01", "type": "Temperature", "value": -18.0},
				// Temperature with an unparseable reading.
				{"id": "no-value", "machineId": "cf-01", "type": "Temperature",
					"value": "n/a", "isoTimestamp": now.Format(time.RFC3339)},
				// Valid.
				{"id": "good", "machineId": "cf-01", "type": "Temperature", "value": -17.5,
					"target": -18.0, "isoTimestamp": now.Format(time.RFC3339)},
			}, nil
		},
	}
	o := New(testConfig(), s, sheet)

	logs, err := o.PullAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "good", logs[0].ID)
}

func TestPullAll_ResolvesEntitiesByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.ReplaceGenerators(ctx, []model.Generator{
		{ID: "g-1", Name: "Cummins Standby"},
	}))

	sheet := &mockSheet{
		fetchGenLogs: func(ctx context.Context) ([]bridge.Row, error) {
			return []bridge.Row{
				// Matches a configured generator by name, case-insensitively.
				{"id": "by-name", "genName": "cummins standby", "type": "RUN_HOURS",
					"runHours": 120.0, "isoTimestamp": now.Format(time.RFC3339)},
				// Unknown name: the name itself becomes the identifier.
				{"id": "unknown-name", "genName": "Borrowed Genset", "type": "RUN_HOURS",
					"runHours": 3.0, "isoTimestamp": now.Format(time.RFC3339)},
			}, nil
		},
	}
	o := New(testConfig(), s, sheet)

	logs, err := o.PullAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	byID := make(map[string]model.LogRecord)
	for _, rec := range logs {
		byID[rec.ID] = rec
	}
	require.NotNil(t, byID["by-name"].GeneratorID)
	assert.Equal(t, "g-1", *byID["by-name"].GeneratorID)
	require.NotNil(t, byID["unknown-name"].GeneratorID)
	assert.Equal(t, "Borrowed Genset", *byID["unknown-name"].GeneratorID)
}

func TestPullAll_GeneratorServiceRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sheet := &mockSheet{
		fetchGenLogs: func(ctx context.Context) ([]bridge.Row, error) {
			return []bridge.Row{
				{"id": "svc-1", "genId": "KMD", "type": "SERVICE",
					"notes": "Regular Service", "runHours": 450.0, "parts": "Oil filter",
					"isoTimestamp": now.Format(time.RFC3339)},
				// Service row with a blank counter keeps RunHours unset.
				{"id": "svc-2", "genId": "KMD", "type": "SERVICE",
					"notes": "Top-up", "runHours": "",
					"isoTimestamp": now.Format(time.RFC3339)},
				// Run row with an unparseable counter degrades to zero.
				{"id": "run-1", "genId": "KMD", "type": "RUN_HOURS", "runHours": "?",
					"isoTimestamp": now.Format(time.RFC3339)},
			}, nil
		},
	}
	o := New(testConfig(), s, sheet)

	logs, err := o.PullAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	byID := make(map[string]model.LogRecord)
	for _, rec := range logs {
		byID[rec.ID] = rec
	}

	svc1 := byID["svc-1"]
	assert.Equal(t, model.RecordGeneratorService, svc1.RecordType)
	require.NotNil(t, svc1.RunHours)
	assert.Equal(t, 450.0, *svc1.RunHours)
	require.NotNil(t, svc1.ServiceType)
	assert.Equal(t, "Regular Service", *svc1.ServiceType)

	assert.Nil(t, byID["svc-2"].RunHours)

	run1 := byID["run-1"]
	assert.Equal(t, model.RecordGeneratorRun, run1.RecordType)
	require.NotNil(t, run1.RunHours)
	assert.Equal(t, 0.0, *run1.RunHours)
}

func TestPullAll_TwoDevicesConverge(t *testing.T) {
	// Two stores sharing one remote: after each pushes and pulls, both hold
	// the union of the records.
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	deviceA := newTestStoreNamed(t, "deviceA")
	deviceB := newTestStoreNamed(t, "deviceB")

	remote := struct {
		machineRows []bridge.Row
	}{}
	sheet := &mockSheet{
		pushMachineLogs: func(ctx context.Context, rows []bridge.MachineLogRow) error {
			for _, r := range rows {
				remote.machineRows = append(remote.machineRows, bridge.Row{
					"id": r.ID, "machineId": r.MachineID, "type": r.Type,
					"value": r.Value, "target": r.Target,
					"isoTimestamp": r.Timestamp, "recordedBy": r.RecordedBy,
				})
			}
			return nil
		},
		fetchMachineLogs: func(ctx context.Context) ([]bridge.Row, error) {
			return remote.machineRows, nil
		},
	}

	require.NoError(t, deviceA.AppendLog(ctx, &model.LogRecord{
		ID: "from-a", RecordType: model.RecordTemperature, Timestamp: now,
		MachineID: strPtr("cf-01"), CurrentTemp: f64Ptr(-18), SetpointTemp: f64Ptr(-18),
	}))
	require.NoError(t, deviceB.AppendLog(ctx, &model.LogRecord{
		ID: "from-b", RecordType: model.RecordTemperature, Timestamp: now.Add(-time.Minute),
		MachineID: strPtr("cf-01"), CurrentTemp: f64Ptr(-17), SetpointTemp: f64Ptr(-18),
	}))

	orchA := New(testConfig(), deviceA, sheet)
	orchB := New(testConfig(), deviceB, sheet)

	require.True(t, orchA.TrySync(ctx))
	require.True(t, orchB.TrySync(ctx))
	// A pulls again to pick up what B pushed after A's first cycle.
	require.True(t, orchA.TrySync(ctx))

	logsA, err := deviceA.ListLogs(ctx)
	require.NoError(t, err)
	logsB, err := deviceB.ListLogs(ctx)
	require.NoError(t, err)

	require.Len(t, logsA, 2)
	require.Len(t, logsB, 2)
	assert.Equal(t, logsA[0].ID, logsB[0].ID)
	assert.Equal(t, logsA[1].ID, logsB[1].ID)
}
