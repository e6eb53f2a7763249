package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"facility-logbook-backend/config"
	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
	"facility-logbook-backend/internal/store"
	"facility-logbook-backend/internal/syncer"
)

// fakeSheet is an in-memory stand-in for the spreadsheet bridge endpoint. It
// accepts the {action, ...payload} protocol and keeps pushed rows so they can
// be served back on the matching GET action.
type fakeSheet struct {
	mu          sync.Mutex
	machineRows []bridge.Row
	meterRows   []bridge.Row
	genRows     []bridge.Row
	users       []bridge.Row
	machines    []bridge.Row
	config      map[string]string
}

func (f *fakeSheet) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))

		f.mu.Lock()
		defer f.mu.Unlock()

		storeRows := func(dst *[]bridge.Row) {
			data, _ := body["data"].([]any)
			for _, item := range data {
				if row, ok := item.(map[string]any); ok {
					*dst = append(*dst, bridge.Row(row))
				}
			}
		}

		var resp any
		switch body["action"] {
		case "SYNC_LOGS":
			storeRows(&f.machineRows)
			resp = map[string]any{"success": true}
		case "SYNC_METER_LOGS":
			storeRows(&f.meterRows)
			resp = map[string]any{"success": true}
		case "SYNC_GEN_LOGS":
			storeRows(&f.genRows)
			resp = map[string]any{"success": true}
		case "GET_LOGS":
			resp = map[string]any{"logs": f.machineRows}
		case "GET_METER_LOGS":
			resp = map[string]any{"logs": f.meterRows}
		case "GET_GEN_LOGS":
			resp = map[string]any{"logs": f.genRows}
		case "GET_MACHINES":
			resp = map[string]any{"machines": f.machines}
		case "GET_METERS":
			resp = map[string]any{"meters": []bridge.Row{}}
		case "GET_GENERATORS":
			resp = map[string]any{"generators": []bridge.Row{}}
		case "GET_USERS":
			resp = map[string]any{"users": f.users}
		case "GET_CONFIG":
			resp = map[string]any{"config": f.config}
		default:
			resp = map[string]any{"error": "unknown action"}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func newIntegrationStore(t *testing.T, name string) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&model.LogRecord{}, &model.Machine{}, &model.Meter{},
		&model.Generator{}, &model.User{}, &model.Setting{},
	)
	require.NoError(t, err)
	return store.NewGormStore(db)
}

// TestLedgerSyncLifecycle runs a full cycle through the real bridge client
// against a fake sheet endpoint: push pending records, acknowledge them, pull
// the remote set back, and absorb the cloud configuration.
func TestLedgerSyncLifecycle(t *testing.T) {
	sheet := &fakeSheet{
		machines: []bridge.Row{
			{"id": "cf-01", "name": "Chest Freezer 01", "type": "FREEZER", "defaultSetpoint": -18.0},
			{"id": "cf-02", "name": "Chest Freezer 02", "type": "FREEZER", "defaultSetpoint": -20.0},
		},
		users: []bridge.Row{
			{"username": "thiri", "password": "pw", "name": "Thiri", "role": "USER"},
		},
		config: map[string]string{"ADVISOR_API_KEY": "sk-cloud-1234567890"},
	}
	server := httptest.NewServer(sheet.handler(t))
	defer server.Close()

	cfg := &config.Config{
		Bridge: config.BridgeConfig{
			URL:         server.URL,
			Timeout:     5 * time.Second,
			MaxPullRows: 500,
		},
		Sync: config.SyncConfig{Enabled: true, Interval: time.Hour},
	}

	appStore := newIntegrationStore(t, "primary")
	client := bridge.New(&cfg.Bridge)
	orch := syncer.New(cfg, appStore, client)
	ctx := context.Background()

	// A reading logged while offline.
	machineID := "cf-01"
	temp := -17.8
	set := -18.0
	require.NoError(t, appStore.AppendLog(ctx, &model.LogRecord{
		ID:           "offline-1",
		RecordType:   model.RecordTemperature,
		Timestamp:    time.Now().UTC().Truncate(time.Second),
		MachineID:    &machineID,
		RecordedBy:   "Thiri",
		CurrentTemp:  &temp,
		SetpointTemp: &set,
	}))

	// A record from another device, already on the sheet.
	genID := "KMD"
	sheet.genRows = []bridge.Row{{
		"id": "other-device-1", "genId": genID, "type": "RUN_HOURS",
		"runHours": 412.0, "recordedBy": "Ko",
		"timestamp": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	}}

	require.True(t, orch.TrySync(ctx))

	// The pending record was pushed and acknowledged.
	pending, err := appStore.ListPendingLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	sheet.mu.Lock()
	require.Len(t, sheet.machineRows, 1)
	assert.Equal(t, "offline-1", sheet.machineRows[0]["id"])
	assert.Equal(t, "Chest Freezer 01", sheet.machineRows[0]["machine"])
	sheet.mu.Unlock()

	// The other device's record was pulled in, already acknowledged.
	logs, err := appStore.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	byID := map[string]model.LogRecord{}
	for _, rec := range logs {
		byID[rec.ID] = rec
	}
	assert.True(t, byID["other-device-1"].SyncedToSheet)
	require.NotNil(t, byID["other-device-1"].RunHours)
	assert.Equal(t, 412.0, *byID["other-device-1"].RunHours)

	// Cloud configuration replaced the machine cache and delivered the key.
	machines, err := appStore.Machines(ctx)
	require.NoError(t, err)
	assert.Len(t, machines, 2)

	key, err := appStore.Setting(ctx, syncer.AdvisorKeySetting)
	require.NoError(t, err)
	assert.Equal(t, "sk-cloud-1234567890", key)

	// Cloud users replaced the local set, emergency admin re-seeded.
	users, err := appStore.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// A second cycle is a no-op: nothing pending, nothing new to merge.
	require.True(t, orch.TrySync(ctx))
	logs, err = appStore.ListLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	sheet.mu.Lock()
	assert.Len(t, sheet.machineRows, 1)
	sheet.mu.Unlock()
}

// TestRoundTripPreservesRecord pushes a record through the wire format and
// pulls it back on a second device, checking the fields survive.
func TestRoundTripPreservesRecord(t *testing.T) {
	sheet := &fakeSheet{config: map[string]string{}}
	server := httptest.NewServer(sheet.handler(t))
	defer server.Close()

	cfg := &config.Config{
		Bridge: config.BridgeConfig{URL: server.URL, Timeout: 5 * time.Second, MaxPullRows: 500},
		Sync:   config.SyncConfig{Enabled: true, Interval: time.Hour},
	}
	client := bridge.New(&cfg.Bridge)

	deviceA := newIntegrationStore(t, "deviceA")
	deviceB := newIntegrationStore(t, "deviceB")
	orchA := syncer.New(cfg, deviceA, client)
	orchB := syncer.New(cfg, deviceB, client)
	ctx := context.Background()

	meterID := "m-03"
	value := 5521.5
	ts := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, deviceA.AppendLog(ctx, &model.LogRecord{
		ID:         "meter-rt-1",
		RecordType: model.RecordMeterReading,
		Timestamp:  ts,
		MeterID:    &meterID,
		RecordedBy: "Aung",
		Value:      &value,
	}))

	require.True(t, orchA.TrySync(ctx))
	require.True(t, orchB.TrySync(ctx))

	logs, err := deviceB.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	got := logs[0]
	assert.Equal(t, "meter-rt-1", got.ID)
	assert.Equal(t, model.RecordMeterReading, got.RecordType)
	assert.True(t, got.Timestamp.Equal(ts))
	require.NotNil(t, got.MeterID)
	assert.Equal(t, "m-03", *got.MeterID)
	require.NotNil(t, got.Value)
	assert.Equal(t, 5521.5, *got.Value)
	assert.Equal(t, "Aung", got.RecordedBy)
	assert.True(t, got.SyncedToSheet)
}
