package syncer

import (
	"context"
	"log"
	"strings"

	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
)

// AdvisorKeySetting is the shared-config key under which the advisor API key
// is distributed to every device through the bridge.
const AdvisorKeySetting = "ADVISOR_API_KEY"

// SyncConfigs refreshes the cached entity configuration and the shared
// advisor key from the bridge. Each sub-fetch is independent; an empty or
// failed feed never clobbers the cached set.
func (o *Orchestrator) SyncConfigs(ctx context.Context) error {
	if cfgMap, err := o.sheet.FetchConfig(ctx); err != nil {
		logPhaseError("shared config fetch", err)
	} else if key := cfgMap[AdvisorKeySetting]; len(key) > 10 {
		if err := o.store.SetSetting(ctx, AdvisorKeySetting, key); err != nil {
			log.Printf("Error storing synced advisor key: %v", err)
		} else {
			log.Println("Advisor API key synced from cloud.")
		}
	}

	if rows, err := o.sheet.FetchMachines(ctx); err != nil {
		logPhaseError("machine config fetch", err)
	} else if machines := coerceMachines(rows); len(machines) > 0 {
		if err := o.store.ReplaceMachines(ctx, machines); err != nil {
			log.Printf("Error replacing machine config: %v", err)
		}
	}

	if rows, err := o.sheet.FetchMeters(ctx); err != nil {
		logPhaseError("meter config fetch", err)
	} else if meters := coerceMeters(rows); len(meters) > 0 {
		if err := o.store.ReplaceMeters(ctx, meters); err != nil {
			log.Printf("Error replacing meter config: %v", err)
		}
	}

	if rows, err := o.sheet.FetchGenerators(ctx); err != nil {
		logPhaseError("generator config fetch", err)
	} else if gens := coerceGenerators(rows); len(gens) > 0 {
		if err := o.store.ReplaceGenerators(ctx, gens); err != nil {
			log.Printf("Error replacing generator config: %v", err)
		}
	}

	return nil
}

// SyncUsers replaces the local account set from the cloud user sheet. The
// emergency admin is re-seeded by the store on replacement.
func (o *Orchestrator) SyncUsers(ctx context.Context) error {
	rows, err := o.sheet.FetchUsers(ctx)
	if err != nil {
		return err
	}
	users := coerceUsers(rows)
	if len(users) == 0 {
		return nil
	}
	if err := o.store.ReplaceUsers(ctx, users); err != nil {
		return err
	}
	log.Printf("Users synced from cloud: %d", len(users))
	return nil
}

func coerceMachines(rows []bridge.Row) []model.Machine {
	var machines []model.Machine
	for _, row := range rows {
		id := fieldString(row, "id")
		if id == "" {
			continue
		}
		mtype := model.MachineType(strings.ToUpper(fieldString(row, "type")))
		if mtype != model.MachineChiller {
			mtype = model.MachineFreezer
		}
		setpoint, _ := fieldFloat(row, "defaultSetpoint", "setpoint")
		machines = append(machines, model.Machine{
			ID:              id,
			Name:            fieldString(row, "name"),
			Type:            mtype,
			DefaultSetpoint: setpoint,
		})
	}
	return machines
}

func coerceMeters(rows []bridge.Row) []model.Meter {
	var meters []model.Meter
	for _, row := range rows {
		id := fieldString(row, "id")
		if id == "" {
			continue
		}
		meters = append(meters, model.Meter{
			ID:   id,
			Name: fieldString(row, "name"),
		})
	}
	return meters
}

// Generator sheets are maintained by hand, so the column headers wander; the
// loose field lookup absorbs "Air Filter" vs "airFilter" vs "AirFilter".
func coerceGenerators(rows []bridge.Row) []model.Generator {
	var gens []model.Generator
	for _, row := range rows {
		id := fieldString(row, "id", "name")
		if id == "" {
			continue
		}
		name := fieldString(row, "name")
		if name == "" {
			name = id
		}
		gens = append(gens, model.Generator{
			ID:             id,
			Name:           name,
			Model:          fieldString(row, "model", "make"),
			AirFilter:      fieldString(row, "airFilter"),
			OilFilter:      fieldString(row, "oilFilter"),
			FuelFilter:     fieldString(row, "fuelFilter"),
			FanBelt:        fieldString(row, "fanBelt"),
			WaterSeparator: fieldString(row, "waterSeparator", "fuelWaterSeparator"),
		})
	}
	return gens
}

func coerceUsers(rows []bridge.Row) []model.User {
	var users []model.User
	for _, row := range rows {
		username := fieldString(row, "username")
		if username == "" {
			continue
		}
		role := model.UserRole(strings.ToUpper(fieldString(row, "role")))
		if role != model.RoleAdmin {
			role = model.RoleUser
		}
		users = append(users, model.User{
			Username: username,
			Password: fieldString(row, "password"),
			Name:     fieldString(row, "name"),
			Role:     role,
		})
	}
	return users
}
