package syncer

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"facility-logbook-backend/config"
	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
	"facility-logbook-backend/internal/store"
)

// SheetAPI is the subset of the bridge client the orchestrator needs.
type SheetAPI interface {
	PushMachineLogs(ctx context.Context, rows []bridge.MachineLogRow) error
	PushMeterLogs(ctx context.Context, rows []bridge.MeterLogRow) error
	PushGeneratorLogs(ctx context.Context, rows []bridge.GeneratorLogRow) error
	FetchMachineLogs(ctx context.Context) ([]bridge.Row, error)
	FetchMeterLogs(ctx context.Context) ([]bridge.Row, error)
	FetchGeneratorLogs(ctx context.Context) ([]bridge.Row, error)
	FetchMachines(ctx context.Context) ([]bridge.Row, error)
	FetchMeters(ctx context.Context) ([]bridge.Row, error)
	FetchGenerators(ctx context.Context) ([]bridge.Row, error)
	FetchUsers(ctx context.Context) ([]bridge.Row, error)
	FetchConfig(ctx context.Context) (map[string]string, error)
}

// Orchestrator reconciles the Local Ledger with the remote ledger. At most
// one cycle runs at a time per device: the in-flight guard is a capacity-1
// semaphore, and a trigger received while a cycle is running is a no-op.
type Orchestrator struct {
	cfg      *config.Config
	store    store.Store
	sheet    SheetAPI
	inflight chan struct{}

	mu       sync.Mutex
	lastSync time.Time
	lastErr  string
}

// New creates an orchestrator with its dependencies injected explicitly.
func New(cfg *config.Config, s store.Store, sheet SheetAPI) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		store:    s,
		sheet:    sheet,
		inflight: make(chan struct{}, 1),
	}
}

// Run starts the background sync loop: one cycle at startup, then one per
// configured interval, until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	if !o.cfg.Sync.Enabled {
		log.Println("Background sync is disabled. Not starting.")
		return
	}
	log.Println("Starting sync service...")

	o.TrySync(ctx)

	timer := time.NewTimer(o.cfg.Sync.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync service shutting down.")
			return
		case <-timer.C:
			o.TrySync(ctx)
			timer.Reset(o.cfg.Sync.Interval)
		}
	}
}

// TrySync runs one full cycle synchronously. Returns false without doing
// anything when a cycle is already in flight.
func (o *Orchestrator) TrySync(ctx context.Context) bool {
	select {
	case o.inflight <- struct{}{}:
	default:
		return false
	}
	defer func() { <-o.inflight }()

	o.cycle(ctx)
	return true
}

// TriggerAsync starts a cycle in the background if none is running. The
// cycle is detached from any request context: an in-flight sync is never
// cancelled, it only stalls on a hung remote call.
func (o *Orchestrator) TriggerAsync() bool {
	select {
	case o.inflight <- struct{}{}:
	default:
		return false
	}
	go func() {
		defer func() { <-o.inflight }()
		o.cycle(context.Background())
	}()
	return true
}

// Status reports the outcome of the last cycle and whether one is running.
func (o *Orchestrator) Status() (lastSync time.Time, lastErr string, inFlight bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSync, o.lastErr, len(o.inflight) > 0
}

// cycle is one push -> config refresh -> user refresh -> pull pass. Every
// phase is best-effort: a failure is logged and the cycle proceeds, leaving
// affected records pending for the next cycle.
func (o *Orchestrator) cycle(ctx context.Context) {
	log.Println("Executing sync cycle...")
	var phaseErrs []string

	syncedIDs, err := o.PushPending(ctx)
	if err != nil {
		logPhaseError("push", err)
		phaseErrs = append(phaseErrs, err.Error())
	}
	if len(syncedIDs) > 0 {
		if err := o.store.MarkSynced(ctx, syncedIDs); err != nil {
			log.Printf("Error marking %d records synced: %v", len(syncedIDs), err)
			phaseErrs = append(phaseErrs, err.Error())
		} else {
			log.Printf("Acknowledged %d pushed records", len(syncedIDs))
		}
	}

	if err := o.SyncConfigs(ctx); err != nil {
		logPhaseError("config refresh", err)
		phaseErrs = append(phaseErrs, err.Error())
	}

	if err := o.SyncUsers(ctx); err != nil {
		logPhaseError("user refresh", err)
		phaseErrs = append(phaseErrs, err.Error())
	}

	if _, err := o.PullAll(ctx); err != nil {
		logPhaseError("pull", err)
		phaseErrs = append(phaseErrs, err.Error())
	}

	o.mu.Lock()
	o.lastSync = time.Now().UTC()
	o.lastErr = strings.Join(phaseErrs, "; ")
	o.mu.Unlock()

	log.Println("Sync cycle finished.")
}

func logPhaseError(phase string, err error) {
	if errors.Is(err, bridge.ErrNoURL) {
		log.Printf("Sync %s skipped: %v", phase, err)
		return
	}
	log.Printf("Sync %s error: %v", phase, err)
}

// entityConfig is a point-in-time snapshot of the cached configuration used
// for name resolution in both directions.
type entityConfig struct {
	machines []model.Machine
	meters   []model.Meter
	gens     []model.Generator
}

func (o *Orchestrator) loadEntityConfig(ctx context.Context) entityConfig {
	var cfg entityConfig
	var err error
	if cfg.machines, err = o.store.Machines(ctx); err != nil {
		log.Printf("Warning: could not load machines for name resolution: %v", err)
	}
	if cfg.meters, err = o.store.Meters(ctx); err != nil {
		log.Printf("Warning: could not load meters for name resolution: %v", err)
	}
	if cfg.gens, err = o.store.Generators(ctx); err != nil {
		log.Printf("Warning: could not load generators for name resolution: %v", err)
	}
	return cfg
}

// Outbound: identifier -> display name, degrading to the raw identifier.

func (c entityConfig) machineName(id string) string {
	for _, m := range c.machines {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

func (c entityConfig) meterName(id string) string {
	for _, m := range c.meters {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

func (c entityConfig) generatorName(id string) string {
	for _, g := range c.gens {
		if g.ID == id {
			return g.Name
		}
	}
	return id
}

// Inbound: explicit identifier if present, else case-insensitive name lookup,
// else the name string itself. Returns "" only when nothing was provided.

func resolveEntity(explicitID, name string, lookup func(string) string) string {
	if explicitID != "" {
		return explicitID
	}
	if name == "" {
		return ""
	}
	if id := lookup(name); id != "" {
		return id
	}
	return name
}

func (c entityConfig) machineIDByName(name string) string {
	for _, m := range c.machines {
		if strings.EqualFold(m.Name, name) {
			return m.ID
		}
	}
	return ""
}

func (c entityConfig) meterIDByName(name string) string {
	for _, m := range c.meters {
		if strings.EqualFold(m.Name, name) {
			return m.ID
		}
	}
	return ""
}

func (c entityConfig) generatorIDByName(name string) string {
	for _, g := range c.gens {
		if strings.EqualFold(g.Name, name) {
			return g.ID
		}
	}
	return ""
}
