package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"facility-logbook-backend/internal/model"
)

// Store defines the interface for all database operations. The log-record
// subset is the Local Ledger of the sync design; the entity and user subsets
// are the cached configuration replaced wholesale on each config sync.
type Store interface {
	DB() *gorm.DB

	// Local Ledger.
	AppendLog(ctx context.Context, rec *model.LogRecord) error
	ListLogs(ctx context.Context) ([]model.LogRecord, error)
	ListPendingLogs(ctx context.Context) ([]model.LogRecord, error)
	MarkSynced(ctx context.Context, ids []string) error
	DeleteLog(ctx context.Context, id string) error
	ResetAllSyncFlags(ctx context.Context) error
	MergeRemoteLogs(ctx context.Context, recs []model.LogRecord) (int, error)

	// Entity configuration cache.
	Machines(ctx context.Context) ([]model.Machine, error)
	Meters(ctx context.Context) ([]model.Meter, error)
	Generators(ctx context.Context) ([]model.Generator, error)
	ReplaceMachines(ctx context.Context, machines []model.Machine) error
	ReplaceMeters(ctx context.Context, meters []model.Meter) error
	ReplaceGenerators(ctx context.Context, gens []model.Generator) error

	// Users.
	Users(ctx context.Context) ([]model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UpsertUser(ctx context.Context, u model.User) error
	DeleteUser(ctx context.Context, username string) error
	ReplaceUsers(ctx context.Context, users []model.User) error

	// Shared settings distributed through the bridge.
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// AppendLog inserts a freshly created record. Identity is immutable, so a
// duplicate insert is an error surfaced to the caller rather than an upsert.
func (s *gormStore) AppendLog(ctx context.Context, rec *model.LogRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to append record %s: %w", rec.ID, err)
	}
	return nil
}

// ListLogs returns every record, newest first by timestamp.
func (s *gormStore) ListLogs(ctx context.Context) ([]model.LogRecord, error) {
	var recs []model.LogRecord
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC, created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return recs, nil
}

// ListPendingLogs returns the not-yet-acknowledged subset, oldest first so a
// retried push replays in creation order.
func (s *gormStore) ListPendingLogs(ctx context.Context) ([]model.LogRecord, error) {
	var recs []model.LogRecord
	if err := s.db.WithContext(ctx).
		Where("synced_to_sheet = ?", false).
		Order("timestamp ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending records: %w", err)
	}
	return recs, nil
}

// MarkSynced acknowledges the given identities. Unmatched ids are a no-op,
// and re-marking an already synced record is idempotent.
func (s *gormStore) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Model(&model.LogRecord{}).
		Where("id IN ?", ids).
		Update("synced_to_sheet", true).Error; err != nil {
		return fmt.Errorf("failed to mark %d records synced: %w", len(ids), err)
	}
	return nil
}

// DeleteLog removes the record with the given identity; missing ids are a
// no-op.
func (s *gormStore) DeleteLog(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).
		Delete(&model.LogRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

// ResetAllSyncFlags clears every acknowledgment to force a full re-push.
func (s *gormStore) ResetAllSyncFlags(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Model(&model.LogRecord{}).
		Where("synced_to_sheet = ?", true).
		Update("synced_to_sheet", false).Error; err != nil {
		return fmt.Errorf("failed to reset sync flags: %w", err)
	}
	return nil
}

// MergeRemoteLogs inserts pulled records, deduplicating by identity: a record
// whose id already exists locally is dropped, never overwriting local state.
// Returns the number of records actually inserted.
func (s *gormStore) MergeRemoteLogs(ctx context.Context, recs []model.LogRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&recs)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to merge %d remote records: %w", len(recs), res.Error)
	}
	return int(res.RowsAffected), nil
}

// --- Entity configuration ---

// Machines returns the cached machine list, falling back to the built-in
// defaults when the cache is empty.
func (s *gormStore) Machines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("id").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	if len(machines) == 0 {
		return model.DefaultMachines(), nil
	}
	return machines, nil
}

func (s *gormStore) Meters(ctx context.Context) ([]model.Meter, error) {
	var meters []model.Meter
	if err := s.db.WithContext(ctx).Order("id").Find(&meters).Error; err != nil {
		return nil, fmt.Errorf("failed to list meters: %w", err)
	}
	if len(meters) == 0 {
		return model.DefaultMeters(), nil
	}
	return meters, nil
}

func (s *gormStore) Generators(ctx context.Context) ([]model.Generator, error) {
	var gens []model.Generator
	if err := s.db.WithContext(ctx).Order("id").Find(&gens).Error; err != nil {
		return nil, fmt.Errorf("failed to list generators: %w", err)
	}
	if len(gens) == 0 {
		return model.DefaultGenerators(), nil
	}
	return gens, nil
}

// ReplaceMachines swaps the whole cached set. An empty incoming set is
// rejected by the syncer before it gets here, so a wipe is always deliberate.
func (s *gormStore) ReplaceMachines(ctx context.Context, machines []model.Machine) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Machine{}).Error; err != nil {
			return fmt.Errorf("failed to clear machines: %w", err)
		}
		if len(machines) == 0 {
			return nil
		}
		if err := tx.Create(&machines).Error; err != nil {
			return fmt.Errorf("failed to store %d machines: %w", len(machines), err)
		}
		return nil
	})
}

func (s *gormStore) ReplaceMeters(ctx context.Context, meters []model.Meter) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Meter{}).Error; err != nil {
			return fmt.Errorf("failed to clear meters: %w", err)
		}
		if len(meters) == 0 {
			return nil
		}
		if err := tx.Create(&meters).Error; err != nil {
			return fmt.Errorf("failed to store %d meters: %w", len(meters), err)
		}
		return nil
	})
}

func (s *gormStore) ReplaceGenerators(ctx context.Context, gens []model.Generator) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Generator{}).Error; err != nil {
			return fmt.Errorf("failed to clear generators: %w", err)
		}
		if len(gens) == 0 {
			return nil
		}
		if err := tx.Create(&gens).Error; err != nil {
			return fmt.Errorf("failed to store %d generators: %w", len(gens), err)
		}
		return nil
	})
}

// --- Users ---

// Users returns all accounts, seeding the emergency admin on first use.
func (s *gormStore) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		admin := model.DefaultAdmin()
		if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
			return nil, fmt.Errorf("failed to seed default admin: %w", err)
		}
		users = append(users, admin)
	}
	return users, nil
}

// UserByUsername looks an account up case-insensitively. Returns nil when no
// such account exists.
func (s *gormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (s *gormStore) UpsertUser(ctx context.Context, u model.User) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password", "name", "role", "updated_at"}),
	}).Create(&u).Error; err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.Username, err)
	}
	return nil
}

func (s *gormStore) DeleteUser(ctx context.Context, username string) error {
	if username == model.DefaultAdminUsername {
		return fmt.Errorf("the emergency admin account cannot be deleted")
	}
	if err := s.db.WithContext(ctx).
		Delete(&model.User{}, "username = ?", username).Error; err != nil {
		return fmt.Errorf("failed to delete user %s: %w", username, err)
	}
	return nil
}

// ReplaceUsers swaps the whole account set, always re-seeding the emergency
// admin so a bad cloud sheet cannot lock everyone out.
func (s *gormStore) ReplaceUsers(ctx context.Context, users []model.User) error {
	hasAdmin := false
	for _, u := range users {
		if u.Username == model.DefaultAdminUsername {
			hasAdmin = true
			break
		}
	}
	if !hasAdmin {
		users = append(users, model.DefaultAdmin())
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.User{}).Error; err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("failed to store %d users: %w", len(users), err)
		}
		return nil
	})
}

// --- Settings ---

// Setting returns the stored value, or "" when the key is absent.
func (s *gormStore) Setting(ctx context.Context, key string) (string, error) {
	var setting model.Setting
	err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, nil
}

func (s *gormStore) SetSetting(ctx context.Context, key, value string) error {
	setting := model.Setting{Key: key, Value: value}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}
