package sqlite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// databaseFile is the SQLite database file name inside DataDir.
const databaseFile = "workbench.db"

// driverName is the database/sql driver registered by modernc.org/sqlite.
const driverName = "sqlite"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on a SQLite database file in DataDir.
// Foreign keys are enforced by SQLite except where the schema marks a
// reference as write-checked.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sqlx.DB
	logger   *zap.Logger

	craftTypes      *table[types.CraftType]
	items           *table[types.Item]
	recipes         *table[types.Recipe]
	itemsWithAmount *table[types.ItemWithAmount]
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for operation and migration output.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.craftTypes = newTable(b, craftTypeEntity)
	b.items = newTable(b, itemEntity)
	b.recipes = newTable(b, recipeEntity)
	b.itemsWithAmount = newTable(b, itemWithAmountEntity)
	return b
}

// CraftTypes returns the CraftTypes table.
func (b *Backend) CraftTypes() types.Table[types.CraftType] { return b.craftTypes }

// Items returns the Items table.
func (b *Backend) Items() types.Table[types.Item] { return b.items }

// Recipes returns the Recipes table.
func (b *Backend) Recipes() types.Table[types.Recipe] { return b.recipes }

// ItemsWithAmount returns the ItemWithAmount table.
func (b *Backend) ItemsWithAmount() types.Table[types.ItemWithAmount] { return b.itemsWithAmount }

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, opens the database and applies any
// pending migrations. Returns ErrAlreadyAttached if already attached and
// ErrStorageUnavailable if the database cannot be reached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %w", types.ErrStorageUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, databaseFile)
	db, err := sqlx.Open(driverName, dataSourceName(dbPath, config.SQLite))
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", types.ErrStorageUnavailable, dbPath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: ping %s: %w", types.ErrStorageUnavailable, dbPath, err)
	}

	if err := migrate(db.DB, b.logger); err != nil {
		db.Close()
		return classify("migrate", err)
	}

	b.db = db
	b.config = config
	b.attached = true

	b.logger.Debug("attached",
		zap.String("path", dbPath),
		zap.String("journal_mode", config.SQLite.GetJournalMode()),
	)
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrStoreDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.logger.Debug("detached")
	return nil
}

// SchemaVersion returns the version of the last applied migration.
func (b *Backend) SchemaVersion() (int64, error) {
	db, err := b.handle()
	if err != nil {
		return 0, err
	}
	v, err := schemaVersion(db.DB)
	if err != nil {
		return 0, classify("schema version", err)
	}
	return v, nil
}

// handle returns the open database or ErrStoreDetached. The lock is held
// only while reading the handle; a lazy sequence may outlive it.
func (b *Backend) handle() (*sqlx.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.db, nil
}

// dataSourceName builds a modernc.org/sqlite DSN. The pragmas are applied to
// every pooled connection, which keeps foreign key enforcement on for all of
// them.
func dataSourceName(path string, c types.SQLiteConfig) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.GetBusyTimeoutMS()))
	q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.GetJournalMode()))
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}
