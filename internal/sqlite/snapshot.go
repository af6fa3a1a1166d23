package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// manifestFile describes a snapshot directory.
const manifestFile = "manifest.json"

// Manifest is written next to the JSONL files of an export.
type Manifest struct {
	SnapshotID    string         `json:"snapshot_id"`
	CreatedAt     time.Time      `json:"created_at"`
	SchemaVersion int64          `json:"schema_version"`
	Counts        map[string]int `json:"counts"`
}

// ImportReport counts what Import loaded and skipped, per table.
type ImportReport struct {
	SnapshotID string         `json:"snapshot_id,omitempty"`
	Loaded     map[string]int `json:"loaded"`
	Skipped    map[string]int `json:"skipped"`
}

// Export writes every table to <dir>/<Table>.jsonl in Id order, followed by
// manifest.json. All tables are read in one transaction.
func (b *Backend) Export(ctx context.Context, dir string) (_ *Manifest, err error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Export")
	defer func() { endSpan(span, err) }()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}

	records := make(map[string][]json.RawMessage, len(schema))
	err = withReadTx(ctx, db, func(tx *sqlx.Tx) error {
		var err error
		if records[types.TableCraftTypes], err = exportRecords(ctx, tx, b.craftTypes); err != nil {
			return err
		}
		if records[types.TableItems], err = exportRecords(ctx, tx, b.items); err != nil {
			return err
		}
		if records[types.TableRecipes], err = exportRecords(ctx, tx, b.recipes); err != nil {
			return err
		}
		records[types.TableItemWithAmount], err = exportRecords(ctx, tx, b.itemsWithAmount)
		return err
	})
	if err != nil {
		return nil, classify("export", err)
	}

	manifest := &Manifest{
		SnapshotID: uuid.Must(uuid.NewV7()).String(),
		CreatedAt:  time.Now().UTC(),
		Counts:     make(map[string]int, len(schema)),
	}
	for _, def := range schema {
		if err := writeJSONL(jsonlPath(dir, def.name), records[def.name]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", def.name, err)
		}
		manifest.Counts[def.name] = len(records[def.name])
	}

	if manifest.SchemaVersion, err = b.SchemaVersion(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	err = writeFileAtomic(filepath.Join(dir, manifestFile), func(w *bufio.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	b.logger.Info("exported snapshot",
		zap.String("snapshot_id", manifest.SnapshotID),
		zap.String("dir", dir),
		zap.Any("counts", manifest.Counts),
	)
	return manifest, nil
}

// Import loads <dir>/<Table>.jsonl files in dependency order inside one
// transaction. Records keep their Ids. Blank and malformed lines, records
// without an Id and records that violate a constraint (including an Id that
// is already taken) are skipped and counted. References to recipes that were
// already gone when the snapshot was taken are restored as they were, and
// their ids are never assigned to a new recipe.
func (b *Backend) Import(ctx context.Context, dir string) (_ *ImportReport, err error) {
	ctx, span := tracer.Start(ctx, "Snapshot.Import")
	defer func() { endSpan(span, err) }()

	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		Loaded:  make(map[string]int, len(schema)),
		Skipped: make(map[string]int, len(schema)),
	}
	for _, def := range schema {
		report.Loaded[def.name] = 0
		report.Skipped[def.name] = 0
	}
	if m, err := readManifest(dir); err != nil {
		b.logger.Warn("ignoring unreadable manifest", zap.String("dir", dir), zap.Error(err))
	} else if m != nil {
		report.SnapshotID = m.SnapshotID
	}

	err = withTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := importRecords(ctx, tx, b.craftTypes, dir, report, b.logger); err != nil {
			return err
		}
		if err := importRecords(ctx, tx, b.items, dir, report, b.logger); err != nil {
			return err
		}
		if err := importRecords(ctx, tx, b.recipes, dir, report, b.logger); err != nil {
			return err
		}
		if err := importRecords(ctx, tx, b.itemsWithAmount, dir, report, b.logger); err != nil {
			return err
		}
		return reserveDanglingIDs(ctx, tx)
	})
	if err != nil {
		return nil, classify("import", err)
	}

	b.logger.Info("imported snapshot",
		zap.String("snapshot_id", report.SnapshotID),
		zap.String("dir", dir),
		zap.Any("loaded", report.Loaded),
		zap.Any("skipped", report.Skipped),
	)
	return report, nil
}

// reserveDanglingIDs raises the AUTOINCREMENT counter of every table that a
// write-checked reference points at to the highest referenced id. A restored
// reference to a deleted row then never resolves to a row created later.
func reserveDanglingIDs(ctx context.Context, tx *sqlx.Tx) error {
	for _, def := range schema {
		for _, fk := range def.foreignKeys {
			if !fk.writeChecked {
				continue
			}
			var top sql.NullInt64
			query := fmt.Sprintf("SELECT MAX(%s) FROM %s", fk.column, def.name)
			if err := tx.GetContext(ctx, &top, query); err != nil {
				return fmt.Errorf("reading highest %s.%s: %w", def.name, fk.column, err)
			}
			if !top.Valid {
				continue
			}
			if err := reserveID(ctx, tx, fk.refTable, top.Int64); err != nil {
				return err
			}
		}
	}
	return nil
}

// reserveID makes sure the next id assigned in table is greater than id.
func reserveID(ctx context.Context, tx *sqlx.Tx, table string, id int64) error {
	var rows int
	if err := tx.GetContext(ctx, &rows, "SELECT COUNT(*) FROM sqlite_sequence WHERE name = ?", table); err != nil {
		return fmt.Errorf("reading id sequence of %s: %w", table, err)
	}
	query := "UPDATE sqlite_sequence SET seq = ? WHERE name = ? AND seq < ?"
	args := []any{id, table, id}
	if rows == 0 {
		query = "INSERT INTO sqlite_sequence (seq, name) VALUES (?, ?)"
		args = args[:2]
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reserving %s id %d: %w", table, id, err)
	}
	return nil
}

func exportRecords[T types.Entity](ctx context.Context, tx *sqlx.Tx, t *table[T]) ([]json.RawMessage, error) {
	recs, err := t.all(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.Name(), err)
	}
	out := make([]json.RawMessage, 0, len(recs))
	for i := range recs {
		data, err := json.Marshal(&recs[i])
		if err != nil {
			return nil, fmt.Errorf("marshaling %s record: %w", t.Name(), err)
		}
		out = append(out, data)
	}
	return out, nil
}

func importRecords[T types.Entity](ctx context.Context, tx *sqlx.Tx, t *table[T], dir string, report *ImportReport, logger *zap.Logger) error {
	raws, skipped, err := readJSONL(jsonlPath(dir, t.Name()))
	if err != nil {
		return err
	}
	report.Skipped[t.Name()] += skipped

	for _, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			report.Skipped[t.Name()]++
			continue
		}
		if t.entity.id(&rec) <= 0 {
			report.Skipped[t.Name()]++
			continue
		}
		if err := t.insert(ctx, tx, &rec, checkStoredRefs); err != nil {
			err = classify("import "+t.Name(), err)
			if !errors.Is(err, types.ErrConstraintViolation) {
				return err
			}
			logger.Warn("skipping record",
				zap.String("table", t.Name()),
				zap.Int64("id", t.entity.id(&rec)),
				zap.Error(err),
			)
			report.Skipped[t.Name()]++
			continue
		}
		report.Loaded[t.Name()]++
	}
	return nil
}

// readManifest returns the manifest in dir, or nil if there is none.
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
