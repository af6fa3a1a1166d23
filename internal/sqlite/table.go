package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

var tracer = otel.Tracer("github.com/mesh-intelligence/workbench/internal/sqlite")

var (
	_ types.Table[types.CraftType]      = (*table[types.CraftType])(nil)
	_ types.Table[types.Item]           = (*table[types.Item])(nil)
	_ types.Table[types.Recipe]         = (*table[types.Recipe])(nil)
	_ types.Table[types.ItemWithAmount] = (*table[types.ItemWithAmount])(nil)
)

// refCheck selects which foreign keys insert verifies.
type refCheck int

const (
	// checkAllRefs verifies every foreign key, write-checked ones included.
	checkAllRefs refCheck = iota
	// checkStoredRefs skips write-checked keys so that a snapshot can
	// restore references that were already dangling when it was taken.
	checkStoredRefs
)

// table implements types.Table for one entity type. All entity types share
// this code; the entity descriptor supplies the table definition and the
// record accessors.
type table[T types.Entity] struct {
	backend *Backend
	entity  entity[T]
}

func newTable[T types.Entity](b *Backend, e entity[T]) *table[T] {
	return &table[T]{backend: b, entity: e}
}

// Name returns the storage table name.
func (t *table[T]) Name() string {
	return t.entity.def.name
}

// Create inserts rec and returns the persisted copy. rec is not modified.
func (t *table[T]) Create(ctx context.Context, rec *T) (_ *T, err error) {
	ctx, span := t.startSpan(ctx, "Create")
	defer func() { endSpan(span, err) }()

	if rec == nil {
		return nil, types.ErrInvalidData
	}
	if t.entity.id(rec) < 0 {
		return nil, types.ErrInvalidID
	}
	db, err := t.backend.handle()
	if err != nil {
		return nil, err
	}

	out := *rec
	err = withTx(ctx, db, func(tx *sqlx.Tx) error {
		return t.insert(ctx, tx, &out, checkAllRefs)
	})
	if err != nil {
		return nil, t.fail("create", t.entity.id(rec), err)
	}

	t.logger().Debug("created", zap.Int64("id", t.entity.id(&out)))
	return &out, nil
}

// Get retrieves the record with the given Id.
func (t *table[T]) Get(ctx context.Context, id int64) (_ *T, err error) {
	ctx, span := t.startSpan(ctx, "Get")
	span.SetAttributes(attribute.Int64("workbench.id", id))
	defer func() { endSpan(span, err) }()

	if id < 0 {
		return nil, types.ErrInvalidID
	}
	db, err := t.backend.handle()
	if err != nil {
		return nil, err
	}

	rec, err := t.get(ctx, db, id)
	if err != nil {
		return nil, t.fail("get", id, err)
	}
	return rec, nil
}

// List returns a lazy sequence over the records matching filter. The query
// runs when the sequence is ranged over, once per range.
func (t *table[T]) List(ctx context.Context, filter types.Filter) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		ctx, span := t.startSpan(ctx, "List")
		var err error
		defer func() { endSpan(span, err) }()

		db, err := t.backend.handle()
		if err != nil {
			yield(nil, err)
			return
		}

		query, args, err := buildSelect(t.entity.def, filter)
		if err != nil {
			yield(nil, err)
			return
		}

		rows, err := db.QueryxContext(ctx, query, args...)
		if err != nil {
			err = t.fail("list", 0, err)
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rec T
			if err = rows.StructScan(&rec); err != nil {
				err = t.fail("list", 0, err)
				yield(nil, err)
				return
			}
			if !yield(&rec, nil) {
				return
			}
		}
		if err = rows.Err(); err != nil {
			err = t.fail("list", 0, err)
			yield(nil, err)
		}
	}
}

// Update replaces the row with the given Id by rec.
func (t *table[T]) Update(ctx context.Context, id int64, rec *T) (_ *T, err error) {
	ctx, span := t.startSpan(ctx, "Update")
	span.SetAttributes(attribute.Int64("workbench.id", id))
	defer func() { endSpan(span, err) }()

	if rec == nil {
		return nil, types.ErrInvalidData
	}
	if id < 0 {
		return nil, types.ErrInvalidID
	}
	db, err := t.backend.handle()
	if err != nil {
		return nil, err
	}

	out := *rec
	t.entity.setID(&out, id)

	err = withTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := t.mustExist(ctx, tx, id); err != nil {
			return err
		}
		if err := t.checkReferences(ctx, tx, &out, checkAllRefs); err != nil {
			return err
		}

		ub := sqlbuilder.SQLite.NewUpdateBuilder()
		ub.Update(t.entity.def.name)
		vals := t.entity.values(&out)
		assignments := make([]string, len(vals))
		for i, col := range t.entity.def.dataColumns() {
			assignments[i] = ub.Assign(col, vals[i])
		}
		ub.Set(assignments...)
		ub.Where(ub.Equal(primaryKey, id))

		query, args := ub.Build()
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, t.fail("update", id, err)
	}

	t.logger().Debug("updated", zap.Int64("id", id))
	return &out, nil
}

// Delete removes the row with the given Id. Inbound references are handled
// according to the schema in the same transaction: cascading ones are
// deleted, storage-enforced no-action ones block the delete, and
// write-checked ones are left dangling.
func (t *table[T]) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := t.startSpan(ctx, "Delete")
	span.SetAttributes(attribute.Int64("workbench.id", id))
	defer func() { endSpan(span, err) }()

	if id < 0 {
		return types.ErrInvalidID
	}
	db, err := t.backend.handle()
	if err != nil {
		return err
	}

	cascaded := map[string]int64{}
	err = withTx(ctx, db, func(tx *sqlx.Tx) error {
		if err := t.mustExist(ctx, tx, id); err != nil {
			return err
		}

		for _, ref := range referencing(t.entity.def.name) {
			switch {
			case ref.fk.onDelete == actionCascade:
				n, err := deleteWhere(ctx, tx, ref.from.name, ref.fk.column, id)
				if err != nil {
					return err
				}
				cascaded[ref.from.name] += n
			case !ref.fk.writeChecked:
				n, err := countWhere(ctx, tx, ref.from.name, ref.fk.column, id)
				if err != nil {
					return err
				}
				if n > 0 {
					return fmt.Errorf("%w: %d %s rows reference %s %d through %s",
						types.ErrConstraintViolation, n, ref.from.name, t.entity.def.name, id, ref.fk.column)
				}
			}
		}

		_, err := deleteWhere(ctx, tx, t.entity.def.name, primaryKey, id)
		return err
	})
	if err != nil {
		return t.fail("delete", id, err)
	}

	for name, n := range cascaded {
		t.logger().Info("cascade delete",
			zap.Int64("id", id),
			zap.String("cascade_table", name),
			zap.Int64("rows", n),
		)
	}
	t.logger().Debug("deleted", zap.Int64("id", id))
	return nil
}

// insert writes rec inside tx. A zero Id is replaced by the id SQLite
// assigns.
func (t *table[T]) insert(ctx context.Context, tx *sqlx.Tx, rec *T, check refCheck) error {
	if err := t.checkReferences(ctx, tx, rec, check); err != nil {
		return err
	}

	id := t.entity.id(rec)
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(t.entity.def.name)
	if id != 0 {
		ib.Cols(t.entity.def.columns...)
		ib.Values(append([]any{id}, t.entity.values(rec)...)...)
	} else {
		ib.Cols(t.entity.def.dataColumns()...)
		ib.Values(t.entity.values(rec)...)
	}

	query, args := ib.Build()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if id == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading assigned id: %w", err)
		}
		t.entity.setID(rec, newID)
	}
	return nil
}

// get reads one record through q.
func (t *table[T]) get(ctx context.Context, q sqlx.QueryerContext, id int64) (*T, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(t.entity.def.columns...).From(t.entity.def.name)
	sb.Where(sb.Equal(primaryKey, id))

	query, args := sb.Build()
	var rec T
	if err := sqlx.GetContext(ctx, q, &rec, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s %d: %w", t.entity.def.name, id, types.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// all reads every record through q in Id order.
func (t *table[T]) all(ctx context.Context, q sqlx.QueryerContext) ([]T, error) {
	query, args, err := buildSelect(t.entity.def, nil)
	if err != nil {
		return nil, err
	}
	var recs []T
	if err := sqlx.SelectContext(ctx, q, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

// mustExist returns ErrNotFound unless a row with id exists.
func (t *table[T]) mustExist(ctx context.Context, tx *sqlx.Tx, id int64) error {
	ok, err := rowExists(ctx, tx, t.entity.def.name, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", t.entity.def.name, id, types.ErrNotFound)
	}
	return nil
}

// checkReferences verifies that every non-nil foreign key of rec points at
// an existing row. SQLite enforces the same for storage-enforced keys; the
// check here names the offending column.
func (t *table[T]) checkReferences(ctx context.Context, tx *sqlx.Tx, rec *T, check refCheck) error {
	vals := t.entity.columnValues(rec)
	for _, fk := range t.entity.def.foreignKeys {
		if fk.writeChecked && check == checkStoredRefs {
			continue
		}
		ref, ok := refValue(vals[fk.column])
		if !ok {
			if fk.nullable {
				continue
			}
			return fmt.Errorf("%w: %s is required", types.ErrConstraintViolation, fk.column)
		}
		exists, err := rowExists(ctx, tx, fk.refTable, ref)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s %d does not exist in %s",
				types.ErrConstraintViolation, fk.column, ref, fk.refTable)
		}
	}
	return nil
}

// fail classifies err, logs it and returns the classified error.
func (t *table[T]) fail(op string, id int64, err error) error {
	err = classify(fmt.Sprintf("%s %s", op, t.entity.def.name), err)
	fields := []zap.Field{zap.String("op", op), zap.Int64("id", id), zap.Error(err)}
	if isUserError(err) {
		t.logger().Debug("rejected", fields...)
	} else {
		t.logger().Error("failed", fields...)
	}
	return err
}

func (t *table[T]) logger() *zap.Logger {
	return t.backend.logger.With(zap.String("table", t.entity.def.name))
}

func (t *table[T]) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, t.entity.def.name+"."+op,
		trace.WithAttributes(attribute.String("db.sql.table", t.entity.def.name)))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// rowExists reports whether table has a row with the given Id.
func rowExists(ctx context.Context, q sqlx.QueryerContext, table string, id int64) (bool, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("1").From(table).Where(sb.Equal(primaryKey, id))

	query, args := sb.Build()
	var one int
	err := sqlx.GetContext(ctx, q, &one, query, args...)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// countWhere counts the rows of table whose column equals id.
func countWhere(ctx context.Context, q sqlx.QueryerContext, table, column string, id int64) (int64, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From(table).Where(sb.Equal(column, id))

	query, args := sb.Build()
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// deleteWhere deletes the rows of table whose column equals id and returns
// how many went.
func deleteWhere(ctx context.Context, tx *sqlx.Tx, table, column string, id int64) (int64, error) {
	db := sqlbuilder.SQLite.NewDeleteBuilder()
	db.DeleteFrom(table).Where(db.Equal(column, id))

	query, args := db.Build()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
