package db

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Eq is a conjunction of column = value filters.
type Eq map[string]any

// Values maps column names to the values written by Insert and Update.
type Values map[string]any

// Order is an ORDER BY clause made of column names, each optionally
// suffixed with " DESC".
type Order []string

// Exists reports whether table has a row matching where.
func Exists(ctx context.Context, q DBTX, table string, where Eq) (bool, error) {
	sql, args := buildExists(table, where)
	var ok bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// SelectAll returns every row of table matching where, decoded into T by
// column name.
func SelectAll[T any](ctx context.Context, q DBTX, table string, where Eq, order Order) ([]T, error) {
	sql, args := buildSelect(table, where, order)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// SelectOne returns the single row of table matching where, or ErrNotFound.
func SelectOne[T any](ctx context.Context, q DBTX, table string, where Eq) (T, error) {
	sql, args := buildSelect(table, where, nil)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return collectOne[T](rows)
}

// SelectPage is SelectAll with LIMIT and OFFSET. A non-positive limit
// means no limit.
func SelectPage[T any](ctx context.Context, q DBTX, table string, where Eq, order Order, limit, offset int) ([]T, error) {
	sql, args := buildSelect(table, where, order)
	sql, args = paginate(sql, args, limit, offset)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// LockRow takes a row lock on the row of table matching where until the
// surrounding transaction ends, or returns ErrNotFound. Locking a parent row
// serializes concurrent writers to its children.
func LockRow(ctx context.Context, tx pgx.Tx, table string, where Eq) error {
	if len(where) == 0 {
		return ErrUnfilteredWrite
	}
	sql, args := buildLock(table, where)
	var one int
	err := tx.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Count returns the number of rows of table matching where.
func Count(ctx context.Context, q DBTX, table string, where Eq) (int, error) {
	sql, args := buildCount(table, where)
	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Insert writes one row and returns it as stored.
func Insert[T any](ctx context.Context, q DBTX, table string, values Values) (T, error) {
	var zero T
	sql, args, err := buildInsert(table, values)
	if err != nil {
		return zero, err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	return collectOne[T](rows)
}

// Update sets values on the row matching where and returns it, or
// ErrNotFound when nothing matched.
func Update[T any](ctx context.Context, q DBTX, table string, values Values, where Eq) (T, error) {
	var zero T
	sql, args, err := buildUpdate(table, values, where, true)
	if err != nil {
		return zero, err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	return collectOne[T](rows)
}

// UpdateAll sets values on every row matching where and returns how many
// rows changed.
func UpdateAll(ctx context.Context, q DBTX, table string, values Values, where Eq) (int64, error) {
	sql, args, err := buildUpdate(table, values, where, false)
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes the rows matching where and returns how many were removed.
func Delete(ctx context.Context, q DBTX, table string, where Eq) (int64, error) {
	if len(where) == 0 {
		return 0, ErrUnfilteredWrite
	}
	sql, args := buildDelete(table, where)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectOne[T any](rows pgx.Rows) (T, error) {
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// whereClause renders a WHERE clause with placeholders starting at $start.
// Columns are emitted in sorted order so the SQL text is stable.
func whereClause(filter Eq, start int) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}
	cols := slices.Sorted(maps.Keys(filter))
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s = $%d", ident(col), start+i)
		args[i] = filter[col]
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func orderBy(order Order) string {
	if len(order) == 0 {
		return ""
	}
	parts := make([]string, len(order))
	for i, o := range order {
		col, desc := strings.CutSuffix(o, " DESC")
		parts[i] = ident(col)
		if desc {
			parts[i] += " DESC"
		}
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func buildExists(table string, filter Eq) (string, []any) {
	w, args := whereClause(filter, 1)
	return "SELECT EXISTS (SELECT 1 FROM " + ident(table) + w + ")", args
}

func buildSelect(table string, filter Eq, order Order) (string, []any) {
	w, args := whereClause(filter, 1)
	return "SELECT * FROM " + ident(table) + w + orderBy(order), args
}

func paginate(sql string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return sql, args
}

func buildLock(table string, filter Eq) (string, []any) {
	w, args := whereClause(filter, 1)
	return "SELECT 1 FROM " + ident(table) + w + " FOR UPDATE", args
}

func buildCount(table string, filter Eq) (string, []any) {
	w, args := whereClause(filter, 1)
	return "SELECT count(*) FROM " + ident(table) + w, args
}

func buildInsert(table string, values Values) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, ErrEmptyValues
	}
	cols := slices.Sorted(maps.Keys(values))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		names[i] = ident(col)
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[col]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		ident(table), strings.Join(names, ", "), strings.Join(marks, ", "))
	return sql, args, nil
}

func buildUpdate(table string, values Values, filter Eq, returning bool) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, ErrEmptyValues
	}
	if len(filter) == 0 {
		return "", nil, ErrUnfilteredWrite
	}
	cols := slices.Sorted(maps.Keys(values))
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filter))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", ident(col), i+1)
		args = append(args, values[col])
	}
	w, wargs := whereClause(filter, len(cols)+1)
	sql := "UPDATE " + ident(table) + " SET " + strings.Join(sets, ", ") + w
	if returning {
		sql += " RETURNING *"
	}
	return sql, append(args, wargs...), nil
}

func buildDelete(table string, filter Eq) (string, []any) {
	w, args := whereClause(filter, 1)
	return "DELETE FROM " + ident(table) + w, args
}

// Store is the data-access handle given to functions: it answers ownership
// checks and runs transactions on the pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// OwnedRowExists reports whether table has a row with primary key id whose
// ownerField equals ownerID.
func (s *Store) OwnedRowExists(ctx context.Context, table, id, ownerField, ownerID string) (bool, error) {
	return Exists(ctx, s.pool, table, Eq{"id": id, ownerField: ownerID})
}

// Tx runs fn in a transaction on the pool.
func (s *Store) Tx(ctx context.Context, fn func(q DBTX) error) error {
	return WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}
