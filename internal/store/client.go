package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrNoRows is returned by Single when the query matched nothing.
	ErrNoRows = errors.New("store: no rows in result")

	// ErrBadIdentifier is returned when a table or column name fails the
	// identifier whitelist.
	ErrBadIdentifier = errors.New("store: invalid identifier")
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Row is a generic record as returned by or submitted to the remote store.
type Row map[string]any

// Client is a generic, table-scoped interface to the hosted remote store.
// Every operation compiles to a single parameterized statement; any store
// error is a hard failure for that call.
type Client struct {
	db *sql.DB
}

func New(db *sql.DB) *Client {
	return &Client{db: db}
}

// Ping probes connectivity without touching any table.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB exposes the underlying handle for migration tooling.
func (c *Client) DB() *sql.DB {
	return c.db
}

// From starts a select against one table.
func (c *Client) From(table string) *SelectQuery {
	return &SelectQuery{client: c, table: table, columns: []string{"*"}}
}

// Insert starts an insert of one record.
func (c *Client) Insert(table string, record Row) *InsertQuery {
	return &InsertQuery{client: c, table: table, record: record}
}

// Update starts a partial update; filters are mandatory before Exec.
func (c *Client) Update(table string, changes Row) *UpdateQuery {
	return &UpdateQuery{client: c, table: table, changes: changes}
}

// Delete starts a delete; filters are mandatory before Exec.
func (c *Client) Delete(table string) *DeleteQuery {
	return &DeleteQuery{client: c, table: table}
}

type filter struct {
	column string
	op     string
	values []any
}

type order struct {
	column string
	desc   bool
}

// SelectQuery is a fluent select builder.
type SelectQuery struct {
	client  *Client
	table   string
	columns []string
	filters []filter
	orders  []order
	limit   int
	offset  int
	err     error
}

func (q *SelectQuery) Select(columns ...string) *SelectQuery {
	if len(columns) > 0 {
		q.columns = columns
	}
	return q
}

func (q *SelectQuery) Eq(column string, value any) *SelectQuery {
	q.filters = append(q.filters, filter{column: column, op: "=", values: []any{value}})
	return q
}

func (q *SelectQuery) In(column string, values ...any) *SelectQuery {
	q.filters = append(q.filters, filter{column: column, op: "IN", values: values})
	return q
}

func (q *SelectQuery) Gte(column string, value any) *SelectQuery {
	q.filters = append(q.filters, filter{column: column, op: ">=", values: []any{value}})
	return q
}

func (q *SelectQuery) Lte(column string, value any) *SelectQuery {
	q.filters = append(q.filters, filter{column: column, op: "<=", values: []any{value}})
	return q
}

func (q *SelectQuery) Order(column string, desc bool) *SelectQuery {
	q.orders = append(q.orders, order{column: column, desc: desc})
	return q
}

func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = n
	return q
}

// Range selects rows [from, to] by position, inclusive, after ordering.
func (q *SelectQuery) Range(from, to int) *SelectQuery {
	q.offset = from
	q.limit = to - from + 1
	return q
}

// SQL compiles the query. Exposed for the builder tests.
func (q *SelectQuery) SQL() (string, []any, error) {
	if err := checkIdentifier(q.table); err != nil {
		return "", nil, err
	}
	for _, col := range q.columns {
		if col == "*" {
			continue
		}
		if err := checkIdentifier(col); err != nil {
			return "", nil, err
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.table)

	args, err := writeFilters(&sb, q.filters, 1)
	if err != nil {
		return "", nil, err
	}

	for i, o := range q.orders {
		if err := checkIdentifier(o.column); err != nil {
			return "", nil, err
		}
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.column)
		if o.desc {
			sb.WriteString(" DESC")
		}
	}

	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.offset)
	}

	return sb.String(), args, nil
}

// Get runs the query and returns all matching rows.
func (q *SelectQuery) Get(ctx context.Context) ([]Row, error) {
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.client.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", q.table, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", q.table, err)
	}

	return result, nil
}

// Single runs the query expecting exactly one row.
func (q *SelectQuery) Single(ctx context.Context) (Row, error) {
	q.limit = 1
	rows, err := q.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// InsertQuery inserts one record, optionally returning columns.
type InsertQuery struct {
	client    *Client
	table     string
	record    Row
	returning []string
	conflict  []string
}

func (q *InsertQuery) Returning(columns ...string) *InsertQuery {
	q.returning = columns
	return q
}

// OnConflict turns the insert into an upsert keyed on the given columns.
func (q *InsertQuery) OnConflict(columns ...string) *InsertQuery {
	q.conflict = columns
	return q
}

// SQL compiles the insert. Map keys are emitted in sorted order so the
// statement is deterministic.
func (q *InsertQuery) SQL() (string, []any, error) {
	if err := checkIdentifier(q.table); err != nil {
		return "", nil, err
	}
	if len(q.record) == 0 {
		return "", nil, fmt.Errorf("store: empty record for insert into %s", q.table)
	}

	columns := sortedKeys(q.record)
	args := make([]any, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	for i, col := range columns {
		if err := checkIdentifier(col); err != nil {
			return "", nil, err
		}
		args = append(args, q.record[col])
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		q.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if len(q.conflict) > 0 {
		for _, col := range q.conflict {
			if err := checkIdentifier(col); err != nil {
				return "", nil, err
			}
		}
		sb.WriteString(" ON CONFLICT (")
		sb.WriteString(strings.Join(q.conflict, ", "))
		sb.WriteString(") DO UPDATE SET ")
		sets := make([]string, 0, len(columns))
		for _, col := range columns {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
		sb.WriteString(strings.Join(sets, ", "))
	}

	if len(q.returning) > 0 {
		for _, col := range q.returning {
			if err := checkIdentifier(col); err != nil {
				return "", nil, err
			}
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(q.returning, ", "))
	}

	return sb.String(), args, nil
}

// Exec runs the insert discarding any returned columns.
func (q *InsertQuery) Exec(ctx context.Context) error {
	query, args, err := q.SQL()
	if err != nil {
		return err
	}
	if _, err := q.client.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", q.table, err)
	}
	return nil
}

// Single runs the insert and returns the requested columns of the new row.
func (q *InsertQuery) Single(ctx context.Context) (Row, error) {
	if len(q.returning) == 0 {
		q.returning = []string{"id"}
	}
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(q.returning))
	pointers := make([]any, len(q.returning))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := q.client.db.QueryRowContext(ctx, query, args...).Scan(pointers...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("failed to insert into %s: %w", q.table, err)
	}

	row := make(Row, len(q.returning))
	for i, col := range q.returning {
		row[col] = values[i]
	}
	return row, nil
}

// UpdateQuery applies a partial record to filtered rows.
type UpdateQuery struct {
	client  *Client
	table   string
	changes Row
	filters []filter
}

func (q *UpdateQuery) Eq(column string, value any) *UpdateQuery {
	q.filters = append(q.filters, filter{column: column, op: "=", values: []any{value}})
	return q
}

func (q *UpdateQuery) SQL() (string, []any, error) {
	if err := checkIdentifier(q.table); err != nil {
		return "", nil, err
	}
	if len(q.changes) == 0 {
		return "", nil, fmt.Errorf("store: empty changes for update of %s", q.table)
	}
	if len(q.filters) == 0 {
		return "", nil, fmt.Errorf("store: unfiltered update of %s refused", q.table)
	}

	columns := sortedKeys(q.changes)
	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", q.table)

	args := make([]any, 0, len(columns)+len(q.filters))
	for i, col := range columns {
		if err := checkIdentifier(col); err != nil {
			return "", nil, err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", col, i+1)
		args = append(args, q.changes[col])
	}

	filterArgs, err := writeFilters(&sb, q.filters, len(args)+1)
	if err != nil {
		return "", nil, err
	}
	args = append(args, filterArgs...)

	return sb.String(), args, nil
}

// Exec runs the update, returning the number of rows affected.
func (q *UpdateQuery) Exec(ctx context.Context) (int64, error) {
	query, args, err := q.SQL()
	if err != nil {
		return 0, err
	}
	result, err := q.client.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", q.table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// DeleteQuery removes filtered rows.
type DeleteQuery struct {
	client  *Client
	table   string
	filters []filter
}

func (q *DeleteQuery) Eq(column string, value any) *DeleteQuery {
	q.filters = append(q.filters, filter{column: column, op: "=", values: []any{value}})
	return q
}

func (q *DeleteQuery) SQL() (string, []any, error) {
	if err := checkIdentifier(q.table); err != nil {
		return "", nil, err
	}
	if len(q.filters) == 0 {
		return "", nil, fmt.Errorf("store: unfiltered delete from %s refused", q.table)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s", q.table)
	args, err := writeFilters(&sb, q.filters, 1)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), args, nil
}

// Exec runs the delete, returning the number of rows affected.
func (q *DeleteQuery) Exec(ctx context.Context) (int64, error) {
	query, args, err := q.SQL()
	if err != nil {
		return 0, err
	}
	result, err := q.client.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", q.table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

func writeFilters(sb *strings.Builder, filters []filter, nextArg int) ([]any, error) {
	var args []any
	for i, f := range filters {
		if err := checkIdentifier(f.column); err != nil {
			return nil, err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		switch f.op {
		case "IN":
			placeholders := make([]string, 0, len(f.values))
			for _, v := range f.values {
				placeholders = append(placeholders, fmt.Sprintf("$%d", nextArg))
				args = append(args, v)
				nextArg++
			}
			fmt.Fprintf(sb, "%s IN (%s)", f.column, strings.Join(placeholders, ", "))
		default:
			fmt.Fprintf(sb, "%s %s $%d", f.column, f.op, nextArg)
			args = append(args, f.values[0])
			nextArg++
		}
	}
	return args, nil
}

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadIdentifier, name)
	}
	return nil
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
