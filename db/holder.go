package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/sqliteopus/opus/telemetry"
)

var (
	// ErrNotConnected is returned by introspection when no database is open
	ErrNotConnected = errors.New("no database connection")

	// ErrTableNotFound is returned when the named table or view does not exist
	ErrTableNotFound = errors.New("table not found")

	// ErrUnsafeIdentifier is returned when a PRAGMA fallback would require
	// interpolating an identifier that fails the allow-list check
	ErrUnsafeIdentifier = errors.New("unsafe table identifier")
)

var sqliteDialect = goqu.Dialect("sqlite3")

// safeIdentifierRe is the allow-list for raw identifier interpolation into
// PRAGMA statements, the one place parameter binding is unavailable.
var safeIdentifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Holder owns at most one live SQLite handle. A single mutex serializes
// every operation for its full duration, including the count-then-fetch
// pair of a paginated query, so no concurrent write from this process can
// move the total between the two statements. Another OS process writing
// the same file can still slip between them; that gap is accepted.
type Holder struct {
	mu   sync.Mutex
	path string
	conn *sqlx.DB
}

// NewHolder creates a disconnected Holder
func NewHolder() *Holder {
	return &Holder{}
}

// Connect opens the SQLite file at path, replacing any existing handle.
// The prior handle is closed before the new open is attempted, so a failed
// connect leaves the holder disconnected rather than on the old handle.
func (h *Holder) Connect(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		telemetry.ConnectsTotal.With("failure").Inc()
		return fmt.Errorf("database file not found: %s", path)
	}

	h.closeLocked()

	conn, err := sqlx.Connect(SQLiteDriverName, path)
	if err != nil {
		telemetry.ConnectsTotal.With("failure").Inc()
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite opens lazily; force a header read so a corrupt or non-database
	// file fails here instead of on the first query.
	if _, err := conn.Exec("PRAGMA schema_version"); err != nil {
		conn.Close()
		telemetry.ConnectsTotal.With("failure").Inc()
		return fmt.Errorf("failed to open database: %w", err)
	}

	h.conn = conn
	h.path = path
	telemetry.ConnectsTotal.With("success").Inc()
	telemetry.Connected.Set(1)
	log.Info().Str("path", path).Msg("Connected to database")
	return nil
}

// Disconnect closes the current handle. Idempotent.
func (h *Holder) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeLocked()
}

func (h *Holder) closeLocked() {
	if h.conn == nil {
		return
	}
	if err := h.conn.Close(); err != nil {
		log.Warn().Err(err).Str("path", h.path).Msg("Error closing database handle")
	}
	h.conn = nil
	h.path = ""
	telemetry.Connected.Set(0)
}

// IsConnected reports whether a handle is currently open
func (h *Holder) IsConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn != nil
}

// Path returns the file path of the open database, or "" when disconnected
func (h *Holder) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path
}

// Tables returns table names in alphabetical order. Returns an empty slice,
// never an error, when disconnected or when the listing fails.
func (h *Holder) Tables() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return []string{}
	}

	query, _, err := sqliteDialect.From("sqlite_master").
		Select("name").
		Where(goqu.Ex{"type": "table"}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return []string{}
	}

	names := []string{}
	if err := h.conn.Select(&names, query); err != nil {
		log.Warn().Err(err).Msg("Failed to list tables")
		return []string{}
	}
	return names
}

// TableInfo returns structural metadata for one table or view: defining SQL,
// column definitions and index list.
func (h *Holder) TableInfo(name string) (*TableInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return nil, ErrNotConnected
	}

	query, args, err := sqliteDialect.From("sqlite_master").
		Select("sql").
		Where(goqu.Ex{
			"tbl_name": name,
			"type":     []string{"table", "view"},
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var defSQL sql.NullString
	if err := h.conn.Get(&defSQL, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	info := &TableInfo{Name: name, SQL: defSQL.String}

	columns, err := h.columnsLocked(name)
	if err != nil {
		return nil, err
	}
	info.Columns = columns

	indexes, err := h.indexesLocked(name)
	if err != nil {
		return nil, err
	}
	info.Indexes = indexes

	return info, nil
}

// pragmaFallbackQuery builds a raw PRAGMA statement for engines without
// table-valued pragma support. PRAGMA arguments cannot be bound, so this is
// the one place an identifier is interpolated into SQL, and only after the
// alphanumeric-plus-underscore allow-list check.
func pragmaFallbackQuery(pragma, name string) (string, error) {
	if !safeIdentifierRe.MatchString(name) {
		return "", ErrUnsafeIdentifier
	}
	return fmt.Sprintf(`PRAGMA %s("%s")`, pragma, name), nil
}

// columnsLocked reads pragma_table_info for name. The table-valued pragma
// (SQLite 3.16+) supports parameter binding; the PRAGMA fallback does not.
func (h *Holder) columnsLocked(name string) ([]ColumnInfo, error) {
	var raw []pragmaColumn
	if err := h.conn.Select(&raw, "SELECT * FROM pragma_table_info(?)", name); err != nil {
		fallback, err := pragmaFallbackQuery("table_info", name)
		if err != nil {
			return nil, err
		}
		raw = raw[:0]
		if err := h.conn.Select(&raw, fallback); err != nil {
			return nil, err
		}
	}

	columns := make([]ColumnInfo, 0, len(raw))
	for _, c := range raw {
		col := ColumnInfo{
			Name:       c.Name,
			Type:       c.Type,
			NotNull:    c.NotNull != 0,
			PrimaryKey: c.PK != 0,
		}
		if c.Default != nil {
			col.Default = *c.Default
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func (h *Holder) indexesLocked(name string) ([]IndexInfo, error) {
	var raw []pragmaIndex
	if err := h.conn.Select(&raw, "SELECT * FROM pragma_index_list(?)", name); err != nil {
		fallback, err := pragmaFallbackQuery("index_list", name)
		if err != nil {
			return nil, err
		}
		raw = raw[:0]
		if err := h.conn.Select(&raw, fallback); err != nil {
			return nil, err
		}
	}

	indexes := make([]IndexInfo, 0, len(raw))
	for _, idx := range raw {
		indexes = append(indexes, IndexInfo{
			Name:   idx.Name,
			Unique: idx.Unique != 0,
			Origin: idx.Origin,
		})
	}
	return indexes, nil
}

// Execute runs a single statement and returns the uniform result envelope.
// Engine errors are caught here and surface as failure envelopes carrying
// the error text verbatim.
func (h *Holder) Execute(query string) *Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.executeLocked(query)
}

func (h *Holder) executeLocked(query string) *Result {
	if h.conn == nil {
		return failureResult("no database connection")
	}

	code := Classify(query)
	start := time.Now()

	var res *Result
	if code == StatementSelect {
		res = h.queryLocked(query)
	} else {
		res = h.execLocked(query)
	}

	observeQuery(code, start, res)
	return res
}

// ExecutePaginated runs a SELECT through the two-query pagination protocol:
// a COUNT(*) wrap of the stripped base query, then a windowed fetch. Both
// statements execute inside the same critical section. Non-SELECT queries
// delegate to direct execution, pagination being meaningless for writes.
func (h *Holder) ExecutePaginated(query string, page, perPage, maxResults int) *Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return failureResult("no database connection")
	}

	if Classify(query) != StatementSelect {
		return h.executeLocked(query)
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if maxResults > 0 && perPage > maxResults {
		perPage = maxResults
	}

	start := time.Now()
	base := StripTrailingLimitOffset(query)

	// Wrapping as a subquery is what makes counting work without a SQL
	// parser: any valid SELECT is a valid FROM target.
	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS _count", base)
	if err := h.conn.Get(&total, countQuery); err != nil {
		res := failureResult(err.Error())
		observeQuery(StatementSelect, start, res)
		return res
	}

	offset := (page - 1) * perPage
	res := h.queryLocked(fmt.Sprintf("%s LIMIT %d OFFSET %d", base, perPage, offset))
	observeQuery(StatementSelect, start, res)
	if !res.Success {
		return res
	}

	var totalPages int64
	if total > 0 {
		totalPages = (total + int64(perPage) - 1) / int64(perPage)
	}
	res.Pagination = &Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
	}
	telemetry.PaginatedQueriesTotal.Inc()
	return res
}

func (h *Holder) queryLocked(query string) *Result {
	rows, err := h.conn.Queryx(query)
	if err != nil {
		return failureResult(err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return failureResult(err.Error())
	}

	results := []Row{}
	for rows.Next() {
		row := Row{}
		if err := rows.MapScan(row); err != nil {
			return failureResult(err.Error())
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return failureResult(err.Error())
	}

	return &Result{
		Success:  true,
		Results:  results,
		Columns:  columns,
		RowCount: int64(len(results)),
	}
}

func (h *Holder) execLocked(query string) *Result {
	execResult, err := h.conn.Exec(query)
	if err != nil {
		return failureResult(err.Error())
	}

	affected, err := execResult.RowsAffected()
	if err != nil {
		affected = 0
	}

	return &Result{
		Success:  true,
		Results:  []Row{},
		Columns:  []string{},
		RowCount: affected,
	}
}

func observeQuery(code StatementCode, start time.Time, res *Result) {
	outcome := "success"
	if !res.Success {
		outcome = "failure"
	}
	telemetry.QueriesTotal.With(code.String(), outcome).Inc()
	telemetry.QueryDurationSeconds.Observe(time.Since(start).Seconds())
}
