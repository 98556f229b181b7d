package source

import (
	"context"
	"math"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

// Drivers lists the database/sql driver names accepted by Open.
var Drivers = []string{"sqlite", "pgx", "snowflake"}

var driverAliases = map[string]string{
	"sqlite3":    "sqlite",
	"postgres":   "pgx",
	"postgresql": "pgx",
}

// Open connects to a database with one of the supported drivers and pings it.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if alias, ok := driverAliases[name]; ok {
		name = alias
	}
	supported := false
	for _, d := range Drivers {
		if d == name {
			supported = true
			break
		}
	}
	if !supported {
		return nil, eris.Wrapf(ErrUnsupported, "source: driver %q", driver)
	}
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", name)
	}
	if name == "sqlite" {
		// In-memory databases are private to a connection.
		db.SetMaxOpenConns(1)
	}
	pctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "source: ping %s", name)
	}
	return db, nil
}

// LoadQuery opens a connection, runs query and loads its result set.
func LoadQuery(ctx context.Context, driver, dsn, query string, opt Options) (*dataset.Table, error) {
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return ReadQuery(ctx, db, "query", query, opt)
}

// ReadQuery runs query on db and turns the result set into a table. Column
// kinds come from the declared database types when the values agree with
// them, otherwise from the values themselves.
func ReadQuery(ctx context.Context, db *sqlx.DB, name, query string, opt Options) (*dataset.Table, error) {
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "source: run query")
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "source: read columns")
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, eris.Wrap(err, "source: read column types")
	}

	cells := make([][]any, len(names))
	for i := range cells {
		cells[i] = []any{}
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	n := 0
	for n < maxRows && rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, eris.Wrapf(err, "source: scan row %d", n+1)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			cells[i] = append(cells[i], v)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: iterate rows")
	}

	cols := make([]*dataset.Column, len(names))
	for i, nm := range names {
		declared := ""
		if i < len(types) && types[i] != nil {
			declared = types[i].DatabaseTypeName()
		}
		cols[i] = typedColumn(headerName(nm), declared, cells[i], opt.Number)
	}
	zap.L().Debug("source: query loaded", zap.String("name", name), zap.Int("rows", n), zap.Int("columns", len(cols)))
	return dataset.NewTable(name, cols)
}

// KindForDatabaseType maps a declared column type such as VARCHAR(20),
// INT8 or TIMESTAMP_NTZ to a kind. It reports false for unknown or empty
// type names.
func KindForDatabaseType(name string) (dataset.Kind, bool) {
	t := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return dataset.Unknown, false
	}
	if strings.HasPrefix(t, "INTERVAL") {
		return dataset.Text, true
	}
	if strings.HasPrefix(t, "BOOL") {
		return dataset.Unknown, true
	}
	for _, p := range []string{"DATE", "TIME"} {
		if strings.HasPrefix(t, p) {
			return dataset.DateTime, true
		}
	}
	for _, p := range []string{
		"INT", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "SERIAL", "BIGSERIAL",
		"REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL", "NUMBER", "FIXED", "MONEY",
	} {
		if strings.HasPrefix(t, p) {
			return dataset.Numeric, true
		}
	}
	for _, p := range []string{"CHAR", "VARCHAR", "NCHAR", "NVARCHAR", "TEXT", "CLOB", "STRING", "UUID", "CITEXT", "BPCHAR"} {
		if strings.HasPrefix(t, p) {
			return dataset.Text, true
		}
	}
	return dataset.Unknown, false
}

// typedColumn converts driver values to the cell types of the declared kind.
// When the declared type is unknown or a value does not fit it, the kind is
// inferred from the values as scanned.
func typedColumn(name any, declared string, cells []any, f dataset.NumberFormat) *dataset.Column {
	if kind, ok := KindForDatabaseType(declared); ok {
		if out, ok := convertCells(kind, cells, f); ok {
			return &dataset.Column{Name: name, Kind: kind, Cells: out}
		}
	}
	kind := dataset.KindOfValues(cells)
	if out, ok := convertCells(kind, cells, f); ok {
		return &dataset.Column{Name: name, Kind: kind, Cells: out}
	}
	return &dataset.Column{Name: name, Kind: dataset.Text, Cells: cells}
}

func convertCells(kind dataset.Kind, cells []any, f dataset.NumberFormat) ([]any, bool) {
	out := make([]any, len(cells))
	for i, v := range cells {
		if dataset.IsMissing(v) {
			continue
		}
		switch kind {
		case dataset.Numeric:
			if x, ok := dataset.TryNumber(v); ok {
				out[i] = x
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			x, ok := dataset.TryParseNumber(s, f)
			if !ok {
				return nil, false
			}
			out[i] = x
		case dataset.DateTime:
			t, ok := dataset.TryParseDate(v)
			if !ok {
				return nil, false
			}
			out[i] = t
		case dataset.Unknown:
			switch b := v.(type) {
			case bool:
				out[i] = b
			case int64:
				out[i] = b != 0
			default:
				return nil, false
			}
		default:
			out[i] = v
		}
	}
	return out, true
}
