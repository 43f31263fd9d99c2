package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/gss-dashboard/pkg/connector"
)

// SQLSource reads the raw survey table from a database connector
type SQLSource struct {
	conn   connector.DatabaseConnector
	table  string
	logger *zap.Logger
}

// NewSQLSource creates a source for table, which may be schema-qualified
func NewSQLSource(conn connector.DatabaseConnector, table string, logger *zap.Logger) *SQLSource {
	return &SQLSource{
		conn:   conn,
		table:  table,
		logger: logger.Named("sql-source"),
	}
}

// Name returns the driver and table being read
func (s *SQLSource) Name() string {
	return s.conn.DriverName() + ":" + s.table
}

// Fetch selects every row of the table. Column names are lower-cased so they
// match the raw CSV header; NULL becomes the empty string.
func (s *SQLSource) Fetch(ctx context.Context) ([][]string, error) {
	db := sqlx.NewDb(s.conn.DB(), s.conn.DriverName())
	query := "SELECT * FROM " + QuoteTable(s.table, s.conn.DriverName())

	s.logger.Info("Reading survey table", zap.String("query", query))
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = strings.ToLower(col)
	}

	records := [][]string{header}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", len(records), s.table, err)
		}
		records = append(records, StringifyRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", s.table, err)
	}

	s.logger.Debug("Read table rows", zap.Int("rows", len(records)-1))
	return normalizeRecords(records)
}

// QuoteTable quotes each part of a possibly schema-qualified table name.
// Snowflake folds unquoted identifiers to upper case, so names are upper-cased
// before quoting for that driver.
func QuoteTable(table, driver string) string {
	parts := strings.Split(table, ".")
	for i, part := range parts {
		if driver == "snowflake" {
			part = strings.ToUpper(part)
		}
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

// StringifyRow converts scanned driver values to their text form
func StringifyRow(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = stringify(v)
	}
	return out
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
