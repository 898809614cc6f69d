package api

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/marcboeker/go-duckdb"
)

// DBHandler exposes the prefecture catalog database.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("db"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("db"))
}

// TableInfo is one catalog table.
type TableInfo struct {
	Name string `json:"name" doc:"Table name" example:"prefectures"`
	Rows int64  `json:"rows" doc:"Row count"`
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []TableInfo `json:"tables" doc:"Catalog tables"`
	}
}

// ListTables returns every DuckDB table with its row count.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			names = append(names, name)
		}
	}
	rows.Close()

	out := &TablesOutput{}
	out.Body.Tables = []TableInfo{}
	for _, name := range names {
		info := TableInfo{Name: name}
		q := fmt.Sprintf(`SELECT count(*) FROM "%s"`, strings.ReplaceAll(name, `"`, `""`))
		if err := h.db.QueryRowContext(ctx, q).Scan(&info.Rows); err != nil {
			return nil, huma.Error500InternalServerError("Failed to count rows", err)
		}
		out.Body.Tables = append(out.Body.Tables, info)
	}
	return out, nil
}

// QueryInput is the input for SQL queries.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" doc:"A single SELECT statement" example:"SELECT name, area_km2 FROM prefectures ORDER BY area_km2 DESC LIMIT 5"`
	}
}

// QueryOutput is the response for SQL queries.
type QueryOutput struct {
	Body struct {
		Columns []string         `json:"columns" doc:"Column names"`
		Rows    []map[string]any `json:"rows" doc:"Query results"`
		Count   int              `json:"count" doc:"Number of rows returned"`
	}
}

// errNotSelect is returned for statements DuckDB does not classify as SELECT.
var errNotSelect = errors.New("only single SELECT statements are allowed")

// checkSelect prepares q on conn without running it. driver.Conn.Prepare
// refuses input holding more than one statement before executing any of it.
func checkSelect(conn *sql.Conn, q string) error {
	return conn.Raw(func(dc any) error {
		c, ok := dc.(driver.Conn)
		if !ok {
			return errNotSelect
		}
		stmt, err := c.Prepare(q)
		if err != nil {
			return err
		}
		defer stmt.Close()

		ds, ok := stmt.(*duckdb.Stmt)
		if !ok {
			return errNotSelect
		}
		typ, err := ds.StatementType()
		if err != nil {
			return err
		}
		if typ != duckdb.STATEMENT_TYPE_SELECT {
			return errNotSelect
		}
		return nil
	})
}

// Query executes a single SELECT against the catalog inside a transaction
// that is always rolled back.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	q := input.Body.Query

	conn, err := h.db.Conn(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get connection", err)
	}
	defer conn.Close()

	if err := checkSelect(conn, q); err != nil {
		if errors.Is(err, errNotSelect) {
			return nil, huma.Error400BadRequest("Only single SELECT statements are allowed")
		}
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get columns", err)
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			continue
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	out := &QueryOutput{}
	out.Body.Columns = columns
	out.Body.Rows = results
	out.Body.Count = len(results)
	return out, nil
}
