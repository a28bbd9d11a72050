package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/ledger"
)

// recordFields lists the fields each ledger collection may carry, in column
// order. Collections and fields outside this list are rejected.
var recordFields = map[string][]string{
	ledger.CollectionSites:        {"id", "name", "location"},
	ledger.CollectionItemTypes:    {"id", "name", "category", "description"},
	ledger.CollectionPersonnel:    {"id", "name", "rank", "siteId"},
	ledger.CollectionAcquisitions: {"id", "siteId", "itemTypeId", "quantity", "date", "orderNumber"},
	ledger.CollectionTransfers:    {"id", "fromSiteId", "toSiteId", "itemTypeId", "quantity", "date", "status", "orderNumber", "notes"},
	ledger.CollectionAssignments:  {"id", "siteId", "itemTypeId", "personId", "quantity", "dateAssigned", "dateReturned", "status", "assignedTo"},
	ledger.CollectionConsumptions: {"id", "siteId", "itemTypeId", "quantity", "date", "reason", "authorizedBy"},
}

// Records persists ledger collections in SQL tables. Collection and field
// names are translated from camelCase to snake_case.
type Records struct {
	db *db.DB
}

// NewRecords returns a ledger.RecordStore backed by database.
func NewRecords(database *db.DB) *Records {
	return &Records{db: database}
}

// snakeCase converts a camelCase identifier to snake_case.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldsFor(collection string) ([]string, error) {
	fields, ok := recordFields[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	return fields, nil
}

func checkFields(collection string, allowed []string, record ledger.Fields) error {
	for k := range record {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("unknown field %q in %s", k, collection)
		}
	}
	return nil
}

// SelectAll returns every record of a collection in insertion order.
func (r *Records) SelectAll(ctx context.Context, collection string) ([]ledger.Fields, error) {
	fields, err := fieldsFor(collection)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = snakeCase(f)
	}
	order := "rowid"
	if r.db.Dialect == db.Postgres {
		order = "seq"
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY %s`,
		strings.Join(columns, ", "), snakeCase(collection), order,
	))
	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", collection, err)
	}
	defer rows.Close()

	var out []ledger.Fields
	for rows.Next() {
		values := make([]any, len(fields))
		dest := make([]any, len(fields))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", collection, err)
		}
		record := make(ledger.Fields, len(fields))
		for i, f := range fields {
			record[f] = values[i]
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	return out, nil
}

// Insert adds one record to a collection.
func (r *Records) Insert(ctx context.Context, collection string, record ledger.Fields) error {
	fields, err := fieldsFor(collection)
	if err != nil {
		return err
	}
	if err := checkFields(collection, fields, record); err != nil {
		return err
	}

	var columns, marks []string
	var args []any
	for _, f := range fields {
		v, ok := record[f]
		if !ok {
			continue
		}
		columns = append(columns, snakeCase(f))
		marks = append(marks, "?")
		args = append(args, v)
	}

	_, err = r.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`,
		snakeCase(collection), strings.Join(columns, ", "), strings.Join(marks, ", "),
	), args...)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

// Update overwrites the given fields of the record with the given ID.
func (r *Records) Update(ctx context.Context, collection, id string, record ledger.Fields) error {
	fields, err := fieldsFor(collection)
	if err != nil {
		return err
	}
	if err := checkFields(collection, fields, record); err != nil {
		return err
	}

	var sets []string
	var args []any
	for _, f := range fields {
		v, ok := record[f]
		if !ok || f == "id" {
			continue
		}
		sets = append(sets, snakeCase(f)+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = ?`,
		snakeCase(collection), strings.Join(sets, ", "),
	), args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", collection, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", collection, err)
	}
	if n == 0 {
		return fmt.Errorf("updating %s: no record with id %s", collection, id)
	}
	return nil
}
