// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

// This file contains generic support code for PostgreSQL
// applications.
//
// There are three main things in here:
//
// (1) Functions to help with database/sql: withTx() to do work in a
//     transaction that can be retried, and scanRows() to loop over the
//     results of a multi-row SELECT
//
// (2) Data marshallers for nullable times
//
// (3) Helpers to build SQL statements: queryParams is a parameter
//     list that can produce $1, $2, ... out, and fieldList is an
//     INSERT key=value list

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// withTx calls some function with a database/sql transaction object.
// If f panics or returns a non-nil error, rolls the transaction back;
// otherwise commits it before returning.  Returns the error value from
// f, or some other error related to transaction management.
func withTx(db *sql.DB, readOnly bool, f func(*sql.Tx) error) (err error) {
	var (
		tx   *sql.Tx
		done bool
	)

	// If we have a failure, roll back; and if that rollback fails
	// and we don't yet have an error, set the error
	defer func() {
		if tx != nil && !done {
			err2 := tx.Rollback()
			if err == nil {
				err = err2
			}
		}
	}()

	// Run in a loop, repeating the work on serialization errors
	for {
		tx, err = db.Begin()
		if err != nil {
			return
		}

		level := "REPEATABLE READ"
		if readOnly {
			level += " READ ONLY"
		}
		_, err = tx.Exec("SET TRANSACTION ISOLATION LEVEL " + level)
		if err != nil {
			return
		}

		// Call the callback function
		err = f(tx)

		// If that succeeded, commit
		if err == nil {
			err = tx.Commit()
			done = true
		}

		// If we specifically got a serialization error,
		// retry
		if pqErrorCode(err) == pgSerializationFailure {
			err = tx.Rollback()
			if err == sql.ErrTxDone {
				// Already rolled back; not an error
				err = nil
			} else if err != nil {
				return
			}
			tx = nil
			done = false
			continue
		}

		break
	}

	return
}

// pqErrorCode returns the PostgreSQL error code of err, or an empty
// string if err did not come from the server.
func pqErrorCode(err error) string {
	if pqerr, ok := err.(*pq.Error); ok {
		return string(pqerr.Code)
	}
	return ""
}

// scanRows runs an SQL query and calls a function for each row in the
// result.  The callback function should only call the Scan() method on
// the provided Rows object; this function will take care of advancing
// through the list of rows and closing the iterator as required.
func scanRows(rows *sql.Rows, f func() error) (err error) {
	var done bool
	defer func() {
		if !done {
			err2 := rows.Close()
			if err == nil {
				err = err2
			}
		}
	}()

	for rows.Next() {
		err = f()
		if err != nil {
			return
		}
	}
	done = true
	err = rows.Err()
	return
}

// queryAndScan runs query with params inside tx, and calls f for each
// row in it.
func queryAndScan(tx *sql.Tx, query string, params queryParams, f func(*sql.Rows) error) error {
	rows, err := tx.Query(query, params...)
	if err != nil {
		return err
	}
	return scanRows(rows, func() error {
		return f(rows)
	})
}

// timeToNullTime encodes a time as a pq-specific NullTime, by mapping the
// zero time to null.
func timeToNullTime(t time.Time) pq.NullTime {
	return pq.NullTime{Time: t, Valid: !t.IsZero()}
}

// nullTimeToTime decodes a pq-specific NullTime to a time, by mapping
// a null value to zero time.
func nullTimeToTime(nt pq.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// buildSelect constructs a simple SQL SELECT statement by string
// concatenation.  All of the conditions are ANDed together.
func buildSelect(outputs, tables, conditions []string) string {
	query := "SELECT "
	query += strings.Join(outputs, ", ")
	query += " FROM "
	query += strings.Join(tables, ", ")
	if len(conditions) > 0 {
		query += " WHERE "
		query += strings.Join(conditions, " AND ")
	}
	return query
}

// queryParams wraps a list of query parameters.
type queryParams []interface{}

// Param adds a parameter to the query parameter list, returning its
// position as $1, $2, ...
func (qp *queryParams) Param(param interface{}) string {
	*qp = append(*qp, param)
	return fmt.Sprintf("$%v", len(*qp))
}

// In adds every value as a parameter and returns an SQL "IN (...)"
// condition on field.
func (qp *queryParams) In(field string, values []string) string {
	params := make([]string, len(values))
	for i, value := range values {
		params[i] = qp.Param(value)
	}
	return field + " IN (" + strings.Join(params, ", ") + ")"
}

// fieldPair is a pair of values in a fieldList.
type fieldPair struct {
	Field string
	Value string
}

// fieldList is a list of "field=value" pairs as appears in SQL INSERT
// statements.
type fieldList struct {
	Fields []fieldPair
}

// Adds a name and dynamic value to the field list.
func (f *fieldList) Add(qp *queryParams, field string, value interface{}) {
	f.AddDirect(field, qp.Param(value))
}

// Adds a name and fixed value to the field list.  value is an unquoted
// SQL string.
func (f *fieldList) AddDirect(field, value string) {
	f.Fields = append(f.Fields, fieldPair{Field: field, Value: value})
}

// MapFields converts a field list to a string slice by calling a
// function on every field pair.
func (f fieldList) MapFields(mf func(fp fieldPair) string) []string {
	result := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		result[i] = mf(field)
	}
	return result
}

// InsertNames produces the names for an SQL INSERT statement as a
// comma-separated list with no additional punctuation.
func (f fieldList) InsertNames() string {
	return strings.Join(f.MapFields(func(fp fieldPair) string { return fp.Field }), ", ")
}

// InsertValues produces the values for an SQL INSERT statement as a
// comma-separated list with no additional punctuation.
func (f fieldList) InsertValues() string {
	return strings.Join(f.MapFields(func(fp fieldPair) string { return fp.Value }), ", ")
}

// InsertStatement produces a syntactically complete SQL INSERT
// statement that returns the new row's id.
func (f fieldList) InsertStatement(table string) string {
	return "INSERT INTO " + table + "(" + f.InsertNames() + ") VALUES(" + f.InsertValues() + ") RETURNING id"
}
