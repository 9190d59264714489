package errors

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for logs. Driver errors from pgx, lib/pq
// and MySQL contribute their server-side fields.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	DBCode       string `json:"db_code,omitempty"`
	DBConstraint string `json:"db_constraint,omitempty"`
	DBTable      string `json:"db_table,omitempty"`
	DBColumn     string `json:"db_column,omitempty"`
	DBDetail     string `json:"db_detail,omitempty"`
	DBMessage    string `json:"db_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.fillDB(err)
	return d
}

func (d *ErrorDump) fillDB(err error) {
	var (
		pgxErr *pgconn.PgError
		pqErr  *pq.Error
		myErr  *mysql.MySQLError
	)
	switch {
	case errors.As(err, &pgxErr):
		d.DBCode, d.DBMessage, d.DBDetail = pgxErr.Code, pgxErr.Message, pgxErr.Detail
		d.DBTable, d.DBColumn, d.DBConstraint = pgxErr.TableName, pgxErr.ColumnName, pgxErr.ConstraintName
	case errors.As(err, &pqErr):
		d.DBCode, d.DBMessage, d.DBDetail = string(pqErr.Code), pqErr.Message, pqErr.Detail
		d.DBTable, d.DBColumn, d.DBConstraint = pqErr.Table, pqErr.Column, pqErr.Constraint
	case errors.As(err, &myErr):
		d.DBCode, d.DBMessage = strconv.Itoa(int(myErr.Number)), myErr.Message
	}
}

// Fields renders the dump as log fields, leaving out empty database ones.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.DBCode == "" {
		return fields
	}
	for key, value := range map[string]string{
		"db_code":       d.DBCode,
		"db_message":    d.DBMessage,
		"db_detail":     d.DBDetail,
		"db_table":      d.DBTable,
		"db_column":     d.DBColumn,
		"db_constraint": d.DBConstraint,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}
