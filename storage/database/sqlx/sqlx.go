// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
// Each repository holds the default pool handle; callers may override it per
// call with a transaction-scoped handle.
package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/darasa-io/darasa/core"
)

func getExec(dflt core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return dflt
}

// trapNoRowsErr maps psql "no rows" err to the domain's not-found error.
func trapNoRowsErr(err, notFoundErr error, msg string) error {
	if err == sql.ErrNoRows {
		return notFoundErr
	}
	return errors.Wrap(err, msg)
}

// queryBuilder accumulates WHERE clauses and positional args for a SELECT.
type queryBuilder struct {
	query string
	where []string
	args  []interface{}
}

func newQueryBuilder(query string) *queryBuilder {
	return &queryBuilder{query: query}
}

// arg registers a bind value and returns its positional placeholder.
func (qb *queryBuilder) arg(v interface{}) string {
	qb.args = append(qb.args, v)
	return fmt.Sprintf("$%d", len(qb.args))
}

func (qb *queryBuilder) whereClause(clause string) {
	qb.where = append(qb.where, clause)
}

func (qb *queryBuilder) build(ordering []core.DBOrdering, page core.Pagination) (string, []interface{}) {
	q := qb.query
	if len(qb.where) > 0 {
		q += " WHERE " + strings.Join(qb.where, " AND ")
	}
	if len(ordering) > 0 {
		ords := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			ords = append(ords, ord.String())
		}
		q += " ORDER BY " + strings.Join(ords, ", ")
	}
	if !page.IsZero() {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit(), page.Offset())
	}
	return q, qb.args
}

// updateBuilder accumulates SET clauses for a partial UPDATE.
type updateBuilder struct {
	sets []string
	args []interface{}
}

func (ub *updateBuilder) set(col string, v interface{}) {
	ub.args = append(ub.args, v)
	ub.sets = append(ub.sets, fmt.Sprintf("%s = $%d", col, len(ub.args)))
}

func (ub *updateBuilder) build(table, returning string, id int) (string, []interface{}) {
	ub.args = append(ub.args, id)
	q := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(ub.sets, ", "), len(ub.args), returning,
	)
	return q, ub.args
}

func joinOr(clauses []string) string {
	return strings.Join(clauses, " OR ")
}

// inClause renders an IN (...) list of int ids.
func inClause(qb *queryBuilder, ids []int) string {
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, qb.arg(id))
	}
	return "(" + strings.Join(placeholders, ",") + ")"
}
