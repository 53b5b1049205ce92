package core

import (
	"context"
	"database/sql"
)

type (
	// DBExecutor is the query surface shared by the default connection pool and
	// an open transaction. Repository methods take it as an optional trailing
	// argument so services can scope a sequence of reads/writes to one
	// transaction.
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DB interface {
		DBExecutor

		BeginTx(ctx context.Context, opts *sql.TxOptions) (DBTransactor, error)
	}

	// DBTransactor is a transaction-scoped handle; reads through it see the
	// transaction's own writes.
	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Pagination is the shared page/page_size contract for list endpoints.
// A zero Pagination means "no limit".
type Pagination struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

func (p Pagination) Limit() int {
	return p.PageSize
}

func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) IsZero() bool {
	return p.PageSize <= 0
}
