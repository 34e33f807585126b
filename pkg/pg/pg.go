package pg

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type txContextKey string

const txKey txContextKey = "trx"

// DB wraps a gorm connection and threads transactions through context so
// repositories stay unaware of transaction boundaries.
type DB struct {
	conn *gorm.DB
}

func Open(config Config, withDebug bool) (*DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if withDebug {
		db = db.Debug()
	}
	return &DB{conn: db}, nil
}

// Wrap builds a DB around an already-open gorm connection. Used by tests to
// substitute an in-memory sqlite database.
func Wrap(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

// WithinTransaction runs fn inside a database transaction; any Session
// obtained from the context inside fn joins that transaction.
func (d *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, txKey, tx)
		return fn(ctx)
	})
}

// Session returns the gorm handle for ctx, joining an open transaction when
// one is present.
func (d *DB) Session(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return d.conn.WithContext(ctx)
}
