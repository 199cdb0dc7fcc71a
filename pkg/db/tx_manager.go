package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxFunc выполняется внутри транзакции; ошибка откатывает её.
type TxFunc = func(ctxTx context.Context, tx Transaction) error

// TxManager используют PgProvider (свечи), PgLedgerStore (прогоны) и Migrate.
type TxManager interface {
	RunMaster(ctx context.Context, fn TxFunc) error
	RunReadOnly(ctx context.Context, fn TxFunc) error
}

// Transaction — общий срез pgx.Tx и пула, чтобы тесты могли подменять его.
type Transaction interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ TxManager = (*PgTxManager)(nil)
