package db

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

type recTx struct {
	execs []string
	fail  string
}

func (r *recTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if sql == r.fail {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	r.execs = append(r.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (r *recTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *recTx) QueryRow(context.Context, string, ...interface{}) pgx.Row { return nil }

type recManager struct{ tx *recTx }

func (m recManager) RunMaster(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m.tx)
}

func (m recManager) RunReadOnly(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m.tx)
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_runs.sql":    "create table b();",
		"001_candles.sql": "create table a();",
		"notes.txt":       "skip me",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tx := &recTx{}
	applied, err := Migrate(context.Background(), recManager{tx: tx}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"001_candles.sql", "002_runs.sql"}; !reflect.DeepEqual(applied, want) {
		t.Fatalf("applied = %v, want %v", applied, want)
	}
	if want := []string{"create table a();", "create table b();"}; !reflect.DeepEqual(tx.execs, want) {
		t.Fatalf("execs = %v, want %v", tx.execs, want)
	}

	tx = &recTx{fail: "create table b();"}
	applied, err = Migrate(context.Background(), recManager{tx: tx}, dir)
	if err == nil || len(applied) != 1 {
		t.Fatalf("applied = %v, err = %v", applied, err)
	}
}
