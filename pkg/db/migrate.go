package db

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Migrate применяет *.sql из dir по порядку имён, каждый файл в своей транзакции.
// Скрипты должны быть идемпотентны (create ... if not exists).
func Migrate(ctx context.Context, m TxManager, dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, errors.Wrap(err, "glob migrations")
	}
	sort.Strings(files)

	applied := make([]string, 0, len(files))
	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			return applied, errors.Wrapf(err, "read %s", file)
		}
		err = m.RunMaster(ctx, func(ctxTx context.Context, tx Transaction) error {
			_, err := tx.Exec(ctxTx, string(body))
			return err
		})
		if err != nil {
			return applied, errors.Wrapf(err, "apply %s", filepath.Base(file))
		}
		applied = append(applied, filepath.Base(file))
	}
	return applied, nil
}
