package storage

import (
	"context"
	"strings"

	"chainapi/internal/application"
	"chainapi/internal/infrastructure/mysql"
	"chainapi/internal/infrastructure/sqlite"

	"github.com/pkg/errors"
)

const sqlitePrefix = "sqlite:"

// Journal is a journal backend that can be health-checked and closed.
type Journal interface {
	application.JournalRepository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Journal = (*mysql.Repository)(nil)
	_ Journal = (*sqlite.Repository)(nil)
	_ Journal = (*CachedRepository)(nil)
)

// Open selects the journal backend from dsn: "sqlite:<path>" opens a SQLite
// file, anything else is a MySQL DSN. An empty dsn returns nil.
func Open(dsn string) (Journal, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, nil
	case strings.HasPrefix(dsn, sqlitePrefix):
		repo, err := sqlite.NewRepository(strings.TrimPrefix(dsn, sqlitePrefix))
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite journal")
		}
		return repo, nil
	default:
		repo, err := mysql.NewRepository(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open mysql journal")
		}
		return repo, nil
	}
}

// Backend names the driver behind dsn for logs.
func Backend(dsn string) string {
	switch dsn = strings.TrimSpace(dsn); {
	case dsn == "":
		return "none"
	case strings.HasPrefix(dsn, sqlitePrefix):
		return "sqlite"
	default:
		return "mysql"
	}
}
