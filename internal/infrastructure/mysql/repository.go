package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"chainapi/internal/application"
	"chainapi/internal/domain"
	"chainapi/internal/infrastructure/telemetry"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository stores journal entries in MySQL.
type Repository struct {
	db *sql.DB
}

func NewRepository(dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("db dsn is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS journal (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			chain_id BIGINT UNSIGNED NOT NULL,
			tx_hash VARCHAR(66) NOT NULL,
			contract VARCHAR(42) NOT NULL,
			method VARCHAR(64) NOT NULL,
			sender VARCHAR(42) NOT NULL,
			event VARCHAR(64) NOT NULL,
			args MEDIUMTEXT NOT NULL,
			block_number BIGINT UNSIGNED NOT NULL,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY journal_tx_unique (chain_id, tx_hash),
			KEY journal_contract_idx (chain_id, contract),
			KEY journal_sender_idx (chain_id, sender)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) StoreEntries(ctx context.Context, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ctx, span := startDBSpan(ctx, "mysql.StoreEntries", attribute.Int("entry.count", len(entries)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		telemetry.Fail(span, err)
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT IGNORE INTO journal (chain_id, tx_hash, contract, method, sender, event, args, block_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		telemetry.Fail(span, err)
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		args, err := json.Marshal(entry.Args)
		if err != nil {
			_ = tx.Rollback()
			telemetry.Fail(span, err)
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			entry.ChainID,
			strings.ToLower(entry.TxHash),
			strings.ToLower(entry.Contract),
			entry.Method,
			strings.ToLower(entry.Sender),
			entry.Event,
			string(args),
			entry.BlockNumber,
			entry.CreatedAt.UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			telemetry.Fail(span, err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		telemetry.Fail(span, err)
		return err
	}
	return nil
}

func (r *Repository) QueryEntries(ctx context.Context, filter application.JournalQueryFilter) ([]domain.JournalEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if filter.ChainID != nil {
		clauses = append(clauses, "chain_id = ?")
		args = append(args, *filter.ChainID)
	}
	if filter.Contract != "" {
		clauses = append(clauses, "contract = ?")
		args = append(args, strings.ToLower(filter.Contract))
	}
	if filter.Sender != "" {
		clauses = append(clauses, "sender = ?")
		args = append(args, strings.ToLower(filter.Sender))
	}
	if filter.Method != "" {
		clauses = append(clauses, "method = ?")
		args = append(args, filter.Method)
	}

	query := `SELECT chain_id, tx_hash, contract, method, sender, event, args, block_number, created_at FROM journal`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"

	limit := filter.Limit
	if limit <= 0 || limit > application.MaxJournalLimit {
		limit = application.DefaultJournalLimit
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// scanEntries reads journal rows selected in table column order.
func scanEntries(rows *sql.Rows) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			entry     domain.JournalEntry
			args      string
			createdAt int64
		)
		if err := rows.Scan(&entry.ChainID, &entry.TxHash, &entry.Contract, &entry.Method, &entry.Sender, &entry.Event, &args, &entry.BlockNumber, &createdAt); err != nil {
			return nil, err
		}
		if args != "" {
			if err := json.Unmarshal([]byte(args), &entry.Args); err != nil {
				return nil, err
			}
		}
		entry.Contract = checksum(entry.Contract)
		entry.Sender = checksum(entry.Sender)
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func checksum(address string) string {
	if !common.IsHexAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

func startDBSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", "mysql"))
	return otel.Tracer("chainapi/mysql").Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}
