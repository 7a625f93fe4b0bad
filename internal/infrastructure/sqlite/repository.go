package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"chainapi/internal/application"
	"chainapi/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	_ "modernc.org/sqlite"
)

// Repository stores journal entries in a local SQLite file.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// a single connection keeps writes serialised and ":memory:" databases shared
	db.SetMaxOpenConns(1)
	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chain_id INTEGER NOT NULL,
			tx_hash TEXT NOT NULL,
			contract TEXT NOT NULL,
			method TEXT NOT NULL,
			sender TEXT NOT NULL,
			event TEXT NOT NULL,
			args TEXT NOT NULL,
			block_number INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE(chain_id, tx_hash)
		)`,
		`CREATE INDEX IF NOT EXISTS journal_contract_idx ON journal (chain_id, contract)`,
		`CREATE INDEX IF NOT EXISTS journal_sender_idx ON journal (chain_id, sender)`,
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
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO journal (chain_id, tx_hash, contract, method, sender, event, args, block_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chain_id, tx_hash) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		args, err := json.Marshal(entry.Args)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			int64(entry.ChainID),
			strings.ToLower(entry.TxHash),
			strings.ToLower(entry.Contract),
			entry.Method,
			strings.ToLower(entry.Sender),
			entry.Event,
			string(args),
			int64(entry.BlockNumber),
			entry.CreatedAt.UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repository) QueryEntries(ctx context.Context, filter application.JournalQueryFilter) ([]domain.JournalEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clauses := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if filter.ChainID != nil {
		clauses = append(clauses, "chain_id = ?")
		args = append(args, int64(*filter.ChainID))
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

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			entry       domain.JournalEntry
			chainID     int64
			blockNumber int64
			rawArgs     string
			createdAt   int64
		)
		if err := rows.Scan(&chainID, &entry.TxHash, &entry.Contract, &entry.Method, &entry.Sender, &entry.Event, &rawArgs, &blockNumber, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rawArgs), &entry.Args); err != nil {
			return nil, err
		}
		entry.ChainID = uint64(chainID)
		entry.BlockNumber = uint64(blockNumber)
		entry.Contract = common.HexToAddress(entry.Contract).Hex()
		entry.Sender = common.HexToAddress(entry.Sender).Hex()
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
