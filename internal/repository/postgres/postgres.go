package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"ev-rental-ledger/internal/logger"
	"ev-rental-ledger/internal/repository"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db         *sql.DB
	agreements repository.AgreementRepository
	evStates   repository.EVStateRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		agreements: NewAgreementRepository(db),
		evStates:   NewEVStateRepository(db),
	}
}

func (s *Store) Agreements() repository.AgreementRepository { return s.agreements }
func (s *Store) EVStates() repository.EVStateRepository     { return s.evStates }

type txStore struct {
	agreements repository.AgreementRepository
	evStates   repository.EVStateRepository
}

func (t *txStore) Agreements() repository.AgreementRepository { return t.agreements }
func (t *txStore) EVStates() repository.EVStateRepository     { return t.evStates }

// Atomically runs fn inside a database transaction. Agreement reads inside the
// transaction take a row lock so concurrent returns of one receipt serialize.
func (s *Store) Atomically(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txs := &txStore{
		agreements: &agreementRepository{db: tx, forUpdate: true},
		evStates:   &evStateRepository{db: tx},
	}
	if err := fn(txs); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
