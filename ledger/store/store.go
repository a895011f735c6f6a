// Package store persists payment records in badger for the ledger service.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/aptosedu/aptpay/ledger"
	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/types"
)

var paymentPrefix = []byte("payment/")

// PaymentKey builds the database key for a record id.
func PaymentKey(id string) []byte {
	return append(append([]byte{}, paymentPrefix...), []byte(id)...)
}

// Store is a badger-backed append/list ledger.
type Store struct {
	db  *badger.DB
	log logger.Logger
}

var (
	_ ledger.Appender = (*Store)(nil)
	_ ledger.Reader   = (*Store)(nil)
)

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database, used by tests.
func Open(path string, log logger.Logger) (*Store, error) {
	opt := badger.DefaultOptions(path)
	if path == "" {
		opt = opt.WithInMemory(true)
	}
	opt = opt.WithLogger(nil)

	db, err := badger.Open(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one payment record, assigning an id when missing.
func (s *Store) Append(ctx context.Context, record types.PaymentRecord) error {
	if err := record.Validate(); err != nil {
		return &types.PayError{Code: types.ErrInvalidInput, Message: err.Error()}
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	contents, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to marshal payment record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(PaymentKey(record.ID), contents)
	})
	if err != nil {
		return fmt.Errorf("failed to add record to the database: %w", err)
	}

	s.log.Info("payment recorded", map[string]any{"id": record.ID, "hash": record.TransactionHash})
	return nil
}

// List returns every stored record, oldest first. Entries that fail to
// decode are skipped with a warning.
func (s *Store) List(ctx context.Context) ([]types.PaymentRecord, error) {
	var records []types.PaymentRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = paymentPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(paymentPrefix); it.ValidForPrefix(paymentPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record types.PaymentRecord
				if err := json.Unmarshal(val, &record); err != nil {
					s.log.Warn("skipping malformed payment entry", map[string]any{"error": err.Error()})
					return nil
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to retrieve value: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records from the database: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}
