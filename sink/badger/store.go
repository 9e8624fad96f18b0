package badger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lorekeeper/sink"
)

// Store implements sink.Store on BadgerDB. Records live under rec:type:id;
// each tag has an index key pointing back at the record.
type Store struct {
	backend *Backend
	now     func() time.Time
}

var _ sink.Store = (*Store)(nil)

// NewStore creates a Store on an open backend. Closing the store closes
// the backend.
func NewStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		now:     time.Now,
	}
}

// Open opens a persistent store in dir.
func Open(dir string) (*Store, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return NewStore(backend), nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) check(ctx context.Context) error {
	if s.backend.IsClosed() {
		return sink.ErrClosed
	}
	return ctx.Err()
}

// Save writes a record, replacing any previous version and its tag index.
func (s *Store) Save(ctx context.Context, contentType, id string, data []byte, tags []string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	record := &sink.Record{
		Type:      contentType,
		ID:        id,
		Data:      data,
		Tags:      slices.Clone(tags),
		UpdatedAt: s.now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if strings.Contains(contentType, ":") {
		return errors.Join(sink.ErrInvalidRecord, errors.New("type must not contain ':'"))
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecordKey(contentType, id)

		// Drop index keys of the previous version
		old, err := readRecord(tx, key)
		if err != nil && !errors.Is(err, sink.ErrNotFound) {
			return err
		}
		if old != nil {
			for _, tag := range old.Tags {
				if err := tx.Delete(makeTagKey(tag, contentType, id)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set(key, marshalRecord(record)); err != nil {
			return err
		}
		for _, tag := range record.Tags {
			if err := tx.Set(makeTagKey(tag, contentType, id), []byte{}); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single record.
func (s *Store) Get(ctx context.Context, contentType, id string) (*sink.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var record *sink.Record
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readRecord(tx, makeRecordKey(contentType, id))
		return err
	}, false)
	return record, err
}

// ByTag returns the records carrying tag, ordered by type and id.
func (s *Store) ByTag(ctx context.Context, tag string) ([]*sink.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var records []*sink.Record
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTagPrefix(tag)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			contentType, id, ok := parseTagKey(iter.Item().Key())
			if !ok {
				continue
			}
			record, err := readRecord(tx, makeRecordKey(contentType, id))
			if errors.Is(err, sink.ErrNotFound) {
				// Stale index entry
				continue
			}
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	}, false)
	return records, err
}

// Count returns the number of records of contentType.
func (s *Store) Count(ctx context.Context, contentType string) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTypePrefix(contentType)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readRecord reads and deserializes the record at key.
// Returns sink.ErrNotFound if it does not exist.
func readRecord(tx *badger.Txn, key []byte) (*sink.Record, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, sink.ErrNotFound
		}
		return nil, err
	}

	var record *sink.Record
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = unmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}
