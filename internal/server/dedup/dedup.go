// Package dedup keeps a persistent index from game content fingerprints to
// stored game ids, so re-ingesting the same PGN does not duplicate games.
package dedup

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "fp:"

// Index maps fingerprints to game ids
type Index struct {
	db *badger.DB
}

// Open opens the index at dir. An empty dir keeps the index in memory.
func Open(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open dedup index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the index
func (x *Index) Close() error {
	if x.db != nil {
		return x.db.Close()
	}
	return nil
}

// Fingerprint identifies a game by its players, date, result and main line.
// Whitespace differences in the move text do not change the fingerprint.
func Fingerprint(white, black, date, result, moves string) string {
	h := sha256.New()
	for _, part := range []string{white, black, date, result, strings.Join(strings.Fields(moves), " ")} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the game id stored for a fingerprint
func (x *Index) Lookup(fp string) (int64, bool, error) {
	var id int64
	err := x.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + fp))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt dedup entry for %s", fp)
			}
			id = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Put records the game id for a fingerprint
func (x *Index) Put(fp string, gameID int64) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(gameID))
	return x.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+fp), val)
	})
}

// Forget removes every fingerprint pointing at one of the given game ids
func (x *Index) Forget(gameIDs ...int64) error {
	if len(gameIDs) == 0 {
		return nil
	}
	drop := make(map[int64]bool, len(gameIDs))
	for _, id := range gameIDs {
		drop[id] = true
	}

	var keys [][]byte
	err := x.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				if len(val) == 8 && drop[int64(binary.BigEndian.Uint64(val))] {
					keys = append(keys, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := x.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("failed to delete fingerprint: %w", err)
		}
	}
	return wb.Flush()
}

// Len counts the indexed fingerprints
func (x *Index) Len() (int, error) {
	n := 0
	err := x.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
