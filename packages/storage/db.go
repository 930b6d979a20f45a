// Package storage provides the backing store the resolver and the attachment sandbox read from: ledger states,
// network parameter records and attachment bundles, kept in a key-value store with a persistent (badger) and an
// in-memory backend.
package storage

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
	"github.com/iotaledger/hive.go/kvstore"
	badgerstore "github.com/iotaledger/hive.go/kvstore/badger"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
)

const valueLogGCDiscardRatio = 0.1

// DB is the backend a Store is layered on.
type DB interface {
	// NewStore returns a kvstore backed by the DB.
	NewStore() kvstore.KVStore

	// Close closes the DB. It is crucial to call it to ensure all pending updates make their way to disk.
	Close() error

	// RequiresGC signals whether the DB needs periodic value log garbage collection.
	RequiresGC() bool

	// GC releases unreferenced value log space.
	GC() error
}

// region badgerDB /////////////////////////////////////////////////////////////////////////////////////////////////////

type badgerDB struct {
	*badger.DB
}

// NewDB returns a new persisting DB object.
func NewDB(dirname string) (DB, error) {
	if err := createDir(dirname); err != nil {
		return nil, errors.Wrap(err, "could not create DB directory")
	}

	opts := badger.DefaultOptions(dirname)
	opts.Logger = nil
	opts.SyncWrites = false
	opts.TableLoadingMode = options.MemoryMap
	opts.ValueLogLoadingMode = options.MemoryMap
	opts.CompactL0OnClose = false
	opts.KeepL0InMemory = false
	opts.VerifyValueChecksum = false
	opts.ZSTDCompressionLevel = 1
	opts.Compression = options.None

	if runtime.GOOS == "windows" {
		opts = opts.WithTruncate(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not open DB")
	}

	return &badgerDB{DB: db}, nil
}

func (db *badgerDB) NewStore() kvstore.KVStore {
	return badgerstore.New(db.DB)
}

func (db *badgerDB) Close() error {
	return db.DB.Close()
}

func (db *badgerDB) RequiresGC() bool {
	return true
}

func (db *badgerDB) GC() error {
	if err := db.RunValueLogGC(valueLogGCDiscardRatio); err != nil {
		return err
	}
	// trigger the go garbage collector to release the used memory
	runtime.GC()

	return nil
}

func createDir(dirname string) error {
	if _, err := os.Stat(dirname); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	return os.MkdirAll(dirname, 0o700)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region memDB ////////////////////////////////////////////////////////////////////////////////////////////////////////

type memDB struct {
	store kvstore.KVStore
}

// NewMemDB returns a new in-memory (not persisted) DB object.
func NewMemDB() DB {
	return &memDB{store: mapdb.NewMapDB()}
}

func (db *memDB) NewStore() kvstore.KVStore {
	return db.store
}

func (db *memDB) Close() error {
	db.store = nil

	return nil
}

func (db *memDB) RequiresGC() bool {
	return false
}

func (db *memDB) GC() error {
	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
