package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/chronotext/chronotext/corpus"
)

// BadgerIndexes backs all named indexes of one corpus with a single
// BadgerDB. Each index occupies its own key namespace: the index name,
// the delimiter byte, then the structured key. Index names never
// contain the delimiter, so namespaces cannot collide.
type BadgerIndexes struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the index database at path.
func OpenBadger(path string) (*BadgerIndexes, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is too chatty for a library

	// Read-heavy workload: favor block and index caches.
	opts.BlockCacheSize = 128 << 20
	opts.IndexCacheSize = 64 << 20
	opts.DetectConflicts = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerIndexes{db: db}, nil
}

// IndexSet returns the set of all named indexes over this database.
func (b *BadgerIndexes) IndexSet() *IndexSet {
	set := NewIndexSet()
	for _, name := range IndexNames {
		set.Register(name, b.Index(name))
	}
	return set
}

// Index returns access to one named index.
func (b *BadgerIndexes) Index(name string) IndexAccess {
	prefix := append([]byte(name), Delimiter)
	return &badgerIndex{db: b.db, name: name, prefix: prefix}
}

// Put writes an encoded position list. It implements the builder's
// Writer contract.
func (b *BadgerIndexes) Put(index string, key []byte, positions corpus.PositionList) error {
	full := append(append([]byte(index), Delimiter), key...)
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(full, EncodePositions(positions))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s key: %w", index, err)
	}
	return nil
}

// Close closes the underlying database.
func (b *BadgerIndexes) Close() error {
	return b.db.Close()
}

type badgerIndex struct {
	db     *badger.DB
	name   string
	prefix []byte
}

func (x *badgerIndex) Get(key []byte) (corpus.PositionList, bool, error) {
	var list corpus.PositionList
	err := x.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(append(x.prefix[:len(x.prefix):len(x.prefix)], key...))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := DecodePositions(val)
			if err != nil {
				return err
			}
			list = decoded
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("index %s: %w", x.name, err)
	}
	return list, true, nil
}

func (x *badgerIndex) Cursor() (Cursor, error) {
	txn := x.db.NewTransaction(false)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = x.prefix
	opts.PrefetchValues = true
	opts.PrefetchSize = 256

	it := txn.NewIterator(opts)
	return &badgerCursor{
		txn:    txn,
		it:     it,
		prefix: x.prefix,
		start:  x.prefix,
	}, nil
}

func (x *badgerIndex) IndexType() string { return x.name }

// badgerCursor follows the iterator convention used across the tree:
// Seek records a target, the first Next positions the underlying
// iterator, subsequent calls advance it.
type badgerCursor struct {
	txn    *badger.Txn
	it     *badger.Iterator
	prefix []byte
	start  []byte
	live   bool
}

func (c *badgerCursor) SeekToFirst() {
	c.start = c.prefix
	c.live = false
}

func (c *badgerCursor) Seek(key []byte) {
	c.start = append(c.prefix[:len(c.prefix):len(c.prefix)], key...)
	c.live = false
}

func (c *badgerCursor) Next() bool {
	if !c.live {
		c.it.Seek(c.start)
		c.live = true
	} else {
		c.it.Next()
	}
	return c.it.ValidForPrefix(c.prefix)
}

func (c *badgerCursor) Key() []byte {
	return c.it.Item().Key()[len(c.prefix):]
}

func (c *badgerCursor) Value() ([]byte, error) {
	return c.it.Item().ValueCopy(nil)
}

func (c *badgerCursor) Close() error {
	c.it.Close()
	c.txn.Discard()
	return nil
}
