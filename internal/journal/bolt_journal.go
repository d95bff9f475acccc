package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	outcomeBucket = "outcomes"
	keyBytes      = 16
)

// boltJournal implements a Journal backed by BoltDB. Keys are the record time
// in nanoseconds followed by the bucket sequence, so cursor order is time order.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Journal.
func openBolt(path string, opts Options) (Journal, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(outcomeBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	j.lastCleanup.Store(j.now().Unix())
	return j, nil
}

// Close closes the BoltDB journal.
func (b *boltJournal) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores e, stamping At and ExpiresAt when unset.
func (b *boltJournal) Record(e Entry) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if e.At.IsZero() {
		e.At = now
	}
	if e.ExpiresAt.IsZero() {
		e.ExpiresAt = e.At.Add(b.ttl)
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, keyBytes)
		binary.BigEndian.PutUint64(key[:8], uint64(e.At.UnixNano()))
		binary.BigEndian.PutUint64(key[8:], seq)
		return bucket.Put(key, value)
	})
}

// Recent returns up to limit unexpired entries, newest first. A limit <= 0 returns all.
func (b *boltJournal) Recent(limit int) ([]Entry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var out []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			e, ok := decodeEntry(v)
			if !ok || !e.ExpiresAt.After(now) {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltJournal) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			e, ok := decodeEntry(v)
			if !ok || !e.ExpiresAt.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func decodeEntry(value []byte) (Entry, bool) {
	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}
