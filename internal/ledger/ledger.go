// Package ledger keeps the run history in an embedded bolt database.
package ledger

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/talkincode/perfinsight/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var runsBucket = []byte("runs")

// Ledger is an append-only record of pipeline runs keyed by run ID.
type Ledger struct {
	db *bolt.DB
}

// Open opens or creates the ledger file.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create ledger dir for %s", path)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init ledger bucket")
	}
	return &Ledger{db: db}, nil
}

// Append stores one run record.
func (l *Ledger) Append(rec *domain.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode run record")
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(rec.ID))
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put(key, data)
	})
}

// List returns all run records in key (run ID) order.
func (l *Ledger) List() ([]domain.RunRecord, error) {
	var out []domain.RunRecord
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(_, v []byte) error {
			var rec domain.RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return out, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
