package journal

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/model"
)

var _ Provider = (*BboltJournal)(nil)

type BboltJournal struct {
	db     *bbolt.DB
	bucket string
}

// NewBboltJournal opens (or creates) the journal database and its bucket.
func NewBboltJournal(cfg *config.BboltConfig) (*BboltJournal, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bbolt config: %w", err)
	}

	db, err := bbolt.Open(cfg.Path, cfg.Mode, nil)
	if err != nil {
		return nil, err
	}
	db.NoSync = cfg.NoSync

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cfg.Bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BboltJournal{
		db:     db,
		bucket: cfg.Bucket,
	}, nil
}

func (j *BboltJournal) Close() error {
	return j.db.Close()
}

func (j *BboltJournal) Record(path string, outcome model.FileOutcome) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		blob, err := json.Marshal(outcome)
		if err != nil {
			return fmt.Errorf("marshal outcome for %s: %w", path, err)
		}
		return b.Put([]byte(path), blob)
	})
}

func (j *BboltJournal) Get(path string) (*model.FileOutcome, error) {
	var outcome *model.FileOutcome

	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		blob := b.Get([]byte(path))
		if blob == nil {
			return ErrNotFound
		}
		outcome = &model.FileOutcome{}
		return json.Unmarshal(blob, outcome)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (j *BboltJournal) Dump() (map[string]model.FileOutcome, error) {
	out := make(map[string]model.FileOutcome)

	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		return b.ForEach(func(k, v []byte) error {
			var outcome model.FileOutcome
			if err := json.Unmarshal(v, &outcome); err != nil {
				return fmt.Errorf("unmarshal outcome for %s: %w", string(k), err)
			}
			out[string(k)] = outcome
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
