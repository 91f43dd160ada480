package journal

import (
	"errors"
	"fmt"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/model"
)

// Provider records per-file download outcomes keyed by local path. The
// journal exists for post-hoc inspection of failed transfers; the sync
// decision logic never reads it back.
type Provider interface {
	Record(path string, outcome model.FileOutcome) error
	Get(path string) (*model.FileOutcome, error)
	Dump() (map[string]model.FileOutcome, error)
	Close() error
}

var (
	ErrNotFound       = errors.New("journal entry not found")
	ErrBucketNotFound = errors.New("journal bucket not found")
)

// Create builds a provider from configuration. A disabled journal yields
// the no-op provider so callers never need a nil check.
func Create(cfg *config.JournalConfig) (Provider, error) {
	if cfg == nil || !cfg.Enabled {
		return NewNoOp(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal configuration: %w", err)
	}
	return NewBboltJournal(cfg.Bbolt)
}

// NoOp discards every record.
type NoOp struct{}

func NewNoOp() *NoOp { return &NoOp{} }

func (n *NoOp) Record(path string, outcome model.FileOutcome) error { return nil }
func (n *NoOp) Get(path string) (*model.FileOutcome, error)         { return nil, ErrNotFound }
func (n *NoOp) Dump() (map[string]model.FileOutcome, error) {
	return map[string]model.FileOutcome{}, nil
}
func (n *NoOp) Close() error { return nil }
