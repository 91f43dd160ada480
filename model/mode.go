package model

import (
	"errors"
	"fmt"
)

// SyncMode controls how existing local files are treated during a sync.
type SyncMode string

const (
	ModeAuto       SyncMode = "auto"        // download only when the local size differs from the remote size
	ModeOverride   SyncMode = "override"    // always download, existing files are replaced
	ModeNoOverride SyncMode = "no_override" // never replace an existing local file
)

var ErrInvalidMode = errors.New("invalid sync mode")

// ParseMode validates a mode string coming from the CLI or the config
// table. Unknown values fail with ErrInvalidMode before any network
// activity happens.
func ParseMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case ModeAuto, ModeOverride, ModeNoOverride:
		return SyncMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (must be one of 'auto', 'override', 'no_override')", ErrInvalidMode, s)
	}
}
