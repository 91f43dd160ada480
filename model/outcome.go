package model

type OutcomeStatus int

const (
	OutcomeCommitted OutcomeStatus = iota
	OutcomeFailed
)

// FileOutcome is the journal record for the last download attempt on one
// local path. Records are observational only: the decision logic never
// reads them back.
type FileOutcome struct {
	Status   OutcomeStatus `json:"status"`
	Size     int64         `json:"size"`
	SyncedAt int64         `json:"synced_at"` // unix seconds
	Error    string        `json:"error,omitempty"`
}
