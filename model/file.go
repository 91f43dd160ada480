package model

// RemoteFileEntry is one name from the remote directory listing. The
// listing itself does not report sizes, so Size is filled lazily and only
// when the decision policy needs it.
type RemoteFileEntry struct {
	Name string
	Size int64
}

// LocalFileState is the state of a local target path, read from the
// filesystem at decision time. It is never cached across decisions
// because the remote may change between listing and download.
type LocalFileState struct {
	Path   string
	Exists bool
	Size   int64
}

// DecisionKind says whether a candidate file is fetched or left alone.
type DecisionKind int

const (
	DecisionDownload DecisionKind = iota
	DecisionSkip
)

// SkipReason explains why a candidate was not downloaded.
type SkipReason string

const (
	SkipExists    SkipReason = "exists"     // no_override: the local file already exists
	SkipSizeMatch SkipReason = "size-match" // auto: local and remote sizes are equal
)

// SyncDecision is the per-file classification produced by the planner.
type SyncDecision struct {
	Kind   DecisionKind
	Reason SkipReason // set only for skips
}

func Download() SyncDecision { return SyncDecision{Kind: DecisionDownload} }

func Skip(reason SkipReason) SyncDecision {
	return SyncDecision{Kind: DecisionSkip, Reason: reason}
}
