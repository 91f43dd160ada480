package remote

import (
	"context"
	"errors"
	"io"
)

// Client is one authenticated FTP session, already positioned inside the
// target's remote directory.
type Client interface {
	// NameList returns the entries of the current remote directory.
	NameList() ([]string, error)
	// FileSize reports the size in bytes of a file in the current directory.
	FileSize(name string) (int64, error)
	// Retrieve streams the file's binary content into sink.
	Retrieve(name string, sink io.Writer) error
	// Quit closes the session.
	Quit() error
}

// Dialer opens sessions. The executor re-dials mid-run after a transfer
// failure, so it holds a Dialer rather than a single Client.
type Dialer interface {
	Dial(ctx context.Context, host, user, password, dir string) (Client, error)
}

// ErrConnect marks a failure to establish a session: dialing the server,
// logging in, or changing into the remote directory. A run that cannot
// open its session fails with this error; it is never retried.
var ErrConnect = errors.New("ftp connect failed")
