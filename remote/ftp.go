package remote

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"
	"golang.org/x/time/rate"
)

const defaultFTPPort = 21

var (
	_ Client = (*ftpClient)(nil)
	_ Dialer = (*FTPDialer)(nil)
)

// FTPDialer opens plain FTP sessions. An optional request throttle is
// shared by every session the dialer opens, so the per-second request
// budget holds across reconnects.
type FTPDialer struct {
	timeout time.Duration
	limiter *rate.Limiter
}

// NewFTPDialer creates a dialer. maxRPS <= 0 disables throttling.
func NewFTPDialer(timeoutSeconds, maxRPS int) *FTPDialer {
	var limiter *rate.Limiter
	if maxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxRPS), maxRPS) // burst = maxRPS
	}
	return &FTPDialer{
		timeout: time.Duration(timeoutSeconds) * time.Second,
		limiter: limiter,
	}
}

// Dial connects, authenticates and changes into dir. Any failure along
// the way is reported as ErrConnect. An empty user falls back to
// anonymous login, matching common public data servers.
func (d *FTPDialer) Dial(ctx context.Context, host, user, password, dir string) (Client, error) {
	addr := fmt.Sprintf("%s:%d", host, defaultFTPPort)

	conn, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(d.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnect, addr, err)
	}

	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err := conn.Login(user, password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("%w: login %s@%s: %v", ErrConnect, user, host, err)
	}

	if dir != "" {
		if err := conn.ChangeDir(dir); err != nil {
			conn.Quit()
			return nil, fmt.Errorf("%w: cwd %s on %s: %v", ErrConnect, dir, host, err)
		}
	}

	return &ftpClient{ctx: ctx, conn: conn, limiter: d.limiter}, nil
}

type ftpClient struct {
	ctx     context.Context
	conn    *ftp.ServerConn
	limiter *rate.Limiter
}

func (c *ftpClient) wait() error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(c.ctx)
}

func (c *ftpClient) NameList() ([]string, error) {
	if err := c.wait(); err != nil {
		return nil, err
	}
	return c.conn.NameList("")
}

func (c *ftpClient) FileSize(name string) (int64, error) {
	if err := c.wait(); err != nil {
		return 0, err
	}
	return c.conn.FileSize(name)
}

func (c *ftpClient) Retrieve(name string, sink io.Writer) error {
	if err := c.wait(); err != nil {
		return err
	}
	resp, err := c.conn.Retr(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(sink, resp); err != nil {
		resp.Close()
		return err
	}
	// Close reads the transfer completion reply; a truncated transfer
	// surfaces here.
	return resp.Close()
}

func (c *ftpClient) Quit() error {
	return c.conn.Quit()
}
