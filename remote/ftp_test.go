package remote

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Integration tests against a live FTP server; they skip unless the
// FTP_TEST_* environment variables point at one.
func testServerEnv(t *testing.T) (host, user, password, dir string) {
	t.Helper()
	host = os.Getenv("FTP_TEST_HOST")
	if host == "" {
		t.Skip("Skipping test because FTP_TEST_HOST environment variable is not set")
	}
	return host, os.Getenv("FTP_TEST_USER"), os.Getenv("FTP_TEST_PASSWORD"), os.Getenv("FTP_TEST_DIR")
}

func TestFTPDialer_DialAndList(t *testing.T) {
	host, user, password, dir := testServerEnv(t)

	dialer := NewFTPDialer(30, 0)
	client, err := dialer.Dial(context.Background(), host, user, password, dir)
	require.NoError(t, err)
	defer client.Quit()

	names, err := client.NameList()
	require.NoError(t, err)
	require.NotNil(t, names)
}

func TestFTPDialer_Retrieve(t *testing.T) {
	host, user, password, dir := testServerEnv(t)
	name := os.Getenv("FTP_TEST_FILE")
	if name == "" {
		t.Skip("Skipping test because FTP_TEST_FILE environment variable is not set")
	}

	dialer := NewFTPDialer(30, 2)
	client, err := dialer.Dial(context.Background(), host, user, password, dir)
	require.NoError(t, err)
	defer client.Quit()

	size, err := client.FileSize(name)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, client.Retrieve(name, &buf))
	require.Equal(t, size, int64(buf.Len()))
}

func TestFTPDialer_BadHost(t *testing.T) {
	dialer := NewFTPDialer(1, 0)

	_, err := dialer.Dial(context.Background(), "invalid.host.example.invalid", "", "", "")
	require.ErrorIs(t, err, ErrConnect)
}
