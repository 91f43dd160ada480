package planner

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/model"
	"github.com/yangdangfu/ftpsync/remote"
)

// fakeClient implements remote.Client against in-memory listings, so the
// planner can be exercised without a live server.
type fakeClient struct {
	names     []string
	sizes     map[string]int64
	sizeCalls int
	listErr   error
	quitCalls int
}

func (f *fakeClient) NameList() ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.names, nil
}

func (f *fakeClient) FileSize(name string) (int64, error) {
	f.sizeCalls++
	size, ok := f.sizes[name]
	if !ok {
		return 0, fmt.Errorf("550 %s: no such file", name)
	}
	return size, nil
}

func (f *fakeClient) Retrieve(name string, sink io.Writer) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeClient) Quit() error {
	f.quitCalls++
	return nil
}

type fakeDialer struct {
	client    *fakeClient
	dialCount int
	err       error
}

func (f *fakeDialer) Dial(ctx context.Context, host, user, password, dir string) (remote.Client, error) {
	f.dialCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func testTarget(pattern string) config.Target {
	return config.Target{
		Host:        "ftp.example.com",
		RemoteDir:   "Datasets/cpc_global_temp",
		LocalRoot:   "/data/ncep",
		FilePattern: pattern,
	}
}

func TestListCandidates_FullMatchOnly(t *testing.T) {
	client := &fakeClient{
		names: []string{"tmax.1999.nc", "tmax.abcd.nc", "readme.txt", "xtmax.1999.nc"},
	}
	dialer := &fakeDialer{client: client}

	candidates, err := ListCandidates(context.Background(), dialer, testTarget(`^tmax\.\d{4}\.nc$`))
	require.NoError(t, err)
	require.Equal(t, []string{"tmax.1999.nc"}, candidates)
	require.Equal(t, 1, client.quitCalls)
}

func TestListCandidates_ConnectError(t *testing.T) {
	dialer := &fakeDialer{err: fmt.Errorf("%w: login failed", remote.ErrConnect)}

	_, err := ListCandidates(context.Background(), dialer, testTarget(".+"))
	require.ErrorIs(t, err, remote.ErrConnect)
}

func TestListCandidates_BadPattern(t *testing.T) {
	dialer := &fakeDialer{client: &fakeClient{}}

	_, err := ListCandidates(context.Background(), dialer, testTarget("[unclosed"))
	require.Error(t, err)
	// The pattern is rejected before anything is dialed.
	require.Zero(t, dialer.dialCount)
}

func TestPlanDecisions_NoOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/ncep/tmax.1999.nc", []byte("old"), 0644))

	client := &fakeClient{names: []string{"tmax.1999.nc", "tmax.2000.nc"}}
	dialer := &fakeDialer{client: client}

	planned, err := PlanDecisions(context.Background(), dialer, fs, testTarget(`tmax\.\d{4}\.nc`), model.ModeNoOverride)
	require.NoError(t, err)
	require.Len(t, planned, 2)

	require.Equal(t, model.Skip(model.SkipExists), planned[0].Decision)
	require.Equal(t, model.Download(), planned[1].Decision)
	// no_override never needs the remote size.
	require.Zero(t, client.sizeCalls)
}

func TestPlanDecisions_Auto(t *testing.T) {
	tests := []struct {
		name       string
		localSize  int
		remoteSize int64
		expected   model.SyncDecision
	}{
		{name: "sizes equal", localSize: 1000, remoteSize: 1000, expected: model.Skip(model.SkipSizeMatch)},
		{name: "local smaller", localSize: 900, remoteSize: 1000, expected: model.Download()},
		{name: "local larger", localSize: 1100, remoteSize: 1000, expected: model.Download()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/data/ncep/precip.2020.nc", make([]byte, tt.localSize), 0644))

			client := &fakeClient{
				names: []string{"precip.2020.nc"},
				sizes: map[string]int64{"precip.2020.nc": tt.remoteSize},
			}
			dialer := &fakeDialer{client: client}

			planned, err := PlanDecisions(context.Background(), dialer, fs, testTarget(`precip\.\d{4}\.nc`), model.ModeAuto)
			require.NoError(t, err)
			require.Len(t, planned, 1)
			require.Equal(t, tt.expected, planned[0].Decision)
		})
	}
}

func TestPlanDecisions_AutoMissingLocalSkipsSizeQuery(t *testing.T) {
	fs := afero.NewMemMapFs()
	client := &fakeClient{names: []string{"precip.2020.nc"}}
	dialer := &fakeDialer{client: client}

	planned, err := PlanDecisions(context.Background(), dialer, fs, testTarget(`precip\.\d{4}\.nc`), model.ModeAuto)
	require.NoError(t, err)
	require.Equal(t, model.Download(), planned[0].Decision)
	// The file is absent locally, so no size round trip happens.
	require.Zero(t, client.sizeCalls)
}

func TestPlanDecisions_Override(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/ncep/tmax.1999.nc", make([]byte, 1000), 0644))

	client := &fakeClient{
		names: []string{"tmax.1999.nc"},
		sizes: map[string]int64{"tmax.1999.nc": 1000},
	}
	dialer := &fakeDialer{client: client}

	planned, err := PlanDecisions(context.Background(), dialer, fs, testTarget(`tmax\.\d{4}\.nc`), model.ModeOverride)
	require.NoError(t, err)
	require.Equal(t, model.Download(), planned[0].Decision)
	require.Zero(t, client.sizeCalls)
}

func TestPlanDecisions_InvalidModeBeforeDial(t *testing.T) {
	dialer := &fakeDialer{client: &fakeClient{}}

	_, err := PlanDecisions(context.Background(), dialer, afero.NewMemMapFs(), testTarget(".+"), model.SyncMode("force"))
	require.ErrorIs(t, err, model.ErrInvalidMode)
	require.Zero(t, dialer.dialCount)
}

func TestPlanDecisions_SizeProbeFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/ncep/tmax.1999.nc", make([]byte, 10), 0644))

	client := &fakeClient{names: []string{"tmax.1999.nc"}} // no size registered
	dialer := &fakeDialer{client: client}

	_, err := PlanDecisions(context.Background(), dialer, fs, testTarget(`tmax\.\d{4}\.nc`), model.ModeAuto)
	require.Error(t, err)
	require.Contains(t, err.Error(), "size of tmax.1999.nc")
}
