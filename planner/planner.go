// Package planner decides which remote files a sync target needs. It is
// also usable on its own as a preview: the executor re-derives every
// decision at download time, so a preview can disagree with a later run
// when the remote changed in between. That window is accepted, not
// papered over with caching.
package planner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/model"
	"github.com/yangdangfu/ftpsync/remote"
)

// ListCandidates opens a session to the target's remote directory and
// returns the names whose full string matches the target's pattern.
func ListCandidates(ctx context.Context, dialer remote.Dialer, target config.Target) ([]string, error) {
	re, err := target.CompilePattern()
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", target.FilePattern, err)
	}

	client, err := dialer.Dial(ctx, target.Host, target.User, target.Password, target.RemoteDir)
	if err != nil {
		return nil, err
	}
	defer client.Quit()

	names, err := client.NameList()
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, name := range names {
		if re.MatchString(name) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// PlannedFile pairs a candidate name with its decision.
type PlannedFile struct {
	Name     string
	Decision model.SyncDecision
}

// PlanDecisions classifies every candidate of the target into Skip or
// Download under the given mode. The mode is validated before any
// network call is made.
func PlanDecisions(ctx context.Context, dialer remote.Dialer, fs afero.Fs, target config.Target, mode model.SyncMode) ([]PlannedFile, error) {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	re, err := target.CompilePattern()
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", target.FilePattern, err)
	}

	client, err := dialer.Dial(ctx, target.Host, target.User, target.Password, target.RemoteDir)
	if err != nil {
		return nil, err
	}
	defer client.Quit()

	names, err := client.NameList()
	if err != nil {
		return nil, err
	}

	var planned []PlannedFile
	for _, name := range names {
		select {
		case <-ctx.Done():
			return planned, ctx.Err()
		default:
		}

		if !re.MatchString(name) {
			continue
		}
		decision, err := Decide(fs, client, target.LocalPath(name), name, mode)
		if err != nil {
			return planned, err
		}
		planned = append(planned, PlannedFile{Name: name, Decision: decision})
	}
	return planned, nil
}

// Decide classifies one candidate against the current local state and,
// under auto mode only, the remote file size. Decisions are independent
// per file; nothing is cached between calls, so the executor can call
// this again at download time against fresh state.
func Decide(fs afero.Fs, client remote.Client, localPath, name string, mode model.SyncMode) (model.SyncDecision, error) {
	local, err := statLocal(fs, localPath)
	if err != nil {
		return model.SyncDecision{}, err
	}

	switch mode {
	case model.ModeOverride:
		return model.Download(), nil
	case model.ModeNoOverride:
		if local.Exists {
			return model.Skip(model.SkipExists), nil
		}
		return model.Download(), nil
	case model.ModeAuto:
		if !local.Exists {
			return model.Download(), nil
		}
		// The remote size costs one round trip, so it is queried only
		// when a local file actually needs comparing.
		remoteSize, err := client.FileSize(name)
		if err != nil {
			return model.SyncDecision{}, fmt.Errorf("size of %s: %w", name, err)
		}
		if local.Size == remoteSize {
			return model.Skip(model.SkipSizeMatch), nil
		}
		return model.Download(), nil
	default:
		return model.SyncDecision{}, fmt.Errorf("%w: %q", model.ErrInvalidMode, mode)
	}
}

func statLocal(fs afero.Fs, path string) (model.LocalFileState, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.LocalFileState{Path: path}, nil
		}
		return model.LocalFileState{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return model.LocalFileState{Path: path, Exists: true, Size: info.Size()}, nil
}
