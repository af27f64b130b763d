package cli

import (
	"context"
	"io"

	"cursor-sync/src/config"
	"cursor-sync/src/remote"
	"cursor-sync/src/remote/drive"
)

// newStore builds the remote store from stored credentials. Swapped out by
// tests so commands run against an in-memory store.
var newStore = func(ctx context.Context, cfg config.Config, progressOut io.Writer) (remote.Store, error) {
	ts, err := drive.TokenSource(ctx, cfg.Paths.CredentialsFile, cfg.Paths.TokenFile)
	if err != nil {
		return nil, err
	}
	s, err := drive.New(ctx, ts)
	if err != nil {
		return nil, err
	}
	s.SetProgressWriter(progressOut)
	return s, nil
}

// SetStoreFactoryForTest replaces the store constructor and returns a reset
// function.
func SetStoreFactoryForTest(fn func(context.Context, config.Config, io.Writer) (remote.Store, error)) func() {
	prev := newStore
	newStore = fn
	return func() { newStore = prev }
}
