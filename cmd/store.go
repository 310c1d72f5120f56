// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabrielfu/reqbench/cmd/flags"
	"github.com/gabrielfu/reqbench/pkg/store"
)

// NewStore opens a connection to the run store using the persistent flags.
func NewStore(ctx context.Context) (*store.Store, error) {
	return store.New(ctx, flags.PostgresURL(), flags.StoreSchema(),
		store.WithVersion(Version),
		store.WithLockTimeoutMs(flags.LockTimeout()),
		store.WithLogger(store.NewLogger()),
	)
}

// NewStoreWithInitCheck opens the run store and fails if it has not been
// initialized or was initialized by a newer reqbench version.
func NewStoreWithInitCheck(ctx context.Context) (*store.Store, error) {
	st, err := NewStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := EnsureInitialized(ctx, st); err != nil {
		st.Close()
		return nil, err
	}

	compat, err := st.VersionCompatibility(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check version compatibility: %w", err)
	}
	if compat == store.VersionCompatVersionSchemaNewer {
		st.Close()
		return nil, store.ErrStoreSchemaNewer
	}

	return st, nil
}

// EnsureInitialized returns an error if the store has not been initialized.
func EnsureInitialized(ctx context.Context, st *store.Store) error {
	ok, err := st.IsInitialized(ctx)
	if err != nil {
		return errors.Join(errStoreNotInitialized, err)
	}
	if !ok {
		return errStoreNotInitialized
	}
	return nil
}
