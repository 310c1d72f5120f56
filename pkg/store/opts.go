// SPDX-License-Identifier: Apache-2.0

package store

type StoreOpt func(s *Store)

// WithVersion sets the version of `reqbench` that is constructing the Store
// instance
func WithVersion(version string) StoreOpt {
	return func(s *Store) {
		s.reqbenchVersion = version
	}
}

// WithLockTimeoutMs sets the lock_timeout for the store's connection
func WithLockTimeoutMs(lockTimeoutMs int) StoreOpt {
	return func(s *Store) {
		s.lockTimeoutMs = lockTimeoutMs
	}
}

// WithLogger sets the logger used to report store operations
func WithLogger(logger Logger) StoreOpt {
	return func(s *Store) {
		s.logger = logger
	}
}
