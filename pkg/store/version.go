// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/mod/semver"

	"github.com/gabrielfu/reqbench/pkg/db"
)

// VersionCompatibility represents the result of comparing reqbench binary and
// store schema versions
type VersionCompatibility int

const (
	VersionCompatCheckSkipped VersionCompatibility = iota
	VersionCompatVersionSchemaOlder
	VersionCompatVersionSchemaEqual
	VersionCompatVersionSchemaNewer
)

// VersionCompatibility compares the reqbench version that was used to
// initialize the `Store` instance with the version of the store schema.
func (s *Store) VersionCompatibility(ctx context.Context) (VersionCompatibility, error) {
	reqbenchVersion := s.reqbenchVersion

	// Development versions of reqbench are not checked for compatibility
	if reqbenchVersion == "development" {
		return VersionCompatCheckSkipped, nil
	}

	// Only perform compatibility check if the store is initialized
	ok, err := s.IsInitialized(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check initialization status: %w", err)
	}
	if !ok {
		return VersionCompatCheckSkipped, nil
	}

	// Get the reqbench version that was used to initialize the store schema
	schemaVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get stored version: %w", err)
	}

	// Store schemas created by development versions of reqbench are not
	// checked for compatibility.
	if schemaVersion == "" || schemaVersion == "development" {
		return VersionCompatCheckSkipped, nil
	}

	// Ensure both versions have the 'v' prefix for compatibility with Go's
	// semver package
	schemaVersion = ensureVPrefix(schemaVersion)
	reqbenchVersion = ensureVPrefix(reqbenchVersion)

	// If either the schema version or the reqbench version is invalid, do not
	// make any assumptions about compatibility
	if !semver.IsValid(schemaVersion) || !semver.IsValid(reqbenchVersion) {
		return VersionCompatCheckSkipped, nil
	}

	// Canonicalize both versions to ensure they are in the correct format
	schemaVersion = semver.Canonical(schemaVersion)
	reqbenchVersion = semver.Canonical(reqbenchVersion)

	// Compare versions
	cmp := semver.Compare(schemaVersion, reqbenchVersion)
	if cmp < 0 {
		return VersionCompatVersionSchemaOlder, nil
	}
	if cmp > 0 {
		return VersionCompatVersionSchemaNewer, nil
	}

	return VersionCompatVersionSchemaEqual, nil
}

// SchemaVersion retrieves the version stored in the reqbench_version table.
// It returns the empty string when no version has been recorded.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	query := fmt.Sprintf("SELECT version FROM %s.reqbench_version ORDER BY initialized_at DESC LIMIT 1",
		pq.QuoteIdentifier(s.schema))

	rows, err := s.pgConn.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}

	var version string
	if err := db.ScanFirstValue(rows, &version); err != nil {
		return "", err
	}

	return version, nil
}

// Ensure that the given version string starts with 'v' to ensure compatibility
// with the`golang.org/x/mod/semver` package
func ensureVPrefix(version string) string {
	if len(version) > 0 && version[0] != 'v' {
		return "v" + version
	}
	return version
}
