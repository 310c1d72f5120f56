// SPDX-License-Identifier: Apache-2.0

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfu/reqbench/internal/testutils"
	"github.com/gabrielfu/reqbench/pkg/benchreport"
	"github.com/gabrielfu/reqbench/pkg/store"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		// the store has already been initialized once by the test helper
		ok, err := st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		// initializing again should not fail
		require.NoError(t, st.Init(ctx))

		ok, err = st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestIsInitializedOnFreshDatabase(t *testing.T) {
	t.Parallel()

	testutils.WithUninitializedStore(t, func(st *store.Store) {
		ctx := context.Background()

		ok, err := st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRecordAndGetRun(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		run := testRun(t,
			testReport("checkout", benchreport.ModeLocal),
			testReport("checkout", benchreport.ModeRemote),
		)

		require.NoError(t, st.RecordRun(ctx, run))

		got, err := st.GetRun(ctx, run.ID)
		require.NoError(t, err)

		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, run.GitSHA, got.GitSHA)
		assert.Equal(t, run.Source, got.Source)
		assert.True(t, run.RecordedAt.Equal(got.RecordedAt))
		assert.Equal(t, run.Reports, got.Reports)
	})
}

func TestRecordRunWithDuplicateIDFails(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		run := testRun(t, testReport("checkout", benchreport.ModeLocal))
		require.NoError(t, st.RecordRun(ctx, run))

		err := st.RecordRun(ctx, run)
		assert.ErrorIs(t, err, store.RunAlreadyExistsError{ID: run.ID})
	})
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		id := uuid.New()
		_, err := st.GetRun(ctx, id)
		assert.ErrorIs(t, err, store.RunNotFoundError{ID: id})
	})
}

func TestLatestRun(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		_, err := st.LatestRun(ctx)
		assert.ErrorIs(t, err, store.ErrNoRuns)

		older := testRun(t, testReport("checkout", benchreport.ModeLocal))
		older.RecordedAt = older.RecordedAt.Add(-time.Hour)
		newer := testRun(t, testReport("checkout", benchreport.ModeLocal))

		require.NoError(t, st.RecordRun(ctx, older))
		require.NoError(t, st.RecordRun(ctx, newer))

		got, err := st.LatestRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
	})
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		var ids []uuid.UUID
		for i := 0; i < 3; i++ {
			run := testRun(t, testReport("checkout", benchreport.ModeLocal))
			run.RecordedAt = run.RecordedAt.Add(time.Duration(i) * time.Minute)
			require.NoError(t, st.RecordRun(ctx, run))
			ids = append(ids, run.ID)
		}

		// descending recorded_at order
		summaries, err := st.ListRuns(ctx, 0)
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, ids[2], summaries[0].ID)
		assert.Equal(t, ids[0], summaries[2].ID)
		assert.Equal(t, 1, summaries[0].Reports)

		summaries, err = st.ListRuns(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, summaries, 2)
	})
}

func TestDeleteRun(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		run := testRun(t, testReport("checkout", benchreport.ModeLocal))
		require.NoError(t, st.RecordRun(ctx, run))
		require.NoError(t, st.DeleteRun(ctx, run.ID))

		_, err := st.GetRun(ctx, run.ID)
		assert.ErrorIs(t, err, store.RunNotFoundError{ID: run.ID})

		// deleting again fails
		err = st.DeleteRun(ctx, run.ID)
		assert.ErrorIs(t, err, store.RunNotFoundError{ID: run.ID})
	})
}

func TestReportHistory(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		var ids []uuid.UUID
		for i := 0; i < 3; i++ {
			run := testRun(t,
				testReport("checkout", benchreport.ModeLocal),
				testReport("search", benchreport.ModeLocal),
			)
			run.RecordedAt = run.RecordedAt.Add(time.Duration(i) * time.Minute)
			require.NoError(t, st.RecordRun(ctx, run))
			ids = append(ids, run.ID)
		}

		// ascending recorded_at order
		entries, err := st.ReportHistory(ctx, "checkout", benchreport.ModeLocal, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, ids[0], entries[0].RunID)
		assert.Equal(t, ids[2], entries[2].RunID)
		assert.Equal(t, "checkout", entries[0].Report.Target)

		// a limit keeps the most recent entries, still ascending
		entries, err = st.ReportHistory(ctx, "checkout", benchreport.ModeLocal, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, ids[1], entries[0].RunID)
		assert.Equal(t, ids[2], entries[1].RunID)

		// unknown series yields an empty history, not an error
		entries, err = st.ReportHistory(ctx, "unknown", benchreport.ModeRemote, 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	testutils.WithStoreInContainer(t, func(st *store.Store, db *sql.DB) {
		ctx := context.Background()

		status, err := st.Status(ctx)
		require.NoError(t, err)
		assert.True(t, status.Initialized)
		assert.Equal(t, "reqbench", status.Schema)
		assert.Equal(t, "development", status.Version)
		assert.Equal(t, 0, status.Runs)
		assert.Nil(t, status.LatestRun)

		run := testRun(t, testReport("checkout", benchreport.ModeLocal))
		require.NoError(t, st.RecordRun(ctx, run))
		require.NoError(t, st.SetBaseline(ctx, "checkout", benchreport.ModeLocal, run.ID))

		status, err = st.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, status.Runs)
		assert.Equal(t, 1, status.Baselines)
		require.NotNil(t, status.LatestRun)
		assert.Equal(t, run.ID, status.LatestRun.ID)
	})
}

func TestStatusOnUninitializedStore(t *testing.T) {
	t.Parallel()

	testutils.WithUninitializedStore(t, func(st *store.Store) {
		ctx := context.Background()

		status, err := st.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.Initialized)
		assert.Equal(t, 0, status.Runs)
	})
}

func TestVersionCompatibility(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		ctx := context.Background()

		tests := map[string]struct {
			binaryVersion string
			schemaVersion string
			want          store.VersionCompatibility
		}{
			"development binary skips the check": {
				binaryVersion: "development",
				schemaVersion: "1.0.0",
				want:          store.VersionCompatCheckSkipped,
			},
			"development schema skips the check": {
				binaryVersion: "1.0.0",
				schemaVersion: "development",
				want:          store.VersionCompatCheckSkipped,
			},
			"equal versions": {
				binaryVersion: "1.2.0",
				schemaVersion: "1.2.0",
				want:          store.VersionCompatVersionSchemaEqual,
			},
			"older schema": {
				binaryVersion: "1.2.0",
				schemaVersion: "1.1.0",
				want:          store.VersionCompatVersionSchemaOlder,
			},
			"newer schema": {
				binaryVersion: "1.1.0",
				schemaVersion: "1.2.0",
				want:          store.VersionCompatVersionSchemaNewer,
			},
			"invalid schema version skips the check": {
				binaryVersion: "1.1.0",
				schemaVersion: "not-a-version",
				want:          store.VersionCompatCheckSkipped,
			},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				schema := "reqbench_" + uuid.NewString()[:8]

				initStore, err := store.New(ctx, connStr, schema, store.WithVersion(tt.schemaVersion))
				require.NoError(t, err)
				defer initStore.Close()
				require.NoError(t, initStore.Init(ctx))

				st, err := store.New(ctx, connStr, schema, store.WithVersion(tt.binaryVersion))
				require.NoError(t, err)
				defer st.Close()

				compat, err := st.VersionCompatibility(ctx)
				require.NoError(t, err)
				assert.Equal(t, tt.want, compat)
			})
		}
	})
}

func TestVersionCompatibilityOnUninitializedStore(t *testing.T) {
	t.Parallel()

	testutils.WithUninitializedStore(t, func(st *store.Store) {
		ctx := context.Background()

		compat, err := st.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, store.VersionCompatCheckSkipped, compat)
	})
}

// testReport builds a small valid report for a (target, mode) pair.
func testReport(target string, mode benchreport.Mode) benchreport.Report {
	return benchreport.Report{
		Target:     target,
		Mode:       mode,
		Requests:   1000,
		Rate:       100.02,
		Throughput: 99.87,
		Duration: benchreport.DurationBreakdown{
			Total:  10 * time.Second,
			Attack: 9990 * time.Millisecond,
			Wait:   10 * time.Millisecond,
		},
		Latencies: benchreport.LatencyMetrics{
			Min:  2 * time.Millisecond,
			Mean: 8 * time.Millisecond,
			P50:  7 * time.Millisecond,
			P90:  12 * time.Millisecond,
			P95:  15 * time.Millisecond,
			P99:  24 * time.Millisecond,
			Max:  80 * time.Millisecond,
		},
		BytesIn:     benchreport.ByteMetrics{Total: 1024000, Mean: 1024},
		BytesOut:    benchreport.ByteMetrics{Total: 512000, Mean: 512},
		Success:     1.0,
		StatusCodes: map[string]int{"200": 1000},
	}
}

// testRun builds a valid run around the given reports. RecordedAt is
// truncated to microseconds to survive the round trip through timestamptz.
func testRun(t *testing.T, reports ...benchreport.Report) *benchreport.Run {
	t.Helper()

	run := benchreport.NewRun(reports)
	run.RecordedAt = run.RecordedAt.Truncate(time.Microsecond)
	run.GitSHA = "0123456789abcdef0123456789abcdef01234567"
	run.Source = "ci"

	return run
}
