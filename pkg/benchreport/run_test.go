// SPDX-License-Identifier: Apache-2.0

package benchreport_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfu/reqbench/internal/jsonschema"
	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

func validRun() *benchreport.Run {
	return &benchreport.Run{
		ID:         uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"),
		RecordedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		GitSHA:     "0123abc4567def8901abc2345def6789abcdef01",
		Source:     "benchmarks/results.txt",
		Attack: &benchreport.AttackSpec{
			Rate:        50,
			Duration:    time.Minute,
			Connections: 10,
			Targets:     []string{"GET http://localhost:8080/ping"},
		},
		Reports: []benchreport.Report{*validReport()},
	}
}

func TestRunValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validRun().Validate())
}

func TestRunValidateViolations(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		mutate func(*benchreport.Run)
		reason string
	}{
		"missing id": {
			mutate: func(r *benchreport.Run) { r.ID = uuid.Nil },
			reason: "id",
		},
		"no reports": {
			mutate: func(r *benchreport.Run) { r.Reports = nil },
			reason: "no reports",
		},
		"duplicate target and mode": {
			mutate: func(r *benchreport.Run) { r.Reports = append(r.Reports, r.Reports[0]) },
			reason: "duplicate report",
		},
		"invalid nested report": {
			mutate: func(r *benchreport.Run) { r.Reports[0].Success = 3 },
			reason: "outside [0, 1]",
		},
	} {
		t.Run(name, func(t *testing.T) {
			run := validRun()
			tc.mutate(run)

			err := run.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestRunLookupReport(t *testing.T) {
	t.Parallel()

	run := validRun()

	report := run.Report("gin", benchreport.ModeLocal)
	require.NotNil(t, report)
	assert.Equal(t, "gin", report.Target)

	assert.Nil(t, run.Report("gin", benchreport.ModeRemote))
	assert.Nil(t, run.Report("fiber", benchreport.ModeLocal))
}

func TestRunEncodeJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, validRun().Encode(&buf, benchreport.JSONRunFormat))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", decoded["id"])

	// durations encode as nanosecond integers
	attack := decoded["attack"].(map[string]any)
	assert.Equal(t, float64(time.Minute), attack["duration"])
}

func TestRunEncodeKeepsUnansweredRequestsValid(t *testing.T) {
	t.Parallel()

	// Requests that never got a response are counted under status code 0.
	run := validRun()
	run.Reports[0].StatusCodes = map[string]int{"0": 30, "200": 2970}
	require.NoError(t, run.Validate())

	var buf bytes.Buffer
	require.NoError(t, run.Encode(&buf, benchreport.JSONRunFormat))
	require.NoError(t, jsonschema.ValidateRun(buf.Bytes()))
}

func TestRunEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	run := validRun()

	for name, format := range map[string]benchreport.RunFormat{
		"json": benchreport.JSONRunFormat,
		"yaml": benchreport.YAMLRunFormat,
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, run.Encode(&buf, format))

			decoded, err := benchreport.DecodeRun(buf.Bytes(), "."+format.Extension())
			require.NoError(t, err)
			assert.Equal(t, run, decoded)
		})
	}
}

func TestReadRunFile(t *testing.T) {
	t.Parallel()

	var jsonBuf, yamlBuf bytes.Buffer
	require.NoError(t, validRun().Encode(&jsonBuf, benchreport.JSONRunFormat))
	require.NoError(t, validRun().Encode(&yamlBuf, benchreport.YAMLRunFormat))

	fsys := fstest.MapFS{
		"runs/run.json": &fstest.MapFile{Data: jsonBuf.Bytes()},
		"runs/run.yaml": &fstest.MapFile{Data: yamlBuf.Bytes()},
		"runs/run.txt":  &fstest.MapFile{Data: []byte("not a run file")},
	}

	for _, name := range []string{"runs/run.json", "runs/run.yaml"} {
		t.Run(name, func(t *testing.T) {
			run, err := benchreport.ReadRunFile(fsys, name)
			require.NoError(t, err)
			assert.Equal(t, validRun(), run)
		})
	}

	_, err := benchreport.ReadRunFile(fsys, "runs/run.txt")
	require.ErrorIs(t, err, benchreport.ErrInvalidRunFormat)
}

func TestAttackSpecMaxWorkers(t *testing.T) {
	t.Parallel()

	// explicit null means unlimited workers, absent means tool default
	spec := &benchreport.AttackSpec{MaxWorkers: nullable.NewNullNullable[uint64]()}
	out, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"max_workers":null`)

	var decoded benchreport.AttackSpec
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.True(t, decoded.MaxWorkers.IsNull())

	require.NoError(t, json.Unmarshal([]byte(`{}`), &decoded))

	set := &benchreport.AttackSpec{MaxWorkers: nullable.NewNullableWithValue[uint64](256)}
	out, err = json.Marshal(set)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"max_workers":256`)
}
