// SPDX-License-Identifier: Apache-2.0

package manifest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

func mustParseManifest(t *testing.T, s string) *manifest.Manifest {
	t.Helper()

	m, err := manifest.ParseManifest(strings.NewReader(s))
	require.NoError(t, err)
	return m
}

func TestDiff(t *testing.T) {
	t.Parallel()

	oldM := mustParseManifest(t, `
pytest>=7.0
coverage==7.4.0
numpy>=1.24
requests==2.31.0
`)
	newM := mustParseManifest(t, `
pytest>=7.0
coverage==7.5.0
numpy>=1.24
httpx==0.27.0
`)

	changes := manifest.Diff(oldM, newM)

	require.Len(t, changes.Added, 1)
	assert.Equal(t, "httpx", changes.Added[0].Name)

	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "requests", changes.Removed[0].Name)

	require.Len(t, changes.Changed, 1)
	assert.Equal(t, "==7.4.0", changes.Changed[0].Old.Specifiers.String())
	assert.Equal(t, "==7.5.0", changes.Changed[0].New.Specifiers.String())

	assert.False(t, changes.IsEmpty())
}

func TestDiffIgnoresOrderAndSpelling(t *testing.T) {
	t.Parallel()

	oldM := mustParseManifest(t, "Scikit_Learn>=1.4,<2.0\npytest\n")
	newM := mustParseManifest(t, "pytest\nscikit-learn <2.0, >=1.4\n")

	changes := manifest.Diff(oldM, newM)
	assert.True(t, changes.IsEmpty())
}

func TestDiffDetectsExtrasAndMarkerChanges(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		oldLine string
		newLine string
	}{
		"extras added":   {oldLine: "uvicorn>=0.30", newLine: "uvicorn[standard]>=0.30"},
		"marker dropped": {oldLine: "tensorflow; python_version < '3.12'", newLine: "tensorflow"},
	} {
		t.Run(name, func(t *testing.T) {
			changes := manifest.Diff(
				mustParseManifest(t, tc.oldLine),
				mustParseManifest(t, tc.newLine),
			)
			assert.Len(t, changes.Changed, 1)
		})
	}
}
