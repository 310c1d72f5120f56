// SPDX-License-Identifier: Apache-2.0

package manifest_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

const testManifest = `# Test environment dependencies
pytest>=7.0
coverage==7.4.0

-r extra-requirements.txt
uvicorn[standard]>=0.30  # ASGI server for the gateway tests
tensorflow<2.16; python_version < '3.12'
`

func TestParseManifest(t *testing.T) {
	t.Parallel()

	m, err := manifest.ParseManifest(strings.NewReader(testManifest))
	require.NoError(t, err)
	require.Len(t, m.Lines, 7)

	assert.IsType(t, &manifest.Comment{}, m.Lines[0])
	assert.IsType(t, &manifest.Requirement{}, m.Lines[1])
	assert.IsType(t, &manifest.Requirement{}, m.Lines[2])
	assert.IsType(t, &manifest.Blank{}, m.Lines[3])
	assert.IsType(t, &manifest.Option{}, m.Lines[4])

	reqs := m.Requirements()
	require.Len(t, reqs, 4)
	assert.Equal(t, "pytest", reqs[0].Name)
	assert.Equal(t, 2, reqs[0].Line)
	assert.Equal(t, "tensorflow", reqs[3].Name)

	opts := m.Options()
	require.Len(t, opts, 1)
	assert.True(t, opts[0].IsInclude())
	assert.Equal(t, "extra-requirements.txt", opts[0].Argument)
}

func TestParseManifestCollectsAllErrors(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"pytest>=7.0",
		"bad==",
		"also=bad",
		"coverage==7.4.0",
	}, "\n")

	m, err := manifest.ParseManifest(strings.NewReader(input))
	require.Error(t, err)

	// both invalid lines are reported together
	var specErr manifest.InvalidSpecifierError
	require.ErrorAs(t, err, &specErr)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "line 3")

	// valid lines still parse
	require.NotNil(t, m)
	assert.Len(t, m.Requirements(), 2)
}

func TestParseManifestReportsOutOfRangeVersion(t *testing.T) {
	t.Parallel()

	input := "pytest>=7.0\nfoo==1.0.99999999999999999999\n"

	m, err := manifest.ParseManifest(strings.NewReader(input))
	require.Error(t, err)

	var specErr manifest.InvalidSpecifierError
	require.ErrorAs(t, err, &specErr)
	assert.Equal(t, 2, specErr.Line)
	assert.Contains(t, specErr.Reason, "out of range")

	require.NotNil(t, m)
	assert.Len(t, m.Requirements(), 1)
}

func TestManifestLookup(t *testing.T) {
	t.Parallel()

	m, err := manifest.ParseManifest(strings.NewReader("Scikit_Learn==1.4.0\npytest>=7.0\n"))
	require.NoError(t, err)

	req := m.Lookup("scikit-learn")
	require.NotNil(t, req)
	assert.Equal(t, "Scikit_Learn", req.Name)

	assert.Nil(t, m.Lookup("tensorflow"))
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := manifest.ParseManifest(strings.NewReader(testManifest))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	again, err := manifest.ParseManifest(strings.NewReader(buf.String()))
	require.NoError(t, err)

	require.Len(t, again.Lines, len(m.Lines))
	for i := range m.Lines {
		assert.Equal(t, m.Lines[i].String(), again.Lines[i].String())
	}
}

func TestManifestResolve(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"requirements.txt": &fstest.MapFile{Data: []byte(
			"pytest>=7.0\n-r core/base.txt\ncoverage==7.4.0\n",
		)},
		"core/base.txt": &fstest.MapFile{Data: []byte(
			"numpy>=1.24\n-r shared.txt\n",
		)},
		"core/shared.txt": &fstest.MapFile{Data: []byte(
			"packaging\n",
		)},
	}

	m, err := manifest.ReadManifestFile(fsys, "requirements.txt")
	require.NoError(t, err)

	reqs, err := m.Resolve(fsys)
	require.NoError(t, err)

	names := make([]string, len(reqs))
	for i, req := range reqs {
		names[i] = req.Name
	}
	assert.Equal(t, []string{"pytest", "numpy", "packaging", "coverage"}, names)
}

func TestManifestResolveDetectsCycles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a.txt": &fstest.MapFile{Data: []byte("-r b.txt\n")},
		"b.txt": &fstest.MapFile{Data: []byte("-r a.txt\n")},
	}

	m, err := manifest.ReadManifestFile(fsys, "a.txt")
	require.NoError(t, err)

	_, err = m.Resolve(fsys)
	require.Error(t, err)

	var cycleErr manifest.IncludeCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a.txt", "b.txt", "a.txt"}, cycleErr.Path)
}

func TestManifestResolveMissingInclude(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"requirements.txt": &fstest.MapFile{Data: []byte("-r missing.txt\n")},
	}

	m, err := manifest.ReadManifestFile(fsys, "requirements.txt")
	require.NoError(t, err)

	_, err = m.Resolve(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	require.NoError(t, manifest.Check(strings.NewReader(testManifest)))
	require.Error(t, manifest.Check(strings.NewReader("pkg==\n")))
}
