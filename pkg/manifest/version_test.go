// SPDX-License-Identifier: Apache-2.0

package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfu/reqbench/pkg/manifest"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		input     string
		canonical string
	}{
		"plain release":            {input: "1.0.0", canonical: "1.0.0"},
		"single segment":           {input: "2", canonical: "2"},
		"epoch":                    {input: "1!2.0", canonical: "1!2.0"},
		"pre-release":              {input: "1.0a1", canonical: "1.0a1"},
		"pre-release alias":        {input: "1.0-alpha.1", canonical: "1.0a1"},
		"preview alias":            {input: "1.0preview2", canonical: "1.0rc2"},
		"post-release":             {input: "1.0.post2", canonical: "1.0.post2"},
		"implicit post":            {input: "1.0-1", canonical: "1.0.post1"},
		"dev release":              {input: "1.0.dev3", canonical: "1.0.dev3"},
		"local label":              {input: "1.0+cpu", canonical: "1.0+cpu"},
		"uppercase":                {input: "1.0RC1", canonical: "1.0rc1"},
		"v prefix":                 {input: "v1.2.3", canonical: "1.2.3"},
		"everything":               {input: "2!1.0.0rc1.post2.dev3+local.4", canonical: "2!1.0.0rc1.post2.dev3+local.4"},
		"pre without number":       {input: "1.0a", canonical: "1.0a0"},
		"underscore separated pre": {input: "1.0_beta_2", canonical: "1.0b2"},
	} {
		t.Run(name, func(t *testing.T) {
			v, err := manifest.ParseVersion(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.canonical, v.Canonical())
		})
	}
}

func TestParseVersionRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "not-a-version", "1.0+", "1..0", "1.0!2", "x1.0"} {
		t.Run(input, func(t *testing.T) {
			_, err := manifest.ParseVersion(input)
			require.Error(t, err)

			var verErr manifest.InvalidVersionError
			require.ErrorAs(t, err, &verErr)
			assert.Equal(t, input, verErr.Version)
		})
	}
}

func TestParseVersionRejectsOutOfRangeSegments(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"1.0.99999999999999999999",
		"99999999999999999999!1.0",
		"1.0a99999999999999999999",
		"1.0.post99999999999999999999",
		"1.0.dev99999999999999999999",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := manifest.ParseVersion(input)
			require.Error(t, err)

			var verErr manifest.InvalidVersionError
			require.ErrorAs(t, err, &verErr)
			assert.Equal(t, input, verErr.Version)
			assert.Contains(t, verErr.Reason, "out of range")
		})
	}
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	// Each version orders strictly before the next one.
	ordered := []string{
		"0.9",
		"1.0.dev1",
		"1.0a1",
		"1.0a2",
		"1.0b1",
		"1.0rc1",
		"1.0",
		"1.0+cpu",
		"1.0.post1",
		"1.1",
		"1!0.1",
	}

	for i := 0; i < len(ordered)-1; i++ {
		lo := manifest.MustParseVersion(ordered[i])
		hi := manifest.MustParseVersion(ordered[i+1])

		assert.Equal(t, -1, lo.Compare(hi), "%s should order before %s", ordered[i], ordered[i+1])
		assert.Equal(t, 1, hi.Compare(lo), "%s should order after %s", ordered[i+1], ordered[i])
	}
}

func TestVersionCompareEqualSpellings(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		a, b string
	}{
		"trailing zeros":  {a: "1.0", b: "1.0.0"},
		"pre separators":  {a: "1.0a1", b: "1.0-alpha.1"},
		"post spellings":  {a: "1.0.post1", b: "1.0-1"},
		"case insensitiv": {a: "1.0RC1", b: "1.0rc1"},
	} {
		t.Run(name, func(t *testing.T) {
			a := manifest.MustParseVersion(tc.a)
			b := manifest.MustParseVersion(tc.b)
			assert.True(t, a.Equal(b))
		})
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	v, err := manifest.ParseVersion("1.0.0-ALPHA1")
	require.NoError(t, err)

	// String preserves the original spelling, Canonical normalizes it.
	assert.Equal(t, "1.0.0-ALPHA1", v.String())
	assert.Equal(t, "1.0.0a1", v.Canonical())
}

func TestIsPreRelease(t *testing.T) {
	t.Parallel()

	assert.True(t, manifest.MustParseVersion("1.0a1").IsPreRelease())
	assert.True(t, manifest.MustParseVersion("1.0.dev1").IsPreRelease())
	assert.False(t, manifest.MustParseVersion("1.0.post1").IsPreRelease())
	assert.False(t, manifest.MustParseVersion("1.0").IsPreRelease())
}
