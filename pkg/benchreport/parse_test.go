// SPDX-License-Identifier: Apache-2.0

package benchreport_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfu/reqbench/pkg/benchreport"
)

const singleReport = `Requests      [total, rate, throughput]         3000, 50.01, 49.84
Duration      [total, attack, wait]             1m0.018s, 59.98s, 8.51ms
Latencies     [min, mean, 50, 90, 95, 99, max]  2.29ms, 8.35ms, 7.408ms, 12.967ms, 15.916ms, 26.613ms, 79.788ms
Bytes In      [total, mean]                     17577000, 5859.00
Bytes Out     [total, mean]                     0, 0.00
Success       [ratio]                           99.00%
Status Codes  [code:count]                      200:2970  500:30
Error Set:
500 Internal Server Error
`

func TestParseReport(t *testing.T) {
	t.Parallel()

	report, err := benchreport.ParseReport(strings.NewReader(singleReport))
	require.NoError(t, err)

	assert.Equal(t, uint64(3000), report.Requests)
	assert.Equal(t, 50.01, report.Rate)
	assert.Equal(t, 49.84, report.Throughput)

	assert.Equal(t, 60*time.Second+18*time.Millisecond, report.Duration.Total)
	assert.Equal(t, 59980*time.Millisecond, report.Duration.Attack)
	assert.Equal(t, 8510*time.Microsecond, report.Duration.Wait)

	assert.Equal(t, 2290*time.Microsecond, report.Latencies.Min)
	assert.Equal(t, 8350*time.Microsecond, report.Latencies.Mean)
	assert.Equal(t, 7408*time.Microsecond, report.Latencies.P50)
	assert.Equal(t, 79788*time.Microsecond, report.Latencies.Max)

	assert.Equal(t, uint64(17577000), report.BytesIn.Total)
	assert.Equal(t, 5859.00, report.BytesIn.Mean)
	assert.Equal(t, uint64(0), report.BytesOut.Total)

	assert.Equal(t, 0.99, report.Success)
	assert.Equal(t, map[string]int{"200": 2970, "500": 30}, report.StatusCodes)
	assert.Equal(t, []string{"500 Internal Server Error"}, report.Errors)
}

func TestParseReportWithUnansweredRequests(t *testing.T) {
	t.Parallel()

	input := "Requests      [total, rate, throughput]  300, 50.00, 45.00\n" +
		"Success       [ratio]                    90.00%\n" +
		"Status Codes  [code:count]               0:30  200:270\n"

	report, err := benchreport.ParseReport(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"0": 30, "200": 270}, report.StatusCodes)
}

const transcript = `## gin (local)
Requests      [total, rate, throughput]         3000, 50.01, 49.99
Duration      [total, attack, wait]             1m0.01s, 59.98s, 3.2ms
Latencies     [min, mean, 50, 90, 95, 99, max]  1.1ms, 4.2ms, 3.9ms, 6.1ms, 7.0ms, 9.8ms, 21.4ms
Bytes In      [total, mean]                     17580000, 5860.00
Bytes Out     [total, mean]                     0, 0.00
Success       [ratio]                           100.00%
Status Codes  [code:count]                      200:3000

## gin (remote)
Requests      [total, rate, throughput]         3000, 50.01, 49.84
Duration      [total, attack, wait]             1m0.2s, 59.98s, 212ms
Latencies     [min, mean, 50, 90, 95, 99, max]  42ms, 61ms, 58ms, 79ms, 92ms, 120ms, 310ms
Bytes In      [total, mean]                     17577000, 5859.00
Bytes Out     [total, mean]                     0, 0.00
Success       [ratio]                           99.00%
Status Codes  [code:count]                      200:2970  502:30
`

func TestParseTranscript(t *testing.T) {
	t.Parallel()

	reports, err := benchreport.ParseTranscript(strings.NewReader(transcript))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "gin", reports[0].Target)
	assert.Equal(t, benchreport.ModeLocal, reports[0].Mode)
	assert.Equal(t, 1.0, reports[0].Success)

	assert.Equal(t, "gin", reports[1].Target)
	assert.Equal(t, benchreport.ModeRemote, reports[1].Mode)
	assert.Equal(t, map[string]int{"200": 2970, "502": 30}, reports[1].StatusCodes)
}

func TestParseTranscriptOldFormat(t *testing.T) {
	t.Parallel()

	// Older transcripts carry fewer columns: no throughput, no min and no
	// 90th percentile. Values map by the bracketed labels.
	old := `fiber (local)
Requests      [total, rate]             1000, 100.04
Duration      [total, attack, wait]     10s, 9.99s, 10ms
Latencies     [mean, 50, 95, 99, max]   5.1ms, 4.8ms, 9.2ms, 14.1ms, 40.2ms
Bytes In      [total, mean]             5859000, 5859.00
Bytes Out     [total, mean]             0, 0.00
Success       [ratio]                   95.00%
`

	reports, err := benchreport.ParseTranscript(strings.NewReader(old))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, uint64(1000), report.Requests)
	assert.Zero(t, report.Latencies.Min)
	assert.Zero(t, report.Latencies.P90)
	assert.Equal(t, 4800*time.Microsecond, report.Latencies.P50)

	// throughput is derived from successes over total duration
	assert.InDelta(t, 95.0, report.Throughput, 0.001)
}

func TestParseTranscriptErrors(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		input  string
		reason string
	}{
		"empty": {
			input:  "",
			reason: "no reports",
		},
		"unrecognized line": {
			input:  "Requests  [total, rate]  10, 1.00\ngarbage here\n",
			reason: "unrecognized line",
		},
		"field value mismatch": {
			input:  "Requests  [total, rate]  10\n",
			reason: "2 fields but 1 values",
		},
		"unknown field": {
			input:  "Requests  [total, frequency]  10, 1.00\n",
			reason: `unknown field "frequency"`,
		},
		"bad duration": {
			input:  "Duration  [total, attack, wait]  10x, 9s, 1s\n",
			reason: "duration",
		},
		"unknown mode": {
			input:  "gin (staging)\nRequests  [total, rate]  10, 1.00\n",
			reason: "invalid deployment mode",
		},
		"non-numeric status code": {
			input:  "Requests  [total, rate]  10, 1.00\nStatus Codes  [code:count]  ok:10\n",
			reason: "not a numeric code",
		},
		"four-digit status code": {
			input:  "Requests  [total, rate]  10, 1.00\nStatus Codes  [code:count]  2000:10\n",
			reason: "not a numeric code",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := benchreport.ParseTranscript(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestWriteTextRoundTrip(t *testing.T) {
	t.Parallel()

	report, err := benchreport.ParseReport(strings.NewReader(singleReport))
	require.NoError(t, err)
	report.Target = "gin"
	report.Mode = benchreport.ModeLocal

	var buf strings.Builder
	require.NoError(t, report.WriteText(&buf))

	again, err := benchreport.ParseReport(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, report, again)
}
