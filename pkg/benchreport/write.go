// SPDX-License-Identifier: Apache-2.0

package benchreport

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteText renders the report in the canonical labeled-row form, the same
// shape the load tool prints.
func (r *Report) WriteText(w io.Writer) error {
	rows := []struct {
		label  string
		fields string
		values string
	}{
		{
			"Requests", "[total, rate, throughput]",
			fmt.Sprintf("%d, %.2f, %.2f", r.Requests, r.Rate, r.Throughput),
		},
		{
			"Duration", "[total, attack, wait]",
			fmt.Sprintf("%s, %s, %s", r.Duration.Total, r.Duration.Attack, r.Duration.Wait),
		},
		{
			"Latencies", "[min, mean, 50, 90, 95, 99, max]",
			fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s",
				r.Latencies.Min, r.Latencies.Mean, r.Latencies.P50, r.Latencies.P90,
				r.Latencies.P95, r.Latencies.P99, r.Latencies.Max),
		},
		{
			"Bytes In", "[total, mean]",
			fmt.Sprintf("%d, %.2f", r.BytesIn.Total, r.BytesIn.Mean),
		},
		{
			"Bytes Out", "[total, mean]",
			fmt.Sprintf("%d, %.2f", r.BytesOut.Total, r.BytesOut.Mean),
		},
		{
			"Success", "[ratio]",
			fmt.Sprintf("%.2f%%", r.Success*100),
		},
		{
			"Status Codes", "[code:count]",
			formatStatusCodes(r.StatusCodes),
		},
	}

	if r.Target != "" {
		if _, err := fmt.Fprintf(w, "%s (%s)\n", r.Target, r.Mode); err != nil {
			return err
		}
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-13s %-33s %s\n", row.label, row.fields, row.values); err != nil {
			return err
		}
	}

	if len(r.Errors) > 0 {
		if _, err := fmt.Fprintln(w, "Error Set:"); err != nil {
			return err
		}
		for _, e := range r.Errors {
			if _, err := fmt.Fprintln(w, e); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatStatusCodes(codes map[string]int) string {
	keys := make([]string, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, code := range keys {
		pairs[i] = fmt.Sprintf("%s:%d", code, codes[code])
	}
	return strings.Join(pairs, "  ")
}
