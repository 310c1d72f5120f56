// SPDX-License-Identifier: Apache-2.0

package benchreport

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// e.g. "Latencies  [min, mean, 50, 90, 95, 99, max]  2.29ms, 8.35ms, ..."
	rowPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*?)\s*\[([^\]]*)\]\s*(.*)$`)

	// e.g. "## gin (local)" or "echo (remote)"
	sectionPattern = regexp.MustCompile(`^(?:#+\s*)?(\S.*?)\s+\((\w+)\)\s*$`)

	// HTTP status codes, plus "0" for requests that got no response at all
	statusCodePattern = regexp.MustCompile(`^[0-9]{1,3}$`)
)

// ParseReport parses a single benchmark report in the tool's labeled-row
// text format. An optional leading "target (mode)" header names the report.
func ParseReport(r io.Reader) (*Report, error) {
	reports, err := ParseTranscript(r)
	if err != nil {
		return nil, err
	}
	if len(reports) != 1 {
		return nil, ParseError{Reason: fmt.Sprintf("expected a single report, found %d", len(reports))}
	}
	return &reports[0], nil
}

// ParseTranscript parses a transcript holding one or more reports. Section
// headers of the form "target (mode)" group the rows that follow them; the
// bracketed field list of each row names its value columns, so older
// transcripts with fewer columns decode too.
func ParseTranscript(r io.Reader) ([]Report, error) {
	var (
		reports     []Report
		current     *Report
		inErrorSet  bool
		sectionName string
		sectionMode Mode
	)

	flush := func() {
		if current != nil {
			backfillThroughput(current)
			reports = append(reports, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			inErrorSet = false
			continue
		}

		if trimmed == "Error Set:" {
			inErrorSet = true
			continue
		}

		if m := rowPattern.FindStringSubmatch(trimmed); m != nil && isKnownRow(m[1]) {
			inErrorSet = false
			if current == nil {
				current = &Report{Target: sectionName, Mode: sectionMode}
			}
			if err := parseRow(current, m[1], m[2], m[3]); err != nil {
				return nil, ParseError{Line: lineNo, Reason: err.Error()}
			}
			continue
		}

		if inErrorSet && current != nil {
			current.Errors = append(current.Errors, trimmed)
			continue
		}

		if m := sectionPattern.FindStringSubmatch(trimmed); m != nil {
			mode, err := ParseMode(m[2])
			if err != nil {
				return nil, ParseError{Line: lineNo, Reason: err.Error()}
			}
			flush()
			sectionName = m[1]
			sectionMode = mode
			continue
		}

		return nil, ParseError{Line: lineNo, Reason: fmt.Sprintf("unrecognized line %q", trimmed)}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	flush()

	if len(reports) == 0 {
		return nil, ParseError{Reason: "transcript holds no reports"}
	}

	return reports, nil
}

func isKnownRow(row string) bool {
	switch row {
	case "Requests", "Duration", "Latencies", "Bytes In", "Bytes Out", "Success", "Status Codes":
		return true
	}
	return false
}

func parseRow(report *Report, row, fieldList, valueList string) error {
	if row == "Status Codes" {
		return parseStatusCodes(report, valueList)
	}

	fields := splitList(fieldList)
	values := splitList(valueList)
	if len(fields) != len(values) {
		return fmt.Errorf("%q row has %d fields but %d values", row, len(fields), len(values))
	}

	for i, field := range fields {
		if err := setField(report, row, field, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setField(report *Report, row, field, value string) error {
	switch row {
	case "Requests":
		return setRequestsField(report, field, value)
	case "Duration":
		return setDurationField(report, field, value)
	case "Latencies":
		return setLatencyField(report, field, value)
	case "Bytes In":
		return setBytesField(&report.BytesIn, row, field, value)
	case "Bytes Out":
		return setBytesField(&report.BytesOut, row, field, value)
	case "Success":
		return setSuccessField(report, field, value)
	}
	return fmt.Errorf("unknown row %q", row)
}

func setRequestsField(report *Report, field, value string) error {
	switch field {
	case "total":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("request total: %w", err)
		}
		report.Requests = n
	case "rate":
		return parseFloat(&report.Rate, "request rate", value)
	case "throughput":
		return parseFloat(&report.Throughput, "throughput", value)
	default:
		return UnknownFieldError{Row: "Requests", Field: field}
	}
	return nil
}

func setDurationField(report *Report, field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("duration %q: %w", field, err)
	}

	switch field {
	case "total":
		report.Duration.Total = d
	case "attack":
		report.Duration.Attack = d
	case "wait":
		report.Duration.Wait = d
	default:
		return UnknownFieldError{Row: "Duration", Field: field}
	}
	return nil
}

func setLatencyField(report *Report, field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("latency %q: %w", field, err)
	}

	switch field {
	case "min":
		report.Latencies.Min = d
	case "mean":
		report.Latencies.Mean = d
	case "50", "50th":
		report.Latencies.P50 = d
	case "90", "90th":
		report.Latencies.P90 = d
	case "95", "95th":
		report.Latencies.P95 = d
	case "99", "99th":
		report.Latencies.P99 = d
	case "max":
		report.Latencies.Max = d
	default:
		return UnknownFieldError{Row: "Latencies", Field: field}
	}
	return nil
}

func setBytesField(metrics *ByteMetrics, row, field, value string) error {
	switch field {
	case "total":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s total: %w", strings.ToLower(row), err)
		}
		metrics.Total = n
	case "mean":
		return parseFloat(&metrics.Mean, strings.ToLower(row)+" mean", value)
	default:
		return UnknownFieldError{Row: row, Field: field}
	}
	return nil
}

func setSuccessField(report *Report, field, value string) error {
	if field != "ratio" {
		return UnknownFieldError{Row: "Success", Field: field}
	}

	ratio, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
	if err != nil {
		return fmt.Errorf("success ratio: %w", err)
	}
	if strings.HasSuffix(value, "%") {
		ratio /= 100
	}
	report.Success = ratio
	return nil
}

func parseStatusCodes(report *Report, valueList string) error {
	codes := make(map[string]int)
	for _, pair := range strings.Fields(valueList) {
		code, countStr, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("status code entry %q is not code:count", pair)
		}
		if !statusCodePattern.MatchString(code) {
			return fmt.Errorf("status code %q is not a numeric code", code)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return fmt.Errorf("status code count for %q: %w", code, err)
		}
		codes[code] = count
	}

	if len(codes) > 0 {
		report.StatusCodes = codes
	}
	return nil
}

func parseFloat(dst *float64, what, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	*dst = f
	return nil
}

// backfillThroughput derives the throughput column for transcripts that
// predate it: successful requests over the total duration.
func backfillThroughput(report *Report) {
	if report.Throughput != 0 || report.Duration.Total == 0 {
		return
	}
	report.Throughput = float64(report.SuccessfulRequests()) / report.Duration.Total.Seconds()
}
