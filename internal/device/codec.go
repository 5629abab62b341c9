package device

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldSeparator delimits fields in device and schedule records.
const fieldSeparator = "|"

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// formatFloat writes the shortest representation that parses back exactly.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// recordDecoder reads fields from one record and collects parse problems.
// Absent fields are not problems: they leave the destination untouched.
type recordDecoder struct {
	fields   []string
	problems []string
}

func newRecordDecoder(record string) *recordDecoder {
	record = strings.TrimRight(record, "\r\n")
	return &recordDecoder{fields: strings.Split(record, fieldSeparator)}
}

func (d *recordDecoder) has(i int) bool {
	return i < len(d.fields)
}

func (d *recordDecoder) field(i int) string {
	if !d.has(i) {
		return ""
	}
	return d.fields[i]
}

func (d *recordDecoder) fail(i int, format string, args ...any) {
	d.problems = append(d.problems, fmt.Sprintf("field %d: ", i)+fmt.Sprintf(format, args...))
}

func (d *recordDecoder) boolean(i int, dst *bool) bool {
	if !d.has(i) {
		return false
	}
	switch strings.TrimSpace(d.fields[i]) {
	case "1":
		*dst = true
	case "0":
		*dst = false
	default:
		d.fail(i, "expected 0 or 1, got %q", d.fields[i])
		return false
	}
	return true
}

func (d *recordDecoder) integer(i int, dst *int) bool {
	if !d.has(i) {
		return false
	}
	v, err := strconv.Atoi(strings.TrimSpace(d.fields[i]))
	if err != nil {
		d.fail(i, "expected integer, got %q", d.fields[i])
		return false
	}
	*dst = v
	return true
}

func (d *recordDecoder) float(i int, dst *float64) bool {
	if !d.has(i) {
		return false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(d.fields[i]), 64)
	if err != nil {
		d.fail(i, "expected number, got %q", d.fields[i])
		return false
	}
	*dst = v
	return true
}

// err returns nil when every present field parsed.
func (d *recordDecoder) err() error {
	if len(d.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMalformedRecord, strings.Join(d.problems, "; "))
}

// argInt parses the n-th Apply argument as an integer.
func argInt(args []string, n int, what string) (int, error) {
	if n >= len(args) {
		return 0, fmt.Errorf("%w: missing %s", ErrOutOfRange, what)
	}
	v, err := strconv.Atoi(strings.TrimSpace(args[n]))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %q", ErrOutOfRange, what, args[n])
	}
	return v, nil
}

func clampPercent(v int) int {
	return max(0, min(100, v))
}
