package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// Formatter renders command results as aligned text or JSON.
type Formatter struct {
	Writer   io.Writer
	JSONMode bool
}

// New creates a new Formatter with the specified writer and JSON mode.
func New(w io.Writer, jsonMode bool) *Formatter {
	return &Formatter{
		Writer:   w,
		JSONMode: jsonMode,
	}
}

// Table writes one row per record. In JSON mode it writes an array of
// objects keyed by header instead.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	if f.JSONMode {
		return f.Print(rowsToObjects(headers, rows))
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}

	lines := append([][]string{headers, rule}, rows...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(tw, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func rowsToObjects(headers []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			} else {
				obj[h] = ""
			}
		}
		out = append(out, obj)
	}
	return out
}

// Record writes a single entity as "key  value" lines in key order, or as a
// JSON object in JSON mode.
func (f *Formatter) Record(fields map[string]any) error {
	if f.JSONMode {
		return f.Print(fields)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		if _, err := fmt.Fprintf(tw, "%s\t%v\n", k, fields[k]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Print writes data as indented JSON in JSON mode and with %v otherwise.
func (f *Formatter) Print(data any) error {
	if f.JSONMode {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	_, err := fmt.Fprintf(f.Writer, "%v\n", data)
	return err
}

// Price renders a price with two decimals, or "-" when zero.
func Price(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return d.StringFixed(2)
}

// Volume renders a count with thousands separators, or "-" when zero.
func Volume(v int64) string {
	if v == 0 {
		return "-"
	}
	s := strconv.FormatInt(v, 10)
	sign := ""
	if v < 0 {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// Millis renders epoch milliseconds as a UTC timestamp, or "-" when zero.
func Millis(ms int64, layout string) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(layout)
}
