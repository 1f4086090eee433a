package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// The four leading metadata columns of every upstream time-series file.
// Everything after them is a date column.
var metaColumns = [4]string{"Province/State", "Country/Region", "Lat", "Long"}

const regionColumn = 1

type Source struct {
	Dates []string // ISO dates, header order
	Rows  []Row
}

type Row struct {
	Region string
	Values []int // aligned with Dates
}

// ReadSource parses one upstream wide-format CSV. The header must begin with
// the known metadata columns; every later column label is converted from
// m/d/yy to ISO form. Cell values must be non-negative integers.
func ReadSource(r io.Reader) (*Source, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) < len(metaColumns)+1 {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(header), len(metaColumns)+1)
	}
	for i, want := range metaColumns {
		if got := strings.TrimSpace(header[i]); got != want {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, got, want)
		}
	}

	dates := make([]string, 0, len(header)-len(metaColumns))
	for _, label := range header[len(metaColumns):] {
		iso, err := parseDateLabel(label)
		if err != nil {
			return nil, err
		}
		dates = append(dates, iso)
	}

	src := &Source{Dates: dates}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := Row{
			Region: record[regionColumn],
			Values: make([]int, len(dates)),
		}
		for i, raw := range record[len(metaColumns):] {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: value %q is not an integer", line, header[len(metaColumns)+i], raw)
			}
			if v < 0 {
				return nil, fmt.Errorf("line %d, column %q: negative value %d", line, header[len(metaColumns)+i], v)
			}
			row.Values[i] = v
		}
		src.Rows = append(src.Rows, row)
	}

	if len(src.Rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return src, nil
}

func parseDateLabel(label string) (string, error) {
	t, err := time.Parse("1/2/06", strings.TrimSpace(label))
	if err != nil {
		return "", fmt.Errorf("date column %q: %w", label, err)
	}
	return t.Format("2006-01-02"), nil
}
