package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

type Measure int

const (
	Confirmed Measure = iota
	Deaths
	Recovered
)

func (m Measure) String() string {
	switch m {
	case Confirmed:
		return "confirmed"
	case Deaths:
		return "deaths"
	case Recovered:
		return "recovered"
	}
	return "unknown"
}

type Key struct {
	Date   string
	Region string
}

type Cell struct {
	Confirmed int
	Deaths    int
	Recovered int
}

// Table is the dense merge target: one cell for every (date, region) pair,
// even where no source row contributes a value.
type Table struct {
	Dates   []string // header order
	Regions []string // sorted
	Cells   map[Key]*Cell
}

// BuildSkeleton derives the table shape from the authoritative source: its
// date columns in header order, and its distinct regions sorted. Every cell
// starts at zero.
func BuildSkeleton(src *Source) *Table {
	seen := make(map[string]bool)
	for _, row := range src.Rows {
		seen[row.Region] = true
	}
	regions := make([]string, 0, len(seen))
	for region := range seen {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	t := &Table{
		Dates:   append([]string(nil), src.Dates...),
		Regions: regions,
		Cells:   make(map[Key]*Cell, len(src.Dates)*len(regions)),
	}
	for _, date := range t.Dates {
		for _, region := range t.Regions {
			t.Cells[Key{Date: date, Region: region}] = &Cell{}
		}
	}
	return t
}

// Merge adds one source's values into the table. Rows for regions outside
// the skeleton are dropped and counted; a skeleton date missing from the
// source header is an error.
func (t *Table) Merge(src *Source, m Measure) (dropped int, err error) {
	cols := make(map[string]int, len(src.Dates))
	for i, date := range src.Dates {
		cols[date] = i
	}
	for _, date := range t.Dates {
		if _, ok := cols[date]; !ok {
			return 0, fmt.Errorf("merge %s: source has no column for %s", m, date)
		}
	}

	inSkeleton := make(map[string]bool, len(t.Regions))
	for _, region := range t.Regions {
		inSkeleton[region] = true
	}

	for _, row := range src.Rows {
		if !inSkeleton[row.Region] {
			dropped++
			continue
		}
		for _, date := range t.Dates {
			cell := t.Cells[Key{Date: date, Region: row.Region}]
			switch m {
			case Confirmed:
				cell.Confirmed += row.Values[cols[date]]
			case Deaths:
				cell.Deaths += row.Values[cols[date]]
			case Recovered:
				cell.Recovered += row.Values[cols[date]]
			}
		}
	}
	return dropped, nil
}

// WriteCSV writes the long-format output: dates in header order, regions
// sorted within each date. Identical input always yields identical bytes.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"isodate", "country", "confirmed", "deaths", "recovered"}); err != nil {
		return err
	}
	for _, date := range t.Dates {
		for _, region := range t.Regions {
			cell := t.Cells[Key{Date: date, Region: region}]
			record := []string{
				date,
				region,
				strconv.Itoa(cell.Confirmed),
				strconv.Itoa(cell.Deaths),
				strconv.Itoa(cell.Recovered),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
