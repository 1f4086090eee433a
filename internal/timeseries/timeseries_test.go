package timeseries

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

const confirmedCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
New South Wales,Australia,-33.8688,151.2093,0,3,4
Victoria,Australia,-37.8136,144.9631,1,2,2
,"Korea, South",35.9078,127.7669,1,1,2
Hubei,China,30.9756,112.2707,444,444,549
`

const deathsCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
New South Wales,Australia,-33.8688,151.2093,0,0,0
Victoria,Australia,-37.8136,144.9631,0,0,1
,"Korea, South",35.9078,127.7669,0,0,0
Hubei,China,30.9756,112.2707,17,18,26
,Diamond Princess,35.4437,139.638,0,1,1
`

const recoveredCSV = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
New South Wales,Australia,-33.8688,151.2093,0,0,2
Victoria,Australia,-37.8136,144.9631,0,1,1
,"Korea, South",35.9078,127.7669,0,0,0
Hubei,China,30.9756,112.2707,28,28,31
`

func mustReadSource(t *testing.T, data string) *Source {
	t.Helper()
	src, err := ReadSource(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadSource: %v", err)
	}
	return src
}

func buildTestTable(t *testing.T) *Table {
	t.Helper()
	confirmed := mustReadSource(t, confirmedCSV)
	table := BuildSkeleton(confirmed)
	if _, err := table.Merge(confirmed, Confirmed); err != nil {
		t.Fatalf("merge confirmed: %v", err)
	}
	if _, err := table.Merge(mustReadSource(t, deathsCSV), Deaths); err != nil {
		t.Fatalf("merge deaths: %v", err)
	}
	if _, err := table.Merge(mustReadSource(t, recoveredCSV), Recovered); err != nil {
		t.Fatalf("merge recovered: %v", err)
	}
	return table
}

func TestReadSource_Header(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "valid",
			data: confirmedCSV,
		},
		{
			name: "byte order mark stripped",
			data: "\uFEFF" + confirmedCSV,
		},
		{
			name:    "too few columns",
			data:    "Province/State,Country/Region,Lat,Long\n",
			wantErr: "want at least 5",
		},
		{
			name:    "metadata column renamed",
			data:    "Region,Country/Region,Lat,Long,1/22/20\nHubei,China,30.9,112.2,1\n",
			wantErr: `column 0 is "Region"`,
		},
		{
			name:    "metadata columns reordered",
			data:    "Country/Region,Province/State,Lat,Long,1/22/20\nChina,Hubei,30.9,112.2,1\n",
			wantErr: `column 0 is "Country/Region"`,
		},
		{
			name:    "bad date label",
			data:    "Province/State,Country/Region,Lat,Long,2020-01-22\nHubei,China,30.9,112.2,1\n",
			wantErr: `date column "2020-01-22"`,
		},
		{
			name:    "no data rows",
			data:    "Province/State,Country/Region,Lat,Long,1/22/20\n",
			wantErr: "no data rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSource(strings.NewReader(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ReadSource: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ReadSource: expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadSource_Values(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{
			name:    "non-integer value",
			row:     "Hubei,China,30.9,112.2,n/a",
			wantErr: `value "n/a" is not an integer`,
		},
		{
			name:    "empty value",
			row:     "Hubei,China,30.9,112.2,",
			wantErr: "is not an integer",
		},
		{
			name:    "negative value",
			row:     "Hubei,China,30.9,112.2,-3",
			wantErr: "negative value -3",
		},
		{
			name:    "float value",
			row:     "Hubei,China,30.9,112.2,4.5",
			wantErr: "is not an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "Province/State,Country/Region,Lat,Long,1/22/20\n" + tt.row + "\n"
			_, err := ReadSource(strings.NewReader(data))
			if err == nil {
				t.Fatal("ReadSource: expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), "line 2") {
				t.Errorf("error = %q, want line context", err)
			}
		})
	}
}

func TestParseDateLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"1/22/20", "2020-01-22"},
		{"12/1/20", "2020-12-01"},
		{"3/5/21", "2021-03-05"},
		{" 2/29/20 ", "2020-02-29"},
	}

	for _, tt := range tests {
		got, err := parseDateLabel(tt.label)
		if err != nil {
			t.Errorf("parseDateLabel(%q): %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDateLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}

	if _, err := parseDateLabel("13/1/20"); err == nil {
		t.Error("parseDateLabel(13/1/20): expected error")
	}
}

func TestBuildSkeleton_Cardinality(t *testing.T) {
	src := mustReadSource(t, confirmedCSV)
	table := BuildSkeleton(src)

	wantRegions := []string{"Australia", "China", "Korea, South"}
	if len(table.Regions) != len(wantRegions) {
		t.Fatalf("len(Regions) = %d, want %d", len(table.Regions), len(wantRegions))
	}
	for i, want := range wantRegions {
		if table.Regions[i] != want {
			t.Errorf("Regions[%d] = %q, want %q", i, table.Regions[i], want)
		}
	}

	if want := len(table.Dates) * len(table.Regions); len(table.Cells) != want {
		t.Errorf("len(Cells) = %d, want %d", len(table.Cells), want)
	}
	for _, date := range table.Dates {
		for _, region := range table.Regions {
			cell, ok := table.Cells[Key{Date: date, Region: region}]
			if !ok {
				t.Fatalf("missing cell for (%s, %s)", date, region)
			}
			if *cell != (Cell{}) {
				t.Errorf("cell (%s, %s) = %+v, want zero", date, region, cell)
			}
		}
	}
}

func TestMerge_SumsSubNationalRows(t *testing.T) {
	table := buildTestTable(t)

	cell := table.Cells[Key{Date: "2020-01-23", Region: "Australia"}]
	if cell.Confirmed != 5 {
		t.Errorf("Australia confirmed on 2020-01-23 = %d, want 5 (3+2)", cell.Confirmed)
	}
	if cell.Recovered != 1 {
		t.Errorf("Australia recovered on 2020-01-23 = %d, want 1", cell.Recovered)
	}

	cell = table.Cells[Key{Date: "2020-01-24", Region: "China"}]
	if cell.Confirmed != 549 || cell.Deaths != 26 || cell.Recovered != 31 {
		t.Errorf("China cell on 2020-01-24 = %+v, want {549 26 31}", cell)
	}
}

func TestMerge_PreservesPerDateSums(t *testing.T) {
	confirmed := mustReadSource(t, confirmedCSV)
	table := buildTestTable(t)

	for i, date := range table.Dates {
		var wantSum int
		for _, row := range confirmed.Rows {
			wantSum += row.Values[i]
		}
		var gotSum int
		for _, region := range table.Regions {
			gotSum += table.Cells[Key{Date: date, Region: region}].Confirmed
		}
		if gotSum != wantSum {
			t.Errorf("confirmed sum on %s = %d, want %d", date, gotSum, wantSum)
		}
	}
}

func TestMerge_DropsUnknownRegions(t *testing.T) {
	confirmed := mustReadSource(t, confirmedCSV)
	table := BuildSkeleton(confirmed)

	dropped, err := table.Merge(mustReadSource(t, deathsCSV), Deaths)
	if err != nil {
		t.Fatalf("merge deaths: %v", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1 (Diamond Princess)", dropped)
	}
	if _, ok := table.Cells[Key{Date: "2020-01-23", Region: "Diamond Princess"}]; ok {
		t.Error("dropped region must not appear in the table")
	}

	// The drop is row-level only; values for known regions still land.
	if got := table.Cells[Key{Date: "2020-01-24", Region: "China"}].Deaths; got != 26 {
		t.Errorf("China deaths on 2020-01-24 = %d, want 26", got)
	}
}

func TestMerge_MissingDateColumn(t *testing.T) {
	confirmed := mustReadSource(t, confirmedCSV)
	table := BuildSkeleton(confirmed)

	short := `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20
Hubei,China,30.9756,112.2707,17,18
`
	_, err := table.Merge(mustReadSource(t, short), Deaths)
	if err == nil {
		t.Fatal("Merge: expected error for missing date column")
	}
	if !strings.Contains(err.Error(), "2020-01-24") {
		t.Errorf("error = %q, want missing date named", err)
	}
}

func TestWriteCSV_Order(t *testing.T) {
	table := buildTestTable(t)

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	wantHeader := []string{"isodate", "country", "confirmed", "deaths", "recovered"}
	for i, want := range wantHeader {
		if records[0][i] != want {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], want)
		}
	}

	if want := 1 + len(table.Dates)*len(table.Regions); len(records) != want {
		t.Fatalf("len(records) = %d, want %d", len(records), want)
	}

	// Date-major, region-minor within each date.
	if records[1][0] != "2020-01-22" || records[1][1] != "Australia" {
		t.Errorf("records[1] = %v, want first date, first region", records[1][:2])
	}
	if records[2][1] != "China" || records[3][1] != "Korea, South" {
		t.Errorf("records[2..3] regions = %q, %q, want China, Korea, South", records[2][1], records[3][1])
	}
	if records[4][0] != "2020-01-23" {
		t.Errorf("records[4] date = %q, want 2020-01-23", records[4][0])
	}

	seen := make(map[Key]bool)
	for _, rec := range records[1:] {
		k := Key{Date: rec[0], Region: rec[1]}
		if seen[k] {
			t.Fatalf("duplicate output row for (%s, %s)", k.Date, k.Region)
		}
		seen[k] = true
	}
}

func TestWriteCSV_Deterministic(t *testing.T) {
	var first, second bytes.Buffer
	if err := buildTestTable(t).WriteCSV(&first); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if err := buildTestTable(t).WriteCSV(&second); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("rerun on identical input produced different bytes")
	}
}
