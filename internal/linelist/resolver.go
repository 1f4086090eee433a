package linelist

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"covidpipe/internal/catalog"
)

// Country fields hold free text rather than catalog codes, except for the
// unspecified sentinel in PAIS_ORIGEN.
const (
	countryUnspecifiedCode  = "99"
	countryUnspecifiedLabel = "NO ESPECIFICADO"
)

// Resolver replaces the catalog codes in a line list with their labels.
type Resolver struct {
	set     *catalog.Set
	lookups map[string]catalog.Catalog
	index   map[string]int
}

func NewResolver(set *catalog.Set) *Resolver {
	lookups := map[string]catalog.Catalog{
		"ORIGEN":              set.Origin,
		"SECTOR":              set.Sector,
		"ENTIDAD_UM":          set.States,
		"SEXO":                set.Sex,
		"ENTIDAD_NAC":         set.States,
		"ENTIDAD_RES":         set.States,
		"TIPO_PACIENTE":       set.PatientType,
		"NACIONALIDAD":        set.Nationality,
		"RESULTADO_LAB":       set.LabResult,
		"CLASIFICACION_FINAL": set.Classification,
	}
	for _, field := range yesNoFields {
		lookups[field] = set.YesNo
	}
	index := make(map[string]int, len(Columns))
	for i, name := range Columns {
		index[name] = i
	}
	return &Resolver{set: set, lookups: lookups, index: index}
}

// Resolve reads the Latin-1 line list from r, resolves every coded field,
// and writes the result to w as UTF-8 CSV with the same columns. It returns
// the number of rows resolved.
func (rv *Resolver) Resolve(r io.Reader, w io.Writer) (int, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		if err := rv.resolveRecord(record, line); err != nil {
			return rows, err
		}
		if err := cw.Write(record); err != nil {
			return rows, fmt.Errorf("line %d: write: %w", line, err)
		}
		rows++
	}
	cw.Flush()
	return rows, cw.Error()
}

// resolveRecord rewrites record in place. The municipality lookup runs first
// because its composite key needs the raw state code, which the catalog pass
// then overwrites with the state name.
func (rv *Resolver) resolveRecord(record []string, line int) error {
	muniIdx := rv.index["MUNICIPIO_RES"]
	muniKey := record[rv.index["ENTIDAD_RES"]] + "-" + record[muniIdx]
	label, ok := rv.set.Municipalities[muniKey]
	if !ok {
		return lookupErr(line, "MUNICIPIO_RES", muniKey)
	}
	record[muniIdx] = label

	for i, column := range Columns {
		c, coded := rv.lookups[column]
		if !coded {
			continue
		}
		label, ok := c[record[i]]
		if !ok {
			return lookupErr(line, column, record[i])
		}
		record[i] = label
	}

	origin := rv.index["PAIS_ORIGEN"]
	if record[origin] == countryUnspecifiedCode {
		record[origin] = countryUnspecifiedLabel
	} else {
		record[origin] = catalog.RepairEncoding(record[origin])
	}
	nat := rv.index["PAIS_NACIONALIDAD"]
	record[nat] = catalog.RepairEncoding(record[nat])
	return nil
}

func checkHeader(header []string) error {
	if len(header) != len(Columns) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(Columns))
	}
	for i, name := range header {
		if name != Columns[i] {
			return fmt.Errorf("header column %d is %q, want %q", i+1, name, Columns[i])
		}
	}
	return nil
}

func lookupErr(line int, field, code string) error {
	return fmt.Errorf("line %d: %s code %q not in catalog", line, field, code)
}
