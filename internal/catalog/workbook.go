package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names as published in the data dictionary workbook. Matching trims
// whitespace because several published revisions carry stray trailing spaces.
const (
	sheetOrigin         = "Catálogo ORIGEN"
	sheetSector         = "Catálogo SECTOR"
	sheetSex            = "Catálogo SEXO"
	sheetPatientType    = "Catálogo TIPO_PACIENTE"
	sheetYesNo          = "Catálogo SI_NO"
	sheetNationality    = "Catálogo NACIONALIDAD"
	sheetLabResult      = "Catálogo RESULTADO_LAB"
	sheetClassification = "Catálogo CLASIFICACION_FINAL"
	sheetStates         = "Catálogo de ENTIDADES"
	sheetMunicipalities = "Catálogo MUNICIPIOS"
)

type Catalog map[string]string

// Set holds every catalog of the lookup workbook, built once per run and
// read-only afterwards. Municipality keys are "<state>-<municipality>"
// because municipality codes repeat across states.
type Set struct {
	Origin         Catalog
	Sector         Catalog
	Sex            Catalog
	PatientType    Catalog
	YesNo          Catalog
	Nationality    Catalog
	LabResult      Catalog
	Classification Catalog
	States         Catalog
	Municipalities Catalog
}

func Load(path string) (*Set, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return load(f)
}

func LoadReader(r io.Reader) (*Set, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return load(f)
}

func load(f *excelize.File) (*Set, error) {
	s := &Set{}
	var err error

	plain := []struct {
		sheet string
		dst   *Catalog
	}{
		{sheetOrigin, &s.Origin},
		{sheetSector, &s.Sector},
		{sheetSex, &s.Sex},
		{sheetPatientType, &s.PatientType},
		{sheetYesNo, &s.YesNo},
		{sheetNationality, &s.Nationality},
		{sheetLabResult, &s.LabResult},
		{sheetClassification, &s.Classification},
	}
	for _, p := range plain {
		if *p.dst, err = loadPlain(f, p.sheet); err != nil {
			return nil, err
		}
	}

	// The upstream classification labels carry double-encoding damage.
	for code, label := range s.Classification {
		s.Classification[code] = RepairEncoding(label)
	}

	if s.States, err = loadStates(f); err != nil {
		return nil, err
	}
	if s.Municipalities, err = loadMunicipalities(f); err != nil {
		return nil, err
	}
	return s, nil
}

func loadPlain(f *excelize.File, sheet string) (Catalog, error) {
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	c := make(Catalog)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		code := strings.TrimSpace(row[0])
		if skipCode(code) {
			continue
		}
		c[code] = strings.TrimSpace(row[1])
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("sheet %q has no entries", sheet)
	}
	return c, nil
}

// loadStates reads the entity catalog. The workbook stores some entity codes
// as bare numbers while the line list zero-pads them to two digits.
func loadStates(f *excelize.File) (Catalog, error) {
	rows, err := sheetRows(f, sheetStates)
	if err != nil {
		return nil, err
	}
	c := make(Catalog)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		code := strings.TrimSpace(row[0])
		if skipCode(code) {
			continue
		}
		c[padCode(code, 2)] = strings.TrimSpace(row[1])
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("sheet %q has no entries", sheetStates)
	}
	return c, nil
}

// loadMunicipalities keys each entry by "<state>-<municipality>". Columns are
// CLAVE_MUNICIPIO, MUNICIPIO, CLAVE_ENTIDAD.
func loadMunicipalities(f *excelize.File) (Catalog, error) {
	rows, err := sheetRows(f, sheetMunicipalities)
	if err != nil {
		return nil, err
	}
	c := make(Catalog)
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		muni := strings.TrimSpace(row[0])
		state := strings.TrimSpace(row[2])
		if skipCode(muni) || skipCode(state) {
			continue
		}
		key := padCode(state, 2) + "-" + padCode(muni, 3)
		c[key] = strings.TrimSpace(row[1])
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("sheet %q has no entries", sheetMunicipalities)
	}
	return c, nil
}

// sheetRows returns a sheet's rows with the header row skipped. A missing
// sheet is fatal for the run.
func sheetRows(f *excelize.File, want string) ([][]string, error) {
	name := ""
	for _, got := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(got), want) {
			name = got
			break
		}
	}
	if name == "" {
		return nil, fmt.Errorf("workbook has no sheet %q", want)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", want)
	}
	return rows[1:], nil
}

func skipCode(code string) bool {
	return code == "" || code == "None"
}

func padCode(code string, width int) string {
	for len(code) < width {
		code = "0" + code
	}
	return code
}
