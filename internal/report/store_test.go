package report

import (
	"fmt"
	"strings"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const globalCSV = `isodate,country,confirmed,deaths,recovered
2020-03-01,Italy,1694,34,83
2020-03-01,Spain,84,0,2
2020-03-01,US,30,1,0
2020-03-02,Italy,2036,52,149
2020-03-02,Spain,120,0,2
2020-03-02,US,53,6,0
`

func loadGlobal(t *testing.T, s *Store, csv string) int {
	t.Helper()

	n, err := s.LoadGlobal(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	return n
}

func TestLoadGlobal(t *testing.T) {
	s := setupTestStore(t)

	if n := loadGlobal(t, s, globalCSV); n != 6 {
		t.Errorf("loaded %d rows, want 6", n)
	}
	date, err := s.LatestDate()
	if err != nil {
		t.Fatalf("LatestDate: %v", err)
	}
	if date != "2020-03-02" {
		t.Errorf("LatestDate = %q, want 2020-03-02", date)
	}
}

func TestLoadGlobal_BadHeader(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.LoadGlobal(strings.NewReader("date,country,confirmed,deaths,recovered\n"))
	if err == nil {
		t.Fatal("LoadGlobal: expected header error")
	}
	if !strings.Contains(err.Error(), "isodate") {
		t.Errorf("error = %q, want wanted column named", err)
	}
}

func TestLoadGlobal_BadValue(t *testing.T) {
	s := setupTestStore(t)

	csv := "isodate,country,confirmed,deaths,recovered\n2020-03-01,Italy,x,34,83\n"
	_, err := s.LoadGlobal(strings.NewReader(csv))
	if err == nil {
		t.Fatal("LoadGlobal: expected value error")
	}
	if !strings.Contains(err.Error(), "line 2") || !strings.Contains(err.Error(), "confirmed") {
		t.Errorf("error = %q, want line and column named", err)
	}
}

func TestTopCountries(t *testing.T) {
	s := setupTestStore(t)
	loadGlobal(t, s, globalCSV)

	top, err := s.TopCountries("confirmed", 2)
	if err != nil {
		t.Fatalf("TopCountries: %v", err)
	}
	want := []CountryCount{{"Italy", 2036}, {"Spain", 120}}
	if len(top) != len(want) {
		t.Fatalf("got %d countries, want %d", len(top), len(want))
	}
	for i, w := range want {
		if top[i] != w {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], w)
		}
	}
}

func TestTopCountries_TieBrokenByName(t *testing.T) {
	s := setupTestStore(t)
	loadGlobal(t, s, `isodate,country,confirmed,deaths,recovered
2020-03-01,Peru,50,0,0
2020-03-01,Chile,50,0,0
`)

	top, err := s.TopCountries("confirmed", 2)
	if err != nil {
		t.Fatalf("TopCountries: %v", err)
	}
	if top[0].Country != "Chile" || top[1].Country != "Peru" {
		t.Errorf("tie order = %s, %s; want Chile, Peru", top[0].Country, top[1].Country)
	}
}

func TestTopCountries_UnknownMeasure(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.TopCountries("active", 5); err == nil {
		t.Error("TopCountries: expected error for unknown measure")
	}
}

func TestDailyTotals(t *testing.T) {
	s := setupTestStore(t)
	loadGlobal(t, s, globalCSV)

	daily, err := s.DailyTotals()
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	want := []DailyTotal{
		{"2020-03-01", 1808, 35, 85},
		{"2020-03-02", 2209, 58, 151},
	}
	if len(daily) != len(want) {
		t.Fatalf("got %d days, want %d", len(daily), len(want))
	}
	for i, w := range want {
		if daily[i] != w {
			t.Errorf("daily[%d] = %+v, want %+v", i, daily[i], w)
		}
	}
}

func TestCountryDailyTotals(t *testing.T) {
	s := setupTestStore(t)
	loadGlobal(t, s, globalCSV)

	series, err := s.CountryDailyTotals("Italy")
	if err != nil {
		t.Fatalf("CountryDailyTotals: %v", err)
	}
	want := []DailyTotal{
		{"2020-03-01", 1694, 34, 83},
		{"2020-03-02", 2036, 52, 149},
	}
	if len(series) != len(want) {
		t.Fatalf("got %d days, want %d", len(series), len(want))
	}
	for i, w := range want {
		if series[i] != w {
			t.Errorf("series[%d] = %+v, want %+v", i, series[i], w)
		}
	}
}

func TestDoublingCounts(t *testing.T) {
	s := setupTestStore(t)

	var b strings.Builder
	b.WriteString("isodate,country,confirmed,deaths,recovered\n")
	doubler := []int{100, 150, 250, 500, 1000, 2000, 3200, 6400}
	laggard := []int{50, 100, 200, 400, 800, 800, 800, 800}
	for i := range doubler {
		date := fmt.Sprintf("2020-03-%02d", i+1)
		fmt.Fprintf(&b, "%s,Doubler,%d,0,0\n", date, doubler[i])
		fmt.Fprintf(&b, "%s,Laggard,%d,0,0\n", date, laggard[i])
	}
	loadGlobal(t, s, b.String())

	counts, err := s.DoublingCounts()
	if err != nil {
		t.Fatalf("DoublingCounts: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("got %d countries, want only the one past 3200", len(counts))
	}
	got := counts[0]
	if got.Country != "Doubler" {
		t.Errorf("country = %q, want Doubler", got.Country)
	}
	want := [5]int{2, 1, 1, 1, 2}
	if got.Days != want {
		t.Errorf("days = %v, want %v", got.Days, want)
	}
}

// The last confirmed case was treated in Mexico City but lives in Jalisco,
// so state breakdowns follow the residence.
const casesCSV = `FECHA_INGRESO,FECHA_SINTOMAS,FECHA_DEF,ENTIDAD_UM,ENTIDAD_RES,SEXO,EDAD,CLASIFICACION_FINAL
2020-05-01,2020-04-28,9999-99-99,CIUDAD DE MÉXICO,CIUDAD DE MÉXICO,MUJER,34,CASO DE SARS-COV-2 CONFIRMADO
2020-05-01,2020-04-29,2020-05-10,CIUDAD DE MÉXICO,CIUDAD DE MÉXICO,HOMBRE,71,CASO DE COVID-19 CONFIRMADO POR ASOCIACIÓN CLÍNICA EPIDEMIOLÓGICA
2020-05-02,2020-04-30,9999-99-99,JALISCO,JALISCO,HOMBRE,45,NEGATIVO A SARS-COV-2
2020-05-02,2020-05-01,9999-99-99,JALISCO,JALISCO,MUJER,29,CASO SOSPECHOSO
2020-05-03,2020-05-01,2020-05-12,JALISCO,JALISCO,MUJER,92,CASO DE SARS-COV-2 CONFIRMADO
2020-05-03,2020-05-02,9999-99-99,CIUDAD DE MÉXICO,JALISCO,HOMBRE,5,CASO DE SARS-COV-2 CONFIRMADO
`

func loadCases(t *testing.T, s *Store) {
	t.Helper()

	if _, err := s.LoadCases(strings.NewReader(casesCSV)); err != nil {
		t.Fatalf("LoadCases: %v", err)
	}
}

func TestLoadCases(t *testing.T) {
	s := setupTestStore(t)

	n, err := s.LoadCases(strings.NewReader(casesCSV))
	if err != nil {
		t.Fatalf("LoadCases: %v", err)
	}
	if n != 6 {
		t.Errorf("loaded %d rows, want 6", n)
	}
	date, err := s.LatestAdmissionDate()
	if err != nil {
		t.Fatalf("LatestAdmissionDate: %v", err)
	}
	if date != "2020-05-03" {
		t.Errorf("LatestAdmissionDate = %q, want 2020-05-03", date)
	}
}

func TestLoadCases_MissingColumn(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.LoadCases(strings.NewReader("FECHA_INGRESO,SEXO\n2020-05-01,MUJER\n"))
	if err == nil {
		t.Fatal("LoadCases: expected error for missing column")
	}
	if !strings.Contains(err.Error(), "FECHA_SINTOMAS") {
		t.Errorf("error = %q, want missing column named", err)
	}
}

func TestLoadCases_BadAge(t *testing.T) {
	s := setupTestStore(t)

	csv := "FECHA_INGRESO,FECHA_SINTOMAS,FECHA_DEF,ENTIDAD_RES,SEXO,EDAD,CLASIFICACION_FINAL\n" +
		"2020-05-01,2020-04-28,9999-99-99,JALISCO,MUJER,abc,CASO SOSPECHOSO\n"
	_, err := s.LoadCases(strings.NewReader(csv))
	if err == nil {
		t.Fatal("LoadCases: expected error for bad age")
	}
	if !strings.Contains(err.Error(), "line 2") || !strings.Contains(err.Error(), "EDAD") {
		t.Errorf("error = %q, want line and column named", err)
	}
}

func TestConfirmedByState(t *testing.T) {
	s := setupTestStore(t)
	loadCases(t, s)

	states, err := s.ConfirmedByState()
	if err != nil {
		t.Fatalf("ConfirmedByState: %v", err)
	}
	// The boy admitted in Mexico City counts for Jalisco, where he lives.
	want := []StateBreakdown{
		{"CIUDAD DE MÉXICO", 1, 1},
		{"JALISCO", 1, 1},
	}
	if len(states) != len(want) {
		t.Fatalf("got %d states, want %d", len(states), len(want))
	}
	for i, w := range want {
		if states[i] != w {
			t.Errorf("states[%d] = %+v, want %+v", i, states[i], w)
		}
	}
}

func TestSymptomsByDate(t *testing.T) {
	s := setupTestStore(t)
	loadCases(t, s)

	counts, err := s.SymptomsByDate()
	if err != nil {
		t.Fatalf("SymptomsByDate: %v", err)
	}
	want := []DateCount{
		{"2020-04-28", 1},
		{"2020-04-29", 1},
		{"2020-05-01", 1},
		{"2020-05-02", 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("got %d dates, want %d", len(counts), len(want))
	}
	for i, w := range want {
		if counts[i] != w {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], w)
		}
	}
}

func TestDeathsByDate(t *testing.T) {
	s := setupTestStore(t)
	loadCases(t, s)

	counts, err := s.DeathsByDate()
	if err != nil {
		t.Fatalf("DeathsByDate: %v", err)
	}
	want := []DateCount{
		{"2020-05-10", 1},
		{"2020-05-12", 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("got %d dates, want %d", len(counts), len(want))
	}
	for i, w := range want {
		if counts[i] != w {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], w)
		}
	}
}

func TestOutcomesByDate(t *testing.T) {
	s := setupTestStore(t)
	loadCases(t, s)

	outcomes, err := s.OutcomesByDate()
	if err != nil {
		t.Fatalf("OutcomesByDate: %v", err)
	}
	want := []OutcomeCount{
		{"2020-05-01", 2, 0, 0},
		{"2020-05-02", 0, 1, 1},
		{"2020-05-03", 2, 0, 0},
	}
	if len(outcomes) != len(want) {
		t.Fatalf("got %d dates, want %d", len(outcomes), len(want))
	}
	for i, w := range want {
		if outcomes[i] != w {
			t.Errorf("outcomes[%d] = %+v, want %+v", i, outcomes[i], w)
		}
	}
}

func TestConfirmedByAgeGroup(t *testing.T) {
	s := setupTestStore(t)
	loadCases(t, s)

	groups, err := s.ConfirmedByAgeGroup()
	if err != nil {
		t.Fatalf("ConfirmedByAgeGroup: %v", err)
	}
	want := []AgeGroupCount{
		{"0-9", 0, 1},
		{"30-39", 1, 0},
		{"70-79", 0, 1},
		{">= 90", 1, 0},
	}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, w := range want {
		if groups[i] != w {
			t.Errorf("groups[%d] = %+v, want %+v", i, groups[i], w)
		}
	}
}
