package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Reporter renders the markdown reports and their charts from a loaded
// store.
type Reporter struct {
	store  *Store
	outDir string
}

func NewReporter(store *Store, outDir string) *Reporter {
	return &Reporter{store: store, outDir: outDir}
}

var comparisonCountries = []struct {
	Name  string
	Color color.RGBA
}{
	{"US", lightBlue},
	{"Italy", pink},
	{"Spain", orange},
	{"France", yellow},
	{"United Kingdom", lime},
}

// Global writes global_report.md and its charts.
func (r *Reporter) Global() error {
	if err := r.ensureDirs(); err != nil {
		return err
	}
	asOf, err := r.store.LatestDate()
	if err != nil {
		return err
	}
	if asOf == "" {
		return fmt.Errorf("no global data loaded")
	}

	daily, err := r.store.DailyTotals()
	if err != nil {
		return err
	}
	topConfirmed, err := r.store.TopCountries("confirmed", 10)
	if err != nil {
		return err
	}
	topDeaths, err := r.store.TopCountries("deaths", 10)
	if err != nil {
		return err
	}
	topRecovered, err := r.store.TopCountries("recovered", 10)
	if err != nil {
		return err
	}
	doubling, err := r.store.DoublingCounts()
	if err != nil {
		return err
	}

	dates, confirmed, deaths, recovered := totalsAxes(daily)

	worldChart, err := r.renderChart("Worldwide cases", dates, []Series{
		{Label: "Confirmed", Color: gold, Values: confirmed},
		{Label: "Deaths", Color: lightBlue, Values: deaths},
		{Label: "Recovered", Color: lime, Values: recovered},
	})
	if err != nil {
		return err
	}
	newChart, err := r.renderChart("Worldwide new cases", dates, []Series{
		{Label: "Confirmed", Color: gold, Values: deltas(confirmed)},
		{Label: "Deaths", Color: lightBlue, Values: deltas(deaths)},
		{Label: "Recovered", Color: lime, Values: deltas(recovered)},
	})
	if err != nil {
		return err
	}

	// Each comparison country's series feeds both the shared comparison
	// chart and its own detail section.
	countrySeries := make([][]DailyTotal, len(comparisonCountries))
	var comparison []Series
	for i, c := range comparisonCountries {
		series, err := r.store.CountryDailyTotals(c.Name)
		if err != nil {
			return err
		}
		countrySeries[i] = series
		values := make([]int, len(dates))
		byDate := make(map[string]int, len(series))
		for _, d := range series {
			byDate[d.Date] = d.Confirmed
		}
		for j, date := range dates {
			values[j] = byDate[date]
		}
		comparison = append(comparison, Series{Label: c.Name, Color: c.Color, Values: values})
	}
	comparisonChart, err := r.renderChart("Confirmed cases comparison", dates, comparison)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# COVID-19 Global Report\n\n")
	fmt.Fprintf(&b, "Data through %s.\n\n", asOf)

	fmt.Fprintf(&b, "## Worldwide totals\n\n")
	fmt.Fprintf(&b, "![Worldwide cases](%s)\n\n", worldChart)
	writeTable(&b, []string{"Date", "Confirmed", "New", "Growth"}, growthRows(daily, 10))

	fmt.Fprintf(&b, "\n## Daily new cases\n\n")
	fmt.Fprintf(&b, "![Worldwide new cases](%s)\n", newChart)

	fmt.Fprintf(&b, "\n## Top countries by confirmed cases\n\n")
	writeTable(&b, []string{"#", "Country", "Confirmed"}, rankRows(topConfirmed))

	fmt.Fprintf(&b, "\n## Top countries by deaths\n\n")
	writeTable(&b, []string{"#", "Country", "Deaths"}, rankRows(topDeaths))

	fmt.Fprintf(&b, "\n## Top countries by recovered cases\n\n")
	writeTable(&b, []string{"#", "Country", "Recovered"}, rankRows(topRecovered))

	fmt.Fprintf(&b, "\n## Doubling speed\n\n")
	fmt.Fprintf(&b, "Days each country's confirmed count spent inside a doubling range, for countries past %s cases.\n\n",
		numberPrinter.Sprintf("%d", doublingBands[4].Hi))
	header := []string{"Country"}
	for _, band := range doublingBands {
		header = append(header, band.Label)
	}
	header = append(header, "Total")
	rows := make([][]string, len(doubling))
	for i, d := range doubling {
		row := []string{d.Country}
		total := 0
		for _, days := range d.Days {
			row = append(row, numberPrinter.Sprintf("%d", days))
			total += days
		}
		row = append(row, numberPrinter.Sprintf("%d", total))
		rows[i] = row
	}
	writeTable(&b, header, rows)

	fmt.Fprintf(&b, "\n## Country comparison\n\n")
	fmt.Fprintf(&b, "![Confirmed cases comparison](%s)\n", comparisonChart)

	fmt.Fprintf(&b, "\n## Country detail\n")
	for i, c := range comparisonCountries {
		series := countrySeries[i]
		if len(series) == 0 {
			continue
		}
		cDates, cConfirmed, cDeaths, cRecovered := totalsAxes(series)
		chart, err := r.renderChart(c.Name+" cases", cDates, []Series{
			{Label: "Confirmed", Color: gold, Values: cConfirmed},
			{Label: "Deaths", Color: lightBlue, Values: cDeaths},
			{Label: "Recovered", Color: lime, Values: cRecovered},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "\n### %s\n\n", c.Name)
		fmt.Fprintf(&b, "![%s cases](%s)\n\n", c.Name, chart)
		writeTable(&b, []string{"Date", "Confirmed", "New", "Growth"}, growthRows(series, 10))
	}

	path := filepath.Join(r.outDir, "global_report.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Mexico writes mx_report.md and its charts.
func (r *Reporter) Mexico() error {
	if err := r.ensureDirs(); err != nil {
		return err
	}
	asOf, err := r.store.LatestAdmissionDate()
	if err != nil {
		return err
	}
	if asOf == "" {
		return fmt.Errorf("no line list data loaded")
	}

	states, err := r.store.ConfirmedByState()
	if err != nil {
		return err
	}
	ages, err := r.store.ConfirmedByAgeGroup()
	if err != nil {
		return err
	}
	symptoms, err := r.store.SymptomsByDate()
	if err != nil {
		return err
	}
	deaths, err := r.store.DeathsByDate()
	if err != nil {
		return err
	}
	outcomes, err := r.store.OutcomesByDate()
	if err != nil {
		return err
	}

	symptomsChart, err := r.renderChart("Casos confirmados por fecha de síntomas",
		dateAxis(symptoms), []Series{
			{Label: "Confirmados", Color: gold, Values: countAxis(symptoms)},
		})
	if err != nil {
		return err
	}
	deathsChart, err := r.renderChart("Defunciones confirmadas por fecha",
		dateAxis(deaths), []Series{
			{Label: "Defunciones", Color: lightBlue, Values: countAxis(deaths)},
		})
	if err != nil {
		return err
	}

	outcomeDates := make([]string, len(outcomes))
	confirmedByDay := make([]int, len(outcomes))
	negativeByDay := make([]int, len(outcomes))
	suspectedByDay := make([]int, len(outcomes))
	for i, o := range outcomes {
		outcomeDates[i] = o.Date
		confirmedByDay[i] = o.Confirmed
		negativeByDay[i] = o.Negative
		suspectedByDay[i] = o.Suspected
	}
	outcomesChart, err := r.renderChart("Casos por clasificación y fecha de ingreso",
		outcomeDates, []Series{
			{Label: "Confirmados", Color: gold, Values: confirmedByDay},
			{Label: "Negativos", Color: lime, Values: negativeByDay},
			{Label: "Sospechosos", Color: lightBlue, Values: suspectedByDay},
		})
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Reporte COVID-19 México\n\n")
	fmt.Fprintf(&b, "Datos al %s.\n\n", asOf)

	fmt.Fprintf(&b, "## Casos confirmados por entidad de residencia\n\n")
	stateRows := make([][]string, len(states))
	for i, s := range states {
		total := s.Women + s.Men
		stateRows[i] = []string{
			s.State,
			numberPrinter.Sprintf("%d", s.Women),
			percentage(s.Women, total),
			numberPrinter.Sprintf("%d", s.Men),
			percentage(s.Men, total),
			numberPrinter.Sprintf("%d", total),
		}
	}
	writeTable(&b, []string{"Entidad", "Mujeres", "% Mujeres", "Hombres", "% Hombres", "Total"}, stateRows)

	fmt.Fprintf(&b, "\n## Casos confirmados por grupo de edad\n\n")
	ageRows := make([][]string, len(ages))
	for i, a := range ages {
		ageRows[i] = []string{
			a.Label,
			numberPrinter.Sprintf("%d", a.Women),
			numberPrinter.Sprintf("%d", a.Men),
			numberPrinter.Sprintf("%d", a.Women+a.Men),
		}
	}
	writeTable(&b, []string{"Grupo de edad", "Mujeres", "Hombres", "Total"}, ageRows)

	fmt.Fprintf(&b, "\n## Casos por fecha de síntomas\n\n")
	fmt.Fprintf(&b, "![Casos confirmados por fecha de síntomas](%s)\n\n", symptomsChart)
	writeTable(&b, []string{"Fecha", "Acumulados", "Nuevos", "Crecimiento"},
		growthRows(cumulative(symptoms), 10))

	fmt.Fprintf(&b, "\n## Defunciones\n\n")
	fmt.Fprintf(&b, "![Defunciones confirmadas por fecha](%s)\n\n", deathsChart)
	writeTable(&b, []string{"Fecha", "Acumuladas", "Nuevas", "Crecimiento"},
		growthRows(cumulative(deaths), 10))

	fmt.Fprintf(&b, "\n## Clasificación por fecha de ingreso\n\n")
	fmt.Fprintf(&b, "![Casos por clasificación y fecha de ingreso](%s)\n\n", outcomesChart)
	var totalConfirmed, totalNegative, totalSuspected int
	for _, o := range outcomes {
		totalConfirmed += o.Confirmed
		totalNegative += o.Negative
		totalSuspected += o.Suspected
	}
	totalOutcomes := totalConfirmed + totalNegative + totalSuspected
	writeTable(&b, []string{"Clasificación", "Casos", "Porcentaje"}, [][]string{
		{"Confirmados", numberPrinter.Sprintf("%d", totalConfirmed), percentage(totalConfirmed, totalOutcomes)},
		{"Negativos", numberPrinter.Sprintf("%d", totalNegative), percentage(totalNegative, totalOutcomes)},
		{"Sospechosos", numberPrinter.Sprintf("%d", totalSuspected), percentage(totalSuspected, totalOutcomes)},
	})

	path := filepath.Join(r.outDir, "mx_report.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (r *Reporter) chartsDir() string {
	return filepath.Join(r.outDir, "charts")
}

func (r *Reporter) ensureDirs() error {
	if err := os.MkdirAll(r.chartsDir(), 0o755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}
	return nil
}

// renderChart writes the chart under charts/ and returns the relative path
// for the markdown image link.
func (r *Reporter) renderChart(title string, dates []string, series []Series) (string, error) {
	name := chartSlug(title) + ".png"
	if err := RenderLineChart(title, dates, series, filepath.Join(r.chartsDir(), name)); err != nil {
		return "", err
	}
	return "charts/" + name, nil
}

// growthRows formats the last n days of a cumulative series with
// day-over-day growth.
func growthRows(daily []DailyTotal, n int) [][]string {
	start := len(daily) - n
	if start < 1 {
		start = 1
	}
	var rows [][]string
	for i := start; i < len(daily); i++ {
		prev := daily[i-1].Confirmed
		delta := daily[i].Confirmed - prev
		growth := "-"
		if prev > 0 {
			growth = fmt.Sprintf("%.1f%%", 100*float64(delta)/float64(prev))
		}
		rows = append(rows, []string{
			daily[i].Date,
			numberPrinter.Sprintf("%d", daily[i].Confirmed),
			numberPrinter.Sprintf("%d", delta),
			growth,
		})
	}
	return rows
}

// totalsAxes splits a daily series into the parallel slices the chart
// renderer wants.
func totalsAxes(daily []DailyTotal) (dates []string, confirmed, deaths, recovered []int) {
	dates = make([]string, len(daily))
	confirmed = make([]int, len(daily))
	deaths = make([]int, len(daily))
	recovered = make([]int, len(daily))
	for i, d := range daily {
		dates[i] = d.Date
		confirmed[i] = d.Confirmed
		deaths[i] = d.Deaths
		recovered[i] = d.Recovered
	}
	return dates, confirmed, deaths, recovered
}

// deltas converts a cumulative series into day-over-day new counts.
// Downward corrections in the source clamp to zero.
func deltas(values []int) []int {
	out := make([]int, len(values))
	prev := 0
	for i, v := range values {
		d := v - prev
		if d < 0 {
			d = 0
		}
		out[i] = d
		prev = v
	}
	return out
}

// cumulative turns per-day counts into a running total so the growth table
// helpers apply to the line list series too.
func cumulative(counts []DateCount) []DailyTotal {
	out := make([]DailyTotal, len(counts))
	sum := 0
	for i, c := range counts {
		sum += c.Count
		out[i] = DailyTotal{Date: c.Date, Confirmed: sum}
	}
	return out
}

func percentage(part, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(total))
}

func rankRows(counts []CountryCount) [][]string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			c.Country,
			numberPrinter.Sprintf("%d", c.Value),
		}
	}
	return rows
}

func dateAxis(counts []DateCount) []string {
	dates := make([]string, len(counts))
	for i, c := range counts {
		dates[i] = c.Date
	}
	return dates
}

func countAxis(counts []DateCount) []int {
	values := make([]int, len(counts))
	for i, c := range counts {
		values[i] = c.Count
	}
	return values
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
}

// asciiFold strips diacritics and anything else outside ASCII. Chart
// filenames stay portable and drawn text stays inside the bitmap face's
// coverage.
var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

func foldLabel(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return folded
}

func chartSlug(title string) string {
	folded := foldLabel(title)
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pending = false
		default:
			pending = true
		}
	}
	return b.String()
}
