package report

import "fmt"

type CountryCount struct {
	Country string
	Value   int
}

type DailyTotal struct {
	Date      string
	Confirmed int
	Deaths    int
	Recovered int
}

// doublingBands are confirmed-case ranges that each represent one doubling.
// The number of days a country spends inside a band is how long that
// doubling took.
var doublingBands = [5]struct {
	Label  string
	Lo, Hi int
}{
	{"100-199", 100, 199},
	{"200-399", 200, 399},
	{"400-799", 400, 799},
	{"800-1599", 800, 1599},
	{"1600-3200", 1600, 3200},
}

type DoublingCount struct {
	Country string
	Days    [5]int
}

// measureColumn maps a measure name onto its column, so the caller can never
// smuggle SQL through the fmt.Sprintf below.
func measureColumn(measure string) (string, error) {
	switch measure {
	case "confirmed", "deaths", "recovered":
		return measure, nil
	}
	return "", fmt.Errorf("unknown measure %q", measure)
}

// LatestDate returns the most recent date in the global table, or "" when
// the table is empty.
func (s *Store) LatestDate() (string, error) {
	var date string
	err := s.db.QueryRow(`SELECT COALESCE(MAX(isodate), '') FROM cases_global`).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("query latest date: %w", err)
	}
	return date, nil
}

// TopCountries ranks countries by the given measure on the latest date.
func (s *Store) TopCountries(measure string, limit int) ([]CountryCount, error) {
	column, err := measureColumn(measure)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`
		SELECT country, %[1]s
		FROM cases_global
		WHERE isodate = (SELECT MAX(isodate) FROM cases_global)
		ORDER BY %[1]s DESC, country ASC
		LIMIT ?
	`, column)
	rows, err := s.db.Query(q, limit)
	if err != nil {
		return nil, fmt.Errorf("query top countries: %w", err)
	}
	defer rows.Close()

	var out []CountryCount
	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.Country, &c.Value); err != nil {
			return nil, fmt.Errorf("scan top countries: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DailyTotals sums every country per date, oldest first.
func (s *Store) DailyTotals() ([]DailyTotal, error) {
	rows, err := s.db.Query(`
		SELECT isodate, SUM(confirmed), SUM(deaths), SUM(recovered)
		FROM cases_global
		GROUP BY isodate
		ORDER BY isodate
	`)
	if err != nil {
		return nil, fmt.Errorf("query daily totals: %w", err)
	}
	defer rows.Close()

	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.Confirmed, &d.Deaths, &d.Recovered); err != nil {
			return nil, fmt.Errorf("scan daily totals: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountryDailyTotals returns one country's series, oldest first.
func (s *Store) CountryDailyTotals(country string) ([]DailyTotal, error) {
	rows, err := s.db.Query(`
		SELECT isodate, confirmed, deaths, recovered
		FROM cases_global
		WHERE country = ?
		ORDER BY isodate
	`, country)
	if err != nil {
		return nil, fmt.Errorf("query country totals: %w", err)
	}
	defer rows.Close()

	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.Confirmed, &d.Deaths, &d.Recovered); err != nil {
			return nil, fmt.Errorf("scan country totals: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DoublingCounts reports, per country that has crossed the last band, how
// many days its confirmed count spent inside each doubling band.
func (s *Store) DoublingCounts() ([]DoublingCount, error) {
	rows, err := s.db.Query(`
		SELECT country,
			SUM(confirmed BETWEEN 100 AND 199),
			SUM(confirmed BETWEEN 200 AND 399),
			SUM(confirmed BETWEEN 400 AND 799),
			SUM(confirmed BETWEEN 800 AND 1599),
			SUM(confirmed BETWEEN 1600 AND 3200)
		FROM cases_global
		GROUP BY country
		HAVING MAX(confirmed) >= 3200
		ORDER BY country
	`)
	if err != nil {
		return nil, fmt.Errorf("query doubling counts: %w", err)
	}
	defer rows.Close()

	var out []DoublingCount
	for rows.Next() {
		var d DoublingCount
		if err := rows.Scan(&d.Country, &d.Days[0], &d.Days[1], &d.Days[2], &d.Days[3], &d.Days[4]); err != nil {
			return nil, fmt.Errorf("scan doubling counts: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
