package report

import "fmt"

// The resolver writes out labels, so confirmed cases are matched on the
// label text. Both "CASO DE SARS-COV-2 CONFIRMADO" and the association
// classifications contain CONFIRMADO.
const (
	confirmedPattern = "%CONFIRMADO%"
	negativePattern  = "%NEGATIVO%"
	suspectedPattern = "%SOSPECHOSO%"
)

// noDeathDate is how the line list marks a patient who has not died.
const noDeathDate = "9999-99-99"

type StateBreakdown struct {
	State string
	Women int
	Men   int
}

type DateCount struct {
	Date  string
	Count int
}

type OutcomeCount struct {
	Date      string
	Confirmed int
	Negative  int
	Suspected int
}

type AgeGroupCount struct {
	Label string
	Women int
	Men   int
}

// LatestAdmissionDate returns the most recent admission date in the line
// list, or "" when the table is empty.
func (s *Store) LatestAdmissionDate() (string, error) {
	var date string
	err := s.db.QueryRow(`SELECT COALESCE(MAX(fecha_ingreso), '') FROM cases_mx`).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("query latest admission: %w", err)
	}
	return date, nil
}

// ConfirmedByState counts confirmed cases per state of residence, split by
// sex.
func (s *Store) ConfirmedByState() ([]StateBreakdown, error) {
	rows, err := s.db.Query(`
		SELECT entidad_res,
			SUM(sexo = 'MUJER'),
			SUM(sexo = 'HOMBRE')
		FROM cases_mx
		WHERE clasificacion LIKE ?
		GROUP BY entidad_res
		ORDER BY entidad_res
	`, confirmedPattern)
	if err != nil {
		return nil, fmt.Errorf("query confirmed by state: %w", err)
	}
	defer rows.Close()

	var out []StateBreakdown
	for rows.Next() {
		var b StateBreakdown
		if err := rows.Scan(&b.State, &b.Women, &b.Men); err != nil {
			return nil, fmt.Errorf("scan confirmed by state: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SymptomsByDate counts confirmed cases by symptom onset date.
func (s *Store) SymptomsByDate() ([]DateCount, error) {
	return s.dateCounts(`
		SELECT fecha_sintomas, COUNT(*)
		FROM cases_mx
		WHERE clasificacion LIKE ?
		GROUP BY fecha_sintomas
		ORDER BY fecha_sintomas
	`, confirmedPattern)
}

// DeathsByDate counts confirmed deaths by date of death.
func (s *Store) DeathsByDate() ([]DateCount, error) {
	return s.dateCounts(`
		SELECT fecha_def, COUNT(*)
		FROM cases_mx
		WHERE clasificacion LIKE ? AND fecha_def <> ?
		GROUP BY fecha_def
		ORDER BY fecha_def
	`, confirmedPattern, noDeathDate)
}

func (s *Store) dateCounts(q string, args ...any) ([]DateCount, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query date counts: %w", err)
	}
	defer rows.Close()

	var out []DateCount
	for rows.Next() {
		var d DateCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan date counts: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// OutcomesByDate splits cases by classification outcome per admission date.
func (s *Store) OutcomesByDate() ([]OutcomeCount, error) {
	rows, err := s.db.Query(`
		SELECT fecha_ingreso,
			SUM(clasificacion LIKE ?),
			SUM(clasificacion LIKE ?),
			SUM(clasificacion LIKE ?)
		FROM cases_mx
		GROUP BY fecha_ingreso
		ORDER BY fecha_ingreso
	`, confirmedPattern, negativePattern, suspectedPattern)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var o OutcomeCount
		if err := rows.Scan(&o.Date, &o.Confirmed, &o.Negative, &o.Suspected); err != nil {
			return nil, fmt.Errorf("scan outcomes: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ConfirmedByAgeGroup buckets confirmed cases into ten-year age groups split
// by sex, with everyone ninety and over in the last group.
func (s *Store) ConfirmedByAgeGroup() ([]AgeGroupCount, error) {
	rows, err := s.db.Query(`
		SELECT CASE WHEN edad >= 90 THEN 90 ELSE (edad / 10) * 10 END AS decade,
			SUM(sexo = 'MUJER'),
			SUM(sexo = 'HOMBRE')
		FROM cases_mx
		WHERE clasificacion LIKE ?
		GROUP BY decade
		ORDER BY decade
	`, confirmedPattern)
	if err != nil {
		return nil, fmt.Errorf("query age groups: %w", err)
	}
	defer rows.Close()

	var out []AgeGroupCount
	for rows.Next() {
		var decade, women, men int
		if err := rows.Scan(&decade, &women, &men); err != nil {
			return nil, fmt.Errorf("scan age groups: %w", err)
		}
		label := fmt.Sprintf("%d-%d", decade, decade+9)
		if decade == 90 {
			label = ">= 90"
		}
		out = append(out, AgeGroupCount{Label: label, Women: women, Men: men})
	}
	return out, rows.Err()
}
