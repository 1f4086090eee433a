package report

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	_ "modernc.org/sqlite"
)

// Store holds one run's case data in an in-memory database so the report
// queries can aggregate it. Nothing survives the process.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE cases_global (
	isodate   TEXT NOT NULL,
	country   TEXT NOT NULL,
	confirmed INTEGER NOT NULL,
	deaths    INTEGER NOT NULL,
	recovered INTEGER NOT NULL,
	PRIMARY KEY (isodate, country)
);
CREATE INDEX idx_cases_global_country ON cases_global(country);

CREATE TABLE cases_mx (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	fecha_ingreso  TEXT NOT NULL,
	fecha_sintomas TEXT NOT NULL,
	fecha_def      TEXT NOT NULL,
	entidad_res    TEXT NOT NULL,
	sexo           TEXT NOT NULL,
	edad           INTEGER NOT NULL,
	clasificacion  TEXT NOT NULL
);
CREATE INDEX idx_cases_mx_ingreso ON cases_mx(fecha_ingreso);
CREATE INDEX idx_cases_mx_entidad ON cases_mx(entidad_res);
`

func OpenStore() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var globalHeader = []string{"isodate", "country", "confirmed", "deaths", "recovered"}

// LoadGlobal ingests the merged time series CSV. It returns the number of
// rows inserted.
func (s *Store) LoadGlobal(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(globalHeader) {
		return 0, fmt.Errorf("header has %d columns, want %d", len(header), len(globalHeader))
	}
	for i, name := range header {
		if name != globalHeader[i] {
			return 0, fmt.Errorf("header column %d is %q, want %q", i+1, name, globalHeader[i])
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO cases_global (isodate, country, confirmed, deaths, recovered)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		var counts [3]int
		for i, raw := range record[2:5] {
			v, err := strconv.Atoi(raw)
			if err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("line %d: %s value %q is not an integer", line, globalHeader[i+2], raw)
			}
			counts[i] = v
		}
		if _, err := stmt.Exec(record[0], record[1], counts[0], counts[1], counts[2]); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: insert: %w", line, err)
		}
		rows++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rows, nil
}

// caseColumns are the resolved line list columns the report queries need.
// State breakdowns attribute each case to the patient's state of residence,
// not the treatment unit's.
var caseColumns = []string{
	"FECHA_INGRESO", "FECHA_SINTOMAS", "FECHA_DEF",
	"ENTIDAD_RES", "SEXO", "EDAD", "CLASIFICACION_FINAL",
}

// LoadCases ingests the resolved line list CSV. Only the columns the report
// aggregates are kept. It returns the number of rows inserted.
func (s *Store) LoadCases(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range caseColumns {
		if _, ok := index[name]; !ok {
			return 0, fmt.Errorf("resolved line list has no %s column", name)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO cases_mx (fecha_ingreso, fecha_sintomas, fecha_def, entidad_res, sexo, edad, clasificacion)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		age, err := strconv.Atoi(record[index["EDAD"]])
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: EDAD value %q is not an integer", line, record[index["EDAD"]])
		}
		_, err = stmt.Exec(
			record[index["FECHA_INGRESO"]],
			record[index["FECHA_SINTOMAS"]],
			record[index["FECHA_DEF"]],
			record[index["ENTIDAD_RES"]],
			record[index["SEXO"]],
			age,
			record[index["CLASIFICACION_FINAL"]],
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("line %d: insert: %w", line, err)
		}
		rows++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rows, nil
}
