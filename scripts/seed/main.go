// Command seed creates the database schema and loads a catalog snapshot from
// a JSON file. Intended for local development and demo environments; it is
// idempotent and upserts catalog rows by their natural keys.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

type catalogFile struct {
	Courses []struct {
		Code         string `json:"code"`
		Name         string `json:"name"`
		Department   string `json:"department"`
		Semester     int    `json:"semester"`
		ContactHours string `json:"contact_hours"`
		Practical    bool   `json:"practical"`
		Credits      int    `json:"credits"`
	} `json:"courses"`
	Faculty []struct {
		Name         string `json:"name"`
		Department   string `json:"department"`
		Subjects     string `json:"subjects"`
		YearsToTeach string `json:"years_to_teach"`
		MaxLoadHours int    `json:"max_load_hours"`
		Unavailable  string `json:"unavailable"`
		Senior       bool   `json:"senior"`
	} `json:"faculty"`
	Rooms []struct {
		Name       string `json:"name"`
		Capacity   int    `json:"capacity"`
		RoomType   string `json:"room_type"`
		Department string `json:"department"`
	} `json:"rooms"`
	Sections []struct {
		ID           string   `json:"id"`
		Department   string   `json:"department"`
		Year         int      `json:"year"`
		StudentCount int      `json:"student_count"`
		CourseCodes  []string `json:"course_codes"`
	} `json:"sections"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		code          TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		department    TEXT NOT NULL,
		semester      INT  NOT NULL,
		contact_hours TEXT NOT NULL DEFAULT '',
		practical     BOOLEAN NOT NULL DEFAULT FALSE,
		credits       INT  NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS faculty (
		name           TEXT PRIMARY KEY,
		department     TEXT NOT NULL,
		subjects       TEXT NOT NULL DEFAULT '',
		years_to_teach TEXT NOT NULL DEFAULT '',
		max_load_hours INT  NOT NULL DEFAULT 0,
		unavailable    TEXT NOT NULL DEFAULT '',
		senior         BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		name       TEXT PRIMARY KEY,
		capacity   INT  NOT NULL,
		room_type  TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT 'GENERAL'
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		id            TEXT PRIMARY KEY,
		department    TEXT NOT NULL,
		year          INT  NOT NULL,
		student_count INT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS section_courses (
		section_id  TEXT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		course_code TEXT NOT NULL REFERENCES courses(code) ON DELETE CASCADE,
		PRIMARY KEY (section_id, course_code)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_runs (
		id         TEXT PRIMARY KEY,
		department TEXT NOT NULL,
		semester   INT  NOT NULL,
		mode       TEXT NOT NULL,
		status     TEXT NOT NULL,
		seed       BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_assignments (
		run_id       TEXT NOT NULL REFERENCES schedule_runs(id) ON DELETE CASCADE,
		course_code  TEXT NOT NULL,
		course_name  TEXT NOT NULL,
		section_id   TEXT NOT NULL,
		day_of_week  TEXT NOT NULL,
		time_slot    TEXT NOT NULL,
		faculty_name TEXT NOT NULL,
		room_name    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_shortfalls (
		run_id      TEXT NOT NULL REFERENCES schedule_runs(id) ON DELETE CASCADE,
		course_code TEXT NOT NULL,
		section_id  TEXT NOT NULL,
		required    INT  NOT NULL,
		assigned    INT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_violations (
		run_id       TEXT NOT NULL REFERENCES schedule_runs(id) ON DELETE CASCADE,
		kind         TEXT NOT NULL,
		course_code  TEXT NOT NULL,
		section_id   TEXT NOT NULL,
		day_of_week  TEXT NOT NULL,
		time_slot    TEXT NOT NULL,
		faculty_name TEXT NOT NULL DEFAULT '',
		room_name    TEXT NOT NULL DEFAULT '',
		message      TEXT NOT NULL DEFAULT '',
		resolved     BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_assignments_run ON schedule_assignments(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_runs_dept_sem ON schedule_runs(department, semester)`,
}

func main() {
	var (
		dsn         string
		catalogPath string
		schemaOnly  bool
	)
	flag.StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flag.StringVar(&catalogPath, "catalog", "scripts/seed/catalog.json", "Path to JSON catalog file")
	flag.BoolVar(&schemaOnly, "schema-only", false, "Create tables without loading data")
	flag.Parse()

	if dsn == "" {
		log.Fatal("no DSN: pass -dsn or set DATABASE_URL")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
	}
	log.Println("schema applied")

	if schemaOnly {
		return
	}

	cat, err := loadCatalog(catalogPath)
	if err != nil {
		log.Fatalf("load catalog file: %v", err)
	}
	if err := seed(db, cat); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	log.Printf("seeded %d courses, %d faculty, %d rooms, %d sections",
		len(cat.Courses), len(cat.Faculty), len(cat.Rooms), len(cat.Sections))
}

func loadCatalog(path string) (*catalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat catalogFile
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cat, nil
}

func seed(db *sql.DB, cat *catalogFile) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range cat.Courses {
		_, err := tx.Exec(`INSERT INTO courses (code, name, department, semester, contact_hours, practical, credits)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, department = EXCLUDED.department,
semester = EXCLUDED.semester, contact_hours = EXCLUDED.contact_hours,
practical = EXCLUDED.practical, credits = EXCLUDED.credits`,
			c.Code, c.Name, c.Department, c.Semester, c.ContactHours, c.Practical, c.Credits)
		if err != nil {
			return fmt.Errorf("course %s: %w", c.Code, err)
		}
	}

	for _, f := range cat.Faculty {
		_, err := tx.Exec(`INSERT INTO faculty (name, department, subjects, years_to_teach, max_load_hours, unavailable, senior)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (name) DO UPDATE SET department = EXCLUDED.department, subjects = EXCLUDED.subjects,
years_to_teach = EXCLUDED.years_to_teach, max_load_hours = EXCLUDED.max_load_hours,
unavailable = EXCLUDED.unavailable, senior = EXCLUDED.senior`,
			f.Name, f.Department, f.Subjects, f.YearsToTeach, f.MaxLoadHours, f.Unavailable, f.Senior)
		if err != nil {
			return fmt.Errorf("faculty %s: %w", f.Name, err)
		}
	}

	for _, r := range cat.Rooms {
		_, err := tx.Exec(`INSERT INTO rooms (name, capacity, room_type, department)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE SET capacity = EXCLUDED.capacity,
room_type = EXCLUDED.room_type, department = EXCLUDED.department`,
			r.Name, r.Capacity, r.RoomType, r.Department)
		if err != nil {
			return fmt.Errorf("room %s: %w", r.Name, err)
		}
	}

	for _, s := range cat.Sections {
		_, err := tx.Exec(`INSERT INTO sections (id, department, year, student_count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET department = EXCLUDED.department,
year = EXCLUDED.year, student_count = EXCLUDED.student_count`,
			s.ID, s.Department, s.Year, s.StudentCount)
		if err != nil {
			return fmt.Errorf("section %s: %w", s.ID, err)
		}
		if _, err := tx.Exec(`DELETE FROM section_courses WHERE section_id = $1`, s.ID); err != nil {
			return fmt.Errorf("section %s courses: %w", s.ID, err)
		}
		for _, code := range s.CourseCodes {
			if _, err := tx.Exec(`INSERT INTO section_courses (section_id, course_code) VALUES ($1, $2)`, s.ID, code); err != nil {
				return fmt.Errorf("section %s course %s: %w", s.ID, code, err)
			}
		}
	}

	return tx.Commit()
}
