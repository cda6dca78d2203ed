package domain

import "time"

// Subject is one row of the ledger
type Subject struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Credit float64 `json:"credit,omitempty"`
	Grade  string  `json:"grade,omitempty"`
}

// Slot addresses a semester inside a year. Semester is 1-based.
type Slot struct {
	Year     int `json:"year"`
	Semester int `json:"semester"`
}

// Year is the projection of one academic year with its semesters
type Year struct {
	Year      int         `json:"year"`
	Semesters [][]Subject `json:"semesters"`
}

// Friend is an entry of the comparison roster
type Friend struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	CGPA float64 `json:"cgpa"`
}

// Ranking is a roster entry placed by CGPA
type Ranking struct {
	Rank int     `json:"rank"`
	Name string  `json:"name"`
	CGPA float64 `json:"cgpa"`
	Me   bool    `json:"me,omitempty"`
}

// Calculation records one CGPA computation
type Calculation struct {
	ID        string    `json:"id"`
	CGPA      float64   `json:"cgpa"`
	Credits   float64   `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}
