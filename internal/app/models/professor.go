package models

import "time"

// Professor is a member of teaching staff whose courses can be reviewed.
type Professor struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Department string    `json:"department" db:"department"`
	Bio        *string   `json:"bio,omitempty" db:"bio"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Courses []*Course `json:"courses,omitempty"`
}

// ProfessorMatch is one search hit.
type ProfessorMatch struct {
	ProfessorID   int64  `json:"professorId"`
	ProfessorName string `json:"professorName"`
}
