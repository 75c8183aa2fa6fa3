package models

import "time"

// Course is taught by exactly one professor. AverageRating is derived from the
// course's ratings and is nil while the course has none.
type Course struct {
	ID            int64     `json:"id" db:"id"`
	CourseNumber  string    `json:"courseNumber" db:"course_number"`
	Title         string    `json:"title" db:"title"`
	ProfessorID   int64     `json:"professorId" db:"professor_id"`
	AverageRating *float64  `json:"averageRating" db:"average_rating"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
