package models

import "time"

// Rating is a user's score for a course. At most one exists per (UserID, CourseID).
type Rating struct {
	ID             int64     `json:"id" db:"id"`
	CourseID       int64     `json:"courseId" db:"course_id"`
	UserID         UserID    `json:"userId" db:"user_id"`
	Score          float64   `json:"score" db:"score"`
	WouldTakeAgain bool      `json:"wouldTakeAgain" db:"would_take_again"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
