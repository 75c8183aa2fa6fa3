package dto

// SubmitReviewRequest is the review form. Range and length rules are enforced by the
// review service so that every caller gets the same rejection semantics.
type SubmitReviewRequest struct {
	UserID         int64    `json:"userId" binding:"required,gt=0" example:"42"`
	CourseID       int64    `json:"courseId" binding:"required,gt=0" example:"7"`
	Score          *float64 `json:"score" binding:"required" example:"4.5"`
	WouldTakeAgain *bool    `json:"wouldTakeAgain" binding:"required" example:"true"`
	Comment        string   `json:"comment" example:"Clear lectures and fair exams."`
}

// SubmitReviewResponse is returned when a review is stored.
type SubmitReviewResponse struct {
	RatingID      int64    `json:"ratingId"`
	CommentID     int64    `json:"commentId"`
	CourseID      int64    `json:"courseId"`
	AverageRating *float64 `json:"averageRating"`
}

// DeleteReviewResponse is returned after a rating (and optionally its comment) is removed.
type DeleteReviewResponse struct {
	CourseID      int64    `json:"courseId"`
	AverageRating *float64 `json:"averageRating"`
}
