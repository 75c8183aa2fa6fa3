package models

// UserID identifies a reviewer. It is issued by an external identity collaborator
// and carries no meaning here beyond equality.
type UserID int64
