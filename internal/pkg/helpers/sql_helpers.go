package helpers

import (
	"database/sql"
	"strings"
)

// GetNullString converts an optional string to sql.NullString.
// A nil pointer or a blank string becomes NULL.
func GetNullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

// StringPtr returns nil for a NULL value.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// likeEscaper escapes the LIKE metacharacters using PostgreSQL's default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns free text into a bound ILIKE argument that matches the text
// as a literal substring.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

// OptionalTerm returns the trimmed term and whether it is present.
func OptionalTerm(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*s)
	return trimmed, trimmed != ""
}
