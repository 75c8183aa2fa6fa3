package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule values shared by the catalogue forms.
var (
	// CourseNumberPattern accepts codes such as "CS101", "MATH 2410" or "ECE-350L".
	CourseNumberPattern = `^[A-Za-z]{1,8}[ -]?[0-9]{1,5}[A-Za-z]?$`

	NameMinLength  = 2
	NameMaxLength  = 100
	TitleMaxLength = 200
	BioMaxLength   = 4000
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	CourseNumber *regexp.Regexp
}{
	CourseNumber: regexp.MustCompile(CourseNumberPattern),
}

// StringValidation checks a string by its trimmed length in characters.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Length is the number of characters after trimming surrounding whitespace.
func (v *StringValidation) Length() int {
	return utf8.RuneCountInString(strings.TrimSpace(v.Value))
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	trimmed := strings.TrimSpace(v.Value)
	if trimmed == "" {
		return !v.Required
	}

	length := v.Length()
	if v.MinLen > 0 && length < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(trimmed) {
		return false
	}

	return true
}

// FloatValidation checks a closed numeric range.
type FloatValidation struct {
	Value float64
	Min   float64
	Max   float64
}

// NewFloatValidation creates a new range validation
func NewFloatValidation(value float64) *FloatValidation {
	return &FloatValidation{Value: value}
}

// Between sets the inclusive bounds.
func (v *FloatValidation) Between(min, max float64) *FloatValidation {
	v.Min = min
	v.Max = max
	return v
}

// Validate performs validation. NaN never validates.
func (v *FloatValidation) Validate() bool {
	return v.Value >= v.Min && v.Value <= v.Max
}
