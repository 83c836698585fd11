package validation

import (
	"regexp"
)

const (
	NameRequiredMessage   = "Name is required"
	NamePatternMessage    = "Name may contain only letters, apostrophe, dash and spaces."
	NumberRequiredMessage = "Number is required"
	NumberPatternMessage  = "Phone number must be digits and can contain spaces, dashes, parentheses and can start with +"
)

var (
	// Latin or Cyrillic letters; apostrophe, hyphen and space only between
	// letters.
	namePattern = regexp.MustCompile(
		`^[a-zA-Z\x{0400}-\x{04FF}]+(([' -][a-zA-Z\x{0400}-\x{04FF} ])?[a-zA-Z\x{0400}-\x{04FF}]*)*$`)

	numberPattern = regexp.MustCompile(
		`^\+?\d{1,4}?[-.\s]?\(?\d{1,3}?\)?[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}$`)
)

// Rule checks one field value.
type Rule func(value string) *FieldError

// Rules is the per-field rule table used by ValidateDraft.
var Rules = map[Field]Rule{
	FieldName:   requiredPattern(FieldName, NameRequiredMessage, namePattern, NamePatternMessage),
	FieldNumber: requiredPattern(FieldNumber, NumberRequiredMessage, numberPattern, NumberPatternMessage),
}

func requiredPattern(field Field, requiredMsg string, pattern *regexp.Regexp, patternMsg string) Rule {
	return func(value string) *FieldError {
		if value == "" {
			return &FieldError{Field: field, Kind: RequiredField, Message: requiredMsg}
		}
		if !pattern.MatchString(value) {
			return &FieldError{Field: field, Kind: PatternMismatch, Message: patternMsg}
		}
		return nil
	}
}

// ValidateName applies the name rule.
func ValidateName(name string) *FieldError {
	return Rules[FieldName](name)
}

// ValidateNumber applies the number rule.
func ValidateNumber(number string) *FieldError {
	return Rules[FieldNumber](number)
}

// ValidateDraft runs every field rule in order and collects the failures.
func ValidateDraft(d Draft) Result {
	var result Result
	for _, field := range fieldOrder {
		if err := Rules[field](d.Value(field)); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	return result
}
