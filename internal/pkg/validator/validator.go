package validator

// Validator validates structs based on their field tags.
type Validator interface {
	// Validate returns nil when v passes all of its declared rules, otherwise
	// an error describing every failing field.
	Validate(v any) error
}
