package schema

import "fmt"

// FieldSpec describes one input field of the risk form: an inclusive
// integer range plus the label shown to the clinician.
type FieldSpec struct {
	Name        string `json:"name" yaml:"name"`
	Min         int    `json:"min" yaml:"min"`
	Max         int    `json:"max" yaml:"max"`
	Description string `json:"description" yaml:"description"`
}

// Count is the number of fields in the registry.
const Count = 11

// specs is the canonical field table. Order matters: it is the order the
// classifier artifact was trained on, so it drives both form rendering
// and feature vector assembly.
var specs = []FieldSpec{
	{Name: "Sex", Min: 0, Max: 1, Description: "Patient gender (0=Female, 1=Male)"},
	{Name: "ASA scores", Min: 0, Max: 5, Description: "ASA physical status classification"},
	{Name: "tumor location", Min: 1, Max: 4, Description: "Tumor location code (1-4)"},
	{Name: "Benign or malignant", Min: 0, Max: 1, Description: "Tumor nature (0=Benign, 1=Malignant)"},
	{Name: "Admitted to NICU", Min: 0, Max: 1, Description: "NICU admission status"},
	{Name: "Duration of surgery", Min: 0, Max: 1, Description: "Surgery duration category"},
	{Name: "diabetes", Min: 0, Max: 1, Description: "Diabetes mellitus status"},
	{Name: "CHF", Min: 0, Max: 1, Description: "Congestive heart failure"},
	{Name: "Functional dependencies", Min: 0, Max: 1, Description: "Functional dependencies"},
	{Name: "mFI-5", Min: 0, Max: 5, Description: "Modified Frailty Index"},
	{Name: "Type of tumor", Min: 1, Max: 5, Description: "Tumor type code (1-5)"},
}

var specIndex = func() map[string]int {
	m := make(map[string]int, len(specs))
	for i, s := range specs {
		m[s.Name] = i
	}
	return m
}()

// Specs returns the field registry in canonical order.
// The returned slice is a copy, callers cannot mutate the table.
func Specs() []FieldSpec {
	out := make([]FieldSpec, len(specs))
	copy(out, specs)
	return out
}

// Names returns the field names in canonical order.
func Names() []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

// Lookup returns the spec for a field name.
func Lookup(name string) (FieldSpec, bool) {
	i, ok := specIndex[name]
	if !ok {
		return FieldSpec{}, false
	}
	return specs[i], true
}

// Index returns the canonical position of a field name.
func Index(name string) (int, bool) {
	i, ok := specIndex[name]
	return i, ok
}

// UnknownFieldError indicates a field name not present in the registry.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field: %q", e.Field)
}

// OutOfRangeError indicates a value outside a field's inclusive bounds.
type OutOfRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("field %q value %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Validate checks a single field value against the registry bounds.
func Validate(name string, value int) error {
	s, ok := Lookup(name)
	if !ok {
		return &UnknownFieldError{Field: name}
	}
	if value < s.Min || value > s.Max {
		return &OutOfRangeError{Field: name, Value: value, Min: s.Min, Max: s.Max}
	}
	return nil
}
