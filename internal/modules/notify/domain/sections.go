package domain

// Section is one labelled line of a notification message.
// A nil Value means the line is left out.
type Section struct {
	Label string
	Value any
}

// Sections keeps labels in insertion order.
type Sections []Section

// Add appends a section and returns the extended list.
func (s Sections) Add(label string, value any) Sections {
	return append(s, Section{Label: label, Value: value})
}

// Optional returns nil for an empty string so the line is omitted.
func Optional(value string) any {
	if value == "" {
		return nil
	}
	return value
}
