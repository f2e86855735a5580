package diagram

// Markup is the result of extracting diagram source from a model reply.
// It is either Found with the diagram text, or Absent. The zero value is
// Absent.
type Markup struct {
	text  string
	found bool
}

// Found wraps extracted diagram text.
func Found(text string) Markup {
	return Markup{text: text, found: true}
}

// Absent is the result when no diagram markup could be located.
func Absent() Markup {
	return Markup{}
}

// Text returns the markup and whether it was found.
func (m Markup) Text() (string, bool) {
	return m.text, m.found
}

// IsAbsent reports whether no markup was found.
func (m Markup) IsAbsent() bool {
	return !m.found
}

func (m Markup) String() string {
	if !m.found {
		return "<absent>"
	}
	return m.text
}
