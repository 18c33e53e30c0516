package sanitizer

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// SanitizeSearchQuery normalizes free-text search input before it is turned
// into a query: surrounding whitespace trimmed, internal runs collapsed.
func SanitizeSearchQuery(input string) string {
	p := Pipeline{
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeNote normalizes free-text notes attached to appointments.
func SanitizeNote(input string) string {
	p := Pipeline{
		TrimAndNormalize,
	}
	return p.Apply(input)
}
