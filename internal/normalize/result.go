package normalize

// Status tags the outcome of resolving one input field.
type Status int

const (
	// Absent means the caller did not supply the field.
	Absent Status = iota
	// Resolved carries a canonical key.
	Resolved
	// Unresolved carries zero or more ranked suggestions.
	Unresolved
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Resolution is built per request and discarded once the response is built.
type Resolution struct {
	Status      Status
	Key         string
	Suggestions []string
}

func absent() Resolution {
	return Resolution{Status: Absent}
}

func resolved(key string) Resolution {
	return Resolution{Status: Resolved, Key: key}
}

func unresolved(suggestions []string) Resolution {
	if suggestions == nil {
		suggestions = []string{}
	}
	return Resolution{Status: Unresolved, Suggestions: suggestions}
}
