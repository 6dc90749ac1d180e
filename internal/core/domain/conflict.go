package domain

// Conflict describes a proposed rename that collides with another entry.
type Conflict struct {
	ID         string // Entry being renamed
	Requested  string // Name the user typed
	Suggestion string // First free numbered variant of Requested
	OwnName    string // Entry's committed name, always acceptable
}

// Outcome is the result kind of an interactive conflict resolution.
type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeRenamed
)

func (o Outcome) String() string {
	if o == OutcomeRenamed {
		return "renamed"
	}
	return "cancelled"
}

// Resolution is returned by the conflict resolver. Name is only set when
// Outcome is OutcomeRenamed.
type Resolution struct {
	Outcome Outcome
	Name    string
}

// Renamed builds a successful resolution.
func Renamed(name string) Resolution {
	return Resolution{Outcome: OutcomeRenamed, Name: name}
}

// Cancelled builds a cancelled resolution.
func Cancelled() Resolution {
	return Resolution{Outcome: OutcomeCancelled}
}

// SourceChange is reported when the browsed source directory changes on disk.
type SourceChange struct {
	Path string
	Op   string
}
