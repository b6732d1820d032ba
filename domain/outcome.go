package domain

// Outcome classifies how a coordinator handler disposed of a command.
// The original protocol drops rejected events silently; the explicit
// code lets the boundary layer log (or one day notify) without
// conflating "no-op" with "handled".
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeInvalid covers missing/empty required fields and unbound senders.
	OutcomeInvalid
	// OutcomeNotFound covers unknown groups and history targets.
	OutcomeNotFound
	// OutcomeConflict covers group names that are already taken.
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeConflict:
		return "conflict"
	default:
		return "unknown"
	}
}
