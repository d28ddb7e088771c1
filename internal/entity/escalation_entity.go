package entity

type EscalationLevel string

const (
	EscalationNone      EscalationLevel = "NONE"
	EscalationSuggested EscalationLevel = "SUGGESTED"
	EscalationRequired  EscalationLevel = "REQUIRED"
)

// Rank orders levels so the stronger of two decisions can be picked.
func (l EscalationLevel) Rank() int {
	switch l {
	case EscalationRequired:
		return 2
	case EscalationSuggested:
		return 1
	default:
		return 0
	}
}
