package escalation

import (
	"strings"

	"aura-support-be/internal/entity"
)

// Reason codes recorded on turns.
const (
	ReasonNone       = ""
	ReasonUnresolved = "REPLY_UNRESOLVED"
	ReasonTurnLimit  = "TURN_LIMIT_EXCEEDED"
	ReasonUrgency    = "USER_URGENCY"
	ReasonDegraded   = "PIPELINE_DEGRADED"
)

type Decision struct {
	Level  entity.EscalationLevel
	Reason string
}

// Evaluator applies the escalation rules. It is deterministic and safe for
// concurrent use.
type Evaluator struct {
	maxTurns int
	refusal  []string
	urgency  []string
}

func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{
		maxTurns: policy.MaxTurns,
		refusal:  normalizeMarkers(policy.RefusalMarkers),
		urgency:  normalizeMarkers(policy.UrgencyMarkers),
	}
}

// Evaluate decides on hand-off for one turn. turnCount includes the turn
// being evaluated; a maxTurns of 0 disables the turn limit.
func (e *Evaluator) Evaluate(userMessage, reply string, turnCount int) Decision {
	if containsAny(normalize(reply), e.refusal) {
		return Decision{Level: entity.EscalationRequired, Reason: ReasonUnresolved}
	}
	if e.maxTurns > 0 && turnCount > e.maxTurns {
		return Decision{Level: entity.EscalationRequired, Reason: ReasonTurnLimit}
	}
	if containsAny(normalize(userMessage), e.urgency) {
		return Decision{Level: entity.EscalationSuggested, Reason: ReasonUrgency}
	}
	return Decision{Level: entity.EscalationNone, Reason: ReasonNone}
}

// Degraded is the decision recorded for turns answered with an apology.
func Degraded() Decision {
	return Decision{Level: entity.EscalationSuggested, Reason: ReasonDegraded}
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(apostrophes.Replace(s))), " ")
}

func normalizeMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		if n := normalize(m); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
