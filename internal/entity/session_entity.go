package entity

import "time"

// Session is the conversation state of one support session key.
type Session struct {
	Key          string
	Turns        []Turn
	Escalated    bool // hand-off notification already triggered
	CreatedAt    time.Time
	LastActivity time.Time
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Turns = make([]Turn, len(s.Turns))
	for i, t := range s.Turns {
		c.Turns[i] = t.Clone()
	}
	return &c
}

// TurnCount returns the number of recorded turns.
func (s *Session) TurnCount() int {
	return len(s.Turns)
}
