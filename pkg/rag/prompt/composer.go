package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"aura-support-be/internal/entity"
	"aura-support-be/pkg/llm"
	"aura-support-be/pkg/rag/errs"
	"aura-support-be/pkg/rag/retrieval"
)

// Prompt is the request-scoped model input. Sections keep their composition
// order: instructions, knowledge, history oldest first, current message.
type Prompt struct {
	System  string
	Context retrieval.Result
	History []entity.Turn
	Message string
}

// Messages renders the prompt in chat form.
func (p *Prompt) Messages() []llm.Message {
	messages := make([]llm.Message, 0, 2+2*len(p.History))
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: p.systemContent()})

	for _, t := range p.History {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: t.UserMessage},
			llm.Message{Role: llm.RoleAssistant, Content: t.Reply},
		)
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: p.Message})
	return messages
}

// Size is the rendered length in characters (runes).
func (p *Prompt) Size() int {
	size := 0
	for _, m := range p.Messages() {
		size += utf8.RuneCountInString(m.Content)
	}
	return size
}

func (p *Prompt) systemContent() string {
	if len(p.Context) == 0 {
		return p.System
	}

	var sb strings.Builder
	sb.WriteString(p.System)
	sb.WriteString("\n\n<reference_material>\n")
	for i, sc := range p.Context {
		fmt.Fprintf(&sb, "[%d] (%s#%d)\n%s\n", i+1, sc.Chunk.DocumentId, sc.Chunk.Offset, sc.Chunk.Text)
	}
	sb.WriteString("</reference_material>")
	return sb.String()
}

// Composer merges knowledge, history and the new message under a size budget.
type Composer struct {
	system string
	budget int
}

// NewComposer creates a composer. A budget <= 0 disables truncation.
func NewComposer(system string, budget int) *Composer {
	return &Composer{system: system, budget: budget}
}

// Compose is deterministic in its inputs. Over budget it drops the oldest
// history turn first, then the lowest scored chunk. The instructions and the
// message are never cut; if they alone exceed the budget it returns
// errs.ErrPromptTooLarge.
func (c *Composer) Compose(history []entity.Turn, retrieved retrieval.Result, message string) (*Prompt, error) {
	base := &Prompt{System: c.system, Message: message}
	if c.budget > 0 && base.Size() > c.budget {
		return nil, fmt.Errorf("%w: %d characters needed, budget is %d", errs.ErrPromptTooLarge, base.Size(), c.budget)
	}

	p := &Prompt{
		System:  c.system,
		Context: append(retrieval.Result(nil), retrieved...),
		History: make([]entity.Turn, len(history)),
		Message: message,
	}
	for i, t := range history {
		p.History[i] = t.Clone()
	}

	if c.budget <= 0 {
		return p, nil
	}

	for p.Size() > c.budget && len(p.History) > 0 {
		p.History = p.History[1:]
	}
	for p.Size() > c.budget && len(p.Context) > 0 {
		p.Context = p.Context[:len(p.Context)-1]
	}
	return p, nil
}
