package mail

import "time"

// Messages is the working set of fetched applications for one run.
type Messages struct {
	Items []*Message
}

// Message is one applicant email reduced to the fields the evaluation
// pipeline needs.
type Message struct {
	ID       string
	ThreadID string
	Sender   string
	Subject  string
	Date     time.Time
	Body     string
}

// Excerpt bounds the body to limit runes for persistence, marking the cut
// with an ellipsis. Multi-byte characters are never split.
func (m *Message) Excerpt(limit int) string {
	if m == nil || limit <= 0 {
		return ""
	}

	runes := []rune(m.Body)
	if len(runes) <= limit {
		return m.Body
	}

	return string(runes[:limit]) + "..."
}

func (m *Messages) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Items)
}

func (m *Messages) FindByID(id string) *Message {
	for _, msg := range m.Items {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// IDs returns the message ids in list order.
func (m *Messages) IDs() []string {
	ids := make([]string, 0, m.Len())
	for _, msg := range m.Items {
		ids = append(ids, msg.ID)
	}
	return ids
}

// Exclude removes every message whose id is in targets and returns the ids
// actually removed. List order is preserved.
func (m *Messages) Exclude(targets []string) []string {
	if m == nil || len(targets) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(targets))
	for _, id := range targets {
		drop[id] = true
	}

	var excluded []string
	kept := m.Items[:0]
	for _, msg := range m.Items {
		if drop[msg.ID] {
			excluded = append(excluded, msg.ID)
			continue
		}
		kept = append(kept, msg)
	}
	m.Items = kept

	return excluded
}
