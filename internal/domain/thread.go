package domain

import "sort"

// Thread is the message history of one thread, kept sorted by CreatedAt
// with ties in arrival order. Messages with an id appear at most once.
type Thread struct {
	messages []Message
	ids      map[MessageID]struct{}
}

func NewThread() *Thread {
	return &Thread{ids: map[MessageID]struct{}{}}
}

// Merge inserts every message whose id is not present yet and returns the
// number of messages added. Messages without an id are matched by content
// against messages that carry one: a history row that repeats a pushed
// message is absorbed, and a pushed message that repeats an id-less row
// lends it its id. Unmatched id-less messages are always inserted.
func (t *Thread) Merge(messages ...Message) int {
	if t.ids == nil {
		t.ids = map[MessageID]struct{}{}
	}

	// each existing message absorbs at most one counterpart per call
	claimed := map[int]struct{}{}
	added := 0
	for _, message := range messages {
		if message.ID != "" {
			if _, ok := t.ids[message.ID]; ok {
				continue
			}
			t.ids[message.ID] = struct{}{}
			if i := t.counterpart(message, claimed, false); i >= 0 {
				t.messages[i].ID = message.ID
				claimed[i] = struct{}{}
				continue
			}
		} else if i := t.counterpart(message, claimed, true); i >= 0 {
			claimed[i] = struct{}{}
			continue
		}
		t.messages = append(t.messages, message)
		added++
	}

	if added > 0 {
		sort.SliceStable(t.messages, func(i, j int) bool {
			return t.messages[i].CreatedAt < t.messages[j].CreatedAt
		})
	}

	return added
}

// counterpart finds an unclaimed message with the same content that does
// (withID) or does not carry an id. It returns -1 when there is none.
func (t *Thread) counterpart(message Message, claimed map[int]struct{}, withID bool) int {
	for i, existing := range t.messages {
		if _, ok := claimed[i]; ok {
			continue
		}
		if (existing.ID != "") != withID {
			continue
		}
		if existing.SameContent(message) {
			return i
		}
	}

	return -1
}

func (t *Thread) Contains(id MessageID) bool {
	_, ok := t.ids[id]
	return ok
}

func (t *Thread) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the ordered sequence.
func (t *Thread) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
