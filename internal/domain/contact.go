package domain

// Contact is a private counterparty known to the directory.
type Contact struct {
	ID          UserID
	Username    string
	Avatar      string
	UnreadCount int
	Online      bool
}

func (c Contact) DisplayName() string {
	if c.Username != "" {
		return c.Username
	}

	return "user " + c.ID.String()
}

type GroupSummary struct {
	ID   GroupID
	Name string
}

// Summary is the conversations summary as served by the backend. Followers
// and Following overlap; merging them is the directory's job.
type Summary struct {
	Followers []Contact
	Following []Contact
	Groups    []GroupSummary
}

// MergedContacts concatenates followers and following, keeping the first
// occurrence of every id and dropping entries without an id.
func (s Summary) MergedContacts() []Contact {
	merged := make([]Contact, 0, len(s.Followers)+len(s.Following))
	seen := make(map[UserID]struct{}, len(s.Followers)+len(s.Following))

	for _, list := range [][]Contact{s.Followers, s.Following} {
		for _, contact := range list {
			if contact.ID <= 0 {
				continue
			}
			if _, ok := seen[contact.ID]; ok {
				continue
			}
			seen[contact.ID] = struct{}{}
			if contact.UnreadCount < 0 {
				contact.UnreadCount = 0
			}
			merged = append(merged, contact)
		}
	}

	return merged
}
