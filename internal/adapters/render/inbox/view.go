package inbox

import (
	"fmt"
	"time"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	// Now enables relative timestamps. The zero value prints absolute times.
	Now      time.Time
	Location *time.Location
}

// Snapshot is everything the inbox view shows at one instant.
type Snapshot struct {
	Self     domain.Identity
	Contacts []domain.Contact
	Groups   []domain.GroupSummary
	Windows  domain.OpenWindows
}

type ThreadView struct {
	Key      domain.ThreadKey
	Title    string
	Self     domain.UserID
	Messages []domain.Message
	// Names resolves private senders; group messages carry their own.
	Names map[domain.UserID]string
}

func renderInbox(snapshot Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Conversations"),
		s.header.Render(fmt.Sprintf("contacts: %d  groups: %d  open: %d  unread: %d",
			len(snapshot.Contacts), len(snapshot.Groups), snapshot.Windows.Len(), totalUnread(snapshot.Contacts))),
	}

	lines = append(lines, s.section.Render(renderContacts(snapshot, s)))
	lines = append(lines, s.section.Render(renderGroups(snapshot, s)))
	lines = append(lines, s.section.Render(renderWindows(snapshot, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderContacts(snapshot Snapshot, s styles) string {
	parts := []string{s.header.Render("Contacts")}
	if len(snapshot.Contacts) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.empty.Render("No contacts."))...)
	}

	for _, contact := range snapshot.Contacts {
		presence := s.offline.Render("○")
		if contact.Online {
			presence = s.online.Render("●")
		}

		line := lipgloss.JoinHorizontal(lipgloss.Top,
			presence,
			" ",
			s.contact.Render(contact.DisplayName()),
			" ",
			s.meta.Render(fmt.Sprintf("(%s)", contact.ID)),
		)
		if contact.UnreadCount > 0 {
			line += " " + s.unread.Render(fmt.Sprintf("[%d unread]", contact.UnreadCount))
		}
		if snapshot.Windows.Contains(domain.PrivateThread(contact.ID)) {
			line += " " + s.window.Render("[open]")
		}
		parts = append(parts, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderGroups(snapshot Snapshot, s styles) string {
	parts := []string{s.header.Render("Groups")}
	if len(snapshot.Groups) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.empty.Render("No groups."))...)
	}

	for _, group := range snapshot.Groups {
		line := s.group.Render(groupName(group)) + " " + s.meta.Render(fmt.Sprintf("(%s)", group.ID))
		if snapshot.Windows.Contains(domain.GroupThread(group.ID)) {
			line += " " + s.window.Render("[open]")
		}
		parts = append(parts, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderWindows(snapshot Snapshot, s styles) string {
	parts := []string{s.header.Render("Open windows")}
	keys := snapshot.Windows.Keys()
	if len(keys) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.empty.Render("No open windows."))...)
	}

	names := ContactNames(snapshot.Contacts)
	groups := make(map[domain.GroupID]string, len(snapshot.Groups))
	for _, group := range snapshot.Groups {
		groups[group.ID] = groupName(group)
	}

	for _, key := range keys {
		label := key.String()
		switch key.Kind {
		case domain.ThreadPrivate:
			if name, ok := names[key.UserID()]; ok {
				label = fmt.Sprintf("%s (%s)", name, key)
			}
		case domain.ThreadGroup:
			if name, ok := groups[key.GroupID()]; ok {
				label = fmt.Sprintf("%s (%s)", name, key)
			}
		}
		parts = append(parts, s.window.Render("• "+label))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderThread(thread ThreadView, opts RenderOptions, s styles) string {
	title := thread.Title
	if title == "" {
		title = thread.Key.String()
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("messages: %d", len(thread.Messages))),
	}
	if len(thread.Messages) == 0 {
		lines = append(lines, s.empty.Render("No messages yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, message := range thread.Messages {
		sender := s.sender.Render(senderName(message, thread))
		if thread.Self > 0 && message.SenderID == thread.Self {
			sender = s.self.Render("you")
		}

		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			s.meta.Render(formatTimestamp(message.CreatedAt, opts)),
			" ",
			sender,
			s.meta.Render(": "),
			s.body.Render(message.Content),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func senderName(message domain.Message, thread ThreadView) string {
	if message.SenderName != "" {
		return message.SenderName
	}
	if name, ok := thread.Names[message.SenderID]; ok && name != "" {
		return name
	}
	return "user " + message.SenderID.String()
}

func formatTimestamp(unix int64, opts RenderOptions) string {
	if unix <= 0 {
		return "--:--"
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	at := time.Unix(unix, 0).In(loc)
	if opts.Now.IsZero() {
		return at.Format("2006-01-02 15:04")
	}

	now := opts.Now.In(loc)
	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}

	return at.Format("15:04 on 02 Jan")
}

// ContactNames maps contact ids to display names for ThreadView.Names.
func ContactNames(contacts []domain.Contact) map[domain.UserID]string {
	names := make(map[domain.UserID]string, len(contacts))
	for _, contact := range contacts {
		names[contact.ID] = contact.DisplayName()
	}
	return names
}

func groupName(group domain.GroupSummary) string {
	if group.Name != "" {
		return group.Name
	}
	return "group " + group.ID.String()
}

func totalUnread(contacts []domain.Contact) int {
	total := 0
	for _, contact := range contacts {
		total += contact.UnreadCount
	}
	return total
}
