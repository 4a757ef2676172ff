package inbox

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	section lipgloss.Style
	contact lipgloss.Style
	group   lipgloss.Style
	online  lipgloss.Style
	offline lipgloss.Style
	unread  lipgloss.Style
	window  lipgloss.Style
	empty   lipgloss.Style
	self    lipgloss.Style
	sender  lipgloss.Style
	body    lipgloss.Style
	meta    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section: lipgloss.NewStyle().MarginTop(1),
		contact: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		group:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		online:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		offline: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		unread:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		window:  lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		empty:   lipgloss.NewStyle().Faint(true),
		self:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		sender:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		body:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
