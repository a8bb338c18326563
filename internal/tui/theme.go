package tui

import "charm.land/lipgloss/v2"

type theme struct {
	brand     lipgloss.Style
	headerBox lipgloss.Style
	headerSub lipgloss.Style

	chipReady lipgloss.Style
	chipBusy  lipgloss.Style
	chipError lipgloss.Style

	userLabel   lipgloss.Style
	deskLabel   lipgloss.Style
	fallbackTag lipgloss.Style
	intentTag   lipgloss.Style
	messageText lipgloss.Style
	errorText   lipgloss.Style
	subtle      lipgloss.Style

	footerBox lipgloss.Style
}

func newTheme() theme {
	border := lipgloss.Color("238")
	text := lipgloss.Color("252")
	muted := lipgloss.Color("246")
	accent := lipgloss.Color("111")
	success := lipgloss.Color("78")
	warn := lipgloss.Color("214")
	danger := lipgloss.Color("203")

	return theme{
		brand: lipgloss.NewStyle().Bold(true).Foreground(accent),
		headerBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(border).
			Padding(0, 1),
		headerSub: lipgloss.NewStyle().Foreground(muted),

		chipReady: lipgloss.NewStyle().Bold(true).Foreground(success),
		chipBusy:  lipgloss.NewStyle().Bold(true).Foreground(warn),
		chipError: lipgloss.NewStyle().Bold(true).Foreground(danger),

		userLabel:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147")),
		deskLabel:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		fallbackTag: lipgloss.NewStyle().Foreground(warn),
		intentTag:   lipgloss.NewStyle().Foreground(lipgloss.Color("151")),
		messageText: lipgloss.NewStyle().Foreground(text),
		errorText:   lipgloss.NewStyle().Foreground(danger),
		subtle:      lipgloss.NewStyle().Foreground(muted),

		footerBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(border).
			Padding(0, 1),
	}
}
