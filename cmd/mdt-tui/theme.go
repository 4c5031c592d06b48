package main

import "github.com/charmbracelet/lipgloss"

type uiTheme struct {
	root         lipgloss.Style
	header       lipgloss.Style
	tabActive    lipgloss.Style
	tabInactive  lipgloss.Style
	panel        lipgloss.Style
	panelTitle   lipgloss.Style
	footer       lipgloss.Style
	status       lipgloss.Style
	errorStatus  lipgloss.Style
	inputPanel   lipgloss.Style
	helpText     lipgloss.Style
	fieldLabel   lipgloss.Style
	fieldFocus   lipgloss.Style
	officerName  lipgloss.Style
	initials     lipgloss.Style
	adminBadge   lipgloss.Style
	panicBadge   lipgloss.Style
	linkUp       lipgloss.Style
	linkDown     lipgloss.Style
	section      lipgloss.Style
	placeholder  lipgloss.Style
	rowTitle     lipgloss.Style
	rowTag       lipgloss.Style
	rowMeta      lipgloss.Style
	rowBody      lipgloss.Style
	rowSelected  lipgloss.Style
	rowMine      lipgloss.Style
	chip         lipgloss.Style
	action       lipgloss.Style
	actionDanger lipgloss.Style
	modalFrame   lipgloss.Style
	modalTitle   lipgloss.Style
	checkOn      lipgloss.Style
	checkOff     lipgloss.Style
	background   lipgloss.Color
}

func newTheme() uiTheme {
	blue := lipgloss.Color("#3b82f6")
	red := lipgloss.Color("#ef4444")
	amber := lipgloss.Color("#fbbf24")
	green := lipgloss.Color("#22c55e")
	bg := lipgloss.Color("#0b1220")
	panelBg := lipgloss.Color("#111a2e")
	text := lipgloss.Color("#e5e7eb")
	muted := lipgloss.Color("#94a3b8")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Background(blue).
			Foreground(lipgloss.Color("#0b1220")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Background(lipgloss.Color("#1e293b")).
			Foreground(muted).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(amber).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		fieldLabel:  lipgloss.NewStyle().Foreground(muted),
		fieldFocus:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		officerName: lipgloss.NewStyle().Foreground(text).Bold(true),
		initials: lipgloss.NewStyle().
			Background(blue).
			Foreground(lipgloss.Color("#0b1220")).
			Bold(true).
			Padding(0, 1),
		adminBadge: lipgloss.NewStyle().
			Background(amber).
			Foreground(lipgloss.Color("#0b1220")).
			Bold(true).
			Padding(0, 1),
		panicBadge: lipgloss.NewStyle().
			Background(red).
			Foreground(text).
			Bold(true).
			Padding(0, 1),
		linkUp:      lipgloss.NewStyle().Foreground(green).Bold(true),
		linkDown:    lipgloss.NewStyle().Foreground(red).Bold(true),
		section:     lipgloss.NewStyle().Foreground(muted).Underline(true),
		placeholder: lipgloss.NewStyle().Foreground(muted).Italic(true),
		rowTitle:    lipgloss.NewStyle().Foreground(text).Bold(true),
		rowTag: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		rowMeta:     lipgloss.NewStyle().Foreground(muted),
		rowBody:     lipgloss.NewStyle().Foreground(text),
		rowSelected: lipgloss.NewStyle().Foreground(amber).Bold(true),
		rowMine:     lipgloss.NewStyle().Foreground(green),
		chip: lipgloss.NewStyle().
			Background(lipgloss.Color("#7f1d1d")).
			Foreground(text).
			Padding(0, 1),
		action:       lipgloss.NewStyle().Foreground(blue),
		actionDanger: lipgloss.NewStyle().Foreground(red),
		modalFrame: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(amber).
			Padding(1, 2),
		modalTitle: lipgloss.NewStyle().
			Foreground(amber).
			Bold(true),
		checkOn:    lipgloss.NewStyle().Foreground(red).Bold(true),
		checkOff:   lipgloss.NewStyle().Foreground(muted),
		background: bg,
	}
}
