package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type focusZone int

const (
	focusForm focusZone = iota
	focusList
)

const maxLogLines = 200

type pageSpec struct {
	id       pageID
	label    string
	surfaces []surfaceID
	list     surfaceID
}

var pages = []pageSpec{
	{pageDashboard, "Dashboard", []surfaceID{surfaceCallList, surfaceUnitList, surfaceDashboardBolos}, surfaceCallList},
	{pageNameSearch, "Name", []surfaceID{surfaceNameResults}, surfaceNameResults},
	{pagePlateSearch, "Plate", []surfaceID{surfacePlateResults}, surfacePlateResults},
	{pageWeaponSearch, "Weapon", []surfaceID{surfaceWeaponResults}, ""},
	{pageBolos, "BOLOs", []surfaceID{surfaceBoloList}, surfaceBoloList},
	{pageReports, "Reports", []surfaceID{surfaceReportList}, surfaceReportList},
	{pageEmployees, "Employees", []surfaceID{surfaceEmployeeList}, surfaceEmployeeList},
	{pageWarrants, "Warrants", []surfaceID{surfaceWarrantList}, ""},
	{pageLiveChat, "Live Chat", []surfaceID{surfaceChat}, ""},
	{pageIALogs, "Internal Affairs", []surfaceID{surfaceActionLog}, ""},
}

var surfaceTitles = map[surfaceID]string{
	surfaceCallList:       "Active 911 Calls",
	surfaceUnitList:       "Active Units",
	surfaceDashboardBolos: "Latest BOLOs",
	surfaceNameResults:    "Name Search Results",
	surfacePlateResults:   "Plate Search Results",
	surfaceWeaponResults:  "Weapon Search Results",
	surfaceBoloList:       "BOLOs",
	surfaceReportList:     "Reports",
	surfaceEmployeeList:   "Employees",
	surfaceWarrantList:    "Warrants",
	surfaceChat:           "Live Chat",
	surfaceActionLog:      "Internal Affairs Log",
}

func pageSpecFor(id pageID) (int, pageSpec) {
	for i, p := range pages {
		if p.id == id {
			return i, p
		}
	}
	return 0, pages[0]
}

type model struct {
	cfg     appConfig
	term    *terminal
	inbound <-chan tea.Msg

	keys  keyMap
	theme uiTheme

	forms      map[pageID]*pageForm
	modal      modalForm
	modalSeq   int
	modalOpen  bool
	focus      focusZone
	viewedPage pageID
	cursor     map[surfaceID]int

	body    viewport.Model
	spinner spinner.Model

	linkUp       bool
	linkEndpoint string
	linkInfo     string

	statusLine string
	logs       []string

	width  int
	height int
}

func newModel(cfg appConfig, term *terminal, inbound <-chan tea.Msg, endpoint string) model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))

	body := viewport.New(0, 0)
	body.MouseWheelEnabled = true
	body.MouseWheelDelta = 3

	if cfg.startOpen {
		term.state.visible = true
	}

	m := model{
		cfg:          cfg,
		term:         term,
		inbound:      inbound,
		keys:         newKeyMap(),
		theme:        newTheme(),
		forms:        newPageForms(),
		modal:        newModalForm(),
		viewedPage:   term.state.activePage,
		cursor:       map[surfaceID]int{},
		body:         body,
		spinner:      sp,
		linkEndpoint: endpoint,
		statusLine:   "standing by",
	}
	m.focus = m.defaultFocus()
	m.renderPanes()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitInbound(m.inbound),
		m.focusCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case inboundFrameMsg:
		name := canonicalEvent(msg.event.Name)
		if m.term.dispatch(msg.event) {
			m.appendLog("event " + name)
		} else {
			m.appendLog("ignored event " + name)
		}
		cmds = append(cmds, m.syncFromTerminal(), waitInbound(m.inbound))
		m.renderPanes()
	case linkStatusMsg:
		m.linkUp = msg.connected
		m.linkEndpoint = nullCoalesce(msg.endpoint, m.linkEndpoint)
		m.linkInfo = msg.info
		switch {
		case msg.connected:
			m.statusLine = "linked to " + m.linkEndpoint
		case strings.TrimSpace(msg.info) != "":
			m.statusLine = "link down: " + compactSingleLine(msg.info, 120)
		}
		m.appendLog(m.statusLine)
		cmds = append(cmds, waitInbound(m.inbound))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg), m.syncFromTerminal())
		m.renderPanes()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		if !m.term.state.visible {
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, m.handleKey(msg), m.syncFromTerminal())
		m.renderPanes()
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	st := m.term.state
	if st.modal != nil {
		return m.handleModalKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.escape):
		m.term.handleEscape()
		m.statusLine = "close requested"
		return nil
	case key.Matches(msg, m.keys.nextPage):
		m.switchPage(1)
		return nil
	case key.Matches(msg, m.keys.prevPage):
		m.switchPage(-1)
		return nil
	case key.Matches(msg, m.keys.status):
		next := m.term.cycleStatus()
		m.statusLine = "status " + statusLabel(next)
		return nil
	case key.Matches(msg, m.keys.panic):
		m.term.panicButton()
		m.statusLine = "panic button sent"
		m.appendLog(m.statusLine)
		return nil
	case key.Matches(msg, m.keys.adminExit):
		if st.isAdmin {
			m.term.adminLogout()
			m.statusLine = "admin mode disabled"
			m.appendLog(m.statusLine)
		}
		return nil
	case key.Matches(msg, m.keys.toggleFocus):
		return m.toggleFocus()
	}
	if m.focus == focusList || m.activeForm() == nil {
		return m.handleListKey(msg)
	}
	return m.handleFormKey(msg)
}

func (m *model) switchPage(delta int) {
	idx, _ := pageSpecFor(m.term.state.activePage)
	next := pages[cycleIndex(len(pages), idx, delta)]
	m.term.navigate(next.id)
	m.statusLine = strings.ToLower(next.label)
}

func (m *model) toggleFocus() tea.Cmd {
	switch {
	case m.focus == focusForm:
		m.focus = focusList
	case m.activeForm() != nil:
		m.focus = focusForm
	}
	return m.focusCmd()
}

func (m *model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	form := m.activeForm()
	cur := form.current()
	arrow := msg.Type == tea.KeyUp || msg.Type == tea.KeyDown
	switch {
	case key.Matches(msg, m.keys.send), key.Matches(msg, m.keys.submit) && !cur.multi:
		m.submitForm(form)
		return nil
	case key.Matches(msg, m.keys.nextField) && !(cur.multi && arrow):
		return form.move(1)
	case key.Matches(msg, m.keys.prevField) && !(cur.multi && arrow):
		return form.move(-1)
	}
	return cur.update(msg)
}

func (m *model) submitForm(form *pageForm) {
	st := m.term.state
	switch st.activePage {
	case pageNameSearch:
		m.term.searchName(form.get("first"), form.get("last"))
		m.statusLine = "name search sent"
	case pagePlateSearch:
		m.term.searchPlate(form.get("plate"))
		m.statusLine = "plate search sent"
	case pageWeaponSearch:
		m.term.searchWeapon(form.get("serial"))
		m.statusLine = "weapon search sent"
	case pageBolos:
		if !m.term.createBolo(form.get("title"), form.get("type"), form.get("details")) {
			m.statusLine = "BOLO needs a title or details"
			return
		}
		form.clear("title", "details")
		m.statusLine = "BOLO submitted"
	case pageReports:
		if !m.term.createReport(form.get("title"), form.get("type"), form.get("body")) {
			m.statusLine = "report needs a title or body"
			return
		}
		form.clear("title", "body")
		m.statusLine = "report submitted"
	case pageLiveChat:
		if m.term.sendChat(form.get("message")) {
			form.clear("message")
			m.statusLine = "message sent"
		}
	case pageIALogs:
		if m.term.adminLogin(form.get("password")) {
			form.clear("password")
			m.focus = focusList
			m.statusLine = "admin mode enabled"
		} else if st.adminError != "" {
			form.clear("password")
			m.statusLine = "admin login failed"
		}
	}
	m.appendLog(m.statusLine)
}

func (m *model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	_, spec := pageSpecFor(m.term.state.activePage)
	if spec.list == "" {
		return m.scrollBody(msg)
	}
	rows := m.term.slot(spec.list).selectable()
	if len(rows) == 0 {
		return m.scrollBody(msg)
	}
	cur := clampInt(m.cursor[spec.list], 0, len(rows)-1)
	switch {
	case key.Matches(msg, m.keys.listUp):
		m.cursor[spec.list] = maxInt(0, cur-1)
		return nil
	case key.Matches(msg, m.keys.listDown):
		m.cursor[spec.list] = minInt(len(rows)-1, cur+1)
		return nil
	}
	for _, a := range rows[cur].Actions {
		if msg.String() != a.Key {
			continue
		}
		m.term.performAction(a)
		m.statusLine = strings.ToLower(a.Label) + " · " + rows[cur].Title
		m.appendLog(m.statusLine)
		return nil
	}
	return m.scrollBody(msg)
}

func (m *model) scrollBody(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return cmd
}

func (m *model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	ctx := *m.term.state.modal
	field := m.modal.fieldAt(ctx.Kind, m.modal.focus)
	multi := field != nil && field.multi
	arrow := msg.Type == tea.KeyUp || msg.Type == tea.KeyDown
	switch {
	case key.Matches(msg, m.keys.escape):
		m.term.handleEscape()
		m.statusLine = "modal closed"
		return nil
	case key.Matches(msg, m.keys.send), key.Matches(msg, m.keys.submit) && !multi:
		m.submitModal(ctx)
		return nil
	case key.Matches(msg, m.keys.nextPage), key.Matches(msg, m.keys.nextField) && !(multi && arrow):
		return m.modal.move(ctx.Kind, 1)
	case key.Matches(msg, m.keys.prevPage), key.Matches(msg, m.keys.prevField) && !(multi && arrow):
		return m.modal.move(ctx.Kind, -1)
	case field == nil && key.Matches(msg, m.keys.toggle):
		m.modal.flags[m.modal.focus] = !m.modal.flags[m.modal.focus]
		return nil
	}
	if field == nil {
		return nil
	}
	return field.update(msg)
}

func (m *model) submitModal(ctx modalContext) {
	ok := false
	switch ctx.Kind {
	case modalNote:
		ok = m.term.submitNote(m.modal.note.value())
	case modalFlags:
		ok = m.term.submitFlags(m.modal.identityFlags(), m.modal.notes.value())
	case modalWarrant:
		ok = m.term.submitWarrant(m.modal.name.value(), m.modal.charid.value(), m.modal.reason.value())
	}
	if !ok {
		m.statusLine = string(ctx.Kind) + " incomplete"
		return
	}
	m.statusLine = string(ctx.Kind) + " submitted"
	m.appendLog(m.statusLine)
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.term.state.visible {
		return nil
	}
	if m.term.state.modal == nil {
		return m.scrollBody(msg)
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	x, y, w, h := m.modalBounds()
	if msg.X < x || msg.X >= x+w || msg.Y < y || msg.Y >= y+h {
		m.term.closeModal()
		m.statusLine = "modal closed"
	}
	return nil
}

func (m *model) syncFromTerminal() tea.Cmd {
	st := m.term.state
	var cmds []tea.Cmd
	if st.activePage != m.viewedPage {
		m.viewedPage = st.activePage
		m.focus = m.defaultFocus()
		cmds = append(cmds, m.focusCmd())
	}
	if draft := m.term.takeReportDraft(); draft != nil {
		form := m.forms[pageReports]
		form.set("type", draft.Type)
		form.set("title", draft.Title)
		form.set("body", draft.Body)
		form.blurAll()
		form.focus = len(form.fields) - 1
		m.focus = focusForm
		cmds = append(cmds, m.focusCmd())
	}
	switch {
	case st.modal != nil && st.modalSeq != m.modalSeq:
		m.modalSeq = st.modalSeq
		m.modalOpen = true
		for _, f := range m.forms {
			f.blurAll()
		}
		cmds = append(cmds, m.modal.load(*st.modal))
	case st.modal == nil && m.modalOpen:
		m.modalOpen = false
		m.modal.blurAll()
		cmds = append(cmds, m.focusCmd())
	}
	return tea.Batch(cmds...)
}

func (m *model) activeForm() *pageForm {
	st := m.term.state
	if st.activePage == pageIALogs && st.isAdmin {
		return nil
	}
	return m.forms[st.activePage]
}

func (m *model) defaultFocus() focusZone {
	if m.activeForm() != nil {
		return focusForm
	}
	return focusList
}

func (m *model) focusCmd() tea.Cmd {
	for _, f := range m.forms {
		f.blurAll()
	}
	form := m.activeForm()
	if form == nil || m.focus != focusForm || m.term.state.modal != nil {
		return nil
	}
	return form.focusCurrent()
}

func (m model) View() string {
	if !m.term.state.visible {
		return m.theme.root.Render(m.renderStandby())
	}
	out := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderContent(), m.renderFooter())
	if m.term.state.modal != nil {
		out = m.renderModal()
	}
	return m.theme.root.Render(out)
}

func (m *model) renderStandby() string {
	width := clampInt(m.width-4, 40, 80)
	lines := []string{
		m.theme.panelTitle.Render("MOBILE DATA TERMINAL"),
		m.theme.helpText.Render("Standing by. The terminal opens when dispatch sends open."),
		"",
		m.renderLink(),
	}
	if !m.linkUp && strings.TrimSpace(m.linkInfo) != "" {
		lines = append(lines, m.theme.errorStatus.Render(compactSingleLine(m.linkInfo, 120)))
	}
	if len(m.logs) > 0 {
		recent := m.logs[maxInt(0, len(m.logs)-6):]
		lines = append(lines, "", m.theme.helpText.Render(strings.Join(recent, "\n")))
	}
	lines = append(lines, "", m.theme.helpText.Render(strings.Join(hints(m.keys.quit), " · ")))
	panel := m.theme.panel.Width(width).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(
		maxInt(width+2, m.width-2),
		maxInt(12, m.height-2),
		lipgloss.Center,
		lipgloss.Center,
		panel,
	)
}

func (m *model) renderHeader() string {
	st := m.term.state
	width := maxInt(40, m.width-4)

	segments := []string{}
	if officerBlock := m.term.slot(surfaceOfficer); !officerBlock.empty() {
		row := officerBlock.Rows[0]
		segments = append(segments,
			m.theme.initials.Render(row.Tag),
			" "+m.theme.officerName.Render(row.Title),
		)
		if callsign := strings.TrimSpace(st.officer.Callsign); callsign != "" {
			segments = append(segments, " "+m.theme.rowTag.Render("["+callsign+"]"))
		}
		if len(row.Meta) > 0 {
			segments = append(segments, " "+m.theme.helpText.Render(row.Meta[0]))
		}
	}
	statusStyle := ternary(st.status == statusPanic, m.theme.panicBadge, m.theme.status)
	segments = append(segments, "  "+statusStyle.Render(statusLabel(st.status)))
	if st.isAdmin {
		segments = append(segments, "  "+m.theme.adminBadge.Render("ADMIN"))
	}
	identity := lipgloss.JoinHorizontal(lipgloss.Left, segments...)

	tabs := make([]string, 0, len(pages))
	for _, p := range pages {
		style := ternary(p.id == st.activePage, m.theme.tabActive, m.theme.tabInactive)
		tabs = append(tabs, style.Render(p.label))
	}
	return m.theme.header.Width(width).Render(identity + "\n" + lipgloss.JoinHorizontal(lipgloss.Left, tabs...))
}

func (m *model) renderFormPanel() string {
	st := m.term.state
	width := maxInt(40, m.width-4)
	form := m.activeForm()
	var body string
	switch {
	case st.activePage == pageIALogs && st.isAdmin:
		body = m.theme.adminBadge.Render("ADMIN") + " " +
			m.theme.helpText.Render("Admin mode active. "+strings.Join(hints(m.keys.adminExit), " · "))
	case form == nil:
		return ""
	default:
		body = form.view(m.theme)
		if st.activePage == pageIALogs && st.adminError != "" {
			body += "\n" + m.theme.errorStatus.Render(st.adminError)
		}
		if st.activePage == pageReports && st.recordTarget != nil {
			body += "\n" + m.theme.helpText.Render(fmt.Sprintf("Subject: %s %s", st.recordTarget.Type, st.recordTarget.Value))
		}
	}
	style := m.theme.inputPanel
	if m.focus != focusForm {
		style = style.BorderForeground(lipgloss.Color("#334155"))
	}
	return style.Width(width).Render(body)
}

func (m *model) renderContent() string {
	width := maxInt(40, m.width-4)
	_, spec := pageSpecFor(m.term.state.activePage)
	parts := []string{}
	if panel := m.renderFormPanel(); panel != "" {
		parts = append(parts, panel)
	}
	title := m.theme.panelTitle.Render(spec.label)
	parts = append(parts, m.theme.panel.Width(width).Render(title+"\n"+m.body.View()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) renderFooter() string {
	st := m.term.state
	width := maxInt(40, m.width-4)
	statusStyle := m.theme.status
	lower := strings.ToLower(m.statusLine)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "down") || strings.Contains(lower, "incomplete") {
		statusStyle = m.theme.errorStatus
	}
	last := "no events yet"
	if !st.lastEvent.IsZero() {
		last = "last event " + humanize.Time(st.lastEvent)
	}
	counts := fmt.Sprintf("calls %s · units %s · bolos %s",
		humanize.Comma(int64(len(st.calls))),
		humanize.Comma(int64(len(st.units))),
		humanize.Comma(int64(len(st.bolos))),
	)
	line := statusStyle.Render(compactSingleLine(m.statusLine, 100)) + "  " + m.renderLink() + "  " +
		m.theme.helpText.Render(last+" · "+counts)

	bindings := []key.Binding{m.keys.nextPage, m.keys.toggleFocus, m.keys.submit, m.keys.status, m.keys.panic, m.keys.escape, m.keys.quit}
	if st.isAdmin {
		bindings = append(bindings, m.keys.adminExit)
	}
	return m.theme.footer.Width(width).Render(line + "\n" + m.theme.helpText.Render(strings.Join(hints(bindings...), " · ")))
}

func (m *model) renderLink() string {
	switch {
	case m.linkUp:
		return m.theme.linkUp.Render("● LINK " + compactSingleLine(m.linkEndpoint, 40))
	case m.linkEndpoint == "":
		return m.theme.linkDown.Render("○ NO BACKEND")
	default:
		return m.spinner.View() + " " + m.theme.linkDown.Render("LINK DOWN")
	}
}

func (m *model) modalPanel() string {
	canvasWidth := maxInt(40, m.width-4)
	modalWidth := clampInt(int(float64(canvasWidth)*0.56), 42, 78)
	if modalWidth > canvasWidth-2 {
		modalWidth = canvasWidth - 2
	}
	return m.theme.modalFrame.Width(modalWidth).Render(m.modal.view(m.theme, *m.term.state.modal))
}

func (m *model) renderModal() string {
	opts := []lipgloss.WhitespaceOption{}
	if m.term.state.backdrop {
		opts = append(opts,
			lipgloss.WithWhitespaceChars("░"),
			lipgloss.WithWhitespaceForeground(lipgloss.Color("#1e293b")),
		)
	}
	return lipgloss.Place(
		maxInt(40, m.width-4),
		maxInt(12, m.height-4),
		lipgloss.Center,
		lipgloss.Center,
		m.modalPanel(),
		opts...,
	)
}

// modalBounds returns the modal's screen rectangle, root padding included.
func (m *model) modalBounds() (x, y, w, h int) {
	panel := m.modalPanel()
	w, h = lipgloss.Width(panel), lipgloss.Height(panel)
	x = 1 + maxInt(0, (maxInt(40, m.width-4)-w)/2)
	y = maxInt(0, (maxInt(12, m.height-4)-h)/2)
	return x, y, w, h
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	fieldWidth := maxInt(20, contentWidth-24)
	for _, f := range m.forms {
		f.setWidth(fieldWidth)
	}
	for _, field := range []*formField{&m.modal.note, &m.modal.notes, &m.modal.name, &m.modal.charid, &m.modal.reason} {
		field.setWidth(clampInt(contentWidth/2, 30, 64))
	}
}

func (m *model) renderPanes() {
	width := maxInt(40, m.width-4)
	formHeight := 0
	if panel := m.renderFormPanel(); panel != "" {
		formHeight = lipgloss.Height(panel)
	}
	m.body.Width = maxInt(20, width-4)
	m.body.Height = maxInt(3, m.height-formHeight-11)

	content, selectedLine := m.renderPageBody(m.body.Width)
	m.body.SetContent(content)
	if m.focus == focusList && selectedLine >= 0 {
		if selectedLine < m.body.YOffset || selectedLine >= m.body.YOffset+m.body.Height {
			m.body.SetYOffset(selectedLine)
		}
	}
}

func (m *model) renderPageBody(width int) (string, int) {
	_, spec := pageSpecFor(m.term.state.activePage)
	sections := make([]string, 0, len(spec.surfaces))
	selectedLine := -1
	offset := 0
	for _, surface := range spec.surfaces {
		block := m.term.slot(surface)
		selected := -1
		if surface == spec.list && m.focus == focusList {
			if rows := block.selectable(); len(rows) > 0 {
				selected = clampInt(m.cursor[surface], 0, len(rows)-1)
				m.cursor[surface] = selected
			}
		}
		text, line := m.theme.renderBlock(block, width, selected)
		section := m.theme.section.Render(surfaceTitles[surface]) + "\n" + text
		if selected >= 0 {
			selectedLine = offset + 1 + line
		}
		sections = append(sections, section)
		offset += lipgloss.Height(section) + 1
	}
	return strings.Join(sections, "\n\n"), selectedLine
}

func (m *model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.term.log.Debug("ui", zap.String("line", trimmed))
	m.logs = append(m.logs, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), compactSingleLine(trimmed, 220)))
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}
