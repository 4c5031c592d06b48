package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField struct {
	key   string
	label string
	multi bool
	input textinput.Model
	area  textarea.Model
}

func newInputField(key, label, placeholder string) formField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 40
	return formField{key: key, label: label, input: in}
}

func newPasswordField(key, label string) formField {
	f := newInputField(key, label, "admin password")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func newAreaField(key, label, placeholder string) formField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetWidth(60)
	ta.SetHeight(4)
	return formField{key: key, label: label, multi: true, area: ta}
}

func (f *formField) value() string {
	if f.multi {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *formField) setValue(value string) {
	if f.multi {
		f.area.SetValue(value)
		return
	}
	f.input.SetValue(value)
}

func (f *formField) focus() tea.Cmd {
	if f.multi {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *formField) blur() {
	if f.multi {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *formField) focused() bool {
	if f.multi {
		return f.area.Focused()
	}
	return f.input.Focused()
}

func (f *formField) setWidth(width int) {
	if f.multi {
		f.area.SetWidth(width)
		return
	}
	f.input.Width = width
}

func (f *formField) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multi {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func (f *formField) view(th uiTheme) string {
	label := th.fieldLabel.Render(f.label)
	if f.focused() {
		label = th.fieldFocus.Render(f.label)
	}
	if f.multi {
		return label + "\n" + f.area.View()
	}
	return label + " " + f.input.View()
}

type pageForm struct {
	fields []formField
	focus  int
}

func (p *pageForm) current() *formField {
	return &p.fields[p.focus]
}

func (p *pageForm) field(key string) *formField {
	for i := range p.fields {
		if p.fields[i].key == key {
			return &p.fields[i]
		}
	}
	return nil
}

func (p *pageForm) get(key string) string {
	if f := p.field(key); f != nil {
		return f.value()
	}
	return ""
}

func (p *pageForm) set(key, value string) {
	if f := p.field(key); f != nil {
		f.setValue(value)
	}
}

func (p *pageForm) clear(keys ...string) {
	for _, key := range keys {
		p.set(key, "")
	}
}

func (p *pageForm) move(delta int) tea.Cmd {
	p.fields[p.focus].blur()
	p.focus = cycleIndex(len(p.fields), p.focus, delta)
	return p.fields[p.focus].focus()
}

func (p *pageForm) focusCurrent() tea.Cmd {
	return p.fields[p.focus].focus()
}

func (p *pageForm) blurAll() {
	for i := range p.fields {
		p.fields[i].blur()
	}
}

func (p *pageForm) setWidth(width int) {
	for i := range p.fields {
		p.fields[i].setWidth(width)
	}
}

func (p *pageForm) view(th uiTheme) string {
	parts := make([]string, 0, len(p.fields))
	for i := range p.fields {
		parts = append(parts, p.fields[i].view(th))
	}
	return strings.Join(parts, "\n")
}

func newPageForms() map[pageID]*pageForm {
	return map[pageID]*pageForm{
		pageNameSearch: {fields: []formField{
			newInputField("first", "First name", "John"),
			newInputField("last", "Last name", "Doe"),
		}},
		pagePlateSearch: {fields: []formField{
			newInputField("plate", "Plate", "ABC123"),
		}},
		pageWeaponSearch: {fields: []formField{
			newInputField("serial", "Serial", "serial number"),
		}},
		pageBolos: {fields: []formField{
			newInputField("title", "Title", "BOLO title"),
			newInputField("type", "Type", "vehicle"),
			newAreaField("details", "Details", "description, last seen, direction of travel"),
		}},
		pageReports: {fields: []formField{
			newInputField("title", "Title", "report title"),
			newInputField("type", "Type", "incident"),
			newAreaField("body", "Body", "narrative"),
		}},
		pageLiveChat: {fields: []formField{
			newInputField("message", "Message", "type a message"),
		}},
		pageIALogs: {fields: []formField{
			newPasswordField("password", "Admin password"),
		}},
	}
}

var flagLabels = [4]string{"Officer Safety", "Armed & Dangerous", "Gang Affiliation", "Mental Health"}

type modalForm struct {
	note   formField
	flags  [4]bool
	notes  formField
	name   formField
	charid formField
	reason formField
	focus  int
}

func newModalForm() modalForm {
	return modalForm{
		note:   newAreaField("note", "Note", "quick note"),
		notes:  newInputField("notes", "Notes", "optional"),
		name:   newInputField("name", "Name", "full name"),
		charid: newInputField("charid", "Char ID", "optional"),
		reason: newInputField("reason", "Reason", "warrant reason"),
	}
}

// slots is the number of focus positions for kind. The flags modal has one
// slot per checkbox followed by the notes field.
func (f *modalForm) slots(kind modalKind) int {
	switch kind {
	case modalFlags:
		return len(f.flags) + 1
	case modalWarrant:
		return 3
	default:
		return 1
	}
}

func (f *modalForm) fieldAt(kind modalKind, i int) *formField {
	switch kind {
	case modalNote:
		return &f.note
	case modalFlags:
		if i == len(f.flags) {
			return &f.notes
		}
		return nil
	case modalWarrant:
		return []*formField{&f.name, &f.charid, &f.reason}[i]
	}
	return nil
}

func (f *modalForm) blurAll() {
	for _, field := range []*formField{&f.note, &f.notes, &f.name, &f.charid, &f.reason} {
		field.blur()
	}
}

func (f *modalForm) load(ctx modalContext) tea.Cmd {
	f.blurAll()
	f.focus = 0
	f.note.setValue("")
	f.flags = [4]bool{ctx.Flags.OfficerSafety, ctx.Flags.Armed, ctx.Flags.Gang, ctx.Flags.MentalHealth}
	f.notes.setValue(ctx.Notes)
	f.name.setValue(ctx.TargetName)
	f.charid.setValue(ctx.CharID)
	f.reason.setValue("")
	if field := f.fieldAt(ctx.Kind, 0); field != nil {
		return field.focus()
	}
	return nil
}

func (f *modalForm) move(kind modalKind, delta int) tea.Cmd {
	if field := f.fieldAt(kind, f.focus); field != nil {
		field.blur()
	}
	f.focus = cycleIndex(f.slots(kind), f.focus, delta)
	if field := f.fieldAt(kind, f.focus); field != nil {
		return field.focus()
	}
	return nil
}

func (f *modalForm) identityFlags() identityFlags {
	return identityFlags{
		OfficerSafety: f.flags[0],
		Armed:         f.flags[1],
		Gang:          f.flags[2],
		MentalHealth:  f.flags[3],
	}
}

func (f *modalForm) view(th uiTheme, ctx modalContext) string {
	lines := []string{}
	switch ctx.Kind {
	case modalNote:
		lines = append(lines,
			th.modalTitle.Render("Add Quick Note"),
			th.helpText.Render("Subject: "+ctx.TargetValue),
			"",
			f.note.view(th),
		)
	case modalFlags:
		lines = append(lines,
			th.modalTitle.Render("Identity Flags"),
			th.helpText.Render("Subject: "+ctx.TargetValue),
			"",
		)
		for i, label := range flagLabels {
			box := th.checkOff.Render("[ ]")
			if f.flags[i] {
				box = th.checkOn.Render("[x]")
			}
			text := th.fieldLabel.Render(label)
			if f.focus == i {
				text = th.fieldFocus.Render(label)
			}
			lines = append(lines, box+" "+text)
		}
		lines = append(lines, "", f.notes.view(th))
	case modalWarrant:
		lines = append(lines,
			th.modalTitle.Render("New Warrant"),
			"",
			f.name.view(th),
			f.charid.view(th),
			f.reason.view(th),
		)
	}
	lines = append(lines, "", th.helpText.Render("Enter/Ctrl+S submit · Up/Down move · Space toggle · Esc cancel"))
	return strings.Join(lines, "\n")
}
