package main

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultAdminPassword = "changeme"

var pageRefresh = map[pageID][]string{
	pageDashboard: {"GetUnits", "GetCalls"},
	pageBolos:     {"GetBolos"},
	pageReports:   {"GetReports"},
	pageEmployees: {"ViewEmployees"},
	pageWarrants:  {"GetWarrants"},
	pageIALogs:    {"GetActionLog"},
	pageLiveChat:  {"RequestChatHistory"},
}

type terminalOptions struct {
	sender      commandSender
	sink        notifier
	log         *zap.Logger
	adminSecret string
	now         func() time.Time
}

// terminal ties the view-model store to its collaborators. It holds no UI
// widget state, so every operation is usable headless.
type terminal struct {
	state  *viewState
	slots  map[surfaceID]viewBlock
	router *eventRouter
	parser payloadParser
	out    commandSender
	sink   notifier
	log    *zap.Logger
	now    func() time.Time

	adminSecret string
}

func newTerminal(opts terminalOptions) *terminal {
	log := opts.log
	if log == nil {
		log = zap.NewNop()
	}
	sink := opts.sink
	if sink == nil {
		sink = mutedNotifier{}
	}
	sender := opts.sender
	if sender == nil {
		sender = &commandRecorder{}
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	t := &terminal{
		state:       newViewState(),
		slots:       map[surfaceID]viewBlock{},
		router:      newEventRouter(),
		parser:      payloadParser{log: log},
		out:         sender,
		sink:        sink,
		log:         log,
		now:         now,
		adminSecret: nullCoalesce(strings.TrimSpace(opts.adminSecret), defaultAdminPassword),
	}
	t.render(allSurfaces...)
	return t
}

func (t *terminal) dispatch(ev inboundEvent) bool {
	if !t.router.route(t, ev) {
		return false
	}
	t.state.lastEvent = t.now()
	return true
}

func (t *terminal) send(name string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	t.log.Debug("sending command", zap.String("command", name))
	t.out.Send(name, payload)
}

func (t *terminal) render(surfaces ...surfaceID) {
	for _, surface := range surfaces {
		t.slots[surface] = t.renderSurface(surface)
	}
}

func (t *terminal) renderSurface(surface surfaceID) viewBlock {
	s := t.state
	switch surface {
	case surfaceOfficer:
		return renderOfficer(s.officer, s.status)
	case surfaceNameResults:
		return renderNameResults(s.nameResults)
	case surfacePlateResults:
		return renderPlateResults(s.plateResults)
	case surfaceWeaponResults:
		return renderWeaponResults(s.weaponResults)
	case surfaceBoloList:
		return renderBolos(s.bolos, s.isAdmin)
	case surfaceDashboardBolos:
		return renderDashboardBolos(s.bolos)
	case surfaceReportList:
		return renderReports(s.reports, s.isAdmin)
	case surfaceEmployeeList:
		return renderEmployees(s.employees, s.isAdmin)
	case surfaceUnitList:
		return renderUnits(s.units)
	case surfaceCallList:
		return renderCalls(s.calls, s.isAdmin)
	case surfaceChat:
		return renderChat(s.chat, s.officer.Callsign)
	case surfaceWarrantList:
		return renderWarrants(s.warrants)
	case surfaceActionLog:
		return renderActionLog(s.actionLog, s.isAdmin)
	default:
		return viewBlock{Surface: surface}
	}
}

func (t *terminal) slot(surface surfaceID) viewBlock {
	return t.slots[surface]
}

func (t *terminal) setActivePage(page pageID) {
	t.state.activePage = page
}

func (t *terminal) navigate(page pageID) {
	t.sink.Play(cueClick)
	t.setActivePage(page)
	for _, name := range pageRefresh[page] {
		t.send(name, nil)
	}
}

func (t *terminal) searchName(first, last string) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	t.sink.Play(cueClick)
	t.send("NameSearch", map[string]any{
		"first": first,
		"last":  last,
		"term":  strings.TrimSpace(first + " " + last),
	})
}

func (t *terminal) searchPlate(plate string) {
	t.sink.Play(cueClick)
	t.send("PlateSearch", map[string]any{"plate": strings.TrimSpace(plate)})
}

func (t *terminal) searchWeapon(serial string) {
	t.sink.Play(cueClick)
	t.send("WeaponSearch", map[string]any{"serial": strings.TrimSpace(serial)})
}

func (t *terminal) createBolo(title, kind, details string) bool {
	title = strings.TrimSpace(title)
	details = strings.TrimSpace(details)
	if title == "" && details == "" {
		return false
	}
	t.sink.Play(cueClick)
	t.send("CreateBolo", map[string]any{
		"title":   title,
		"type":    nullCoalesce(strings.TrimSpace(kind), "vehicle"),
		"details": details,
	})
	return true
}

func (t *terminal) createReport(title, kind, body string) bool {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" && body == "" {
		return false
	}
	target := recordTarget{}
	if t.state.recordTarget != nil {
		target = *t.state.recordTarget
	}
	t.sink.Play(cueClick)
	t.send("CreateReport", map[string]any{
		"title":       title,
		"type":        nullCoalesce(strings.TrimSpace(kind), "incident"),
		"info":        body,
		"body":        body,
		"targetType":  target.Type,
		"targetValue": target.Value,
	})
	t.state.recordTarget = nil
	return true
}

func (t *terminal) sendChat(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	t.sink.Play(cueClick)
	t.send("LiveChatSend", map[string]any{"message": text})
	return true
}

func (t *terminal) attachCall(id int) {
	if id == 0 {
		return
	}
	t.send("AttachCall", map[string]any{"id": id})
}

func (t *terminal) waypointCall(id int) {
	if id == 0 {
		return
	}
	t.send("CallWaypoint", map[string]any{"id": id})
}

func (t *terminal) stashRecordTarget(reportType, targetType, value string) {
	reportType = strings.ToLower(nullCoalesce(reportType, "incident"))
	t.state.recordTarget = &recordTarget{Type: targetType, Value: value}
	t.setActivePage(pageReports)

	prefix := "Report"
	switch reportType {
	case "citation":
		prefix = "Citation"
	case "arrest":
		prefix = "Arrest"
	}
	draft := &reportDraft{Type: reportType, Title: prefix}
	if value != "" {
		draft.Title = fmt.Sprintf("%s – %s", prefix, value)
		draft.Body = value + "\n\n"
	}
	t.state.reportDraft = draft
}

func (t *terminal) takeReportDraft() *reportDraft {
	draft := t.state.reportDraft
	t.state.reportDraft = nil
	return draft
}

// cycleStatus advances the officer status optimistically and tells the
// backend. There is no rollback; the backend corrects via statusUpdate.
func (t *terminal) cycleStatus() unitStatus {
	next := nextStatus(t.state.status)
	t.state.status = next
	t.render(surfaceOfficer)
	t.sink.Play(cueClick)
	t.send("SetUnitStatus", map[string]any{"status": string(next)})
	return next
}

func (t *terminal) panicButton() {
	t.sink.Play(cueClick)
	t.send("Panic", nil)
}

func (t *terminal) requestClose() {
	t.send("close", nil)
}

func (t *terminal) handleEscape() {
	if t.state.modal != nil {
		t.closeModal()
		return
	}
	t.requestClose()
}

// adminLogin toggles the admin rendering mode. It is a display switch only;
// the backend must authorize every admin command on its own.
func (t *terminal) adminLogin(entered string) bool {
	entered = strings.TrimSpace(entered)
	if entered == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(entered), []byte(t.adminSecret)) != 1 {
		t.state.adminError = "Incorrect admin password."
		t.sink.Play(cuePanic)
		t.log.Info("admin login rejected")
		return false
	}
	t.state.isAdmin = true
	t.state.adminError = ""
	t.render(adminSurfaces...)
	t.sink.Speak("MDT admin mode enabled.")
	t.log.Info("admin mode enabled")
	return true
}

func (t *terminal) adminLogout() {
	if !t.state.isAdmin {
		return
	}
	t.state.isAdmin = false
	t.render(adminSurfaces...)
	t.sink.Speak("MDT admin mode disabled.")
	t.log.Info("admin mode disabled")
}

func (t *terminal) performAction(a viewAction) {
	t.sink.Play(cueClick)
	switch a.Op {
	case opReport:
		t.stashRecordTarget(a.attr("report-type"), nullCoalesce(a.attr("target-type"), "name"), a.attr("target-value"))
	case opQuickNote:
		value := a.attr("quicknote-name")
		if value == "" {
			return
		}
		t.openModal(modalContext{Kind: modalNote, TargetType: "name", TargetValue: value})
	case opFlags:
		value := a.attr("flags-name")
		if value == "" {
			return
		}
		t.openModal(modalContext{
			Kind:        modalFlags,
			TargetType:  "name",
			TargetValue: value,
			Flags: identityFlags{
				OfficerSafety: a.attr("flags-officer-safety") == "1",
				Armed:         a.attr("flags-armed") == "1",
				Gang:          a.attr("flags-gang") == "1",
				MentalHealth:  a.attr("flags-mental") == "1",
			},
		})
	case opWarrant:
		name := a.attr("warrant-name")
		if name == "" {
			return
		}
		t.openModal(modalContext{Kind: modalWarrant, TargetName: name, CharID: a.attr("warrant-charid")})
	case opCallAttach:
		id, _ := parseAnyInt(a.attr("call-id"))
		t.attachCall(id)
	case opCallWaypoint:
		id, _ := parseAnyInt(a.attr("call-id"))
		t.waypointCall(id)
	case opDeleteBolo, opDeleteReport, opDeleteCall, opDeleteEmployee:
		t.adminDelete(a)
	default:
		t.log.Warn("unknown row action", zap.String("op", string(a.Op)))
	}
}

func (t *terminal) adminDelete(a viewAction) {
	if !t.state.isAdmin {
		return
	}
	switch a.Op {
	case opDeleteBolo:
		if id, _ := parseAnyInt(a.attr("bolo-id")); id != 0 {
			t.send("AdminDeleteBolo", map[string]any{"id": id})
		}
	case opDeleteReport:
		if id, _ := parseAnyInt(a.attr("report-id")); id != 0 {
			t.send("AdminDeleteReport", map[string]any{"id": id})
		}
	case opDeleteCall:
		if id, _ := parseAnyInt(a.attr("call-id")); id != 0 {
			t.send("AdminDeleteCall", map[string]any{"id": id})
		}
	case opDeleteEmployee:
		id, _ := parseAnyInt(a.attr("employee-id"))
		department := a.attr("employee-dept")
		if id == 0 || department == "" {
			return
		}
		t.send("AdminDeleteEmployee", map[string]any{"id": id, "department": department})
	}
}
