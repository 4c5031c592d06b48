package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type eventHandler func(t *terminal, ev inboundEvent)

var eventAliases = map[string]string{
	"openMDT":             "open",
	"mdt:open":            "open",
	"closeMDT":            "close",
	"mdt:close":           "close",
	"NameSearchResults":   "nameResults",
	"PlateSearchResults":  "plateResults",
	"WeaponSearchResults": "weaponResults",
	"callUpdated":         "callCreated",
}

func canonicalEvent(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := eventAliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}

type eventRouter struct {
	handlers map[string]eventHandler
}

func newEventRouter() *eventRouter {
	return &eventRouter{handlers: map[string]eventHandler{
		"open":            (*terminal).onOpen,
		"close":           (*terminal).onClose,
		"nameResults":     (*terminal).onNameResults,
		"plateResults":    (*terminal).onPlateResults,
		"weaponResults":   (*terminal).onWeaponResults,
		"boloList":        (*terminal).onBoloList,
		"boloCreated":     (*terminal).onBoloCreated,
		"reportList":      (*terminal).onReportList,
		"reportCreated":   (*terminal).onReportCreated,
		"employeesList":   (*terminal).onEmployeesList,
		"unitsUpdate":     (*terminal).onUnitsUpdate,
		"callList":        (*terminal).onCallList,
		"callCreated":     (*terminal).onCallUpsert,
		"liveChatHistory": (*terminal).onChatHistory,
		"liveChatMessage": (*terminal).onChatMessage,
		"panic":           (*terminal).onPanic,
		"statusUpdate":    (*terminal).onStatusUpdate,
		"warrantsList":    (*terminal).onWarrantsList,
		"actionLog":       (*terminal).onActionLog,
	}}
}

func (r *eventRouter) route(t *terminal, ev inboundEvent) bool {
	handler, ok := r.handlers[canonicalEvent(ev.Name)]
	if !ok {
		t.log.Debug("ignoring unknown event", zap.String("event", ev.Name))
		return false
	}
	handler(t, ev)
	return true
}

var prefetchCommands = []string{
	"GetBolos",
	"GetReports",
	"GetUnits",
	"GetCalls",
	"GetWarrants",
	"GetActionLog",
	"RequestChatHistory",
}

func (t *terminal) onOpen(ev inboundEvent) {
	raw := ev.field("officer")
	if !raw.Exists() {
		raw = ev.Data
	}
	payload, _ := t.parser.parse(raw, "officer")
	t.state.officer = t.parser.officer(payload)
	t.state.status = normalizeStatus(t.state.officer.Status)
	t.render(surfaceOfficer)
	t.state.visible = true
	t.setActivePage(pageDashboard)
	for _, name := range prefetchCommands {
		t.send(name, nil)
	}
}

func (t *terminal) onClose(inboundEvent) {
	t.state.visible = false
}

func (t *terminal) onNameResults(ev inboundEvent) {
	t.state.nameResults = t.parser.nameResults(ev.Data)
	t.render(surfaceNameResults)
	t.setActivePage(pageNameSearch)
}

func (t *terminal) onPlateResults(ev inboundEvent) {
	t.state.plateResults = t.parser.plateResults(ev.Data)
	t.render(surfacePlateResults)
	t.setActivePage(pagePlateSearch)
}

func (t *terminal) onWeaponResults(ev inboundEvent) {
	t.state.weaponResults = t.parser.weaponResults(ev.Data)
	t.render(surfaceWeaponResults)
	t.setActivePage(pageWeaponSearch)
}

func (t *terminal) onBoloList(ev inboundEvent) {
	t.state.bolos = t.parser.bolos(ev.Data)
	t.render(surfaceBoloList, surfaceDashboardBolos)
}

func (t *terminal) onBoloCreated(ev inboundEvent) {
	payload, ok := t.parser.parse(ev.Data, "boloCreated")
	if !ok {
		return
	}
	b := t.parser.bolo(payload)
	t.state.pushBolo(b)
	t.render(surfaceBoloList, surfaceDashboardBolos)
	t.sink.Play(cueBolo)
	t.sink.Speak(fmt.Sprintf("New BOLO created: %s.", nullCoalesce(b.Title, "BOLO")))
}

func (t *terminal) onReportList(ev inboundEvent) {
	t.state.reports = t.parser.reports(ev.Data)
	t.render(surfaceReportList)
}

func (t *terminal) onReportCreated(ev inboundEvent) {
	payload, ok := t.parser.parse(ev.Data, "reportCreated")
	if !ok {
		return
	}
	t.state.pushReport(t.parser.report(payload))
	t.render(surfaceReportList)
}

func (t *terminal) onEmployeesList(ev inboundEvent) {
	t.state.employees = t.parser.employees(ev.Data)
	t.render(surfaceEmployeeList)
}

func (t *terminal) onUnitsUpdate(ev inboundEvent) {
	t.state.units = t.parser.units(ev.Data)
	t.render(surfaceUnitList)
}

func (t *terminal) onCallList(ev inboundEvent) {
	t.state.calls = t.parser.calls(ev.Data)
	t.render(surfaceCallList)
}

// onCallUpsert serves both callCreated and callUpdated. The new-call alert
// fires at most once per id for the life of the process.
func (t *terminal) onCallUpsert(ev inboundEvent) {
	payload, ok := t.parser.parse(ev.Data, ev.Name)
	if !ok {
		return
	}
	c := t.parser.call(payload)
	if c.ID == 0 {
		t.log.Debug("dropping call without a numeric id",
			zap.String("event", ev.Name),
			zap.String("id", payload.Get("id").Raw),
		)
		return
	}
	t.state.upsertCall(c)
	t.render(surfaceCallList)

	if upperOr(c.Status, "PENDING") != "PENDING" {
		return
	}
	if !t.state.markCallSeen(c.ID) {
		return
	}
	t.sink.Play(cueCall)
	t.sink.Speak(fmt.Sprintf("New nine one one call at %s.", nullCoalesce(c.Location, "unknown location")))
}

func (t *terminal) onChatHistory(ev inboundEvent) {
	t.state.chat = t.parser.chatHistory(ev.Data)
	t.render(surfaceChat)
}

func (t *terminal) onChatMessage(ev inboundEvent) {
	payload, ok := t.parser.parse(ev.Data, "liveChatMessage")
	if !ok {
		return
	}
	t.state.chat = append(t.state.chat, t.parser.chatMessage(payload))
	t.render(surfaceChat)
}

func (t *terminal) onPanic(ev inboundEvent) {
	payload, _ := t.parser.parse(ev.Data, "panic")
	who := nullCoalesce(firstString(payload, "officer", "callsign"), "an officer")
	t.sink.Play(cuePanic)
	t.sink.Speak(fmt.Sprintf("Panic button activated by %s.", who))
}

func (t *terminal) onStatusUpdate(ev inboundEvent) {
	raw := firstString(ev.Frame, "status")
	if raw == "" {
		if payload, ok := t.parser.parse(ev.Data, "statusUpdate"); ok {
			raw = firstString(payload, "status")
		}
	}
	t.state.status = normalizeStatus(raw)
	t.render(surfaceOfficer)
}

func (t *terminal) onWarrantsList(ev inboundEvent) {
	t.state.warrants = t.parser.warrants(ev.Data)
	t.render(surfaceWarrantList)
}

func (t *terminal) onActionLog(ev inboundEvent) {
	t.state.actionLog = t.parser.actionLog(ev.Data)
	t.render(surfaceActionLog)
}
