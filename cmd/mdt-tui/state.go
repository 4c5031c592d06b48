package main

import (
	"strings"
	"time"
)

type unitStatus string

const (
	statusAvailable unitStatus = "AVAILABLE"
	statusEnroute   unitStatus = "ENROUTE"
	statusOnScene   unitStatus = "ONSCENE"
	statusTransport unitStatus = "TRANSPORT"
	statusHospital  unitStatus = "HOSPITAL"
	statusPanic     unitStatus = "PANIC"
)

// statusCycle is the order the status control advances through. PANIC is only
// ever set by the backend.
var statusCycle = []unitStatus{statusAvailable, statusEnroute, statusOnScene, statusTransport, statusHospital}

func normalizeStatus(raw string) unitStatus {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return statusAvailable
	}
	return unitStatus(trimmed)
}

func nextStatus(current unitStatus) unitStatus {
	idx := -1
	for i, s := range statusCycle {
		if s == current {
			idx = i
			break
		}
	}
	return statusCycle[cycleIndex(len(statusCycle), idx, 1)]
}

func statusLabel(s unitStatus) string {
	switch s {
	case statusPanic:
		return "PANIC BUTTON"
	case statusEnroute, statusOnScene, statusTransport, statusHospital:
		return "10-8 " + string(s)
	default:
		return "10-8 AVAILABLE"
	}
}

type pageID string

const (
	pageDashboard    pageID = "dashboard"
	pageNameSearch   pageID = "nameSearch"
	pagePlateSearch  pageID = "plateSearch"
	pageWeaponSearch pageID = "weaponSearch"
	pageBolos        pageID = "bolos"
	pageReports      pageID = "reports"
	pageEmployees    pageID = "employees"
	pageWarrants     pageID = "warrants"
	pageLiveChat     pageID = "livechat"
	pageIALogs       pageID = "iaLogs"
)

type surfaceID string

const (
	surfaceOfficer        surfaceID = "officer"
	surfaceNameResults    surfaceID = "nameResults"
	surfacePlateResults   surfaceID = "plateResults"
	surfaceWeaponResults  surfaceID = "weaponResults"
	surfaceBoloList       surfaceID = "boloList"
	surfaceDashboardBolos surfaceID = "dashboardBolos"
	surfaceReportList     surfaceID = "reportList"
	surfaceEmployeeList   surfaceID = "employeeList"
	surfaceUnitList       surfaceID = "unitList"
	surfaceCallList       surfaceID = "callList"
	surfaceChat           surfaceID = "chatMessages"
	surfaceWarrantList    surfaceID = "warrantList"
	surfaceActionLog      surfaceID = "actionLog"
)

var allSurfaces = []surfaceID{
	surfaceOfficer,
	surfaceDashboardBolos,
	surfaceUnitList,
	surfaceCallList,
	surfaceNameResults,
	surfacePlateResults,
	surfaceWeaponResults,
	surfaceBoloList,
	surfaceReportList,
	surfaceEmployeeList,
	surfaceWarrantList,
	surfaceChat,
	surfaceActionLog,
}

var adminSurfaces = []surfaceID{
	surfaceBoloList,
	surfaceReportList,
	surfaceEmployeeList,
	surfaceCallList,
	surfaceActionLog,
}

type recordTarget struct {
	Type  string
	Value string
}

type reportDraft struct {
	Type  string
	Title string
	Body  string
}

// viewState is the single mutable state tree. Only the event router, the
// modal controller and local UI actions write to it.
type viewState struct {
	visible    bool
	officer    officer
	status     unitStatus
	activePage pageID

	nameResults   *nameSearchResult
	plateResults  *plateSearchResult
	weaponResults *weaponSearchResult

	bolos     []bolo
	reports   []report
	employees []employee
	units     []unit
	calls     []call
	chat      []chatMessage
	warrants  []warrant
	actionLog []actionLogEntry

	recordTarget *recordTarget
	reportDraft  *reportDraft
	seenCalls    map[int]struct{}

	isAdmin    bool
	adminError string

	modal      *modalContext
	modalSeq   int
	modalShown map[modalKind]bool
	backdrop   bool

	lastEvent time.Time
}

func newViewState() *viewState {
	return &viewState{
		status:     statusAvailable,
		activePage: pageDashboard,
		seenCalls:  map[int]struct{}{},
		modalShown: map[modalKind]bool{},
	}
}

func (s *viewState) visibleModals() []modalKind {
	out := make([]modalKind, 0, 1)
	for _, kind := range modalKinds {
		if s.modalShown[kind] {
			out = append(out, kind)
		}
	}
	return out
}

func (s *viewState) upsertCall(c call) {
	for i := range s.calls {
		if s.calls[i].ID == c.ID {
			s.calls[i] = c
			return
		}
	}
	s.calls = append(s.calls, c)
}

func (s *viewState) markCallSeen(id int) bool {
	if _, ok := s.seenCalls[id]; ok {
		return false
	}
	s.seenCalls[id] = struct{}{}
	return true
}

func (s *viewState) pushBolo(b bolo) {
	if b.ID != 0 {
		for i := range s.bolos {
			if s.bolos[i].ID == b.ID {
				s.bolos[i] = b
				return
			}
		}
	}
	s.bolos = append(s.bolos, b)
}

func (s *viewState) pushReport(r report) {
	if r.ID != 0 {
		for i := range s.reports {
			if s.reports[i].ID == r.ID {
				s.reports[i] = r
				return
			}
		}
	}
	s.reports = append(s.reports, r)
}
