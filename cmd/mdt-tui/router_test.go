package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownEventIsNoop(t *testing.T) {
	f := newTerminalFixture(t)
	before := *f.term.state
	slotsBefore := map[surfaceID]viewBlock{}
	for k, v := range f.term.slots {
		slotsBefore[k] = v
	}

	handled := f.term.dispatch(eventOf(t, "somethingElse", map[string]any{"x": 1}))

	assert.False(t, handled)
	assert.Equal(t, before, *f.term.state)
	assert.Equal(t, slotsBefore, f.term.slots)
	assert.Empty(t, f.rec.sent())
	assert.Equal(t, 1, f.logs.FilterMessage("ignoring unknown event").Len())
	assert.True(t, f.term.state.lastEvent.IsZero())

	require.True(t, f.term.dispatch(eventOf(t, "statusUpdate", map[string]any{"status": "ENROUTE"})))
	assert.False(t, f.term.state.lastEvent.IsZero())
}

func TestOpenAliasesShowTerminalAndPrefetch(t *testing.T) {
	for _, name := range []string{"open", "openMDT", "mdt:open"} {
		t.Run(name, func(t *testing.T) {
			f := newTerminalFixture(t)
			f.term.setActivePage(pageReports)
			f.term.dispatch(frameOf(t, map[string]any{
				"action":  name,
				"officer": map[string]any{"name": "Jane Smith", "department": "lspd", "grade": "3", "callsign": "1-A-12", "status": "enroute"},
			}))

			st := f.term.state
			assert.True(t, st.visible)
			assert.Equal(t, pageDashboard, st.activePage)
			assert.Equal(t, statusEnroute, st.status)
			assert.Equal(t, "1-A-12", st.officer.Callsign)
			assert.Equal(t, prefetchCommands, f.rec.names())

			officerRow := f.term.slot(surfaceOfficer).Rows[0]
			assert.Equal(t, "Jane Smith", officerRow.Title)
			assert.Equal(t, "JS", officerRow.Tag)
			assert.Equal(t, []string{"Status: 10-8 ENROUTE"}, officerRow.Lines)
		})
	}
}

func TestOpenReadsOfficerFromData(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "open", encoded(t, map[string]any{"name": "Solo"}))

	assert.Equal(t, "Solo", f.term.state.officer.Name)
	assert.Equal(t, statusAvailable, f.term.state.status)
	assert.Equal(t, "SO", f.term.slot(surfaceOfficer).Rows[0].Tag)
}

func TestCloseHidesButKeepsData(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "open", nil)
	f.dispatch(t, "boloList", []any{map[string]any{"id": 1, "title": "Blue van"}})
	f.dispatch(t, "mdt:close", nil)

	assert.False(t, f.term.state.visible)
	require.Len(t, f.term.state.bolos, 1)
	assert.Equal(t, "Blue van", f.term.slot(surfaceBoloList).Rows[0].Title)

	f.dispatch(t, "closeMDT", nil)
	assert.False(t, f.term.state.visible)
}

func TestSearchResultsReplaceAndSwitchPage(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "NameSearchResults", encoded(t, map[string]any{
		"citizens": []any{map[string]any{"name": "John Doe", "charid": "ABC"}},
	}))

	assert.Equal(t, pageNameSearch, f.term.state.activePage)
	require.NotNil(t, f.term.state.nameResults)
	assert.Len(t, f.term.state.nameResults.Citizens, 1)
	rows := f.term.slot(surfaceNameResults).selectable()
	require.Len(t, rows, 1)
	assert.Equal(t, "John Doe", rows[0].Title)

	f.dispatch(t, "plateResults", map[string]any{"vehicles": []any{map[string]any{"plate": "XYZ9"}}})
	assert.Equal(t, pagePlateSearch, f.term.state.activePage)

	f.dispatch(t, "weaponResults", nil)
	assert.Equal(t, pageWeaponSearch, f.term.state.activePage)
	assert.Equal(t, "No results.", f.term.slot(surfaceWeaponResults).Placeholder)
	assert.True(t, f.term.slot(surfaceWeaponResults).empty())
}

func TestMalformedResultsRenderEmpty(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "nameResults", "{broken")

	require.NotNil(t, f.term.state.nameResults)
	assert.Empty(t, f.term.state.nameResults.Citizens)
	assert.True(t, f.term.slot(surfaceNameResults).empty())
	assert.Equal(t, 1, f.logs.FilterMessage("failed to parse inbound payload").Len())
}

func TestCallWithoutNumericIDIsDropped(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "callCreated", map[string]any{"id": "abc", "location": "Pier"})

	assert.Empty(t, f.term.state.calls)
	assert.Zero(t, f.sink.count(cueCall))
	dropped := f.logs.FilterMessage("dropping call without a numeric id").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, `"abc"`, dropped[0].ContextMap()["id"])
}

func TestCallCreatedAlertsOncePerID(t *testing.T) {
	f := newTerminalFixture(t)
	call := map[string]any{"id": 7, "status": "pending", "location": "Legion Square"}

	f.dispatch(t, "callCreated", call)
	f.dispatch(t, "callCreated", call)
	f.dispatch(t, "callUpdated", encoded(t, call))

	assert.Len(t, f.term.state.calls, 1)
	assert.Equal(t, 1, f.sink.count(cueCall))
	assert.Equal(t, []string{"New nine one one call at Legion Square."}, f.sink.spoken())
}

func TestCallAlertOnlyForPending(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "callCreated", map[string]any{"id": 8, "status": "active"})
	assert.Equal(t, 0, f.sink.count(cueCall))

	f.dispatch(t, "callUpdated", map[string]any{"id": 8})
	assert.Equal(t, 1, f.sink.count(cueCall))
	assert.Equal(t, []string{"New nine one one call at unknown location."}, f.sink.spoken())

	f.dispatch(t, "callCreated", map[string]any{"id": 0, "status": "pending"})
	assert.Len(t, f.term.state.calls, 1)
}

func TestCallUpsertReplacesInPlace(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "callList", []any{
		map[string]any{"id": 1, "location": "A", "status": "active"},
		map[string]any{"id": 2, "location": "B", "status": "active"},
	})
	f.dispatch(t, "callUpdated", map[string]any{"id": 1, "location": "A2", "status": "closed"})
	f.dispatch(t, "callCreated", map[string]any{"id": 3, "location": "C", "status": "active"})

	calls := f.term.state.calls
	require.Len(t, calls, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{calls[0].ID, calls[1].ID, calls[2].ID})
	assert.Equal(t, "A2", calls[0].Location)
	assert.Equal(t, "#1 – A2", f.term.slot(surfaceCallList).Rows[0].Title)
}

func TestChatMessagesAppend(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "open", map[string]any{"name": "Jane", "callsign": "1-A-12"})
	f.dispatch(t, "liveChatHistory", []any{
		map[string]any{"sender": "Dispatch", "message": "hello"},
		map[string]any{"sender": "Jane", "source": "1-A-12", "message": "copy"},
	})
	f.dispatch(t, "liveChatMessage", encoded(t, map[string]any{"sender": "Bob", "message": "en route"}))

	chat := f.term.state.chat
	require.Len(t, chat, 3)
	assert.Equal(t, "en route", chat[2].Message)

	rows := f.term.slot(surfaceChat).Rows
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Mine)
	assert.True(t, rows[1].Mine)

	f.dispatch(t, "liveChatMessage", nil)
	assert.Len(t, f.term.state.chat, 3)
}

func TestBoloCreatedPushesAndAnnounces(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "boloList", []any{
		map[string]any{"id": 1, "title": "One"},
		map[string]any{"id": 2, "title": "Two"},
		map[string]any{"id": 3, "title": "Three"},
	})
	f.dispatch(t, "boloCreated", map[string]any{"id": 4, "type": "person", "body": map[string]any{"title": "Four"}})

	assert.Len(t, f.term.state.bolos, 4)
	assert.Equal(t, 1, f.sink.count(cueBolo))
	assert.Equal(t, []string{"New BOLO created: Four."}, f.sink.spoken())
	assert.Len(t, f.term.slot(surfaceBoloList).Rows, 4)
	assert.Len(t, f.term.slot(surfaceDashboardBolos).Rows, 3)

	f.dispatch(t, "boloCreated", map[string]any{"id": 4, "body": map[string]any{"title": "Four again"}})
	assert.Len(t, f.term.state.bolos, 4)
	assert.Equal(t, "Four again", f.term.state.bolos[3].Title)
}

func TestReportCreatedPushes(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "reportList", []any{map[string]any{"id": 1, "title": "First"}})
	f.dispatch(t, "reportCreated", map[string]any{"id": 2, "title": "Second", "type": "arrest"})

	require.Len(t, f.term.state.reports, 2)
	assert.Equal(t, "ARREST", f.term.slot(surfaceReportList).Rows[1].Tag)
}

func TestStatusUpdateSources(t *testing.T) {
	f := newTerminalFixture(t)

	f.term.dispatch(frameOf(t, map[string]any{"action": "statusUpdate", "status": "onscene"}))
	assert.Equal(t, statusOnScene, f.term.state.status)

	f.dispatch(t, "statusUpdate", map[string]any{"status": "transport"})
	assert.Equal(t, statusTransport, f.term.state.status)

	f.dispatch(t, "statusUpdate", map[string]any{"status": "panic"})
	assert.Equal(t, statusPanic, f.term.state.status)
	assert.Equal(t, []string{"Status: PANIC BUTTON"}, f.term.slot(surfaceOfficer).Rows[0].Lines)

	f.dispatch(t, "statusUpdate", nil)
	assert.Equal(t, statusAvailable, f.term.state.status)
}

func TestPanicAnnouncesOfficer(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "panic", map[string]any{"callsign": "2-B-7"})
	f.dispatch(t, "panic", nil)

	assert.Equal(t, 2, f.sink.count(cuePanic))
	assert.Equal(t, []string{
		"Panic button activated by 2-B-7.",
		"Panic button activated by an officer.",
	}, f.sink.spoken())
}

func TestListEventsReplaceCollections(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "unitsUpdate", []any{map[string]any{"id": "u1", "name": "Adam-12", "status": "ENROUTE"}})
	f.dispatch(t, "employeesList", []any{map[string]any{"id": 4, "name": "Ana"}})
	f.dispatch(t, "warrantsList", []any{map[string]any{"id": "w1", "target_name": "Rick"}})
	f.dispatch(t, "actionLog", []any{map[string]any{"action": "login"}})

	assert.Len(t, f.term.state.units, 1)
	assert.Len(t, f.term.state.employees, 1)
	assert.Len(t, f.term.state.warrants, 1)
	assert.Len(t, f.term.state.actionLog, 1)
	assert.True(t, f.term.slot(surfaceActionLog).empty(), "action log stays gated outside admin mode")

	f.dispatch(t, "unitsUpdate", []any{})
	assert.Empty(t, f.term.state.units)
	assert.Equal(t, "No active units.", renderBlockPlain(f.term.slot(surfaceUnitList)))
}
