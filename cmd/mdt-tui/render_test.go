package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySurfacesShowPlaceholders(t *testing.T) {
	cases := []struct {
		block viewBlock
		want  string
	}{
		{renderNameResults(nil), "No results."},
		{renderNameResults(&nameSearchResult{}), "No results."},
		{renderPlateResults(&plateSearchResult{}), "No results."},
		{renderWeaponResults(nil), "No results."},
		{renderBolos(nil, true), "No active BOLOs."},
		{renderDashboardBolos(nil), "No active BOLOs."},
		{renderReports(nil, false), "No reports."},
		{renderEmployees(nil, true), "No employees found."},
		{renderUnits(nil), "No active units."},
		{renderCalls(nil, false), "No active 911 calls."},
		{renderChat(nil, "1-A-1"), "No messages yet."},
		{renderWarrants(nil), "No warrants."},
		{renderActionLog(nil, true), "No logged actions."},
		{renderActionLog([]actionLogEntry{{Action: "x"}}, false), "Enter admin mode to view Internal Affairs logs."},
	}
	for _, tc := range cases {
		t.Run(string(tc.block.Surface), func(t *testing.T) {
			assert.True(t, tc.block.empty())
			assert.Equal(t, tc.want, renderBlockPlain(tc.block))
			assert.Contains(t, renderBlockHTML(tc.block), tc.want)
		})
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	f := newTerminalFixture(t)
	f.dispatch(t, "callList", []any{map[string]any{"id": 1, "location": "Pier", "units": []any{map[string]any{"callsign": "1-A"}}}})
	f.dispatch(t, "boloList", []any{map[string]any{"id": 5, "title": "Van"}})

	first := renderBlockHTML(f.term.slot(surfaceCallList)) + renderBlockHTML(f.term.slot(surfaceBoloList))
	f.term.render(allSurfaces...)
	f.term.render(allSurfaces...)
	second := renderBlockHTML(f.term.slot(surfaceCallList)) + renderBlockHTML(f.term.slot(surfaceBoloList))
	assert.Equal(t, first, second)
}

func TestAdminControlsFollowMode(t *testing.T) {
	bolos := []bolo{{ID: 1, Title: "A"}, {Title: "no id"}}
	assert.Empty(t, renderBolos(bolos, false).selectable())
	admin := renderBolos(bolos, true).selectable()
	require.Len(t, admin, 1)
	assert.Equal(t, opDeleteBolo, admin[0].Actions[0].Op)
	assert.Equal(t, "1", admin[0].Actions[0].attr("bolo-id"))

	employees := []employee{{ID: 2, Name: "Ana", Department: "lspd"}, {ID: 3, Name: "NoDept"}}
	rows := renderEmployees(employees, true).selectable()
	require.Len(t, rows, 1)
	assert.Equal(t, "lspd", rows[0].Actions[0].attr("employee-dept"))

	calls := []call{{ID: 9, Location: "Docks"}}
	assert.Len(t, renderCalls(calls, false).Rows[0].Actions, 2)
	adminCall := renderCalls(calls, true).Rows[0].Actions
	require.Len(t, adminCall, 3)
	assert.Equal(t, "Clear Call", adminCall[2].Label)
	assert.True(t, adminCall[2].Danger)
}

func TestNameResultsRowControls(t *testing.T) {
	res := &nameSearchResult{
		Citizens: []citizen{{
			Name:       `Jo "Ace" Doe`,
			CharID:     "C1",
			WarrantID:  "C1",
			Flags:      identityFlags{Armed: true},
			QuickNotes: []string{"seen near docks"},
		}},
		Records: []searchRecord{{ID: "4", Title: "Speeding", Type: "citation"}},
	}
	block := renderNameResults(res)

	assert.Equal(t, "Characters", block.Rows[0].Title)
	assert.Equal(t, rowSection, block.Rows[0].Kind)
	row := block.Rows[1]
	assert.Equal(t, []string{"Armed & Dangerous"}, row.Chips)
	assert.Contains(t, row.Lines, "- seen near docks")
	assert.NotContains(t, row.Lines, "No flags.")

	keys := []string{}
	for _, a := range row.Actions {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"t", "a", "r", "n", "f", "w"}, keys)

	flags := row.Actions[4]
	assert.Equal(t, `Jo &quot;Ace&quot; Doe`, flags.Attrs["flags-name"])
	assert.Equal(t, `Jo "Ace" Doe`, flags.attr("flags-name"))
	assert.Equal(t, "1", flags.attr("flags-armed"))
	assert.Equal(t, "0", flags.attr("flags-gang"))

	assert.Equal(t, "Associated Records", block.Rows[2].Title)
	assert.Equal(t, "CITATION", block.Rows[3].Tag)

	html := renderBlockHTML(block)
	assert.Contains(t, html, `data-flags-name="Jo &quot;Ace&quot; Doe"`)
	assert.Contains(t, html, `data-action="flags"`)
}

func TestNameResultsWithoutFlags(t *testing.T) {
	block := renderNameResults(&nameSearchResult{Citizens: []citizen{{Name: "Plain"}}})
	row := block.Rows[1]
	assert.Empty(t, row.Chips)
	assert.Contains(t, row.Lines, "No flags.")
	assert.Contains(t, row.Lines, "No quick notes.")
}

func TestHTMLTextIsNotEscaped(t *testing.T) {
	block := renderChat([]chatMessage{{Sender: "<b>Bob</b>", Message: "<i>hi</i>"}}, "")
	html := renderBlockHTML(block)
	assert.Contains(t, html, "<b>Bob</b>")
	assert.Contains(t, html, "<i>hi</i>")
}

func TestPlateResultsPolicyTag(t *testing.T) {
	block := renderPlateResults(&plateSearchResult{Vehicles: []vehicle{
		{Plate: "ABC123", Policy: "full", Active: true},
		{Plate: "OLD1"},
	}})
	assert.Equal(t, "FULL (Active)", block.Rows[1].Tag)
	assert.Equal(t, "NONE (Inactive)", block.Rows[2].Tag)
	assert.Equal(t, "plate", block.Rows[1].Actions[0].attr("target-type"))
	assert.Equal(t, "ABC123", block.Rows[1].Actions[0].attr("target-value"))
}

func TestThemeRenderBlockMarksSelection(t *testing.T) {
	th := newTheme()
	block := renderCalls([]call{{ID: 1, Location: "North"}, {ID: 2, Location: "South"}}, false)

	out, line := th.renderBlock(block, 80, 1)
	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "[g] Waypoint")
	assert.Equal(t, 1, strings.Count(out, "[a] Attach"), "only the selected row shows its controls")
	assert.Greater(t, line, 0)

	none, _ := th.renderBlock(block, 80, -1)
	assert.NotContains(t, none, "▶")
	assert.NotContains(t, none, "[a] Attach")

	empty, _ := th.renderBlock(renderUnits(nil), 80, 0)
	assert.Contains(t, empty, "No active units.")
}

func TestRenderBlockPlainListsControls(t *testing.T) {
	out := renderBlockPlain(renderReports([]report{{ID: 3, Title: "Theft", Info: "line one\nline two"}}, true))
	assert.Equal(t, strings.Join([]string{
		"Theft [INCIDENT]",
		"  #3 |  | Officer: Unknown",
		"  line one",
		"  line two",
		"  [x] Delete Report",
	}, "\n"), out)
}
