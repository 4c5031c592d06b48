package main

import (
	"fmt"
	"strings"
)

type rowKind int

const (
	rowItem rowKind = iota
	rowSection
)

type actionOp string

const (
	opReport         actionOp = "report"
	opQuickNote      actionOp = "quicknote"
	opFlags          actionOp = "flags"
	opWarrant        actionOp = "warrant"
	opCallAttach     actionOp = "call-attach"
	opCallWaypoint   actionOp = "call-waypoint"
	opDeleteBolo     actionOp = "delete-bolo"
	opDeleteReport   actionOp = "delete-report"
	opDeleteCall     actionOp = "delete-call"
	opDeleteEmployee actionOp = "delete-employee"
)

// viewAction is an inline control on a row. Attrs hold the control's data
// attributes, already quote-escaped.
type viewAction struct {
	Key    string
	Label  string
	Op     actionOp
	Attrs  map[string]string
	Danger bool
}

func (a viewAction) attr(name string) string {
	return unescapeAttr(a.Attrs[name])
}

type viewRow struct {
	Kind    rowKind
	Title   string
	Tag     string
	Meta    []string
	Image   string
	Lines   []string
	Chips   []string
	Actions []viewAction
	Mine    bool
}

type viewBlock struct {
	Surface     surfaceID
	Placeholder string
	Rows        []viewRow
}

func (b viewBlock) empty() bool {
	return len(b.Rows) == 0
}

func (b viewBlock) selectable() []viewRow {
	out := make([]viewRow, 0, len(b.Rows))
	for _, row := range b.Rows {
		if len(row.Actions) > 0 {
			out = append(out, row)
		}
	}
	return out
}

func escapeAttr(value string) string {
	return strings.ReplaceAll(value, `"`, "&quot;")
}

func unescapeAttr(value string) string {
	return strings.ReplaceAll(value, "&quot;", `"`)
}

func bodyLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func placeholderBlock(surface surfaceID, text string) viewBlock {
	return viewBlock{Surface: surface, Placeholder: text}
}

func reportActions(targetType, value string) []viewAction {
	attrs := func(reportType string) map[string]string {
		return map[string]string{
			"report-type":  reportType,
			"target-type":  targetType,
			"target-value": escapeAttr(value),
		}
	}
	return []viewAction{
		{Key: "t", Label: "New Ticket", Op: opReport, Attrs: attrs("citation")},
		{Key: "a", Label: "New Arrest", Op: opReport, Attrs: attrs("arrest")},
		{Key: "r", Label: "New Report", Op: opReport, Attrs: attrs("incident")},
	}
}

func recordRows(records []searchRecord) []viewRow {
	if len(records) == 0 {
		return nil
	}
	rows := []viewRow{{Kind: rowSection, Title: "Associated Records"}}
	for _, rec := range records {
		rows = append(rows, viewRow{
			Title: nullCoalesce(rec.Title, "Record"),
			Tag:   upperOr(rec.Type, "record"),
			Meta:  []string{rec.TargetValue, rec.Timestamp, "#" + rec.ID},
			Lines: bodyLines(rec.Body),
		})
	}
	return rows
}

func flagBit(on bool) string {
	return ternary(on, "1", "0")
}

func renderNameResults(res *nameSearchResult) viewBlock {
	block := placeholderBlock(surfaceNameResults, "No results.")
	if res == nil || (len(res.Citizens) == 0 && len(res.Records) == 0) {
		return block
	}
	if len(res.Citizens) > 0 {
		block.Rows = append(block.Rows, viewRow{Kind: rowSection, Title: "Characters"})
	}
	for _, c := range res.Citizens {
		name := nullCoalesce(c.Name, "Unknown")
		safeName := escapeAttr(name)
		row := viewRow{
			Title: name,
			Tag:   upperOr(c.Department, "Unknown"),
			Meta: []string{
				"Char ID: " + nullCoalesce(c.CharID, "—"),
				"License: " + nullCoalesce(c.License, "Unknown"),
				"Discord: " + nullCoalesce(c.Discord, "—"),
			},
			Image: c.Mugshot,
			Lines: []string{"Last Seen: " + nullCoalesce(c.LastSeen, "Unknown")},
			Chips: c.Flags.labels(),
		}
		if len(row.Chips) == 0 {
			row.Lines = append(row.Lines, "No flags.")
		}
		row.Lines = append(row.Lines, "Quick Notes:")
		if len(c.QuickNotes) == 0 {
			row.Lines = append(row.Lines, "No quick notes.")
		}
		for _, note := range c.QuickNotes {
			row.Lines = append(row.Lines, "- "+note)
		}
		row.Actions = append(reportActions("name", name),
			viewAction{Key: "n", Label: "Add Note", Op: opQuickNote, Attrs: map[string]string{
				"quicknote-name": safeName,
			}},
			viewAction{Key: "f", Label: "Flags", Op: opFlags, Attrs: map[string]string{
				"flags-name":           safeName,
				"flags-officer-safety": flagBit(c.Flags.OfficerSafety),
				"flags-armed":          flagBit(c.Flags.Armed),
				"flags-gang":           flagBit(c.Flags.Gang),
				"flags-mental":         flagBit(c.Flags.MentalHealth),
			}},
			viewAction{Key: "w", Label: "New Warrant", Op: opWarrant, Attrs: map[string]string{
				"warrant-name":   safeName,
				"warrant-charid": escapeAttr(c.WarrantID),
			}},
		)
		block.Rows = append(block.Rows, row)
	}
	block.Rows = append(block.Rows, recordRows(res.Records)...)
	return block
}

func renderPlateResults(res *plateSearchResult) viewBlock {
	block := placeholderBlock(surfacePlateResults, "No results.")
	if res == nil || (len(res.Vehicles) == 0 && len(res.Records) == 0) {
		return block
	}
	if len(res.Vehicles) > 0 {
		block.Rows = append(block.Rows, viewRow{Kind: rowSection, Title: "Vehicles"})
	}
	for _, v := range res.Vehicles {
		plate := nullCoalesce(v.Plate, "—")
		policy := fmt.Sprintf("%s (%s)", upperOr(v.Policy, "none"), ternary(v.Active, "Active", "Inactive"))
		block.Rows = append(block.Rows, viewRow{
			Title: plate,
			Tag:   policy,
			Meta: []string{
				"Model: " + nullCoalesce(v.Model, "Unknown"),
				"Owner: " + nullCoalesce(v.Owner, "Unknown"),
				"Discord: " + nullCoalesce(v.Discord, "—"),
			},
			Actions: reportActions("plate", plate),
		})
	}
	block.Rows = append(block.Rows, recordRows(res.Records)...)
	return block
}

func renderWeaponResults(res *weaponSearchResult) viewBlock {
	block := placeholderBlock(surfaceWeaponResults, "No results.")
	if res == nil || (len(res.Weapons) == 0 && len(res.Records) == 0) {
		return block
	}
	if len(res.Weapons) > 0 {
		block.Rows = append(block.Rows, viewRow{Kind: rowSection, Title: "Weapons"})
	}
	for _, w := range res.Weapons {
		block.Rows = append(block.Rows, viewRow{
			Title: nullCoalesce(w.Serial, "—"),
			Tag:   upperOr(w.Type, "Weapon"),
			Meta:  []string{"Owner: " + nullCoalesce(w.Owner, "Unknown")},
		})
	}
	block.Rows = append(block.Rows, recordRows(res.Records)...)
	return block
}

func idOrDash(id int) string {
	if id == 0 {
		return "—"
	}
	return fmt.Sprintf("%d", id)
}

func boloRow(b bolo) viewRow {
	return viewRow{
		Title: nullCoalesce(b.Title, "BOLO"),
		Tag:   upperOr(b.Type, "VEHICLE"),
		Meta:  []string{"#" + idOrDash(b.ID), b.CreatedAt},
		Lines: bodyLines(b.Details),
	}
}

func renderBolos(list []bolo, isAdmin bool) viewBlock {
	block := placeholderBlock(surfaceBoloList, "No active BOLOs.")
	for _, b := range list {
		row := boloRow(b)
		if isAdmin && b.ID != 0 {
			row.Actions = []viewAction{{
				Key: "x", Label: "Delete BOLO", Op: opDeleteBolo, Danger: true,
				Attrs: map[string]string{"bolo-id": fmt.Sprintf("%d", b.ID)},
			}}
		}
		block.Rows = append(block.Rows, row)
	}
	return block
}

func renderDashboardBolos(list []bolo) viewBlock {
	block := placeholderBlock(surfaceDashboardBolos, "No active BOLOs.")
	for _, b := range list[:minInt(3, len(list))] {
		block.Rows = append(block.Rows, boloRow(b))
	}
	return block
}

func renderReports(list []report, isAdmin bool) viewBlock {
	block := placeholderBlock(surfaceReportList, "No reports.")
	for _, r := range list {
		row := viewRow{
			Title: nullCoalesce(r.Title, "Report"),
			Tag:   upperOr(r.Type, "incident"),
			Meta:  []string{"#" + idOrDash(r.ID), r.CreatedAt, "Officer: " + nullCoalesce(r.Officer, "Unknown")},
			Lines: bodyLines(r.Info),
		}
		if isAdmin && r.ID != 0 {
			row.Actions = []viewAction{{
				Key: "x", Label: "Delete Report", Op: opDeleteReport, Danger: true,
				Attrs: map[string]string{"report-id": fmt.Sprintf("%d", r.ID)},
			}}
		}
		block.Rows = append(block.Rows, row)
	}
	return block
}

func renderEmployees(list []employee, isAdmin bool) viewBlock {
	block := placeholderBlock(surfaceEmployeeList, "No employees found.")
	for _, e := range list {
		row := viewRow{
			Title: nullCoalesce(e.Name, "Unknown"),
			Tag:   upperOr(e.Department, "police"),
			Meta: []string{
				"Char ID: " + nullCoalesce(e.CharID, "—"),
				"Callsign: " + nullCoalesce(e.Callsign, "—"),
				"Grade: " + nullCoalesce(e.Grade, "—"),
			},
		}
		if isAdmin && e.ID != 0 && e.Department != "" {
			row.Actions = []viewAction{{
				Key: "x", Label: "Remove From Dept", Op: opDeleteEmployee, Danger: true,
				Attrs: map[string]string{
					"employee-id":   fmt.Sprintf("%d", e.ID),
					"employee-dept": escapeAttr(e.Department),
				},
			}}
		}
		block.Rows = append(block.Rows, row)
	}
	return block
}

func renderUnits(list []unit) viewBlock {
	block := placeholderBlock(surfaceUnitList, "No active units.")
	for _, u := range list {
		block.Rows = append(block.Rows, viewRow{
			Title: nullCoalesce(u.Name, "Unit "+u.ID),
			Tag:   upperOr(u.Department, "police"),
			Meta: []string{
				"Callsign: " + nullCoalesce(u.Callsign, "—"),
				"Status: " + nullCoalesce(u.Status, string(statusAvailable)),
			},
		})
	}
	return block
}

func renderCalls(list []call, isAdmin bool) viewBlock {
	block := placeholderBlock(surfaceCallList, "No active 911 calls.")
	for _, c := range list {
		id := fmt.Sprintf("%d", c.ID)
		row := viewRow{
			Title: fmt.Sprintf("#%d – %s", c.ID, nullCoalesce(c.Location, "Unknown location")),
			Tag:   upperOr(c.Status, "PENDING"),
			Meta: []string{
				"Caller: " + nullCoalesce(c.Caller, "Unknown"),
				"Units: " + nullCoalesce(strings.Join(c.Units, ", "), "None"),
				c.CreatedAt,
			},
			Lines: bodyLines(c.Message),
			Actions: []viewAction{
				{Key: "a", Label: "Attach", Op: opCallAttach, Attrs: map[string]string{"call-id": id}},
				{Key: "g", Label: "Waypoint", Op: opCallWaypoint, Attrs: map[string]string{"call-id": id}},
			},
		}
		if isAdmin && c.ID != 0 {
			row.Actions = append(row.Actions, viewAction{
				Key: "x", Label: "Clear Call", Op: opDeleteCall, Danger: true,
				Attrs: map[string]string{"call-id": id},
			})
		}
		block.Rows = append(block.Rows, row)
	}
	return block
}

func renderChat(list []chatMessage, callsign string) viewBlock {
	block := placeholderBlock(surfaceChat, "No messages yet.")
	for _, msg := range list {
		block.Rows = append(block.Rows, viewRow{
			Title: nullCoalesce(msg.Sender, "Unknown") + " · " + msg.Time,
			Lines: bodyLines(msg.Message),
			Mine:  callsign != "" && msg.Source == callsign,
		})
	}
	return block
}

func renderWarrants(list []warrant) viewBlock {
	block := placeholderBlock(surfaceWarrantList, "No warrants.")
	for _, w := range list {
		block.Rows = append(block.Rows, viewRow{
			Title: nullCoalesce(w.TargetName, "Unknown"),
			Tag:   upperOr(w.Status, "active"),
			Meta: []string{
				"Char ID: " + nullCoalesce(w.TargetCharID, "—"),
				nullCoalesce(w.CreatedBy, "Unknown") + " · " + w.CreatedAt,
				"#" + w.ID,
			},
			Lines: bodyLines(w.Reason),
		})
	}
	return block
}

func renderActionLog(list []actionLogEntry, isAdmin bool) viewBlock {
	if !isAdmin {
		return placeholderBlock(surfaceActionLog, "Enter admin mode to view Internal Affairs logs.")
	}
	block := placeholderBlock(surfaceActionLog, "No logged actions.")
	for _, entry := range list {
		block.Rows = append(block.Rows, viewRow{
			Title: nullCoalesce(entry.Action, "action"),
			Tag:   nullCoalesce(entry.OfficerName, "Unknown"),
			Meta: []string{
				entry.CreatedAt,
				"Target: " + nullCoalesce(entry.Target, "—"),
				"Discord: " + nullCoalesce(entry.OfficerDiscord, "—"),
			},
			Lines: bodyLines(entry.Meta),
		})
	}
	return block
}

func renderOfficer(o officer, status unitStatus) viewBlock {
	return viewBlock{
		Surface: surfaceOfficer,
		Rows: []viewRow{{
			Title: nullCoalesce(o.Name, "Unknown"),
			Tag:   initialsFromName(o.Name),
			Meta: []string{
				fmt.Sprintf("%s · %s · %s", nullCoalesce(o.Department, "police"), nullCoalesce(o.Grade, "0"), status),
			},
			Lines: []string{"Status: " + statusLabel(status)},
		}},
	}
}
