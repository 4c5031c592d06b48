package main

import (
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Entities arrive loosely typed. Each field is resolved from an ordered list of
// candidate keys; the first truthy value wins (empty strings, zero numbers,
// false and null are skipped).

type officer struct {
	Name       string
	Department string
	Grade      string
	Callsign   string
	Status     string
}

type identityFlags struct {
	OfficerSafety bool
	Armed         bool
	Gang          bool
	MentalHealth  bool
}

func (f identityFlags) labels() []string {
	out := make([]string, 0, 4)
	if f.OfficerSafety {
		out = append(out, "Officer Safety")
	}
	if f.Armed {
		out = append(out, "Armed & Dangerous")
	}
	if f.Gang {
		out = append(out, "Gang Affiliation")
	}
	if f.MentalHealth {
		out = append(out, "Mental Health")
	}
	return out
}

func (f identityFlags) payload() map[string]any {
	return map[string]any{
		"officer_safety": f.OfficerSafety,
		"armed":          f.Armed,
		"gang":           f.Gang,
		"mental_health":  f.MentalHealth,
	}
}

type citizen struct {
	Name       string
	Department string
	CharID     string
	WarrantID  string
	License    string
	Discord    string
	Mugshot    string
	LastSeen   string
	Flags      identityFlags
	QuickNotes []string
}

type searchRecord struct {
	ID          string
	Title       string
	Type        string
	TargetValue string
	Timestamp   string
	Body        string
}

type vehicle struct {
	Plate   string
	Owner   string
	Model   string
	Policy  string
	Active  bool
	Discord string
}

type weapon struct {
	Serial string
	Owner  string
	Type   string
}

type nameSearchResult struct {
	Citizens []citizen
	Records  []searchRecord
}

type plateSearchResult struct {
	Vehicles []vehicle
	Records  []searchRecord
}

type weaponSearchResult struct {
	Weapons []weapon
	Records []searchRecord
}

type bolo struct {
	ID        int
	Type      string
	Title     string
	Details   string
	CreatedAt string
}

type report struct {
	ID        int
	Type      string
	Title     string
	Info      string
	Officer   string
	CreatedAt string
}

type employee struct {
	ID         int
	Name       string
	Department string
	CharID     string
	Callsign   string
	Grade      string
}

type unit struct {
	ID         string
	Name       string
	Department string
	Callsign   string
	Status     string
}

type call struct {
	ID        int
	Status    string
	Location  string
	Caller    string
	Message   string
	Units     []string
	CreatedAt string
}

type chatMessage struct {
	Sender  string
	Source  string
	Message string
	Time    string
}

type warrant struct {
	ID           string
	TargetName   string
	TargetCharID string
	Status       string
	CreatedBy    string
	CreatedAt    string
	Reason       string
}

type actionLogEntry struct {
	Action         string
	OfficerName    string
	OfficerDiscord string
	Target         string
	CreatedAt      string
	Meta           string
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return v.Exists()
	}
}

func firstTruthy(r gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := r.Get(key); truthy(v) {
			return v
		}
	}
	return gjson.Result{}
}

func arrayAt(r gjson.Result, key string) []gjson.Result {
	v := r.Get(key)
	if !v.IsArray() {
		return nil
	}
	return v.Array()
}

func firstString(r gjson.Result, keys ...string) string {
	v := firstTruthy(r, keys...)
	if !v.Exists() {
		return ""
	}
	return v.String()
}

func firstInt(r gjson.Result, keys ...string) int {
	v := firstTruthy(r, keys...)
	switch v.Type {
	case gjson.Number:
		return int(v.Int())
	case gjson.String:
		n, _ := parseAnyInt(v.Str)
		return n
	default:
		return 0
	}
}

type payloadParser struct {
	log *zap.Logger
}

// parse accepts structured data, a JSON-encoded string, null/empty or another
// primitive. It returns ok=false for null, empty and unparseable input; a
// string that is not valid JSON is logged with label and never panics.
func (p payloadParser) parse(raw gjson.Result, label string) (gjson.Result, bool) {
	switch raw.Type {
	case gjson.Null:
		return gjson.Result{}, false
	case gjson.String:
		text := strings.TrimSpace(raw.Str)
		if text == "" {
			return gjson.Result{}, false
		}
		if !gjson.Valid(text) {
			p.log.Error("failed to parse inbound payload",
				zap.String("label", label),
				zap.String("raw", compactSingleLine(text, 200)),
			)
			return gjson.Result{}, false
		}
		parsed := gjson.Parse(text)
		if parsed.Type == gjson.Null {
			return gjson.Result{}, false
		}
		return parsed, true
	default:
		return raw, true
	}
}

func (p payloadParser) array(raw gjson.Result, label string) []gjson.Result {
	parsed, ok := p.parse(raw, label)
	if !ok || !parsed.IsArray() {
		return nil
	}
	return parsed.Array()
}

func (p payloadParser) nested(r gjson.Result, label string, keys ...string) gjson.Result {
	for _, key := range keys {
		v := r.Get(key)
		if !truthy(v) {
			continue
		}
		if parsed, ok := p.parse(v, label); ok && parsed.IsObject() {
			return parsed
		}
	}
	return gjson.Result{}
}

func (p payloadParser) officer(r gjson.Result) officer {
	return officer{
		Name:       firstString(r, "name"),
		Department: firstString(r, "department"),
		Grade:      firstString(r, "grade"),
		Callsign:   firstString(r, "callsign"),
		Status:     firstString(r, "status"),
	}
}

func (p payloadParser) citizen(r gjson.Result) citizen {
	flags := r.Get("flags").Get("flags")
	c := citizen{
		Name:       firstString(r, "name"),
		Department: firstString(r, "active_department"),
		CharID:     firstString(r, "charid", "id"),
		WarrantID:  firstString(r, "charid"),
		License:    firstString(r, "license_status", "license"),
		Discord:    firstString(r, "discordid"),
		Mugshot:    firstString(r, "mugshot"),
		LastSeen:   firstString(r, "last_seen"),
		Flags: identityFlags{
			OfficerSafety: truthy(flags.Get("officer_safety")),
			Armed:         truthy(flags.Get("armed")),
			Gang:          truthy(flags.Get("gang")),
			MentalHealth:  truthy(flags.Get("mental_health")),
		},
	}
	for _, note := range arrayAt(r, "quick_notes") {
		if len(c.QuickNotes) == 2 {
			break
		}
		c.QuickNotes = append(c.QuickNotes, note.Get("note").String())
	}
	return c
}

func (p payloadParser) searchRecord(r gjson.Result) searchRecord {
	return searchRecord{
		ID:          firstString(r, "id"),
		Title:       firstString(r, "title", "rtype"),
		Type:        firstString(r, "rtype", "type"),
		TargetValue: firstString(r, "target_value"),
		Timestamp:   firstString(r, "timestamp", "created_at"),
		Body:        firstString(r, "description", "body", "notes"),
	}
}

func (p payloadParser) records(r gjson.Result) []searchRecord {
	var out []searchRecord
	for _, row := range arrayAt(r, "records") {
		out = append(out, p.searchRecord(row))
	}
	return out
}

func (p payloadParser) nameResults(raw gjson.Result) *nameSearchResult {
	res := &nameSearchResult{}
	payload, ok := p.parse(raw, "nameResults")
	if !ok {
		return res
	}
	for _, row := range arrayAt(payload, "citizens") {
		res.Citizens = append(res.Citizens, p.citizen(row))
	}
	res.Records = p.records(payload)
	return res
}

func (p payloadParser) plateResults(raw gjson.Result) *plateSearchResult {
	res := &plateSearchResult{}
	payload, ok := p.parse(raw, "plateResults")
	if !ok {
		return res
	}
	for _, row := range arrayAt(payload, "vehicles") {
		res.Vehicles = append(res.Vehicles, vehicle{
			Plate:   firstString(row, "plate"),
			Owner:   firstString(row, "owner_name", "ownerName", "discordid"),
			Model:   firstString(row, "model"),
			Policy:  firstString(row, "policy_type"),
			Active:  truthy(row.Get("active")),
			Discord: firstString(row, "discordid"),
		})
	}
	res.Records = p.records(payload)
	return res
}

func (p payloadParser) weaponResults(raw gjson.Result) *weaponSearchResult {
	res := &weaponSearchResult{}
	payload, ok := p.parse(raw, "weaponResults")
	if !ok {
		return res
	}
	for _, row := range arrayAt(payload, "weapons") {
		res.Weapons = append(res.Weapons, weapon{
			Serial: firstString(row, "serial", "serial_number"),
			Owner:  firstString(row, "owner", "owner_name", "discordid"),
			Type:   firstString(row, "type"),
		})
	}
	res.Records = p.records(payload)
	return res
}

func (p payloadParser) bolo(r gjson.Result) bolo {
	body := p.nested(r, "boloRow", "body", "data")
	return bolo{
		ID:        firstInt(r, "id"),
		Type:      ternary(truthy(r.Get("type")), r.Get("type").String(), firstString(body, "type")),
		Title:     ternary(truthy(body.Get("title")), body.Get("title").String(), firstString(r, "title")),
		Details:   firstString(body, "details", "description"),
		CreatedAt: firstString(r, "created_at", "timestamp"),
	}
}

func (p payloadParser) bolos(raw gjson.Result) []bolo {
	var out []bolo
	for _, row := range p.array(raw, "boloList") {
		out = append(out, p.bolo(row))
	}
	return out
}

func (p payloadParser) report(r gjson.Result) report {
	body := p.nested(r, "reportRow", "body", "data")
	return report{
		ID:        firstInt(r, "id"),
		Type:      ternary(truthy(r.Get("type")), r.Get("type").String(), firstString(body, "type")),
		Title:     ternary(truthy(body.Get("title")), body.Get("title").String(), firstString(r, "title")),
		Info:      firstString(body, "info", "body"),
		Officer:   firstString(body, "officer"),
		CreatedAt: firstString(r, "created_at", "timestamp"),
	}
}

func (p payloadParser) reports(raw gjson.Result) []report {
	var out []report
	for _, row := range p.array(raw, "reportList") {
		out = append(out, p.report(row))
	}
	return out
}

func (p payloadParser) employees(raw gjson.Result) []employee {
	var out []employee
	for _, row := range p.array(raw, "employeesList") {
		out = append(out, employee{
			ID:         firstInt(row, "id"),
			Name:       firstString(row, "name"),
			Department: firstString(row, "active_department", "department"),
			CharID:     firstString(row, "charid", "id"),
			Callsign:   firstString(row, "callsign"),
			Grade:      firstString(row, "paycheck", "grade"),
		})
	}
	return out
}

func (p payloadParser) units(raw gjson.Result) []unit {
	var out []unit
	for _, row := range p.array(raw, "unitsUpdate") {
		out = append(out, unit{
			ID:         firstString(row, "id"),
			Name:       firstString(row, "name"),
			Department: firstString(row, "department"),
			Callsign:   firstString(row, "callsign"),
			Status:     firstString(row, "status"),
		})
	}
	return out
}

func (p payloadParser) call(r gjson.Result) call {
	c := call{
		ID:        firstInt(r, "id"),
		Status:    firstString(r, "status"),
		Location:  firstString(r, "location"),
		Caller:    firstString(r, "caller"),
		Message:   firstString(r, "message"),
		CreatedAt: firstString(r, "created_at"),
	}
	for _, u := range arrayAt(r, "units") {
		c.Units = append(c.Units, firstString(u, "callsign", "name", "id"))
	}
	return c
}

func (p payloadParser) calls(raw gjson.Result) []call {
	var out []call
	for _, row := range p.array(raw, "callList") {
		out = append(out, p.call(row))
	}
	return out
}

func (p payloadParser) chatMessage(r gjson.Result) chatMessage {
	return chatMessage{
		Sender:  firstString(r, "sender"),
		Source:  firstString(r, "source"),
		Message: firstString(r, "message"),
		Time:    firstString(r, "time"),
	}
}

func (p payloadParser) chatHistory(raw gjson.Result) []chatMessage {
	var out []chatMessage
	for _, row := range p.array(raw, "liveChatHistory") {
		out = append(out, p.chatMessage(row))
	}
	return out
}

func (p payloadParser) warrants(raw gjson.Result) []warrant {
	var out []warrant
	for _, row := range p.array(raw, "warrantsList") {
		out = append(out, warrant{
			ID:           firstString(row, "id"),
			TargetName:   firstString(row, "target_name"),
			TargetCharID: firstString(row, "target_charid"),
			Status:       firstString(row, "status"),
			CreatedBy:    firstString(row, "created_by"),
			CreatedAt:    firstString(row, "created_at"),
			Reason:       firstString(row, "reason"),
		})
	}
	return out
}

func (p payloadParser) actionLog(raw gjson.Result) []actionLogEntry {
	var out []actionLogEntry
	for _, row := range p.array(raw, "actionLog") {
		entry := actionLogEntry{
			Action:         firstString(row, "action"),
			OfficerName:    firstString(row, "officer_name"),
			OfficerDiscord: firstString(row, "officer_discord"),
			Target:         firstString(row, "target"),
			CreatedAt:      firstString(row, "created_at"),
		}
		if meta := p.nested(row, "actionLogMeta", "meta"); meta.IsObject() && len(meta.Map()) > 0 {
			entry.Meta = meta.Get("@ugly").Raw
		}
		out = append(out, entry)
	}
	return out
}
