package main

import (
	"fmt"
	"strings"
)

type modalKind string

const (
	modalNote    modalKind = "note"
	modalFlags   modalKind = "flags"
	modalWarrant modalKind = "warrant"
)

var modalKinds = []modalKind{modalNote, modalFlags, modalWarrant}

// modalContext describes the open modal and what it edits. Note and flags
// use TargetType/TargetValue; warrant uses TargetName/CharID.
type modalContext struct {
	Kind        modalKind
	TargetType  string
	TargetValue string
	Flags       identityFlags
	Notes       string
	TargetName  string
	CharID      string
}

func (t *terminal) openModal(ctx modalContext) {
	t.hideModals()
	c := ctx
	t.state.modal = &c
	t.state.modalSeq++
	t.state.modalShown[ctx.Kind] = true
	t.state.backdrop = true
}

func (t *terminal) closeModal() {
	t.hideModals()
	t.state.modal = nil
}

func (t *terminal) hideModals() {
	for _, kind := range modalKinds {
		t.state.modalShown[kind] = false
	}
	t.state.backdrop = false
}

func (t *terminal) activeModal(kind modalKind) (modalContext, bool) {
	if t.state.modal == nil || t.state.modal.Kind != kind {
		return modalContext{}, false
	}
	return *t.state.modal, true
}

func (t *terminal) refreshNameSearch(full string) {
	first, last := splitFullName(full)
	t.send("NameSearch", map[string]any{"first": first, "last": last, "term": full})
}

// submitNote reports whether the note was sent. A missing target or empty
// note aborts silently and leaves the modal open.
func (t *terminal) submitNote(note string) bool {
	ctx, ok := t.activeModal(modalNote)
	if !ok {
		return false
	}
	note = strings.TrimSpace(note)
	if ctx.TargetValue == "" || note == "" {
		return false
	}
	t.sink.Play(cueClick)
	t.send("CreateQuickNote", map[string]any{
		"targetType":  nullCoalesce(ctx.TargetType, "name"),
		"targetValue": ctx.TargetValue,
		"note":        note,
	})
	t.refreshNameSearch(ctx.TargetValue)
	t.sink.Speak(fmt.Sprintf("Quick note added for %s.", ctx.TargetValue))
	t.closeModal()
	return true
}

func (t *terminal) submitFlags(flags identityFlags, notes string) bool {
	ctx, ok := t.activeModal(modalFlags)
	if !ok || ctx.TargetValue == "" {
		return false
	}
	t.sink.Play(cueClick)
	t.send("SetIdentityFlags", map[string]any{
		"targetType":  nullCoalesce(ctx.TargetType, "name"),
		"targetValue": ctx.TargetValue,
		"flags":       flags.payload(),
		"notes":       strings.TrimSpace(notes),
	})
	t.refreshNameSearch(ctx.TargetValue)
	t.sink.Speak(fmt.Sprintf("Flags updated for %s.", ctx.TargetValue))
	t.closeModal()
	return true
}

func (t *terminal) submitWarrant(name, charid, reason string) bool {
	if _, ok := t.activeModal(modalWarrant); !ok {
		return false
	}
	name = strings.TrimSpace(name)
	reason = strings.TrimSpace(reason)
	if name == "" || reason == "" {
		return false
	}
	t.sink.Play(cueClick)
	t.send("CreateWarrant", map[string]any{
		"targetName": name,
		"charid":     strings.TrimSpace(charid),
		"reason":     reason,
	})
	t.refreshNameSearch(name)
	t.send("GetWarrants", nil)
	t.sink.Speak(fmt.Sprintf("Warrant created for %s.", name))
	t.closeModal()
	return true
}
