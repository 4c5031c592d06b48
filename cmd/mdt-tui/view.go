package main

import (
	"fmt"
	"sort"
	"strings"
)

// renderBlock draws a block for the terminal. selected indexes the block's
// selectable rows (-1 for none). It also returns the line offset where the
// selected row starts, for scrolling.
func (th uiTheme) renderBlock(b viewBlock, width int, selected int) (string, int) {
	if b.empty() {
		return th.placeholder.Render(b.Placeholder), 0
	}
	lines := make([]string, 0, len(b.Rows)*4)
	selectedLine := 0
	selectable := -1
	for _, row := range b.Rows {
		if row.Kind == rowSection {
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, th.section.Render(row.Title))
			continue
		}
		isSelected := false
		if len(row.Actions) > 0 {
			selectable++
			isSelected = selectable == selected
		}
		if isSelected {
			selectedLine = len(lines)
		}
		lines = append(lines, th.renderRow(row, width, isSelected)...)
	}
	return strings.Join(lines, "\n"), selectedLine
}

func (th uiTheme) renderRow(row viewRow, width int, selected bool) []string {
	marker := "  "
	titleStyle := th.rowTitle
	if selected {
		marker = th.rowSelected.Render("▶ ")
		titleStyle = th.rowSelected
	}
	if row.Mine {
		titleStyle = th.rowMine
	}
	head := marker + titleStyle.Render(row.Title)
	if row.Tag != "" {
		head += "  " + th.rowTag.Render("["+row.Tag+"]")
	}
	out := []string{head}

	meta := make([]string, 0, len(row.Meta))
	for _, m := range row.Meta {
		if strings.TrimSpace(m) != "" {
			meta = append(meta, m)
		}
	}
	if len(meta) > 0 {
		out = append(out, "  "+th.rowMeta.Render(strings.Join(meta, " · ")))
	}
	if row.Image != "" {
		out = append(out, "  "+th.rowMeta.Render("Mugshot: "+row.Image))
	}
	bodyWidth := maxInt(20, width-4)
	for _, line := range row.Lines {
		for _, wrapped := range strings.Split(wrapText(line, bodyWidth), "\n") {
			out = append(out, "  "+th.rowBody.Render(wrapped))
		}
	}
	if len(row.Chips) > 0 {
		chips := make([]string, 0, len(row.Chips))
		for _, chip := range row.Chips {
			chips = append(chips, th.chip.Render(chip))
		}
		out = append(out, "  "+strings.Join(chips, " "))
	}
	if selected && len(row.Actions) > 0 {
		controls := make([]string, 0, len(row.Actions))
		for _, a := range row.Actions {
			style := ternary(a.Danger, th.actionDanger, th.action)
			controls = append(controls, style.Render(fmt.Sprintf("[%s] %s", a.Key, a.Label)))
		}
		out = append(out, "  "+strings.Join(controls, "  "))
	}
	return append(out, "")
}

func renderBlockPlain(b viewBlock) string {
	if b.empty() {
		return b.Placeholder
	}
	var sb strings.Builder
	for _, row := range b.Rows {
		if row.Kind == rowSection {
			fmt.Fprintf(&sb, "== %s ==\n", row.Title)
			continue
		}
		sb.WriteString(row.Title)
		if row.Tag != "" {
			fmt.Fprintf(&sb, " [%s]", row.Tag)
		}
		if row.Mine {
			sb.WriteString(" (me)")
		}
		sb.WriteString("\n")
		if len(row.Meta) > 0 {
			fmt.Fprintf(&sb, "  %s\n", strings.Join(row.Meta, " | "))
		}
		for _, line := range row.Lines {
			fmt.Fprintf(&sb, "  %s\n", line)
		}
		if len(row.Chips) > 0 {
			fmt.Fprintf(&sb, "  flags: %s\n", strings.Join(row.Chips, ", "))
		}
		for _, a := range row.Actions {
			fmt.Fprintf(&sb, "  [%s] %s\n", a.Key, a.Label)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderBlockHTML produces the row markup of the in-game terminal. Attribute
// values are quote-escaped by the renderers; text content is emitted as is.
func renderBlockHTML(b viewBlock) string {
	if b.empty() {
		return fmt.Sprintf(`<div class="mdt-empty">%s</div>`, b.Placeholder)
	}
	var sb strings.Builder
	for _, row := range b.Rows {
		if row.Kind == rowSection {
			fmt.Fprintf(&sb, `<div class="mdt-row-meta">%s</div>`, row.Title)
			sb.WriteString("\n")
			continue
		}
		class := "mdt-row"
		if row.Mine {
			class += " me"
		}
		fmt.Fprintf(&sb, `<div class="%s">`, class)
		fmt.Fprintf(&sb, `<div class="mdt-row-header"><div class="mdt-row-title">%s</div>`, row.Title)
		if row.Tag != "" {
			fmt.Fprintf(&sb, `<span class="mdt-row-tag">%s</span>`, row.Tag)
		}
		sb.WriteString(`</div>`)
		if len(row.Meta) > 0 {
			sb.WriteString(`<div class="mdt-row-meta">`)
			for _, m := range row.Meta {
				fmt.Fprintf(&sb, `<span>%s</span>`, m)
			}
			sb.WriteString(`</div>`)
		}
		if row.Image != "" {
			fmt.Fprintf(&sb, `<img src="%s" alt="Mugshot">`, escapeAttr(row.Image))
		}
		if len(row.Lines) > 0 || len(row.Chips) > 0 {
			sb.WriteString(`<div class="mdt-row-body">`)
			sb.WriteString(strings.Join(row.Lines, "<br>"))
			for _, chip := range row.Chips {
				fmt.Fprintf(&sb, `<span class="mdt-row-tag">%s</span>`, chip)
			}
			sb.WriteString(`</div>`)
		}
		if len(row.Actions) > 0 {
			sb.WriteString(`<div class="mdt-row-actions">`)
			for _, a := range row.Actions {
				fmt.Fprintf(&sb, `<button class="btn-xs %s" data-action="%s"%s>%s</button>`,
					ternary(a.Danger, "btn-danger", "btn-secondary"), a.Op, htmlAttrs(a.Attrs), a.Label)
			}
			sb.WriteString(`</div>`)
		}
		sb.WriteString("</div>\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func htmlAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, ` data-%s="%s"`, k, attrs[k])
	}
	return sb.String()
}
