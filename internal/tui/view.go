package tui

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

// View renders the current model state.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("umlgen"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTypes())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("PlantUML"))
	b.WriteString("\n")
	if m.markup == "" {
		b.WriteString(mutedStyle.Render("No diagram available"))
	} else {
		b.WriteString(markupStyle.Width(max(20, m.width-4)).Render(m.markup))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Viewer"))
	b.WriteString("\n")
	b.WriteString(m.renderViewer())
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderTypes() string {
	parts := make([]string, len(m.types))
	for i, t := range m.types {
		if i == m.typeIdx {
			parts[i] = activeTypeStyle.Render(string(t))
		} else {
			parts[i] = inactiveTypeStyle.Render(string(t))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderStatus() string {
	switch {
	case m.generating:
		return m.spinner.View() + " Generating diagram..."
	case m.err != "":
		return failureStyle.Render(m.err)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	case m.state.Status == diagram.StatusSucceeded:
		return successStyle.Render("Diagram generated")
	}
	return ""
}

func (m Model) renderViewer() string {
	t := m.state.Transform
	lines := []string{
		fmt.Sprintf("zoom %.2fx   pan (%.0f, %.0f)", t.Scale, t.TranslateX, t.TranslateY),
	}
	switch {
	case m.generating:
		lines = append(lines, mutedStyle.Render("loading"))
	case m.state.Display == viewer.DisplayImageError:
		lines = append(lines, failureStyle.Render("image could not be loaded: "+m.state.ImageError))
	case m.url != "":
		lines = append(lines, m.url)
	default:
		lines = append(lines, mutedStyle.Render("No diagram available"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) help() string {
	if m.input.Focused() {
		return "ctrl+g generate • tab diagram type • esc viewer keys • ctrl+c quit"
	}
	return "+/- zoom • 0 reset • arrows pan • i edit description • ctrl+g generate • q quit"
}
