package formatter

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
//
// A nil *Palette renders text unstyled.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// DefaultPalette colors shared tracks green and differences red.
func DefaultPalette() *Palette {
	return NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewStyle(s),
		err:   NewStyle(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders s as a heading.
func (p *Palette) Title(s string) string {
	if p == nil {
		return s
	}
	return p.title.Render(s)
}

// OK renders s in the success color.
func (p *Palette) OK(s string) string {
	if p == nil {
		return s
	}
	return p.ok.Render(s)
}

// Err renders s in the error color.
func (p *Palette) Err(s string) string {
	if p == nil {
		return s
	}
	return p.err.Render(s)
}

func (p *Palette) Warn(s string) string {
	if p == nil {
		return s
	}
	return p.warn.Render(s)
}

func (p *Palette) Help(s string) string {
	if p == nil {
		return s
	}
	return p.help.Render(s)
}
