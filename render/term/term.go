// Package term renders goform controls as styled terminal text.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reoring/goform/control"
)

// Catppuccin Mocha subset, shared with the rest of our terminal tooling.
const (
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorRed      lipgloss.Color = "#f38ba8"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorPeach    lipgloss.Color = "#fab387"
)

// Renderer writes one block per control to w. It implements control.Renderer.
type Renderer struct {
	w     io.Writer
	width int

	label    lipgloss.Style
	value    lipgloss.Style
	choice   lipgloss.Style
	muted    lipgloss.Style
	errStyle lipgloss.Style
	slot     lipgloss.Style
	active   lipgloss.Style
	button   lipgloss.Style
	busy     lipgloss.Style
	legend   lipgloss.Style
	fieldset lipgloss.Style
}

// Option tunes a Renderer.
type Option func(*Renderer)

// WithWidth sets the width of text boxes (default 32).
func WithWidth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.width = n
		}
	}
}

// New builds a renderer whose color profile follows w.
func New(w io.Writer, opts ...Option) *Renderer {
	lr := lipgloss.NewRenderer(w)
	r := &Renderer{w: w, width: 32}
	for _, o := range opts {
		o(r)
	}
	r.label = lr.NewStyle().Foreground(colorSubtext0)
	r.value = lr.NewStyle().Foreground(colorText).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorSurface1).Width(r.width)
	r.choice = lr.NewStyle().Foreground(colorText)
	r.muted = lr.NewStyle().Foreground(colorOverlay1)
	r.errStyle = lr.NewStyle().Foreground(colorRed)
	r.slot = lr.NewStyle().Foreground(colorText).Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSurface1).Padding(0, 1)
	r.active = r.slot.BorderForeground(colorLavender)
	r.button = lr.NewStyle().Foreground(colorBlue).Bold(true).
		Border(lipgloss.RoundedBorder()).BorderForeground(colorBlue).Padding(0, 2)
	r.busy = r.button.Foreground(colorPeach).BorderForeground(colorPeach)
	r.legend = lr.NewStyle().Foreground(colorLavender).Bold(true)
	r.fieldset = lr.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(colorSurface1).Foreground(colorGreen)
	return r
}

func (r *Renderer) line(s string) error {
	_, err := fmt.Fprintln(r.w, s)
	return err
}

func (r *Renderer) withError(block, msg string) error {
	if msg != "" {
		block = lipgloss.JoinVertical(lipgloss.Left, block, r.errStyle.Render("! "+msg))
	}
	return r.line(block)
}

func (r *Renderer) TextInput(v control.TextView) error {
	shown := v.Value
	switch {
	case v.Type == "password" && shown != "":
		shown = strings.Repeat("•", len([]rune(shown)))
	case shown == "":
		shown = r.muted.Render(v.Placeholder)
	}
	block := lipgloss.JoinVertical(lipgloss.Left, r.label.Render(v.Name), r.value.Render(shown))
	return r.withError(block, v.Error)
}

func (r *Renderer) ChoiceInput(v control.ChoiceView) error {
	mark := "[ ]"
	if v.Type == control.Radio {
		mark = "( )"
	}
	if v.Checked {
		mark = mark[:1] + "x" + mark[2:]
	}
	text := v.Label
	if text == "" {
		text = v.Name
	}
	return r.withError(r.choice.Render(mark+" "+text), v.Error)
}

func (r *Renderer) OTPInput(v control.OTPView) error {
	cells := make([]string, len(v.Slots))
	for i, s := range v.Slots {
		ch := s.Char
		if ch == "" {
			ch = " "
		}
		if s.Active {
			cells[i] = r.active.Render(ch)
		} else {
			cells[i] = r.slot.Render(ch)
		}
	}
	block := lipgloss.JoinVertical(lipgloss.Left,
		r.label.Render(v.Name),
		lipgloss.JoinHorizontal(lipgloss.Top, cells...),
	)
	return r.withError(block, v.Error)
}

func (r *Renderer) ErrorField(v control.ErrorView) error {
	if v.Message == "" {
		return nil
	}
	return r.line(r.errStyle.Render(v.Message))
}

func (r *Renderer) SubmitButton(v control.ButtonView) error {
	switch {
	case v.Loading:
		return r.line(r.busy.Render("… " + v.Label))
	case v.Disabled:
		return r.line(r.button.Foreground(colorOverlay1).BorderForeground(colorOverlay1).Render(v.Label))
	default:
		return r.line(r.button.Render(v.Label))
	}
}

func (r *Renderer) Label(v control.ControlView) error {
	return r.withError(r.label.Render(v.Text), v.Error)
}

func (r *Renderer) Legend(v control.ControlView) error {
	return r.line(r.legend.Render(v.Text))
}

func (r *Renderer) Fieldset(v control.ControlView) error {
	return r.line(r.fieldset.Width(r.width).Render(v.Text))
}

var _ control.Renderer = (*Renderer)(nil)
