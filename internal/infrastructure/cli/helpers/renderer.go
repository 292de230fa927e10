// Package helpers holds terminal output helpers shared by the commands.
package helpers

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/gitscribe-go/internal/domain"
)

// Renderer writes styled status lines. Styling follows the color profile of
// out, so redirected output stays plain.
type Renderer struct {
	out     io.Writer
	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
}

// NewRenderer builds a renderer on out.
func NewRenderer(out io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(out)
	return &Renderer{
		out:     out,
		ok:      lr.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:    lr.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		err:     lr.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		heading: lr.NewStyle().Bold(true).Underline(true),
		dim:     lr.NewStyle().Faint(true),
	}
}

// Success prints a confirmation line.
func (r *Renderer) Success(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "%s %s\n", r.ok.Render("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (r *Renderer) Warn(format string, args ...interface{}) {
	fmt.Fprintf(r.out, "%s %s\n", r.warn.Render("!"), fmt.Sprintf(format, args...))
}

// Heading prints a section title.
func (r *Renderer) Heading(title string) {
	fmt.Fprintln(r.out, r.heading.Render(title))
}

// Dim prints secondary information.
func (r *Renderer) Dim(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.dim.Render(fmt.Sprintf(format, args...)))
}

// HealthReport prints one line per doctor check.
func (r *Renderer) HealthReport(report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(r.out, "%s %-18s %s\n", r.statusLabel(check.Status), check.Name, check.Details)
	}
}

func (r *Renderer) statusLabel(status domain.HealthStatus) string {
	label := fmt.Sprintf("%-7s", fmt.Sprintf("[%s]", strings.ToUpper(string(status))))
	switch status {
	case domain.HealthOK:
		return r.ok.Render(label)
	case domain.HealthWarn:
		return r.warn.Render(label)
	default:
		return r.err.Render(label)
	}
}
