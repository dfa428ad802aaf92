package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/njchilds90/gonewton"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#2C4A54")
	colorOK     = lipgloss.Color("#2CD7C7")
	colorError  = lipgloss.Color("#E74C3C")
)

var styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Header:  lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Bold(true).Foreground(colorOK),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
}

// printer styles output only when it goes to a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return printer{w: w, color: color}
}

func (p printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p printer) println(a ...any) { fmt.Fprintln(p.w, a...) }

func num(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }

var stepColumns = []string{"n", "x_n", "f(x_n)", "f'(x_n)", "x_n+1", "|x_n+1 - x_n|"}

// stepTable lays the trace out in aligned columns.
func (p printer) stepTable(steps []gonewton.Step) string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, []string{
			strconv.Itoa(s.Iteration), num(s.X), num(s.FX), num(s.DFX), num(s.Next), num(s.Error),
		})
	}
	widths := make([]int, len(stepColumns))
	for i, h := range stepColumns {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	line := func(cells []string, st *lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%*s", widths[i], cell)
		}
		text := strings.Join(parts, "  ")
		if st != nil {
			text = p.style(*st, text)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	line(stepColumns, &styles.Header)
	for _, r := range rows {
		line(r, nil)
	}
	return b.String()
}

func (p printer) result(fn string, resp *gonewton.Response) {
	p.println(p.style(styles.Title, "Newton-Raphson: f(x) = "+fn))
	p.println(p.style(styles.Muted, "f(x)  = "+resp.FunctionLaTeX))
	p.println(p.style(styles.Muted, "f'(x) = "+resp.DerivativeLaTeX))
	p.println()
	fmt.Fprint(p.w, p.stepTable(resp.Steps))
	p.println()
	summary := fmt.Sprintf("root x = %s after %d iterations (epsilon %s)",
		num(float64(resp.Solution)), resp.Iterations, num(resp.Epsilon))
	if p.color {
		summary = styles.Box.Render(styles.Success.Render(summary))
	}
	p.println(summary)
}

func (p printer) failure(f *gonewton.Failure) {
	p.println(p.style(styles.Error, f.Status().String()+": "+f.Reason))
}
