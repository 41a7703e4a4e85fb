package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
)

type styles struct {
	title   lipgloss.Style
	tag     lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	clarify lipgloss.Style
	meta    lipgloss.Style
	warning lipgloss.Style
}

// renderer prints pipeline results. Colors are only emitted when out is a terminal.
type renderer struct {
	out    io.Writer
	styles styles
	now    func() time.Time
}

func newRenderer(out io.Writer) *renderer {
	r := lipgloss.NewRenderer(out)
	return &renderer{
		out: out,
		styles: styles{
			title:   r.NewStyle().Bold(true),
			tag:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
			failed:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			clarify: r.NewStyle().Foreground(lipgloss.Color("214")),
			meta:    r.NewStyle().Foreground(lipgloss.Color("245")),
			warning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		},
		now: time.Now,
	}
}

// Response prints every result of a pipeline run in sub-command order.
func (r *renderer) Response(resp domain.Response) {
	if resp.Degraded != "" {
		fmt.Fprintln(r.out, r.styles.warning.Render("classifier degraded: "+resp.Degraded))
	}
	for _, res := range resp.Results {
		r.result(res)
	}
}

func (r *renderer) result(res domain.ExecutionResult) {
	label := r.styles.tag.Render("[" + string(res.SubCommand.Tag) + "]")
	header := label
	if res.SubCommand.Payload != "" {
		header += " " + res.SubCommand.Payload
	}
	if res.Action != nil && res.Action.Action != "" {
		header += r.styles.meta.Render(fmt.Sprintf(" -> %s (%.2f)", res.Action.Action, res.Action.Confidence))
	}
	fmt.Fprintln(r.out, header)

	switch res.Outcome.Status {
	case domain.StatusSuccess:
		fmt.Fprintln(r.out, indent(r.styles.ok.Render(res.Outcome.Output)))
	case domain.StatusClarification:
		fmt.Fprintln(r.out, indent(r.styles.clarify.Render(domain.ClarificationPrompt)))
		if res.Outcome.Message != "" && res.Outcome.Message != domain.ClarificationPrompt {
			fmt.Fprintln(r.out, indent(r.styles.meta.Render(res.Outcome.Message)))
		}
	default:
		fmt.Fprintln(r.out, indent(r.styles.failed.Render(fmt.Sprintf("%s: %s", res.Outcome.Kind, res.Outcome.Message))))
	}
}

// Classification prints tier-1 output, one sub-command per line.
func (r *renderer) Classification(c domain.Classification) {
	if c.Degraded != nil {
		fmt.Fprintln(r.out, r.styles.warning.Render("degraded: "+c.Degraded.Error()))
	}
	for i, sub := range c.SubCommands {
		fmt.Fprintf(r.out, "%d. %s %s\n", i+1, r.styles.tag.Render(string(sub.Tag)), sub.Payload)
	}
}

// Extraction prints tier-2 output.
func (r *renderer) Extraction(e domain.Extraction) {
	if e.Degraded != nil {
		fmt.Fprintln(r.out, r.styles.warning.Render("degraded: "+e.Degraded.Error()))
	}
	a := e.Action
	fmt.Fprintf(r.out, "%s %s\n", r.styles.title.Render("Action:"), a.Action)
	fmt.Fprintf(r.out, "Confidence: %.2f (%s)\n", a.Confidence, e.Source)
	if a.Interpretation != "" {
		fmt.Fprintf(r.out, "Interpretation: %s\n", a.Interpretation)
	}
	for _, key := range a.Parameters.Keys() {
		fmt.Fprintf(r.out, "  %s = %s\n", key, a.Parameters.Text(key, ""))
	}
}

// Actions prints the catalog.
func (r *renderer) Actions(specs []catalog.ActionSpec) {
	for _, spec := range specs {
		params := make([]string, 0, len(spec.Params))
		for _, p := range spec.Params {
			name := p.Name + ":" + string(p.Kind)
			if !p.Required {
				name = "[" + name + "]"
			}
			params = append(params, name)
		}
		line := fmt.Sprintf("%-20s %s", spec.ID, spec.Summary)
		fmt.Fprintln(r.out, r.styles.title.Render(line))
		if len(params) > 0 {
			fmt.Fprintln(r.out, indent(r.styles.meta.Render(strings.Join(params, " "))))
		}
	}
}

// History prints recorded entries oldest first.
func (r *renderer) History(entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(r.out, r.styles.meta.Render("history is empty"))
		return
	}
	for _, entry := range entries {
		status := r.styles.ok.Render("ok")
		if !entry.Succeeded() {
			status = r.styles.failed.Render("failed")
		}
		fmt.Fprintf(r.out, "%s  %s  %s  %s\n",
			entry.ID,
			r.styles.meta.Render(humanize.RelTime(entry.Timestamp, r.now(), "ago", "from now")),
			status,
			entry.Utterance)
	}
}

// Doctor prints a health report.
func (r *renderer) Doctor(report domain.HealthReport) {
	for _, check := range report.Checks {
		status := strings.ToUpper(string(check.Status))
		switch check.Status {
		case domain.HealthOK:
			status = r.styles.ok.Render(status)
		case domain.HealthWarn:
			status = r.styles.warning.Render(status)
		default:
			status = r.styles.failed.Render(status)
		}
		fmt.Fprintf(r.out, "[%s] %s - %s\n", status, check.Name, check.Details)
	}
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
