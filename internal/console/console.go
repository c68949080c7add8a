// Package console renders human-facing progress lines for the CLI. Everything
// here is presentation; pipeline state lives with the writer and the store.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/Kjdragan/document-writer/internal/document"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	approveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	adviseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	pathStyle    = lipgloss.NewStyle().Underline(true)
)

// Reporter writes styled status lines to a single output stream.
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Banner marks the start of a pipeline stage, optionally naming its subject.
func (r *Reporter) Banner(stage, subject string) {
	if subject != "" {
		fmt.Fprintf(r.out, "\n%s %s\n", bannerStyle.Render("==> "+stage+":"), subject)
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", bannerStyle.Render("==> "+stage))
}

// Document prints a one-line summary of the current document state.
func (r *Reporter) Document(doc document.State) {
	fmt.Fprintf(r.out, "%s\n", detailStyle.Render(fmt.Sprintf(
		"version %d | topics %d | sources %d | %d chars",
		doc.Version, len(doc.Topics), len(doc.Sources), len(doc.Content))))
}

// Detail prints a dimmed informational line.
func (r *Reporter) Detail(format string, args ...any) {
	fmt.Fprintf(r.out, "%s\n", detailStyle.Render(fmt.Sprintf(format, args...)))
}

// Prompt writes an input prompt without a trailing newline.
func (r *Reporter) Prompt(text string) {
	fmt.Fprintf(r.out, "%s ", adviseStyle.Render(text))
}

// Approved reports a successful refinement.
func (r *Reporter) Approved(doc document.State) {
	fmt.Fprintf(r.out, "%s\n", approveStyle.Render("Document approved"))
	r.Document(doc)
}

// BoundReached reports an exhausted refinement bound, listing the judge's
// last recommendations so the user can act on them.
func (r *Reporter) BoundReached(iterations int, recommendations []string) {
	fmt.Fprintf(r.out, "%s\n", adviseStyle.Render(
		fmt.Sprintf("Not approved after %d iterations", iterations)))
	r.Recommendations(recommendations)
}

// Recommendations prints reviewer notes as a bullet list.
func (r *Reporter) Recommendations(recs []string) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintf(r.out, "%s\n", detailStyle.Render("Reviewer recommendations:"))
	for _, rec := range recs {
		fmt.Fprintf(r.out, "  %s %s\n", adviseStyle.Render("-"), rec)
	}
}

// Saved reports a written artifact path.
func (r *Reporter) Saved(label, path string) {
	fmt.Fprintf(r.out, "%s %s\n", detailStyle.Render(label+":"), pathStyle.Render(path))
}

// Failf prints an error line.
func (r *Reporter) Failf(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", failStyle.Render("error:"), fmt.Sprintf(format, args...))
}
