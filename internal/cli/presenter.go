package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dramco-iot/mme1536/internal/config"
	apperrors "github.com/dramco-iot/mme1536/internal/errors"
	"github.com/dramco-iot/mme1536/internal/sysmon"
)

// Styles bundles the lipgloss styles used for run output.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Warn  lipgloss.Style
	Dim   lipgloss.Style
}

// DefaultStyles returns the standard palette. Respects the NO_COLOR
// environment variable (https://no-color.org/).
func DefaultStyles() Styles {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return Styles{}
	}
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C00")),
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0")),
		Pass:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ece6a")),
		Fail:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4444")),
		Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// Presenter writes run progress, operand dumps and the final verdict.
type Presenter struct {
	out     io.Writer
	styles  Styles
	quiet   bool
	verbose bool
	spin    Spinner
}

// NewPresenter creates a presenter for the given output. In quiet mode all
// output but the verdict line is suppressed and no spinner is shown.
func NewPresenter(out io.Writer, quiet, verbose bool) *Presenter {
	var spin Spinner = nopSpinner{}
	if !quiet && out == os.Stdout {
		spin = newSpinner()
	}
	return &Presenter{
		out:     out,
		styles:  DefaultStyles(),
		quiet:   quiet,
		verbose: verbose,
		spin:    spin,
	}
}

// RunHeader announces the run configuration.
func (p *Presenter) RunHeader(cfg config.AppConfig) {
	if p.quiet {
		return
	}
	target := "hardware"
	if cfg.Sim {
		target = "software model"
	}
	fmt.Fprintln(p.out, p.styles.Title.Render("mont_mult1536 accelerator test"))
	fmt.Fprintf(p.out, "%s %s on %s\n",
		p.styles.Label.Render("operation:"),
		p.styles.Value.Render(cfg.Operation),
		p.styles.Value.Render(target))
	fmt.Fprintf(p.out, "%s %d-bit operands, %d-bit exponents, %d vector(s)\n",
		p.styles.Label.Render("geometry: "), cfg.Bits, cfg.ExpBits, cfg.Iterations)
}

// StartVector starts the spinner for one test vector.
func (p *Presenter) StartVector(i, total int) {
	p.spin.UpdateSuffix(fmt.Sprintf(" vector %d/%d", i+1, total))
	p.spin.Start()
}

// VectorDone stops the spinner and reports one vector's outcome.
func (p *Presenter) VectorDone(i int, d time.Duration, ok bool) {
	p.spin.Stop()
	if p.quiet {
		return
	}
	verdict := p.styles.Pass.Render("ok")
	if !ok {
		verdict = p.styles.Fail.Render("MISMATCH")
	}
	fmt.Fprintf(p.out, "  vector %d: %s %s\n",
		i+1, verdict, p.styles.Dim.Render("("+FormatExecutionDuration(d)+")"))
}

// Operand prints one named operand in verbose mode, truncated for width.
func (p *Presenter) Operand(name, hex string) {
	if p.quiet || !p.verbose {
		return
	}
	fmt.Fprintf(p.out, "    %s %s\n", p.styles.Label.Render(name+" ="), TruncateHex(hex))
}

// Mismatch dumps the diverging values. Printed regardless of verbosity;
// a mismatch is the one thing this tool exists to show.
func (p *Presenter) Mismatch(got, want string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "    %s %s\n", p.styles.Fail.Render("hardware:"), TruncateHex(got))
	fmt.Fprintf(p.out, "    %s %s\n", p.styles.Fail.Render("expected:"), TruncateHex(want))
}

// Summary prints the final verdict and, in verbose mode, host pressure
// figures for the run.
func (p *Presenter) Summary(passed, failed int, elapsed time.Duration, host sysmon.Stats) {
	if p.quiet {
		if failed > 0 {
			fmt.Fprintln(p.out, "FAIL")
		} else {
			fmt.Fprintln(p.out, "PASS")
		}
		return
	}

	fmt.Fprintln(p.out)
	if failed > 0 {
		fmt.Fprintf(p.out, "%s %d of %d vector(s) failed in %s\n",
			p.styles.Fail.Render("FAIL:"), failed, passed+failed, FormatExecutionDuration(elapsed))
	} else {
		fmt.Fprintf(p.out, "%s %d vector(s) in %s\n",
			p.styles.Pass.Render("PASS:"), passed, FormatExecutionDuration(elapsed))
	}

	if p.verbose {
		fmt.Fprintf(p.out, "%s cpu %.1f%%, mem %.1f%%, load1 %.2f\n",
			p.styles.Dim.Render("host:"), host.CPUPercent, host.MemPercent, host.Load1)
	}
}

// Timeout reports a completion wait that ran out of budget.
func (p *Presenter) Timeout(operation string, limit time.Duration) {
	p.spin.Stop()
	if p.quiet {
		return
	}
	err := apperrors.TimeoutError{Operation: operation, Limit: limit}
	fmt.Fprintf(p.out, "  %s %v\n", p.styles.Warn.Render("timeout:"), err)
}
