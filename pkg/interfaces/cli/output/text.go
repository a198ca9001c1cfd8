package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/jvalloc/pkg/application/dto"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FB950"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// generateTextOutput prints a human-readable report per run
func generateTextOutput(w io.Writer, runs []*dto.AllocationRun, config Config) error {
	for i, run := range runs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeRun(w, run, config); err != nil {
			return err
		}
	}
	return nil
}

func writeRun(w io.Writer, run *dto.AllocationRun, config Config) error {
	status := okStyle.Render(strings.ToUpper(string(run.Status)))
	if run.Status != dto.RunCompleted {
		status = failStyle.Render(strings.ToUpper(string(run.Status)))
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("📊 Allocation %s (%s)", run.ReceiptID, run.TerminalName)))

	r := run.Result
	if r == nil {
		fmt.Fprintln(w, status)
		return nil
	}

	volumePlaces := config.Engine.VolumePlaces
	summary := []string{
		fmt.Sprintf("Status:           %s", status),
		fmt.Sprintf("Run ID:           %s", run.RunID),
		fmt.Sprintf("Terminal volume:  %s bbl", r.TerminalVolume.StringFixed(volumePlaces)),
		fmt.Sprintf("Total gross:      %s bbl", r.TotalGrossVolume.StringFixed(2)),
		fmt.Sprintf("Total net:        %s bbl", r.TotalNetVolume.StringFixed(2)),
		fmt.Sprintf("Total allocated:  %s bbl", r.TotalAllocated.StringFixed(volumePlaces)),
		fmt.Sprintf("Shrinkage:        %s%%", r.ShrinkageFactor.StringFixed(2)),
		fmt.Sprintf("Efficiency:       %s%%", r.Shrinkage.EfficiencyRate.StringFixed(2)),
		fmt.Sprintf("Capping policy:   %s", r.CappingPolicy),
	}
	if config.Verbose {
		summary = append(summary, mutedStyle.Render(fmt.Sprintf("Execution time:   %v", run.ExecutionTime)))
	}
	fmt.Fprintln(w, summaryBox.Render(strings.Join(summary, "\n")))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-12s %12s %12s %14s %12s %12s %9s %9s %9s\n",
		"Partner", "Gross", "Net", "Allocated", "Share %", "Loss", "WCF", "VCF", "API")
	fmt.Fprintf(w, "%-12s %12s %12s %14s %12s %12s %9s %9s %9s\n",
		"------------", "------------", "------------", "--------------", "------------", "------------", "---------", "---------", "---------")
	for _, record := range r.Records {
		partner := string(record.Partner)
		if record.Capped {
			partner += "*"
		}
		fmt.Fprintf(w, "%-12s %12s %12s %14s %12s %12s %9.6f %9.6f %9.6f\n",
			partner,
			record.GrossVolume.StringFixed(2),
			record.NetVolume.StringFixed(2),
			record.AllocatedVolume.StringFixed(volumePlaces),
			record.Percentage.StringFixed(config.Engine.PercentagePlaces),
			record.VolumeLoss.StringFixed(volumePlaces),
			record.WaterCutFactor,
			record.TempCorrection,
			record.APICorrection)
	}
	if len(r.CappedPartners) > 0 {
		fmt.Fprintln(w, mutedStyle.Render("* share capped at "+config.Engine.MaxPercentage.String()+"%"))
	}

	if len(r.Issues) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, failStyle.Render("⚠️  Data quality"))
		for _, issue := range r.Issues {
			scope := "run"
			if issue.Partner != "" {
				scope = string(issue.Partner)
			}
			fmt.Fprintf(w, "  [%s] %s: %s\n", issue.Kind, scope, issue.Message)
		}
	}

	if !run.Validation.IsValid {
		fmt.Fprintln(w)
		fmt.Fprintln(w, failStyle.Render("Validation: "+run.Validation.Error))
	}

	return nil
}
