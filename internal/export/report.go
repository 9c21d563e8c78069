// Package export renders experiment results as markdown, HTML, and xlsx.
package export

import (
	"fmt"
	"strings"
	"time"

	"driftlab/domain/experiment"
	"driftlab/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ExperimentReport pairs an experiment header with its statistical analysis.
type ExperimentReport struct {
	Experiment *experiment.Experiment
	Analysis   report.PairAnalysis
}

// Markdown renders a full statistical report over a set of experiments.
func Markdown(reports []ExperimentReport, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Divergence Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Experiments analyzed: %d\n\n", len(reports))

	if len(reports) == 0 {
		b.WriteString("No experiments recorded.\n")
		return b.String()
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Experiment | Passage | Model | Control mean | Modified mean | p-value | Effect |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "| %s | %s | %s | %.4f | %.4f | %.4g | %s |\n",
			r.Experiment.Label,
			r.Experiment.PassageKey,
			r.Experiment.Model,
			r.Analysis.Control.Mean,
			r.Analysis.Modified.Mean,
			r.Analysis.Test.PValue,
			r.Analysis.Test.EffectLabel,
		)
	}
	b.WriteString("\n")

	for _, r := range reports {
		writeExperimentSection(&b, r)
	}

	return b.String()
}

func writeExperimentSection(b *strings.Builder, r ExperimentReport) {
	fmt.Fprintf(b, "## %s\n\n", r.Experiment.Label)
	fmt.Fprintf(b, "Passage `%s`, model `%s`, perturbation `%s` (magnitude %.2f).\n\n",
		r.Experiment.PassageKey, r.Experiment.Model, r.Experiment.ActionType, r.Experiment.Magnitude)

	writeGroup(b, "Control", r.Analysis.Control)
	writeGroup(b, "Modified", r.Analysis.Modified)

	t := r.Analysis.Test
	df := t.GroupA.N + t.GroupB.N - 2
	fmt.Fprintf(b, "- t(%d) = %.3f, p = %.4g, Cohen's d = %.3f (%s)\n",
		df, t.TStatistic, t.PValue, t.CohensD, t.EffectLabel)
	fmt.Fprintf(b, "- Bootstrap difference: %.4f [%.4f, %.4f] (%d resamples)\n",
		r.Analysis.Difference.Estimate,
		r.Analysis.Difference.CILower,
		r.Analysis.Difference.CIUpper,
		r.Analysis.Difference.Resamples)
	fmt.Fprintf(b, "\n%s\n\n", r.Analysis.Interpretation)
}

func writeGroup(b *strings.Builder, name string, g report.GroupSummary) {
	fmt.Fprintf(b, "- %s: mean %.4f [%.4f, %.4f], n = %d\n", name, g.Mean, g.CILower, g.CIUpper, g.N)
}

// HTML renders a markdown report into a standalone HTML document.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML([]byte(md), p, renderer)
}
