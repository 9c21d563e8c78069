package export

import (
	"sort"

	"driftlab/domain/experiment"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes one experiment's trials to an xlsx file: a Trials
// sheet with one row per trial and one column per metric, plus a Summary
// sheet with the analysis headline.
func WriteWorkbook(path string, rep ExperimentReport, trials []*experiment.Trial) error {
	f := excelize.NewFile()

	sheet := "Trials"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headers := append([]string{"trial_id", "group", "total_tokens"}, metricColumns(trials)...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, trial := range trials {
		rowIdx := r + 2
		row := []interface{}{trial.ID.String(), string(trial.Group), trial.TotalTokens}
		for _, name := range headers[3:] {
			row = append(row, trial.Scores[name])
		}
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := writeSummarySheet(f, rep); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, rep ExperimentReport) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"label", rep.Experiment.Label},
		{"passage", rep.Experiment.PassageKey.String()},
		{"model", rep.Experiment.Model},
		{"perturbation", rep.Experiment.ActionType},
		{"magnitude", rep.Experiment.Magnitude},
		{"control_mean", rep.Analysis.Control.Mean},
		{"modified_mean", rep.Analysis.Modified.Mean},
		{"t_statistic", rep.Analysis.Test.TStatistic},
		{"p_value", rep.Analysis.Test.PValue},
		{"cohens_d", rep.Analysis.Test.CohensD},
		{"effect", string(rep.Analysis.Test.EffectLabel)},
		{"significant", rep.Analysis.Test.Significant},
		{"interpretation", rep.Analysis.Interpretation},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// metricColumns returns the union of metric names across trials, sorted
// for a stable column order.
func metricColumns(trials []*experiment.Trial) []string {
	seen := map[string]bool{}
	for _, t := range trials {
		for name := range t.Scores {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
