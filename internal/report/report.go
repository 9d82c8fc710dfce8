// Package report renders a finalized evaluation into an xlsx workbook.
// It consumes an immutable EvaluationResult snapshot and has no access to
// engine state.
package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/risk-cli/internal/escalate"
	"github.com/sells-group/risk-cli/internal/model"
)

// Write saves the evaluation workbook to path. A result above the
// escalation threshold must carry an accepted declaration: unfinalized
// evaluations are refused.
func Write(result *model.EvaluationResult, path string) error {
	if result.WeightedSum > escalate.Threshold {
		if result.Escalation == nil || !result.Escalation.Accepted {
			return eris.New("report: result above escalation threshold without accepted declaration")
		}
	}

	f := xlsx.NewFile()

	if err := addProfileSheet(f, result); err != nil {
		return err
	}
	if err := addTableSheet(f, "Table A", result.SectionsA, result.TotalA); err != nil {
		return err
	}
	if !result.TableAOnly {
		if err := addTableSheet(f, "Table B", result.SectionsB, result.TotalB); err != nil {
			return err
		}
	}
	if err := addSummarySheet(f, result); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	return nil
}

func addProfileSheet(f *xlsx.File, r *model.EvaluationResult) error {
	sheet, err := f.AddSheet("Profile")
	if err != nil {
		return eris.Wrap(err, "report: add profile sheet")
	}

	addPair(sheet, "AML risk evaluation", r.Client)
	addPair(sheet, "Date", r.EvaluationDate)
	addPair(sheet, "Beneficial owner", r.BeneficialOwner)
	addPair(sheet, "Purpose of operation", r.Purpose)
	addPair(sheet, "Activity description", r.ActivityDescription)
	addPair(sheet, "Professional", r.Professional)
	addPair(sheet, "Professional service", r.Service)
	if r.Amount != nil {
		addPair(sheet, "Operation amount", fmt.Sprintf("%.2f", *r.Amount))
	} else {
		addPair(sheet, "Operation amount", "not specified")
	}
	addPair(sheet, "Inherent risk", fmt.Sprintf("%d - %s", int(r.InherentRisk), r.InherentRisk))

	if r.TableAOnly {
		addPair(sheet, "Methodological note",
			fmt.Sprintf("service %q is evaluated on table A only; table B is not compiled", r.Service))
	}
	if r.ThresholdNote != "" {
		addPair(sheet, "Threshold note", r.ThresholdNote)
	}
	return nil
}

func addTableSheet(f *xlsx.File, name string, sections []model.SectionResult, total float64) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", name)
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Section"
	header.AddCell().Value = "Matched value"
	header.AddCell().Value = "Score"

	for _, sec := range sections {
		row := sheet.AddRow()
		row.AddCell().Value = sec.Name
		row.AddCell().Value = sec.Value
		row.AddCell().SetFloatWithFormat(sec.Score, "0.0")
	}

	totalRow := sheet.AddRow()
	totalRow.AddCell().Value = "TOTAL"
	totalRow.AddCell()
	totalRow.AddCell().SetFloatWithFormat(total, "0.00")
	return nil
}

func addSummarySheet(f *xlsx.File, r *model.EvaluationResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	addPair(sheet, "Total A (client aspects)", fmt.Sprintf("%.2f", r.TotalA))
	if r.TableAOnly {
		addPair(sheet, "Total B (operation aspects)", "not compiled")
		addPair(sheet, "Specific risk = A / sections",
			fmt.Sprintf("%.2f / %d = %.2f", r.TotalA, r.CountA, r.SpecificRisk))
	} else {
		addPair(sheet, "Total B (operation aspects)", fmt.Sprintf("%.2f", r.TotalB))
		addPair(sheet, "Specific risk = (A + B) / 10",
			fmt.Sprintf("(%.2f + %.2f) / 10 = %.2f", r.TotalA, r.TotalB, r.SpecificRisk))
	}
	addPair(sheet, "Inherent risk", fmt.Sprintf("%d", int(r.InherentRisk)))
	addPair(sheet, "Weighted sum = inherent x 0.3 + specific x 0.7", fmt.Sprintf("%.2f", r.WeightedSum))
	addPair(sheet, "Risk band", string(r.Band))

	if r.AmountDisplayLevel != model.LevelUnset && r.AmountDisplayLevel != r.AmountBaseLevel {
		// Informational only: the scored total uses the base level.
		addPair(sheet, "Amount level with aggravating factors",
			fmt.Sprintf("%d (base %d)", int(r.AmountDisplayLevel), int(r.AmountBaseLevel)))
	}

	sheet.AddRow()
	addLegend(sheet)

	if r.Escalation != nil && r.Escalation.Accepted {
		sheet.AddRow()
		addPair(sheet, "PROFESSIONAL'S DECLARATION",
			fmt.Sprintf("%s declares having reviewed the enhanced due-diligence obligations for client %s",
				r.Professional, r.Client))
		addPair(sheet, "Accepted at", r.Escalation.Timestamp.Format("2006-01-02 15:04:05"))
		addPair(sheet, "Score at acceptance",
			fmt.Sprintf("%.2f - %s", r.Escalation.ScoreAtAcceptance, r.Escalation.BandAtAcceptance))
	}

	sheet.AddRow()
	addPair(sheet, "Date", r.EvaluationDate)
	addPair(sheet, "Professional", r.Professional)
	addPair(sheet, "Signature", "_______________________________")
	return nil
}

func addLegend(sheet *xlsx.Sheet) {
	addPair(sheet, "RISK BAND LEGEND", "")
	addPair(sheet, "<= 2.5", string(model.BandSimplified))
	addPair(sheet, "2.5 < x <= 3.5", string(model.BandOrdinary))
	addPair(sheet, "> 3.5", string(model.BandEnhanced))
}

func addPair(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = label
	row.AddCell().Value = value
}
