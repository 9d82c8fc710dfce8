package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/risk-cli/internal/engine"
	"github.com/sells-group/risk-cli/internal/escalate"
	"github.com/sells-group/risk-cli/internal/model"
	"github.com/sells-group/risk-cli/internal/report"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the risk score of one client case file",
	Long: `Evaluate a client case file (YAML) and print the composed risk score.

When the weighted sum exceeds 3.5 the evaluation stays pending until the
enhanced due-diligence obligations are acknowledged (--acknowledge) or the
evaluation is cancelled (--abort --confirm). A pending evaluation is never
exported.

Examples:
  # Evaluate a case file
  evaluate -f case.yaml

  # Evaluate, acknowledge escalation if triggered, export the workbook
  evaluate -f case.yaml --acknowledge -o case.xlsx

  # Cancel a high-risk evaluation (requires confirmation)
  evaluate -f case.yaml --abort --confirm`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringP("file", "f", "", "case file path (YAML)")
	f.StringP("output", "o", "", "export workbook path (xlsx)")
	f.Bool("acknowledge", false, "acknowledge enhanced due-diligence obligations if escalation triggers")
	f.Bool("abort", false, "cancel a high-risk evaluation (needs --confirm)")
	f.Bool("confirm", false, "confirm the cancellation")
	f.Bool("today", false, "stamp today's date when the case file omits it")
	_ = evaluateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(evaluateCmd)
}

// caseFile is the on-disk case layout. Amount stays a string so a
// non-numeric value becomes a field-attributed validation error instead
// of a YAML type failure.
type caseFile struct {
	EvaluationDate      string                `yaml:"evaluation_date"`
	Client              string                `yaml:"client"`
	BeneficialOwner     string                `yaml:"beneficial_owner"`
	Purpose             string                `yaml:"purpose"`
	ActivityDescription string                `yaml:"activity_description"`
	Professional        string                `yaml:"professional"`
	Service             string                `yaml:"service"`
	Amount              string                `yaml:"amount"`
	AmountFlags         model.AmountFlags     `yaml:"amount_flags"`
	NatureText          string                `yaml:"nature_text"`
	NatureManualLevel   model.Level           `yaml:"nature_manual_level"`
	ClientArea          string                `yaml:"client_area"`
	DestinationArea     string                `yaml:"destination_area"`
	SectionsA           []model.ManualSection `yaml:"sections_a"`
	SectionsB           []model.ManualSection `yaml:"sections_b"`
}

// parseCaseFile decodes a case file into an evaluation snapshot.
func parseCaseFile(data []byte) (model.EvaluationInputs, error) {
	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return model.EvaluationInputs{}, eris.Wrap(err, "evaluate: parse case file")
	}

	in := model.EvaluationInputs{
		EvaluationDate:      cf.EvaluationDate,
		Client:              cf.Client,
		BeneficialOwner:     cf.BeneficialOwner,
		Purpose:             cf.Purpose,
		ActivityDescription: cf.ActivityDescription,
		Professional:        cf.Professional,
		Service:             cf.Service,
		AmountFlags:         cf.AmountFlags,
		NatureText:          cf.NatureText,
		NatureManualLevel:   cf.NatureManualLevel,
		ClientArea:          cf.ClientArea,
		DestinationArea:     cf.DestinationArea,
		SectionsA:           cf.SectionsA,
		SectionsB:           cf.SectionsB,
	}

	amount, err := parseAmount(cf.Amount)
	if err != nil {
		return model.EvaluationInputs{}, err
	}
	in.Amount = amount

	return in, nil
}

// parseAmount accepts an empty string (amount unspecified) or a decimal
// with either separator.
func parseAmount(s string) (*float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		verr := &model.ValidationError{}
		verr.Add("amount", fmt.Sprintf("non-numeric amount %q", s))
		return nil, verr
	}
	return &v, nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	acknowledge, _ := cmd.Flags().GetBool("acknowledge")
	abort, _ := cmd.Flags().GetBool("abort")
	confirm, _ := cmd.Flags().GetBool("confirm")
	today, _ := cmd.Flags().GetBool("today")

	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "evaluate: read case file")
	}

	inputs, err := parseCaseFile(data)
	if err != nil {
		return printValidation(cmd, err)
	}

	if today && inputs.EvaluationDate == "" {
		inputs.EvaluationDate = time.Now().Format("02/01/2006")
	}

	if inputs.Professional != "" && len(ref.Professionals) > 0 &&
		!slices.Contains(ref.Professionals, inputs.Professional) {
		zap.L().Warn("evaluate: professional not in firm registry",
			zap.String("professional", inputs.Professional),
		)
	}

	eng := engine.New(ref, nil, nil)
	outcome, err := eng.Evaluate(inputs)
	if err != nil {
		return printValidation(cmd, err)
	}

	printResult(cmd, outcome.Result())

	if outcome.Gate().State() == escalate.PendingAcknowledgement {
		switch {
		case acknowledge:
			if _, err := outcome.Resolve(escalate.Acknowledge); err != nil {
				return err
			}
			cmd.Println("enhanced due-diligence obligations acknowledged")
		case abort && confirm:
			if _, err := outcome.Resolve(escalate.CancelConfirmed); err != nil {
				return err
			}
			return eris.New("evaluation aborted: result discarded")
		case abort:
			// Unconfirmed cancellation is a dismissal, never an abort.
			_, _ = outcome.Resolve(escalate.Dismiss)
			return eris.New("cancellation requires --confirm; evaluation still pending")
		default:
			return eris.New("weighted sum above 3.5: acknowledge with --acknowledge or cancel with --abort --confirm")
		}
	}

	final, err := outcome.Final()
	if err != nil {
		return err
	}

	if output != "" {
		if err := report.Write(final, output); err != nil {
			return err
		}
		cmd.Printf("workbook written to %s\n", output)
	}

	return nil
}

// printValidation surfaces field-attributed validation failures line by
// line; other errors pass through.
func printValidation(cmd *cobra.Command, err error) error {
	var verr *model.ValidationError
	if eris.As(err, &verr) {
		for _, f := range verr.Fields {
			cmd.PrintErrf("invalid %s: %s\n", f.Field, f.Message)
		}
	}
	return err
}

func printResult(cmd *cobra.Command, r model.EvaluationResult) {
	cmd.Printf("Client: %s\n", r.Client)
	cmd.Printf("Service: %s (inherent risk %d)\n", r.Service, int(r.InherentRisk))

	cmd.Println("Table A:")
	for _, sec := range r.SectionsA {
		printSection(cmd, sec)
	}
	cmd.Printf("Total A: %.2f\n", r.TotalA)

	if r.TableAOnly {
		cmd.Printf("Table B: not compiled (table-A-only service)\n")
		cmd.Printf("Specific risk: %.2f / %d = %.2f\n", r.TotalA, r.CountA, r.SpecificRisk)
	} else {
		cmd.Println("Table B:")
		for _, sec := range r.SectionsB {
			printSection(cmd, sec)
		}
		cmd.Printf("Total B: %.2f\n", r.TotalB)
		cmd.Printf("Specific risk: (%.2f + %.2f) / 10 = %.2f\n", r.TotalA, r.TotalB, r.SpecificRisk)
	}

	if r.AmountDisplayLevel != model.LevelUnset && r.AmountDisplayLevel != r.AmountBaseLevel {
		cmd.Printf("Amount level with aggravating factors: %d (scored level stays %d)\n",
			int(r.AmountDisplayLevel), int(r.AmountBaseLevel))
	}
	if r.ThresholdNote != "" {
		cmd.Println(r.ThresholdNote)
	}

	cmd.Printf("Weighted sum: %.2f\n", r.WeightedSum)
	cmd.Printf("Risk band: %s\n", r.Band)
}

func printSection(cmd *cobra.Command, sec model.SectionResult) {
	if sec.Automatic {
		cmd.Printf("  %s: %s [%.0f]\n", sec.Name, sec.Value, sec.Score)
		return
	}
	cmd.Printf("  %s: %.1f\n", sec.Name, sec.Score)
}
