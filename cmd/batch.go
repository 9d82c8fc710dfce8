package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/risk-cli/internal/engine"
	"github.com/sells-group/risk-cli/internal/escalate"
	"github.com/sells-group/risk-cli/internal/model"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate a CSV of client case rows",
	Long: `Evaluate many client files in one run. Each row is an independent
snapshot evaluated on its own; rows that trigger the escalation gate are
marked pending unless --acknowledge-all is set.

Input columns:
  evaluation_date,client,service,amount,nature_text,client_area,destination_area

Examples:
  batch -f cases.csv -o results.csv
  batch -f cases.csv --acknowledge-all`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringP("file", "f", "", "input CSV path")
	f.StringP("output", "o", "", "results CSV path (default: stdout)")
	f.Bool("acknowledge-all", false, "acknowledge escalation for every high-risk row")
	_ = batchCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(batchCmd)
}

// batchRow is one evaluated row of the run.
type batchRow struct {
	client string
	result model.EvaluationResult
	status string
	err    error
}

func runBatch(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	ackAll, _ := cmd.Flags().GetBool("acknowledge-all")

	runID := uuid.New()
	log := zap.L().With(zap.String("run_id", runID.String()))

	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return eris.Wrap(err, "batch: read input")
	}
	if len(records) < 2 {
		return eris.New("batch: input has no data rows")
	}
	records = records[1:] // header

	eng := engine.New(ref, nil, nil)
	rows := make([]batchRow, len(records))

	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Batch.MaxConcurrent)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			rows[i] = evaluateRow(eng, rec, ackAll)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output != "" {
		of, err := os.Create(output)
		if err != nil {
			return eris.Wrap(err, "batch: create output")
		}
		defer of.Close()
		out = of
	}

	w := csv.NewWriter(out)
	_ = w.Write([]string{"client", "total_a", "total_b", "specific_risk", "inherent_risk", "weighted_sum", "band", "status"})
	for _, row := range rows {
		if row.err != nil {
			_ = w.Write([]string{row.client, "", "", "", "", "", "", "error: " + row.err.Error()})
			continue
		}
		r := row.result
		_ = w.Write([]string{
			r.Client,
			fmt.Sprintf("%.2f", r.TotalA),
			fmt.Sprintf("%.2f", r.TotalB),
			fmt.Sprintf("%.2f", r.SpecificRisk),
			strconv.Itoa(int(r.InherentRisk)),
			fmt.Sprintf("%.2f", r.WeightedSum),
			string(r.Band),
			row.status,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "batch: write output")
	}

	log.Info("batch: run complete", zap.Int("rows", len(rows)))
	return nil
}

// evaluateRow runs one row on its own inputs snapshot.
func evaluateRow(eng *engine.Engine, rec []string, ackAll bool) batchRow {
	in, err := rowToInputs(rec)
	if err != nil {
		return batchRow{client: in.Client, err: err}
	}

	outcome, err := eng.Evaluate(in)
	if err != nil {
		return batchRow{client: in.Client, err: err}
	}

	status := "final"
	if outcome.Gate().State() == escalate.PendingAcknowledgement {
		if ackAll {
			if _, err := outcome.Resolve(escalate.Acknowledge); err != nil {
				return batchRow{client: in.Client, err: err}
			}
			status = "acknowledged"
		} else {
			status = "pending_acknowledgement"
		}
	}

	return batchRow{client: in.Client, result: outcome.Result(), status: status}
}

func rowToInputs(rec []string) (model.EvaluationInputs, error) {
	if len(rec) < 7 {
		return model.EvaluationInputs{}, eris.Errorf("batch: row has %d columns, want 7", len(rec))
	}
	in := model.EvaluationInputs{
		EvaluationDate:  rec[0],
		Client:          rec[1],
		Service:         rec[2],
		NatureText:      rec[4],
		ClientArea:      rec[5],
		DestinationArea: rec[6],
	}
	amount, err := parseAmount(rec[3])
	if err != nil {
		return in, err
	}
	in.Amount = amount
	return in, nil
}
