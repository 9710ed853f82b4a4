package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vast-sim/sps-sim/sim/experiment"
)

var (
	reportResultsDir string // Campaign results root to summarise
	reportRunDir     string // Single run directory to inspect
)

// reportCmd prints per-node-count traffic distributions of a campaign
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise a campaign's results per node count",
	Run: func(cmd *cobra.Command, args []string) {
		if reportRunDir != "" {
			if err := reportRun(cmd.OutOrStdout(), reportRunDir); err != nil {
				logrus.Fatalf("Failed to report run: %v", err)
			}
			return
		}

		envCfg, err := parseEnv()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		dir := resolveString(cmd, "results", reportResultsDir, envCfg.ResultsDir)
		path := filepath.Join(dir, experiment.ResultsFile)

		idx, err := experiment.LoadIndex(path)
		if err != nil {
			logrus.Fatalf("Failed to load campaign index: %v", err)
		}
		if len(idx) == 0 {
			logrus.Warnf("No runs recorded in %s", path)
			return
		}
		if err := writeReport(cmd.OutOrStdout(), experiment.Report(idx)); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
	},
}

// writeReport prints one row per node count with mean and tail byte costs.
func writeReport(w io.Writer, rows []experiment.ReportRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NODES\tRUNS\tSPS MEAN\tSPS P95\tDIRECT MEAN\tDIRECT P95\tSPS MSGS\tDIRECT MSGS\tSAVINGS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f%%\n",
			r.Nodes, r.SPSBytes.Count,
			r.SPSBytes.Mean, r.SPSBytes.P95,
			r.DirectBytes.Mean, r.DirectBytes.P95,
			r.SPSMessages.Mean, r.DirectMessages.Mean,
			100*r.Savings())
	}
	return tw.Flush()
}

// reportRun prints the stats of one run directory. When the run was traced
// the stats are recomputed from simulation.json and must match results.json.
func reportRun(w io.Writer, dir string) error {
	run, err := experiment.ReadRun(dir)
	if err != nil {
		return err
	}
	stats := run.Stats
	if run.Traced() {
		recomputed := run.Resummarize(run.DirectPacketSize())
		if recomputed != run.Stats {
			return fmt.Errorf("%s disagrees with %s: %s vs %s", experiment.SimulationFile, experiment.ResultsFile,
				experiment.ComparisonLine(recomputed), experiment.ComparisonLine(run.Stats))
		}
		logrus.Infof("Verified %d publication records against %s", len(run.Publications), experiment.ResultsFile)
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	fmt.Fprintln(w, string(data))
	logrus.Infof("%s: %s", dir, experiment.ComparisonLine(stats))
	return nil
}

func init() {
	reportCmd.Flags().StringVar(&reportRunDir, "run", "", "Report a single run directory instead of a campaign")
	reportCmd.Flags().StringVar(&reportResultsDir, "results", "./simulation", "Campaign results directory (env SPSSIM_RESULTS_DIR)")
}
