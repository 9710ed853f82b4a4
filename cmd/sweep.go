package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vast-sim/sps-sim/sim/experiment"
)

var (
	presetName       string // Campaign preset in defaults.yaml
	defaultsFilePath string // Path to defaults.yaml
	resultsDir       string // Campaign results root
	ledgerPath       string // Optional sqlite ledger
	runs             int    // Runs override
	minNodes         int    // Smallest node count override
	maxNodes         int    // Largest node count override
)

// sweepCmd runs a resumable campaign over a range of node counts
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a campaign of simulations over a range of node counts",
	Run: func(cmd *cobra.Command, args []string) {
		envCfg, err := parseEnv()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		defaults := loadDefaultsConfig(defaultsFilePath)
		preset, err := defaults.Preset(presetName)
		if err != nil {
			logrus.Fatalf("%v (defaults file %s)", err, defaultsFilePath)
		}
		// Flags override preset values only when explicitly set.
		if cmd.Flags().Changed("runs") {
			preset.Runs = runs
		}
		if cmd.Flags().Changed("min-nodes") {
			preset.MinNodes = minNodes
		}
		if cmd.Flags().Changed("max-nodes") {
			preset.MaxNodes = maxNodes
		}

		base := experiment.DefaultConfig(0)
		defaults.Simulation.Apply(&base)
		base.Seed = seed
		base.Workers = resolveInt(cmd, "workers", workers, envCfg.Workers)
		if cmd.Flags().Changed("partition") {
			base.Partitioner = experiment.Partitioner(partitioner)
		}

		campaign := preset.Campaign(resolveString(cmd, "results", resultsDir, envCfg.ResultsDir), base)
		if ledgerPath != "" {
			ledger, err := experiment.OpenLedger(ledgerPath)
			if err != nil {
				logrus.Fatalf("Failed to open ledger: %v", err)
			}
			defer ledger.Close()
			campaign.Ledger = ledger
		}

		logrus.Infof("Starting %s campaign: %d runs, %d..%d nodes, results in %s",
			campaign.Mode, campaign.Runs, campaign.MinNodes, campaign.MaxNodes, campaign.ResultsDir)

		ctx, cancel := signalContext()
		defer cancel()
		if _, err := campaign.Execute(ctx); err != nil {
			logrus.Fatalf("Campaign failed: %v", err)
		}
		logrus.Info("Campaign complete.")
	},
}

func init() {
	sweepCmd.Flags().StringVar(&presetName, "preset", string(experiment.ModeFixedArea), "Campaign preset in the defaults file (fixed-area, fixed-density)")
	sweepCmd.Flags().StringVar(&defaultsFilePath, "config", "defaults.yaml", "Path to the defaults file")
	sweepCmd.Flags().StringVar(&resultsDir, "results", "./simulation", "Campaign results directory (env SPSSIM_RESULTS_DIR)")
	sweepCmd.Flags().StringVar(&ledgerPath, "ledger", "", "SQLite ledger of run summaries (disabled when empty)")
	sweepCmd.Flags().IntVar(&runs, "runs", 0, "Override the preset's number of runs")
	sweepCmd.Flags().IntVar(&minNodes, "min-nodes", 0, "Override the preset's smallest node count")
	sweepCmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "Override the preset's largest node count")
	addSharedFlags(sweepCmd)
}
