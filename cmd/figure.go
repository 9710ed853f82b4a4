package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/experiment"
	"github.com/vast-sim/sps-sim/sim/figure"
	"github.com/vast-sim/sps-sim/sim/wire"
)

var (
	figureNodes int     // Number of nodes in the drawn world
	figureWidth float64 // World width and height
	figureOut   string  // SVG output path
)

// figureCmd draws one publication from the world centre as an SVG
var figureCmd = &cobra.Command{
	Use:   "figure",
	Short: "Draw a single publication and the subscriptions it reaches",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := experiment.DefaultConfig(figureNodes)
		cfg.Width = figureWidth
		cfg.Seed = seed
		cfg.Partitioner = experiment.Partitioner(partitioner)

		w, err := experiment.NewWorld(cfg)
		if err != nil {
			logrus.Fatalf("Failed to build world: %v", err)
		}
		pub, err := w.PublishAt(cfg.Width/2, cfg.Width/2)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Publication from node %d reached %d subscriptions (outbound %d bytes, inbound %d bytes per delivery)",
			pub.Result.Sender, pub.Result.MessagesDispatched,
			len(wire.EncodePublication(pub.Event.Region, pub.Event.Channel, pub.Payload)),
			len(wire.EncodeDelivery(pub.Payload)))

		if err := writeFigure(figureOut, w, pub); err != nil {
			logrus.Fatalf("Failed to write figure: %v", err)
		}
		logrus.Infof("Figure written to %s", figureOut)
	},
}

func writeFigure(path string, w *experiment.World, pub experiment.Publication) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	classified := sim.Classify(w.Registry, w.Partition, pub.Result)
	if err := figure.Render(f, w.Partition, classified, pub.Event.Region, figure.DefaultOptions()); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	figureCmd.Flags().IntVar(&figureNodes, "nodes", 30, "Number of nodes")
	figureCmd.Flags().Float64Var(&figureWidth, "width", experiment.DefaultWidth, "World width and height")
	figureCmd.Flags().StringVar(&figureOut, "out", "environment.svg", "SVG output path")
	addSharedFlags(figureCmd)
}
