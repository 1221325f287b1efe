package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mmiosim/nrf52"
	"github.com/sarchlab/mmiosim/nrf52/clock"
	"github.com/sarchlab/mmiosim/regspace"
	"github.com/sarchlab/mmiosim/simulation"
)

func newClockCmd() *cobra.Command {
	clockCmd := &cobra.Command{
		Use:   "clock",
		Short: "Bring up the low-frequency clock on a simulated nRF52.",
		Long: "`clock --source xtal` requests the low-frequency clock, " +
			"handles the LFCLKSTARTED interrupt and prints the register " +
			"journal.",
		Args: cobra.NoArgs,
		RunE: runClock,
	}

	clockCmd.Flags().String("source", "xtal", "Clock source: rc, xtal or synth")
	clockCmd.Flags().String("db", "",
		"Record accesses into this database (without .sqlite3)")
	clockCmd.Flags().Bool("monitor", false,
		"Serve the simulation over HTTP until interrupted")
	clockCmd.Flags().Int("port", 0, "Port of the monitoring server")
	clockCmd.Flags().Bool("browser", false, "Open the monitoring dashboard")

	return clockCmd
}

func runClock(cmd *cobra.Command, _ []string) error {
	srcName, _ := cmd.Flags().GetString("source")

	src, err := clock.ParseSource(srcName)
	if err != nil {
		return err
	}

	sim, err := buildSimulation(cmd)
	if err != nil {
		return err
	}

	defer func() {
		if err := sim.Terminate(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close recorder: %v\n", err)
		}
	}()

	err = sim.Bind(func(s *regspace.Space) error {
		_, err := clock.Simulate(s)
		return err
	})
	if err != nil {
		return err
	}

	clk := clock.New(sim.Space(), nil)

	err = sim.RegisterPeripheral(clk.Peripheral)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	err = clk.AddEventHandler(clock.EventLFCLKStarted, func(int) {
		fmt.Fprintf(out, "LFCLK started from %s\n", clk.LFSource())
	}, 0)
	if err != nil {
		return err
	}

	clk.EnableInterrupts(1 << clock.EventLFCLKStarted)

	err = clk.Request(src)
	if err != nil {
		return err
	}

	sim.VectorTable().Dispatch(nrf52.PowerClockIRQ)

	err = sim.Space().PrintJournal(out)
	if err != nil {
		return err
	}

	if sim.GetMonitor() == nil {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = sim.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func buildSimulation(cmd *cobra.Command) (*simulation.Simulation, error) {
	b := simulation.MakeBuilder()

	db := stringFromEnv(cmd, "db", EnvDB)
	if db == "" {
		b = b.WithoutRecording()
	} else {
		b = b.WithOutputFileName(db)
	}

	monitor, _ := cmd.Flags().GetBool("monitor")
	if !monitor {
		return b.WithoutMonitoring().Build(), nil
	}

	port, err := intFromEnv(cmd, "port", EnvMonitorPort)
	if err != nil {
		return nil, err
	}

	if port > 0 {
		b = b.WithMonitorPort(port)
	}

	if browser, _ := cmd.Flags().GetBool("browser"); browser {
		b = b.WithBrowser()
	}

	return b.Build(), nil
}
