package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mmiosim/datarecording"
	"github.com/sarchlab/mmiosim/tracing"
)

func newJournalCmd() *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal <file>",
		Short: "Print the register journal recorded in a database.",
		Args:  cobra.ExactArgs(1),
		RunE:  runJournal,
	}

	journalCmd.Flags().Bool("events", false, "Also print handled events")

	return journalCmd
}

func runJournal(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	journal, err := tracing.ReadJournal(cmd.Context(), reader)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range journal {
		fmt.Fprintln(out, e)
	}

	if events, _ := cmd.Flags().GetBool("events"); !events {
		return nil
	}

	handled, err := tracing.ReadEvents(cmd.Context(), reader)
	if err != nil {
		return err
	}

	for _, e := range handled {
		fmt.Fprintf(out, "%s event %d arg %d handled %t\n",
			e.Peripheral, e.Index, e.Arg, e.Handled)
	}

	return nil
}
