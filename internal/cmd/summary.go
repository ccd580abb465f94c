package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/autotax/internal/config"
	"github.com/stwalsh4118/autotax/internal/logger"
	"github.com/stwalsh4118/autotax/internal/services"
)

func newSummaryCmd() *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print every vehicle with its tax",
		Long: `Load the catalog and print each vehicle with the tax owed under the
selected discounts, followed by the most expensive vehicle, the oldest
vehicle and the average price.`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}

	flags := summaryCmd.Flags()
	flags.Bool("prompt-payment", false, "apply the prompt payment discount")
	flags.Bool("public-service", false, "apply the public service discount")
	flags.Bool("account-transfer", false, "apply the account transfer discount")

	return summaryCmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewWithWriter(cfg.Server.Env, cmd.ErrOrStderr())

	discounts, err := discountsFromFlags(cmd)
	if err != nil {
		return err
	}

	catalog, db, err := openCatalog(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	return writeSummary(cmd.OutOrStdout(), catalog, discounts)
}

func discountsFromFlags(cmd *cobra.Command) (services.Discounts, error) {
	var d services.Discounts
	var err error

	flags := cmd.Flags()
	if d.PromptPayment, err = flags.GetBool("prompt-payment"); err != nil {
		return d, err
	}
	if d.PublicService, err = flags.GetBool("public-service"); err != nil {
		return d, err
	}
	if d.AccountTransfer, err = flags.GetBool("account-transfer"); err != nil {
		return d, err
	}
	return d, nil
}

// writeSummary prints the catalog table and the aggregate lines.
// The searches move the cursor, which does not matter for a one-shot report.
func writeSummary(out io.Writer, catalog *services.TaxCatalog, d services.Discounts) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVEHICLE\tPRICE\tTAX")
	for i, v := range catalog.Vehicles() {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\n", i, v, v.Price(), catalog.ComputeTax(v, d))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	if v, ok := catalog.FindMostExpensive(); ok {
		fmt.Fprintf(out, "Most expensive: %s (%.2f)\n", v, v.Price())
	} else {
		fmt.Fprintln(out, "Most expensive: none")
	}

	v, ok, err := catalog.FindOldest()
	switch {
	case err != nil:
		fmt.Fprintf(out, "Oldest: unavailable (%v)\n", err)
	case ok:
		fmt.Fprintf(out, "Oldest: %s\n", v)
	default:
		fmt.Fprintln(out, "Oldest: none")
	}

	avg, err := catalog.AveragePrice()
	if errors.Is(err, services.ErrEmptyCatalog) {
		fmt.Fprintln(out, "Average price: none")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Average price: %.2f\n", avg)
	return nil
}
