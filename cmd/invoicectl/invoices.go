package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmerrifield20/invoicehub/pkg/client"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:     "invoices",
	Aliases: []string{"inv"},
	Short:   "List and inspect invoices",
}

var (
	invQuery    client.InvoiceQuery
	invMinPrice string
	invMaxPrice string
)

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := invQuery
		var err error
		if q.MinPrice, err = parseOptionalDecimal("min-price", invMinPrice); err != nil {
			return err
		}
		if q.MaxPrice, err = parseOptionalDecimal("max-price", invMaxPrice); err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		invoices, err := c.ListInvoices(context.Background(), q)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), invoices)
		}
		return printInvoices(cmd.OutOrStdout(), invoices)
	},
}

var invoicesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		inv, err := c.GetInvoice(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get invoice: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), inv)
		}
		return printInvoices(cmd.OutOrStdout(), []client.Invoice{*inv})
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeleteInvoice(context.Background(), id); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %d deleted\n", id)
		return nil
	},
}

var invoicesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show invoice totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		s, err := c.InvoiceStatistics(context.Background())
		if err != nil {
			return fmt.Errorf("invoice statistics: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), s)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Current year: %s\n", s.CurrentYearSum.StringFixed(2))
		fmt.Fprintf(out, "All time:     %s\n", s.AllTimeSum.StringFixed(2))
		fmt.Fprintf(out, "Invoices:     %d\n", s.InvoicesCount)
		return nil
	},
}

var turnoverSeller, turnoverBuyer int64

var invoicesTurnoverCmd = &cobra.Command{
	Use:   "turnover",
	Short: "Show turnover per month",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		months, err := c.MonthlyTurnover(context.Background(), turnoverSeller, turnoverBuyer)
		if err != nil {
			return fmt.Errorf("monthly turnover: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), months)
		}
		return printTurnover(cmd.OutOrStdout(), months)
	},
}

func init() {
	f := invoicesListCmd.Flags()
	f.Int64Var(&invQuery.BuyerID, "buyer", 0, "Filter by buyer id")
	f.Int64Var(&invQuery.SellerID, "seller", 0, "Filter by seller id")
	f.StringVar(&invQuery.Product, "product", "", "Filter by product substring")
	f.StringVar(&invMinPrice, "min-price", "", "Minimum price")
	f.StringVar(&invMaxPrice, "max-price", "", "Maximum price")
	f.IntVar(&invQuery.Limit, "limit", 0, "Maximum number of invoices (server default when 0)")

	invoicesTurnoverCmd.Flags().Int64Var(&turnoverSeller, "seller", 0, "Only invoices issued by this seller id")
	invoicesTurnoverCmd.Flags().Int64Var(&turnoverBuyer, "buyer", 0, "Only invoices received by this buyer id")

	invoicesCmd.AddCommand(invoicesListCmd, invoicesGetCmd, invoicesDeleteCmd, invoicesStatsCmd, invoicesTurnoverCmd)
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseOptionalDecimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}
