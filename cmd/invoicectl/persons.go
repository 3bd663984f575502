package main

import (
	"context"
	"fmt"

	"github.com/jmerrifield20/invoicehub/pkg/client"
	"github.com/spf13/cobra"
)

var personsCmd = &cobra.Command{
	Use:   "persons",
	Short: "List and inspect business parties",
}

var personsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List active persons, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		var persons []client.Person
		if len(args) == 1 {
			persons, err = c.SearchPersons(context.Background(), args[0])
		} else {
			persons, err = c.ListPersons(context.Background())
		}
		if err != nil {
			return fmt.Errorf("list persons: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), persons)
		}
		return printPersons(cmd.OutOrStdout(), persons)
	},
}

var personsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show revenue per person",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		stats, err := c.PersonStatistics(context.Background())
		if err != nil {
			return fmt.Errorf("person statistics: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), stats)
		}
		return printPersonStats(cmd.OutOrStdout(), stats)
	},
}

var personsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a person",
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
		if err := c.DeletePerson(context.Background(), id); err != nil {
			return fmt.Errorf("delete person: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Person %d deleted\n", id)
		return nil
	},
}

var personsSalesCmd = &cobra.Command{
	Use:   "sales <identification-number>",
	Short: "List invoices issued by a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd, args[0], (*client.Client).Sales)
	},
}

var personsPurchasesCmd = &cobra.Command{
	Use:   "purchases <identification-number>",
	Short: "List invoices received by a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd, args[0], (*client.Client).Purchases)
	},
}

func runHistory(cmd *cobra.Command, ico string, fetch func(*client.Client, context.Context, string) ([]client.Invoice, error)) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	invoices, err := fetch(c, context.Background(), ico)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), invoices)
	}
	return printInvoices(cmd.OutOrStdout(), invoices)
}

func init() {
	personsCmd.AddCommand(personsListCmd, personsStatsCmd, personsDeleteCmd, personsSalesCmd, personsPurchasesCmd)
}
