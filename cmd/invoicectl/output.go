package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmerrifield20/invoicehub/pkg/client"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printInvoices(out io.Writer, invoices []client.Invoice) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tISSUED\tDUE\tSELLER\tBUYER\tPRODUCT\tPRICE")
	for _, inv := range invoices {
		product := inv.Product
		if inv.Hidden {
			product += " (deleted)"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.InvoiceNumber, inv.Issued, inv.DueDate,
			inv.Seller.Name, inv.Buyer.Name, product, inv.Price.StringFixed(2))
	}
	return w.Flush()
}

func printPersons(out io.Writer, persons []client.Person) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tICO\tCITY\tCOUNTRY")
	for _, p := range persons {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.IdentificationNumber, p.City, p.Country)
	}
	return w.Flush()
}

func printPersonStats(out io.Writer, stats []client.PersonStatistics) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREVENUE")
	for _, s := range stats {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.PersonID, s.PersonName, s.Revenue.StringFixed(2))
	}
	return w.Flush()
}

func printTurnover(out io.Writer, months []client.MonthlyTurnover) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tTURNOVER")
	for _, m := range months {
		fmt.Fprintf(w, "%s\t%s\n", m.Month, m.Turnover.StringFixed(2))
	}
	return w.Flush()
}
