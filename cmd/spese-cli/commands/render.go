package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"quickspese/internal/core"
	"quickspese/internal/services"
)

const dateLayout = "2006-01-02 15:04"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints the message of out followed by whatever it carries.
func render(w io.Writer, out services.Outcome, asJSON bool) error {
	if asJSON {
		return writeJSON(w, out)
	}
	if _, err := fmt.Fprintln(w, out.Message); err != nil {
		return err
	}
	switch out.Kind {
	case core.KindShow, core.KindTotal:
		if len(out.Expenses) > 0 {
			return renderExpenses(w, out.Expenses, false)
		}
	}
	return nil
}

func renderExpenses(w io.Writer, expenses []core.Expense, asJSON bool) error {
	if asJSON {
		if expenses == nil {
			expenses = []core.Expense{}
		}
		return writeJSON(w, expenses)
	}
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(w, "No expenses")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tAMOUNT\tID")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Date.Format(dateLayout), e.Description, e.Category,
			core.FormatMoney(e.AmountCents, e.Currency), e.ID)
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, sum core.Summary, asJSON bool) error {
	if asJSON {
		return writeJSON(w, sum)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "This month\t%s\n", core.FormatMoney(sum.MonthTotalCents, sum.Currency))
	fmt.Fprintf(tw, "All time\t%s\n", core.FormatMoney(sum.AllTimeCents, sum.Currency))
	if sum.OverallLeft != nil {
		fmt.Fprintf(tw, "Budget left\t%s\n", core.FormatMoney(*sum.OverallLeft, sum.Currency))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(sum.Budgets) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUDGET\tPERIOD\tSPENT\tLEFT\tUSED")
	for _, u := range sum.Budgets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\n",
			u.Rule.Category, u.Rule.Period,
			core.FormatMoney(u.SpentCents, u.Rule.Currency),
			core.FormatMoney(u.LeftCents, u.Rule.Currency),
			u.PercentUsed)
	}
	return tw.Flush()
}
