package writer

import (
	"fmt"
	"io"

	money "github.com/Rhymond/go-money"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// TableWriter renders transactions as an aligned text table with amounts
// formatted in Brazilian reais, followed by deposit and withdrawal totals.
type TableWriter struct {
	IncludeHeader bool
}

func (w *TableWriter) Write(out io.Writer, info *models.StatementInfo) error {
	if w.IncludeHeader && info.Bank != "" {
		if _, err := fmt.Fprintf(out, "Banco: %s\n", info.Bank.DisplayName()); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Data", "Descrição", "Valor", "Tipo", "Operação"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for _, txn := range info.Transactions {
		table.Append([]string{
			txn.Date,
			txn.Description,
			FormatBRL(txn.Amount),
			string(txn.TransactionType),
			string(txn.OperationType),
		})
	}

	deposits, withdrawals := info.Totals()
	table.SetFooter([]string{
		"", fmt.Sprintf("%d transações", len(info.Transactions)),
		FormatBRL(deposits.Add(withdrawals)),
		"entradas " + FormatBRL(deposits),
		"saídas " + FormatBRL(withdrawals),
	})
	table.Render()
	return nil
}

// FormatBRL formats amount as reais, e.g. R$1.234,56. Fractions of a
// centavo are rounded half away from zero.
func FormatBRL(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	return money.New(cents, money.BRL).Display()
}
