package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// CSVHeader lists the CSV columns in output order.
var CSVHeader = []string{"date", "description", "amount", "transaction_type", "operation_type", "bank"}

// CSVWriter writes transactions to CSV format. Every row, including the
// optional "# Bank" metadata row, has len(CSVHeader) fields.
type CSVWriter struct {
	IncludeHeader bool
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader && info.Bank != "" {
		meta := make([]string, len(CSVHeader))
		meta[0], meta[1] = "# Bank", info.Bank.DisplayName()
		if err := writer.Write(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range info.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			txn.Amount.StringFixed(2),
			string(txn.TransactionType),
			string(txn.OperationType),
			string(txn.Bank),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
