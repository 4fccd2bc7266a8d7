package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// JSONWriter writes transactions as an indented JSON array.
type JSONWriter struct{}

func (JSONWriter) Write(out io.Writer, info *models.StatementInfo) error {
	txns := info.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txns); err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	return nil
}
