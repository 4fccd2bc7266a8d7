package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// BankType represents supported bank statement formats.
type BankType string

const (
	BankItau   BankType = "itau"
	BankNubank BankType = "nubank"
	BankInter  BankType = "inter"
)

// Banks lists every supported bank in detection order.
var Banks = []BankType{BankNubank, BankInter, BankItau}

// DisplayName returns the bank's human-readable name.
func (b BankType) DisplayName() string {
	switch b {
	case BankItau:
		return "Itaú"
	case BankNubank:
		return "Nubank"
	case BankInter:
		return "Banco Inter"
	default:
		return string(b)
	}
}

// OperationType is the direction of a transaction.
type OperationType string

const (
	OperationDeposit    OperationType = "deposit"
	OperationWithdrawal OperationType = "withdrawal"
)

// TransactionType is a heuristic classification inferred from statement wording.
type TransactionType string

const (
	TypePIX          TransactionType = "PIX"
	TypeTED          TransactionType = "TED"
	TypeBoleto       TransactionType = "BOLETO"
	TypeTarifa       TransactionType = "TARIFA"
	TypeRendimento   TransactionType = "RENDIMENTO"
	TypeSalario      TransactionType = "SALARIO"
	TypeFatura       TransactionType = "FATURA"
	TypeInvestimento TransactionType = "INVESTIMENTO"
	TypeResgate      TransactionType = "RESGATE"
	TypeDOC          TransactionType = "DOC"
	TypePixDevolucao TransactionType = "PIX_DEVOLUCAO"
	TypeDebito       TransactionType = "DEBITO"
	TypeEstorno      TransactionType = "ESTORNO"
	TypeOutro        TransactionType = "OUTRO"
)

// Transaction represents a single bank statement transaction.
// Values are built with NewTransaction and never modified afterwards.
type Transaction struct {
	Date            string          `json:"date"` // DD/MM/YYYY
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"` // negative = withdrawal
	TransactionType TransactionType `json:"transaction_type"`
	OperationType   OperationType   `json:"operation_type"`
	Bank            BankType        `json:"bank"`
}

// NewTransaction builds a Transaction whose operation type is derived from
// the sign of amount: zero and positive amounts are deposits.
func NewTransaction(date, description string, amount decimal.Decimal, txType TransactionType, bank BankType) Transaction {
	return Transaction{
		Date:            date,
		Description:     description,
		Amount:          amount,
		TransactionType: txType,
		OperationType:   OperationFor(amount),
		Bank:            bank,
	}
}

// OperationFor returns the operation type implied by the sign of amount.
func OperationFor(amount decimal.Decimal) OperationType {
	if amount.IsNegative() {
		return OperationWithdrawal
	}
	return OperationDeposit
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Amount json.Number `json:"amount"`
	}{
		alias:  alias(t),
		Amount: json.Number(t.Amount.StringFixed(2)),
	})
}

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "parsed", "skipped", "continuation", "header", "ignored"
	Reason  string `json:"reason,omitempty"`
}

// StatementInfo holds the outcome of parsing one statement.
type StatementInfo struct {
	Bank         BankType
	Transactions []Transaction
	DebugLines   []DebugLine
	RawText      string
}

// Totals sums deposits and withdrawals. Withdrawals are returned as a
// non-positive value.
func (s *StatementInfo) Totals() (deposits, withdrawals decimal.Decimal) {
	for _, txn := range s.Transactions {
		if txn.OperationType == OperationDeposit {
			deposits = deposits.Add(txn.Amount)
		} else {
			withdrawals = withdrawals.Add(txn.Amount)
		}
	}
	return deposits, withdrawals
}
