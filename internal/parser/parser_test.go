package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.BankType
		wantErr  bool
	}{
		{
			name:     "detects Itaú",
			text:     "Itaú Unibanco S.A.\nExtrato Conta / Lançamentos",
			expected: models.BankItau,
		},
		{
			name:     "detects Itau without accent",
			text:     "BANCO ITAU\nlancamentos",
			expected: models.BankItau,
		},
		{
			name:     "detects Inter across a no-break space",
			text:     "Banco\u00a0Inter S.A.\nExtrato",
			expected: models.BankInter,
		},
		{
			name:     "detects Nubank by Nu Pagamentos",
			text:     "Nu Pagamentos S.A. - Instituição de Pagamento\nMovimentações",
			expected: models.BankNubank,
		},
		{
			name:     "detects Nubank by Nu Financeira",
			text:     "NU FINANCEIRA S.A.",
			expected: models.BankNubank,
		},
		{
			name:     "detects Banco Inter",
			text:     "Banco Inter S.A.\nExtrato",
			expected: models.BankInter,
		},
		{
			name:     "Nubank wins over an Itaú counterparty",
			text:     "Nubank\nTransferência enviada ITAÚ UNIBANCO 10,00",
			expected: models.BankNubank,
		},
		{
			name:     "Inter wins over an Itaú counterparty",
			text:     "banco inter\nPix enviado: \"ITAU UNIBANCO\" -R$ 1,00 R$ 2,00",
			expected: models.BankInter,
		},
		{
			name:    "unknown bank returns error",
			text:    "This is just some random text with no bank info.",
			wantErr: true,
		},
		{
			name:    "empty text returns error",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.text)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownBank)
				assert.Contains(t, err.Error(), "supported banks")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		bankType models.BankType
		wantName string
		wantErr  bool
	}{
		{models.BankItau, "Itaú", false},
		{models.BankNubank, "Nubank", false},
		{models.BankInter, "Banco Inter", false},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.bankType), func(t *testing.T) {
			p, err := New(tt.bankType, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.BankName())
		})
	}
}

func TestBankFromName(t *testing.T) {
	tests := []struct {
		input    string
		expected models.BankType
		wantErr  bool
	}{
		{"itau", models.BankItau, false},
		{"Itaú", models.BankItau, false},
		{"NUBANK", models.BankNubank, false},
		{"nu", models.BankNubank, false},
		{" inter ", models.BankInter, false},
		{"bradesco", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := BankFromName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// assertWellFormed checks the properties every parse result must hold.
func assertWellFormed(t *testing.T, info *models.StatementInfo, bank models.BankType) {
	t.Helper()
	assert.Equal(t, bank, info.Bank)
	for i, txn := range info.Transactions {
		assert.Equal(t, bank, txn.Bank, "txn[%d].Bank", i)
		if txn.Amount.IsNegative() {
			assert.Equal(t, models.OperationWithdrawal, txn.OperationType, "txn[%d]", i)
		} else {
			assert.Equal(t, models.OperationDeposit, txn.OperationType, "txn[%d]", i)
		}
		assert.Regexp(t, `^\d{2}/\d{2}/\d{4}$`, txn.Date, "txn[%d].Date", i)
	}
}

func TestParsersAreIdempotent(t *testing.T) {
	inputs := map[models.BankType][]string{
		models.BankItau:   {itauSample},
		models.BankNubank: {nubankSample},
		models.BankInter:  {interSample},
	}

	for bank, pages := range inputs {
		t.Run(string(bank), func(t *testing.T) {
			p, err := New(bank, nil)
			require.NoError(t, err)

			first, err := p.Parse(pages)
			require.NoError(t, err)
			second, err := p.Parse(pages)
			require.NoError(t, err)

			assert.NotEmpty(t, first.Transactions)
			assert.Equal(t, first.Transactions, second.Transactions)
			assertWellFormed(t, first, bank)
		})
	}
}

func TestParsersReturnNoTransactionsForEmptyText(t *testing.T) {
	for _, bank := range models.Banks {
		t.Run(string(bank), func(t *testing.T) {
			p, err := New(bank, nil)
			require.NoError(t, err)

			info, err := p.Parse([]string{""})
			require.NoError(t, err)
			assert.Empty(t, info.Transactions)
			assert.Equal(t, bank, info.Bank)
		})
	}
}
