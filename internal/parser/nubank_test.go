package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

const nubankSample = `Nubank
FULANO DE TAL
Saldo inicial 100,00
Movimentações
14 FEV 2026 Total de entradas + 30,00
Transferência recebida pelo Pix 30,00
ALGUEM - BANCO ITAÚ (0341) Agência: 1 Conta: 1234-5
Total de saídas - 83,25
15 FEV 2026
Pagamento de fatura 83,25
Compra no débito Padaria 12,00
Estorno de compra 12,00
16 fev 2026
Transferência enviada pelo Pix 10,00
FULANO - NU PAGAMENTOS - IP (0260) Agência: 1 Conta: 9-9
Nu Pagamentos S.A. - Instituição de Pagamento CNPJ 18.236.120/0001-58
Extrato gerado dia 17 de fevereiro de 2026`

func TestNubankParser_Parse(t *testing.T) {
	p, err := New(models.BankNubank, nil)
	require.NoError(t, err)

	info, err := p.Parse([]string{nubankSample})
	require.NoError(t, err)
	require.Len(t, info.Transactions, 5)
	assertWellFormed(t, info, models.BankNubank)

	tests := []struct {
		idx    int
		date   string
		desc   string
		amount string
		typ    models.TransactionType
		op     models.OperationType
	}{
		{0, "14/02/2026", "Transferência recebida pelo Pix", "30.00", models.TypePIX, models.OperationDeposit},
		{1, "15/02/2026", "Pagamento de fatura", "-83.25", models.TypeFatura, models.OperationWithdrawal},
		{2, "15/02/2026", "Compra no débito Padaria", "-12.00", models.TypeDebito, models.OperationWithdrawal},
		{3, "15/02/2026", "Estorno de compra", "12.00", models.TypeEstorno, models.OperationDeposit},
		{4, "16/02/2026", "Transferência enviada pelo Pix", "-10.00", models.TypePIX, models.OperationWithdrawal},
	}

	for _, tt := range tests {
		txn := info.Transactions[tt.idx]
		assert.Equal(t, tt.date, txn.Date, "txn[%d].Date", tt.idx)
		assert.Equal(t, tt.desc, txn.Description, "txn[%d].Description", tt.idx)
		assert.Equal(t, tt.amount, txn.Amount.StringFixed(2), "txn[%d].Amount", tt.idx)
		assert.Equal(t, tt.typ, txn.TransactionType, "txn[%d].TransactionType", tt.idx)
		assert.Equal(t, tt.op, txn.OperationType, "txn[%d].OperationType", tt.idx)
	}
}

func TestNubankParser_ReceivedTransfer(t *testing.T) {
	p := &NubankParser{}
	info, err := p.Parse([]string{"Movimentações\n14 FEV 2026\nTransferência recebida 30,00"})
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)

	txn := info.Transactions[0]
	assert.Equal(t, "14/02/2026", txn.Date)
	assert.Equal(t, "30.00", txn.Amount.StringFixed(2))
	assert.Equal(t, models.OperationDeposit, txn.OperationType)
	assert.Equal(t, models.TypePIX, txn.TransactionType)
}

func TestNubankParser_NoBreakSpaces(t *testing.T) {
	p := &NubankParser{}
	info, err := p.Parse([]string{"Movimentações\n14\u00a0FEV\u00a02026\nPagamento de fatura\u00a083,25"})
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, "14/02/2026", info.Transactions[0].Date)
	assert.Equal(t, "Pagamento de fatura", info.Transactions[0].Description)
	assert.Equal(t, "-83.25", info.Transactions[0].Amount.StringFixed(2))
}

func TestNubankParser_ZeroAmountIsDeposit(t *testing.T) {
	p := &NubankParser{}
	info, err := p.Parse([]string{"Movimentações\n14 FEV 2026\nPagamento de fatura 0,00"})
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)

	txn := info.Transactions[0]
	assert.True(t, txn.Amount.IsZero())
	assert.False(t, txn.Amount.IsNegative())
	assert.Equal(t, models.OperationDeposit, txn.OperationType)
}

func TestNubankParser_IgnoresTextBeforeSection(t *testing.T) {
	p := &NubankParser{}
	pages := []string{"14 FEV 2026\nPagamento de fatura 83,25\nResumo 10,00"}

	info, err := p.Parse(pages)
	require.NoError(t, err)
	assert.Empty(t, info.Transactions)
}

func TestNubankParser_DiscardsLinesBeforeFirstDate(t *testing.T) {
	p := &NubankParser{}
	pages := []string{"Movimentações\nPagamento de fatura 83,25\n14 FEV 2026\nPagamento de fatura 10,00"}

	info, err := p.Parse(pages)
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, "-10.00", info.Transactions[0].Amount.StringFixed(2))
}

func TestNubankParser_SkipsMalformedAmount(t *testing.T) {
	p := &NubankParser{}
	pages := []string{"Movimentações\n14 FEV 2026\nTransferência recebida 30,00\nPagamento de fatura 1,2,3"}

	info, err := p.Parse(pages)
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, "Transferência recebida", info.Transactions[0].Description)
}

func TestNubankParser_SkipsFooterAndSummaries(t *testing.T) {
	p := &NubankParser{}
	pages := []string{`Movimentações
14 FEV 2026
Total de entradas 30,00
Total de saídas 10,00
Ouvidoria 0800 887 0463
Saldo líquido do dia 20,00
Mande uma mensagem 4020 0185
Transferência recebida 30,00`}

	info, err := p.Parse(pages)
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, "Transferência recebida", info.Transactions[0].Description)
}

func TestNubankParser_SectionSpansPages(t *testing.T) {
	p := &NubankParser{}
	pages := []string{
		"Nubank\nMovimentações\n14 FEV 2026\nTransferência recebida 30,00",
		"15 FEV 2026\nPagamento de fatura 83,25",
	}

	info, err := p.Parse(pages)
	require.NoError(t, err)
	require.Len(t, info.Transactions, 2)
	assert.Equal(t, "15/02/2026", info.Transactions[1].Date)
}

func TestNubankTransactionType(t *testing.T) {
	tests := []struct {
		desc string
		want models.TransactionType
	}{
		{"Transferência enviada pelo Pix", models.TypePIX},
		{"TRANSFERÊNCIA RECEBIDA", models.TypePIX},
		{"Pagamento de fatura", models.TypeFatura},
		{"Rendimento da conta", models.TypeRendimento},
		{"Compra no débito Mercado", models.TypeDebito},
		{"Estorno de compra", models.TypeEstorno},
		{"Devolução de compra", models.TypeEstorno},
		{"Depósito", models.TypeOutro},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, nubankTransactionType(tt.desc))
		})
	}
}

func TestIsNubankDeposit(t *testing.T) {
	tests := []struct {
		desc string
		want bool
	}{
		{"Transferência recebida pelo Pix", true},
		{"Pix recebido", true},
		{"Estorno de compra", true},
		{"Devolução Pix", true},
		{"Transferência enviada pelo Pix", false},
		{"Pagamento de fatura", false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, isNubankDeposit(tt.desc))
		})
	}
}
