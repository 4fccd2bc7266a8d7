package statement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/insightdelivered/extrato-parser/internal/extractor"
	"github.com/insightdelivered/extrato-parser/internal/models"
	"github.com/insightdelivered/extrato-parser/internal/parser"
)

// fakeExtractor returns fixed pages regardless of the input bytes.
type fakeExtractor struct {
	pages []string
	err   error
}

func (f fakeExtractor) ExtractPages([]byte) ([]string, error) {
	return f.pages, f.err
}

var doc = []byte("%PDF-1.4 fake")

func TestService_ParseItau(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{
		"Itaú Unibanco\n18/02/2026 PIX TRANSF EXEMPLO 123 -30,00\n18/02/2026 SALDO DO DIA 100,00",
	}}, zaptest.NewLogger(t))

	info, err := svc.Parse(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, models.BankItau, info.Bank)
	require.Len(t, info.Transactions, 1)

	txn := info.Transactions[0]
	assert.Equal(t, "18/02/2026", txn.Date)
	assert.Equal(t, "-30.00", txn.Amount.StringFixed(2))
	assert.Equal(t, models.TypePIX, txn.TransactionType)
	assert.Equal(t, models.OperationWithdrawal, txn.OperationType)
	assert.Contains(t, info.RawText, "Itaú Unibanco")
}

func TestService_DetectsFromFirstPageOnly(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{
		"Nu Pagamentos S.A.\nMovimentações\n14 FEV 2026\nTransferência recebida 30,00",
		"Transferência enviada ITAÚ UNIBANCO 5,00\nBanco Inter",
	}}, nil)

	info, err := svc.Parse(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, models.BankNubank, info.Bank)
	for _, txn := range info.Transactions {
		assert.Equal(t, models.BankNubank, txn.Bank)
	}
}

func TestService_UnknownBankOnFirstPage(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{"extrato", "Itaú"}}, nil)

	_, err := svc.Parse(context.Background(), doc)
	require.ErrorIs(t, err, parser.ErrUnknownBank)
	assert.True(t, IsClientError(err))
}

func TestService_ParseAsSkipsDetection(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{
		"1 de Fevereiro de 2026\nPix enviado: \"Cp :123-ALGUEM\" -R$ 44,99 -R$ 29,86",
	}}, nil)

	info, err := svc.ParseAs(context.Background(), doc, models.BankInter)
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, models.BankInter, info.Transactions[0].Bank)
}

func TestService_ParseAsUnsupportedBank(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{"x"}}, nil)

	_, err := svc.ParseAs(context.Background(), doc, "bradesco")
	require.Error(t, err)
	assert.False(t, IsClientError(err))
}

func TestService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ext     fakeExtractor
		data    []byte
		wantErr error
	}{
		{"empty document", fakeExtractor{pages: []string{"Itaú"}}, nil, ErrEmptyDocument},
		{"no pages from extractor", fakeExtractor{}, doc, ErrNoPages},
		{"extractor reports no pages", fakeExtractor{err: extractor.ErrNoPages}, doc, ErrNoPages},
		{"unreadable document", fakeExtractor{err: errors.New("malformed PDF")}, doc, ErrUnreadableDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.ext, nil)
			_, err := svc.Parse(context.Background(), tt.data)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestService_UnreadableWrapsCause(t *testing.T) {
	svc := NewService(fakeExtractor{err: errors.New("missing final startxref")}, nil)

	_, err := svc.Parse(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing final startxref")
}

func TestService_CancelledContext(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{"Itaú"}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Parse(ctx, doc)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsClientError(err))
}

func TestService_Detect(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{"BANCO INTER S.A."}}, nil)

	bank, err := svc.Detect(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, models.BankInter, bank)
}

func TestService_MalformedLineDoesNotAbort(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{
		"Itaú\n18/02/2026 PIX TRANSF EXEMPLO 123 -30,00\n19/02/2026 PIX TRANSF OUTRO 1,2,3",
	}}, nil)

	info, err := svc.Parse(context.Background(), doc)
	require.NoError(t, err)
	assert.Len(t, info.Transactions, 1)
}

func TestService_IdempotentAndConcurrent(t *testing.T) {
	svc := NewService(fakeExtractor{pages: []string{
		"Banco Inter\n1 de Fevereiro de 2026\nPix enviado: \"A\" -R$ 1,00 R$ 9,00\nPix recebido: \"B\" R$ 2,00 R$ 11,00",
	}}, nil)

	want, err := svc.Parse(context.Background(), doc)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*models.StatementInfo, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := svc.Parse(context.Background(), doc)
			if err == nil {
				results[i] = info
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.NotNil(t, got)
		assert.Equal(t, want.Transactions, got.Transactions)
	}
}

func TestSplitPages(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitPages(" a "+PageBreak+"\n"+PageBreak+"b"))
	assert.Empty(t, SplitPages(""))
}

func TestService_ParsePages(t *testing.T) {
	svc := NewService(fakeExtractor{err: errors.New("must not be called")}, zaptest.NewLogger(t))

	info, err := svc.ParsePages(context.Background(), []string{
		"Itaú Unibanco\n18/02/2026 PIX TRANSF EXEMPLO 123 -30,00",
		"Banco Inter",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, models.BankItau, info.Bank)
	require.Len(t, info.Transactions, 1)

	_, err = svc.ParsePages(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoPages)
}
