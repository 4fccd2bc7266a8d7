package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// NubankParser handles Nubank account statements.
//
// Transactions start after the "Movimentações" header and are grouped under
// date headers. Amounts are printed unsigned; the direction comes from the
// description. Bank details printed under a transaction are discarded:
//
//	14 FEV 2026 Total de entradas + 30,00
//	Transferência recebida pelo Pix 30,00
//	FULANO DE TAL - NU PAGAMENTOS - IP (0260) Agência: 1 Conta: 1234-5
type NubankParser struct {
	logger *zap.Logger
}

func (p *NubankParser) BankName() string {
	return "Nubank"
}

var nubankMonths = map[string]string{
	"JAN": "01", "FEV": "02", "MAR": "03", "ABR": "04",
	"MAI": "05", "JUN": "06", "JUL": "07", "AGO": "08",
	"SET": "09", "OUT": "10", "NOV": "11", "DEZ": "12",
}

var (
	// "14 FEV 2026", possibly followed by more text.
	nubankDatePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+(JAN|FEV|MAR|ABR|MAI|JUN|JUL|AGO|SET|OUT|NOV|DEZ)\s+(\d{4})`)
	// Description followed by a trailing unsigned amount: "Pagamento de fatura 83,25".
	nubankTxnPattern = regexp.MustCompile(`^(.+?)\s+(\d+(?:[.,]\d+)*)\s*$`)
)

const nubankSectionMarker = "Movimentações"

// Footer, legal and support text fragments (lower case).
var nubankSkipKeywords = []string{
	"nu financeira", "nu pagamentos", "cnpj", "mande uma mensagem",
	"ouvidoria", "extrato gerado", "saldo líquido", "não nos responsabilizamos",
	"asseguramos", "4020 0185", "0800", "metropolitanas", "investimento pagamento",
	"disponíveis em", "sociedade de credito",
}

var nubankSummaryPrefixes = []string{"Total de entradas", "Total de saídas"}

// Description fragments (lower case) that mark money coming in.
var nubankDepositKeywords = []string{"recebid", "estorno", "devolução"}

func (p *NubankParser) Parse(pages []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Bank: models.BankNubank}
	trace := &lineTracer{}
	inMovements := false
	currentDate := ""

	for i, line := range splitLines(joinPages(pages)) {
		if line == "" {
			continue
		}
		num := i + 1

		if strings.Contains(line, nubankSectionMarker) {
			inMovements = true
			trace.record(num, line, "header", "section start")
			continue
		}
		if !inMovements {
			trace.record(num, line, "ignored", "before section")
			continue
		}

		if containsAny(lower(line), nubankSkipKeywords) {
			trace.record(num, line, "skipped", "footer")
			continue
		}
		if isNubankSummaryLine(line) {
			trace.record(num, line, "skipped", "summary")
			continue
		}

		if m := nubankDatePattern.FindStringSubmatch(line); m != nil {
			currentDate = formatDate(m[1], nubankMonths[strings.ToUpper(m[2])], m[3])
			trace.record(num, line, "header", currentDate)
			continue
		}

		if currentDate == "" {
			trace.record(num, line, "ignored", "no date yet")
			continue
		}

		m := nubankTxnPattern.FindStringSubmatch(line)
		if m == nil {
			trace.record(num, line, "continuation", "")
			continue
		}

		description := strings.TrimSpace(m[1])
		magnitude, err := parseAmount(m[2])
		if err != nil {
			nopIfNil(p.logger).Debug("skipping line with malformed amount", zap.Int("line", num), zap.Error(err))
			trace.record(num, line, "skipped", err.Error())
			continue
		}

		amount := magnitude.Abs()
		if !isNubankDeposit(description) {
			amount = amount.Neg()
		}

		info.Transactions = append(info.Transactions,
			models.NewTransaction(currentDate, description, amount, nubankTransactionType(description), models.BankNubank))
		trace.record(num, line, "parsed", "")
	}

	info.DebugLines = trace.lines
	return info, nil
}

func isNubankSummaryLine(line string) bool {
	for _, prefix := range nubankSummaryPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// isNubankDeposit reports whether the description names incoming money.
// It is independent of the type ladder: an ESTORNO is also a deposit.
func isNubankDeposit(description string) bool {
	return containsAny(lower(description), nubankDepositKeywords)
}

func nubankTransactionType(description string) models.TransactionType {
	desc := lower(description)

	switch {
	case strings.Contains(desc, "pix"), strings.Contains(desc, "transferência"):
		return models.TypePIX
	case strings.Contains(desc, "pagamento de fatura"):
		return models.TypeFatura
	case strings.Contains(desc, "rendimento"):
		return models.TypeRendimento
	case strings.Contains(desc, "compra no débito"):
		return models.TypeDebito
	case strings.Contains(desc, "estorno"), strings.Contains(desc, "devolução"):
		return models.TypeEstorno
	default:
		return models.TypeOutro
	}
}
