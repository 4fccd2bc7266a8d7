package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// InterParser handles Banco Inter statements.
//
// Transactions are grouped under full-name date headers and quote the
// counterparty. Each line prints the signed amount followed by the running
// balance, which is ignored:
//
//	1 de Fevereiro de 2026 Saldo do dia: R$ 74,85
//	Pix enviado: "Cp :44815065-PAY2ALL INSTITUICAO" -R$ 44,99 -R$ 29,86
//	Aplicacao: "LCI PRE 180 BANCO INTER SA" -R$ 55,00 R$ 33,31
type InterParser struct {
	logger *zap.Logger
}

func (p *InterParser) BankName() string {
	return "Banco Inter"
}

var interMonths = map[string]string{
	"janeiro": "01", "fevereiro": "02", "março": "03", "abril": "04",
	"maio": "05", "junho": "06", "julho": "07", "agosto": "08",
	"setembro": "09", "outubro": "10", "novembro": "11", "dezembro": "12",
}

var (
	// "1 de Fevereiro de 2026" at the start of a line.
	interDatePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})`)
	// ACTION: "DESCRIPTION" [-]R$ AMOUNT [-]R$ BALANCE
	interTxnPattern = regexp.MustCompile(`^(.+?):\s+"(.+?)"\s+(-?)R\$\s*([\d.,]+)\s+(-?)R\$\s*([\d.,]+)$`)
)

func (p *InterParser) Parse(pages []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Bank: models.BankInter}
	trace := &lineTracer{}
	currentDate := ""

	for i, line := range splitLines(joinPages(pages)) {
		if line == "" {
			continue
		}
		num := i + 1

		if m := interDatePattern.FindStringSubmatch(line); m != nil {
			if month, ok := interMonths[lower(m[2])]; ok {
				currentDate = formatDate(m[1], month, m[3])
				trace.record(num, line, "header", currentDate)
			} else {
				trace.record(num, line, "header", "unknown month "+m[2])
			}
			continue
		}

		if currentDate == "" {
			trace.record(num, line, "ignored", "no date yet")
			continue
		}

		m := interTxnPattern.FindStringSubmatch(line)
		if m == nil {
			trace.record(num, line, "ignored", "")
			continue
		}

		action := strings.TrimSpace(m[1])
		description := strings.TrimSpace(m[2])
		amount, err := parseAmount(m[4])
		if err != nil {
			nopIfNil(p.logger).Debug("skipping line with malformed amount", zap.Int("line", num), zap.Error(err))
			trace.record(num, line, "skipped", err.Error())
			continue
		}
		if m[3] == "-" {
			amount = amount.Neg()
		}

		info.Transactions = append(info.Transactions,
			models.NewTransaction(currentDate, action+": "+description, amount, interTransactionType(action), models.BankInter))
		trace.record(num, line, "parsed", "")
	}

	info.DebugLines = trace.lines
	return info, nil
}

// interTransactionType infers the type from the action prefix ("Pix enviado",
// "Aplicacao", "Pagamento de boleto", ...).
func interTransactionType(action string) models.TransactionType {
	a := lower(strings.TrimSpace(action))

	switch {
	case strings.Contains(a, "pix"):
		return models.TypePIX
	case strings.Contains(a, "aplicacao"), strings.Contains(a, "aplicação"):
		return models.TypeInvestimento
	case strings.Contains(a, "resgate"):
		return models.TypeResgate
	case strings.Contains(a, "ted"):
		return models.TypeTED
	case strings.Contains(a, "boleto"):
		return models.TypeBoleto
	case strings.Contains(a, "rendimento"):
		return models.TypeRendimento
	case strings.Contains(a, "tarifa"), strings.Contains(a, "taxa"):
		return models.TypeTarifa
	default:
		return models.TypeOutro
	}
}
