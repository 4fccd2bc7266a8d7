package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// ItauParser handles Itaú "Extrato Conta / Lançamentos" statements.
//
// Every transaction carries its own date and a signed amount:
//
//	18/02/2026 PIX TRANSF FULANO 17/02 -30,00
//	05/02/2026 REMUNERACAO/SALARIO 2.546,68
//
// Daily balance rows ("SALDO DO DIA") share the same shape and are dropped.
type ItauParser struct {
	logger *zap.Logger
}

func (p *ItauParser) BankName() string {
	return "Itaú"
}

// DATE  DESCRIPTION  AMOUNT
var itauTxnPattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(-?[\d.,]+)$`)

const itauBalanceMarker = "SALDO DO DIA"

func (p *ItauParser) Parse(pages []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Bank: models.BankItau}
	trace := &lineTracer{}

	for i, line := range splitLines(joinPages(pages)) {
		if line == "" {
			continue
		}
		num := i + 1

		if strings.Contains(line, itauBalanceMarker) {
			trace.record(num, line, "skipped", "daily balance")
			continue
		}

		m := itauTxnPattern.FindStringSubmatch(line)
		if m == nil {
			trace.record(num, line, "ignored", "")
			continue
		}

		description := strings.TrimSpace(m[2])
		amount, err := parseAmount(m[3])
		if err != nil {
			nopIfNil(p.logger).Debug("skipping line with malformed amount", zap.Int("line", num), zap.Error(err))
			trace.record(num, line, "skipped", err.Error())
			continue
		}

		info.Transactions = append(info.Transactions,
			models.NewTransaction(m[1], description, amount, itauTransactionType(description), models.BankItau))
		trace.record(num, line, "parsed", "")
	}

	info.DebugLines = trace.lines
	return info, nil
}

// itauTransactionType infers the type from Itaú description keywords. The
// REMUNERACAO/SALARIO override runs after the ladder, which on its own
// classifies those lines as RENDIMENTO.
func itauTransactionType(description string) models.TransactionType {
	desc := upper(description)
	txType := itauKeywordType(desc)
	if strings.Contains(desc, "REMUNERACAO/SALARIO") {
		txType = models.TypeSalario
	}
	return txType
}

func itauKeywordType(desc string) models.TransactionType {
	switch {
	case strings.HasPrefix(desc, "PIX TRANSF"), strings.HasPrefix(desc, "PIX QRS"):
		return models.TypePIX
	case strings.HasPrefix(desc, "DEV PIX"):
		return models.TypePixDevolucao
	case strings.Contains(desc, "FATURA PAGA"):
		return models.TypeFatura
	case strings.Contains(desc, "REND PAGO APLIC"), strings.Contains(desc, "REMUNERACAO"):
		return models.TypeRendimento
	case strings.Contains(desc, "SISPAG"):
		return models.TypeSalario
	case strings.HasPrefix(desc, "TAR "):
		return models.TypeTarifa
	case strings.Contains(desc, "TED"):
		return models.TypeTED
	case strings.Contains(desc, "DOC"):
		return models.TypeDOC
	default:
		return models.TypeOutro
	}
}
