package parser

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/models"
)

// ErrUnknownBank is returned when no supported bank marker is found.
var ErrUnknownBank = errors.New("could not detect bank from PDF content; supported banks: Itaú, Nubank, Banco Inter")

// Parser defines the interface for bank statement parsers.
type Parser interface {
	// Parse takes the text of every PDF page and returns the statement's
	// transactions in document order.
	Parse(pages []string) (*models.StatementInfo, error)
	// BankName returns the human-readable bank name.
	BankName() string
}

// New returns the appropriate parser for the given bank type. A nil logger
// disables logging.
func New(bankType models.BankType, logger *zap.Logger) (Parser, error) {
	logger = nopIfNil(logger).With(zap.String("bank", string(bankType)))

	switch bankType {
	case models.BankItau:
		return &ItauParser{logger: logger}, nil
	case models.BankNubank:
		return &NubankParser{logger: logger}, nil
	case models.BankInter:
		return &InterParser{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported bank type: %q", bankType)
	}
}

// Marker substrings, lower case. Nubank and Inter statements can name Itaú in
// transaction descriptions, so Itaú must be checked last.
var (
	nubankMarkers = []string{"nu financeira", "nu pagamentos", "nubank"}
	interMarkers  = []string{"banco inter"}
	itauMarkers   = []string{"itaú", "itau"}
)

// Detect identifies the bank from the text of the statement's first page.
// Markers are checked in a fixed order: Nubank, Banco Inter, then Itaú.
func Detect(firstPage string) (models.BankType, error) {
	text := strings.ToLower(normalizeSpaces(firstPage))

	switch {
	case containsAny(text, nubankMarkers):
		return models.BankNubank, nil
	case containsAny(text, interMarkers):
		return models.BankInter, nil
	case containsAny(text, itauMarkers):
		return models.BankItau, nil
	default:
		return "", ErrUnknownBank
	}
}

// BankFromName resolves a user-supplied bank name such as "itau", "Itaú",
// "nu" or "inter".
func BankFromName(name string) (models.BankType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "itau", "itaú":
		return models.BankItau, nil
	case "nubank", "nu":
		return models.BankNubank, nil
	case "inter", "bancointer", "banco inter":
		return models.BankInter, nil
	default:
		return "", fmt.Errorf("unknown bank %q; supported: itau, nubank, inter", name)
	}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func joinPages(pages []string) string {
	return strings.Join(pages, "\n")
}
