// Package statement turns uploaded statement documents into transactions:
// text extraction, bank detection and dispatch to the bank's parser.
package statement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/extractor"
	"github.com/insightdelivered/extrato-parser/internal/models"
	"github.com/insightdelivered/extrato-parser/internal/parser"
)

var (
	// ErrEmptyDocument is returned for a zero-length upload.
	ErrEmptyDocument = errors.New("empty file")
	// ErrUnreadableDocument wraps failures to open the document.
	ErrUnreadableDocument = errors.New("could not read PDF")
	// ErrNoPages is returned when the document has no pages.
	ErrNoPages = errors.New("PDF has no pages")
)

// TextExtractor turns document bytes into per-page plain text.
type TextExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}

// Service parses statement documents. It holds no per-call state and is safe
// for concurrent use when its TextExtractor is.
type Service struct {
	extractor TextExtractor
	logger    *zap.Logger
}

// NewService returns a Service. A nil extractor defaults to the PDF extractor
// and a nil logger disables logging.
func NewService(ext TextExtractor, logger *zap.Logger) *Service {
	if ext == nil {
		ext = extractor.PDF{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{extractor: ext, logger: logger}
}

// Parse extracts the document's text, detects the bank from the first page
// and returns the bank parser's transactions.
func (s *Service) Parse(ctx context.Context, data []byte) (*models.StatementInfo, error) {
	return s.parse(ctx, data, "")
}

// ParseAs is like Parse but skips detection and uses the given bank's parser.
func (s *Service) ParseAs(ctx context.Context, data []byte, bank models.BankType) (*models.StatementInfo, error) {
	return s.parse(ctx, data, bank)
}

// Detect extracts the document's text and returns the detected bank only.
func (s *Service) Detect(ctx context.Context, data []byte) (models.BankType, error) {
	pages, err := s.extract(ctx, data)
	if err != nil {
		return "", err
	}
	return parser.Detect(pages[0])
}

// PageBreak separates pages in text that was extracted before upload.
const PageBreak = "\n---PAGE_BREAK---\n"

// SplitPages splits pre-extracted text on PageBreak, dropping blank pages.
func SplitPages(text string) []string {
	var pages []string
	for _, page := range strings.Split(text, PageBreak) {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

// ParsePages parses text that was already extracted page by page, such as
// text produced by a browser-side PDF reader. An empty bank means detect.
func (s *Service) ParsePages(ctx context.Context, pages []string, bank models.BankType) (*models.StatementInfo, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return s.parsePages(ctx, pages, bank)
}

func (s *Service) parse(ctx context.Context, data []byte, bank models.BankType) (*models.StatementInfo, error) {
	pages, err := s.extract(ctx, data)
	if err != nil {
		return nil, err
	}
	return s.parsePages(ctx, pages, bank)
}

func (s *Service) parsePages(ctx context.Context, pages []string, bank models.BankType) (*models.StatementInfo, error) {
	var err error
	if bank == "" {
		bank, err = parser.Detect(pages[0])
		if err != nil {
			return nil, err
		}
		s.logger.Debug("detected bank", zap.String("bank", string(bank)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := parser.New(bank, s.logger)
	if err != nil {
		return nil, err
	}

	info, err := p.Parse(pages)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", p.BankName(), err)
	}
	info.RawText = strings.Join(pages, "\n")

	s.logger.Debug("parsed statement",
		zap.String("bank", string(bank)),
		zap.Int("pages", len(pages)),
		zap.Int("transactions", len(info.Transactions)),
	)
	return info, nil
}

func (s *Service) extract(ctx context.Context, data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := s.extractor.ExtractPages(data)
	if errors.Is(err, extractor.ErrNoPages) {
		return nil, ErrNoPages
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

// IsClientError reports whether err is caused by the uploaded document rather
// than by the server: empty, unreadable or pageless documents, and statements
// from unsupported banks.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrUnreadableDocument) ||
		errors.Is(err, ErrNoPages) ||
		errors.Is(err, parser.ErrUnknownBank)
}
