package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/buildinfo"
	"github.com/insightdelivered/extrato-parser/internal/models"
	"github.com/insightdelivered/extrato-parser/internal/parser"
	"github.com/insightdelivered/extrato-parser/internal/statement"
	"github.com/insightdelivered/extrato-parser/internal/writer"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

const localsRequestID = "requestID"

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	Success           bool                 `json:"success"`
	Bank              models.BankType      `json:"bank"`
	Transactions      []models.Transaction `json:"transactions"`
	TotalTransactions int                  `json:"total_transactions"`
	TotalDeposits     json.Number          `json:"total_deposits"`
	TotalWithdrawals  json.Number          `json:"total_withdrawals"`
	CSV               string               `json:"csv,omitempty"`
	RawText           string               `json:"rawText,omitempty"`
	DebugLines        []models.DebugLine   `json:"debugLines,omitempty"`
}

// FileResult is the per-file outcome of a batch parse.
type FileResult struct {
	FileName          string          `json:"file_name"`
	Success           bool            `json:"success"`
	Bank              models.BankType `json:"bank,omitempty"`
	TotalTransactions int             `json:"total_transactions"`
	Error             string          `json:"error,omitempty"`
}

// BatchResponse is the JSON response from the /api/parse/batch endpoint.
type BatchResponse struct {
	Success           bool                 `json:"success"`
	Banks             []models.BankType    `json:"banks"`
	Files             []FileResult         `json:"files"`
	Transactions      []models.Transaction `json:"transactions"`
	TotalTransactions int                  `json:"total_transactions"`
	Errors            []string             `json:"errors,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Service *statement.Service
	Logger  *zap.Logger
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api", RequestID(), h.accessLog)
	api.Get("/health", h.HandleHealth)
	api.Post("/parse", h.HandleParse)
	api.Post("/parse/batch", h.HandleParseBatch)
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// RequestID assigns every request an id, reusing the caller's when present.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localsRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}

func (h *Handler) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	h.logger().Info("request",
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
		"engine":  "fiber",
	})
}

// HandleParse parses one uploaded statement from the multipart field "file".
//
// Optional form or query values: bank (skip detection), format=csv (include
// a CSV rendering) and debug=true (include the per-line trace and raw text).
// An extractedText form value holds text the client already extracted, with
// pages separated by statement.PageBreak; it replaces server-side extraction.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	bank, err := bankParam(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	info, err := h.parseUpload(c.UserContext(), fh, bank, c.FormValue("extractedText"))
	if err != nil {
		return h.fail(c, fh.Filename, err)
	}

	deposits, withdrawals := info.Totals()
	txns := info.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	resp := ParseResponse{
		Success:           true,
		Bank:              info.Bank,
		Transactions:      txns,
		TotalTransactions: len(txns),
		TotalDeposits:     json.Number(deposits.StringFixed(2)),
		TotalWithdrawals:  json.Number(withdrawals.StringFixed(2)),
	}

	if strings.EqualFold(formValue(c, "format"), "csv") {
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: true}
		if err := w.Write(&buf, info); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		resp.CSV = buf.String()
	}

	if formValue(c, "debug") == "true" {
		resp.RawText = info.RawText
		resp.DebugLines = info.DebugLines
	}

	h.logger().Info("parsed statement",
		zap.String("request_id", requestID(c)),
		zap.String("file", fh.Filename),
		zap.String("bank", string(info.Bank)),
		zap.Int("transactions", len(txns)),
	)
	return c.JSON(resp)
}

// HandleParseBatch parses every file sent under the multipart field "file"
// and merges their transactions. It fails only when no file could be parsed.
func (h *Handler) HandleParseBatch(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	bank, err := bankParam(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	resp := BatchResponse{
		Banks:        []models.BankType{},
		Transactions: []models.Transaction{},
	}
	seen := map[models.BankType]bool{}

	for _, fh := range form.File["file"] {
		result := FileResult{FileName: fh.Filename}

		info, err := h.parseUpload(c.UserContext(), fh, bank, "")
		if err != nil {
			h.logger().Warn("batch file failed",
				zap.String("request_id", requestID(c)),
				zap.String("file", fh.Filename),
				zap.Error(err),
			)
			result.Error = errorMessage(err)
			resp.Errors = append(resp.Errors, fh.Filename+": "+result.Error)
			resp.Files = append(resp.Files, result)
			continue
		}

		result.Success = true
		result.Bank = info.Bank
		result.TotalTransactions = len(info.Transactions)
		resp.Files = append(resp.Files, result)
		resp.Transactions = append(resp.Transactions, info.Transactions...)
		if !seen[info.Bank] {
			seen[info.Bank] = true
			resp.Banks = append(resp.Banks, info.Bank)
		}
	}

	if len(resp.Banks) == 0 {
		return writeError(c, fiber.StatusUnprocessableEntity, strings.Join(resp.Errors, "; "))
	}

	resp.Success = true
	resp.TotalTransactions = len(resp.Transactions)
	return c.JSON(resp)
}

// errUploadNotPDF is returned for uploads whose name does not end in .pdf.
var errUploadNotPDF = errors.New("only PDF files are accepted")

// parseUpload parses one uploaded file. When extractedText carries text the
// client already pulled out of the PDF, it is parsed instead of the file.
func (h *Handler) parseUpload(ctx context.Context, fh *multipart.FileHeader, bank models.BankType, extractedText string) (*models.StatementInfo, error) {
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, errUploadNotPDF
	}

	if pages := statement.SplitPages(extractedText); len(pages) > 0 {
		h.logger().Debug("using client-extracted text", zap.Int("pages", len(pages)))
		return h.Service.ParsePages(ctx, pages, bank)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	if bank != "" {
		return h.Service.ParseAs(ctx, data, bank)
	}
	return h.Service.Parse(ctx, data)
}

func (h *Handler) fail(c *fiber.Ctx, fileName string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.logger().Error("parse failed",
			zap.String("request_id", requestID(c)),
			zap.String("file", fileName),
			zap.Error(err),
		)
	}
	return writeError(c, status, errorMessage(err))
}

// statusFor maps parse errors to HTTP status codes: problems with the upload
// itself are 400, documents that cannot be handled are 422, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUploadNotPDF), errors.Is(err, statement.ErrEmptyDocument):
		return fiber.StatusBadRequest
	case statement.IsClientError(err):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, statement.ErrEmptyDocument):
		return "Empty file."
	case statusFor(err) < fiber.StatusInternalServerError:
		return err.Error()
	default:
		return fmt.Sprintf("Error parsing PDF: %v", err)
	}
}

func bankParam(c *fiber.Ctx) (models.BankType, error) {
	name := formValue(c, "bank")
	if name == "" {
		return "", nil
	}
	return parser.BankFromName(name)
}

// formValue reads a multipart form value, falling back to the query string.
func formValue(c *fiber.Ctx, key string) string {
	if v := c.FormValue(key); v != "" {
		return v
	}
	return c.Query(key)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   msg,
	})
}

// ErrorHandler renders errors escaping the handlers, including recovered
// panics, with the same envelope as handled failures.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := fmt.Sprintf("Internal server error: %v", err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
	}
	return writeError(c, status, msg)
}
