package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/extrato-parser/internal/models"
	"github.com/insightdelivered/extrato-parser/internal/parser"
	"github.com/insightdelivered/extrato-parser/internal/statement"
	"github.com/insightdelivered/extrato-parser/internal/writer"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

type parseOptions struct {
	bank   string
	format string
	output string
	header bool
	trace  bool
}

func newParseCommand(newService serviceFactory) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <statement.pdf> [more.pdf ...]",
		Short: "Extract transactions from statement PDFs",
		Example: `  # Auto-detect the bank and print a table
  extrato parse extrato.pdf

  # Force the parser and write CSV
  extrato parse --bank nubank --format csv --output nubank.csv fatura.pdf

  # Merge several months into one JSON array
  extrato parse --format json jan.pdf fev.pdf mar.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return runParse(cmd.Context(), svc, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.bank, "bank", "", "bank: itau, nubank, inter (auto-detected if omitted)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table, json, csv")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file path (stdout if omitted)")
	cmd.Flags().BoolVar(&opts.header, "header", true, "include the bank header in table and CSV output")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print how each statement line was classified to stderr")

	return cmd
}

func runParse(ctx context.Context, svc *statement.Service, inputs []string, opts parseOptions, stdout, stderr io.Writer) error {
	format := strings.ToLower(opts.format)
	switch format {
	case formatTable, formatJSON, formatCSV:
	default:
		return fmt.Errorf("unknown format %q; supported: table, json, csv", opts.format)
	}

	var bank models.BankType
	if opts.bank != "" {
		b, err := parser.BankFromName(opts.bank)
		if err != nil {
			return err
		}
		bank = b
	}

	var results []*models.StatementInfo
	for _, path := range inputs {
		info, err := parseFile(ctx, svc, path, bank, stderr)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
		if opts.trace {
			printTrace(stderr, info)
		}
		results = append(results, info)
	}

	if opts.output == "" || opts.output == "-" {
		return render(stdout, format, opts.header, results)
	}

	if err := writeFile(opts.output, func(w io.Writer) error {
		return render(w, format, opts.header, results)
	}); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Output: %s\n", opts.output)
	return nil
}

// writeFile creates path and runs write against it. A failed close is
// returned like a failed write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file %q: %w", path, cerr)
		}
	}()

	return write(f)
}

func parseFile(ctx context.Context, svc *statement.Service, path string, bank models.BankType, stderr io.Writer) (*models.StatementInfo, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return nil, fmt.Errorf("expected .pdf file, got %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintf(stderr, "Processing: %s\n", path)

	var info *models.StatementInfo
	if bank != "" {
		info, err = svc.ParseAs(ctx, data, bank)
	} else {
		info, err = svc.Parse(ctx, data)
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(stderr, "  %s: %d transaction(s)\n", info.Bank.DisplayName(), len(info.Transactions))
	if len(info.Transactions) == 0 {
		fmt.Fprintln(stderr, "  Warning: no transactions found. Try --bank if auto-detection picked the wrong parser.")
	}
	return info, nil
}

// render writes tables one statement at a time; JSON and CSV merge all
// statements into a single document.
func render(out io.Writer, format string, header bool, results []*models.StatementInfo) error {
	if format == formatTable {
		for _, info := range results {
			w := &writer.TableWriter{IncludeHeader: header}
			if err := w.Write(out, info); err != nil {
				return fmt.Errorf("table write failed: %w", err)
			}
		}
		return nil
	}

	merged := merge(results)
	if format == formatJSON {
		return writer.JSONWriter{}.Write(out, merged)
	}

	w := &writer.CSVWriter{IncludeHeader: header}
	if err := w.Write(out, merged); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	return nil
}

// merge concatenates transactions in input order. Bank is kept only when
// every statement came from the same bank.
func merge(results []*models.StatementInfo) *models.StatementInfo {
	merged := &models.StatementInfo{}
	for i, info := range results {
		if i == 0 {
			merged.Bank = info.Bank
		} else if merged.Bank != info.Bank {
			merged.Bank = ""
		}
		merged.Transactions = append(merged.Transactions, info.Transactions...)
	}
	return merged
}

func printTrace(w io.Writer, info *models.StatementInfo) {
	for _, line := range info.DebugLines {
		if line.Reason != "" {
			fmt.Fprintf(w, "  %4d %-12s %s (%s)\n", line.LineNum, line.Result, line.Text, line.Reason)
			continue
		}
		fmt.Fprintf(w, "  %4d %-12s %s\n", line.LineNum, line.Result, line.Text)
	}
}
