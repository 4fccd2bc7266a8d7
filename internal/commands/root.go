package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightdelivered/extrato-parser/internal/buildinfo"
	"github.com/insightdelivered/extrato-parser/internal/logging"
	"github.com/insightdelivered/extrato-parser/internal/statement"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

// newRootCommand builds the command tree around ext; nil uses the PDF extractor.
func newRootCommand(ext statement.TextExtractor) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "extrato",
		Short: "Parse Brazilian bank statement PDFs (Itaú, Nubank, Banco Inter)",
		Long: `Extrato reads bank statement PDFs from Itaú, Nubank and Banco Inter
and turns them into normalized transactions: date, description, signed
amount, transaction type and deposit/withdrawal.`,
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level for diagnostics on stderr (debug, info, warn, error); silent when empty")

	newService := func() (*statement.Service, error) {
		logger, err := cliLogger(logLevel)
		if err != nil {
			return nil, err
		}
		return statement.NewService(ext, logger), nil
	}

	rootCmd.AddCommand(newParseCommand(newService))
	rootCmd.AddCommand(newDetectCommand(newService))
	rootCmd.AddCommand(newServeCommand(ext))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

type serviceFactory func() (*statement.Service, error)

func cliLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	return logging.New(logging.Options{
		Environment: logging.EnvironmentLocal,
		Level:       level,
	})
}
