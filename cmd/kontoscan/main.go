package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mbeier/kontoscan/internal/classify"
	"github.com/mbeier/kontoscan/internal/config"
	"github.com/mbeier/kontoscan/internal/database"
	"github.com/mbeier/kontoscan/internal/database/repository"
	"github.com/mbeier/kontoscan/internal/llm"
	"github.com/mbeier/kontoscan/internal/service"
)

var version = "dev"

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "kontoscan",
})

var rootCmd = &cobra.Command{
	Use:   "kontoscan",
	Short: "Analyze bank exports: normalize, match transfers, categorize",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Run the full pipeline over one or more bank export files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)

		svc, closeDB, err := openServices(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		svc.OnProgress = func(p classify.Progress) {
			logger.Info("batch classified", "batch", p.Batch, "of", p.TotalBatches,
				"done", p.Completed, "total", p.Total)
		}

		var files []service.SourceFile
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files = append(files, service.SourceFile{Name: filepath.Base(path), Data: data})
		}

		// Ctrl-C stops classification between batches; already labeled
		// rows are kept and persisted.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := svc.Analyze(ctx, files, service.AnalyzeOptions{
			UserName:  cfg.Transfers.UserName,
			Tolerance: cfg.Transfers.Tolerance,
			Prompt:    cfg.Classify.Prompt,
			BatchSize: cfg.Classify.BatchSize,
		})
		if err != nil {
			return err
		}

		printResult(res)

		if out, _ := cmd.Flags().GetString("output"); out != "" {
			if err := exportTo(cmd.Context(), svc, out, res.SessionID); err != nil {
				return err
			}
			logger.Info("exported", "path", out)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored session as CSV (latest session by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		svc, closeDB, err := openServices(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		sessionID, _ := cmd.Flags().GetString("session")
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = cfg.Export.Path
		}
		if err := exportTo(cmd.Context(), svc, out, sessionID); err != nil {
			return err
		}
		logger.Info("exported", "path", out)
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored analysis sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		svc, closeDB, err := openServices(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		sessions, err := svc.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Printf("%s  %s  %4d rows  %s\n",
				s.ID, s.CreatedAt.Format("2006-01-02 15:04"),
				s.TransactionCount, strings.Join(s.SourceFiles, ", "))
		}
		return nil
	},
}

var relabelCmd = &cobra.Command{
	Use:   "relabel <transaction-id> <category>",
	Short: "Override the category of one stored transaction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		svc, closeDB, err := openServices(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := svc.Relabel(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		logger.Info("relabeled", "transaction", args[0], "category", args[1])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("kontoscan", version)
	},
}

func init() {
	analyzeCmd.Flags().String("user", "", "account holder name for transfer detection")
	analyzeCmd.Flags().String("provider", "", "llm provider (ollama or gemini)")
	analyzeCmd.Flags().String("model", "", "model name override")
	analyzeCmd.Flags().Int("batch-size", 0, "transactions per classification request")
	analyzeCmd.Flags().StringP("output", "o", "", "write the labeled table to this CSV file")

	exportCmd.Flags().String("session", "", "session id (default: latest)")
	exportCmd.Flags().StringP("output", "o", "", "output CSV path")

	rootCmd.AddCommand(analyzeCmd, exportCmd, sessionsCmd, relabelCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("failed", "error", err)
	}
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.Transfers.UserName = v
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.LLM.Model = v
	}
	if v, _ := cmd.Flags().GetInt("batch-size"); v > 0 {
		cfg.Classify.BatchSize = v
	}
}

func openServices(cfg config.Config) (*service.AnalyzerService, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunEmbeddedMigrations(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	svc := &service.AnalyzerService{
		Sessions:     repository.NewSessionRepo(db),
		Transactions: repository.NewTransactionRepo(db),
		Provider:     newProvider(cfg),
		Logger:       logger,
	}
	return svc, func() { _ = db.Close() }, nil
}

func newProvider(cfg config.Config) llm.Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) {
	case "gemini":
		return llm.NewGeminiProvider(cfg.LLM.ResolveAPIKey(), cfg.LLM.Model, 0)
	default:
		return llm.NewOllamaProvider(cfg.LLM.BaseURL, cfg.LLM.Model, 0)
	}
}

func exportTo(ctx context.Context, svc *service.AnalyzerService, path, sessionID string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return svc.ExportSession(ctx, f, sessionID)
}

func printResult(res *service.AnalyzeResult) {
	for _, f := range res.Files {
		logger.Info("file", "name", f.Name, "encoding", f.Encoding,
			"delimiter", string(f.Delimiter), "rows", f.Rows)
	}
	logger.Info("analysis complete",
		"transactions", len(res.Transactions),
		"transfers", res.Transfers,
		"classified", res.Classification.Classified,
		"failed_batches", res.Classification.FailedBatches)
	if res.Classification.Cancelled {
		logger.Warn("classification cancelled",
			"remaining", res.Classification.Remaining)
	}
	fmt.Println("Session:", res.SessionID)
}
