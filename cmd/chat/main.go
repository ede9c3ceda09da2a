// Package main is a terminal client that runs one lead-capture conversation
// locally against the configured inference backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gforma/lead-assistant/internal/app"
	"github.com/gforma/lead-assistant/internal/config"
	"github.com/gforma/lead-assistant/internal/conversation"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/pkg/logger"
)

var (
	providerFlag string
	modelFlag    string
	catalogFlag  string
	verboseFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the GForma training consultant from the terminal",
	Long: `Runs one lead-capture conversation locally.

Commands inside the session:
  /ejemplo           show the worked example
  /temario           generate the syllabus proposal
  /reiniciar         start over
  /leads             list leads captured in this run
  /exportar <file>   write captured leads as CSV
  /salir             quit`,
	SilenceUsage: true,
	RunE:         runChat,
}

func init() {
	rootCmd.Flags().StringVar(&providerFlag, "provider", "", "LLM provider (gemini, anthropic, openai); overrides LLM_PROVIDER")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "model name; overrides LLM_MODEL")
	rootCmd.Flags().StringVar(&catalogFlag, "catalog", "", "YAML teacher catalog; overrides TEACHER_CATALOG_PATH")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "log to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if providerFlag != "" {
		_ = os.Setenv("LLM_PROVIDER", strings.ToLower(providerFlag))
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.LLMModel = modelFlag
	}
	if catalogFlag != "" {
		cfg.TeacherCatalogPath = catalogFlag
	}

	log := logger.NewNop()
	if verboseFlag {
		if log, err = logger.NewDevelopment(); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}
	logger.SetGlobal(log)

	catalog, err := app.LoadDirectory(cfg)
	if err != nil {
		return err
	}

	gateway := app.NewGateway(ctx, cfg, log)
	if !gateway.Available() {
		fmt.Fprintln(cmd.ErrOrStderr(), "aviso: sin credencial para el modelo, se usarán respuestas de reserva")
	}

	store := lead.NewStore()
	engine := conversation.New(uuid.Must(uuid.NewV7()).String(), gateway, catalog, store, conversation.WithLogger(log))

	return newREPL(engine, store, cmd.InOrStdin(), cmd.OutOrStdout()).run(ctx)
}
