package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdwit/spec2admin/internal/config"
	"github.com/mdwit/spec2admin/internal/generator"
	"github.com/mdwit/spec2admin/internal/logging"
	"github.com/mdwit/spec2admin/internal/parser"
	"github.com/mdwit/spec2admin/internal/resource"
	"github.com/mdwit/spec2admin/internal/session"
)

var (
	version = "dev"

	cfgFile             string
	output              string
	title               string
	baseURL             string
	maxDocumentSize     string
	sessionDir          string
	logLevel            string
	logFormat           string
	dropNestedRefs      bool
	ignoreDocumentBlock bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spec2admin [source]",
		Short: "Compile an annotated OpenAPI document into an admin resource registry",
		Long: `spec2admin reads an OpenAPI 3.x document whose operations carry x-admin
annotations, compiles it into a registry of resource descriptors and writes
a Markdown manifest of groups, actions and skipped operations.

Without a source argument the document saved in the session is used.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (spec2admin.json or spec2admin.toml)")
	flags.StringVarP(&baseURL, "base-url", "b", "", "base URL for API calls")
	flags.StringVar(&maxDocumentSize, "max-size", "", "maximum document size, e.g. 10MB")
	flags.StringVar(&sessionDir, "session-dir", "", "session directory")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	flags.BoolVar(&dropNestedRefs, "drop-nested-refs", false, "drop $ref nodes nested inside schemas")
	flags.BoolVar(&ignoreDocumentBlock, "ignore-document-block", false, "ignore the document-level x-admin block")

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output directory")
	rootCmd.Flags().StringVarP(&title, "title", "t", "", "manifest title")

	rootCmd.AddCommand(
		newResolveCmd(),
		newCallCmd(),
		newAdjustCmd(),
		newSessionCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	env, err := setup(args)
	if err != nil {
		return err
	}

	res, err := env.compile(cmd.Context(), nil)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d resources in %d groups, %d operations skipped\n",
		len(res.Registry.Resources()), res.Registry.Len(), len(res.Skipped))

	gen := generator.New(env.cfg, res)
	if err := gen.Generate(); err != nil {
		return fmt.Errorf("failed to generate: %w", err)
	}

	fmt.Printf("Generated manifest in %s\n", env.cfg.Output)
	return nil
}

// environment общее состояние команды: конфиг, логгер и хранилище сессии
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.FileStore
}

func setup(args []string) (*environment, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	logger := logging.New(&cfg.Logging)
	store, err := session.NewFileStore(cfg.SessionDir, logger)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, store: store}, nil
}

func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// CLI флаги переопределяют конфиг
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if output != "" {
		cfg.Output = output
	}
	if title != "" {
		cfg.Title = title
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxDocumentSize != "" {
		cfg.MaxDocumentSize = maxDocumentSize
	}
	if sessionDir != "" {
		cfg.SessionDir = sessionDir
	}
	cfg.Logging.Merge(&logging.Config{
		Level:  logging.Level(logLevel),
		Format: logging.Format(logFormat),
	})
	if dropNestedRefs {
		cfg.DropNestedRefs = true
	}
	if ignoreDocumentBlock {
		cfg.IgnoreDocumentBlock = true
	}

	return cfg, nil
}

func (e *environment) parseOptions(transport resource.Transport) (*parser.ParseOptions, error) {
	limit, err := e.cfg.MaxDocumentBytes()
	if err != nil {
		return nil, err
	}
	return &parser.ParseOptions{
		Logger:              e.logger,
		Transport:           transport,
		DropNestedRefs:      e.cfg.DropNestedRefs,
		IgnoreDocumentBlock: e.cfg.IgnoreDocumentBlock,
		MaxDocumentSize:     limit,
	}, nil
}

// document возвращает байты документа: из источника, а без него из сессии.
func (e *environment) document(ctx context.Context) ([]byte, error) {
	sourceErr := e.cfg.Validate()
	if sourceErr == nil {
		opts, err := e.parseOptions(nil)
		if err != nil {
			return nil, err
		}
		e.logger.Info("loading document", "source", e.cfg.Source)
		return parser.LoadSource(ctx, e.cfg.Source, opts)
	}

	s, err := session.Load(ctx, e.store)
	if err != nil {
		return nil, err
	}
	if len(s.Document) == 0 {
		return nil, sourceErr
	}
	e.logger.Info("using session document", "session", s.ID, "source", s.Source)
	return s.Document, nil
}

func (e *environment) compile(ctx context.Context, transport resource.Transport) (*parser.Result, error) {
	data, err := e.document(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := e.parseOptions(transport)
	if err != nil {
		return nil, err
	}

	res, err := parser.ParseData(data, opts)
	if err != nil {
		if errors.Is(err, parser.ErrSpecificationBuild) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}
	return res, nil
}
