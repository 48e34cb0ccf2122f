package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docuflow/dataapi/pkg/config"
	"github.com/docuflow/dataapi/pkg/dataapi"
	"github.com/docuflow/dataapi/pkg/health"
	"github.com/docuflow/dataapi/pkg/observability/logger"
	"github.com/docuflow/dataapi/pkg/resilience"
	"github.com/docuflow/dataapi/pkg/version"
)

// Options defines the service-specific knobs for the CLI.
type Options struct {
	Name        string
	Description string
	ConfigPath  string
	EnvPrefix   string

	// Transport overrides the dispatcher's transport (used by tests).
	Transport dataapi.Transport

	// Optional: additional custom commands
	CustomCommands []*cobra.Command
}

// operation maps one subcommand to a data API endpoint.
type operation struct {
	use      string
	short    string
	endpoint dataapi.Endpoint
}

var operations = []operation{
	{"find", "Find documents matching a query", dataapi.EndpointFind},
	{"find-one", "Find a single document matching a query", dataapi.EndpointFindOne},
	{"insert-one", "Insert a single document", dataapi.EndpointInsertOne},
	{"insert-many", "Insert multiple documents", dataapi.EndpointInsertMany},
	{"update-one", "Update a single document", dataapi.EndpointUpdateOne},
	{"update-many", "Update documents matching a filter", dataapi.EndpointUpdateMany},
	{"delete-one", "Delete a single document", dataapi.EndpointDeleteOne},
	{"delete-many", "Delete documents matching a filter", dataapi.EndpointDeleteMany},
}

// NewRootCommand creates the CLI with one subcommand per data API operation
// plus version, healthcheck, and config subcommands.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "DATAAPI"
	}

	rootCmd := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var cfgPath string
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", opts.ConfigPath, "config file path")

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Current(opts.Name)
			fmt.Printf("Service:    %s\n", info.Service)
			fmt.Printf("Version:    %s\n", info.Version)
			fmt.Printf("Commit:     %s\n", info.Commit)
			fmt.Printf("Build Time: %s\n", info.BuildTime)
		},
	})

	// operation commands
	for _, op := range operations {
		rootCmd.AddCommand(newOperationCommand(op, &cfgPath, opts))
	}

	// healthcheck command
	var probeCollection string
	healthCmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check connectivity to the data API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(cfgPath, opts.EnvPrefix)
			if err != nil {
				return err
			}
			dispatcher, err := newDispatcher(cfg, log, opts.Transport)
			if err != nil {
				return err
			}

			registry := health.NewRegistry()
			registry.Register(health.NewDataAPIChecker("data-api", dispatcher, probeCollection, cfg.DataAPI.RequestTimeout))

			result := registry.Check(cmd.Context())
			printJSON(cmd, result)
			if !result.IsHealthy() {
				return fmt.Errorf("data api is unhealthy")
			}
			return nil
		},
	}
	healthCmd.Flags().StringVar(&probeCollection, "collection", "healthcheck", "collection probed by the connectivity check")
	rootCmd.AddCommand(healthCmd)

	// config command
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.NewViperLoader(cfgPath, opts.EnvPrefix).Load(); err != nil {
				return err
			}
			cmd.Println("configuration is valid")
			return nil
		},
	})
	rootCmd.AddCommand(configCmd)

	for _, customCmd := range opts.CustomCommands {
		rootCmd.AddCommand(customCmd)
	}

	return rootCmd
}

func newOperationCommand(op operation, cfgPath *string, opts Options) *cobra.Command {
	var collection string
	var queryJSON string
	var headerFlags []string

	cmd := &cobra.Command{
		Use:   op.use,
		Short: op.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(*cfgPath, opts.EnvPrefix)
			if err != nil {
				return err
			}
			dispatcher, err := newDispatcher(cfg, log, opts.Transport)
			if err != nil {
				return err
			}

			query := dataapi.Query{}
			if queryJSON != "" {
				if err := json.Unmarshal([]byte(queryJSON), &query); err != nil {
					return fmt.Errorf("parse --query: %w", err)
				}
			}
			headers, err := parseHeaders(headerFlags)
			if err != nil {
				return err
			}

			req := dataapi.ForCollection(collection)
			req.SetEndpoint(op.endpoint)
			req.SetQuery(query)
			if len(headers) > 0 {
				req.SetHeaders(headers)
			}

			var result map[string]interface{}
			dispatch := func(ctx context.Context) error {
				var dispatchErr error
				result, dispatchErr = dispatcher.Dispatch(ctx, req)
				return dispatchErr
			}
			if cfg.DataAPI.RequestTimeout > 0 {
				err = resilience.WithTimeout(cmd.Context(), cfg.DataAPI.RequestTimeout, dispatch)
			} else {
				err = dispatch(cmd.Context())
			}
			if err != nil {
				return err
			}

			printJSON(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "target collection")
	cmd.Flags().StringVarP(&queryJSON, "query", "q", "", "operation parameters as a JSON object")
	cmd.Flags().StringArrayVar(&headerFlags, "header", nil, "additional header as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

func newDispatcher(cfg *config.Config, log logger.Logger, transport dataapi.Transport) (*dataapi.Dispatcher[dataapi.Endpoint], error) {
	opts := []dataapi.Option[dataapi.Endpoint]{
		dataapi.WithLogger[dataapi.Endpoint](log),
	}
	if transport != nil {
		opts = append(opts, dataapi.WithTransport[dataapi.Endpoint](transport))
	}
	return dataapi.NewDispatcher(dataapi.Config{
		BaseURL:    cfg.DataAPI.BaseURL,
		DataSource: cfg.DataAPI.DataSource,
		Database:   cfg.DataAPI.Database,
		APIKey:     cfg.DataAPI.APIKey,
	}, opts...)
}

func loadConfigAndLogger(cfgPath, envPrefix string) (*config.Config, logger.Logger, error) {
	cfg, err := config.NewViperLoader(cfgPath, envPrefix).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level, err := logger.ParseLogLevel(cfg.Observability.LogLevel)
	if err != nil {
		level = logger.InfoLevel
	}
	format, err := logger.ParseLogFormat(cfg.Observability.LogFormat)
	if err != nil {
		format = logger.JSONFormat
	}
	log, err := logger.NewZapLogger(logger.Config{Level: level, Format: format})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

func parseHeaders(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(flags))
	for _, flag := range flags {
		key, value, found := strings.Cut(flag, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --header %q, expected key=value", flag)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func printJSON(cmd *cobra.Command, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		cmd.PrintErrln(err)
		return
	}
	cmd.Println(string(data))
}

// Execute runs the command and exits with appropriate code.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
