// Command todo keeps a task list from the terminal.
//
// Usage:
//
//	todo [-config path] [-list name] [-v] <command> [args]
//
// Commands:
//
//	add <text...>                add a task at the top of the list
//	toggle <id>                  mark a task done, or active again
//	rm <id>                      remove a task
//	clear                        remove every done task
//	ls [all|active|done]         show tasks
//	stats                        show counts
//	find <query...> [-filter f]  search task text
//	lists                        show the lists in the store
//
// Ids may be shortened to any unique prefix.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vinayprograms/todokit/config"
	"github.com/vinayprograms/todokit/logging"
	"github.com/vinayprograms/todokit/telemetry"
	"github.com/vinayprograms/todokit/todo"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: todo [-config path] [-list name] [-v] <command> [args]")
	fmt.Fprintln(w, "commands: add, toggle, rm, clear, ls, stats, find, lists")
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		usage(stderr)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "config file (default: ./todo.toml, then ~/.config/todo/todo.toml)")
	listName := fs.String("list", "", "list name (default: the configured list)")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() == 0 {
		usage(stderr)
		return ExitUsage
	}

	cfg, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "todo: %v\n", err)
		return ExitFailure
	}
	if *listName != "" {
		cfg.Store.List = *listName
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "todo: %v\n", err)
		return ExitUsage
	}

	logger := logging.New().WithComponent("todo")
	logger.SetOutput(stderr)
	level, _ := logging.ParseLevel(cfg.Log.Level)
	if *verbose {
		level = logging.LevelDebug
	}
	logger.SetLevel(level)

	tracer, shutdown := setupTelemetry(cfg.Telemetry, logger)
	defer shutdown()

	kv, closeKV, err := openBackend(cfg.Store)
	if err != nil {
		fmt.Fprintf(stderr, "todo: open %s store: %v\n", cfg.Store.Backend, err)
		return ExitFailure
	}
	defer closeKV()

	store := todo.NewStore(kv,
		todo.WithKey(cfg.Store.Key()),
		todo.WithLogger(logger),
		todo.WithTracer(tracer),
	)
	store.Load()

	app := &app{
		store:  store,
		kv:     kv,
		stdout: stdout,
		stderr: stderr,
	}
	return app.dispatch(fs.Arg(0), fs.Args()[1:])
}

// setupTelemetry installs an OTLP provider when an endpoint is configured.
// Export problems are logged and never stop the command.
func setupTelemetry(cfg config.TelemetryConfig, logger *logging.Logger) (*telemetry.Tracer, func()) {
	if cfg.Endpoint == "" {
		return telemetry.GetTracer(), func() {}
	}

	provider, err := telemetry.InitProvider(context.Background(), telemetry.ProviderConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Endpoint,
		Protocol:    cfg.Protocol,
		Insecure:    cfg.Insecure,
		Debug:       cfg.Debug,
	})
	if err != nil {
		logger.Warn("telemetry_disabled", map[string]interface{}{"error": err.Error()})
		return telemetry.GetTracer(), func() {}
	}

	return provider.Tracer(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("telemetry_shutdown_failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
