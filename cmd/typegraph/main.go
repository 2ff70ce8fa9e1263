package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanpama/typegraph/internal/config"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/logging"
	"github.com/hanpama/typegraph/internal/modelfile"
	"github.com/hanpama/typegraph/internal/otel"
	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/server"
	"github.com/hanpama/typegraph/internal/shop"
	"go.uber.org/zap"
)

const rootUsage = `typegraph — GraphQL schema compiler & demo server

USAGE:
  typegraph <command> [flags]

COMMANDS:
  serve            Run the demo shop over HTTP
  sdl              Compile a YAML model (or the demo shop) and print its SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>                      YAML configuration file; flags override it
  -server.addr <addr>                 HTTP listen address (default: :8080)
  -server.pretty                      Pretty-print JSON responses
  -server.timeout <duration>          Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>            Request body limit (default: 1048576)
  -server.cors-origin <origin>        Allowed CORS origin. Repeatable
  -server.forward-header <name>       Expose HTTP header to resolvers. Repeatable
  -graphql.introspection <bool>       Enable GraphQL introspection (default: true)
  -graphql.graphiql <bool>            Serve GraphiQL on GET (default: true)
  -log.level <level>                  debug, info, warn or error (default: info)
  -log.format <format>                console or json (default: console)
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: typegraph)
`

const sdlUsage = `sdl FLAGS:
  -model <file>   YAML model to compile (default: the demo shop)
  -out  <file>    Write SDL to file (default: stdout)
  (Resolvers are not required; exits non-zero on compile errors)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return errors.New("missing command")
	}

	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "sdl":
		return cmdSDL(cmdArgs, stdout, stderr)
	case "help", "-h", "-help", "--help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "sdl":
		fmt.Fprint(stdout, sdlUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// serveConfig parses serve flags over the configuration file named by
// -config. Only flags given on the command line override the file.
func serveConfig(args []string) (config.Config, error) {
	fromFlags := config.Default()
	var cors, forward stringListFlag
	configPath := ""

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&configPath, "config", configPath, "YAML configuration file")
	fs.StringVar(&fromFlags.Server.Addr, "server.addr", fromFlags.Server.Addr, "HTTP listen address")
	fs.BoolVar(&fromFlags.Server.Pretty, "server.pretty", fromFlags.Server.Pretty, "Pretty-print JSON responses")
	fs.DurationVar(&fromFlags.Server.Timeout, "server.timeout", fromFlags.Server.Timeout, "Per-request timeout")
	fs.Int64Var(&fromFlags.Server.MaxBodyBytes, "server.max-body", fromFlags.Server.MaxBodyBytes, "Request body limit")
	fs.Var(&cors, "server.cors-origin", "Allowed CORS origin")
	fs.Var(&forward, "server.forward-header", "Expose HTTP header to resolvers")
	fs.BoolVar(&fromFlags.Server.Introspection, "graphql.introspection", fromFlags.Server.Introspection, "Enable GraphQL introspection")
	fs.BoolVar(&fromFlags.Server.GraphiQL, "graphql.graphiql", fromFlags.Server.GraphiQL, "Serve GraphiQL")
	fs.StringVar(&fromFlags.Log.Level, "log.level", fromFlags.Log.Level, "Log level")
	fs.StringVar(&fromFlags.Log.Format, "log.format", fromFlags.Log.Format, "Log format")
	fs.StringVar(&fromFlags.Otel.Endpoint, "otel.endpoint", fromFlags.Otel.Endpoint, "OTLP collector endpoint")
	fs.StringVar(&fromFlags.Otel.Service, "otel.service", fromFlags.Otel.Service, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	fromFlags.Server.CORSOrigins = cors
	fromFlags.Server.ForwardHeaders = forward
	if configPath == "" {
		return fromFlags, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	overrides := map[string]func(){
		"server.addr":           func() { cfg.Server.Addr = fromFlags.Server.Addr },
		"server.pretty":         func() { cfg.Server.Pretty = fromFlags.Server.Pretty },
		"server.timeout":        func() { cfg.Server.Timeout = fromFlags.Server.Timeout },
		"server.max-body":       func() { cfg.Server.MaxBodyBytes = fromFlags.Server.MaxBodyBytes },
		"server.cors-origin":    func() { cfg.Server.CORSOrigins = fromFlags.Server.CORSOrigins },
		"server.forward-header": func() { cfg.Server.ForwardHeaders = fromFlags.Server.ForwardHeaders },
		"graphql.introspection": func() { cfg.Server.Introspection = fromFlags.Server.Introspection },
		"graphql.graphiql":      func() { cfg.Server.GraphiQL = fromFlags.Server.GraphiQL },
		"log.level":             func() { cfg.Log.Level = fromFlags.Log.Level },
		"log.format":            func() { cfg.Log.Format = fromFlags.Log.Format },
		"otel.endpoint":         func() { cfg.Otel.Endpoint = fromFlags.Otel.Endpoint },
		"otel.service":          func() { cfg.Otel.Service = fromFlags.Otel.Service },
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})
	return cfg, nil
}

func serverOptions(cfg config.ServerConfig) []server.Option {
	opts := []server.Option{
		server.WithTimeout(cfg.Timeout),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithIntrospection(cfg.Introspection),
		server.WithGraphiQL(cfg.GraphiQL),
	}
	if cfg.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if len(cfg.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(cfg.CORSOrigins...))
	}
	if len(cfg.ForwardHeaders) > 0 {
		opts = append(opts, server.WithForwardHeaders(cfg.ForwardHeaders...))
	}
	return opts
}

func cmdServe(args []string, stderr io.Writer) error {
	cfg, err := serveConfig(args)
	if err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())
	defer logging.Register(logger)()
	shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	store := shop.Demo()
	sch, err := shop.Registry(store).Compile(registry.WithDefaultResolvers())
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	h, err := server.New(sch, append(serverOptions(cfg.Server), server.WithRequestContext(shop.Authenticate(store)))...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening", zap.String("addr", cfg.Server.Addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func cmdSDL(args []string, stdout, stderr io.Writer) error {
	modelPath := ""
	outFile := ""
	fs := flag.NewFlagSet("sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&modelPath, "model", modelPath, "YAML model to compile")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, sdlUsage)
		return err
	}

	reg := shop.Registry(shop.NewStore())
	if modelPath != "" {
		m, err := modelfile.ReadFile(modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		reg = m.Registry()
	}
	sch, err := reg.Compile(registry.SkipResolverValidation())
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if outFile == "" {
		_, err := io.WriteString(stdout, sch.SDL())
		return err
	}
	return os.WriteFile(outFile, []byte(sch.SDL()), 0o644)
}
