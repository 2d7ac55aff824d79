package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"livedev/internal/config"
	"livedev/internal/logging"
	"livedev/internal/server"
	"livedev/internal/watcher"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	cfg   *config.Config
	watch bool
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("livedev", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: livedev [flags] [root]")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "key=value config file")
	host := fs.String("host", config.DefaultHost, "host to bind")
	port := fs.Int("port", config.DefaultPort, "port to bind, 0 picks a free one")
	live := fs.Bool("live", true, "inject the reload script and serve the event stream")
	fallback := fs.String("fallback", "", "file served for unknown routes, relative to root")
	tlsKey := fs.String("tls-key", "", "TLS private key file")
	tlsCert := fs.String("tls-cert", "", "TLS certificate file")
	selfSigned := fs.Bool("tls-self-signed", false, "serve HTTPS with a generated certificate")
	watch := fs.Bool("watch", false, "reload browsers when files below root change")
	metrics := fs.Bool("metrics", false, "expose Prometheus metrics next to the event stream")
	auth := fs.String("auth", "", "protect the site with basic auth, user:bcrypt-hash")
	logFormat := fs.String("log-format", "text", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	// Only explicitly passed flags override the file and the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "live":
			cfg.Live = *live
		case "fallback":
			cfg.Fallback = *fallback
		case "tls-key":
			tlsConfig(cfg).Key = *tlsKey
		case "tls-cert":
			tlsConfig(cfg).Cert = *tlsCert
		case "tls-self-signed":
			tlsConfig(cfg).SelfSigned = *selfSigned
		case "metrics":
			cfg.Metrics = *metrics
		case "auth":
			cfg.Auth = *auth
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})
	if fs.NArg() > 0 {
		cfg.Root = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &options{cfg: cfg, watch: *watch}, nil
}

func tlsConfig(cfg *config.Config) *config.TLSConfig {
	if cfg.TLS == nil {
		cfg.TLS = &config.TLSConfig{}
	}
	return cfg.TLS
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(stderr, opts.cfg.Log.Format == "json")

	srv, err := server.New(opts.cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.Banner = stdout

	g, gctx := errgroup.WithContext(ctx)

	if err := srv.Start(gctx); err != nil {
		return err
	}
	g.Go(srv.Wait)

	if opts.watch {
		w, err := watcher.New(srv.Root(), watcher.DefaultDebounce, func() { srv.Update() }, logger)
		if err != nil {
			srv.Close()
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Shutdown signal received", nil)
	return nil
}
