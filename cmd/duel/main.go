package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/levanminh04/Network-Programming/internal/config"
	"github.com/levanminh04/Network-Programming/internal/session"
	"github.com/levanminh04/Network-Programming/internal/statusapi"
	"github.com/levanminh04/Network-Programming/internal/storage"
	"github.com/levanminh04/Network-Programming/internal/version"
	"github.com/levanminh04/Network-Programming/pkg/logger"
)

type flags struct {
	configPath  string
	debug       bool
	status      bool
	showVersion bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(args []string) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if f.showVersion {
		fmt.Printf("duel %s\n", version.Rich())
		return nil
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if f.debug {
		level = logger.LevelDebug
	}
	logger.SetLevel(level)
	defer func() { _ = logger.Sync() }()
	if f.status {
		cfg.Status.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storage.Options{
		Kind:          cfg.Session.Store,
		SQLitePath:    cfg.Session.SQLitePath,
		RedisAddr:     cfg.Session.RedisAddr,
		RedisPassword: cfg.Session.RedisPassword,
		RedisDB:       cfg.Session.RedisDB,
		SessionTTL:    cfg.Session.TTL,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Session.Store, err)
	}

	mgr, err := session.New(session.Options{Config: cfg, Store: store})
	if err != nil {
		_ = store.Close()
		return err
	}

	logger.Infof("duel %s connecting to %s", version.Rich(), cfg.Server.URL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mgr.Run(gctx)
	})
	if cfg.Status.Enabled {
		api := statusapi.New(mgr, statusapi.Options{Local: cfg.IsLocal()})
		g.Go(func() error {
			return api.Run(gctx, cfg.Status.Addr)
		})
	}
	g.Go(func() error {
		defer stop()
		return newREPL(mgr, os.Stdin, os.Stdout).Run(gctx)
	})
	return g.Wait()
}

func parseFlags(args []string, out io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("duel", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML or HuJSON config file")
	fs.BoolVar(&f.debug, "debug", false, "Log at debug level")
	fs.BoolVar(&f.status, "status", false, "Serve the local status API")
	fs.BoolVar(&f.showVersion, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if fs.NArg() > 0 {
		return flags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}
