package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kush-Singh-26/shutter/builder/config"
	"github.com/Kush-Singh-26/shutter/builder/run"
	"github.com/Kush-Singh-26/shutter/internal/clean"
	newpost "github.com/Kush-Singh-26/shutter/internal/new"
	"github.com/Kush-Singh-26/shutter/internal/scaffold"
	"github.com/Kush-Singh-26/shutter/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "build":
		cfg := config.Load(args)
		err = run.Run(ctx, cfg, newLogger(cfg.Verbose))
	case "serve":
		opts, rest, perr := server.ParseFlags(args)
		if perr != nil {
			fmt.Printf("❌ %v\n", perr)
			os.Exit(2)
		}
		cfg := config.Load(rest)
		err = server.Run(ctx, cfg, opts, newLogger(cfg.Verbose))
	case "clean":
		cleanCache := false
		for _, arg := range args {
			if arg == "--cache" || arg == "-cache" {
				cleanCache = true
			}
		}
		err = clean.Run(config.Load(nil), cleanCache, true)
	case "new":
		_, err = newpost.Run(config.Load(nil), args, time.Now())
	case "init":
		err = scaffold.Run(".", time.Now())
	case "cache":
		err = handleCacheCommand(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("Command failed", "command", command, "error", err)
		stop()
		os.Exit(1)
	}
}

// newLogger installs the process-wide text logger.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func printUsage() {
	fmt.Println("Usage: shutter <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  build          Build the site into the output directory")
	fmt.Println("  serve          Build, serve and rebuild on changes")
	fmt.Println("  new <title>    Create a new draft post")
	fmt.Println("  init           Create a new project in the current directory")
	fmt.Println("  clean          Remove the output directory (--cache: and the build cache)")
	fmt.Println("  cache          Inspect or prune the build cache")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags for build and serve:")
	fmt.Println("  -baseurl URL   Override baseURL")
	fmt.Println("  -compress      Minify HTML, CSS and JS")
	fmt.Println("  -drafts        Render draft pages")
	fmt.Println("  -verbose       Debug logging")
	fmt.Println("  -config FILE   Site config (default shutter.yaml)")
	fmt.Println("\nFlags for serve:")
	fmt.Println("  -host HOST     Bind address (default localhost)")
	fmt.Println("  -port PORT     Port (default 2604)")
}
