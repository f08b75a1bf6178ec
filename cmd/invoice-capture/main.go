package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"invoice-capture/internal/extract"
	"invoice-capture/internal/invoice"
	"invoice-capture/internal/pdftext"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("invoice-capture")
	var (
		inDir        = fs.StringLong("in", "./inbox", "Directory holding source documents")
		outPath      = fs.StringLong("out", "invoices.csv", "CSV output path")
		processedDir = fs.StringLong("processed", "", "Directory to move processed sources into (optional)")
		registryPath = fs.StringLong("registry", "", "Supplier registry JSON path (optional, built-in table by default)")
		serve        = fs.BoolLong("serve", "Run the review HTTP server instead of a one-shot batch")
		port         = fs.IntLong("port", 8080, "HTTP server port")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_CAPTURE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Load the supplier registry
	var registry *extract.Registry
	var err error
	if *registryPath != "" {
		slog.Info("Loading supplier registry", "path", *registryPath)
		registry, err = extract.LoadRegistry(*registryPath)
	} else {
		registry = extract.DefaultRegistry()
	}
	if err != nil {
		slog.Error("Failed to load supplier registry", "error", err)
		os.Exit(1)
	}

	engine, err := extract.NewEngine(registry, slog.Default())
	if err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}

	service := invoice.NewService(pdftext.NewFitzReader(), engine, engine.Resolver())
	mover := invoice.NewMover()

	if *serve {
		runServer(service, mover, *port, *authUser, *authPass)
		return
	}

	if err := runBatch(service, mover, *inDir, *outPath, *processedDir); err != nil {
		slog.Error("Batch failed", "error", err)
		os.Exit(1)
	}
}

// runBatch processes every document in inDir and writes the CSV to outPath.
func runBatch(service *invoice.Service, mover *invoice.Mover, inDir, outPath, processedDir string) error {
	paths, err := sourcePaths(inDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		slog.Info("No documents found", "dir", inDir)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := service.ProcessPaths(ctx, paths)
	if err != nil {
		slog.Warn("Batch interrupted", "error", err, "records", len(records))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := invoice.WriteCSV(out, records); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	slog.Info("Wrote CSV", "path", outPath, "records", len(records))

	if processedDir == "" {
		return nil
	}

	// Relocate sources whose record came out clean. Anything that errored
	// stays in place for another attempt.
	byName := make(map[string]string, len(paths))
	for _, p := range paths {
		byName[filepath.Base(p)] = p
	}
	for _, r := range records {
		if r.IsError() {
			continue
		}
		src, ok := byName[r.FileName]
		if !ok {
			continue
		}
		target := filepath.Join(processedDir, r.FileName)
		if err := mover.Move(src, target); err != nil {
			slog.Error("Failed to move processed file", "source", src, "error", err)
		}
	}
	return nil
}

// sourcePaths lists the PDF and text documents in dir, sorted by name.
func sourcePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".txt":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// runServer starts the review HTTP server and blocks until interrupted.
func runServer(service *invoice.Service, mover *invoice.Mover, port int, authUser, authPass string) {
	basicAuth := invoice.BasicAuth{
		Username: authUser,
		Password: authPass,
	}
	server := invoice.NewServer(service, mover, basicAuth)

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if authUser != "" || authPass != "" {
		slog.Info("Basic auth enabled", "user", authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
