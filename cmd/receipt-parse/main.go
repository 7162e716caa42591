package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/hsatools/receipt-parse/internal/receipt"
	"github.com/hsatools/receipt-parse/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// A .env file is optional; deployments normally set the environment
	// directly
	godotenv.Load()

	fs := ff.NewFlagSet("receipt-parse")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		scannerType   = fs.StringLong("scanner", "claude", "Scanner type: 'claude' or 'tesseract'")
		claudeKey     = fs.StringLong("claude-key", "", "Anthropic API key (or set CLAUDE_API_KEY env var)")
		claudeModel   = fs.StringLong("claude-model", scanning.DefaultClaudeModel, "Claude model name")
		tesseractBin  = fs.StringLong("tesseract", "tesseract", "Tesseract binary name or path")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		vendors       = fs.StringLong("vendors", strings.Join(scanning.DefaultVendors, ","), "Comma-separated vendor names the tesseract scanner recognizes")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PARSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// The scanner is chosen once at startup; there is no per-request
	// strategy switching
	var scanner scanning.Scanner
	switch *scannerType {
	case "claude":
		apiKey := *claudeKey
		if apiKey == "" {
			apiKey = os.Getenv("CLAUDE_API_KEY")
		}
		slog.Info("Initializing Claude scanner...", "model", *claudeModel)
		s, err := scanning.NewClaude(apiKey, *claudeModel)
		if err != nil {
			slog.Error("Failed to initialize Claude. Set --claude-key flag or CLAUDE_API_KEY environment variable", "error", err)
			os.Exit(1)
		}
		scanner = s
	case "tesseract":
		slog.Info("Initializing Tesseract scanner...", "binary", *tesseractBin, "lang", *tesseractLang)
		scanner = scanning.NewTesseract(*tesseractBin, *tesseractLang, splitVendors(*vendors))
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "claude or tesseract")
		os.Exit(1)
	}
	defer scanner.Close()

	service := receipt.NewService(scanner)
	server := receipt.NewServer(service, receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	})

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "scanner", *scannerType)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func splitVendors(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
