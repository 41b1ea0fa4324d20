// Command mediactl is the admin CLI: database migrations and orphan sweeps.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	dbfs "github.com/caronelabs/mediad/db"
	"github.com/caronelabs/mediad/internal/config"
	"github.com/caronelabs/mediad/internal/db"
	"github.com/caronelabs/mediad/internal/logger"
	"github.com/caronelabs/mediad/internal/version"
)

type cliOptions struct {
	configPath  string
	apiBaseURL  string
	timeout     time.Duration
	showVersion bool
}

func main() {
	opts, args := parseFlags()
	if opts.showVersion {
		fmt.Printf("mediactl %s\n", version.GetInfo())
		return
	}
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	switch args[0] {
	case "migrate":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "migrate requires a command: up, down, version, force N")
			os.Exit(2)
		}
		if err := runMigrate(cfg, args[1], args[2:]); err != nil {
			logger.Error("migrate failed", "error", err)
			os.Exit(1)
		}
	case "sweep":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "sweep requires a media kind: image, video, audio, document")
			os.Exit(2)
		}
		if err := runSweep(opts, cfg, args[1]); err != nil {
			logger.Error("sweep failed", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		usage()
		os.Exit(2)
	}
}

func parseFlags() (cliOptions, []string) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "path to config.toml")
	flag.StringVar(&opts.apiBaseURL, "api", "", "mediad API base URL (default derived from server addr)")
	flag.DurationVar(&opts.timeout, "timeout", 60*time.Second, "HTTP request timeout")
	flag.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	flag.Parse()
	return opts, flag.Args()
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: mediactl [flags] <command>

commands:
  migrate up|down|version|force N    run database migrations
  sweep <kind>                       delete orphaned files for a kind

flags:`)
	flag.PrintDefaults()
}

func runMigrate(cfg config.Config, command string, args []string) error {
	migrationsFS, err := fs.Sub(dbfs.MigrationsFS, "migrations")
	if err != nil {
		return err
	}
	return db.RunMigrate(logger.L, cfg.Postgres, migrationsFS, command, args)
}

func runSweep(opts cliOptions, cfg config.Config, kind string) error {
	baseURL := strings.TrimSpace(opts.apiBaseURL)
	if baseURL == "" {
		baseURL = defaultAPIBaseURL(cfg.Server.Addr)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Post(fmt.Sprintf("%s/api/media/sweep/%s", baseURL, kind), "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sweep %s: %s: %s", kind, resp.Status, strings.TrimSpace(string(body)))
	}

	var result struct {
		Removed []string `json:"removed"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	fmt.Printf("removed %d orphaned file(s)\n", len(result.Removed))
	for _, path := range result.Removed {
		fmt.Printf("  %s\n", path)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d file(s) could not be swept", len(result.Errors))
	}
	return nil
}

func defaultAPIBaseURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	return "http://" + addr
}
