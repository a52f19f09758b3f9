// Command downloader is the Steam Workshop batch download orchestrator:
// it drives repeated steamcmd invocations across passes until the working
// set succeeds, is skipped, or exhausts the retry budget.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	"github.com/standardbeagle/rust-workshop-downloader/internal/ids"
	"github.com/standardbeagle/rust-workshop-downloader/internal/mcpserver"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
	"github.com/standardbeagle/rust-workshop-downloader/internal/proc"
	"github.com/standardbeagle/rust-workshop-downloader/internal/report"
	"github.com/standardbeagle/rust-workshop-downloader/internal/retry"
	"github.com/standardbeagle/rust-workshop-downloader/internal/scheduler"
	"github.com/standardbeagle/rust-workshop-downloader/internal/version"
)

const importedSkinsFilename = "ImportedSkins.json"

func main() {
	app := &cli.App{
		Name:    "downloader",
		Usage:   "batch-download Steam Workshop items across retry passes",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "working directory (contains steamcmd and ImportedSkins.json)", Value: "."},
			&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Usage: "max concurrent instances (skips the interactive prompt)"},
			&cli.BoolFlag{Name: "skip-existing", Usage: "skip items already present in the shared tree (skips the interactive prompt)"},
			&cli.BoolFlag{Name: "retry-failed-only", Usage: "only retry identifiers from a prior failed_ids.txt (skips the interactive prompt)"},
			&cli.BoolFlag{Name: "mcp", Usage: "serve an MCP status/control surface over stdio alongside the run"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "downloader:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	workDir := c.String("dir")

	cfg, err := config.Load(workDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg, c)

	binPath, err := proc.ResolveBinary(workDir)
	if err != nil {
		return err
	}

	skinsPath := workDir + "/" + importedSkinsFilename
	allIDs, titles, err := ids.ParseFileWithTitles(skinsPath)
	if err != nil {
		return fmt.Errorf("required input %s not found or unreadable: %w", skinsPath, err)
	}

	if _, err := dbg.InitLogFile(workDir); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}
	defer dbg.CloseLogFile()

	if err := promptRunChoices(cfg, c, workDir); err != nil {
		return err
	}

	om := outcome.NewMap()
	workingSet := selectWorkingSet(cfg, allIDs, titles, workDir, om)
	for _, id := range workingSet {
		om.Set(id, outcome.Unknown)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("mcp") {
		srv := mcpserver.New(cfg, om)
		go func() {
			if err := srv.Run(ctx); err != nil {
				dbg.Log("MCP", "server stopped: %v", err)
			}
		}()
	}

	if err := runPasses(ctx, cfg, binPath, workingSet, om); err != nil {
		return err
	}

	return report.Write(workDir, om.Snapshot())
}

func applyFlagOverrides(cfg *config.Config, c *cli.Context) {
	if c.IsSet("concurrency") {
		cfg.MaxConcurrentInstances = c.Int("concurrency")
	}
	if c.IsSet("skip-existing") {
		cfg.SkipExisting = c.Bool("skip-existing")
	}
	if c.IsSet("retry-failed-only") {
		cfg.RetryFailedOnly = c.Bool("retry-failed-only")
	}
}

// promptRunChoices reads the three interactive lines spec §6 describes,
// skipping any question already answered by a CLI flag.
func promptRunChoices(cfg *config.Config, c *cli.Context, workDir string) error {
	reader := bufio.NewReader(os.Stdin)

	if !c.IsSet("concurrency") {
		fmt.Print("max concurrent instances: ")
		line, _ := reader.ReadString('\n')
		if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && n > 0 {
			cfg.MaxConcurrentInstances = n
		}
	}

	if !c.IsSet("skip-existing") {
		fmt.Print("skip items already present in the shared tree? (y/n): ")
		line, _ := reader.ReadString('\n')
		cfg.SkipExisting = isYes(line)
	}

	failedPath := workDir + "/" + report.FailedIDsFilename
	if _, err := os.Stat(failedPath); err == nil && !c.IsSet("retry-failed-only") {
		fmt.Print("retry only previously failed identifiers? (y/n): ")
		line, _ := reader.ReadString('\n')
		cfg.RetryFailedOnly = isYes(line)
	}

	return nil
}

func isYes(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

// selectWorkingSet narrows allIDs down to the set this run will actually
// attempt. Every id dropped by the Include/Exclude filter or by
// SkipExisting is recorded as Skipped in om rather than silently
// omitted, so the Report Writer's totals (spec §8: success + skipped +
// retriable-failures == input-set size) stay correct.
func selectWorkingSet(cfg *config.Config, allIDs []string, titles map[string]string, workDir string, om *outcome.Map) []string {
	idList := allIDs
	if cfg.RetryFailedOnly {
		if failed, err := readFailedIDs(workDir); err == nil {
			idList = failed
		}
	}

	var filtered []string
	for _, id := range idList {
		if !cfg.Allowed(ids.PseudoPath(id, titles)) {
			om.Set(id, outcome.Skipped)
			continue
		}
		if cfg.SkipExisting && hasSharedFiles(cfg, id) {
			om.Set(id, outcome.Skipped)
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}

func readFailedIDs(workDir string) ([]string, error) {
	data, err := os.ReadFile(workDir + "/" + report.FailedIDsFilename)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func hasSharedFiles(cfg *config.Config, id string) bool {
	dir := cfg.SharedRoot + "/steamapps/workshop/content/" + cfg.AppID + "/" + id
	return dirHasFiles(dir)
}

func runPasses(ctx context.Context, cfg *config.Config, binPath string, workingSet []string, om *outcome.Map) error {
	ctrl := retry.NewController(cfg)
	anyRateLimit := false

	pass := 1
	current := workingSet

	for {
		dbg.LogScheduler("starting pass %d with %d identifiers at concurrency %d", pass, len(current), ctrl.Concurrency)

		onProgress := func(counts map[outcome.Outcome]int64, processed, total int64) {
			fmt.Printf("\rpass %d: %d/%d processed (success=%d)", pass, processed, total, counts[outcome.Success])
		}

		if err := scheduler.RunPass(ctx, cfg, binPath, current, pass, ctrl.Concurrency, om, onProgress); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}
		fmt.Println()

		if counts, _ := om.Counts(); counts[outcome.RateLimit] > 0 {
			anyRateLimit = true
		}

		failed := om.Failed()
		decision := retry.Decide(failed, pass, cfg.PassBudget())
		if decision == retry.Done {
			break
		}

		ctrl.PrepareRetry(cfg, om, failed, ctrl.Concurrency, &anyRateLimit, cfg.RateLimitBackoffSec)
		current = failed
		pass++
	}

	return nil
}

func dirHasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			if info, err := e.Info(); err == nil && info.Size() > 0 {
				return true
			}
		}
	}
	return false
}
