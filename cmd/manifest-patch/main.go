// Command manifest-patch runs the Manifest Patcher (spec §4.10)
// independently of the downloader, either once or continuously in watch
// mode (SPEC_FULL §11.4).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	orcherrors "github.com/standardbeagle/rust-workshop-downloader/internal/errors"
	"github.com/standardbeagle/rust-workshop-downloader/internal/manifest"
	"github.com/standardbeagle/rust-workshop-downloader/internal/version"
	"github.com/standardbeagle/rust-workshop-downloader/internal/watchpatch"
)

func main() {
	app := &cli.App{
		Name:    "manifest-patch",
		Usage:   "splice newly downloaded Workshop items into AppWorkshop_<appid>.acf",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "shared Steam library root (contains steamapps/)", Value: "."},
			&cli.StringFlag{Name: "app-id", Usage: "Steam Workshop app id, overrides config/default"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "keep running, re-patching on every new item directory"},
			&cli.DurationFlag{Name: "debounce", Usage: "watch-mode debounce interval", Value: watchpatch.DefaultDebounce},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "manifest-patch:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	sharedRoot := c.String("dir")

	cfg, err := config.Load(sharedRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if id := c.String("app-id"); id != "" {
		cfg.AppID = id
	}

	if _, err := dbg.InitLogFile(sharedRoot); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}
	defer dbg.CloseLogFile()

	manifestPath := sharedRoot + "/steamapps/workshop/AppWorkshop_" + cfg.AppID + ".acf"
	contentRoot := sharedRoot + "/steamapps/workshop/content"

	if c.Bool("watch") {
		return runWatch(manifestPath, contentRoot, cfg.AppID, c.Duration("debounce"))
	}

	if err := manifest.Patch(manifestPath, contentRoot, cfg.AppID); err != nil {
		var merr *orcherrors.ManifestError
		if errors.As(err, &merr) && merr.Operation == "backup" && confirmRetryOnBackupFailure(err) {
			return manifest.Patch(manifestPath, contentRoot, cfg.AppID)
		}
		return err
	}

	fmt.Println("manifest patched:", manifestPath)
	return nil
}

func runWatch(manifestPath, contentRoot, appID string, debounce time.Duration) error {
	w, err := watchpatch.New(manifestPath, contentRoot, appID, debounce)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("watching", contentRoot, "for", appID, "- press Ctrl+C to stop")
	err = w.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// confirmRetryOnBackupFailure prompts the operator when a backup write
// failed (spec §4.10 "Failure handling"), asking whether to retry once
// before giving up.
func confirmRetryOnBackupFailure(cause error) bool {
	fmt.Fprintln(os.Stderr, "manifest patch failed:", cause)
	fmt.Print("retry once? (y/n): ")

	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}
