package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wbprivacy/pkg/batch"
	"wbprivacy/pkg/checkpoint"
	"wbprivacy/pkg/config"
	"wbprivacy/pkg/logger"
	"wbprivacy/pkg/ui"
	"wbprivacy/pkg/weibo"
)

var (
	// hide command flags
	hideCookie       string
	hideCookieFile   string
	hideAccount      string
	hideVisibility   string
	hideMaxPages     int
	hideItemDelay    time.Duration
	hideMaxRetries   int
	hideSkip         int
	hideLimit        int
	hideDryRun       bool
	hideYes          bool
	hideResume       bool
	hideForceRestart bool
)

// hideCmd represents the hide command
var hideCmd = &cobra.Command{
	Use:   "hide <uid>",
	Short: "Set the visibility of all posts of a user",
	Long: `List every post of the given user and set each one to the requested
visibility level.

Posts are processed strictly one at a time with a fixed pause between
mutations. A post that fails to update is reported and the batch continues;
the summary at the end lists every failed post.

Visibility levels: public, friends, private, fans`,
	Example: `  # Make every post friends-only
  wbprivacy hide 7654321 --visibility friends

  # Preview without changing anything
  wbprivacy hide 7654321 --visibility private --dry-run

  # Limit to the 50 oldest of the first 10 pages
  wbprivacy hide 7654321 --max-pages 10 --skip 0 --limit 50

  # Resume an interrupted batch
  wbprivacy hide 7654321 --visibility friends --resume`,
	Args: cobra.ExactArgs(1),
	Run:  runHide,
}

func init() {
	rootCmd.AddCommand(hideCmd)

	hideCmd.Flags().StringVar(&hideCookie, "cookie", "", "raw session cookie blob")
	hideCmd.Flags().StringVar(&hideCookieFile, "cookie-file", "", "file containing the session cookie")
	hideCmd.Flags().StringVarP(&hideAccount, "account", "a", "", "use specific stored account")
	hideCmd.Flags().StringVar(&hideVisibility, "visibility", "friends", "target visibility (public, friends, private, fans)")
	hideCmd.Flags().IntVar(&hideMaxPages, "max-pages", 0, "maximum pages to list (0 = all)")
	hideCmd.Flags().DurationVar(&hideItemDelay, "delay", time.Second, "pause between post updates")
	hideCmd.Flags().IntVar(&hideMaxRetries, "max-retries", 3, "maximum attempts per request")
	hideCmd.Flags().IntVar(&hideSkip, "skip", 0, "skip the first N listed posts")
	hideCmd.Flags().IntVar(&hideLimit, "limit", 0, "update at most N posts (0 = no limit)")
	hideCmd.Flags().BoolVar(&hideDryRun, "dry-run", false, "list posts but change nothing")
	hideCmd.Flags().BoolVarP(&hideYes, "yes", "y", false, "skip the confirmation prompt")
	hideCmd.Flags().BoolVar(&hideResume, "resume", false, "resume from last checkpoint")
	hideCmd.Flags().BoolVar(&hideForceRestart, "force-restart", false, "discard any existing checkpoint")
}

func runHide(cmd *cobra.Command, args []string) {
	userID := strings.TrimSpace(args[0])

	visibility, err := weibo.ParseVisibility(hideVisibility)
	if err != nil {
		ui.PrintError("Invalid visibility", err.Error())
		os.Exit(1)
	}

	flags := make(map[string]interface{})
	if hideCookie != "" {
		flags["cookie"] = hideCookie
	}
	if hideCookieFile != "" {
		flags["cookie-file"] = hideCookieFile
	}
	if hideMaxPages > 0 {
		flags["max-pages"] = hideMaxPages
	}
	if cmd.Flags().Changed("delay") {
		flags["item-delay"] = hideItemDelay
	}
	if hideMaxRetries != 3 {
		flags["max-attempts"] = hideMaxRetries
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("wbprivacy starting")

	client, err := newClient(cfg, hideAccount)
	if err != nil {
		ui.PrintError("Failed to create client", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Target user", userID)
	ui.PrintInfo("Visibility", visibility.String())
	if hideDryRun {
		ui.PrintWarning("Dry run: no posts will be changed")
	}

	if !hideYes && !hideDryRun && !confirm(fmt.Sprintf("Set ALL matching posts of user %s to %q?", userID, visibility.String())) {
		ui.PrintWarning("Aborted")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(client, cfg.Batch.ItemDelay, logger.GetLogger())

	if !hideDryRun {
		mgr, err := checkpoint.NewManager(userID)
		if err != nil {
			ui.PrintWarning("Checkpointing disabled", err.Error())
		} else {
			runner.SetCheckpointManager(mgr)
		}
	}

	summary, err := runner.Run(ctx, userID, visibility, batch.Options{
		MaxPages:     cfg.Batch.MaxPages,
		Skip:         hideSkip,
		Limit:        hideLimit,
		DryRun:       hideDryRun,
		Resume:       hideResume,
		ForceRestart: hideForceRestart,
	})
	if err != nil {
		logger.WithError(err).WithField("user_id", userID).Error("batch failed")
		if summary != nil {
			printSummary(summary)
			ui.PrintWarning("Batch interrupted; rerun with --resume to continue")
		}
		ui.PrintError("BATCH FAILED", err.Error())
		os.Exit(1)
	}

	printSummary(summary)
	if summary.Failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d posts could not be updated", summary.Failed))
		os.Exit(1)
	}
	if !summary.DryRun {
		ui.PrintSuccess("All posts updated")
	}
}

func printSummary(summary *batch.Summary) {
	fmt.Println()
	ui.PrintHighlight("Batch summary")
	ui.PrintInfo("Listed", fmt.Sprintf("%d", summary.Listed))
	ui.PrintInfo("Selected", fmt.Sprintf("%d", summary.Selected))
	if summary.DryRun {
		ui.PrintInfo("Would update", fmt.Sprintf("%d", summary.Selected))
		return
	}
	ui.PrintInfo("Updated", fmt.Sprintf("%d", summary.Updated))
	ui.PrintInfo("Skipped", fmt.Sprintf("%d", summary.Skipped))
	ui.PrintInfo("Failed", fmt.Sprintf("%d", summary.Failed))
	ui.PrintInfo("Duration", summary.Duration.Round(time.Second).String())

	for _, failure := range summary.Failures {
		ui.PrintError("  "+failure.PostID, failure.Message)
	}
}

// confirm asks a yes/no question on the terminal, defaulting to no
func confirm(question string) bool {
	fmt.Printf("%s (y/N): ", question)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y")
}
