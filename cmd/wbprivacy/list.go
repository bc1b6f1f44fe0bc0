package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"wbprivacy/pkg/config"
	"wbprivacy/pkg/export"
	"wbprivacy/pkg/logger"
	"wbprivacy/pkg/ui"
)

var (
	// list command flags
	listCookie     string
	listCookieFile string
	listAccount    string
	listMaxPages   int
	listOutput     string
	listFormat     string
)

// listPostsCmd represents the list command
var listPostsCmd = &cobra.Command{
	Use:   "list <uid>",
	Short: "List all posts of a user without changing anything",
	Long: `Fetch every post of the given user page by page and print them, or
write them to a file with --output.

The listing walks the same pages the hide command would, so it doubles as a
preview of which posts a batch would touch.`,
	Example: `  # Print all posts to stdout
  wbprivacy list 7654321

  # Save the listing as JSON
  wbprivacy list 7654321 --output posts.json --format json

  # Only the first three pages
  wbprivacy list 7654321 --max-pages 3`,
	Args: cobra.ExactArgs(1),
	Run:  runList,
}

func init() {
	rootCmd.AddCommand(listPostsCmd)

	listPostsCmd.Flags().StringVar(&listCookie, "cookie", "", "raw session cookie blob")
	listPostsCmd.Flags().StringVar(&listCookieFile, "cookie-file", "", "file containing the session cookie")
	listPostsCmd.Flags().StringVarP(&listAccount, "account", "a", "", "use specific stored account")
	listPostsCmd.Flags().IntVar(&listMaxPages, "max-pages", 0, "maximum pages to list (0 = all)")
	listPostsCmd.Flags().StringVarP(&listOutput, "output", "o", "", "write the listing to a file instead of stdout")
	listPostsCmd.Flags().StringVar(&listFormat, "format", "text", "output format (text, json)")
}

func runList(cmd *cobra.Command, args []string) {
	userID := strings.TrimSpace(args[0])

	format, err := export.ParseFormat(listFormat)
	if err != nil {
		ui.PrintError("Invalid format", err.Error())
		os.Exit(1)
	}

	flags := make(map[string]interface{})
	if listCookie != "" {
		flags["cookie"] = listCookie
	}
	if listCookieFile != "" {
		flags["cookie-file"] = listCookieFile
	}
	if listMaxPages > 0 {
		flags["max-pages"] = listMaxPages
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

	client, err := newClient(cfg, listAccount)
	if err != nil {
		ui.PrintError("Failed to create client", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	posts, err := client.FetchAllPosts(ctx, userID, cfg.Batch.MaxPages)
	if err != nil {
		logger.WithError(err).WithField("user_id", userID).Error("listing failed")
		ui.PrintError("LISTING FAILED", err.Error())
		os.Exit(1)
	}

	writer := export.NewWriter(format)

	outputFile := listOutput
	if outputFile == "" {
		outputFile = cfg.Output.File
	}

	if outputFile != "" {
		if err := writer.WriteFile(outputFile, userID, posts); err != nil {
			ui.PrintError("Failed to write output", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess(fmt.Sprintf("Wrote %d posts to %s", len(posts), outputFile))
		return
	}

	if err := writer.Write(os.Stdout, userID, posts); err != nil {
		ui.PrintError("Failed to write listing", err.Error())
		os.Exit(1)
	}
}
