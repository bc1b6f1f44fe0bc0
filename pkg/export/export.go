package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wbprivacy/pkg/weibo"
)

// Format selects the on-disk representation of an exported listing
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a command-line format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid export format %q: valid values are text, json", s)
	}
}

// Writer exports a listed batch of posts to a file
type Writer struct {
	format Format
}

// NewWriter creates an export writer for the given format
func NewWriter(format Format) *Writer {
	return &Writer{format: format}
}

// WriteFile exports the posts to path atomically: the content lands in a
// temporary file first and is renamed into place, so a crash never leaves a
// half-written export behind.
func (w *Writer) WriteFile(path string, userID string, posts []weibo.Post) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	err = w.Write(out, userID, posts)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write export: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close export file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Write exports the posts to an arbitrary writer (stdout for `list` without
// an output file)
func (w *Writer) Write(out io.Writer, userID string, posts []weibo.Post) error {
	switch w.format {
	case FormatJSON:
		return writeJSON(out, userID, posts)
	default:
		return writeText(out, userID, posts)
	}
}

func writeText(out io.Writer, userID string, posts []weibo.Post) error {
	if _, err := fmt.Fprintf(out, "# posts for user %s (%d total)\n", userID, len(posts)); err != nil {
		return err
	}

	for i, post := range posts {
		line := fmt.Sprintf("%d\t%s", i+1, post.ID)
		if post.CreatedAt != "" {
			line += "\t" + post.CreatedAt
		}
		if post.Text != "" {
			line += "\t" + flatten(post.Text)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	return nil
}

func writeJSON(out io.Writer, userID string, posts []weibo.Post) error {
	doc := struct {
		UserID string       `json:"user_id"`
		Total  int          `json:"total"`
		Posts  []weibo.Post `json:"posts"`
	}{
		UserID: userID,
		Total:  len(posts),
		Posts:  posts,
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// flatten collapses newlines so each post stays on one line in text exports
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
