package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbprivacy/pkg/weibo"
)

var samplePosts = []weibo.Post{
	{ID: "123456789012345678", Text: "first post\nwith a newline", CreatedAt: "Mon Aug 25 10:00:00 +0800 2025"},
	{ID: "987654321", Text: "second"},
	{ID: "555"},
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"":     FormatText,
		"text": FormatText,
		"txt":  FormatText,
		"JSON": FormatJSON,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatText).Write(&buf, "7654321", samplePosts))

	out := buf.String()
	assert.Contains(t, out, "# posts for user 7654321 (3 total)")
	assert.Contains(t, out, "1\t123456789012345678\tMon Aug 25 10:00:00 +0800 2025\tfirst post with a newline")
	assert.Contains(t, out, "2\t987654321\tsecond")
	assert.Contains(t, out, "3\t555")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON).Write(&buf, "7654321", samplePosts))

	var doc struct {
		UserID string       `json:"user_id"`
		Total  int          `json:"total"`
		Posts  []weibo.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "7654321", doc.UserID)
	assert.Equal(t, 3, doc.Total)
	require.Len(t, doc.Posts, 3)
	assert.Equal(t, weibo.PostID("123456789012345678"), doc.Posts[0].ID)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "posts.txt")

	require.NoError(t, NewWriter(FormatText).WriteFile(path, "7654321", samplePosts))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "123456789012345678")

	// No temp file left behind
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "posts.txt", entries[0].Name())
}

func TestWriteEmptyListing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatText).Write(&buf, "7654321", nil))
	assert.Contains(t, buf.String(), "(0 total)")
}
