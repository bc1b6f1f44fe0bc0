package weibo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostIDUnmarshalNumber(t *testing.T) {
	// Larger than float64 can represent exactly; the digits must survive
	var post Post
	err := json.Unmarshal([]byte(`{"id": 123456789012345678}`), &post)
	require.NoError(t, err)
	assert.Equal(t, PostID("123456789012345678"), post.ID)
}

func TestPostIDUnmarshalString(t *testing.T) {
	var post Post
	err := json.Unmarshal([]byte(`{"id": "5012345678901234"}`), &post)
	require.NoError(t, err)
	assert.Equal(t, PostID("5012345678901234"), post.ID)
}

func TestPostIDUnmarshalInvalid(t *testing.T) {
	var post Post
	err := json.Unmarshal([]byte(`{"id": {"nested": true}}`), &post)
	assert.Error(t, err)
}

func TestListEnvelopeUnmarshal(t *testing.T) {
	body := `{
		"ok": 1,
		"data": {
			"list": [
				{"id": 123456789012345678, "text": "first", "created_at": "Mon Aug 25 10:00:00 +0800 2025"},
				{"id": "987654321", "text": "second"}
			]
		}
	}`

	var env listEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	assert.Equal(t, 1, env.OK)
	require.Len(t, env.Data.List, 2)
	assert.Equal(t, PostID("123456789012345678"), env.Data.List[0].ID)
	assert.Equal(t, "first", env.Data.List[0].Text)
	assert.Equal(t, PostID("987654321"), env.Data.List[1].ID)
}

func TestModifyEnvelopeOptionalFields(t *testing.T) {
	t.Run("full envelope", func(t *testing.T) {
		var env modifyEnvelope
		require.NoError(t, json.Unmarshal([]byte(`{"ok": 0, "msg": "operation too frequent"}`), &env))
		require.NotNil(t, env.OK)
		assert.Equal(t, 0, *env.OK)
		assert.Equal(t, "operation too frequent", env.Msg)
	})

	t.Run("missing ok flag", func(t *testing.T) {
		var env modifyEnvelope
		require.NoError(t, json.Unmarshal([]byte(`{"msg": "done"}`), &env))
		assert.Nil(t, env.OK)
	})

	t.Run("empty object", func(t *testing.T) {
		var env modifyEnvelope
		require.NoError(t, json.Unmarshal([]byte(`{}`), &env))
		assert.Nil(t, env.OK)
		assert.Empty(t, env.Msg)
	})
}
