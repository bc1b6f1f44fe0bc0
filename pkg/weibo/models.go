package weibo

import (
	"encoding/json"
	"fmt"
)

// PostID is a post identifier. The platform delivers it as either a JSON
// number or a JSON string; it is kept as text because the numeric form
// exceeds float64-safe integer range.
type PostID string

// UnmarshalJSON accepts both encodings. Numeric tokens are taken verbatim
// from the wire (json.Number, never float64), so there is no precision loss
// and no scientific notation.
func (id *PostID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty post id token")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid post id string: %w", err)
		}
		*id = PostID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post id is neither string nor number: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

// Post is a single post returned by the listing endpoint. Immutable once
// fetched.
type Post struct {
	ID        PostID `json:"id"`
	Text      string `json:"text,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// listEnvelope wraps one page of posts
type listEnvelope struct {
	OK   int      `json:"ok"`
	Data listData `json:"data"`
}

type listData struct {
	List []Post `json:"list"`
}

// modifyEnvelope wraps a visibility mutation response. Both fields are
// optional: the platform omits the envelope entirely on some successful
// responses.
type modifyEnvelope struct {
	OK  *int   `json:"ok"`
	Msg string `json:"msg"`
}
