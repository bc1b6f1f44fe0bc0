package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
)

// mockPost is one post as served by the mock listing endpoint. The ID is
// emitted as a JSON number, the way the real endpoint serves it.
type mockPost struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Update records one visibility mutation the mock server accepted
type Update struct {
	PostID  string
	Visible string
}

// MockWeiboServer simulates the Weibo web API endpoints used by the client:
// paginated post listing and per-post visibility mutation. Failures can be
// injected per endpoint to exercise the retry and error paths.
type MockWeiboServer struct {
	server *httptest.Server

	listRequests   int32
	modifyRequests int32

	mu sync.Mutex
	// pages holds the listing fixture; page numbers beyond the slice return
	// an empty list, which terminates pagination
	pages [][]mockPost
	// listFailures makes the next N listing requests answer 503
	listFailures int
	// listEnvelopeCode, when non-zero, is returned as the listing envelope's
	// ok value on every request
	listEnvelopeCode int
	// modifyFailures maps post IDs to an error message returned in a
	// failure envelope (ok: -100)
	modifyFailures map[string]string
	// modifyTransientFailures maps post IDs to a count of 500 responses to
	// serve before succeeding
	modifyTransientFailures map[string]int
	// modifyGarbage maps post IDs that get a 200 with a non-JSON body
	modifyGarbage map[string]bool

	updated  []Update
	lastXSRF string
}

// NewMockWeiboServer starts a mock server with the given listing fixture
func NewMockWeiboServer(pages [][]mockPost) *MockWeiboServer {
	m := &MockWeiboServer{
		pages:                   pages,
		modifyFailures:          make(map[string]string),
		modifyTransientFailures: make(map[string]int),
		modifyGarbage:           make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ajax/statuses/mymblog", m.handleList)
	mux.HandleFunc("/ajax/statuses/modifyVisible", m.handleModify)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *MockWeiboServer) handleList(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.listRequests, 1)

	m.mu.Lock()
	m.lastXSRF = r.Header.Get("X-Xsrf-Token")
	if m.listFailures > 0 {
		m.listFailures--
		m.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	envelopeCode := m.listEnvelopeCode
	pages := m.pages
	m.mu.Unlock()

	if envelopeCode != 0 {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ok":%d,"data":{"list":[]}}`, envelopeCode)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var list []mockPost
	if page <= len(pages) {
		list = pages[page-1]
	}
	if list == nil {
		list = []mockPost{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":   1,
		"data": map[string]interface{}{"list": list},
	})
}

func (m *MockWeiboServer) handleModify(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.modifyRequests, 1)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	postID := r.PostForm.Get("ids")
	visible := r.PostForm.Get("visible")

	m.mu.Lock()
	defer m.mu.Unlock()

	if remaining := m.modifyTransientFailures[postID]; remaining > 0 {
		m.modifyTransientFailures[postID] = remaining - 1
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if m.modifyGarbage[postID] {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>not json</html>")
		m.updated = append(m.updated, Update{PostID: postID, Visible: visible})
		return
	}

	if msg, ok := m.modifyFailures[postID]; ok {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ok":-100,"msg":%q}`, msg)
		return
	}

	m.updated = append(m.updated, Update{PostID: postID, Visible: visible})
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"ok":1}`)
}

// URL returns the base URL of the mock server
func (m *MockWeiboServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockWeiboServer) Close() {
	m.server.Close()
}

// SetListFailures makes the next n listing requests answer 503
func (m *MockWeiboServer) SetListFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listFailures = n
}

// SetListEnvelopeCode makes every listing request succeed at the HTTP layer
// but carry the given non-success ok value
func (m *MockWeiboServer) SetListEnvelopeCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listEnvelopeCode = code
}

// FailModify makes mutations for the given post return a failure envelope
func (m *MockWeiboServer) FailModify(postID, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modifyFailures[postID] = msg
}

// FailModifyTransiently makes the first n mutations for the given post
// answer 500 before succeeding
func (m *MockWeiboServer) FailModifyTransiently(postID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modifyTransientFailures[postID] = n
}

// GarbageModifyBody makes mutations for the given post return 200 with a
// body that is not JSON
func (m *MockWeiboServer) GarbageModifyBody(postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modifyGarbage[postID] = true
}

// Updated returns the mutations the server accepted, in order
func (m *MockWeiboServer) Updated() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Update, len(m.updated))
	copy(out, m.updated)
	return out
}

// LastXSRFToken returns the X-Xsrf-Token header of the most recent listing
// request
func (m *MockWeiboServer) LastXSRFToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastXSRF
}

// ListRequests returns the number of listing requests received
func (m *MockWeiboServer) ListRequests() int {
	return int(atomic.LoadInt32(&m.listRequests))
}

// ModifyRequests returns the number of mutation requests received
func (m *MockWeiboServer) ModifyRequests() int {
	return int(atomic.LoadInt32(&m.modifyRequests))
}
