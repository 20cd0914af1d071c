package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// InstallationID is the installation every fake repository belongs to.
const InstallationID = 42

// CommentServer is an in-memory GitHub serving the issue comments of
// owner/repo plus the GitHub App endpoints:
//   - GET   /repos/owner/repo/issues/comments (paginated with Link headers)
//   - GET   /repos/owner/repo/issues/comments/{id}
//   - PATCH /repos/owner/repo/issues/comments/{id}
//   - GET   /repos/owner/repo/installation
//   - POST  /app/installations/{id}/access_tokens
type CommentServer struct {
	mu       sync.Mutex
	comments []*gh.IssueComment
	srv      *httptest.Server

	// PerPage caps page size regardless of the per_page query.
	PerPage int
	// FailEdits makes PATCH fail with 422 for these comment IDs.
	FailEdits map[int64]bool
	// Edits records the IDs of successfully edited comments, in order.
	Edits []int64
	// Auth records the Authorization header of every request.
	Auth []string
}

// NewMockGitHubClient returns a go-github client backed by a CommentServer
// seeded with bodies keyed by comment ID. The returned cleanup function must
// be called to close the server.
func NewMockGitHubClient(bodies map[int64]string, order ...int64) (*gh.Client, *CommentServer, func()) {
	cs := &CommentServer{PerPage: 100, FailEdits: map[int64]bool{}}
	for _, id := range order {
		cs.comments = append(cs.comments, &gh.IssueComment{ID: gh.Int64(id), Body: gh.String(bodies[id])})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues/comments", cs.list)
	mux.HandleFunc("/repos/owner/repo/issues/comments/", cs.single)
	mux.HandleFunc("/repos/owner/repo/installation", func(w http.ResponseWriter, r *http.Request) {
		cs.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"id": InstallationID})
	})
	mux.HandleFunc(fmt.Sprintf("/app/installations/%d/access_tokens", InstallationID), func(w http.ResponseWriter, r *http.Request) {
		cs.record(r)
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"token":      "ghs_installation",
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	})

	cs.srv = httptest.NewServer(mux)

	client := gh.NewClient(cs.srv.Client())
	client.BaseURL = cs.BaseURL()
	client.UploadURL = cs.BaseURL()

	cleanup := func() { cs.srv.Close() }
	return client, cs, cleanup
}

// BaseURL is the API root of the fake server.
func (cs *CommentServer) BaseURL() *url.URL {
	base, _ := url.Parse(cs.srv.URL + "/")
	return base
}

// Body returns the current body of a comment.
func (cs *CommentServer) Body(id int64) string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, c := range cs.comments {
		if c.GetID() == id {
			return c.GetBody()
		}
	}
	return ""
}

func (cs *CommentServer) record(r *http.Request) {
	cs.mu.Lock()
	cs.Auth = append(cs.Auth, r.Header.Get("Authorization"))
	cs.mu.Unlock()
}

func (cs *CommentServer) list(w http.ResponseWriter, r *http.Request) {
	cs.record(r)
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	perPage := cs.PerPage
	if n, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && n > 0 && n < perPage {
		perPage = n
	}
	page := 1
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		page = n
	}

	start := (page - 1) * perPage
	end := min(start+perPage, len(cs.comments))
	items := []*gh.IssueComment{}
	if start < len(cs.comments) {
		items = cs.comments[start:end]
	}

	if end < len(cs.comments) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<%s%s>; rel="next"`, cs.srv.URL, next.RequestURI()))
	}
	writeJSON(w, http.StatusOK, items)
}

func (cs *CommentServer) single(w http.ResponseWriter, r *http.Request) {
	cs.record(r)
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/repos/owner/repo/issues/comments/"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	var comment *gh.IssueComment
	for _, c := range cs.comments {
		if c.GetID() == id {
			comment = c
		}
	}
	if comment == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, comment)
	case http.MethodPatch:
		if cs.FailEdits[id] {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
			return
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		comment.Body = gh.String(req.Body)
		cs.Edits = append(cs.Edits, id)
		writeJSON(w, http.StatusOK, comment)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
