package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/config"
	"github.com/MrSnakeDoc/vidmark/internal/domain"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/options"
	"github.com/MrSnakeDoc/vidmark/internal/registry"
	"github.com/MrSnakeDoc/vidmark/internal/store/memory"
)

type testServer struct {
	*httptest.Server
	deps deps.Deps
	tree *browser.MemoryTree
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewNop()
	store := memory.New()
	opts := options.NewManager(store, log)
	grants := browser.NewGrantStore(store)
	tree := browser.NewMemoryTree()

	d := deps.Deps{
		Logger:       log,
		StartTime:    time.Now(),
		Version:      "test",
		Registry:     registry.New(opts, store, tree, grants, log),
		Options:      opts,
		Grants:       grants,
		StoreBackend: "memory",
	}
	cfg := &config.Config{AllowedOrigins: []string{"*"}, RequestTimeout: 5 * time.Second}

	srv := httptest.NewServer(NewRouter(cfg, log, d))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, deps: d, tree: tree}
}

// do sends a JSON request and decodes a JSON response into out when given.
func (s *testServer) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if code := s.do(t, http.MethodGet, "/healthz", "", &health); code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", code)
	}
	if health.Status != "ok" || health.Version != "test" {
		t.Errorf("healthz = %+v", health)
	}

	if code := s.do(t, http.MethodGet, "/readyz", "", nil); code != http.StatusOK {
		t.Errorf("GET /readyz = %d, want 200", code)
	}
}

func TestReadyzStoreDown(t *testing.T) {
	s := newTestServer(t)
	s.deps.StorePing = func(context.Context) error { return errors.New("connection refused") }
	cfg := &config.Config{AllowedOrigins: []string{"*"}}
	srv := httptest.NewServer(NewRouter(cfg, logger.NewNop(), s.deps))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz = %d, want 503", resp.StatusCode)
	}
}

func TestInfraReportsMirrorState(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	var infra struct {
		Mode string `json:"mode"`
	}
	s.do(t, http.MethodGet, "/infra", "", &infra)
	if infra.Mode != "operational" {
		t.Errorf("mode = %q, want operational", infra.Mode)
	}

	if err := s.deps.Options.Set(ctx, options.ManageBrowserBookmark, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.do(t, http.MethodGet, "/infra", "", &infra)
	if infra.Mode != "degraded" {
		t.Errorf("mode without permission = %q, want degraded", infra.Mode)
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		wantStatus  int
		description string
	}{
		{
			name:        "create",
			method:      http.MethodPost,
			path:        "/api/bookmarks",
			body:        `{"src":"a","baseUrl":"p","duration":100.4,"timestamp":0}`,
			wantStatus:  http.StatusCreated,
			description: "Fractional durations are rounded on create",
		},
		{
			name:        "create without src",
			method:      http.MethodPost,
			path:        "/api/bookmarks",
			body:        `{"baseUrl":"p","duration":1}`,
			wantStatus:  http.StatusBadRequest,
			description: "src is the key and cannot be empty",
		},
		{
			name:        "invalid json",
			method:      http.MethodPost,
			path:        "/api/bookmarks",
			body:        `{"src":`,
			wantStatus:  http.StatusBadRequest,
			description: "Malformed bodies are rejected",
		},
		{
			name:        "get",
			method:      http.MethodGet,
			path:        "/api/bookmarks/item?src=a",
			wantStatus:  http.StatusOK,
			description: "Stored bookmark is returned",
		},
		{
			name:        "get missing",
			method:      http.MethodGet,
			path:        "/api/bookmarks/item?src=zzz",
			wantStatus:  http.StatusNotFound,
			description: "Unknown src",
		},
		{
			name:        "get without src",
			method:      http.MethodGet,
			path:        "/api/bookmarks/item",
			wantStatus:  http.StatusBadRequest,
			description: "src query parameter is required",
		},
		{
			name:        "update duration mismatch",
			method:      http.MethodPut,
			path:        "/api/bookmarks",
			body:        `{"src":"a","baseUrl":"p","duration":101,"timestamp":5}`,
			wantStatus:  http.StatusConflict,
			description: "A different duration means a different video",
		},
		{
			name:        "update",
			method:      http.MethodPut,
			path:        "/api/bookmarks",
			body:        `{"src":"a","baseUrl":"p","duration":100,"timestamp":5}`,
			wantStatus:  http.StatusOK,
			description: "Same src and duration updates the position",
		},
		{
			name:        "delete",
			method:      http.MethodDelete,
			path:        "/api/bookmarks/item?src=a",
			wantStatus:  http.StatusNoContent,
			description: "Existing bookmark is removed",
		},
		{
			name:        "delete again",
			method:      http.MethodDelete,
			path:        "/api/bookmarks/item?src=a",
			wantStatus:  http.StatusNotFound,
			description: "Second delete finds nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := s.do(t, tt.method, tt.path, tt.body, nil); code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, code, tt.wantStatus, tt.description)
			}
		})
	}
}

func TestGuessAndToggle(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/bookmarks", `{"src":"a","baseUrl":"p","duration":100}`, nil)

	var check struct {
		IsBookmark bool   `json:"isBookmark"`
		GuessedSrc string `json:"guessedSrc"`
	}
	s.do(t, http.MethodPost, "/api/bookmarks/check", `{"src":"a2","baseUrl":"p","duration":100}`, &check)
	if !check.IsBookmark || check.GuessedSrc != "a" {
		t.Fatalf("check = %+v, want recognised as a", check)
	}

	var query []domain.VideoData
	s.do(t, http.MethodPost, "/api/bookmarks/query", `{"duration":100,"baseUrl":"p"}`, &query)
	if len(query) != 1 || query[0].Src != "a" {
		t.Errorf("query = %+v, want [a]", query)
	}

	var toggle struct {
		Bookmarked bool `json:"bookmarked"`
	}
	if code := s.do(t, http.MethodPost, "/api/bookmarks/toggle", `{"src":"a2","baseUrl":"p","duration":100}`, &toggle); code != http.StatusOK {
		t.Fatalf("toggle = %d, want 200", code)
	}
	if toggle.Bookmarked || s.deps.Registry.Len() != 0 {
		t.Errorf("toggle should have deleted the guessed bookmark, len=%d", s.deps.Registry.Len())
	}
}

func TestImportExportAndSweep(t *testing.T) {
	s := newTestServer(t)

	body := `[{"src":"a","baseUrl":"p","duration":10,"timestamp":10},{"src":"b","baseUrl":"p","duration":100,"timestamp":1}]`
	var count struct {
		Count int `json:"count"`
	}
	if code := s.do(t, http.MethodPost, "/api/bookmarks/import?clear=true", body, &count); code != http.StatusOK {
		t.Fatalf("import = %d, want 200", code)
	}
	if count.Count != 2 {
		t.Errorf("count = %d, want 2", count.Count)
	}

	if code := s.do(t, http.MethodPost, "/api/bookmarks/import?clear=maybe", body, nil); code != http.StatusBadRequest {
		t.Errorf("import with bad clear = %d, want 400", code)
	}

	var exported []domain.VideoData
	s.do(t, http.MethodGet, "/api/bookmarks", "", &exported)
	if len(exported) != 2 || exported[0].Src != "a" {
		t.Errorf("export = %+v", exported)
	}

	s.do(t, http.MethodPut, "/api/options/"+options.AutoDelete, `{"value":true}`, nil)

	var sweep struct {
		Removed int `json:"removed"`
	}
	s.do(t, http.MethodPost, "/api/bookmarks/sweep", "", &sweep)
	if sweep.Removed != 1 {
		t.Errorf("removed = %d, want 1", sweep.Removed)
	}

	s.do(t, http.MethodDelete, "/api/bookmarks", "", &count)
	if count.Count != 1 || s.deps.Registry.Len() != 0 {
		t.Errorf("delete all removed %d, len=%d", count.Count, s.deps.Registry.Len())
	}
}

func TestOptionsEndpoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "list", method: http.MethodGet, path: "/api/options", wantStatus: http.StatusOK},
		{name: "set", method: http.MethodPut, path: "/api/options/" + options.AutoDeleteTime, body: `{"value":30}`, wantStatus: http.StatusOK},
		{name: "set wrong type", method: http.MethodPut, path: "/api/options/" + options.AutoDelete, body: `{"value":"nope"}`, wantStatus: http.StatusBadRequest},
		{name: "set unknown", method: http.MethodPut, path: "/api/options/nope", body: `{"value":true}`, wantStatus: http.StatusNotFound},
		{name: "import", method: http.MethodPost, path: "/api/options/import?mode=reset", body: `{"video-manage-browser-bookmark":true}`, wantStatus: http.StatusOK},
		{name: "import bad mode", method: http.MethodPost, path: "/api/options/import?mode=merge", body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := s.do(t, tt.method, tt.path, tt.body, nil); code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, code, tt.wantStatus)
			}
		})
	}

	if got := s.deps.Options.Int(options.AutoDeleteTime); got != 10 {
		t.Errorf("reset import should restore defaults, got %d", got)
	}
	if !s.deps.Options.Bool(options.ManageBrowserBookmark) {
		t.Error("imported option should be applied")
	}
}

func TestPermissionsGateBrowserBookmarks(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPut, "/api/options/"+options.ManageBrowserBookmark, `{"value":true}`, nil)

	if code := s.do(t, http.MethodPut, "/api/permissions/camera", "", nil); code != http.StatusNotFound {
		t.Errorf("grant unknown capability = %d, want 404", code)
	}
	if code := s.do(t, http.MethodPut, "/api/permissions/bookmarks", "", nil); code != http.StatusNoContent {
		t.Fatalf("grant = %d, want 204", code)
	}

	var perms struct {
		Granted []string `json:"granted"`
	}
	s.do(t, http.MethodGet, "/api/permissions", "", &perms)
	if len(perms.Granted) != 1 || perms.Granted[0] != browser.PermissionBookmarks {
		t.Errorf("granted = %v", perms.Granted)
	}

	var created domain.VideoData
	s.do(t, http.MethodPost, "/api/bookmarks", `{"src":"a","baseUrl":"https://page","duration":60,"title":"Ep"}`, &created)
	if created.ExternalBookmarkID == nil {
		t.Fatal("created bookmark should carry an external id once permitted")
	}
	node, ok := s.tree.Get(*created.ExternalBookmarkID)
	if !ok || node.Title != "Ep | Sentio - Video-Bookmark" {
		t.Errorf("external node = %+v (found=%v)", node, ok)
	}

	if code := s.do(t, http.MethodDelete, "/api/permissions/bookmarks", "", nil); code != http.StatusNoContent {
		t.Fatalf("revoke = %d, want 204", code)
	}
	var unmirrored domain.VideoData
	s.do(t, http.MethodPost, "/api/bookmarks", `{"src":"b","baseUrl":"https://page","duration":61}`, &unmirrored)
	if unmirrored.ExternalBookmarkID != nil {
		t.Error("no external bookmark expected after revoking the permission")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, s.URL+"/api/bookmarks", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
