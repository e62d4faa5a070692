// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/reelmatch/internal/accounts"
	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/session"
)

const (
	testAdminToken = "operator-secret-token"
	validAadhaar   = "123456789012"
)

type fakeCatalog struct {
	mu        sync.Mutex
	snap      *catalog.Snapshot
	loadErr   error
	reloadErr error
	reloads   int
}

func (f *fakeCatalog) Load(context.Context) (*catalog.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.snap == nil {
		return nil, catalog.ErrDataUnavailable
	}
	return f.snap, nil
}

func (f *fakeCatalog) Reload(context.Context) (*catalog.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	if f.reloadErr != nil {
		return nil, f.reloadErr
	}
	return f.snap, nil
}

func (f *fakeCatalog) Snapshot() (*catalog.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.snap != nil
}

type fakeRecommender struct {
	resp      *recommend.Response
	err       error
	lastTitle string
	lastK     int
}

func (f *fakeRecommender) Recommendations(_ context.Context, title string, k int) (*recommend.Response, error) {
	f.lastTitle, f.lastK = title, k
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	movies := []catalog.Movie{
		{ID: 19995, Title: "Avatar"},
		{ID: 285, Title: "Pirates of the Caribbean: At World's End"},
		{ID: 206647, Title: "Spectre"},
		{ID: 49026, Title: "The Dark Knight Rises"},
	}
	matrix := [][]float64{
		{1, 0.2, 0.1, 0.3},
		{0.2, 1, 0.4, 0.1},
		{0.1, 0.4, 1, 0.5},
		{0.3, 0.1, 0.5, 1},
	}
	snap, err := catalog.NewSnapshot(movies, matrix)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

type testServer struct {
	handler  http.Handler
	catalog  *fakeCatalog
	recs     *fakeRecommender
	sessions *session.Manager
}

type serverOptions struct {
	dob        string
	adminToken string
	maxK       int
	chi        *ChiMiddlewareConfig
}

func createTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, o serverOptions) *testServer {
	t.Helper()

	dob, err := session.NewSimulatedDOB(o.dob)
	if err != nil {
		t.Fatal(err)
	}
	creds := accounts.NewStore(createTestBadgerDB(t), accounts.Config{BcryptCost: bcrypt.MinCost, MinPasswordLength: 8})
	mgr, err := session.NewManager(session.NewMemoryStore(), dob, creds, nil, session.Config{TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	tokens, err := session.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	cat := &fakeCatalog{snap: testSnapshot(t)}
	recs := &fakeRecommender{resp: &recommend.Response{Query: "Avatar", Items: []recommend.Item{}}}

	chiCfg := o.chi
	if chiCfg == nil {
		chiCfg = DefaultChiMiddlewareConfig()
		chiCfg.RateLimitDisabled = true
	}

	h := NewHandler(HandlerDeps{
		Catalog:    cat,
		Recs:       recs,
		Sessions:   mgr,
		Tokens:     tokens,
		AdminToken: o.adminToken,
		MaxK:       o.maxK,
	})
	return &testServer{
		handler:  NewRouter(h, enforcer, chiCfg).SetupChi(),
		catalog:  cat,
		recs:     recs,
		sessions: mgr,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

// do sends a request through the router. body may be empty.
func (s *testServer) do(t *testing.T, method, target, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
		}
	}
	return w, env
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

// startSession returns a fresh bearer token.
func (s *testServer) startSession(t *testing.T) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/session", "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /session status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil || resp.Token == "" {
		t.Fatalf("session token missing: %v", err)
	}
	return resp.Token
}

// registeredSession walks a new session to registered.
func (s *testServer) registeredSession(t *testing.T, email string) string {
	t.Helper()
	token := s.startSession(t)
	if w, _ := s.do(t, http.MethodPost, "/api/v1/session/age", token, `{"aadhaar":"`+validAadhaar+`"}`); w.Code != http.StatusOK {
		t.Fatalf("age status = %d, body %s", w.Code, w.Body.String())
	}
	if w, _ := s.do(t, http.MethodPost, "/api/v1/session/register", token, `{"email":"`+email+`","password":"password-123"}`); w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	return token
}
