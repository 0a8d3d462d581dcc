package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/prepared/internal/catalog"
	"github.com/mind-engage/prepared/internal/db"
	"github.com/mind-engage/prepared/internal/quiz"
	"github.com/mind-engage/prepared/internal/results"
	"github.com/mind-engage/prepared/internal/storage"
	syncx "github.com/mind-engage/prepared/internal/sync"
	"github.com/mind-engage/prepared/internal/viewer"
	"github.com/mind-engage/prepared/internal/workspace"
)

type testServer struct {
	*httptest.Server
	cat     *catalog.Catalog
	blobDir string
	ws      *workspace.Workspace
	rs      results.Store
}

func newTestServer(t *testing.T, cat *catalog.Catalog) *testServer {
	return newTestServerWithStore(t, cat, results.NewInMemoryStore())
}

func newTestServerWithStore(t *testing.T, cat *catalog.Catalog, rs results.Store) *testServer {
	t.Helper()
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			t.Fatal(err)
		}
	}
	dir := t.TempDir()
	bs, err := storage.NewFSStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ws := workspace.New(cat)
	r := chi.NewRouter()
	Mount(r, Deps{Workspace: ws, Results: rs, Blobs: bs})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, cat: cat, blobDir: dir, ws: ws, rs: rs}
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, s.URL+path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, b)
	}
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(t, "GET", "/healthz", ""), 200)
	expectStatus(t, s.do(t, "GET", "/readyz", ""), 200)
}

func TestListModules(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, "GET", "/modules", "")
	expectStatus(t, resp, 200)
	var list []catalog.Summary
	decode(t, resp, &list)
	if len(list) != s.cat.Len() || list[0].ID != "earthquake" {
		t.Fatalf("summaries: %+v", list)
	}
}

func TestGetModuleHidesAnswerKey(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, "GET", "/modules/flood", "")
	expectStatus(t, resp, 200)
	raw, _ := io.ReadAll(resp.Body)
	if bytes.Contains(raw, []byte("correct_option_index")) || bytes.Contains(raw, []byte("explanation")) {
		t.Fatalf("answer key leaked: %s", raw)
	}
	var mv moduleView
	if err := json.Unmarshal(raw, &mv); err != nil {
		t.Fatal(err)
	}
	if mv.ID != "flood" || len(mv.Questions) != 5 || mv.Questions[0].Options[3].Label != "D" {
		t.Fatalf("module view: %+v", mv)
	}

	expectStatus(t, s.do(t, "GET", "/modules/volcano", ""), 404)
}

func TestDownloadDocumentFromBlobStore(t *testing.T) {
	s := newTestServer(t, nil)
	if err := os.MkdirAll(filepath.Join(s.blobDir, "pdfs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.blobDir, "pdfs", "flood-emergency-kit.pdf"), []byte("%PDF kit"), 0o644); err != nil {
		t.Fatal(err)
	}
	resp := s.do(t, "GET", "/modules/flood/documents/flood-emergency-kit", "")
	expectStatus(t, resp, 200)
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type %q", ct)
	}
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "%PDF kit" {
		t.Errorf("body %q", b)
	}

	// document listed in the catalog but never uploaded
	expectStatus(t, s.do(t, "GET", "/modules/flood/documents/flood-insurance-guide", ""), 404)
	expectStatus(t, s.do(t, "GET", "/modules/flood/documents/nope", ""), 404)
}

func TestDownloadDocumentRedirectsRemote(t *testing.T) {
	m := catalog.Module{
		ID: "heat", Title: "Heat",
		Documents: []catalog.DocumentItem{{ID: "guide", Title: "Guide", PageCount: 2, DownloadRef: "https://docs.example.org/heat.pdf"}},
		Questions: []catalog.QuizQuestion{{ID: "q1", Prompt: "p", Options: []string{"a", "b", "c", "d"}}},
	}
	cat, err := catalog.New([]catalog.Module{m})
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, cat)
	resp := s.do(t, "GET", "/modules/heat/documents/guide", "")
	expectStatus(t, resp, http.StatusFound)
	if loc := resp.Header.Get("Location"); loc != "https://docs.example.org/heat.pdf" {
		t.Fatalf("location %q", loc)
	}
}

func TestViewRoutesNeedOpenModule(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(t, "GET", "/learners/ana/view", ""), http.StatusConflict)
	expectStatus(t, s.do(t, "GET", "/learners/ana/view/quiz", ""), http.StatusConflict)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{"module_id":"volcano"}`), 404)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{}`), 400)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{`), 400)
}

func TestTabsAndMedia(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{"module_id":"flood"}`), 200)

	resp := s.do(t, "PUT", "/learners/ana/view/tab", `{"tab":"media"}`)
	expectStatus(t, resp, 200)
	var st viewer.State
	decode(t, resp, &st)
	if st.ActiveTab != viewer.TabMedia || st.ModuleID != "flood" {
		t.Fatalf("state: %+v", st)
	}
	expectStatus(t, s.do(t, "PUT", "/learners/ana/view/tab", `{"tab":"videos"}`), 400)

	resp = s.do(t, "POST", "/learners/ana/view/media/flood-car-safety", "")
	expectStatus(t, resp, 200)
	st = viewer.State{}
	decode(t, resp, &st)
	if st.OpenMedia == nil || st.OpenMedia.ID != "flood-car-safety" || st.ActiveTab != viewer.TabMedia {
		t.Fatalf("open media: %+v", st)
	}
	expectStatus(t, s.do(t, "POST", "/learners/ana/view/media/eq-nope", ""), 404)

	resp = s.do(t, "DELETE", "/learners/ana/view/media", "")
	expectStatus(t, resp, 200)
	st = viewer.State{}
	decode(t, resp, &st)
	if st.OpenMedia != nil {
		t.Fatalf("media still open: %+v", st)
	}

	expectStatus(t, s.do(t, "DELETE", "/learners/ana/view", ""), http.StatusNoContent)
	expectStatus(t, s.do(t, "GET", "/learners/ana/view", ""), http.StatusConflict)
}

func TestQuizFlowRecordsResult(t *testing.T) {
	s := newTestServer(t, nil)
	flood, _ := s.cat.Module("flood")
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{"module_id":"flood"}`), 200)

	expectStatus(t, s.do(t, "POST", "/learners/ana/view/quiz/answer", `{"option_index":9}`), 400)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view/quiz/answer", `{}`), 400)
	expectStatus(t, s.do(t, "GET", "/learners/ana/view/quiz/results", ""), http.StatusConflict)

	var last advanceResponse
	for i, q := range flood.Questions {
		resp := s.do(t, "POST", "/learners/ana/view/quiz/answer", `{"option_index":`+itoa(q.CorrectOptionIndex)+`}`)
		expectStatus(t, resp, 200)
		var snap quiz.Snapshot
		decode(t, resp, &snap)
		if snap.Question == nil || snap.Question.Number != i+1 || snap.Question.Selected == nil {
			t.Fatalf("q%d snapshot: %+v", i, snap)
		}

		resp = s.do(t, "POST", "/learners/ana/view/quiz/advance", "")
		expectStatus(t, resp, 200)
		last = advanceResponse{}
		decode(t, resp, &last)
		if i < len(flood.Questions)-1 && last.Results != nil {
			t.Fatalf("results before last question: %+v", last)
		}
	}
	if last.Quiz.State != "completed" || last.Results == nil || last.Results.Percentage != 100 || !last.Results.CertificateEligible {
		t.Fatalf("final advance: %+v", last)
	}
	if last.ResultID == "" {
		t.Fatal("result not recorded")
	}

	expectStatus(t, s.do(t, "POST", "/learners/ana/view/quiz/advance", ""), http.StatusConflict)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view/quiz/answer", `{"option_index":0}`), http.StatusConflict)

	resp := s.do(t, "GET", "/learners/ana/view/quiz/results", "")
	expectStatus(t, resp, 200)
	var res quiz.Results
	decode(t, resp, &res)
	if res.Correct != 5 || res.Tier != quiz.TierExcellent || len(res.Items) != 5 {
		t.Fatalf("results: %+v", res)
	}

	resp = s.do(t, "GET", "/learners/ana/results", "")
	expectStatus(t, resp, 200)
	var hist []results.Result
	decode(t, resp, &hist)
	if len(hist) != 1 || hist[0].ID != last.ResultID || hist[0].ModuleID != "flood" || hist[0].Percentage != 100 {
		t.Fatalf("history: %+v", hist)
	}

	resp = s.do(t, "GET", "/learners/ana/dashboard", "")
	expectStatus(t, resp, 200)
	var d results.Dashboard
	decode(t, resp, &d)
	if d.Attempts != 1 || d.Certificates != 1 || d.ModulesCompleted != 1 || len(d.Modules) != s.cat.Len() {
		t.Fatalf("dashboard: %+v", d)
	}

	// reset starts a fresh attempt without touching history
	resp = s.do(t, "POST", "/learners/ana/view/quiz/reset", "")
	expectStatus(t, resp, 200)
	var snap quiz.Snapshot
	decode(t, resp, &snap)
	if snap.State != "in_progress" || snap.Answered != 0 || snap.Question == nil || snap.Question.Number != 1 {
		t.Fatalf("after reset: %+v", snap)
	}
	if got, _ := s.rs.List(context.Background(), results.ListOpts{LearnerID: "ana"}); len(got) != 1 {
		t.Fatalf("history after reset: %d", len(got))
	}
}

func TestLearnersDoNotShareViews(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{"module_id":"fire"}`), 200)
	expectStatus(t, s.do(t, "GET", "/learners/ben/view", ""), http.StatusConflict)

	resp := s.do(t, "GET", "/learners/ben/dashboard", "")
	expectStatus(t, resp, 200)
	var d results.Dashboard
	decode(t, resp, &d)
	if d.LearnerID != "ben" || d.Attempts != 0 {
		t.Fatalf("dashboard: %+v", d)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestCompletionIsPersistedAndLogged(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dbh.Close() })

	cat, _ := catalog.Default()
	bs, _ := storage.NewFSStore(t.TempDir())
	r := chi.NewRouter()
	Mount(r, Deps{
		Workspace: workspace.New(cat),
		Results:   results.NewSQLStore(dbh),
		Blobs:     bs,
		DB:        dbh,
		Events:    syncx.NewEventRepo(dbh, "site-7"),
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	s := &testServer{Server: ts, cat: cat}

	expectStatus(t, s.do(t, "GET", "/readyz", ""), 200)
	expectStatus(t, s.do(t, "POST", "/learners/ana/view", `{"module_id":"first-aid"}`), 200)
	fa, _ := cat.Module("first-aid")
	var last advanceResponse
	// skip every question: the attempt still completes with a zero score
	for range fa.Questions {
		resp := s.do(t, "POST", "/learners/ana/view/quiz/advance", "")
		expectStatus(t, resp, 200)
		last = advanceResponse{}
		decode(t, resp, &last)
	}
	if last.Results == nil || last.Results.Correct != 0 || last.Results.Tier != quiz.TierReview || last.ResultID == "" {
		t.Fatalf("final advance: %+v", last)
	}

	resp := s.do(t, "GET", "/sync/events?after=0", "")
	expectStatus(t, resp, 200)
	var events []syncx.Event
	decode(t, resp, &events)
	if len(events) != 1 || events[0].Type != syncx.TypeAttemptCompleted || events[0].Key != last.ResultID || events[0].SiteID != "site-7" {
		t.Fatalf("events: %+v", events)
	}

	resp = s.do(t, "GET", "/learners/ana/results?module=first-aid", "")
	expectStatus(t, resp, 200)
	var hist []results.Result
	decode(t, resp, &hist)
	if len(hist) != 1 || hist[0].ID != last.ResultID || len(hist[0].Answers) != 0 {
		t.Fatalf("history: %+v", hist)
	}
}

func TestSyncEventsHiddenWithoutLog(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(t, "GET", "/sync/events", ""), 404)
}
