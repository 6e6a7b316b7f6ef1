package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/stats"
	"github.com/dgallion1/docqa/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		WorkerCount:    1,
		MaxQueueSize:   8,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *store.Store) {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, st, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(st, orch, stats.New(time.Hour), log, cfg), st
}

func uploadFile(t *testing.T, srv *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// waitProcessed polls until the document is processed or the deadline hits.
func waitProcessed(t *testing.T, st *store.Store, docID string) *store.Document {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := st.GetDocument(context.Background(), docID)
		if err == nil && doc.Processed {
			return doc
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("document %s was not processed in time", docID)
	return nil
}

const uploadText = "The cat sat on the mat. It was a sunny day outside. The garden was full of flowers."

func TestUpload_TxtEndToEnd(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	rec := uploadFile(t, srv, "story.txt", uploadText)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		JobID  string `json:"job_id"`
		DocID  string `json:"doc_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)
	require.NotEmpty(t, resp.DocID)

	doc := waitProcessed(t, st, resp.DocID)
	assert.Equal(t, "story.txt", doc.Filename)
	assert.Equal(t, 18, doc.WordCount)
	assert.Contains(t, doc.Content, "The cat sat on the mat.")

	// Job status reflects completion; the job flips to completed just after
	// the row is marked processed, so allow a short grace period.
	deadline := time.Now().Add(time.Second)
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+resp.JobID, nil)
		statusRec := httptest.NewRecorder()
		srv.ServeHTTP(statusRec, req)
		require.Equal(t, http.StatusOK, statusRec.Code)
		if strings.Contains(statusRec.Body.String(), `"status":"completed"`) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed: %s", statusRec.Body.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestUpload_DuplicateReturnsExisting(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	first := uploadFile(t, srv, "story.txt", uploadText)
	require.Equal(t, http.StatusAccepted, first.Code)

	var resp struct {
		DocID string `json:"doc_id"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	waitProcessed(t, st, resp.DocID)

	second := uploadFile(t, srv, "story-again.txt", uploadText)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"status":"duplicate"`)
	assert.Contains(t, second.Body.String(), resp.DocID)
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	rec := uploadFile(t, srv, "malware.exe", "nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_MissingFile(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "no file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func createProcessedDocument(t *testing.T, st *store.Store, id, content string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, st.CreateDocument(ctx, &store.Document{
		ID: id, Filename: id + ".txt", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.SetDocumentContent(ctx, id, content, len(strings.Fields(content)), "hash-"+id))
}

func ask(t *testing.T, srv *Server, docID, question string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"question": question})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+docID+"/queries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestAsk_AnswersAndPersists(t *testing.T) {
	srv, st := newTestServer(t, testConfig())
	createProcessedDocument(t, st, "doc1", uploadText)

	rec := ask(t, srv, "doc1", "What did the sunny day bring?")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var q store.Query
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.True(t, strings.HasPrefix(q.Answer, "Based on the document: "), q.Answer)
	assert.InDelta(t, 0.8, q.Confidence, 1e-9)
	assert.Equal(t, []string{"Document Content Analysis"}, q.Sources)

	// The query is persisted under the document.
	queries, err := st.ListQueries(context.Background(), "doc1")
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "What did the sunny day bring?", queries[0].Question)
}

func TestAsk_UnprocessedDocumentConflicts(t *testing.T) {
	srv, st := newTestServer(t, testConfig())
	now := time.Now()
	require.NoError(t, st.CreateDocument(context.Background(), &store.Document{
		ID: "pending", Filename: "pending.txt", CreatedAt: now, UpdatedAt: now,
	}))

	rec := ask(t, srv, "pending", "What is this?")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAsk_MissingDocument(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	rec := ask(t, srv, "ghost", "What is this?")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	srv, st := newTestServer(t, testConfig())
	createProcessedDocument(t, st, "doc1", uploadText)

	rec := ask(t, srv, "doc1", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListQueries(t *testing.T) {
	srv, st := newTestServer(t, testConfig())
	createProcessedDocument(t, st, "doc1", uploadText)

	require.Equal(t, http.StatusCreated, ask(t, srv, "doc1", "Describe the garden flowers").Code)
	require.Equal(t, http.StatusCreated, ask(t, srv, "doc1", "summary please").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc1/queries", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Queries []store.Query `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Queries, 2)
}

func TestDeleteDocument_RemovesQueries(t *testing.T) {
	srv, st := newTestServer(t, testConfig())
	createProcessedDocument(t, st, "doc1", uploadText)
	require.Equal(t, http.StatusCreated, ask(t, srv, "doc1", "What about the garden?").Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/doc1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queries_deleted":1`)

	_, err := st.GetDocument(context.Background(), "doc1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuth_RequiredWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret"
	srv, _ := newTestServer(t, cfg)

	// Health stays public.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// API requires the bearer token.
	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnswerStats_Endpoint(t *testing.T) {
	srv, st := newTestServer(t, testConfig())
	createProcessedDocument(t, st, "doc1", uploadText)
	require.Equal(t, http.StatusCreated, ask(t, srv, "doc1", "What did the sunny day bring?").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/answers", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), "Document Content Analysis")
}

func TestDemoMode_SeededGenericAnswer(t *testing.T) {
	cfg := testConfig()
	cfg.DemoMode = true
	cfg.DemoSeed = 7

	srvA, stA := newTestServer(t, cfg)
	createProcessedDocument(t, stA, "doc1", uploadText)
	srvB, stB := newTestServer(t, cfg)
	createProcessedDocument(t, stB, "doc1", uploadText)

	// An unmatchable question hits the generic branch, which demo mode
	// replaces with a picked answer; same seed, same pick.
	recA := ask(t, srvA, "doc1", "zzz unrelated mystery input")
	recB := ask(t, srvB, "doc1", "zzz unrelated mystery input")
	require.Equal(t, http.StatusCreated, recA.Code)
	require.Equal(t, http.StatusCreated, recB.Code)

	var qA, qB store.Query
	require.NoError(t, json.Unmarshal(recA.Body.Bytes(), &qA))
	require.NoError(t, json.Unmarshal(recB.Body.Bytes(), &qB))
	assert.Equal(t, qA.Answer, qB.Answer)
	assert.NotContains(t, qA.Answer, "couldn't find")
}
