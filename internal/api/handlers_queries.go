package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/store"
)

type askRequest struct {
	Question string `json:"question"`
}

const maxQuestionLen = 2000

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}
	if len(question) > maxQuestionLen {
		jsonError(w, "question too long", http.StatusBadRequest)
		return
	}

	doc, err := s.store.GetDocument(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !doc.Processed {
		jsonError(w, "document is still being processed", http.StatusConflict)
		return
	}

	// Optional presentation delay, kept from the original demo.
	if s.cfg.AnswerDelay > 0 {
		select {
		case <-time.After(s.cfg.AnswerDelay):
		case <-r.Context().Done():
			return
		}
	}

	start := time.Now()
	res := qa.Answer(doc.Content, question)
	if s.cfg.DemoMode && len(res.Sources) > 0 && res.Sources[0] == qa.SourceGeneralAnalysis {
		res.Answer = s.picker.Pick()
	}

	query := &store.Query{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Question:   question,
		Answer:     res.Answer,
		Confidence: res.Confidence,
		Sources:    res.Sources,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateQuery(r.Context(), query); err != nil {
		jsonError(w, "failed to save query: "+err.Error(), http.StatusInternalServerError)
		return
	}

	source := ""
	if len(res.Sources) > 0 {
		source = res.Sources[0]
	}
	s.stats.Record(source, res.Confidence, time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(query)
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	if _, err := s.store.GetDocument(r.Context(), docID); errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	} else if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	queries, err := s.store.ListQueries(r.Context(), docID)
	if err != nil {
		jsonError(w, "failed to list queries: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"queries": queries})
}
