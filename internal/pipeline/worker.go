package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/store"
)

// Worker runs text extraction for a single document job.
type Worker struct {
	store             *store.Store
	log               *slog.Logger
	pdfFallbackToText bool
}

func NewWorker(st *store.Store, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		store:             st,
		log:               log,
		pdfFallbackToText: pdfFallback,
	}
}

// Process parses the uploaded bytes and commits the one-time document
// mutation: extracted text, word count, processed flag.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		w.fail(ctx, job, log, "unsupported format", err)
		return
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = w.pdfFallbackToText
	}

	text, err := p.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(ctx, job, log, "parse failed", err)
		return
	}

	wordCount := parser.WordCount(text)
	hash := ContentHashHex([]byte(text))

	// Different uploads can extract to identical text (same document saved
	// under two formats). Repoint the job at the existing row instead of
	// storing a second copy.
	if existing, err := w.store.GetDocumentByHash(ctx, hash); err == nil && existing.ID != job.DocID {
		if err := w.store.DeleteDocument(ctx, job.DocID); err != nil {
			log.Warn("cleanup of duplicate document skipped", "error", err)
		}
		job.SetResult(existing.WordCount, hash)
		job.SetDocID(existing.ID)
		job.SetStatus(StatusCompleted, "duplicate")
		log.Info("duplicate extracted text", "existing_doc_id", existing.ID)
		return
	}

	job.SetResult(wordCount, hash)
	log.Info("extracted text", "words", wordCount)

	job.SetStatus(StatusStoring, "storing")
	if err := w.store.SetDocumentContent(ctx, job.DocID, text, wordCount, hash); err != nil {
		w.fail(ctx, job, log, "store failed", err)
		return
	}

	job.SetStatus(StatusCompleted, "done")
}

// fail marks the job failed and removes the never-processed document row so
// broken uploads don't linger in listings.
func (w *Worker) fail(ctx context.Context, job *Job, log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	job.AddError(fmt.Sprintf("%s: %s", msg, err))
	job.SetStatus(StatusFailed, msg)

	if err := w.store.DeleteDocument(ctx, job.DocID); err != nil {
		log.Warn("cleanup of failed document skipped", "error", err)
	}
}
