package knowledge

import (
	"context"
	"log/slog"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// DefaultMaxResults bounds the number of documents per retrieval.
const DefaultMaxResults = 3

// Service is the knowledge base collaborator.
type Service interface {
	Retrieve(ctx context.Context, query string, filter *Filter, maxResults int) ([]domain.KnowledgeDocument, error)
}

// Retriever wraps a Service with result bounding and soft failure.
type Retriever struct {
	svc        Service
	maxResults int
	logger     *slog.Logger
}

// NewRetriever creates a Retriever. A non-positive maxResults uses
// DefaultMaxResults; a nil svc makes every retrieval return no documents.
func NewRetriever(svc Service, maxResults int, logger *slog.Logger) *Retriever {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = slog.Default().With("component", "knowledge")
	}
	return &Retriever{svc: svc, maxResults: maxResults, logger: logger}
}

// Retrieve returns documents ordered by relevance. Collaborator failures are
// logged and yield an empty list; they are never returned.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter *Filter) []domain.KnowledgeDocument {
	if r.svc == nil {
		r.logger.WarnContext(ctx, "Knowledge base not configured, skipping retrieval")
		return nil
	}

	docs, err := r.svc.Retrieve(ctx, query, filter, r.maxResults)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to retrieve knowledge context", "error", err)
		return nil
	}
	if len(docs) > r.maxResults {
		docs = docs[:r.maxResults]
	}

	r.logger.InfoContext(ctx, "Retrieved knowledge documents",
		"documents_retrieved", len(docs),
		"knowledge_content_length", domain.TotalContentLength(docs))
	return docs
}
