package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
	"github.com/thebraudalf/fnb-docbot/internal/port"
)

// NoContentReply is returned when neither the artifact nor the index
// can supply any context. The generation service is not called.
const NoContentReply = "No relevant content found in the file."

// answerPrompt grounds the model in the retrieved context only.
const answerPrompt = "Using the following document content, answer the question only from the provided documents. " +
	"No answer should be out of the context of the files.\n\nContext: %s\n\nQuestion: %s"

// QueryUseCase answers questions from ingested content. Context comes
// from the cached ingestion artifact when one exists, otherwise from a
// nearest-neighbor search of the store; the choice is made once per
// query.
type QueryUseCase struct {
	store        port.VectorStore
	llm          port.LLM
	artifactPath string
	topK         int
	genTimeout   time.Duration
}

// NewQueryUseCase creates a query pipeline. genTimeout bounds each
// generation call; zero or negative falls back to 60 seconds.
func NewQueryUseCase(st port.VectorStore, llm port.LLM, artifactPath string, topK int, genTimeout time.Duration) *QueryUseCase {
	if topK <= 0 {
		topK = 3
	}
	if genTimeout <= 0 {
		genTimeout = 60 * time.Second
	}
	return &QueryUseCase{
		store:        st,
		llm:          llm,
		artifactPath: artifactPath,
		topK:         topK,
		genTimeout:   genTimeout,
	}
}

// retrievalStrategy produces the context string for one query.
type retrievalStrategy interface {
	name() string
	buildContext(ctx context.Context, question string) (string, error)
}

// artifactBacked replays the most recent ingestion batch verbatim: all
// cached chunks, no relevance filtering. This trades retrieval
// precision for guaranteed recall of the latest batch.
type artifactBacked struct {
	chunks []string
}

func (s artifactBacked) name() string { return "artifact" }

func (s artifactBacked) buildContext(context.Context, string) (string, error) {
	return strings.Join(s.chunks, "\n"), nil
}

// indexBacked retrieves the topK nearest passages from the store.
type indexBacked struct {
	store port.VectorStore
	topK  int
}

func (s indexBacked) name() string { return "index" }

func (s indexBacked) buildContext(ctx context.Context, question string) (string, error) {
	hits, err := s.store.Search(ctx, question, s.topK)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Passage.Text)
	}
	return strings.Join(texts, "\n"), nil
}

// selectStrategy picks the retrieval policy for this query: the cached
// artifact when it exists and holds chunks, the index otherwise. An
// unreadable artifact falls through to the index rather than failing
// the query.
func (u *QueryUseCase) selectStrategy() retrievalStrategy {
	data, err := os.ReadFile(u.artifactPath)
	if err == nil {
		var artifact domain.Artifact
		if json.Unmarshal(data, &artifact) == nil && len(artifact.Chunks) > 0 {
			return artifactBacked{chunks: artifact.Chunks}
		}
	}
	return indexBacked{store: u.store, topK: u.topK}
}

// Answer retrieves context for the question and asks the generation
// service for an answer grounded in that context. Generation failures
// surface unretried.
func (u *QueryUseCase) Answer(ctx context.Context, question string) (string, error) {
	strategy := u.selectStrategy()

	contextText, err := strategy.buildContext(ctx, question)
	if err != nil {
		return "", err
	}
	if contextText == "" {
		return NoContentReply, nil
	}

	prompt := fmt.Sprintf(answerPrompt, contextText, question)

	// The generation call is bounded regardless of caller: a hung
	// provider must surface as a timeout, not hold the request open.
	genCtx, cancel := context.WithTimeout(ctx, u.genTimeout)
	defer cancel()

	answer, err := u.llm.Complete(genCtx, prompt)
	if err != nil {
		if genCtx.Err() == context.DeadlineExceeded && domain.KindOf(err) == "" {
			return "", domain.Wrap(domain.KindTimeout, err, "generation call timed out")
		}
		return "", err
	}
	return "Answer: " + answer, nil
}
