package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/janvogt/notion-qa-mcp/index"
	"github.com/janvogt/notion-qa-mcp/llm"
	"github.com/janvogt/notion-qa-mcp/service/vo"
	"go.uber.org/zap"
)

// promptTemplate embeds the full corpus and the question into one request.
const promptTemplate = "Below is the recursively indexed content of a Notion page (including subpages and database entries). " +
	"Analyze the content and answer the question that follows.\n\n%s\n\nQuestion: %s\n\nAnswer:"

// ModelErrorPrefix marks answers produced from a failed model call. The Ask
// contract is to always answer something: model failures become visible
// error strings, never propagated errors.
const ModelErrorPrefix = "Error querying model: "

type Service interface {
	// Ask indexes the referenced page and answers the question about it.
	// Errors are limited to bad references and an unreadable root page;
	// anything past that point degrades into the answer itself.
	Ask(ctx context.Context, reference, question string, onProgress index.Progress) (*vo.Answer, error)
	// Index runs the bare traversal and returns the flattened corpus.
	Index(ctx context.Context, reference string, onProgress index.Progress) (*vo.Document, error)
}

type service struct {
	indexer *index.Indexer
	model   llm.Client
	logger  *zap.Logger
}

func NewService(indexer *index.Indexer, model llm.Client, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		indexer: indexer,
		model:   model,
		logger:  logger,
	}
}

func (s *service) Ask(ctx context.Context, reference, question string, onProgress index.Progress) (*vo.Answer, error) {
	indexed := 0
	corpus, err := s.indexer.Index(ctx, reference, countingProgress(&indexed, onProgress))
	if err != nil {
		return nil, err
	}
	if corpus == "" {
		return &vo.Answer{NoContent: true, Indexed: indexed}, nil
	}
	return &vo.Answer{
		Text:    s.query(ctx, corpus, question),
		Indexed: indexed,
	}, nil
}

func (s *service) Index(ctx context.Context, reference string, onProgress index.Progress) (*vo.Document, error) {
	indexed := 0
	corpus, err := s.indexer.Index(ctx, reference, countingProgress(&indexed, onProgress))
	if err != nil {
		return nil, err
	}
	return &vo.Document{
		Corpus:  vo.Corpus(corpus),
		Indexed: indexed,
	}, nil
}

// query issues exactly one model request. No retry, no streaming.
func (s *service) query(ctx context.Context, corpus, question string) string {
	prompt := fmt.Sprintf(promptTemplate, corpus, question)
	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("model query failed", zap.Error(err))
		return ModelErrorPrefix + err.Error()
	}
	return strings.TrimSpace(text)
}

// countingProgress tallies increments while still forwarding them.
func countingProgress(total *int, next index.Progress) index.Progress {
	return func(n int) {
		*total += n
		if next != nil {
			next(n)
		}
	}
}
