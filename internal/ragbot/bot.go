package ragbot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/fyrsmithlabs/policybot/internal/document"
	"github.com/fyrsmithlabs/policybot/internal/reranker"
	"github.com/fyrsmithlabs/policybot/internal/vectorstore"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("policybot.ragbot")

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Metadata keys stored with every chunk.
const (
	MetaSource   = "source"
	MetaDataType = "data_type"
	MetaChunk    = "chunk"
	MetaHash     = "hash"
)

// ErrEmptyQuestion is returned by Query for an empty question.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// Config holds the Bot's collaborators.
type Config struct {
	Loaders   *document.Loaders
	Splitter  *document.Splitter
	Store     vectorstore.Store
	Generator Generator
	TopK      int
	Logger    *zap.Logger

	// Reranker, when set, reorders Candidates retrieved chunks and keeps
	// the TopK best.
	Reranker   reranker.Reranker
	Candidates int
}

// AddResult summarizes one Add call.
type AddResult struct {
	// Hash is the SHA-256 of the extracted text.
	Hash string

	// Chunks is the number of chunks the text split into.
	Chunks int

	// Added is how many of those chunks were new to the store.
	Added int
}

// Bot indexes documents and answers questions from them.
type Bot struct {
	loaders   *document.Loaders
	splitter  *document.Splitter
	store     vectorstore.Store
	generator Generator
	topK      int
	logger    *zap.Logger

	reranker   reranker.Reranker
	candidates int
}

// New creates a Bot. Store and Generator are required.
func New(cfg Config) (*Bot, error) {
	if cfg.Store == nil {
		return nil, errors.New("ragbot: store is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("ragbot: generator is required")
	}
	if cfg.Loaders == nil {
		cfg.Loaders = document.NewLoaders(nil)
	}
	if cfg.Splitter == nil {
		s, err := document.NewSplitter(document.DefaultChunkSize, document.DefaultChunkOverlap)
		if err != nil {
			return nil, err
		}
		cfg.Splitter = s
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Candidates < cfg.TopK {
		cfg.Candidates = cfg.TopK
	}
	return &Bot{
		loaders:   cfg.Loaders,
		splitter:  cfg.Splitter,
		store:     cfg.Store,
		generator: cfg.Generator,
		topK:      cfg.TopK,
		logger:    cfg.Logger,

		reranker:   cfg.Reranker,
		candidates: cfg.Candidates,
	}, nil
}

// Add loads the file at location, splits it and stores chunks that are
// not already present.
func (b *Bot) Add(ctx context.Context, dataType document.DataType, location string) (AddResult, error) {
	ctx, span := tracer.Start(ctx, "Bot.Add")
	defer span.End()
	span.SetAttributes(attribute.String("data_type", string(dataType)))

	text, err := b.loaders.Load(ctx, dataType, location)
	if err != nil {
		span.RecordError(err)
		return AddResult{}, fmt.Errorf("loading %s: %w", location, err)
	}
	chunks, err := b.splitter.Split(text)
	if err != nil {
		span.RecordError(err)
		return AddResult{}, err
	}

	sum := sha256.Sum256([]byte(text))
	result := AddResult{Hash: hex.EncodeToString(sum[:]), Chunks: len(chunks)}

	docs := make([]vectorstore.Document, 0, len(chunks))
	for i, chunk := range chunks {
		id := chunkID(result.Hash, i)
		exists, err := b.store.Exists(ctx, id)
		if err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("checking chunk %d: %w", i, err)
		}
		if exists {
			continue
		}
		docs = append(docs, vectorstore.Document{
			ID:      id,
			Content: chunk,
			Metadata: map[string]string{
				MetaSource:   location,
				MetaDataType: string(dataType),
				MetaChunk:    strconv.Itoa(i),
				MetaHash:     result.Hash,
			},
		})
	}

	if len(docs) > 0 {
		if _, err := b.store.AddDocuments(ctx, docs); err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("storing chunks: %w", err)
		}
	}
	result.Added = len(docs)
	span.SetAttributes(attribute.Int("chunks", result.Chunks), attribute.Int("added", result.Added))

	b.logger.Info("document indexed",
		zap.String("source", location),
		zap.String("data_type", string(dataType)),
		zap.Int("chunks", result.Chunks),
		zap.Int("added", result.Added),
	)
	return result, nil
}

// chunkID derives a stable UUID from the content hash and chunk position.
func chunkID(hash string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(hash+":"+strconv.Itoa(index))).String()
}

// Query answers question from the closest stored chunks. An empty store
// still produces an answer from an empty context.
func (b *Bot) Query(ctx context.Context, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "Bot.Query")
	defer span.End()

	if question == "" {
		return "", ErrEmptyQuestion
	}

	results, err := b.retrieve(ctx, question)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.Int("context_chunks", len(results)))

	prompt, err := buildPrompt(question, results)
	if err != nil {
		return "", fmt.Errorf("building prompt: %w", err)
	}

	answer, err := b.generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	b.logger.Debug("question answered", zap.Int("context_chunks", len(results)))
	return answer, nil
}

// retrieve returns the topK chunks for question, reranked when a Reranker
// is configured.
func (b *Bot) retrieve(ctx context.Context, question string) ([]vectorstore.SearchResult, error) {
	if b.reranker == nil {
		results, err := b.store.Search(ctx, question, b.topK)
		if err != nil {
			return nil, fmt.Errorf("retrieving context: %w", err)
		}
		return results, nil
	}

	results, err := b.store.Search(ctx, question, b.candidates)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	candidates := make([]reranker.Candidate, len(results))
	byID := make(map[string]vectorstore.SearchResult, len(results))
	for i, r := range results {
		candidates[i] = reranker.Candidate{ID: r.ID, Content: r.Content, Score: r.Score}
		byID[r.ID] = r
	}

	ranked, err := b.reranker.Rerank(ctx, question, candidates, b.topK)
	if err != nil {
		return nil, fmt.Errorf("reranking context: %w", err)
	}
	out := make([]vectorstore.SearchResult, len(ranked))
	for i, r := range ranked {
		out[i] = byID[r.ID]
	}
	return out, nil
}
