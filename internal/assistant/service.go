// Package assistant ties file intake, document indexing, question answering
// and the relevance gate into the two operations the web front-end exposes.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/policybot/internal/document"
	"github.com/fyrsmithlabs/policybot/internal/logging"
	"github.com/fyrsmithlabs/policybot/internal/ragbot"
	"github.com/fyrsmithlabs/policybot/internal/relevance"
	"github.com/fyrsmithlabs/policybot/internal/uploads"
	"go.uber.org/zap"
)

// Receiver persists an uploaded file and returns where it was written.
type Receiver interface {
	Save(ctx context.Context, filename string, src io.Reader) (string, error)
}

// IndexingService adds documents to the knowledge base and answers
// questions from it.
type IndexingService interface {
	Add(ctx context.Context, dataType document.DataType, location string) (ragbot.AddResult, error)
	Query(ctx context.Context, question string) (string, error)
}

// Gatekeeper scores an answer against its question.
type Gatekeeper interface {
	Evaluate(ctx context.Context, question, answer string) (relevance.Verdict, error)
	Fallback() string
}

// Config holds the Service's collaborators. Gate is optional; without it
// every answer is returned as generated.
type Config struct {
	Receiver Receiver
	Indexer  IndexingService
	Gate     Gatekeeper
	Logger   *logging.Logger
}

// UploadResult describes a stored and indexed file.
type UploadResult struct {
	Filename string
	Path     string
	DataType document.DataType
	Chunks   int
}

// Answer is the reply to a question.
type Answer struct {
	Text string

	// Score is the relevance score; zero when the gate did not run.
	Score float64

	// Gated reports that Text is the fallback message.
	Gated bool
}

// Service implements the upload and ask use cases.
type Service struct {
	receiver Receiver
	indexer  IndexingService
	gate     Gatekeeper
	logger   *logging.Logger
}

// New creates a Service. Receiver and Indexer are required.
func New(cfg Config) (*Service, error) {
	if cfg.Receiver == nil {
		return nil, errors.New("assistant: receiver is required")
	}
	if cfg.Indexer == nil {
		return nil, errors.New("assistant: indexer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	return &Service{
		receiver: cfg.Receiver,
		indexer:  cfg.Indexer,
		gate:     cfg.Gate,
		logger:   cfg.Logger,
	}, nil
}

// Upload stores src under filename and indexes it as a PDF.
func (s *Service) Upload(ctx context.Context, filename string, src io.Reader) (UploadResult, error) {
	if filename == "" {
		uploadsTotal.WithLabelValues("invalid").Inc()
		return UploadResult{}, ErrNoFileSelected
	}

	path, err := s.receiver.Save(ctx, filename, src)
	if err != nil {
		if errors.Is(err, uploads.ErrInvalidFilename) || errors.Is(err, uploads.ErrEmptyFilename) {
			uploadsTotal.WithLabelValues("invalid").Inc()
			s.logger.Debug(ctx, "rejected upload filename", zap.String("filename", filename), zap.Error(err))
			return UploadResult{}, ErrInvalidFilename
		}
		uploadsTotal.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "saving upload failed", zap.String("filename", filename), zap.Error(err))
		return UploadResult{}, &DependencyError{Op: "save", Err: err}
	}

	res, err := s.indexer.Add(ctx, document.DataTypePDF, path)
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "indexing upload failed", zap.String("path", path), zap.Error(err))
		return UploadResult{}, &DependencyError{Op: "index", Err: err}
	}

	uploadsTotal.WithLabelValues("success").Inc()
	s.logger.Info(ctx, "document uploaded",
		zap.String("filename", filename),
		zap.Int("chunks", res.Chunks),
		zap.Int("added", res.Added),
	)
	return UploadResult{
		Filename: filename,
		Path:     path,
		DataType: document.DataTypePDF,
		Chunks:   res.Chunks,
	}, nil
}

// Ask answers question. When the gate rejects the generated answer the
// fallback message is returned instead, with no error.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	if question == "" {
		queriesTotal.WithLabelValues("invalid").Inc()
		return Answer{}, ErrNoQuestion
	}

	text, err := s.indexer.Query(ctx, question)
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "answering question failed", zap.Error(err))
		return Answer{}, &DependencyError{Op: "query", Err: err}
	}

	if s.gate == nil {
		queriesTotal.WithLabelValues("answered").Inc()
		return Answer{Text: text}, nil
	}

	verdict, err := s.gate.Evaluate(ctx, question, text)
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "relevance check failed", zap.Error(err))
		return Answer{}, &DependencyError{Op: "relevance", Err: fmt.Errorf("scoring answer: %w", err)}
	}
	relevanceScore.Observe(verdict.Score)

	if !verdict.Relevant {
		queriesTotal.WithLabelValues("gated").Inc()
		s.logger.Info(ctx, "answer gated", zap.Float64("score", verdict.Score))
		return Answer{Text: s.gate.Fallback(), Score: verdict.Score, Gated: true}, nil
	}

	queriesTotal.WithLabelValues("answered").Inc()
	return Answer{Text: text, Score: verdict.Score}, nil
}

var (
	_ Receiver        = (*uploads.Receiver)(nil)
	_ IndexingService = (*ragbot.Bot)(nil)
	_ Gatekeeper      = (*relevance.Gate)(nil)
)
