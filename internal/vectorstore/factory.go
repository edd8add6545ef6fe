package vectorstore

import (
	"fmt"

	"github.com/fyrsmithlabs/policybot/internal/config"
	"github.com/fyrsmithlabs/policybot/internal/sanitize"
	"go.uber.org/zap"
)

// NewStore creates a Store based on the configuration.
//
// The provider is selected by cfg.VectorStore.Provider:
//   - "chromem" (default): embedded ChromemStore persisted under ChromemPath
//   - "qdrant": QdrantStore backed by an external server
//
// The configured collection name is normalized with sanitize.Identifier, so
// "HR Policies" is stored as "hr_policies".
//
// dimension is the embedder's output size; Qdrant needs it to create the
// collection.
//
//	store, err := vectorstore.NewStore(cfg, embedder, embedder.Dimension(), logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func NewStore(cfg *config.Config, embedder Embedder, dimension int, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	vs := cfg.VectorStore
	collection := vs.Collection
	if collection != "" {
		collection = sanitize.Identifier(collection)
	}
	if collection != vs.Collection {
		logger.Info("normalized collection name",
			zap.String("configured", vs.Collection),
			zap.String("collection", collection),
		)
	}

	switch vs.Provider {
	case "chromem", "":
		return NewChromemStore(ChromemConfig{
			Path:       vs.ChromemPath,
			Compress:   vs.ChromemCompress,
			Collection: collection,
		}, embedder, logger)

	case "qdrant":
		if dimension <= 0 {
			return nil, fmt.Errorf("%w: qdrant requires a positive vector dimension, got %d", ErrInvalidConfig, dimension)
		}
		return NewQdrantStore(QdrantConfig{
			Host:       vs.QdrantHost,
			Port:       vs.QdrantPort,
			Collection: collection,
			VectorSize: uint64(dimension),
			UseTLS:     vs.QdrantTLS,
		}, embedder, logger)

	default:
		return nil, fmt.Errorf("unsupported vectorstore provider: %s (supported: chromem, qdrant)", vs.Provider)
	}
}
