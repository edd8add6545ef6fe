// Package embeddings provides text embeddings for retrieval and the
// relevance gate.
//
// Two providers are available:
//   - fastembed: local ONNX inference via fastembed-go (requires cgo and the
//     ONNX runtime). The default model is sentence-transformers/all-MiniLM-L6-v2.
//   - openai: any OpenAI-compatible embeddings endpoint via langchaingo.
//
// Every provider returned by NewProvider records duration, batch size and
// error metrics through OpenTelemetry.
package embeddings
