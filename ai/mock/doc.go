// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Completer,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockCompleter := mock.NewMockCompleter()
//	mockCompleter.CompleteFunc = func(ctx context.Context, prompt string, passages []string) (string, error) {
//	    return "\\section{Test}", nil
//	}
//
//	// Check call counts
//	count := mockCompleter.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: returns deterministic unit vectors based on text hash
//   - MockCompleter: echoes the prompt inside a fenced LaTeX section
//   - MockProvider: aggregates mock embedder and completer
package mock
