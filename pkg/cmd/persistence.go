// Package cmd holds the shared wiring used by the guidekit binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/guidekit/guidekit/pkg/persistence"
	"github.com/guidekit/guidekit/pkg/persistence/file"
	"github.com/guidekit/guidekit/pkg/persistence/postgresql"
)

// NewPersistence picks a backend from the database URL scheme. Anything
// that is not postgres is treated as a directory path for the file
// backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
