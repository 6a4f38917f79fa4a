package service

import (
	"context"
	"errors"

	"CryptoView/internal/domain/models"
)

// ErrMissingCredential marks a generator that cannot run because it is not configured.
var ErrMissingCredential = errors.New("analysis credential missing")

// AnalysisGenerator produces a combined technical and news analysis for an asset.
// Implementations return an error wrapping ErrMissingCredential when no
// credential is configured.
type AnalysisGenerator interface {
	Generate(ctx context.Context, asset models.Asset) (*models.CombinedAnalysis, error)
}
