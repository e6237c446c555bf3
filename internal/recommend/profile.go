// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/kinograph/internal/models"
)

// ProfileSource supplies the stored data the user-profile builder needs.
// *database.DB satisfies it.
type ProfileSource interface {
	GetUserLikedFilms(ctx context.Context, userID int64, minStrength float64, limit int) ([]int64, error)
	GetEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error)
}

// userProfileVector builds the user's taste vector: the unit-normalized
// mean of the embeddings of their most recently liked films. Returns nil
// (not an error) when the user has no usable history, so the caller can
// fall back to the id-text embedding.
func userProfileVector(ctx context.Context, src ProfileSource, userID int64, minStrength float64, maxFilms int) ([]float32, error) {
	liked, err := src.GetUserLikedFilms(ctx, userID, minStrength, maxFilms)
	if err != nil {
		return nil, fmt.Errorf("liked films for user %d: %w", userID, err)
	}
	if len(liked) == 0 {
		return nil, nil
	}

	embeddings, err := src.GetEmbeddings(ctx, liked)
	if err != nil {
		return nil, fmt.Errorf("embeddings for user %d profile: %w", userID, err)
	}
	if len(embeddings) == 0 {
		return nil, nil
	}

	mean := make([]float64, models.EmbeddingDim)
	count := 0
	for _, vec := range embeddings {
		if len(vec) != models.EmbeddingDim {
			continue
		}
		for i, v := range vec {
			mean[i] += float64(v)
		}
		count++
	}
	if count == 0 {
		return nil, nil
	}

	var sumSquares float64
	for i := range mean {
		mean[i] /= float64(count)
		sumSquares += mean[i] * mean[i]
	}
	if sumSquares == 0 {
		return nil, nil
	}

	norm := math.Sqrt(sumSquares)
	profile := make([]float32, models.EmbeddingDim)
	for i := range mean {
		profile[i] = float32(mean[i] / norm)
	}
	return profile, nil
}

// fallbackProfileText is the text embedded when a user has no usable
// history. Deterministic per user so results stay cacheable.
func fallbackProfileText(userID int64) string {
	return fmt.Sprintf("user_id:%d", userID)
}
