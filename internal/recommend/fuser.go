// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"sort"

	"github.com/tomtom215/kinograph/internal/models"
)

// fuse normalizes each signal channel to [0,1] by min-max over the pool,
// ranks by the weighted sum, and truncates to topK. A channel with no
// variance across the pool normalizes to 0 for every candidate, so it
// cannot change relative ranking. Ties order by ascending film id.
// Excluded ids are filtered before truncation.
func fuse(pool map[int64]*signalAccum, w Weights, topK int, exclude map[int64]struct{}) []models.ScoredCandidate {
	if len(pool) == 0 || topK <= 0 {
		return nil
	}

	ids := make([]int64, 0, len(pool))
	for id := range pool {
		if _, skip := exclude[id]; skip {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	simNorm := normalizeChannel(ids, pool, func(a *signalAccum) float64 { return a.Similarity })
	coNorm := normalizeChannel(ids, pool, func(a *signalAccum) float64 { return a.CoWatch })
	genNorm := normalizeChannel(ids, pool, func(a *signalAccum) float64 { return a.Genre })

	results := make([]models.ScoredCandidate, 0, len(ids))
	for i, id := range ids {
		fused := w.Similarity*simNorm[i] + w.CoWatch*coNorm[i] + w.Genre*genNorm[i]
		results = append(results, models.ScoredCandidate{
			FilmID: id,
			Fused:  fused,
			Signals: map[string]float64{
				models.SignalSimilarity: simNorm[i],
				models.SignalCoWatch:    coNorm[i],
				models.SignalGenre:      genNorm[i],
			},
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Fused != results[j].Fused {
			return results[i].Fused > results[j].Fused
		}
		return results[i].FilmID < results[j].FilmID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// normalizeChannel min-max scales one raw channel over the pool. Returns
// values parallel to ids. max == min (including the all-zero case) maps
// everything to 0.
func normalizeChannel(ids []int64, pool map[int64]*signalAccum, get func(*signalAccum) float64) []float64 {
	out := make([]float64, len(ids))
	if len(ids) == 0 {
		return out
	}

	minV := get(pool[ids[0]])
	maxV := minV
	for _, id := range ids[1:] {
		v := get(pool[id])
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == minV {
		return out
	}

	span := maxV - minV
	for i, id := range ids {
		out[i] = (get(pool[id]) - minV) / span
	}
	return out
}
