// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/kinograph/internal/models"
)

// EdgeSource supplies stored outgoing hyperedges for a batch of source
// nodes of one kind. *database.DB satisfies it.
type EdgeSource interface {
	GetOutgoingEdges(ctx context.Context, sourceKind string, sourceIDs []int64) (map[int64][]models.Hyperedge, error)
}

// signalAccum is the raw per-channel accumulation for one candidate film.
type signalAccum struct {
	Similarity float64
	CoWatch    float64
	Genre      float64
}

// nodeRef identifies a graph node during traversal.
type nodeRef struct {
	Kind string
	ID   int64
}

// frontierItem is one node queued for expansion with its onward path
// factor: the total weight it accumulated on the hop that reached it
// (1.0 for seeds).
type frontierItem struct {
	node   nodeRef
	factor float64
}

// Expander performs breadth-limited traversal over the finalized
// hyperedge set. It is stateless; one Expand call is one request.
type Expander struct {
	edges EdgeSource
}

// NewExpander returns an expander reading edges from src.
func NewExpander(src EdgeSource) *Expander {
	return &Expander{edges: src}
}

// Expand walks up to hops steps out from the seeds and returns the film
// candidate pool with raw per-channel values, plus whether traversal was
// abandoned early on context cancellation. Seeds always appear in the
// pool; films reached only by expansion carry similarity 0. Genre nodes
// conduct weight between films but never enter the pool.
//
// Contributions sum per channel across all paths and hops. The frontier
// for each hop is the set of newly reached nodes, capped at
// frontierLimit by dropping the lowest-weight entrants first (ties drop
// the higher id).
func (x *Expander) Expand(ctx context.Context, seeds []models.SeedCandidate, hops, frontierLimit int) (map[int64]*signalAccum, bool, error) {
	pool := make(map[int64]*signalAccum, len(seeds))
	visited := make(map[nodeRef]struct{}, len(seeds))
	frontier := make([]frontierItem, 0, len(seeds))

	for _, s := range seeds {
		node := nodeRef{Kind: models.KindFilm, ID: s.FilmID}
		if _, seen := visited[node]; seen {
			// Duplicate seed ids keep the higher similarity.
			if s.Similarity > pool[s.FilmID].Similarity {
				pool[s.FilmID].Similarity = s.Similarity
			}
			continue
		}
		visited[node] = struct{}{}
		pool[s.FilmID] = &signalAccum{Similarity: s.Similarity}
		frontier = append(frontier, frontierItem{node: node, factor: 1.0})
	}

	for hop := 0; hop < hops && len(frontier) > 0; hop++ {
		select {
		case <-ctx.Done():
			// Abandon deeper expansion, fuse what we have.
			return pool, true, nil
		default:
		}

		outgoing, err := x.fetchFrontierEdges(ctx, frontier)
		if err != nil {
			if ctx.Err() != nil {
				return pool, true, nil
			}
			return nil, false, fmt.Errorf("hop %d: %w", hop+1, err)
		}

		// Total weight accumulated this hop per reached node; becomes the
		// path factor for nodes entering the next frontier.
		reached := make(map[nodeRef]float64)

		for _, item := range frontier {
			for _, e := range outgoing[item.node] {
				signal := models.SignalForKindPair(e.SourceKind, e.TargetKind)
				if signal == "" {
					continue
				}
				contribution := item.factor * e.Weight
				target := nodeRef{Kind: e.TargetKind, ID: e.TargetID}

				if target.Kind == models.KindFilm {
					acc := pool[target.ID]
					if acc == nil {
						acc = &signalAccum{}
						pool[target.ID] = acc
					}
					switch signal {
					case models.SignalCoWatch:
						acc.CoWatch += contribution
					case models.SignalGenre:
						acc.Genre += contribution
					}
				}

				if _, seen := visited[target]; !seen {
					reached[target] += contribution
				}
			}
		}

		frontier = nextFrontier(reached, frontierLimit)
		for _, item := range frontier {
			visited[item.node] = struct{}{}
		}
	}

	return pool, false, nil
}

// fetchFrontierEdges batches the edge lookups per node kind.
func (x *Expander) fetchFrontierEdges(ctx context.Context, frontier []frontierItem) (map[nodeRef][]models.Hyperedge, error) {
	byKind := make(map[string][]int64, 2)
	for _, item := range frontier {
		byKind[item.node.Kind] = append(byKind[item.node.Kind], item.node.ID)
	}

	out := make(map[nodeRef][]models.Hyperedge, len(frontier))
	for _, kind := range []string{models.KindFilm, models.KindGenre} {
		ids := byKind[kind]
		if len(ids) == 0 {
			continue
		}
		edges, err := x.edges.GetOutgoingEdges(ctx, kind, ids)
		if err != nil {
			return nil, fmt.Errorf("outgoing edges for %s nodes: %w", kind, err)
		}
		for id, es := range edges {
			out[nodeRef{Kind: kind, ID: id}] = es
		}
	}
	return out, nil
}

// nextFrontier sorts the newly reached nodes by accumulated weight and
// applies the cap. Order: weight descending, ties by ascending id so the
// higher id is dropped first at the cut.
func nextFrontier(reached map[nodeRef]float64, limit int) []frontierItem {
	if len(reached) == 0 {
		return nil
	}
	items := make([]frontierItem, 0, len(reached))
	for node, weight := range reached {
		items = append(items, frontierItem{node: node, factor: weight})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].factor != items[j].factor {
			return items[i].factor > items[j].factor
		}
		if items[i].node.Kind != items[j].node.Kind {
			return items[i].node.Kind < items[j].node.Kind
		}
		return items[i].node.ID < items[j].node.ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
