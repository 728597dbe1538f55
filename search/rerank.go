package search

import (
	"context"
	"log/slog"

	"github.com/docuquery/docuquery/ai"
	"github.com/docuquery/docuquery/core"
)

// Rerank refines retrieval results down to the top k using a cross-encoder
// relevance service, replacing fused scores with the service's relevance
// scores.
//
// Degradation rules keep answering available without the service:
//   - a nil reranker truncates to the first k results unchanged
//   - a reranker error does the same, after logging
//   - k or fewer results are returned as-is without a service call
func Rerank(ctx context.Context, reranker ai.Reranker, query string, results []core.ScoredChunk, k int) []core.ScoredChunk {
	if len(results) <= k {
		return results
	}
	if reranker == nil {
		return results[:k]
	}

	texts := make([]string, len(results))
	for i, sc := range results {
		texts[i] = sc.Chunk.Text
	}

	rankings, err := reranker.Rerank(ctx, query, texts, k)
	if err != nil {
		slog.Default().Warn("reranking failed, keeping retrieval order", "err", err)
		return results[:k]
	}
	if len(rankings) == 0 {
		return results[:k]
	}

	reranked := make([]core.ScoredChunk, 0, len(rankings))
	for _, ranking := range rankings {
		if ranking.Index < 0 || ranking.Index >= len(results) {
			slog.Default().Warn("reranker returned out-of-range index, keeping retrieval order",
				"index", ranking.Index)
			return results[:k]
		}
		reranked = append(reranked, core.ScoredChunk{
			Chunk: results[ranking.Index].Chunk,
			Score: ranking.Score,
		})
	}
	if len(reranked) > k {
		reranked = reranked[:k]
	}
	return reranked
}
