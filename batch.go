package transroute

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds in-flight calls of TranslateBatch.
const DefaultBatchConcurrency = 4

// TranslateBatch translates many texts with at most concurrency calls in
// flight. Texts identical byte for byte are translated once and blank texts are returned
// unchanged. Results keep input order; the first failure cancels the batch.
func (r *Router) TranslateBatch(ctx context.Context, texts []string, targetLang, customPrompt string, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]string, len(texts))
	positions := make(map[string][]int)
	var unique []string
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = text
			continue
		}
		h := hashExact(text)
		if _, seen := positions[h]; !seen {
			unique = append(unique, text)
		}
		positions[h] = append(positions[h], i)
	}

	translated := make([]string, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range unique {
		i, text := i, text
		g.Go(func() error {
			out, err := r.TranslateText(gctx, text, targetLang, customPrompt)
			if err != nil {
				return err
			}
			translated[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, text := range unique {
		for _, pos := range positions[hashExact(text)] {
			results[pos] = translated[i]
		}
	}
	return results, nil
}
