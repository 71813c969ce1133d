package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/sme-outreach/internal/model"
)

// BuildAllResult summarizes a batch build over one country.
type BuildAllResult struct {
	Built  int `json:"built"`
	Failed int `json:"failed"`
}

// BuildAll builds websites for every discovered SME in a country. Builds run
// on up to workers goroutines, with model calls paced by callRate per second.
// Individual failures are logged and counted, not fatal; the batch only stops
// early on context cancellation.
func (c *Controller) BuildAll(ctx context.Context, countryID string, workers int, callRate float64) (*BuildAllResult, error) {
	if workers <= 0 {
		workers = 4
	}
	if callRate <= 0 {
		callRate = 1
	}

	smes, err := c.store.ListSMEs(ctx, countryID)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(callRate), 1)

	var mu sync.Mutex
	result := &BuildAllResult{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sme := range smes {
		if sme.Status != model.StatusDiscovered {
			continue
		}
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			_, buildErr := c.BuildWebsite(ctx, sme.ID)

			mu.Lock()
			defer mu.Unlock()
			if buildErr != nil {
				result.Failed++
				zap.L().Warn("batch build failed for sme",
					zap.String("sme", sme.Name),
					zap.Error(buildErr),
				)
				return nil
			}
			result.Built++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
