// Package resilience holds the fault-tolerance helpers the article service
// wraps around its outbound calls (article fetches, news discovery, AI summaries).
//
//	cb := circuitbreaker.New(circuitbreaker.ArticleFetchConfig())
//	content, err := circuitbreaker.Do(cb, func() (string, error) {
//	    return fetch(ctx, url)
//	})
//
//	summary, err := retry.Do(ctx, retry.AIAPIConfig(), func() (string, error) {
//	    return summarize(ctx, text)
//	})
//
// The panel's own calls to the article service are never retried.
package resilience
