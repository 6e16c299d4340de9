package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// cacheType labels cache metrics for this cache.
const cacheType = "result"

// CachedPipeline wraps a Pipeline with an in-memory result cache.
// Identical inputs processed within the TTL are served from memory, and
// concurrent identical requests are collapsed into one native run.
type CachedPipeline struct {
	inner           *Pipeline
	memCache        *ttlcache.Cache[uint64, Result]
	sfGroup         *singleflight.Group
	singleflightHit *atomic.Uint64
	logger          *zap.Logger
	cancel          context.CancelFunc
}

// NewCachedPipeline wraps inner with a result cache holding entries for
// ttl. A non-positive ttl selects a 2 minute default.
func NewCachedPipeline(inner *Pipeline, ttl time.Duration, logger *zap.Logger) *CachedPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[uint64, Result](ttl),
	)
	go cache.Start()

	ctx, cancel := context.WithCancel(context.Background())
	singleflightHit := &atomic.Uint64{}

	cp := &CachedPipeline{
		inner:           inner,
		memCache:        cache,
		sfGroup:         &singleflight.Group{},
		singleflightHit: singleflightHit,
		logger:          logger,
		cancel:          cancel,
	}

	go cp.logCacheStats(ctx)

	return cp
}

// Process returns the cached result for raw when available, running the
// inner pipeline otherwise. Progress callbacks only fire on the request
// that actually performs the work. Failed results are not cached, so a
// transient rejection does not stick for the TTL.
func (cp *CachedPipeline) Process(ctx context.Context, raw string, onProgress ProgressFunc) Result {
	cacheKey := cp.computeCacheKey(raw)

	if item := cp.memCache.Get(cacheKey); item != nil {
		RecordCacheHit(cacheType)
		cp.logger.Debug("result cache hit",
			zap.Uint64("cache_key", cacheKey),
			zap.Int("num_items", len(item.Value().Items)))
		report(onProgress, progressDone)
		return item.Value()
	}

	RecordCacheMiss(cacheType)
	cp.logger.Debug("result cache miss, processing",
		zap.Uint64("cache_key", cacheKey),
		zap.Int("input_bytes", len(raw)))

	v, _, shared := cp.sfGroup.Do(fmt.Sprintf("%d", cacheKey), func() (any, error) {
		// Another goroutine may have populated the cache meanwhile.
		if item := cp.memCache.Get(cacheKey); item != nil {
			return item.Value(), nil
		}

		result := cp.inner.Process(ctx, raw, onProgress)
		if result.Success {
			cp.memCache.Set(cacheKey, result, ttlcache.DefaultTTL)
		}
		return result, nil
	})

	if shared {
		cp.singleflightHit.Add(1)
	}

	return v.(Result)
}

// computeCacheKey hashes the input together with the settings that
// change the output, so a config change never serves stale results.
func (cp *CachedPipeline) computeCacheKey(raw string) uint64 {
	c := cp.inner.config
	configStr := fmt.Sprintf("%t:%d:%d:%d:%d",
		c.EnableChunking,
		c.ChunkSizeOverride,
		c.ChunkThreshold,
		c.MaxItems,
		c.MaxInputSize)

	h := xxhash.New()
	_, _ = h.WriteString(configStr)
	_, _ = h.WriteString(raw)
	return h.Sum64()
}

// logCacheStats periodically logs cache statistics.
func (cp *CachedPipeline) logCacheStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cp.memCache.Len() == 0 {
				continue
			}
			metrics := cp.memCache.Metrics()
			cp.logger.Info("result cache stats",
				zap.Int("size", cp.memCache.Len()),
				zap.Uint64("singleflight_hits", cp.singleflightHit.Load()),
				zap.Uint64("cache_hits", metrics.Hits),
				zap.Uint64("cache_misses", metrics.Misses))

		case <-ctx.Done():
			return
		}
	}
}

// Close stops the cache and its stats logger.
func (cp *CachedPipeline) Close() {
	cp.cancel()
	cp.memCache.Stop()
}
