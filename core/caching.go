package core

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/internal/contract"
	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached periodogram stays valid.
const cacheTTL = 7 * 24 * time.Hour

// cachedRunSearch returns the periodogram for ts, from the result cache when a
// fresh entry exists. Cache failures fall back to a direct search.
func cachedRunSearch(ctx context.Context, ts schema.TimeSeries, grid bls.GridConfig, ps bls.PowerSpectrum, store contract.CacheStore) (*schema.Periodogram, bool, error) {
	if store == nil {
		pg, err := bls.RunSearch(ctx, ts, grid, ps)
		return pg, false, err
	}

	key := generateCacheKey(ts, grid)
	if pg := checkCacheHit(store, key); pg != nil {
		log.Debug().Str("key", key[:12]).Msg("Result cache hit")
		return pg, true, nil
	}

	pg, err := bls.RunSearch(ctx, ts, grid, ps)
	if err != nil {
		return nil, false, err
	}
	storeResult(store, key, pg)
	return pg, false, nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.Periodogram {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil // Stale or version mismatch
	}

	var pg schema.Periodogram
	if err := msgpack.Unmarshal(data, &pg); err != nil {
		return nil
	}
	if len(pg.Periods) == 0 || len(pg.Power) != len(pg.Periods) || len(pg.Durations) != len(pg.Periods) {
		return nil
	}
	return &pg
}

// storeResult writes a periodogram to the cache, logging failures.
func storeResult(store contract.CacheStore, key string, pg *schema.Periodogram) {
	data, err := msgpack.Marshal(pg)
	if err != nil {
		contract.LogWarn("Failed to encode search result for caching", err)
		return
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store search result in cache", err)
	}
}

// generateCacheKey hashes the finite samples and every grid knob. Samples that
// the search discards do not change the key.
func generateCacheKey(ts schema.TimeSeries, grid bls.GridConfig) string {
	h := sha256.New()
	var buf [8]byte
	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}

	writeFloat(grid.MinPeriod)
	writeFloat(grid.MaxPeriod)
	binary.LittleEndian.PutUint64(buf[:], uint64(grid.NPeriods))
	_, _ = h.Write(buf[:])
	writeFloat(grid.DurationFraction)
	writeFloat(grid.MinDuration)
	writeFloat(grid.MaxDuration)

	for _, s := range bls.FilterFinite(ts).Samples {
		writeFloat(s.T)
		writeFloat(s.Y)
	}
	return hex.EncodeToString(h.Sum(nil))
}
