package signals

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/logging"
)

// EmbeddingStore is the key/value surface the cache needs. A nil entry in
// the GetMany result is a miss.
type EmbeddingStore interface {
	GetMany(ctx context.Context, keys []string) ([][]byte, error)
	SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error
}

// RedisStore keeps embeddings in Redis.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) GetMany(ctx context.Context, keys []string) ([][]byte, error) {
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	out := make([][]byte, len(keys))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

func (s *RedisStore) SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range values {
			p.Set(ctx, k, v, ttl)
		}
		return nil
	})
	return err
}

// CachedEmbedder serves repeated texts from an EmbeddingStore and only sends
// misses to the wrapped Embedder. Store failures degrade to pass-through.
type CachedEmbedder struct {
	next   Embedder
	store  EmbeddingStore
	ttl    time.Duration
	prefix string
	log    logging.Logger
}

func NewCachedEmbedder(next Embedder, store EmbeddingStore, ttl time.Duration, prefix string, log logging.Logger) *CachedEmbedder {
	if log == nil {
		log = logging.Nop{}
	}
	return &CachedEmbedder{next: next, store: store, ttl: ttl, prefix: prefix, log: log}
}

// CacheKey returns the store key for text.
func (e *CachedEmbedder) CacheKey(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return e.prefix + hex.EncodeToString(sum[:])
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = e.CacheKey(t)
	}

	out := make([][]float64, len(texts))
	cached, err := e.store.GetMany(ctx, keys)
	if err != nil {
		e.log.Warn(ctx, "embedding cache read failed", "error", err)
		cached = nil
	}
	for i := range cached {
		if cached[i] == nil {
			continue
		}
		var v []float64
		if json.Unmarshal(cached[i], &v) == nil {
			out[i] = v
		}
	}

	var missIdx []int
	var missTexts []string
	for i := range out {
		if out[i] == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := e.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	toStore := make(map[string][]byte, len(fresh))
	for j, i := range missIdx {
		out[i] = fresh[j]
		if b, err := json.Marshal(fresh[j]); err == nil {
			toStore[keys[i]] = b
		}
	}
	if err := e.store.SetMany(ctx, toStore, e.ttl); err != nil {
		e.log.Warn(ctx, "embedding cache write failed", "error", err)
	}
	return out, nil
}
