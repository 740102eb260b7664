package repo

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/memodb-io/assetbucket/internal/modules/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	assetCacheNamePrefix = "asset:name:"
	assetCacheUIDPrefix  = "asset:uid:"

	// asset:deleted:<uid> marks a recent delete so a load that raced it cannot
	// write the old row back.
	assetCacheDeletedPrefix = "asset:deleted:"
)

// storeAssetScript sets both entries unless the uid carries a delete marker.
// KEYS: name key, uid key, marker key. ARGV: payload, ttl in ms.
var storeAssetScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[3]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
return 1
`)

// cachedAssetRepo is a read-through redis cache in front of another
// AssetRepo. Redis failures are logged and fall through to the store.
type cachedAssetRepo struct {
	next AssetRepo
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

// NewCachedAssetRepo wraps next with a redis cache. A nil client returns next
// unchanged.
func NewCachedAssetRepo(next AssetRepo, rdb *redis.Client, ttl time.Duration, log *zap.Logger) AssetRepo {
	if rdb == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedAssetRepo{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (r *cachedAssetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.next.Create(ctx, a)
}

func (r *cachedAssetRepo) GetByName(ctx context.Context, name string) (*model.Asset, error) {
	return r.get(ctx, assetCacheNamePrefix+name, func() (*model.Asset, error) {
		return r.next.GetByName(ctx, name)
	})
}

func (r *cachedAssetRepo) GetByUID(ctx context.Context, uid string) (*model.Asset, error) {
	return r.get(ctx, assetCacheUIDPrefix+uid, func() (*model.Asset, error) {
		return r.next.GetByUID(ctx, uid)
	})
}

// Delete invalidates both cache entries whatever the store returned and leaves
// a marker that blocks re-caching the uid for one ttl.
func (r *cachedAssetRepo) Delete(ctx context.Context, a *model.Asset) error {
	err := r.next.Delete(ctx, a)
	_, cacheErr := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, assetCacheDeletedPrefix+a.UID, 1, r.ttl)
		p.Del(ctx, assetCacheNamePrefix+a.Name, assetCacheUIDPrefix+a.UID)
		return nil
	})
	if cacheErr != nil {
		r.log.Warn("invalidate asset cache", zap.String("name", a.Name), zap.Error(cacheErr))
	}
	return err
}

func (r *cachedAssetRepo) get(ctx context.Context, key string, load func() (*model.Asset, error)) (*model.Asset, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var a model.Asset
		if err := sonic.Unmarshal(raw, &a); err == nil {
			return &a, nil
		}
		r.log.Warn("drop undecodable asset cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("read asset cache", zap.String("key", key), zap.Error(err))
	}

	a, err := load()
	if err != nil {
		return nil, err
	}
	r.store(ctx, a)
	return a, nil
}

func (r *cachedAssetRepo) store(ctx context.Context, a *model.Asset) {
	raw, err := sonic.Marshal(a)
	if err != nil {
		r.log.Warn("encode asset cache entry", zap.String("name", a.Name), zap.Error(err))
		return
	}
	keys := []string{
		assetCacheNamePrefix + a.Name,
		assetCacheUIDPrefix + a.UID,
		assetCacheDeletedPrefix + a.UID,
	}
	stored, err := storeAssetScript.Run(ctx, r.rdb, keys, raw, r.ttl.Milliseconds()).Int()
	if err != nil {
		r.log.Warn("write asset cache", zap.String("name", a.Name), zap.Error(err))
		return
	}
	if stored == 0 {
		r.log.Debug("skip caching deleted asset", zap.String("uid", a.UID))
	}
}
