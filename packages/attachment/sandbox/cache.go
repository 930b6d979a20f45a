package sandbox

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/axisledger/axis/packages/attachment"
)

// region ScopeCache ///////////////////////////////////////////////////////////////////////////////////////////////////

// ScopeCache is a process-wide, bounded cache of LoadingScopes keyed by the sorted set of attachment ids. Building a
// scope scans every bundle, so repeated requests for the same attachment set return the retained instance instead.
// Concurrent requests for the same key are collapsed into a single build; the cache converges to at most one retained
// instance per key.
type ScopeCache struct {
	scopes *lru.Cache
	group  singleflight.Group
	parent FileScope
	trust  TrustPolicy
	log    *logger.Logger

	hits   *atomic.Int64
	misses *atomic.Int64
}

// NewScopeCache creates a new ScopeCache with the given capacity. Scopes built through it share the given parent
// scope and trust policy.
func NewScopeCache(capacity int, parent FileScope, trust TrustPolicy, log *logger.Logger) (*ScopeCache, error) {
	cache := &ScopeCache{
		parent: parent,
		trust:  trust,
		log:    log,
		hits:   atomic.NewInt64(0),
		misses: atomic.NewInt64(0),
	}

	scopes, err := lru.NewWithEvict(capacity, cache.onEvict)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scope cache")
	}
	cache.scopes = scopes

	return cache, nil
}

// NewDefaultScopeCache creates a ScopeCache from the configured parameters: the capacity is taken from
// Parameters.CacheSize and contract attachments are gated by an allow-list of the configured trusted uploaders.
func NewDefaultScopeCache(parent FileScope, log *logger.Logger) (*ScopeCache, error) {
	return NewScopeCache(Parameters.CacheSize, parent, NewAllowListPolicy(Parameters.TrustedUploaders...), log)
}

// Get returns the LoadingScope for the given attachments, building and retaining it on a miss. The key is the sorted,
// deduplicated list of attachment ids, so the order of the argument does not matter.
func (s *ScopeCache) Get(attachments []attachment.Attachment) (*LoadingScope, error) {
	key := cacheKey(attachments)

	if cached, found := s.scopes.Get(key); found {
		s.hits.Inc()

		return cached.(*LoadingScope), nil
	}

	scope, err, _ := s.group.Do(key, func() (interface{}, error) {
		// a concurrent builder may have won the race and populated the cache already
		if cached, found := s.scopes.Get(key); found {
			return cached.(*LoadingScope), nil
		}
		s.misses.Inc()

		built, buildErr := BuildLoadingScope(attachments, s.parent, s.trust)
		if buildErr != nil {
			return nil, buildErr
		}
		s.scopes.Add(key, built)
		if s.log != nil {
			s.log.Debugw("built attachment loading scope", "key", key, "entries", built.EntryCount())
		}

		return built, nil
	})
	if err != nil {
		return nil, err
	}

	return scope.(*LoadingScope), nil
}

// Stats returns the number of cache hits and misses since creation.
func (s *ScopeCache) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// Len returns the number of retained scopes.
func (s *ScopeCache) Len() int {
	return s.scopes.Len()
}

func (s *ScopeCache) onEvict(key, _ interface{}) {
	if s.log != nil {
		s.log.Debugw("evicted attachment loading scope", "key", key)
	}
}

// cacheKey derives the cache key for a set of attachments: their ids, sorted and deduplicated, joined into one
// string. Two requests with the same attachment set in different order share a key.
func cacheKey(attachments []attachment.Attachment) string {
	ids := make([]string, 0, len(attachments))
	seen := make(map[attachment.AttachmentID]struct{}, len(attachments))
	for _, att := range attachments {
		if _, duplicate := seen[att.ID()]; duplicate {
			continue
		}
		seen[att.ID()] = struct{}{}
		ids = append(ids, att.ID().Base58())
	}
	sort.Strings(ids)

	return strings.Join(ids, ":")
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
