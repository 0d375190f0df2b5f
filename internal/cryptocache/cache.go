// Package cryptocache implements the concurrent factories mapping
// (Jwk identity, packed algorithm id) to long-lived signer, verifier,
// key-wrapper, and content-encryptor objects, each pooling the
// thread-unsafe primitive engines (hash.Hash scratch, mainly — Go's
// crypto/rsa and crypto/ecdsa are stateless free functions, so the
// "engine" this pools is the per-digest hash.Hash the host runtime's
// signer would otherwise recreate every call) behind acquire/release.
package cryptocache

import (
	"sync"
	"sync/atomic"

	"github.com/kataras/jose/jwk"
)

// CacheKey is the tuple (Jwk identity, packed algorithm id). Jwk identity
// is the key's pointer: two *jwk.Key values with identical material but
// distinct allocations compare unequal, by design, so callers that want
// cache reuse across requests should resolve to the same *jwk.Key rather
// than constructing a fresh one per call.
type CacheKey struct {
	key    *jwk.Key
	packed uint32
}

// PackSignatureAlg packs a bare signature-algorithm id for use as a
// CacheKey's algorithm component.
func PackSignatureAlg(id uint8) uint32 { return uint32(id) }

// PackKeyManagement packs (enc_id << 8) | kw_id into a single CacheKey
// algorithm component for key-wrap/encryption factories.
func PackKeyManagement(encID, kwID uint8) uint32 {
	return uint32(encID)<<8 | uint32(kwID)
}

// disposedError is the type of ErrDisposed.
type disposedError struct{}

func (disposedError) Error() string { return "cryptocache: disposed" }

// ErrDisposed is what GetOrCreate on a disposed factory returns, and what
// the SignVerifier objects a factory already produced fail with once it
// has been disposed. KeyWrapper and Encryptor objects do not check their
// factory's state, so ones obtained before Dispose keep working.
var ErrDisposed error = disposedError{}

// hashPool is a sync.Pool of scratch hash.Hash instances for one digest
// algorithm, reset before reuse.
type hashPool struct {
	pool *sync.Pool
}

func newHashPool(newHash func() hasher) *hashPool {
	return &hashPool{pool: &sync.Pool{New: func() any { return newHash() }}}
}

type hasher interface {
	Reset()
	Write([]byte) (int, error)
	Sum([]byte) []byte
}

func (p *hashPool) acquire() hasher {
	return p.pool.Get().(hasher)
}

func (p *hashPool) release(h hasher) {
	h.Reset()
	p.pool.Put(h)
}

// factoryBase is embedded by every concrete factory (signer, verifier,
// key-wrapper, encryptor) and holds the disposed flag and the cache map
// they all share the same lifecycle contract for.
type factoryBase struct {
	cache    sync.Map // CacheKey -> entry
	disposed atomic.Bool
}

// Dispose marks the factory disposed; GetOrCreate on it, and every
// operation on a SignVerifier it already produced, now fails with
// ErrDisposed. KeyWrapper and Encryptor objects obtained earlier are not
// tracked and keep working. Pooled engines
// held by those objects are dropped for GC rather than explicitly
// destroyed, since Go's hash.Hash values carry no unmanaged resources.
func (f *factoryBase) Dispose() { f.disposed.Store(true) }

func (f *factoryBase) checkDisposed() error {
	if f.disposed.Load() {
		return ErrDisposed
	}
	return nil
}

// loadOrStore resolves the last-writer-loses race inherent in building a
// cache entry outside the lock: if two goroutines race to build the same
// CacheKey's entry, sync.Map's LoadOrStore keeps exactly one and the
// loser's freshly built entry is simply discarded — its only resource, a
// *sync.Pool, holds no handles that need releasing, so discarding it is
// safe.
func loadOrStore[V any](f *factoryBase, key CacheKey, build func() V) V {
	if v, ok := f.cache.Load(key); ok {
		return v.(V)
	}
	v, _ := f.cache.LoadOrStore(key, build())
	return v.(V)
}
