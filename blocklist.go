package jose

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBlocked indicates that the token has not yet expired but was
// invalidated server-side through a Blocklist.
var ErrBlocked = errors.New("jose: token is blocked")

// Blocklist is an in-memory store of invalidated tokens, consulted as a
// TokenValidator. A token is blocked either by its own raw compact
// serialization (the only option when the caller has nothing but the bytes
// it received) or by its "jti" claim (RFC 7519 §4.1.7's intended use for
// this exact purpose: revoking a specific issued token without needing the
// bytes that carried it, e.g. from a logout endpoint that only has the jti
// on file). Both key spaces share one map; a "jti" never collides with a
// raw token because raw entries are stored under the base64url alphabet
// plus '.', while "jti" values are stored under a "jti:" prefix.
type Blocklist struct {
	entries map[string]int64 // blocklist key -> expiration unix seconds
	mu      sync.RWMutex
}

var _ TokenValidator = (*Blocklist)(nil)

// NewBlocklist starts a Blocklist whose entries are garbage-collected every
// gcEvery (0 disables the background sweep). A reasonable gcEvery is the
// same duration tokens are signed with via MaxAge, since that bounds how
// long a stale entry can matter.
func NewBlocklist(gcEvery time.Duration) *Blocklist {
	return NewBlocklistContext(context.Background(), gcEvery)
}

// NewBlocklistContext is NewBlocklist with a Context that stops the
// background sweep when canceled.
func NewBlocklistContext(ctx context.Context, gcEvery time.Duration) *Blocklist {
	b := &Blocklist{
		entries: make(map[string]int64),
	}

	if gcEvery > 0 {
		go b.runGC(ctx, gcEvery)
	}

	return b
}

// ValidateToken implements TokenValidator. An already-expired token (Kind
// KindExpired) is dropped from the blocklist instead of kept around
// forever, since Read will reject it on expiry alone from here on. Any
// other incoming error is returned unchanged — a blocklist should never
// mask a cryptographic failure. Otherwise the token is rejected with
// KindBlocked if either its "jti" or its raw bytes are listed.
func (b *Blocklist) ValidateToken(token []byte, claims Claims, err error) error {
	if err != nil {
		if errors.Is(err, ErrExpired) {
			b.Del(token, claims.ID)
		}
		return err
	}

	if b.blocked(token, claims.ID) {
		return newTokenError(KindBlocked, ErrBlocked)
	}

	return nil
}

// InvalidateToken blocks token by its raw bytes until expiry (unix
// seconds).
func (b *Blocklist) InvalidateToken(token []byte, expiry int64) {
	b.mu.Lock()
	b.entries[rawTokenKey(token)] = expiry
	b.mu.Unlock()
}

// InvalidateID blocks a token by its "jti" claim until expiry (unix
// seconds), for callers revoking a token they know only by that claim.
func (b *Blocklist) InvalidateID(jti string, expiry int64) {
	if jti == "" {
		return
	}
	b.mu.Lock()
	b.entries[jtiKey(jti)] = expiry
	b.mu.Unlock()
}

// Del removes token's raw-bytes entry and, if jti is non-empty, its
// jti-keyed entry too.
func (b *Blocklist) Del(token []byte, jti string) {
	b.mu.Lock()
	delete(b.entries, rawTokenKey(token))
	if jti != "" {
		delete(b.entries, jtiKey(jti))
	}
	b.mu.Unlock()
}

// Count returns the total number of blocked entries (raw-token and
// jti-keyed entries counted separately, even if they describe one token).
func (b *Blocklist) Count() int {
	b.mu.RLock()
	n := len(b.entries)
	b.mu.RUnlock()

	return n
}

// Has reports whether token's raw bytes are blocked. It does not consult
// the jti key space; use blocked (internally, via ValidateToken) when the
// decoded claims are available.
func (b *Blocklist) Has(token []byte) bool {
	if len(token) == 0 {
		return false
	}

	b.mu.RLock()
	_, ok := b.entries[rawTokenKey(token)]
	b.mu.RUnlock()

	return ok
}

func (b *Blocklist) blocked(token []byte, jti string) bool {
	if jti != "" {
		b.mu.RLock()
		_, ok := b.entries[jtiKey(jti)]
		b.mu.RUnlock()
		if ok {
			return true
		}
	}
	return b.Has(token)
}

func rawTokenKey(token []byte) string { return BytesToString(token) }
func jtiKey(jti string) string        { return "jti:" + jti }

// GC removes every entry whose expiration has passed and returns how many
// were removed. Safe to call concurrently with ValidateToken/Invalidate*.
func (b *Blocklist) GC() int {
	now := Clock().Round(time.Second).Unix()

	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for key, expiry := range b.entries {
		if now > expiry {
			delete(b.entries, key)
			n++
		}
	}
	return n
}

func (b *Blocklist) runGC(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.GC()
		}
	}
}
