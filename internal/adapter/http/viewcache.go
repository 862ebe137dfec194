package adapthttp

import (
	"fmt"
	"net/http"
	"sync"
)

// ViewCache tracks a generation counter per user and view path. Mutating
// handlers bump the generations of the views they make stale; read handlers
// use the current generation as a weak ETag, so an unchanged view answers 304
// without re-rendering. Keying by user keeps one caller's validators useless
// for anyone else.
type ViewCache struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// NewViewCache creates an empty ViewCache.
func NewViewCache() *ViewCache {
	return &ViewCache{gens: make(map[string]uint64)}
}

// Generation returns the current generation of the user's view.
func (c *ViewCache) Generation(userID, viewPath string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID+":"+viewPath]
}

// Invalidate bumps the generation of each of the user's view paths.
func (c *ViewCache) Invalidate(userID string, viewPaths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range viewPaths {
		c.gens[userID+":"+p]++
	}
}

// serveConditional writes the view's ETag and answers 304 when the client
// already holds the current generation. It reports whether the response is
// complete. Callers must establish that the user may read the view before
// calling; the ETag embeds the user ID so validators never match across
// users.
func (c *ViewCache) serveConditional(w http.ResponseWriter, r *http.Request, userID, viewPath string) bool {
	etag := fmt.Sprintf("W/\"%s:%s.%d\"", userID, viewPath, c.Generation(userID, viewPath))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}
