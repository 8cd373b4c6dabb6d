package tts

import (
	"fmt"
	"sync"
)

// audioCache is a bounded synthesis cache with oldest-first eviction.
// It models the blob-URL cache of the original runtime: repeated
// utterances (greetings, nudges) replay without a network round trip,
// while the bound keeps memory flat across a long session.
type audioCache struct {
	mu    sync.Mutex
	cap   int
	order []string
	items map[string]*AudioResult
}

func newAudioCache(capacity int) *audioCache {
	return &audioCache{
		cap:   capacity,
		items: make(map[string]*AudioResult, capacity),
	}
}

// key derives the cache key for a request.
func (c *audioCache) key(req SpeakRequest) string {
	return fmt.Sprintf("%s|%s|%s", req.VoiceRef, req.Lang, req.Text)
}

// get returns a cached result, or nil.
func (c *audioCache) get(req SpeakRequest) *AudioResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[c.key(req)]
}

// put stores a result, evicting the oldest entry when full.
func (c *audioCache) put(req SpeakRequest, result *AudioResult) {
	if c.cap <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(req)
	if _, exists := c.items[k]; exists {
		return
	}

	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}

	c.order = append(c.order, k)
	c.items[k] = result
}

// len returns the number of cached entries.
func (c *audioCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
