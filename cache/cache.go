// Package cache holds a process-lifetime cache of loaded opening
// books, so a shell session that repeatedly switches books (or reloads
// the same one) doesn't re-read and re-parse the file every time.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gopherfour/solver/book"
	"github.com/gopherfour/solver/config"
)

type objectCache struct {
	sync.Mutex
	books map[string]*book.Book
}

type loadFunc func(cfg *config.Config, path string) (*book.Book, error)

// GlobalBookCache is the process-wide book cache.
var GlobalBookCache *objectCache

func (c *objectCache) load(cfg *config.Config, path string, fn loadFunc) error {
	log.Debug().Str("path", path).Msg("loading book into cache")
	b, err := fn(cfg, path)
	if err != nil {
		return err
	}
	c.books[path] = b
	return nil
}

func (c *objectCache) get(cfg *config.Config, path string, fn loadFunc) (*book.Book, error) {
	c.Lock()
	defer c.Unlock()
	if b, ok := c.books[path]; ok {
		log.Debug().Str("path", path).Msg("book cache hit")
		return b, nil
	}
	if err := c.load(cfg, path, fn); err != nil {
		return nil, err
	}
	return c.books[path], nil
}

// CreateGlobalBookCache (re)initializes the global cache, discarding
// anything already loaded.
func CreateGlobalBookCache() {
	GlobalBookCache = &objectCache{books: make(map[string]*book.Book)}
}

// Load returns the cached book for path, loading it via fn on a cache
// miss.
func Load(cfg *config.Config, path string, fn loadFunc) (*book.Book, error) {
	if GlobalBookCache == nil {
		CreateGlobalBookCache()
	}
	return GlobalBookCache.get(cfg, path, fn)
}
