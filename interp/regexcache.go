package interp

import (
	"container/list"

	"github.com/dgryski/go-farm"
)

// regexCache remembers validation results for recently compiled patterns so
// regex literals inside loops are checked once.
type regexCache struct {
	cache     map[uint64]*list.Element
	evictList *list.List
	maxSize   int
}

type regexEntry struct {
	key     uint64
	pattern string
	flags   string
	err     error
}

// newRegexCache creates a cache holding at most maxSize results (0 or
// negative means the default size).
func newRegexCache(maxSize int) *regexCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &regexCache{
		cache:     make(map[uint64]*list.Element),
		evictList: list.New(),
		maxSize:   maxSize,
	}
}

func regexKey(pattern, flags string) uint64 {
	return farm.Hash64WithSeed([]byte(pattern), farm.Hash64([]byte(flags)))
}

// validate returns the compile result for pattern and flags, compiling only on
// a miss.
func (c *regexCache) validate(pattern, flags string) error {
	key := regexKey(pattern, flags)
	if elem, ok := c.cache[key]; ok {
		entry := elem.Value.(*regexEntry)
		if entry.pattern == pattern && entry.flags == flags {
			c.evictList.MoveToFront(elem)
			return entry.err
		}
	}
	err := compileRegex(pattern, flags)
	c.add(&regexEntry{key: key, pattern: pattern, flags: flags, err: err})
	return err
}

func (c *regexCache) add(entry *regexEntry) {
	if elem, ok := c.cache[entry.key]; ok {
		c.evictList.MoveToFront(elem)
		elem.Value = entry
		return
	}
	c.cache[entry.key] = c.evictList.PushFront(entry)
	if c.evictList.Len() > c.maxSize {
		c.evictOldest()
	}
}

func (c *regexCache) evictOldest() {
	elem := c.evictList.Back()
	if elem != nil {
		c.evictList.Remove(elem)
		delete(c.cache, elem.Value.(*regexEntry).key)
	}
}

func (c *regexCache) Len() int {
	return len(c.cache)
}
