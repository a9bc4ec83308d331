package generator

import (
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/meesterstump/puzzle-generator/internal/geom"
)

// MaxCachedBorders bounds the number of flattened borders kept between runs.
const MaxCachedBorders = 64

type borderKey struct {
	name          string
	width, height float64
	radius, step  float64
}

// borderCache shares flattened borders between runs, including concurrent
// ones. A Boundary is never modified after construction.
var borderCache = struct {
	sync.Mutex
	entries *lru.Cache
}{entries: lru.New(MaxCachedBorders)}

// flattened returns the cached boundary for key, building it on a miss.
func flattened(key borderKey, build func() (geom.Border, error)) (*geom.Boundary, bool, error) {
	borderCache.Lock()
	v, ok := borderCache.entries.Get(key)
	borderCache.Unlock()
	if ok {
		return v.(*geom.Boundary), true, nil
	}

	border, err := build()
	if err != nil {
		return nil, false, err
	}
	b := geom.FlattenBoundary(border, key.step)

	borderCache.Lock()
	borderCache.entries.Add(key, b)
	borderCache.Unlock()
	return b, false, nil
}
