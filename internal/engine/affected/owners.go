package affected

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/affected/internal/core/domain"
)

// ownerLookup memoizes ownership resolution for one registry. Watch mode
// recomputes against the same registry for every batch of edits, and the same
// paths tend to change again and again.
type ownerLookup struct {
	mapper *domain.OwnershipMapper
	memo   *lru.Cache[string, domain.Ownership]
}

func newOwnerLookup(mapper *domain.OwnershipMapper) *ownerLookup {
	memo, err := lru.New[string, domain.Ownership](ownerCacheSize)
	if err != nil {
		panic(err)
	}
	return &ownerLookup{mapper: mapper, memo: memo}
}

func (l *ownerLookup) ownerOf(path string) domain.Ownership {
	if o, ok := l.memo.Get(path); ok {
		return o
	}
	o := l.mapper.OwnerOf(path)
	l.memo.Add(path, o)
	return o
}
