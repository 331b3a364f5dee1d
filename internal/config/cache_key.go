package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PracticeSessionKey returns the cache key holding a practice session's state blob
func (r *CacheKeyStruct) PracticeSessionKey(sessionID string) string {
	return fmt.Sprintf("practice:%s:state", sessionID)
}

var CacheKey = NewCacheKeyStruct()
