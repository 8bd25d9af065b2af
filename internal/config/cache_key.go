package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionDrawKey returns the cache key holding a session's draw questions.
func (r *CacheKeyStruct) SessionDrawKey(sessionID string) string {
	return fmt.Sprintf("session:%s:draw", sessionID)
}

// LeaderboardChannel returns the Redis PubSub channel for leaderboard updates.
func (r *CacheKeyStruct) LeaderboardChannel() string {
	return "leaderboard:updates"
}

var CacheKey = NewCacheKeyStruct()
