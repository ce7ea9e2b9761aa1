package redis

import (
	"fmt"

	"github.com/mcoot/banglascrabble/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "bscrabble"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionMembersKey returns the Redis key for the HASH of a session's members, keyed by player id
func sessionMembersKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s:members", keyPrefix, id)
}

// sessionMovesKey returns the Redis key for the LIST of a session's moves
func sessionMovesKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s:moves", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the ZSET of session ids scored by creation time
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}
