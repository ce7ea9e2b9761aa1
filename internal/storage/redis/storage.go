package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter is satisfied by both the client and a WATCH transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}

	prev, err := s.GetPlayer(ctx, player.ID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	if player.Username != "" {
		idxKey := usernameIndexKey(player.Username)
		claimed, err := s.client.SetNX(ctx, idxKey, string(player.ID), ttl).Result()
		if err != nil {
			return err
		}
		if !claimed {
			owner, err := s.client.Get(ctx, idxKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if owner != string(player.ID) {
				return model.ErrUsernameTaken
			}
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), data, ttl)
	if prev != nil && prev.Username != player.Username {
		pipe.Del(ctx, usernameIndexKey(prev.Username))
	}
	if player.Username != "" && ttl > 0 {
		pipe.Expire(ctx, usernameIndexKey(player.Username), ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	// Look up player ID from username index
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(playerIDStr))
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, playerKey(id), registeredPlayerKey(id))
	if player.Username != "" {
		pipe.Del(ctx, usernameIndexKey(player.Username))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0).Err() // No TTL
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return getJSON[model.RegisteredPlayer](ctx, s.client, registeredPlayerKey(playerID), model.ErrPlayerNotFound)
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrSessionExists
	}

	return s.client.ZAdd(ctx, sessionsIndexKey(), redis.Z{
		Score:  float64(session.CreatedAt.UnixNano()),
		Member: string(session.ID),
	}).Err()
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getJSON[model.Session](ctx, s.client, sessionKey(id), model.ErrSessionNotFound)
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	ids, err := s.client.ZRevRange(ctx, sessionsIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(model.SessionID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	var expired []any
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			// Session expired; drop it from the index
			expired = append(expired, ids[i])
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		sessions = append(sessions, &session)
	}
	if len(expired) > 0 {
		if err := s.client.ZRem(ctx, sessionsIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *Storage) requireSession(ctx context.Context, id model.SessionID) error {
	n, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *Storage) ListMembers(ctx context.Context, id model.SessionID) ([]*model.Member, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	values, err := s.client.HGetAll(ctx, sessionMembersKey(id)).Result()
	if err != nil {
		return nil, err
	}

	members := make([]*model.Member, 0, len(values))
	for _, raw := range values {
		var m model.Member
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		members = append(members, &m)
	}
	slices.SortFunc(members, func(a, b *model.Member) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return members, nil
}

func (s *Storage) ListMoves(ctx context.Context, id model.SessionID) ([]*model.Move, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	values, err := s.client.LRange(ctx, sessionMovesKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	moves := make([]*model.Move, 0, len(values))
	for _, raw := range values {
		var m model.Move
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode move: %w", err)
		}
		moves = append(moves, &m)
	}
	return moves, nil
}

// Apply commits a changeset in one MULTI/EXEC, guarded by WATCH on the session key
func (s *Storage) Apply(ctx context.Context, cs *storage.Changeset) error {
	id := cs.Session.ID
	key := sessionKey(id)

	sessionData, err := json.Marshal(cs.Session)
	if err != nil {
		return err
	}
	memberData := make(map[model.PlayerID][]byte, len(cs.Members))
	for _, m := range cs.Members {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		memberData[m.PlayerID] = data
	}
	var moveData []byte
	if cs.Move != nil {
		if moveData, err = json.Marshal(cs.Move); err != nil {
			return err
		}
	}

	ttl := s.cfg.SessionTTL
	txf := func(tx *redis.Tx) error {
		current, err := getJSON[model.Session](ctx, tx, key, model.ErrSessionNotFound)
		if err != nil {
			return err
		}
		if cs.Session.Version != current.Version+1 {
			return model.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionData, ttl)
			for playerID, data := range memberData {
				pipe.HSet(ctx, sessionMembersKey(id), string(playerID), data)
			}
			if moveData != nil {
				pipe.RPush(ctx, sessionMovesKey(id), moveData)
			}
			if ttl > 0 {
				pipe.Expire(ctx, sessionMembersKey(id), ttl)
				pipe.Expire(ctx, sessionMovesKey(id), ttl)
			}
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrVersionConflict
	}
	return err
}
