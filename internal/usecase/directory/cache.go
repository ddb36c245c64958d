// Package directory holds the cache keys of the public developer directory.
package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	applog "devhub/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	prefix        = "developers:"
	listPrefix    = prefix + "list:"
	profilePrefix = prefix + "user:"
)

// Cache is the subset of the Redis cache the directory uses.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type listKeyInput struct {
	Query  string `json:"q"`
	Skill  string `json:"skill"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func normalizeSearchValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// ListKey returns the key of one directory page. Queries differing only in
// case or spacing share a key.
func ListKey(query, skill string, limit, offset int) string {
	in := listKeyInput{
		Query:  normalizeSearchValue(query),
		Skill:  normalizeSearchValue(skill),
		Limit:  limit,
		Offset: offset,
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return listPrefix + hex.EncodeToString(sum[:])
}

func ProfileKey(userID uuid.UUID) string {
	return profilePrefix + userID.String()
}

// Invalidate drops every cached directory page and the cached profile of
// userID. Failures are logged and otherwise ignored.
func Invalidate(ctx context.Context, c Cache, userID uuid.UUID, logger *zap.Logger) {
	if c == nil {
		return
	}
	logger = applog.OrNop(logger)
	if err := c.DeleteByPattern(ctx, listPrefix+"*"); err != nil {
		logger.Warn("invalidate directory pages failed", zap.Error(err))
	}
	if userID != uuid.Nil {
		if err := c.Delete(ctx, ProfileKey(userID)); err != nil {
			logger.Warn("invalidate profile failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
}
