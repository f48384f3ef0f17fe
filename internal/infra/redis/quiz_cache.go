package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// QuizCache caches quiz content (XP value plus question set) in Redis as a
// JSON blob per quiz, falling back to the wrapped repository on a miss.
// Singleflight keeps a stampede of session loads from hammering the store.
type QuizCache struct {
	client *redis.Client
	source app.QuizContentRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, source app.QuizContentRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetContent(ctx context.Context, quizID string) (domain.QuizContent, error) {
	key := c.key(quizID)

	if content, ok := c.fromCache(ctx, key); ok {
		return content, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if content, ok := c.fromCache(ctx, key); ok {
			return content, nil
		}

		content, err := c.source.GetContent(ctx, quizID)
		if err != nil {
			return domain.QuizContent{}, err
		}

		if raw, err := json.Marshal(content); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return content, nil
	})
	if err != nil {
		return domain.QuizContent{}, err
	}
	return result.(domain.QuizContent), nil
}

func (c *QuizCache) fromCache(ctx context.Context, key string) (domain.QuizContent, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuizContent{}, false
	}
	var content domain.QuizContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return domain.QuizContent{}, false
	}
	return content, true
}

func (c *QuizCache) key(quizID string) string {
	return "quiz:" + quizID + ":content"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
