package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps redis failures onto the taxonomy. A missing key is not an
// error for the stores, so redis.Nil passes through untouched for callers
// that want to detect it.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return err
	}
	return New(KindUnavailable, "redis operation failed", err)
}
