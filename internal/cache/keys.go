package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	BootcampKeyPrefix = "bootcamp:%d"
)

const (
	UserTTL     = 5 * time.Minute
	BootcampTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BootcampKey(bootcampID uint) string {
	return fmt.Sprintf(BootcampKeyPrefix, bootcampID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateBootcamp(ctx context.Context, bootcampID uint) {
	Invalidate(ctx, BootcampKey(bootcampID))
}
