package infra_clipboard_cache

import (
	"time"

	"github.com/go-redis/redis"
)

// Driver keeps the most recent clipboard value per room, keyed by the room's
// id. Entries carry the room TTL so a value never outlives its room.
type Driver struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

func (d *Driver) SetLast(roomID, content string, ttl time.Duration) error {
	return d.client.Set(d.getFullKey(roomID), content, ttl).Err()
}

func (d *Driver) Last(roomID string) (string, error) {
	val, err := d.client.Get(d.getFullKey(roomID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}

	return val, nil
}

func (d *Driver) getFullKey(roomID string) string {
	if d.key != "" {
		return d.key + ":" + roomID
	}
	return roomID
}
