// Package redis mirrors the latched flags into a Redis hash and announces
// each change on a pub/sub channel named after the hash.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweeney/dock-sensor/internal/logic"
)

// Key is the hash holding the dock state, and the channel changes are published on.
const Key = "dock"

// Hash fields.
const (
	FieldWiFi      = "wifi"
	FieldShutdown  = "shutdown"
	FieldSearching = "searching"
	FieldCharging  = "charging"
)

// Client represents a Redis client for dock state.
type Client struct {
	client  *redis.Client
	timeout time.Duration
}

// New creates a new Redis client and checks the connection.
func New(addr string, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	return &Client{client: client, timeout: 2 * time.Second}, nil
}

// WriteFlags stores all four flags without publishing.
func (c *Client) WriteFlags(f logic.Flags) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	fields := FlagFields(f)
	args := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}
	return c.client.HSet(ctx, Key, args...).Err()
}

// PublishEvent stores the changed field and publishes "field:value" on Key.
func (c *Client) PublishEvent(e logic.Event) error {
	field, value, ok := EventField(e.Type)
	if !ok {
		return fmt.Errorf("no redis field for event %s", e.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, Key, field, value)
	pipe.Publish(ctx, Key, field+":"+value)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the Redis client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// FlagFields maps flags to hash field values.
func FlagFields(f logic.Flags) map[string]string {
	return map[string]string{
		FieldWiFi:      strconv.FormatBool(f.WiFi),
		FieldShutdown:  strconv.FormatBool(f.Shutdown),
		FieldSearching: strconv.FormatBool(f.Searching),
		FieldCharging:  strconv.FormatBool(f.Charging),
	}
}

// EventField returns the hash field and new value an event sets.
func EventField(t logic.EventType) (field, value string, ok bool) {
	switch t {
	case logic.EventWiFiActive:
		return FieldWiFi, "true", true
	case logic.EventWiFiInactive:
		return FieldWiFi, "false", true
	case logic.EventBoardOff:
		return FieldShutdown, "true", true
	case logic.EventBoardOn:
		return FieldShutdown, "false", true
	case logic.EventSearchingStart:
		return FieldSearching, "true", true
	case logic.EventSearchingStop:
		return FieldSearching, "false", true
	case logic.EventChargingStart:
		return FieldCharging, "true", true
	case logic.EventChargingStop:
		return FieldCharging, "false", true
	}
	return "", "", false
}
