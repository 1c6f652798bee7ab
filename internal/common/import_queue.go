package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ImportQueueStream = "missionhub:imports:requests"
	ImportQueueGroup  = "import-workers"
)

// ImportRequest asks the import worker to run one publisher now
type ImportRequest struct {
	PublisherID string    `json:"publisher_id"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// ImportQueue carries manual import requests from the API to the import worker
type ImportQueue interface {
	Enqueue(ctx context.Context, req *ImportRequest) error
	// Dequeue blocks up to block and returns nil when nothing arrived
	Dequeue(ctx context.Context, consumer string, block time.Duration) (*ImportRequest, string, error)
	Ack(ctx context.Context, messageID string) error
	Stats(ctx context.Context) (queued int64, pending int64, err error)
}

// RedisImportQueue is an ImportQueue over a Redis stream with one consumer group
type RedisImportQueue struct {
	client *redis.Client
	stream string
	group  string
}

func NewRedisImportQueue(client *redis.Client) *RedisImportQueue {
	return &RedisImportQueue{
		client: client,
		stream: ImportQueueStream,
		group:  ImportQueueGroup,
	}
}

// EnsureGroup creates the consumer group and stream if they do not exist
func (q *RedisImportQueue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists" {
		return nil
	}
	return err
}

func (q *RedisImportQueue) Enqueue(ctx context.Context, req *ImportRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal import request: %w", err)
	}

	// XADD stream * data <json>
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

func (q *RedisImportQueue) Dequeue(ctx context.Context, consumer string, block time.Duration) (*ImportRequest, string, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]
	raw, ok := msg.Values["data"].(string)
	if !ok {
		return nil, msg.ID, fmt.Errorf("invalid message format: data field missing")
	}

	var req ImportRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, msg.ID, fmt.Errorf("failed to unmarshal import request: %w", err)
	}
	return &req, msg.ID, nil
}

func (q *RedisImportQueue) Ack(ctx context.Context, messageID string) error {
	return q.client.XAck(ctx, q.stream, q.group, messageID).Err()
}

func (q *RedisImportQueue) Stats(ctx context.Context) (int64, int64, error) {
	length, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	pending, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		return length, 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return length, pending.Count, nil
}

// Trim keeps only the most recent maxLen entries of the stream
func (q *RedisImportQueue) Trim(ctx context.Context, maxLen int64) error {
	return q.client.XTrimMaxLen(ctx, q.stream, maxLen).Err()
}

// MemoryImportQueue is the in-process ImportQueue used when Redis is not configured.
// Requests are lost on restart.
type MemoryImportQueue struct {
	ch      chan *ImportRequest
	seq     atomic.Int64
	pending atomic.Int64
}

func NewMemoryImportQueue(size int) *MemoryImportQueue {
	return &MemoryImportQueue{ch: make(chan *ImportRequest, size)}
}

// ErrQueueFull is returned by MemoryImportQueue when its buffer is exhausted
var ErrQueueFull = errors.New("import queue is full")

func (q *MemoryImportQueue) Enqueue(ctx context.Context, req *ImportRequest) error {
	select {
	case q.ch <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryImportQueue) Dequeue(ctx context.Context, consumer string, block time.Duration) (*ImportRequest, string, error) {
	timer := time.NewTimer(block)
	defer timer.Stop()

	select {
	case req := <-q.ch:
		q.pending.Add(1)
		return req, strconv.FormatInt(q.seq.Add(1), 10), nil
	case <-timer.C:
		return nil, "", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (q *MemoryImportQueue) Ack(ctx context.Context, messageID string) error {
	q.pending.Add(-1)
	return nil
}

func (q *MemoryImportQueue) Stats(ctx context.Context) (int64, int64, error) {
	return int64(len(q.ch)), q.pending.Load(), nil
}
