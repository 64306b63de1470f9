package workers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/open-builders/todo-backend/internal/common/logger"
)

const (
	StreamKey     = "todo:events"
	consumerGroup = "todo_backend_consumers"

	eventMemberJoined = "member_joined"

	readBlock = 5 * time.Second
)

// JoinHandler reacts to a user joining a project.
type JoinHandler interface {
	MemberJoined(ctx context.Context, projectID, memberID int64) error
}

// StreamPublisher appends project events to the Redis stream.
type StreamPublisher struct {
	rdb redis.Cmdable
}

func NewStreamPublisher(rdb redis.Cmdable) *StreamPublisher {
	return &StreamPublisher{rdb: rdb}
}

func (p *StreamPublisher) PublishJoin(ctx context.Context, projectID, userID int64) error {
	err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: joinValues(projectID, userID),
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", StreamKey, err)
	}
	return nil
}

func joinValues(projectID, userID int64) []string {
	return []string{
		"type", eventMemberJoined,
		"project_id", strconv.FormatInt(projectID, 10),
		"user_id", strconv.FormatInt(userID, 10),
	}
}

// RedisStreamWorker consumes the event stream as part of a consumer group,
// so several instances share the work.
type RedisStreamWorker struct {
	rdb      redis.Cmdable
	consumer string
	joins    JoinHandler
}

func NewRedisStreamWorker(rdb redis.Cmdable, consumer string, joins JoinHandler) *RedisStreamWorker {
	return &RedisStreamWorker{rdb: rdb, consumer: consumer, joins: joins}
}

// Start blocks until ctx is cancelled.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, StreamKey, consumerGroup, "$").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		logger.Error().Err(err).Str("stream", StreamKey).Msg("Failed to create consumer group")
	}

	logger.Info().Str("consumer", w.consumer).Msg("Starting Redis stream worker")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping Redis stream worker")
			return
		default:
		}

		if err := w.readOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("Failed to read event stream")
			time.Sleep(time.Second)
		}
	}
}

// readOnce handles at most one batch. Messages are acknowledged even when
// handling fails; notifications are best effort.
func (w *RedisStreamWorker) readOnce(ctx context.Context) error {
	entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: w.consumer,
		Streams:  []string{StreamKey, ">"},
		Count:    10,
		Block:    readBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range entries {
		for _, msg := range stream.Messages {
			w.processMessage(ctx, msg.Values)
			if err := w.rdb.XAck(ctx, StreamKey, consumerGroup, msg.ID).Err(); err != nil {
				logger.Warn().Err(err).Str("id", msg.ID).Msg("Failed to ack event")
			}
		}
	}
	return nil
}

func (w *RedisStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	eventType, _ := values["type"].(string)
	if eventType != eventMemberJoined {
		return
	}

	projectID, err1 := int64Field(values, "project_id")
	userID, err2 := int64Field(values, "user_id")
	if err := errors.Join(err1, err2); err != nil {
		logger.Warn().Err(err).Interface("values", values).Msg("Malformed member_joined event")
		return
	}

	if err := w.joins.MemberJoined(ctx, projectID, userID); err != nil {
		logger.Warn().Err(err).Int64("project_id", projectID).Msg("Failed to notify owner")
	}
}

func int64Field(values map[string]interface{}, key string) (int64, error) {
	s, ok := values[key].(string)
	if !ok {
		return 0, fmt.Errorf("%s missing", key)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
