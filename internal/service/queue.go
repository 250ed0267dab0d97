package service

import (
	"context"
	"errors"
	"fmt"

	"chatwoot/kbsync/internal/domain/task"
	"chatwoot/kbsync/internal/queue"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var errQueueDisabled = errors.New("article queue is not configured")

// Enqueue splits a document and pushes its records onto the article stream
func (s *Service) Enqueue(ctx context.Context, documentPath string) (int, error) {
	if s.queue == nil {
		return 0, errQueueDisabled
	}

	records, ok := s.readRecords(documentPath)
	if !ok {
		return 0, nil
	}

	for i, record := range records {
		_, err := s.queue.AddTask(ctx, &task.ArticleTask{
			Source:   documentPath,
			Position: i,
			Record:   record,
		})
		if err != nil {
			return i, fmt.Errorf("failed to enqueue record %d of %s: %w", i+1, documentPath, err)
		}
	}

	log.Infof("📥 Enqueued %d articles from %s", len(records), documentPath)
	return len(records), nil
}

// Drain publishes queued records one at a time until the stream is empty.
// Entries left pending by an interrupted drain are picked up first.
func (s *Service) Drain(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, errQueueDisabled
	}

	stream := queue.StreamName(task.ArticleTaskType)
	published := 0

	pending, err := s.queue.AutoClaim(ctx, s.options.ConsumerGroup, s.options.Consumer, stream, s.options.MinIdleTime)
	if err != nil {
		return 0, err
	}
	if len(pending) > 0 {
		log.Infof("🔄 Reclaimed %d pending articles", len(pending))
	}
	for i := range pending {
		ok, err := s.processMessage(ctx, stream, &pending[i])
		if err != nil {
			return published, err
		}
		if ok {
			published++
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return published, err
		}

		msg, err := s.queue.GetTask(ctx, s.options.ConsumerGroup, s.options.Consumer, stream)
		if err != nil {
			return published, err
		}
		if msg == nil {
			break
		}

		ok, err := s.processMessage(ctx, stream, msg)
		if err != nil {
			return published, err
		}
		if ok {
			published++
		}
	}

	log.Infof("✅ Drained %d articles from %s", published, stream)
	return published, nil
}

// processMessage publishes one stream entry. Entries that do not decode to an
// article task are acknowledged and dropped, reported as not published.
func (s *Service) processMessage(ctx context.Context, stream string, msg *redis.XMessage) (bool, error) {
	articleTask, err := decodeArticleTask(msg)
	if err != nil {
		log.Warnf("⚠️ Dropping malformed message %s: %v", msg.ID, err)
		if err := s.queue.AckTask(ctx, stream, s.options.ConsumerGroup, msg.ID); err != nil {
			return false, fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
		}
		return false, nil
	}

	// Left unacknowledged on failure so the next drain reclaims it.
	if _, _, err := s.Publish(ctx, articleTask.Record, articleTask.Source); err != nil {
		return false, fmt.Errorf("message %s (record %d of %s): %w", msg.ID, articleTask.Position+1, articleTask.Source, err)
	}

	if err := s.queue.AckTask(ctx, stream, s.options.ConsumerGroup, msg.ID); err != nil {
		return false, fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return true, nil
}

func decodeArticleTask(msg *redis.XMessage) (*task.ArticleTask, error) {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok || taskType != task.ArticleTaskType {
		return nil, fmt.Errorf("unexpected task type %v", msg.Values["task_type"])
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return nil, errors.New("missing task data")
	}

	articleTask, err := task.Decode[*task.ArticleTask]([]byte(taskData))
	if err != nil {
		return nil, err
	}
	if articleTask == nil {
		return nil, errors.New("null task data")
	}
	return articleTask, nil
}
