package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"animehost/internal/config"
)

// MetadataIndex answers whether a stored filename still has a metadata row.
type MetadataIndex interface {
	FilenameExists(ctx context.Context, filename string) (bool, error)
}

// Janitor consumes janitor tasks from the redis stream and sweeps the
// upload directory for orphaned files: files old enough to not be an
// in-flight upload, with no metadata row referencing them. Orphans appear
// when an upload's metadata insert or a delete's file removal fails.
type Janitor struct {
	client    *redis.Client
	cfg       config.JanitorConfig
	uploadDir string
	index     MetadataIndex
	consumer  string
	log       zerolog.Logger
}

func NewJanitor(client *redis.Client, cfg config.JanitorConfig, uploadDir string, index MetadataIndex, log zerolog.Logger) *Janitor {
	host, _ := os.Hostname()
	if host == "" {
		host = "animehost"
	}
	return &Janitor{
		client:    client,
		cfg:       cfg,
		uploadDir: uploadDir,
		index:     index,
		consumer:  host,
		log:       log,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	if j.client == nil || j.uploadDir == "" {
		return nil
	}

	err := j.client.XGroupCreateMkStream(ctx, j.cfg.Stream, j.cfg.Group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return err
	}

	ticker := time.NewTicker(j.cfg.ClaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := j.read(ctx); err != nil && ctx.Err() == nil {
				j.log.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = j.claimStalled(ctx)
		default:
		}
	}
}

func (j *Janitor) read(ctx context.Context) error {
	result, err := j.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    j.cfg.Group,
		Consumer: j.consumer,
		Streams:  []string{j.cfg.Stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			if err := j.handle(ctx, msg); err != nil {
				j.log.Error().
					Err(err).
					Str("message_id", msg.ID).
					Msg("handle task failed")
				continue
			}
			if err := j.client.XAck(ctx, j.cfg.Stream, j.cfg.Group, msg.ID).Err(); err != nil {
				j.log.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
			}
		}
	}
	return nil
}

func (j *Janitor) claimStalled(ctx context.Context) error {
	pending, err := j.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: j.cfg.Stream,
		Group:  j.cfg.Group,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if entry.Idle < j.cfg.ClaimInterval {
			continue
		}
		msgs, err := j.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   j.cfg.Stream,
			Group:    j.cfg.Group,
			Consumer: j.consumer,
			MinIdle:  j.cfg.ClaimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			j.log.Error().Err(err).Msg("claim error")
			continue
		}
		for _, msg := range msgs {
			if err := j.handle(ctx, msg); err != nil {
				j.log.Error().Err(err).Str("message_id", msg.ID).Msg("handle claimed task failed")
				continue
			}
			if err := j.client.XAck(ctx, j.cfg.Stream, j.cfg.Group, msg.ID).Err(); err != nil {
				j.log.Error().Err(err).Str("message_id", msg.ID).Msg("ack claimed failed")
			}
		}
	}
	return nil
}

func (j *Janitor) handle(ctx context.Context, msg redis.XMessage) error {
	taskType, _ := msg.Values["type"].(string)
	switch taskType {
	case taskOrphanSweep:
		return j.sweepOrphans(ctx)
	default:
		j.log.Warn().Str("type", taskType).Msg("unknown task type")
		return nil
	}
}

func (j *Janitor) sweepOrphans(ctx context.Context) error {
	entries, err := os.ReadDir(j.uploadDir)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-j.cfg.MinFileAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Young files may belong to an upload whose insert has not landed yet.
		if info.ModTime().After(cutoff) {
			continue
		}

		exists, err := j.index.FilenameExists(ctx, entry.Name())
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		target := filepath.Join(j.uploadDir, entry.Name())
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			j.log.Error().Err(err).Str("file", target).Msg("orphan removal failed")
			continue
		}
		removed++
	}

	j.log.Info().Int("removed", removed).Msg("orphan sweep finished")
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && len(err.Error()) >= 9 && err.Error()[:9] == "BUSYGROUP"
}
