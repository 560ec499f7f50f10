// Package redisbroker implements broker.Broker over a Redis Stream
// consumer group, and broker.ResultStore over a Redis hash, so the
// async VCF ingest queue can run workers on separate processes. The
// consumer group gives prefetch-1 semantics naturally: each XReadGroup
// call asks for exactly one new entry, and entries stay in the group's
// pending-entries list (PEL) until XAck, so late ack plus a crashed
// consumer's un-acked entries are reclaimed by XAutoClaim.
package redisbroker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ga4gh/anyvar/internal/broker"
)

// Broker is a broker.Broker backed by one Redis Stream and consumer
// group. Every process sharing Stream+Group participates in the same
// prefetch-1 work queue.
type Broker struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	minIdle  time.Duration
}

// Options configures a Broker.
type Options struct {
	Stream   string        // stream key, e.g. "anyvar:vcf-ingest"
	Group    string        // consumer group name, e.g. "anyvar-workers"
	Consumer string        // this process's consumer name within Group
	MinIdle  time.Duration // how long a pending entry must be idle before XAutoClaim reclaims it
}

// DefaultOptions returns Options with anyvar's conventional stream/group
// names and a 30-second reclaim threshold.
func DefaultOptions(consumer string) Options {
	return Options{
		Stream:   "anyvar:vcf-ingest",
		Group:    "anyvar-workers",
		Consumer: consumer,
		MinIdle:  30 * time.Second,
	}
}

// New creates a Broker, creating the stream and consumer group if they
// don't already exist.
func New(ctx context.Context, client *redis.Client, opts Options) (*Broker, error) {
	b := &Broker{
		client:   client,
		stream:   opts.Stream,
		group:    opts.Group,
		consumer: opts.Consumer,
		minIdle:  opts.MinIdle,
	}
	err := client.XGroupCreateMkStream(ctx, b.stream, b.group, "0").Err()
	if err != nil && !isBusyGroupErr(err) {
		return nil, err
	}
	return b, nil
}

// isBusyGroupErr reports whether err is Redis's BUSYGROUP error, returned
// by XGroupCreateMkStream when the group already exists.
func isBusyGroupErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

type wireTask struct {
	RunID      string `json:"run_id"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
}

func (b *Broker) Submit(ctx context.Context, task broker.Task) error {
	payload, err := json.Marshal(wireTask{RunID: task.RunID, InputPath: task.InputPath, OutputPath: task.OutputPath})
	if err != nil {
		return err
	}
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]interface{}{"task": string(payload)},
	}).Err()
}

// Consume first tries to reclaim an idle pending entry left behind by a
// crashed consumer (XAutoClaim), then falls back to reading one new
// entry for this consumer, blocking until ctx is done.
func (b *Broker) Consume(ctx context.Context) (broker.Task, error) {
	if task, ok, err := b.autoClaimOne(ctx); err != nil {
		return broker.Task{}, err
	} else if ok {
		return task, nil
	}

	block := time.Duration(0)
	if deadline, ok := ctx.Deadline(); ok {
		block = time.Until(deadline)
		if block < 0 {
			block = 0
		}
	} else {
		block = 5 * time.Second
	}

	res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    b.group,
		Consumer: b.consumer,
		Streams:  []string{b.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) {
			return broker.Task{}, broker.ErrNoTask
		}
		return broker.Task{}, err
	}
	for _, stream := range res {
		for _, msg := range stream.Messages {
			return b.decodeMessage(msg)
		}
	}
	return broker.Task{}, broker.ErrNoTask
}

func (b *Broker) autoClaimOne(ctx context.Context) (broker.Task, bool, error) {
	msgs, _, err := b.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   b.stream,
		Group:    b.group,
		Consumer: b.consumer,
		MinIdle:  b.minIdle,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return broker.Task{}, false, nil
		}
		return broker.Task{}, false, err
	}
	if len(msgs) == 0 {
		return broker.Task{}, false, nil
	}
	task, err := b.decodeMessage(msgs[0])
	if err != nil {
		return broker.Task{}, false, err
	}
	return task, true, nil
}

func (b *Broker) decodeMessage(msg redis.XMessage) (broker.Task, error) {
	raw, _ := msg.Values["task"].(string)
	var wt wireTask
	if err := json.Unmarshal([]byte(raw), &wt); err != nil {
		return broker.Task{}, err
	}
	return broker.Task{
		RunID:      wt.RunID,
		InputPath:  wt.InputPath,
		OutputPath: wt.OutputPath,
		DeliveryID: msg.ID,
	}, nil
}

func (b *Broker) Ack(ctx context.Context, task broker.Task) error {
	return b.client.XAck(ctx, b.stream, b.group, task.DeliveryID).Err()
}

// Nack resubmits task as a fresh stream entry and acks the original
// delivery, so a deliberately-rejected task is retried promptly instead
// of waiting out the XAutoClaim idle threshold.
func (b *Broker) Nack(ctx context.Context, task broker.Task) error {
	if err := b.Submit(ctx, task); err != nil {
		return err
	}
	return b.Ack(ctx, task)
}

func (b *Broker) Close() error {
	return b.client.Close()
}

// ResultStore is a broker.ResultStore backed by a Redis hash, one field
// per run id.
type ResultStore struct {
	client *redis.Client
	key    string
}

// NewResultStore creates a ResultStore using hashKey as the Redis key.
func NewResultStore(client *redis.Client, hashKey string) *ResultStore {
	return &ResultStore{client: client, key: hashKey}
}

func (s *ResultStore) Set(ctx context.Context, runID string, data []byte) error {
	return s.client.HSet(ctx, s.key, runID, data).Err()
}

func (s *ResultStore) Get(ctx context.Context, runID string) ([]byte, bool, error) {
	val, err := s.client.HGet(ctx, s.key, runID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(val), true, nil
}

func (s *ResultStore) Delete(ctx context.Context, runID string) error {
	return s.client.HDel(ctx, s.key, runID).Err()
}
