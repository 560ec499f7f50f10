package memorybroker

import (
	"context"
	"testing"
	"time"

	"github.com/ga4gh/anyvar/internal/broker"
)

func TestBroker_SubmitConsumeAck(t *testing.T) {
	b := New(4)
	ctx := context.Background()

	task := broker.Task{RunID: "run-1", InputPath: "in.vcf", OutputPath: "out.vcf"}
	if err := b.Submit(ctx, task); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, err := b.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("got run id %q, want run-1", got.RunID)
	}
	if got.DeliveryID == "" {
		t.Error("expected non-empty DeliveryID")
	}

	if err := b.Ack(ctx, got); err != nil {
		t.Fatalf("Ack: %v", err)
	}
}

func TestBroker_NackRedelivers(t *testing.T) {
	b := New(4)
	ctx := context.Background()

	if err := b.Submit(ctx, broker.Task{RunID: "run-1"}); err != nil {
		t.Fatal(err)
	}
	first, err := b.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Nack(ctx, first); err != nil {
		t.Fatalf("Nack: %v", err)
	}

	second, err := b.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.RunID != "run-1" {
		t.Errorf("got run id %q after redelivery, want run-1", second.RunID)
	}
	if second.DeliveryID == first.DeliveryID {
		t.Error("expected a fresh DeliveryID after Nack")
	}
}

func TestBroker_ConsumeRespectsContextDeadline(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Consume(ctx)
	if err != broker.ErrNoTask {
		t.Errorf("got %v, want ErrNoTask on empty broker with expired context", err)
	}
}

func TestResultStore_SetGetDelete(t *testing.T) {
	s := NewResultStore()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "run-1"); err != nil || ok {
		t.Fatalf("expected miss before Set, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "run-1", []byte(`{"status":"RUNNING"}`)); err != nil {
		t.Fatal(err)
	}
	data, ok, err := s.Get(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("expected hit after Set, got ok=%v err=%v", ok, err)
	}
	if string(data) != `{"status":"RUNNING"}` {
		t.Errorf("got %q", data)
	}

	if err := s.Delete(ctx, "run-1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "run-1"); ok {
		t.Error("expected miss after Delete")
	}
}
