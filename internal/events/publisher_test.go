package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

func TestWatermillPublisher_Publish(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, watermill.NewSlogLogger(logger))
	publisher := NewWatermillPublisher(pubSub, logger)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TypeAnswerSubmitted)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	data := AnswerSubmittedEvent{StudentID: "s1", WorksheetID: "w1", QuestionID: "q1", IsCorrect: true, Answered: 1, Score: 1, Total: 2, Percent: 50}
	if err := publisher.Publish(ctx, TypeAnswerSubmitted, data); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if got := msg.Metadata.Get("event_type"); got != TypeAnswerSubmitted {
			t.Errorf("event_type metadata = %q", got)
		}

		var envelope struct {
			Event
			Data AnswerSubmittedEvent `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			t.Fatalf("payload is not a valid envelope: %v", err)
		}
		if envelope.ID != msg.UUID || envelope.Source != Source || envelope.Version != EventVersion {
			t.Errorf("envelope = %+v", envelope.Event)
		}
		if envelope.Data != data {
			t.Errorf("data = %+v, want %+v", envelope.Data, data)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestNewEventPublisher_InProcess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher, err := NewEventPublisher(PublisherConfig{}, logger)
	if err != nil {
		t.Fatalf("NewEventPublisher() error = %v", err)
	}
	defer publisher.Close()

	// Publishing without subscribers must not block or fail
	if err := publisher.Publish(context.Background(), TypeWorksheetCompleted, WorksheetCompletedEvent{StudentID: "s1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mock := NewMockEventPublisher(logger)
	ctx := context.Background()

	_ = mock.Publish(ctx, TypeAnswerSubmitted, AnswerSubmittedEvent{})
	_ = mock.Publish(ctx, TypeWorksheetCompleted, WorksheetCompletedEvent{})

	events := mock.GetPublishedEvents()
	if len(events) != 2 || events[1].Type != TypeWorksheetCompleted {
		t.Fatalf("GetPublishedEvents() = %+v", events)
	}
	if events[0].ID == "" || events[0].Timestamp.IsZero() {
		t.Error("event envelope should carry id and timestamp")
	}

	mock.ClearEvents()
	if len(mock.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents() should drop recorded events")
	}

	mock.Err = errors.New("broker down")
	if err := mock.Publish(ctx, TypeAnswerSubmitted, nil); err == nil {
		t.Error("Publish() should return configured error")
	}
}
