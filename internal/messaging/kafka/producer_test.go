package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closes    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closes++
	return nil
}

func sampleIssue() *domain.Issue {
	is := &domain.Issue{
		ID:         42,
		Title:      "Streetlight out",
		Location:   domain.Location{Latitude: 23.2156, Longitude: 72.6369},
		Status:     domain.StatusPending,
		Department: "Electricity Board",
		CreatedAt:  time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	is.Insights.Classification.Category = domain.CategoryElectricity
	is.Insights.Priority = domain.PriorityResult{Score: 55, Level: domain.PriorityHigh}
	return is
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ProducerConfig{Brokers: []string{"k:9092"}, Topic: "t"}.Validate())
	assert.Error(t, ProducerConfig{Topic: "t"}.Validate())
	assert.Error(t, ProducerConfig{Brokers: []string{"k:9092"}}.Validate())

	_, err := NewProducer(ProducerConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	w := &mockKafkaWriter{writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
		captured = msgs
		return nil
	}}
	p := newProducer(w, logging.NewNopLogger())

	ev := NewIssueCreated(sampleIssue())
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, captured, 1)
	msg := captured[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, ev.OccurredAt, msg.Time)
	assert.Equal(t, EventIssueCreated, string(msg.Headers[0].Value))

	var decoded struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		IssueID int64  `json:"issue_id"`
		Payload struct {
			Category      string `json:"category"`
			PriorityLevel string `json:"priority_level"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	_, err := uuid.Parse(decoded.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), decoded.IssueID)
	assert.Equal(t, "electricity", decoded.Payload.Category)
	assert.Equal(t, "high", decoded.Payload.PriorityLevel)
}

func TestPublish_Failure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
		return errors.New("write failed")
	}}
	p := newProducer(w, logging.NewNopLogger())

	err := p.Publish(context.Background(), NewIssueCreated(sampleIssue()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue.created")
}

func TestClose(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newProducer(w, logging.NewNopLogger())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closes)
	assert.ErrorIs(t, p.Publish(context.Background(), NewIssueCreated(sampleIssue())), ErrProducerClosed)
}

func TestNewStatusChanged(t *testing.T) {
	at := time.Date(2024, 3, 5, 0, 0, 0, 0, time.FixedZone("IST", 19800))
	ev := NewStatusChanged(domain.StatusChange{IssueID: 9, OldStatus: domain.StatusPending, NewStatus: domain.StatusResolved, Timestamp: at})

	assert.Equal(t, EventIssueStatusChanged, ev.Type)
	assert.Equal(t, int64(9), ev.IssueID)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
	assert.NotEqual(t, NewStatusChanged(domain.StatusChange{}).ID, ev.ID)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
