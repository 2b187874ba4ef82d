package handler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/handler"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

type session struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *session) Claims() map[string][]int32               { return nil }
func (s *session) MemberID() string                         { return "test" }
func (s *session) GenerationID() int32                      { return 1 }
func (s *session) MarkOffset(string, int32, int64, string)  {}
func (s *session) Commit()                                  {}
func (s *session) ResetOffset(string, int32, int64, string) {}
func (s *session) Context() context.Context                 { return s.ctx }

func (s *session) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type claim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *claim) Topic() string                            { return kafka.CatalogImportTopic }
func (c *claim) Partition() int32                         { return 0 }
func (c *claim) InitialOffset() int64                     { return 0 }
func (c *claim) HighWaterMarkOffset() int64               { return 0 }
func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	var got []model.BookDescriptor
	importBook := func(_ context.Context, actor model.Actor, d model.BookDescriptor) (model.Book, error) {
		require.Equal(t, handler.CatalogImporter, actor)
		got = append(got, d)
		switch d.Title {
		case "":
			return model.Book{}, errs.NewValidationError(map[string]string{"Title": "required"})
		case "dup":
			return model.Book{}, errors.Wrap(errs.ErrConflict, "isbn")
		case "busy":
			return model.Book{}, errors.Wrap(errs.ErrBusy, "book")
		}
		return model.Book{ID: "b1", Title: d.Title}, nil
	}
	consumer := handler.NewConsumer(importBook, zap.NewExample())

	messages := []string{
		`{"title":"Dune","author":"Frank Herbert"}`,
		`not json`,
		`{"author":"nobody"}`,
		`{"title":"dup","author":"x"}`,
		`{"title":"busy","author":"x"}`,
	}
	c := &claim{messages: make(chan *sarama.ConsumerMessage, len(messages))}
	for i, m := range messages {
		c.messages <- &sarama.ConsumerMessage{Offset: int64(i), Value: []byte(m), Topic: kafka.CatalogImportTopic}
	}
	close(c.messages)
	s := &session{ctx: context.Background()}

	require.NoError(t, consumer.Setup(s))
	<-consumer.Ready()
	require.NoError(t, consumer.ConsumeClaim(s, c))
	require.NoError(t, consumer.Cleanup(s))

	require.Len(t, got, 4)
	// the busy message stays unmarked for redelivery
	require.Equal(t, []int64{0, 1, 2, 3}, s.marked)
}

func TestConsumer_SetupTwice(t *testing.T) {
	t.Parallel()
	consumer := handler.NewConsumer(nil, zap.NewExample())
	s := &session{ctx: context.Background()}
	require.NoError(t, consumer.Setup(s))
	require.NoError(t, consumer.Setup(s))
}
