package handler

import (
	"context"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
)

// CatalogImporter is the system identity used for books arriving over kafka.
var CatalogImporter = model.Actor{UserID: "catalog-import", Role: model.RoleAdmin}

type importBook func(ctx context.Context, actor model.Actor, d model.BookDescriptor) (model.Book, error)

// Consumer admits catalog descriptors published to kafka.CatalogImportTopic.
type Consumer struct {
	importBookHandler importBook
	log               *zap.Logger
	ready             chan bool
}

func NewConsumer(importBook importBook, log *zap.Logger) *Consumer {
	return &Consumer{
		importBookHandler: importBook,
		log:               log.Named("consumer"),
		ready:             make(chan bool),
	}
}

// Ready is closed once the first session is set up.
func (consumer *Consumer) Ready() <-chan bool {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if consumer.handle(session.Context(), message) {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle reports whether the message is done with. Busy and internal failures are left
// unmarked so the message is redelivered.
func (consumer *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) bool {
	var d model.BookDescriptor
	if err := kafka.Decode(message.Value, &d); err != nil {
		consumer.log.Error("decode descriptor", zap.Error(err), zap.Int64("offset", message.Offset))
		return true
	}
	book, err := consumer.importBookHandler(ctx, CatalogImporter, d)
	switch kind := errs.Kind(err); kind {
	case "":
		consumer.log.Debug("book imported",
			zap.String("id", book.ID),
			zap.String("title", book.Title),
			zap.Time("timestamp", message.Timestamp))
		return true
	case "validation", "conflict":
		consumer.log.Warn("import rejected", zap.String("kind", kind), zap.Error(err))
		return true
	default:
		consumer.log.Error("consumer.importBookHandler", zap.String("kind", kind), zap.Error(err))
		return false
	}
}
