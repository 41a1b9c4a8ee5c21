package main

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/messaging"
	"github.com/matst80/slask-catalogue/pkg/storage"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

type AmqpSender struct {
	Prefix     string
	connection *amqp.Connection
}

func NewAmqpSender(conn *amqp.Connection, prefix string) *AmqpSender {
	return &AmqpSender{
		Prefix:     prefix,
		connection: conn,
	}
}

// SendRubrics validates the rubric list before publishing it.
func (app *AmqpSender) SendRubrics(ctx context.Context, data []byte) error {
	rubrics, err := storage.ParseRubrics(data)
	if err != nil {
		return err
	}
	return messaging.SendChange(ctx, app.connection, app.Prefix, messaging.RubricsChanged, rubrics)
}

func (app *AmqpSender) SendDocuments(ctx context.Context, collection string, data []byte) error {
	change, err := documentsChange(collection, data)
	if err != nil {
		return err
	}
	return messaging.SendChange(ctx, app.connection, app.Prefix, messaging.DocumentsChanged, change)
}

func documentsChange(collection string, data []byte) (*messaging.DocumentsChange, error) {
	var docs []types.Document
	if err := sonic.Unmarshal(data, &docs); err != nil {
		return nil, errors.Wrap(err, "decode documents")
	}
	for _, doc := range docs {
		if doc.Id == "" {
			return nil, errors.Errorf("document %q has no id", doc.Slug)
		}
	}
	return &messaging.DocumentsChange{Collection: collection, Documents: docs}, nil
}
