package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/matst80/slask-catalogue/pkg/logging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var (
	rabbitUrl  = flag.String("url", os.Getenv("RABBIT_URL"), "amqp url")
	prefix     = flag.String("prefix", "catalogue", "topic prefix")
	topic      = flag.String("topic", "documents", "rubrics or documents")
	collection = flag.String("collection", "products", "collection the documents belong to")
	file       = flag.String("file", "", "json file with a rubric list or a document list")
)

func main() {
	flag.Parse()
	logger, err := logging.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("failed to read change file", zap.String("file", *file), zap.Error(err))
	}
	conn, err := amqp.Dial(*rabbitUrl)
	if err != nil {
		logger.Fatal("failed to connect to rabbit", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sender := NewAmqpSender(conn, *prefix)
	switch *topic {
	case "rubrics":
		err = sender.SendRubrics(ctx, data)
	case "documents":
		err = sender.SendDocuments(ctx, *collection, data)
	default:
		logger.Fatal("unknown topic", zap.String("topic", *topic))
	}
	if err != nil {
		logger.Fatal("failed to send change", zap.String("topic", *topic), zap.Error(err))
	}
	logger.Info("change sent", zap.String("topic", *topic), zap.String("file", *file))
}
