package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/convert"
	"github.com/nvquang/formatforge/internal/models"
	"github.com/nvquang/formatforge/pkg/utils"
)

// QueueService publishes async conversion jobs to RabbitMQ and runs
// the workers that consume them. Input bytes are staged in the cache;
// only the job envelope travels through the broker.
type QueueService struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	logger     *zap.Logger
	queueName  string
	dispatcher *convert.Dispatcher
	storage    *StorageService
}

func NewQueueService(rabbitmqURL string, dispatcher *convert.Dispatcher, storage *StorageService, logger *zap.Logger) (*QueueService, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queueName := "file_conversion"

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &QueueService{
		conn:       conn,
		channel:    channel,
		logger:     logger,
		queueName:  queueName,
		dispatcher: dispatcher,
		storage:    storage,
	}, nil
}

// PublishJob puts a conversion job on the queue.
func (q *QueueService) PublishJob(ctx context.Context, job *models.ConversionJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue", zap.String("job_id", job.ID))
	return nil
}

// StartWorker consumes jobs until ctx is cancelled.
func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.ConversionJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal job", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID),
	)

	state := &models.JobState{
		ID:          job.ID,
		Status:      models.StatusProcessing,
		FileName:    job.FileName,
		SubmittedAt: job.CreatedAt,
	}
	q.saveState(ctx, state)

	input, err := q.storage.TakeInput(ctx, job.InputKey)
	if err != nil {
		q.failJob(ctx, state, fmt.Errorf("staged input unavailable: %w", err))
		msg.Nack(false, false)
		return
	}

	result, err := q.dispatcher.Dispatch(ctx, &convert.Request{
		Data:         input,
		FileName:     job.FileName,
		TargetFormat: job.TargetFormat,
	})
	if err != nil {
		q.failJob(ctx, state, err)
		msg.Ack(false)
		return
	}

	key := utils.GenerateStorageKey(utils.ReplaceExt(job.FileName, job.TargetFormat))
	url, err := q.storage.Upload(ctx, result.Bytes, key, result.MIMEType)
	if err != nil {
		q.failJob(ctx, state, fmt.Errorf("failed to store result: %w", err))
		msg.Ack(false)
		return
	}

	state.Status = models.StatusCompleted
	state.ResultURL = url
	state.FinishedAt = time.Now()
	q.saveState(ctx, state)
	msg.Ack(false)

	q.logger.Info("Job completed",
		zap.String("job_id", job.ID),
		zap.String("result_url", url),
	)
}

func (q *QueueService) failJob(ctx context.Context, state *models.JobState, err error) {
	q.logger.Error("Job failed", zap.String("job_id", state.ID), zap.Error(err))
	state.Status = models.StatusFailed
	state.Error = err.Error()
	state.FinishedAt = time.Now()
	q.saveState(ctx, state)
}

func (q *QueueService) saveState(ctx context.Context, state *models.JobState) {
	if err := q.storage.SaveJobState(ctx, state); err != nil {
		q.logger.Warn("Failed to save job state", zap.String("job_id", state.ID), zap.Error(err))
	}
}

// HealthCheck reports broker connectivity.
func (q *QueueService) HealthCheck() string {
	if q == nil || q.conn == nil || q.conn.IsClosed() {
		return "unhealthy"
	}
	return "healthy"
}

// Close shuts down the channel and connection.
func (q *QueueService) Close() {
	if q == nil {
		return
	}
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
