package tasks

import (
	"context"

	"cargodesk/internal/config"
	"cargodesk/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient enqueues notification tasks. Enqueue failures are logged and
// returned but never roll back the caller's work.
type TaskClient struct {
	client      *asynq.Client
	logger      *logger.Logger
	redisClient *redis.Client
}

func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(cfg config.RedisConfig) *TaskClient {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &TaskClient{
		client:      asynq.NewClient(RedisClientOpt(cfg)),
		redisClient: redisClient,
		logger:      logger.New("TASKS"),
	}
}

// Redis exposes the shared connection used by the limiter and bot sessions.
func (c *TaskClient) Redis() *redis.Client {
	return c.redisClient
}

func (c *TaskClient) SendVerificationCode(ctx context.Context, email, code string) error {
	task, err := NewVerificationCodeTask(email, code)
	if err != nil {
		return c.logger.Error("Failed to build verification task for %s", err, email)
	}
	return c.enqueue(ctx, task)
}

func (c *TaskClient) NotifyOrderStatus(ctx context.Context, orderID, status string) error {
	task, err := NewOrderStatusTask(orderID, status)
	if err != nil {
		return c.logger.Error("Failed to build order status task for %s", err, orderID)
	}
	return c.enqueue(ctx, task)
}

func (c *TaskClient) enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return c.logger.Error("Failed to enqueue %s", err, task.Type())
	}
	c.logger.Debug("Enqueued %s as %s on %s", task.Type(), info.ID, info.Queue)
	return nil
}

// Close closes the underlying asynq and redis clients
func (c *TaskClient) Close() error {
	if err := c.client.Close(); err != nil {
		return err
	}
	return c.redisClient.Close()
}
