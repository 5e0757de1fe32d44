package temporal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	taskqueuepb "go.temporal.io/api/taskqueue/v1"
	workflowservicepb "go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
)

type Client struct {
	TClient   client.Client
	TSClient  client.ScheduleClient
	Namespace string
	TaskQueue string
	logger    *zap.Logger
}

type Health struct {
	ConnectionOK bool                      `json:"connection_ok"`
	TaskQueue    []*taskqueuepb.PollerInfo `json:"task_queue"`
}

// NewClient dials Temporal and checks the connection.
func NewClient(ctx context.Context, logger *zap.Logger, hostPort, namespace, taskQueue string) (*Client, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}

	logger.Info("Connecting to Temporal", zap.String("host", hostPort), zap.String("namespace", namespace))
	tClient, err := Dial(ctx, hostPort, namespace, NewZapAdapter(logger.Named("temporal")))
	if err != nil {
		return nil, err
	}

	if _, err = tClient.CheckHealth(ctx, nil); err != nil {
		tClient.Close()
		return nil, err
	}

	return &Client{
		TClient:   tClient,
		TSClient:  tClient.ScheduleClient(),
		Namespace: namespace,
		TaskQueue: taskQueue,
		logger:    logger,
	}, nil
}

// Dial connects to Temporal using the provided hostPort and namespace.
func Dial(ctx context.Context, hostPort, namespace string, logger log.Logger) (client.Client, error) {
	return client.DialContext(
		ctx,
		client.Options{
			HostPort:  hostPort,
			Namespace: namespace,
			Logger:    logger,
		},
	)
}

// EnsureSchedule creates the schedule id running action on spec unless it
// already exists. An existing schedule is left untouched.
func (c *Client) EnsureSchedule(ctx context.Context, id string, spec client.ScheduleSpec, action *client.ScheduleWorkflowAction) error {
	h := c.TSClient.GetHandle(ctx, id)
	_, err := h.Describe(ctx)
	if err == nil {
		c.logger.Info("Schedule already exists", zap.String("id", id), zap.String("namespace", c.Namespace))
		return nil
	}

	var notFound *serviceerror.NotFound
	if !errors.As(err, &notFound) {
		return err
	}

	c.logger.Info("Creating schedule", zap.String("id", id), zap.String("namespace", c.Namespace))
	if action.TaskQueue == "" {
		action.TaskQueue = c.TaskQueue
	}
	_, err = c.TSClient.Create(ctx, client.ScheduleOptions{
		ID:      id,
		Spec:    spec,
		Action:  action,
		Overlap: enums.SCHEDULE_OVERLAP_POLICY_SKIP,
	})
	return err
}

// Health returns the health of the Temporal client.
func (c *Client) Health(ctx context.Context) (Health, error) {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if _, err := c.TClient.CheckHealth(ctx, nil); err != nil {
		return Health{}, err
	}
	h := Health{ConnectionOK: true}
	if svc := c.TClient.WorkflowService(); svc != nil {
		if rep, err := svc.DescribeTaskQueue(ctx, &workflowservicepb.DescribeTaskQueueRequest{
			Namespace:     c.Namespace,
			TaskQueue:     &taskqueuepb.TaskQueue{Name: c.TaskQueue},
			TaskQueueType: enums.TASK_QUEUE_TYPE_WORKFLOW,
		}); err == nil {
			h.TaskQueue = rep.GetPollers()
		}
	}
	return h, nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.TClient.Close()
}
