package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookpedia/internal/entities"
	"github.com/mrlokans/bookpedia/internal/scheduler"
	"github.com/mrlokans/bookpedia/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client    *tasks.Client
	scheduler *scheduler.BackfillScheduler
}

// NewTasksController creates a new TasksController.
func NewTasksController(client *tasks.Client, scheduler *scheduler.BackfillScheduler) *TasksController {
	return &TasksController{client: client, scheduler: scheduler}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "backfill_description",
			Description: "Fetch the description of one favourite saved without it",
			Queue:       tasks.BackfillDescriptionTask{}.Config().Name,
		},
		{
			Type:        "backfill_pending",
			Description: "Fetch descriptions for all favourites missing one",
			Queue:       tasks.BackfillPendingTask{}.Config().Name,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// ID is required for backfill_description
	ID string `json:"id,omitempty" form:"id"`
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}

	ctx := c.Request.Context()
	var (
		taskID string
		err    error
	)
	switch taskType {
	case "backfill_description":
		if !entities.IsWorkID(req.ID) {
			respondBadRequest(c, "a work id is required for backfill_description task")
			return
		}
		taskID, err = tc.client.RunDescriptionBackfill(ctx, req.ID)

	case "backfill_pending":
		if tc.scheduler != nil {
			taskID, err = tc.scheduler.RunNow(ctx)
		} else {
			taskID, err = tc.client.EnqueuePendingBackfill(ctx)
		}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": taskID,
		"type":    taskType,
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
