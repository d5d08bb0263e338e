package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/service"
	"github.com/kidhasia/misty-ems/internal/storage"
)

// TaskHandler serves the client task registry. Submissions arrive as
// multipart forms so an attachment can ride along.
type TaskHandler struct {
	svc    *service.TaskService
	store  storage.Store
	logger *zap.Logger
}

func NewTaskHandler(svc *service.TaskService, store storage.Store, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, store: store, logger: logger}
}

// saveAttachment stores an optional uploaded file and returns its path.
// Only JPEG, PNG and PDF uploads are accepted.
func (h *TaskHandler) saveAttachment(c *gin.Context) (string, bool) {
	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		return "", true
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.AllowedContentType(contentType) {
		BadRequest(c, "attachment must be a JPEG, PNG or PDF file")
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "open upload: "+err.Error())
		return "", false
	}
	defer file.Close()

	path, err := h.store.Save(c.Request.Context(), fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		h.logger.Error("store attachment", zap.Error(err))
		InternalError(c, "store attachment: "+err.Error())
		return "", false
	}
	return path, true
}

// Submit POST /tasks
func (h *TaskHandler) Submit(c *gin.Context) {
	description := c.PostForm("description")
	if description == "" {
		BadRequest(c, "description is required")
		return
	}
	deadline, err := time.Parse("2006-01-02", c.PostForm("deadline"))
	if err != nil {
		BadRequest(c, "deadline must be YYYY-MM-DD")
		return
	}

	attachment, ok := h.saveAttachment(c)
	if !ok {
		return
	}

	task, err := h.svc.SubmitTask(c.Request.Context(), service.SubmitTaskRequest{
		ClientID:    GetUserID(c),
		Description: description,
		Deadline:    deadline,
		Attachment:  attachment,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	Created(c, task)
}

// List GET /tasks. Clients see their own tasks; staff see everything.
func (h *TaskHandler) List(c *gin.Context) {
	var (
		tasks []entity.Task
		err   error
	)
	if GetRole(c) == entity.RoleClient {
		tasks, err = h.svc.ListTasksByClient(c.Request.Context(), GetUserID(c))
	} else {
		tasks, err = h.svc.ListTasks(c.Request.Context())
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": tasks})
}

// Get GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "task id must be an integer")
		return
	}

	task, err := h.svc.GetTask(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if GetRole(c) == entity.RoleClient && task.ClientID != GetUserID(c) {
		Forbidden(c, "you do not own this resource")
		return
	}
	Success(c, task)
}

// Update PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "task id must be an integer")
		return
	}

	var req service.UpdateTaskRequest
	if description, ok := c.GetPostForm("description"); ok {
		req.Description = &description
	}
	if raw, ok := c.GetPostForm("deadline"); ok {
		deadline, err := time.Parse("2006-01-02", raw)
		if err != nil {
			BadRequest(c, "deadline must be YYYY-MM-DD")
			return
		}
		req.Deadline = &deadline
	}
	if _, err := c.FormFile("attachment"); err == nil {
		attachment, ok := h.saveAttachment(c)
		if !ok {
			return
		}
		req.Attachment = &attachment
	}

	task, err := h.svc.UpdateTask(c.Request.Context(), GetUserID(c), id, req)
	if err != nil {
		serviceError(c, err)
		return
	}
	Success(c, task)
}

// Delete DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "task id must be an integer")
		return
	}

	if err := h.svc.DeleteTask(c.Request.Context(), GetUserID(c), id); err != nil {
		serviceError(c, err)
		return
	}
	Success(c, gin.H{"message": "task deleted"})
}
