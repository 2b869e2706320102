package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/pkg/metrics"
)

// TaskOption customises TaskService behaviour.
type TaskOption func(*TaskService)

// WithTaskClock injects a custom clock primarily for testing.
func WithTaskClock(clock func() time.Time) TaskOption {
	return func(s *TaskService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// TaskService manages maintenance tasks attached to a home, room, or item.
// Completing a recurring task spawns the next occurrence.
type TaskService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *gorm.DB, opts ...TaskOption) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	service := &TaskService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// TaskInput carries the editable fields of a task. Exactly one of RoomID and
// ItemID may be set; when both are empty the task attaches to the home.
type TaskInput struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=2000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *time.Time `json:"due_date"`

	RoomID string `json:"room_id"`
	ItemID string `json:"item_id"`

	IsRecurring bool   `json:"is_recurring"`
	Interval    int    `json:"interval" validate:"omitempty,min=1"`
	Unit        string `json:"unit"`

	AssigneeID string `json:"assignee_id"`
}

// Create adds a task to a home, one of its rooms, or one of its items.
func (s *TaskService) Create(ctx context.Context, actorID, homeID string, input TaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    models.TaskPriorityMedium,
		Status:      models.TaskStatusPending,
		DueDate:     input.DueDate,
		CreatorID:   actorID,
	}
	if input.Priority != "" {
		task.Priority = models.TaskPriority(strings.ToUpper(input.Priority))
	}
	if input.AssigneeID != "" {
		task.AssigneeID = &input.AssigneeID
	}

	if err := s.attach(ctx, task, homeID, input.RoomID, input.ItemID); err != nil {
		return nil, err
	}
	if err := s.applyRecurrence(task, input); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("task service: create task: %w", err)
	}
	return task, nil
}

// Get returns a single task within a home.
func (s *TaskService) Get(ctx context.Context, actorID, homeID, taskID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}
	return s.findInHome(ctx, homeID, taskID)
}

// List returns all tasks in a home: those attached to the home directly and
// those attached to its rooms and items. Optional status filter.
func (s *TaskService) List(ctx context.Context, actorID, homeID, status string) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := requireRead(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	query := s.homeScope(ctx, homeID)
	if status != "" {
		query = query.Where("status = ?", strings.ToUpper(strings.TrimSpace(status)))
	}

	var tasks []models.Task
	if err := query.Order("due_date ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces the editable fields of a task.
func (s *TaskService) Update(ctx context.Context, actorID, homeID, taskID string, input TaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	task, err := s.findInHome(ctx, homeID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = strings.TrimSpace(input.Title)
	task.Description = strings.TrimSpace(input.Description)
	if input.Priority != "" {
		task.Priority = models.TaskPriority(strings.ToUpper(input.Priority))
	}
	task.DueDate = input.DueDate
	task.AssigneeID = nil
	if input.AssigneeID != "" {
		task.AssigneeID = &input.AssigneeID
	}

	if err := s.attach(ctx, task, homeID, input.RoomID, input.ItemID); err != nil {
		return nil, err
	}
	if err := s.applyRecurrence(task, input); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, fmt.Errorf("task service: update task: %w", err)
	}
	return task, nil
}

// UpdateStatus moves a task between PENDING, IN_PROGRESS and CANCELLED.
// Completion goes through Complete so recurrence fires.
func (s *TaskService) UpdateStatus(ctx context.Context, actorID, homeID, taskID string, status models.TaskStatus) (*models.Task, error) {
	ctx = ensureContext(ctx)

	if status == models.TaskStatusCompleted {
		return s.Complete(ctx, actorID, homeID, taskID)
	}

	switch status {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCancelled:
	default:
		return nil, ErrBadTaskStatus(string(status))
	}

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	task, err := s.findInHome(ctx, homeID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, fmt.Errorf("task service: update status: %w", err)
	}
	return task, nil
}

// Complete marks a task COMPLETED. For recurring tasks it also records the
// completion time, computes the next due date, and spawns the next PENDING
// occurrence threaded to this one via parent_task_id. Both writes happen in
// one transaction.
func (s *TaskService) Complete(ctx context.Context, actorID, homeID, taskID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return nil, err
	}

	task, err := s.findInHome(ctx, homeID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var next *models.Task

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task.Status = models.TaskStatusCompleted
		task.LastCompleted = &now

		if task.IsRecurring && task.Unit != nil && task.Interval > 0 {
			due := task.Unit.NextOccurrence(now, task.Interval)
			task.NextDueDate = &due

			next = &models.Task{
				Title:        task.Title,
				Description:  task.Description,
				Priority:     task.Priority,
				Status:       models.TaskStatusPending,
				DueDate:      &due,
				IsRecurring:  true,
				Interval:     task.Interval,
				Unit:         task.Unit,
				NextDueDate:  &due,
				ParentTaskID: &task.ID,
				HomeID:       task.HomeID,
				RoomID:       task.RoomID,
				ItemID:       task.ItemID,
				CreatorID:    task.CreatorID,
				AssigneeID:   task.AssigneeID,
			}
			if err := tx.Create(next).Error; err != nil {
				return fmt.Errorf("task service: spawn next occurrence: %w", err)
			}
		}

		if err := tx.Save(task).Error; err != nil {
			return fmt.Errorf("task service: complete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCompleted.WithLabelValues(fmt.Sprintf("%t", task.IsRecurring)).Inc()
	return task, nil
}

// Delete removes a task. Future occurrences already spawned are left alone.
func (s *TaskService) Delete(ctx context.Context, actorID, homeID, taskID string) error {
	ctx = ensureContext(ctx)

	if _, err := requireWrite(ctx, s.db, homeID, actorID); err != nil {
		return err
	}

	task, err := s.findInHome(ctx, homeID, taskID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return fmt.Errorf("task service: delete task: %w", err)
	}
	return nil
}

// attach validates the attachment target and sets exactly one foreign key.
func (s *TaskService) attach(ctx context.Context, task *models.Task, homeID, roomID, itemID string) error {
	task.HomeID = nil
	task.RoomID = nil
	task.ItemID = nil

	switch {
	case roomID != "" && itemID != "":
		if _, err := models.NewLocation("", roomID, itemID); err != nil {
			return ErrBadLocation(err)
		}
		return nil
	case itemID != "":
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Item{}).
			Where("id = ? AND home_id = ?", itemID, homeID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("task service: check item: %w", err)
		}
		if count == 0 {
			return ErrItemNotFound
		}
		task.ItemID = &itemID
	case roomID != "":
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Room{}).
			Where("id = ? AND home_id = ?", roomID, homeID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("task service: check room: %w", err)
		}
		if count == 0 {
			return ErrRoomNotFound
		}
		task.RoomID = &roomID
	default:
		task.HomeID = &homeID
	}
	return nil
}

func (s *TaskService) applyRecurrence(task *models.Task, input TaskInput) error {
	if !input.IsRecurring {
		task.IsRecurring = false
		task.Interval = 0
		task.Unit = nil
		task.NextDueDate = nil
		return nil
	}

	unit, err := models.ParseRecurrenceUnit(input.Unit)
	if err != nil {
		return ErrBadRecurrence(input.Unit)
	}
	if input.Interval < 1 {
		return ErrBadInterval(input.Interval)
	}

	task.IsRecurring = true
	task.Interval = input.Interval
	task.Unit = &unit
	if task.DueDate != nil {
		task.NextDueDate = task.DueDate
	}
	return nil
}

// homeScope builds a query matching tasks attached anywhere under a home.
func (s *TaskService) homeScope(ctx context.Context, homeID string) *gorm.DB {
	rooms := s.db.Model(&models.Room{}).Select("id").Where("home_id = ?", homeID)
	items := s.db.Model(&models.Item{}).Select("id").Where("home_id = ?", homeID)
	return s.db.WithContext(ctx).Model(&models.Task{}).
		Where("home_id = ? OR room_id IN (?) OR item_id IN (?)", homeID, rooms, items)
}

func (s *TaskService) findInHome(ctx context.Context, homeID, taskID string) (*models.Task, error) {
	var task models.Task
	err := s.homeScope(ctx, homeID).Where("tasks.id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: find task: %w", err)
	}
	return &task, nil
}
