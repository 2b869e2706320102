package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/database/testutil"
	"github.com/cjmartens/homestead/internal/models"
)

func newTaskFixture(t *testing.T) (*gorm.DB, *TaskService, *models.User, *models.Home, *time.Time) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	current := time.Now().UTC().Truncate(time.Second)

	svc, err := NewTaskService(db, WithTaskClock(func() time.Time { return current }))
	require.NoError(t, err)

	owner := seedUser(t, db, "owner@example.com")
	home := seedHome(t, db, owner.ID)
	return db, svc, owner, home, &current
}

func TestTaskCreateAttachments(t *testing.T) {
	db, svc, owner, home, _ := newTaskFixture(t)

	room := &models.Room{Name: "Kitchen", HomeID: home.ID}
	require.NoError(t, db.Create(room).Error)
	item := &models.Item{Name: "Dishwasher", HomeID: home.ID, RoomID: room.ID}
	require.NoError(t, db.Create(item).Error)

	homeTask, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{Title: "Clean gutters"})
	require.NoError(t, err)
	require.Equal(t, models.LocationHome, homeTask.Location().Kind)

	roomTask, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{Title: "Mop floor", RoomID: room.ID})
	require.NoError(t, err)
	require.Equal(t, models.LocationRoom, roomTask.Location().Kind)

	itemTask, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{Title: "Descale", ItemID: item.ID})
	require.NoError(t, err)
	require.Equal(t, models.LocationItem, itemTask.Location().Kind)

	// Both room and item set is rejected.
	_, err = svc.Create(context.Background(), owner.ID, home.ID, TaskInput{
		Title:  "Ambiguous",
		RoomID: room.ID,
		ItemID: item.ID,
	})
	require.Error(t, err)

	// Rooms from other homes are invisible.
	otherHome := seedHome(t, db, owner.ID)
	_, err = svc.Create(context.Background(), owner.ID, otherHome.ID, TaskInput{
		Title:  "Wrong home",
		RoomID: room.ID,
	})
	require.ErrorIs(t, err, ErrRoomNotFound)

	tasks, err := svc.List(context.Background(), owner.ID, home.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
}

func TestTaskCompleteNonRecurring(t *testing.T) {
	_, svc, owner, home, current := newTaskFixture(t)

	task, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{Title: "Fix fence"})
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), owner.ID, home.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusCompleted, done.Status)
	require.NotNil(t, done.LastCompleted)
	require.Equal(t, current.Unix(), done.LastCompleted.Unix())
	require.Nil(t, done.NextDueDate)

	// No new occurrence spawns for one-off tasks.
	tasks, err := svc.List(context.Background(), owner.ID, home.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestTaskCompleteRecurringSpawnsNext(t *testing.T) {
	db, svc, owner, home, current := newTaskFixture(t)

	due := current.Add(24 * time.Hour)
	task, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{
		Title:       "Replace HVAC filter",
		DueDate:     &due,
		IsRecurring: true,
		Interval:    3,
		Unit:        "MONTHLY",
	})
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), owner.ID, home.ID, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusCompleted, done.Status)

	// Next due date counts from completion, not the original due date.
	wantDue := current.AddDate(0, 3, 0)
	require.NotNil(t, done.NextDueDate)
	require.Equal(t, wantDue.Unix(), done.NextDueDate.Unix())

	var next models.Task
	require.NoError(t, db.First(&next, "parent_task_id = ?", task.ID).Error)
	require.Equal(t, models.TaskStatusPending, next.Status)
	require.Equal(t, task.Title, next.Title)
	require.True(t, next.IsRecurring)
	require.Equal(t, 3, next.Interval)
	require.NotNil(t, next.DueDate)
	require.Equal(t, wantDue.Unix(), next.DueDate.Unix())
}

func TestTaskRecurrenceValidation(t *testing.T) {
	_, svc, owner, home, _ := newTaskFixture(t)

	_, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{
		Title:       "Bad unit",
		IsRecurring: true,
		Interval:    1,
		Unit:        "FORTNIGHTLY",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), owner.ID, home.ID, TaskInput{
		Title:       "Bad interval",
		IsRecurring: true,
		Interval:    0,
		Unit:        "WEEKLY",
	})
	require.Error(t, err)
}

func TestTaskStatusTransitions(t *testing.T) {
	db, svc, owner, home, _ := newTaskFixture(t)

	task, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{Title: "Paint shed"})
	require.NoError(t, err)

	started, err := svc.UpdateStatus(context.Background(), owner.ID, home.ID, task.ID, models.TaskStatusInProgress)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusInProgress, started.Status)

	_, err = svc.UpdateStatus(context.Background(), owner.ID, home.ID, task.ID, models.TaskStatus("DONE"))
	require.Error(t, err)

	// Routing completion through UpdateStatus still fires recurrence logic.
	recurring, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{
		Title:       "Test smoke alarms",
		IsRecurring: true,
		Interval:    6,
		Unit:        "MONTHLY",
	})
	require.NoError(t, err)

	done, err := svc.UpdateStatus(context.Background(), owner.ID, home.ID, recurring.ID, models.TaskStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusCompleted, done.Status)

	var next models.Task
	require.NoError(t, db.First(&next, "parent_task_id = ?", recurring.ID).Error)
	require.Equal(t, models.TaskStatusPending, next.Status)
}

func TestTaskAccessControl(t *testing.T) {
	db, svc, owner, home, _ := newTaskFixture(t)

	reader := seedUser(t, db, "reader@example.com")
	store := mustShareStore(t, db)
	require.NoError(t, store.CreateShare(context.Background(), &models.HomeShare{
		HomeID: home.ID,
		UserID: reader.ID,
		Role:   models.ShareRoleRead,
	}))

	task, err := svc.Create(context.Background(), owner.ID, home.ID, TaskInput{Title: "Seal driveway"})
	require.NoError(t, err)

	// READ shares can list but not mutate.
	tasks, err := svc.List(context.Background(), reader.ID, home.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = svc.Complete(context.Background(), reader.ID, home.ID, task.ID)
	require.ErrorIs(t, err, ErrWriteForbidden)

	err = svc.Delete(context.Background(), reader.ID, home.ID, task.ID)
	require.ErrorIs(t, err, ErrWriteForbidden)
}
