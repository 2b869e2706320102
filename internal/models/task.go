package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// TaskPriority orders tasks for display and reminders.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// RecurrenceUnit is the calendar unit for recurring task intervals.
type RecurrenceUnit string

const (
	RecurrenceDaily   RecurrenceUnit = "DAILY"
	RecurrenceWeekly  RecurrenceUnit = "WEEKLY"
	RecurrenceMonthly RecurrenceUnit = "MONTHLY"
	RecurrenceYearly  RecurrenceUnit = "YEARLY"
)

// ParseRecurrenceUnit validates a recurrence unit string.
func ParseRecurrenceUnit(value string) (RecurrenceUnit, error) {
	unit := RecurrenceUnit(strings.ToUpper(strings.TrimSpace(value)))
	switch unit {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return unit, nil
	default:
		return "", fmt.Errorf("task: invalid recurrence unit %q", value)
	}
}

// NextOccurrence advances from the given instant by interval units.
func (u RecurrenceUnit) NextOccurrence(from time.Time, interval int) time.Time {
	switch u {
	case RecurrenceDaily:
		return from.AddDate(0, 0, interval)
	case RecurrenceWeekly:
		return from.AddDate(0, 0, 7*interval)
	case RecurrenceMonthly:
		return from.AddDate(0, interval, 0)
	case RecurrenceYearly:
		return from.AddDate(interval, 0, 0)
	default:
		return from
	}
}

// Task is a maintenance task attached to exactly one of a home, room, or
// item. Recurring tasks spawn their next occurrence on completion.
type Task struct {
	BaseModel

	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `gorm:"type:text;default:MEDIUM" json:"priority"`
	Status      TaskStatus   `gorm:"type:text;default:PENDING;index" json:"status"`
	DueDate     *time.Time   `json:"due_date,omitempty"`

	IsRecurring   bool            `gorm:"default:false" json:"is_recurring"`
	Interval      int             `json:"interval,omitempty"`
	Unit          *RecurrenceUnit `gorm:"type:text" json:"unit,omitempty"`
	LastCompleted *time.Time      `json:"last_completed,omitempty"`
	NextDueDate   *time.Time      `json:"next_due_date,omitempty"`

	ParentTaskID *string `gorm:"type:uuid;index" json:"parent_task_id,omitempty"`
	ParentTask   *Task   `gorm:"foreignKey:ParentTaskID" json:"-"`

	// Exactly one of HomeID, RoomID, ItemID is set; enforced at the write
	// boundary via Location, not by the schema.
	HomeID *string `gorm:"type:uuid;index" json:"home_id,omitempty"`
	RoomID *string `gorm:"type:uuid;index" json:"room_id,omitempty"`
	ItemID *string `gorm:"type:uuid;index" json:"item_id,omitempty"`

	Home *Home `gorm:"foreignKey:HomeID" json:"home,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	CreatorID  string  `gorm:"type:uuid;not null;index" json:"creator_id"`
	AssigneeID *string `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	Creator    *User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee   *User   `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

// Location reconstructs the tagged attachment target from the stored
// foreign keys.
func (t *Task) Location() Location {
	switch {
	case t.ItemID != nil && *t.ItemID != "":
		return Location{Kind: LocationItem, ID: *t.ItemID}
	case t.RoomID != nil && *t.RoomID != "":
		return Location{Kind: LocationRoom, ID: *t.RoomID}
	case t.HomeID != nil && *t.HomeID != "":
		return Location{Kind: LocationHome, ID: *t.HomeID}
	default:
		return Location{}
	}
}
