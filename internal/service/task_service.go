package service

import (
	"context"
	"fmt"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService turns workflow templates into per-order checklists and keeps
// the order status in step with checklist completion.
type TaskService struct {
	base
}

// NewTaskService creates a task service backed by db
func NewTaskService(db *gorm.DB, opts ...Option) *TaskService {
	return &TaskService{base: newBase(db, opts)}
}

// ApplyTemplate creates one incomplete task per template definition on the
// order and returns the new task ids in definition order. Applying is
// additive: existing tasks, including ones from the same template, are kept.
func (s *TaskService) ApplyTemplate(ctx context.Context, who model.Identity, orderID, templateID uint) ([]uint, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("apply_template")(time.Now())

	var tasks []model.OrderTask
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := loadOwned(tx, tenantID, "order", orderID, &order); err != nil {
			return err
		}
		var template model.WorkflowTemplate
		if err := loadOwned(tx.Preload("Definitions", orderByIndex), tenantID, "workflow template", templateID, &template); err != nil {
			return err
		}
		if len(template.Definitions) == 0 {
			return nil
		}

		tasks = make([]model.OrderTask, 0, len(template.Definitions))
		for _, def := range template.Definitions {
			defID := def.ID
			tasks = append(tasks, model.OrderTask{
				TailorID:         tenantID,
				OrderID:          order.ID,
				TaskDefinitionID: &defID,
				Name:             def.Name,
				OrderIndex:       def.OrderIndex,
			})
		}
		return tx.Create(&tasks).Error
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}

	prometheus.TemplatesAppliedCounter.Inc()
	prometheus.TasksCreatedCounter.Add(float64(len(ids)))
	logger.FromContext(ctx).Info("Workflow template applied",
		zap.Uint("order_id", orderID),
		zap.Uint("template_id", templateID),
		zap.Int("tasks_created", len(ids)),
		zap.Uint("tenant_id", tenantID))
	return ids, nil
}

// SetTaskCompletion marks a task complete or incomplete and returns the
// order's status afterwards. When a task goes from incomplete to complete and every task of the
// order is then complete, the order becomes Completed. Un-completing a task
// never moves the order back.
func (s *TaskService) SetTaskCompletion(ctx context.Context, who model.Identity, taskID uint, completed bool) (model.OrderStatus, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return "", err
	}
	defer prometheus.TrackDBOperation("toggle_task")(time.Now())

	var (
		status        model.OrderStatus
		changed       bool
		autoCompleted bool
	)
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.OrderTask
		if err := loadOwned(tx, tenantID, "order task", taskID, &task); err != nil {
			return err
		}
		var order model.Order
		if err := loadOwned(tx, tenantID, "order", task.OrderID, &order); err != nil {
			return err
		}

		now := s.clock()
		changed = task.SetCompleted(completed, now)
		if changed {
			if err := tx.Model(&task).Select("is_completed", "completed_at").Updates(&task).Error; err != nil {
				return fmt.Errorf("update task: %w", err)
			}
		}

		status = order.Status
		if !changed || !completed || order.Status == model.OrderCompleted {
			return nil
		}

		var remaining int64
		if err := tx.Model(&model.OrderTask{}).
			Where("order_id = ? AND is_completed = ?", order.ID, false).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("count open tasks: %w", err)
		}
		if remaining > 0 {
			return nil
		}

		order.SetStatus(model.OrderCompleted, now)
		if err := tx.Model(&order).Select("status", "completed_at").Updates(&order).Error; err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		status = order.Status
		autoCompleted = true
		return nil
	})
	if err != nil {
		return "", err
	}

	if changed {
		prometheus.RecordTaskToggle(completed)
	}
	if autoCompleted {
		prometheus.OrdersAutoCompletedCounter.Inc()
		logger.FromContext(ctx).Info("Order completed by checklist",
			zap.Uint("task_id", taskID),
			zap.Uint("tenant_id", tenantID))
	}
	return status, nil
}

// ListTasks returns an order's tasks in display order
func (s *TaskService) ListTasks(ctx context.Context, who model.Identity, orderID uint) ([]model.OrderTask, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	var order model.Order
	if err := loadOwned(s.conn(ctx), tenantID, "order", orderID, &order); err != nil {
		return nil, err
	}

	tasks := []model.OrderTask{}
	if err := orderByIndex(s.conn(ctx).Where("order_id = ?", orderID)).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}
