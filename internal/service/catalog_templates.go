package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"gorm.io/gorm"
)

// TemplateInput describes a workflow template and its ordered steps
type TemplateInput struct {
	Name  string
	Steps []TaskDefinitionInput
}

// TaskDefinitionInput is one template step
type TaskDefinitionInput struct {
	Name       string
	OrderIndex int
}

// CreateTemplate stores a template together with its task definitions
func (s *CatalogService) CreateTemplate(ctx context.Context, who model.Identity, in TemplateInput) (*model.WorkflowTemplate, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	template := model.WorkflowTemplate{TailorID: tenantID, Name: strings.TrimSpace(in.Name)}
	for i, step := range in.Steps {
		name := strings.TrimSpace(step.Name)
		if name == "" {
			return nil, apperr.Invalid(fmt.Sprintf("steps[%d].name", i), "is required")
		}
		template.Definitions = append(template.Definitions, model.TaskDefinition{
			Name:       name,
			OrderIndex: step.OrderIndex,
		})
	}
	prometheus.RecordOperation("template", "create")
	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Create saves the definitions in the same transaction
	if err := s.conn(ctx).Create(&template).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return &template, nil
}

// GetTemplate returns a template with its definitions in order
func (s *CatalogService) GetTemplate(ctx context.Context, who model.Identity, id uint) (*model.WorkflowTemplate, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	var template model.WorkflowTemplate
	if err := loadOwned(s.conn(ctx).Preload("Definitions", orderByIndex), tenantID, "workflow template", id, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListTemplates returns the tailor's templates by name
func (s *CatalogService) ListTemplates(ctx context.Context, who model.Identity) ([]model.WorkflowTemplate, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	var templates []model.WorkflowTemplate
	if err := s.conn(ctx).Preload("Definitions", orderByIndex).
		Where("tailor_id = ?", tenantID).
		Order("name ASC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// DeleteTemplate removes a template and its definitions. Tasks already
// applied to orders keep their copied name and index.
func (s *CatalogService) DeleteTemplate(ctx context.Context, who model.Identity, id uint) error {
	tenantID, err := tailorScope(who)
	if err != nil {
		return err
	}
	prometheus.RecordOperation("template", "delete")
	defer prometheus.TrackDBOperation("delete")(time.Now())

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var template model.WorkflowTemplate
		if err := loadOwned(tx, tenantID, "workflow template", id, &template); err != nil {
			return err
		}
		var defIDs []uint
		if err := tx.Model(&model.TaskDefinition{}).Where("template_id = ?", template.ID).Pluck("id", &defIDs).Error; err != nil {
			return fmt.Errorf("load definitions: %w", err)
		}
		if len(defIDs) > 0 {
			if err := tx.Model(&model.OrderTask{}).
				Where("task_definition_id IN ?", defIDs).
				Update("task_definition_id", nil).Error; err != nil {
				return fmt.Errorf("detach order tasks: %w", err)
			}
		}
		if err := tx.Where("template_id = ?", template.ID).Delete(&model.TaskDefinition{}).Error; err != nil {
			return fmt.Errorf("delete definitions: %w", err)
		}
		return tx.Delete(&template).Error
	})
}

func orderByIndex(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC").Order("id ASC")
}
