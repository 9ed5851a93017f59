package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
)

// GormGreetingRepository implements GreetingRepository using GORM
type GormGreetingRepository struct {
	db *gorm.DB
}

// NewGormGreetingRepository creates a new GORM greeting repository
func NewGormGreetingRepository(db *gorm.DB) *GormGreetingRepository {
	return &GormGreetingRepository{db: db}
}

// Create persists a new greeting
func (r *GormGreetingRepository) Create(ctx context.Context, g *greeting.Greeting) error {
	model := greetingToModel(g)

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create greeting: %w", err)
	}

	return nil
}

// FindByID retrieves a greeting by its id
func (r *GormGreetingRepository) FindByID(ctx context.Context, id greeting.GreetingID) (*greeting.Greeting, error) {
	var model GreetingModel
	err := dbFromContext(ctx, r.db).Where("id = ?", id.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &greeting.ErrGreetingNotFound{ID: id.String()}
		}
		return nil, fmt.Errorf("failed to find greeting: %w", err)
	}

	return modelToGreeting(&model)
}

// List returns greetings newest first
func (r *GormGreetingRepository) List(ctx context.Context, opts greeting.ListOptions) ([]*greeting.Greeting, error) {
	opts = opts.Normalize()

	query := dbFromContext(ctx, r.db).Model(&GreetingModel{})
	if opts.Name != "" {
		query = query.Where("name = ?", opts.Name)
	}

	var models []GreetingModel
	if err := query.Order("created_at DESC").Order("id").Limit(opts.Limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list greetings: %w", err)
	}

	greetings := make([]*greeting.Greeting, len(models))
	for i := range models {
		g, err := modelToGreeting(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert greeting model: %w", err)
		}
		greetings[i] = g
	}

	return greetings, nil
}

func greetingToModel(g *greeting.Greeting) *GreetingModel {
	return &GreetingModel{
		ID:        g.ID().String(),
		Name:      g.Name(),
		Message:   g.Message(),
		CreatedAt: g.CreatedAt(),
	}
}

func modelToGreeting(model *GreetingModel) (*greeting.Greeting, error) {
	id, err := greeting.ParseGreetingID(model.ID)
	if err != nil {
		return nil, err
	}
	return greeting.Reconstruct(id, model.Name, model.Message, model.CreatedAt)
}
