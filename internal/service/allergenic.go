package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/canteen/canteen/internal/metrics"
	"github.com/canteen/canteen/internal/model"
	"github.com/canteen/canteen/internal/repository"
)

// AllergenicInput is a validated allergenic payload.
type AllergenicInput struct {
	Name    string
	Picture string
}

// AllergenicService handles allergenic business logic.
type AllergenicService struct {
	store   AllergenicStore
	metrics metrics.Recorder
}

// NewAllergenicService creates a new AllergenicService.
func NewAllergenicService(store AllergenicStore, recorder metrics.Recorder) *AllergenicService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AllergenicService{store: store, metrics: recorder}
}

// Create stores a new allergenic. Names are unique.
func (s *AllergenicService) Create(ctx context.Context, input AllergenicInput) (*model.Allergenic, error) {
	_, err := s.store.GetAllergenicByName(ctx, input.Name)
	if err == nil {
		return nil, ErrAllergenicNameExists
	}
	if !errors.Is(err, repository.ErrAllergenicNotFound) {
		return nil, fmt.Errorf("failed to check allergenic name: %w", err)
	}

	ts := now()
	a := &model.Allergenic{
		ID:        model.NewID(),
		Name:      input.Name,
		Picture:   input.Picture,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := s.store.CreateAllergenic(ctx, a); err != nil {
		return nil, mapAllergenicError(err)
	}

	s.metrics.IncCreated(metrics.ResourceAllergenic)
	return a, nil
}

// Get returns the allergenic with the given id.
func (s *AllergenicService) Get(ctx context.Context, id string) (*model.Allergenic, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	a, err := s.store.GetAllergenicByID(ctx, id)
	if err != nil {
		return nil, mapAllergenicError(err)
	}
	return a, nil
}

// List returns every allergenic.
func (s *AllergenicService) List(ctx context.Context) ([]*model.Allergenic, error) {
	allergenics, err := s.store.ListAllergenics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list allergenics: %w", err)
	}
	return allergenics, nil
}

// Update replaces the name and picture of an allergenic.
func (s *AllergenicService) Update(ctx context.Context, id string, input AllergenicInput) (*model.Allergenic, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	a, err := s.store.GetAllergenicByID(ctx, id)
	if err != nil {
		return nil, mapAllergenicError(err)
	}

	a.Name = input.Name
	a.Picture = input.Picture
	a.UpdatedAt = now()

	if err := s.store.UpdateAllergenic(ctx, a); err != nil {
		return nil, mapAllergenicError(err)
	}

	s.metrics.IncUpdated(metrics.ResourceAllergenic)
	return a, nil
}

// Delete removes an allergenic and returns it.
func (s *AllergenicService) Delete(ctx context.Context, id string) (*model.Allergenic, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	a, err := s.store.DeleteAllergenic(ctx, id)
	if err != nil {
		return nil, mapAllergenicError(err)
	}

	s.metrics.IncDeleted(metrics.ResourceAllergenic)
	return a, nil
}

func mapAllergenicError(err error) error {
	switch {
	case errors.Is(err, repository.ErrAllergenicNotFound):
		return ErrAllergenicNotFound
	case errors.Is(err, repository.ErrAllergenicNameExists):
		return ErrAllergenicNameExists
	default:
		return fmt.Errorf("allergenic store: %w", err)
	}
}
