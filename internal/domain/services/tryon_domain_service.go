package services

import (
	"context"
	"fmt"

	"tryon-web/internal/domain/entities"
	"tryon-web/internal/domain/repositories"
	"tryon-web/internal/domain/valueobjects"
)

type TryOnDomainService struct {
	provider   repositories.TryOnProvider
	referencer repositories.ImageReferencer
}

func NewTryOnDomainService(provider repositories.TryOnProvider, referencer repositories.ImageReferencer) *TryOnDomainService {
	return &TryOnDomainService{
		provider:   provider,
		referencer: referencer,
	}
}

// ProcessTryOn resolves the image references and performs the single
// remote call. Every failure is returned as one wrapped error.
func (s *TryOnDomainService) ProcessTryOn(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error) {
	if err := s.validateRequest(request); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}

	personRef, err := s.referencer.Reference(ctx, request.ID(), valueobjects.ModelSlot, request.PersonImage())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare person image: %w", err)
	}

	garmentRef, err := s.referencer.Reference(ctx, request.ID(), valueobjects.GarmentSlot, request.GarmentImage())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare garment image: %w", err)
	}

	request.SetReferences(personRef, garmentRef)

	result, err := s.provider.GenerateTryOn(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("try-on generation failed: %w", err)
	}

	if result == nil {
		return nil, fmt.Errorf("try-on generation failed: empty response")
	}

	return result, nil
}

func (s *TryOnDomainService) validateRequest(request *entities.TryOnRequest) error {
	if request == nil {
		return fmt.Errorf("request is required")
	}

	if request.PersonImage() == nil {
		return fmt.Errorf("person image is required")
	}

	if request.GarmentImage() == nil {
		return fmt.Errorf("garment image is required")
	}

	return nil
}
