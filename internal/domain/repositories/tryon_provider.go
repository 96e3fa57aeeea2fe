package repositories

import (
	"context"

	"tryon-web/internal/domain/entities"
	"tryon-web/internal/domain/valueobjects"
)

// TryOnProvider is the remote compositing service.
type TryOnProvider interface {
	GenerateTryOn(ctx context.Context, request *entities.TryOnRequest) (*entities.TryOnResult, error)

	Close() error
}

// ImageReferencer turns an image into the string sent in a provider's
// *_image_url field: either the inline data URL or a hosted URL.
type ImageReferencer interface {
	Reference(ctx context.Context, requestID entities.TryOnRequestID, slot valueobjects.ImageSlot, payload *valueobjects.ImagePayload) (string, error)
}
