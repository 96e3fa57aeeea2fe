package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tryon-web/internal/domain/valueobjects"
)

type TryOnRequestID string

// TryOnRequest is one submission of a session's two images.
// The references are the strings sent in the provider's *_image_url
// fields and are filled in right before the remote call.
type TryOnRequest struct {
	id           TryOnRequestID
	sessionID    SessionID
	personImage  *valueobjects.ImagePayload
	garmentImage *valueobjects.ImagePayload
	personRef    string
	garmentRef   string
	createdAt    time.Time
}

func NewTryOnRequest(
	sessionID SessionID,
	personImage *valueobjects.ImagePayload,
	garmentImage *valueobjects.ImagePayload,
) (*TryOnRequest, error) {
	if personImage == nil {
		return nil, fmt.Errorf("person image is required")
	}

	if garmentImage == nil {
		return nil, fmt.Errorf("garment image is required")
	}

	return &TryOnRequest{
		id:           TryOnRequestID("req_" + uuid.NewString()),
		sessionID:    sessionID,
		personImage:  personImage,
		garmentImage: garmentImage,
		createdAt:    time.Now(),
	}, nil
}

func (r *TryOnRequest) ID() TryOnRequestID {
	return r.id
}

func (r *TryOnRequest) SessionID() SessionID {
	return r.sessionID
}

func (r *TryOnRequest) PersonImage() *valueobjects.ImagePayload {
	return r.personImage
}

func (r *TryOnRequest) GarmentImage() *valueobjects.ImagePayload {
	return r.garmentImage
}

func (r *TryOnRequest) CreatedAt() time.Time {
	return r.createdAt
}

func (r *TryOnRequest) PersonImageRef() string {
	return r.personRef
}

func (r *TryOnRequest) GarmentImageRef() string {
	return r.garmentRef
}

func (r *TryOnRequest) SetReferences(personRef, garmentRef string) {
	r.personRef = personRef
	r.garmentRef = garmentRef
}

func (r *TryOnRequest) HasReferences() bool {
	return r.personRef != "" && r.garmentRef != ""
}
