package model

// PixelcutTryOnRequest is the body of the Pixelcut try-on call. Despite the
// field names the values may be data URLs as well as hosted URLs.
type PixelcutTryOnRequest struct {
	PersonImageURL  string `json:"person_image_url"`
	GarmentImageURL string `json:"garment_image_url"`
}

// VirtualTryOnResponse represents the response structure from Google's Virtual Try-On API
type VirtualTryOnResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Prediction represents a single prediction result
type Prediction struct {
	MimeType           string `json:"mimeType"`
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	// Set instead of the bytes when the request named a storage URI.
	StorageUri       string                 `json:"storageUri,omitempty"`
	SafetyAttributes map[string]interface{} `json:"safetyAttributes,omitempty"`
}

// FirstImage returns the first prediction that carries image bytes.
func (r *VirtualTryOnResponse) FirstImage() (Prediction, bool) {
	for _, p := range r.Predictions {
		if p.BytesBase64Encoded != "" {
			return p, true
		}
	}
	return Prediction{}, false
}
