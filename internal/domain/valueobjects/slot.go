package valueobjects

import "fmt"

// ImageSlot names one of the two inputs of a try-on.
type ImageSlot string

const (
	ModelSlot   ImageSlot = "model"
	GarmentSlot ImageSlot = "garment"
)

func ParseImageSlot(s string) (ImageSlot, error) {
	switch ImageSlot(s) {
	case ModelSlot, GarmentSlot:
		return ImageSlot(s), nil
	default:
		return "", fmt.Errorf("unknown image slot %q", s)
	}
}
