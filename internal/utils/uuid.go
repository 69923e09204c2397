package utils

import "github.com/google/uuid"

// UUIDGenerator produces the opaque tokens the store layer uses for device
// identity. Version 7 is preferred so tokens sort by creation time; when v7
// generation fails the generator degrades to a random v4.
type UUIDGenerator struct {
}

// NewUUIDGenerator returns a stateless generator; one instance may be shared
// freely.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a fresh UUID string.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
