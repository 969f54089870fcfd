package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// ValidID reports whether id has the backend's identifier shape, a
// 24-character hex Mongo ObjectID. Malformed ids fail fast client-side so
// that no mutation is ever attempted with an id the backend cannot resolve.
func ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// CheckID returns ErrInvalidID for ids that do not match the backend shape.
func CheckID(id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	return nil
}
