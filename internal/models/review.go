package models

import (
	"time"

	"github.com/google/uuid"
)

// Review describes feedback left after an accepted offer's work.
type Review struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OfferID    uuid.UUID `db:"offer_id" json:"offer_id"`
	ReviewerID uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	ReviewedID uuid.UUID `db:"reviewed_id" json:"reviewed_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
