package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ReviewEntity = "review"
)

// Review is embedded in its parent Book; it has no collection of its own.
type Review struct {
	User    string `bson:"user" json:"user"`
	Rating  int    `bson:"rating" json:"rating"`
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`
}

func (r Review) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.User, validation.Required),
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}
