package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BookEntity = "book"
)

type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author" json:"author"`
	Genre           string             `bson:"genre" json:"genre"`
	PublicationYear int                `bson:"publication_year" json:"publication_year"`
	Price           float64            `bson:"price" json:"price"`
	Reviews         []Review           `bson:"reviews" json:"reviews"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (b Book) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Title, validation.Required),
		validation.Field(&b.Author, validation.Required),
		validation.Field(&b.Price, validation.Min(0.0)),
		validation.Field(&b.Reviews),
	)
}
