package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the directory view of an account as the users service exposes it.
// Soft-deleted users are never returned by the directory's batch lookup, so
// the tasks service only ever sees live accounts here; IsActive still
// distinguishes accounts that exist but may not take on new work.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Name     string             `bson:"name" json:"name"`
	LastName string             `bson:"lastName" json:"lastName"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}
