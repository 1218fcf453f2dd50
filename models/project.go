package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Project is the directory view of a project as the projects service exposes
// it. Tasks are only ever placed into projects that are active at that
// moment; an archived project keeps its existing tasks.
type Project struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}
