package state

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrHistoryNotFound = errors.New("chat history not found")

// ChatEntry is a persisted chat record as stored by the frontend, returned
// verbatim by the history endpoint with the internal id stringified.
type ChatEntry struct {
	ID      string             `json:"_id" bson:"-"`
	RawID   primitive.ObjectID `json:"-" bson:"_id"`
	Unidade string             `json:"unidade" bson:"unidade"`
	Cargo   string             `json:"cargo" bson:"cargo"`
	IDUser  string             `json:"id_user" bson:"id_user"`
	IDChat  string             `json:"id_chat" bson:"id_chat"`
	Extra   map[string]any     `json:"extra,omitempty" bson:",inline"`
}

// MongoHistory reads persisted chat entries from the chatbot collection.
type MongoHistory struct {
	coll *mongo.Collection
}

func NewMongoHistory(coll *mongo.Collection) (*MongoHistory, error) {
	if coll == nil {
		return nil, errors.New("chat history collection is required")
	}
	return &MongoHistory{coll: coll}, nil
}

// Find retrieves every stored entry matching all four identifiers.
// Returns ErrHistoryNotFound when nothing matches.
func (h *MongoHistory) Find(ctx context.Context, unidade, cargo, idUser, idChat string) ([]ChatEntry, error) {
	filter := bson.M{
		"unidade": unidade,
		"cargo":   cargo,
		"id_user": idUser,
		"id_chat": idChat,
	}

	cursor, err := h.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []ChatEntry
	for cursor.Next(ctx) {
		var e ChatEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode chat entry: %w", err)
		}
		e.ID = e.RawID.Hex()
		entries = append(entries, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat history: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrHistoryNotFound
	}
	return entries, nil
}
