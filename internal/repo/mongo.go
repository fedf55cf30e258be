package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"kloza/internal/domain"
)

// Collection names shared with the index setup in migrate.
const (
	IdeasCollection       = "ideas"
	KollabsCollection     = "kollabs"
	DiscussionsCollection = "discussions"
)

// Mongo stores entities as documents, one collection per entity type.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

var _ Repo = Mongo{}

type ideaDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	CreatedBy   string             `bson:"createdBy"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d ideaDoc) toDomain() domain.Idea {
	return domain.Idea{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		CreatedBy:   d.CreatedBy,
		Status:      domain.IdeaStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type kollabDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	IdeaID          primitive.ObjectID `bson:"ideaId"`
	Goal            string             `bson:"goal"`
	Participants    []string           `bson:"participants"`
	SuccessCriteria string             `bson:"successCriteria"`
	Status          string             `bson:"status"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (d kollabDoc) toDomain() domain.Kollab {
	return domain.Kollab{
		ID:              d.ID.Hex(),
		IdeaID:          d.IdeaID.Hex(),
		Goal:            d.Goal,
		Participants:    copyStrings(d.Participants),
		SuccessCriteria: d.SuccessCriteria,
		Status:          domain.KollabStatus(d.Status),
		CreatedAt:       d.CreatedAt.UTC(),
	}
}

type discussionDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	KollabID  primitive.ObjectID `bson:"kollabId"`
	Message   string             `bson:"message"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func isMongoDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func mongoNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (r Mongo) InsertIdea(ctx context.Context, i domain.Idea) (domain.Idea, error) {
	doc := ideaDoc{
		ID:          primitive.NewObjectID(),
		Title:       i.Title,
		Description: i.Description,
		CreatedBy:   i.CreatedBy,
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
	}
	if _, err := r.DB.Collection(IdeasCollection).InsertOne(ctx, doc); err != nil {
		if isMongoDuplicate(err) {
			return domain.Idea{}, fmt.Errorf("insert idea: %w", ErrDuplicate)
		}
		return domain.Idea{}, fmt.Errorf("insert idea: %w", err)
	}
	i.ID = doc.ID.Hex()
	return i, nil
}

func (r Mongo) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Idea{}, ErrNotFound
	}
	var doc ideaDoc
	if err := r.DB.Collection(IdeasCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Idea{}, mongoNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r Mongo) ListIdeas(ctx context.Context, skip, limit int) ([]domain.Idea, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	cur, err := r.DB.Collection(IdeasCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []ideaDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	res := make([]domain.Idea, 0, len(docs))
	for _, d := range docs {
		res = append(res, d.toDomain())
	}
	return res, nil
}

func (r Mongo) CountIdeas(ctx context.Context) (int64, error) {
	return r.DB.Collection(IdeasCollection).CountDocuments(ctx, bson.D{})
}

func (r Mongo) InsertKollab(ctx context.Context, k domain.Kollab) (domain.Kollab, error) {
	ideaID, err := primitive.ObjectIDFromHex(k.IdeaID)
	if err != nil {
		return domain.Kollab{}, fmt.Errorf("insert kollab: idea id: %w", err)
	}
	doc := kollabDoc{
		ID:              primitive.NewObjectID(),
		IdeaID:          ideaID,
		Goal:            k.Goal,
		Participants:    copyStrings(k.Participants),
		SuccessCriteria: k.SuccessCriteria,
		Status:          string(k.Status),
		CreatedAt:       k.CreatedAt,
	}
	if _, err := r.DB.Collection(KollabsCollection).InsertOne(ctx, doc); err != nil {
		if isMongoDuplicate(err) {
			return domain.Kollab{}, fmt.Errorf("insert kollab: %w", ErrDuplicate)
		}
		return domain.Kollab{}, fmt.Errorf("insert kollab: %w", err)
	}
	return doc.toDomain(), nil
}

func (r Mongo) GetKollab(ctx context.Context, id string) (domain.Kollab, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Kollab{}, ErrNotFound
	}
	var doc kollabDoc
	if err := r.DB.Collection(KollabsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Kollab{}, mongoNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r Mongo) FindActiveKollab(ctx context.Context, ideaID string) (domain.Kollab, error) {
	oid, err := primitive.ObjectIDFromHex(ideaID)
	if err != nil {
		return domain.Kollab{}, ErrNotFound
	}
	var doc kollabDoc
	filter := bson.M{"ideaId": oid, "status": string(domain.KollabActive)}
	if err := r.DB.Collection(KollabsCollection).FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.Kollab{}, mongoNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r Mongo) InsertDiscussion(ctx context.Context, d domain.Discussion) (domain.Discussion, error) {
	kollabID, err := primitive.ObjectIDFromHex(d.KollabID)
	if err != nil {
		return domain.Discussion{}, fmt.Errorf("insert discussion: kollab id: %w", err)
	}
	doc := discussionDoc{
		ID:        primitive.NewObjectID(),
		KollabID:  kollabID,
		Message:   d.Message,
		Author:    d.Author,
		CreatedAt: d.CreatedAt,
	}
	if _, err := r.DB.Collection(DiscussionsCollection).InsertOne(ctx, doc); err != nil {
		return domain.Discussion{}, fmt.Errorf("insert discussion: %w", err)
	}
	d.ID = doc.ID.Hex()
	d.KollabID = kollabID.Hex()
	return d, nil
}

func (r Mongo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx, readpref.Primary())
}

func (r Mongo) Close(ctx context.Context) error {
	return r.Client.Disconnect(ctx)
}
