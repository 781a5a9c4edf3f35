package keyvalue

import (
	"encoding/hex"
	"sync"

	"github.com/meridian-chain/corecontracts/base/ctx"
	"github.com/meridian-chain/corecontracts/base/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDoc struct {
	Id    string           `bson:"_id"`
	Value primitive.Binary `bson:"value"`
}

// Mongo adapts a mongo collection to the Store interface so a hosting
// environment can persist contract state between runs. Keys are stored hex
// encoded in _id, which preserves byte order for prefix walks.
type Mongo struct {
	sync.Mutex
	col *mongo.Collection
}

func NewMongo(client *mongo.Client, db, collection string) *Mongo {
	return &Mongo{col: client.Database(db).Collection(collection)}
}

func (s *Mongo) Get(ctx ctx.Ctx, key []byte) ([]byte, error) {
	doc := mongoDoc{}
	err := s.col.FindOne(ctx, bson.M{"_id": hex.EncodeToString(key)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to col.FindOne")
		return nil, err
	}
	return doc.Value.Data, nil
}

func (s *Mongo) Put(ctx ctx.Ctx, key, value []byte) error {
	id := hex.EncodeToString(key)
	_, err := s.col.ReplaceOne(ctx,
		bson.M{"_id": id},
		mongoDoc{Id: id, Value: primitive.Binary{Data: value}},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to col.ReplaceOne")
	}
	return err
}

func (s *Mongo) Delete(ctx ctx.Ctx, key []byte) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": hex.EncodeToString(key)})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to col.DeleteOne")
	}
	return err
}

func (s *Mongo) Has(ctx ctx.Ctx, key []byte) (bool, error) {
	cnt, err := s.col.CountDocuments(ctx, bson.M{"_id": hex.EncodeToString(key)})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to col.CountDocuments")
		return false, err
	}
	return cnt > 0, nil
}

func (s *Mongo) Visit(ctx ctx.Ctx, prefix []byte, fn func(key, value []byte) error) error {
	query := bson.M{"_id": bson.M{"$regex": "^" + hex.EncodeToString(prefix)}}
	cur, err := s.col.Find(ctx, query, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to col.Find")
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		doc := mongoDoc{}
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		key, err := hex.DecodeString(doc.Id)
		if err != nil {
			return err
		}
		if err := fn(key, doc.Value.Data); err != nil {
			return err
		}
	}
	return cur.Err()
}
