package mongoclient

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/meridian-chain/corecontracts/base/log"
)

const mgSocketTimeout = 60 * time.Second

// MustConnectMongoClient returns a connected client or panics.
func MustConnectMongoClient(uri string) *mongo.Client {
	cli, err := ConnectMongoClient(uri)
	if err != nil {
		log.Log().WithFields(log.Fields{"mongoURI": uri, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

// ConnectMongoClient dials and pings the deployment.
func ConnectMongoClient(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client()
	clientOpts.ApplyURI(uri)
	clientOpts.SetSocketTimeout(mgSocketTimeout)

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		log.Log().WithFields(log.Fields{
			"mongoURI": uri,
			"err":      err,
		}).Error("fail to connect mongo")
		return nil, err
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		log.Log().WithFields(log.Fields{
			"mongoURI": uri,
			"err":      err,
		}).Error("fail to ping mongo")
		return nil, err
	}
	return cli, nil
}
