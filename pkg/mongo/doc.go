// Package mongo stores subscription records in MongoDB.
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	storage := mongo.NewStorage(client.Database(cfg.Database).Collection(cfg.Collection))
//	defer storage.Close(ctx)
//
// Each key is a document whose _id is the key. Healthcheck returns a
// readiness probe for the client.
package mongo
