package dbschema

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB. Collections have no
// declared schema, so Introspect samples one document per collection
// and reports its fields; foreign keys are always empty.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

func newMongoConnector(cfg Config) (*mongoConnector, error) {
	var uri string

	// A full connection string (Atlas mongodb+srv:// or standard
	// mongodb://) in Host is used directly.
	if strings.HasPrefix(cfg.Host, "mongodb+srv://") || strings.HasPrefix(cfg.Host, "mongodb://") {
		uri = cfg.Host
		if cfg.Password != "" {
			uri = strings.ReplaceAll(uri, "<password>", cfg.Password)
		}
	} else {
		port := cfg.Port
		if port == 0 {
			port = 27017
		}
		if cfg.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Username, cfg.Password, cfg.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", cfg.Host, port)
		}
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = "test"
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &mongoConnector{client: client, dbName: dbName}, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Introspect(ctx context.Context) (Schema, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db := m.client.Database(m.dbName)

	collections, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	schema := Schema{}
	for _, collName := range collections {
		ts := TableSchema{Columns: []Column{}, ForeignKeys: []ForeignKey{}}

		cursor, err := db.Collection(collName).Find(ctx, bson.M{}, options.Find().SetLimit(1))
		if err != nil {
			schema[collName] = ts
			continue
		}
		if cursor.Next(ctx) {
			var doc bson.M
			if cursor.Decode(&doc) == nil {
				names := make([]string, 0, len(doc))
				for k := range doc {
					names = append(names, k)
				}
				sort.Strings(names)
				for _, k := range names {
					ts.Columns = append(ts.Columns, Column{
						Name:       k,
						Type:       fmt.Sprintf("%T", doc[k]),
						Nullable:   true,
						PrimaryKey: k == "_id",
					})
				}
			}
		}
		cursor.Close(ctx)

		schema[collName] = ts
	}

	return schema, nil
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
