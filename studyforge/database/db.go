package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Mongo collection names
const (
	CollUserStats        = "user_stats"
	CollUserBadges       = "user_badges"
	CollBadgeDefinitions = "badge_definitions"
	CollDailyQuests      = "daily_quests"
	CollStudyActivities  = "study_activities"
	CollNotifications    = "notifications"
)

// DB bundles the two stores: MongoDB for the gamification documents and
// PostgreSQL (via bun) for the subscription/ebook entities.
type DB struct {
	pool        *bun.DB
	pgPool      *pgxpool.Pool
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
}

func New(ctx context.Context, cfg DBConfig, mcfg MongoConfig) (*DB, error) {
	var client *mongo.Client
	var err error

	// Retry logic for initial Mongo connection
	for i := 0; i < defaultMaxRetries; i++ {
		connCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
		client, err = mongo.Connect(connCtx, options.Client().ApplyURI(mcfg.URI))
		if err == nil {
			err = client.Ping(connCtx, nil)
		}
		cancel()
		if err == nil {
			break
		}
		slog.Warn("Mongo connection attempt failed",
			slog.String("type", "db"),
			slog.Int("attempt", i+1),
			slog.Any("error", err))
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("document store unreachable after %d attempts: %w", defaultMaxRetries, err)
	}

	pgPool, err := pgxpool.New(ctx, buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &DB{
		pool:        newBunDB(cfg),
		pgPool:      pgPool,
		mongoClient: client,
		mongoDB:     client.Database(mcfg.Database),
	}

	if err := db.Ping(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Helper function to build connection string
func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(cfg DBConfig) *bun.DB {
	// Default to disabling SSL for Bun unless explicitly overridden by env
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.pool
}

func (db *DB) Mongo() *mongo.Database {
	return db.mongoDB
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pgPool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (db *DB) Close(ctx context.Context) error {
	db.pgPool.Close()
	if err := db.pool.Close(); err != nil {
		return err
	}
	return db.mongoClient.Disconnect(ctx)
}

// InitializeSchema creates the relational tables and the document-store
// indexes the atomic update contracts depend on.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.Subscription)(nil),
		(*models.Ebook)(nil),
	}

	for _, model := range tables {
		query := db.pool.NewCreateTable().
			Model(model).
			IfNotExists()

		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_ebooks_subject ON ebooks(subject);",
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions(status);",
	}
	for _, idx := range indexes {
		if _, err := db.pool.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return db.ensureMongoIndexes(ctx)
}

func (db *DB) ensureMongoIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{CollUserStats, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: unique,
		}},
		{CollUserBadges, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "badge_id", Value: 1}},
			Options: unique,
		}},
		{CollBadgeDefinitions, mongo.IndexModel{
			Keys:    bson.D{{Key: "badge_id", Value: 1}},
			Options: unique,
		}},
		// Uniqueness on (user_id, date) is what makes concurrent
		// first-requests-of-the-day resolve to a single quest batch.
		{CollDailyQuests, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: unique,
		}},
		{CollStudyActivities, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		}},
		{CollNotifications, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "delivered", Value: 1}},
		}},
	}

	for _, spec := range specs {
		if _, err := db.mongoDB.Collection(spec.coll).Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.coll, err)
		}
	}

	slog.Info("Schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tablesList())),
		slog.Int("mongo_indexes", len(specs)))
	return nil
}

func tablesList() []string {
	return []string{"subscriptions", "ebooks"}
}
