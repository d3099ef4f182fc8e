package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khoahotran/resume-builder/pkg/logger"
)

type MongoProfileRepoIntegrationTestSuite struct {
	profileRepoContract
	container *mongodb.MongoDBContainer
	client    *mongo.Client
}

func (s *MongoProfileRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		s.T().Fatalf("Failed to start mongodb container: %s", err)
	}
	s.container = container

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		s.T().Fatalf("Failed to connect mongodb: %s", err)
	}
	s.client = client

	db := client.Database("resume_builder_test")
	if err := EnsureProfileIndexes(ctx, db); err != nil {
		s.T().Fatalf("Failed to create indexes: %s", err)
	}
	s.repo = NewMongoProfileRepo(db, logger.NewNop())
}

func (s *MongoProfileRepoIntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	if s.client != nil {
		_ = s.client.Disconnect(ctx)
	}
	if s.container != nil {
		if err := s.container.Terminate(ctx); err != nil {
			s.T().Fatalf("Failed to terminate mongodb container: %s", err)
		}
	}
}

func TestMongoProfileRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(MongoProfileRepoIntegrationTestSuite))
}
