//go:build integration

package hashr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"hashlookup/internal/hashr"
)

const (
	knownWithSources  = "1111111111111111111111111111111111111111111111111111111111111111"
	knownWithoutRepo  = "2222222222222222222222222222222222222222222222222222222222222222"
	unknownHash       = "3333333333333333333333333333333333333333333333333333333333333333"
	membershipOnlyHit = "4444444444444444444444444444444444444444444444444444444444444444"
)

const seedSchema = `
CREATE TABLE samples (sha256 TEXT PRIMARY KEY);
CREATE TABLE sources (
	sha256   TEXT PRIMARY KEY,
	sourceid TEXT,
	reponame TEXT
);
CREATE TABLE samples_sources (
	sample_sha256 TEXT NOT NULL,
	source_sha256 TEXT NOT NULL
);

INSERT INTO samples (sha256) VALUES
	('1111111111111111111111111111111111111111111111111111111111111111'),
	('2222222222222222222222222222222222222222222222222222222222222222'),
	('4444444444444444444444444444444444444444444444444444444444444444');

INSERT INTO sources (sha256, sourceid, reponame) VALUES
	('aa01', 'src1', 'imageA'),
	('aa02', 'src2', 'imageA'),
	('bb01', 'src7', 'imageB'),
	('cc01', NULL, NULL);

INSERT INTO samples_sources (sample_sha256, source_sha256) VALUES
	('1111111111111111111111111111111111111111111111111111111111111111', 'aa01'),
	('1111111111111111111111111111111111111111111111111111111111111111', 'aa02'),
	('1111111111111111111111111111111111111111111111111111111111111111', 'bb01'),
	('2222222222222222222222222222222222222222222222222222222222222222', 'cc01');
`

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	cfg       hashr.PostgresConfig
	store     hashr.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("hashr"),
		tcpostgres.WithUsername("hashr"),
		tcpostgres.WithPassword("hashr"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	s.Require().NoError(err)

	s.cfg = hashr.PostgresConfig{
		User:     "hashr",
		Password: "hashr",
		Addr:     host,
		Port:     port.Int(),
		Name:     "hashr",
	}

	code, _, err := container.Exec(ctx, []string{"psql", "-v", "ON_ERROR_STOP=1", "-U", "hashr", "-d", "hashr", "-c", seedSchema})
	s.Require().NoError(err)
	s.Require().Zero(code, "seeding the hashR schema failed")

	store, err := s.cfg.Connect(ctx)
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
	s.Require().NoError(testcontainers.TerminateContainer(s.container))
}

func (s *PostgresStoreSuite) TestConnectRejectsMissingSchema() {
	// The default postgres database has none of the hashR tables.
	cfg := s.cfg
	cfg.Name = "postgres"
	cfg.User = "hashr"

	_, err := cfg.Connect(context.Background())
	s.Error(err)
	s.Contains(err.Error(), "samples")
}

func (s *PostgresStoreSuite) TestMembershipLookup() {
	rows, err := s.store.Lookup(context.Background(),
		[]string{knownWithSources, membershipOnlyHit, unknownHash}, false)
	s.Require().NoError(err)

	got := make(map[string]string, len(rows))
	for _, row := range rows {
		got[row.SHA256] = row.Source
	}
	s.Equal(map[string]string{knownWithSources: "", membershipOnlyHit: ""}, got)
}

func (s *PostgresStoreSuite) TestSourceLookupAggregatesPerRepo() {
	rows, err := s.store.Lookup(context.Background(),
		[]string{knownWithSources, unknownHash}, true)
	s.Require().NoError(err)

	sources := make(map[string]bool)
	for _, row := range rows {
		s.Equal(knownWithSources, row.SHA256)
		sources[row.Source] = true
	}
	// Identifiers of the same repo collapse into one descriptor.
	s.True(sources["imageA:src1;src2"] || sources["imageA:src2;src1"])
	s.True(sources["imageB:src7"])
	s.Len(sources, 2)
}

func (s *PostgresStoreSuite) TestSourceLookupFallsBackToTagsOnly() {
	rows, err := s.store.Lookup(context.Background(), []string{knownWithoutRepo}, true)
	s.Require().NoError(err)

	s.Require().Len(rows, 1)
	s.Equal(knownWithoutRepo, rows[0].SHA256)
	s.Equal(hashr.TagsOnly, rows[0].Source)
}
