package timeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *SQLiteStore
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	store, err := OpenSQLite(filepath.Join(s.T().TempDir(), "timeline.db"))
	s.Require().NoError(err)
	s.store = store
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SQLiteStoreSuite) stream(fields ...string) []Event {
	cur, err := s.store.Stream(context.Background(), fields)
	s.Require().NoError(err)
	defer cur.Close()

	var events []Event
	for cur.Next() {
		events = append(events, cur.Event())
	}
	s.Require().NoError(cur.Err())
	return events
}

func (s *SQLiteStoreSuite) TestStreamSelectsOnlyEventsWithRecognizedFields() {
	ctx := context.Background()
	_, err := s.store.Append(ctx, map[string]any{"sha256": "abc", "message": "one"})
	s.Require().NoError(err)
	_, err = s.store.Append(ctx, map[string]any{"message": "no hash here"})
	s.Require().NoError(err)
	_, err = s.store.Append(ctx, map[string]any{"hash_sha256": "def"})
	s.Require().NoError(err)

	events := s.stream("sha256", "hash_sha256")
	s.Require().Len(events, 2)
	s.Equal("abc", events[0].Source()["sha256"])
	s.Equal("def", events[1].Source()["hash_sha256"])
}

func (s *SQLiteStoreSuite) TestStreamRequiresFields() {
	_, err := s.store.Stream(context.Background(), nil)
	s.Error(err)
}

func (s *SQLiteStoreSuite) TestCommitPersistsTagsAndAttributes() {
	ctx := context.Background()
	id, err := s.store.Append(ctx, map[string]any{"sha256": "abc"})
	s.Require().NoError(err)

	events := s.stream("sha256")
	s.Require().Len(events, 1)

	ev := events[0]
	ev.AddTags([]string{"known-hash"})
	ev.AddAttributes(map[string]any{"hashR_sample_sources": []string{"imageA:src1"}})
	s.Require().NoError(ev.Commit())

	tags, attrs, err := s.store.Annotations(ctx, id)
	s.Require().NoError(err)
	s.Equal([]string{"known-hash"}, tags)
	s.Equal([]any{"imageA:src1"}, attrs["hashR_sample_sources"])
}

func (s *SQLiteStoreSuite) TestTagsStayIdempotentAcrossRuns() {
	ctx := context.Background()
	id, err := s.store.Append(ctx, map[string]any{"sha256": "abc"})
	s.Require().NoError(err)

	// Two passes over the same timeline, same tag both times.
	for range 2 {
		events := s.stream("sha256")
		s.Require().Len(events, 1)
		events[0].AddTags([]string{"known-hash"})
		s.Require().NoError(events[0].Commit())
	}

	tags, _, err := s.store.Annotations(ctx, id)
	s.Require().NoError(err)
	s.Equal([]string{"known-hash"}, tags)
}

func (s *SQLiteStoreSuite) TestExistingAnnotationsSurviveCommit() {
	ctx := context.Background()
	id, err := s.store.Append(ctx, map[string]any{"sha256": "abc"})
	s.Require().NoError(err)

	first := s.stream("sha256")
	s.Require().Len(first, 1)
	first[0].AddTags([]string{"reviewed"})
	first[0].AddAttributes(map[string]any{"case": "incident-7"})
	s.Require().NoError(first[0].Commit())

	second := s.stream("sha256")
	s.Require().Len(second, 1)
	second[0].AddTags([]string{"known-hash"})
	s.Require().NoError(second[0].Commit())

	tags, attrs, err := s.store.Annotations(ctx, id)
	s.Require().NoError(err)
	s.Equal([]string{"reviewed", "known-hash"}, tags)
	s.Equal("incident-7", attrs["case"])
}
