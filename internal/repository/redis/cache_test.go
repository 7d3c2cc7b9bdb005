package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

type AnalyticsCacheTestSuite struct {
	suite.Suite
	ctx   context.Context
	mock  redismock.ClientMock
	cache *AnalyticsCache
}

type payload struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func (s *AnalyticsCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.ctx = context.Background()
	s.mock = mock
	s.cache = NewAnalyticsCache(db, time.Minute, logging.NewNopLogger())
}

func (s *AnalyticsCacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *AnalyticsCacheTestSuite) TestGenerationDefaultsToZero() {
	s.mock.ExpectGet("civic:analytics:generation").RedisNil()

	gen, err := s.cache.Generation(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), gen)
}

func (s *AnalyticsCacheTestSuite) TestGeneration() {
	s.mock.ExpectGet("civic:analytics:generation").SetVal("4")

	gen, err := s.cache.Generation(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(4), gen)
}

func (s *AnalyticsCacheTestSuite) TestGenerationError() {
	s.mock.ExpectGet("civic:analytics:generation").SetErr(errors.New("conn reset"))

	_, err := s.cache.Generation(s.ctx)
	s.Error(err)
}

func (s *AnalyticsCacheTestSuite) TestGetHit() {
	s.mock.ExpectGet("civic:analytics:v3:summary").SetVal(`{"total":12,"label":"all"}`)

	var got payload
	hit, err := s.cache.Get(s.ctx, 3, "summary", &got)
	s.Require().NoError(err)
	s.True(hit)
	s.Equal(payload{Total: 12, Label: "all"}, got)
}

func (s *AnalyticsCacheTestSuite) TestGetMiss() {
	s.mock.ExpectGet("civic:analytics:v0:summary").RedisNil()

	var got payload
	hit, err := s.cache.Get(s.ctx, 0, "summary", &got)
	s.NoError(err)
	s.False(hit)
}

func (s *AnalyticsCacheTestSuite) TestGetCorruptEntryIsDropped() {
	s.mock.ExpectGet("civic:analytics:v1:summary").SetVal("not json")
	s.mock.ExpectDel("civic:analytics:v1:summary").SetVal(1)

	var got payload
	hit, err := s.cache.Get(s.ctx, 1, "summary", &got)
	s.NoError(err)
	s.False(hit)
}

func (s *AnalyticsCacheTestSuite) TestGetError() {
	s.mock.ExpectGet("civic:analytics:v0:summary").SetErr(errors.New("conn reset"))

	var got payload
	_, err := s.cache.Get(s.ctx, 0, "summary", &got)
	s.Error(err)
}

func (s *AnalyticsCacheTestSuite) TestSet() {
	s.mock.ExpectSet("civic:analytics:v2:hotspots", []byte(`{"total":3,"label":"x"}`), time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(s.ctx, 2, "hotspots", payload{Total: 3, Label: "x"}))
}

func (s *AnalyticsCacheTestSuite) TestInvalidateBumpsGenerationAndScansAllPages() {
	s.mock.ExpectIncr("civic:analytics:generation").SetVal(5)
	s.mock.ExpectScan(0, "civic:analytics:v*", 100).SetVal([]string{"civic:analytics:v4:summary"}, 7)
	s.mock.ExpectDel("civic:analytics:v4:summary").SetVal(1)
	s.mock.ExpectScan(7, "civic:analytics:v*", 100).SetVal([]string{"civic:analytics:v4:trends", "civic:analytics:v4:hotspots"}, 0)
	s.mock.ExpectDel("civic:analytics:v4:trends", "civic:analytics:v4:hotspots").SetVal(2)

	s.NoError(s.cache.Invalidate(s.ctx))
}

func (s *AnalyticsCacheTestSuite) TestInvalidateEmpty() {
	s.mock.ExpectIncr("civic:analytics:generation").SetVal(1)
	s.mock.ExpectScan(0, "civic:analytics:v*", 100).SetVal(nil, 0)

	s.NoError(s.cache.Invalidate(s.ctx))
}

func (s *AnalyticsCacheTestSuite) TestInvalidateFailsWhenGenerationCannotBump() {
	s.mock.ExpectIncr("civic:analytics:generation").SetErr(errors.New("readonly replica"))

	s.Error(s.cache.Invalidate(s.ctx))
}

func (s *AnalyticsCacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	s.NoError(s.cache.Ping(s.ctx))
}

func TestAnalyticsCacheTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsCacheTestSuite))
}
