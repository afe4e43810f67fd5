//go:build integration

package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactsync/pkg/testutil/containers"
)

type RedisLedgerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	ledger *RedisLedger
	ctx    context.Context
}

func TestRedisLedgerSuite(t *testing.T) {
	suite.Run(t, new(RedisLedgerSuite))
}

func (s *RedisLedgerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisLedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.ctx))

	ledger, err := NewRedisLedger(s.redis.Client, time.Minute)
	s.Require().NoError(err)
	s.ledger = ledger
}

func (s *RedisLedgerSuite) TestMarkThenSeen() {
	seen, err := s.ledger.Seen(s.ctx, "msg-1")
	s.Require().NoError(err)
	s.False(seen)

	s.Require().NoError(s.ledger.Mark(s.ctx, "msg-1"))

	seen, err = s.ledger.Seen(s.ctx, "msg-1")
	s.Require().NoError(err)
	s.True(seen)
}

func (s *RedisLedgerSuite) TestMarkerCarriesTTL() {
	s.Require().NoError(s.ledger.Mark(s.ctx, "msg-2"))

	ttl, err := s.redis.Client.TTL(s.ctx, processedKeyPrefix+"msg-2").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisLedgerSuite) TestSharedAcrossInstances() {
	other, err := NewRedisLedger(s.redis.Client, time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(s.ledger.Mark(s.ctx, "msg-3"))
	seen, err := other.Seen(s.ctx, "msg-3")
	s.Require().NoError(err)
	s.True(seen)
}
