package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactsync/internal/mapping"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/ports"
	"contactsync/pkg/platform/sentinel"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// contractSuite holds the behaviour every mapping store must share. Backends
// embed it and supply newStore.
type contractSuite struct {
	suite.Suite
	newStore func() ports.MappingStore
	store    ports.MappingStore
	ctx      context.Context
}

func (s *contractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func nomis(kind models.EntityKind, legacyID int64, targetID, owner string) mapping.Mapping {
	return mapping.Mapping{
		Kind:        kind,
		LegacyID:    legacyID,
		TargetID:    targetID,
		OwnerKey:    owner,
		MappingType: mapping.TypeNomisCreated,
	}
}

func (s *contractSuite) TestCreateThenGet() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactEmail, 11, "110", "101")))

	got, err := s.store.Get(s.ctx, models.KindContactEmail, 11)
	s.Require().NoError(err)
	s.Equal("110", got.TargetID)
	s.Equal("101", got.OwnerKey)
	s.Equal(mapping.TypeNomisCreated, got.MappingType)
	s.True(got.WhenCreated.Equal(fixedNow), "when created %s", got.WhenCreated)
}

func (s *contractSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, models.KindContact, 999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestCreateRejectsInvalid() {
	err := s.store.Create(s.ctx, mapping.Mapping{Kind: models.KindContact, LegacyID: 1, MappingType: mapping.TypeMigrated})
	s.Error(err)
	s.False(errors.Is(err, sentinel.ErrConflict))
}

func (s *contractSuite) TestCreateConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContact, 101, "1010", "101")))

	s.Run("same legacy id", func() {
		err := s.store.Create(s.ctx, nomis(models.KindContact, 101, "2020", "101"))
		var conflict *mapping.ConflictError
		s.Require().ErrorAs(err, &conflict)
		s.Equal("1010", conflict.Existing.TargetID)
		s.Equal("2020", conflict.Duplicate.TargetID)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("same target id", func() {
		err := s.store.Create(s.ctx, nomis(models.KindContact, 102, "1010", "102"))
		var conflict *mapping.ConflictError
		s.Require().ErrorAs(err, &conflict)
		s.Equal(int64(101), conflict.Existing.LegacyID)
	})

	s.Run("target ids are scoped by kind", func() {
		s.NoError(s.store.Create(s.ctx, nomis(models.KindContactPhone, 101, "1010", "101")))
	})
}

func (s *contractSuite) TestDeleteIsIdempotent() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContact, 101, "1010", "101")))

	s.NoError(s.store.Delete(s.ctx, models.KindContact, 101))
	s.NoError(s.store.Delete(s.ctx, models.KindContact, 101))

	_, err := s.store.Get(s.ctx, models.KindContact, 101)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.Create(s.ctx, nomis(models.KindContact, 101, "1010", "101")), "target id is free again")
}

func (s *contractSuite) TestListForOwner() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactPhone, 8, "80", "101")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactPhone, 7, "70", "101")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactPhone, 9, "90", "102")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactEmail, 6, "60", "101")))

	got, err := s.store.ListForOwner(s.ctx, models.KindContactPhone, "101")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(int64(7), got[0].LegacyID)
	s.Equal(int64(8), got[1].LegacyID)

	none, err := s.store.ListForOwner(s.ctx, models.KindContactPhone, "103")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *contractSuite) TestReplaceAllForOwner() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactAddress, 501, "5010", "101")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactAddress, 502, "5020", "101")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactAddress, 601, "6010", "201")))

	replacement := []mapping.Mapping{
		nomis(models.KindContactAddress, 502, "9020", "101"),
		nomis(models.KindContactAddress, 503, "9030", "101"),
	}
	previous, err := s.store.ReplaceAllForOwner(s.ctx, models.KindContactAddress, "101", replacement)
	s.Require().NoError(err)
	s.Len(previous, 2)

	got, err := s.store.ListForOwner(s.ctx, models.KindContactAddress, "101")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("9020", got[0].TargetID)
	s.Equal("9030", got[1].TargetID)

	other, err := s.store.Get(s.ctx, models.KindContactAddress, 601)
	s.Require().NoError(err)
	s.Equal("6010", other.TargetID, "other owners are untouched")

	s.Run("empty list clears the owner", func() {
		_, err := s.store.ReplaceAllForOwner(s.ctx, models.KindContactAddress, "101", nil)
		s.Require().NoError(err)
		got, err := s.store.ListForOwner(s.ctx, models.KindContactAddress, "101")
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *contractSuite) TestReplaceAllForOwnerIsAtomic() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactAddress, 501, "5010", "101")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactAddress, 601, "6010", "201")))

	_, err := s.store.ReplaceAllForOwner(s.ctx, models.KindContactAddress, "101", []mapping.Mapping{
		nomis(models.KindContactAddress, 502, "5020", "101"),
		nomis(models.KindContactAddress, 503, "6010", "101"),
	})
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.ListForOwner(s.ctx, models.KindContactAddress, "101")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(int64(501), got[0].LegacyID)
}

func (s *contractSuite) TestReplaceAllForOwnerRejectsForeignRows() {
	_, err := s.store.ReplaceAllForOwner(s.ctx, models.KindContactAddress, "101", []mapping.Mapping{
		nomis(models.KindContactAddress, 502, "5020", "999"),
	})
	s.Error(err)
}

func (s *contractSuite) TestReplaceAfterMerge() {
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContact, 102, "1020", "102")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactPhone, 7, "70", "102")))
	s.Require().NoError(s.store.Create(s.ctx, nomis(models.KindContactPhone, 8, "80", "101")))

	moved, err := s.store.ReplaceAfterMerge(s.ctx, "101", "102")
	s.Require().NoError(err)
	s.Equal(2, moved)

	phones, err := s.store.ListForOwner(s.ctx, models.KindContactPhone, "101")
	s.Require().NoError(err)
	s.Len(phones, 2)

	gone, err := s.store.ListForOwner(s.ctx, models.KindContact, "102")
	s.Require().NoError(err)
	s.Empty(gone)

	_, err = s.store.ReplaceAfterMerge(s.ctx, "", "102")
	s.Error(err)
}

type InMemoryStoreSuite struct {
	contractSuite
}

func TestInMemoryStoreSuite(t *testing.T) {
	s := new(InMemoryStoreSuite)
	s.newStore = func() ports.MappingStore {
		return NewInMemoryStore(WithClock(func() time.Time { return fixedNow }))
	}
	suite.Run(t, s)
}
