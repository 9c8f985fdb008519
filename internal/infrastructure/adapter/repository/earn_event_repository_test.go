package repository

import (
	"testing"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestFoldEarnSums(t *testing.T) {
	sum := foldEarnSums([]model.EarnTypeSum{
		{Type: "checkin", Total: 5, Count: 1},
		{Type: "lesson", Total: 45, Count: 3},
		{Type: "ad_view", Total: 70, Count: 7},
		{Type: "unknown", Total: 1000, Count: 1},
	})

	assert.Equal(t, int64(50), sum.NonAdTotal)
	assert.Equal(t, int64(70), sum.AdTotal)
	assert.Equal(t, 7, sum.AdCount)
	assert.Equal(t, 1, sum.CheckinCount)
	assert.Equal(t, 3, sum.LessonCount)
	assert.Equal(t, int64(120), sum.Total())
}

func TestEarnEventToEntity(t *testing.T) {
	token := "tok-1"
	m := &model.EarnEvent{
		ID:               7,
		UserID:           3,
		Type:             "ad_view",
		Amount:           10,
		IdempotencyToken: &token,
		Metadata:         datatypes.NewJSONType(entity.EarnMetadata{Ad: &entity.AdDetails{AdUnitID: "unit"}}),
	}

	e := earnEventToEntity(m)

	assert.Equal(t, entity.EarnTypeAdView, e.Type)
	assert.Equal(t, "tok-1", e.IdempotencyToken)
	assert.Empty(t, e.ReferenceID)
	if assert.NotNil(t, e.Metadata.Ad) {
		assert.Equal(t, "unit", e.Metadata.Ad.AdUnitID)
	}
	assert.Nil(t, optionalString(""))
	assert.Equal(t, "x", *optionalString("x"))
}
