package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, KindMakes.TTL())
	assert.Equal(t, 24*time.Hour, KindModels.TTL())
	assert.Equal(t, 6*time.Hour, KindYears.TTL())
	assert.Equal(t, 6*time.Hour, KindAccessories.TTL())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "vehicle_makes", MakesKey())
	assert.Equal(t, "vehicle_models_TOY", ModelsKey("TOY"))
	assert.Equal(t, "vehicle_years_64072915", YearsKey("64072915"))
	assert.Equal(t, "vehicle_accessories_64072915_2018", AccessoriesKey("64072915", 2018))
}
