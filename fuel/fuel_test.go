package fuel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuel(t *testing.T) {
	assert.Equal(t, 90.0, Fuel(0.9, 12, 12, 100, 1.0))
	assert.Equal(t, 45.0, Fuel(0.9, 12, 3, 100, 1.0), "speed factor floors at 0.5")
	assert.Equal(t, 135.0, Fuel(0.9, 12, 12, 100, 1.5), "resistance scales the burn")
	assert.Equal(t, 25.0, Fuel(0.25, 0, 8, 100, 1.0), "zero nominal speed reads as factor 1")
}

func TestEmissions(t *testing.T) {
	assert.InDelta(t, 311.4, Emissions(100, "HFO"), 1e-9)
	assert.InDelta(t, 320.6, Emissions(100, "MDO"), 1e-9)
	assert.InDelta(t, 275.0, Emissions(100, "LNG"), 1e-9)
	assert.InDelta(t, 311.4, Emissions(100, "coal"), 1e-9, "unknown fuels read as HFO")
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "🌱 Carbon Cutter", Badge(25))
	assert.Equal(t, "🌱 Carbon Cutter", Badge(20))
	assert.Equal(t, "💨 Low Emission Rider", Badge(12))
	assert.Equal(t, "🚢 Standard Mode", Badge(5))
}

func TestMarpolAllLimitsBreached(t *testing.T) {
	c := Marpol("small_coastal", "HFO", 3000, 10)

	require.Len(t, c, 3)
	assert.False(t, c["annex_vi_Air_Pollution"].Passed)
	assert.False(t, c["annex_i"].Passed)
	assert.False(t, c["annex_vi_eco_speed"].Passed)
	assert.Equal(t, "❌ Exceeds emission threshold (Annex VI)", c["annex_vi_Air_Pollution"].Message)
	assert.Equal(t, "⚠️ HFO restricted for small coastal vessels (Annex I)", c["annex_i"].Message)
}

func TestMarpolCompliant(t *testing.T) {
	c := Marpol("medium_cargo", "MDO", 5000, 12)

	assert.True(t, c["annex_vi_Air_Pollution"].Passed)
	assert.True(t, c["annex_i"].Passed)
	assert.True(t, c["annex_vi_eco_speed"].Passed)
}

func TestMarpolPerClassCaps(t *testing.T) {
	assert.False(t, Marpol("large_container", "MDO", 20001, 18)["annex_vi_Air_Pollution"].Passed)
	assert.True(t, Marpol("large_container", "MDO", 20000, 18)["annex_vi_Air_Pollution"].Passed)
	assert.False(t, Marpol("large_container", "MDO", 1000, 18.5)["annex_vi_eco_speed"].Passed)
}

func TestCalculate(t *testing.T) {
	res := Calculate(Request{
		VesselType: "medium_cargo",
		SpeedKnots: 12,
		DistanceNm: 100,
		FuelType:   "MDO",
	})

	assert.Equal(t, "medium_cargo", res.VesselType)
	assert.Equal(t, 12.0, res.RequestedSpeed)
	assert.Equal(t, 1.0, res.WeatherResistance)
	require.Len(t, res.Scenarios, 3)

	eco := res.Scenarios["eco"]
	assert.Equal(t, 10.0, eco.SpeedKnots)
	assert.Equal(t, 75.0, eco.FuelLiters)
	assert.Equal(t, 240.45, eco.CO2Kg)
	assert.Equal(t, 10.0, eco.EtaHours)

	balanced := res.Scenarios["balanced"]
	assert.Equal(t, 12.0, balanced.SpeedKnots)
	assert.Equal(t, 90.0, balanced.FuelLiters)
	assert.Equal(t, 8.33, balanced.EtaHours)

	fastest := res.Scenarios["fastest"]
	assert.Equal(t, 14.0, fastest.SpeedKnots)
	assert.Equal(t, 105.0, fastest.FuelLiters)

	assert.Equal(t, 288.54, res.BaselineCO2Kg)
	assert.Equal(t, 16.67, res.EcoImprovementPct)
	assert.Equal(t, "💨 Low Emission Rider", res.EcoRatingBadge)
}

func TestCalculateUnknownVesselType(t *testing.T) {
	res := Calculate(Request{VesselType: "tugboat", SpeedKnots: 12, DistanceNm: 100, FuelType: "MDO"})
	assert.Equal(t, "medium_cargo", res.VesselType)
}

func TestCalculateWeatherResistance(t *testing.T) {
	resistance := 1.5
	res := Calculate(Request{
		VesselType:        "medium_cargo",
		SpeedKnots:        12,
		DistanceNm:        100,
		FuelType:          "MDO",
		WeatherResistance: &resistance,
	})

	assert.Equal(t, 1.5, res.WeatherResistance)
	assert.Equal(t, 112.5, res.Scenarios["eco"].FuelLiters)
}

func TestCalculateSpeedClamps(t *testing.T) {
	res := Calculate(Request{VesselType: "small_coastal", SpeedKnots: 0, DistanceNm: 50, FuelType: "LNG"})

	assert.Equal(t, 1.0, res.RequestedSpeed)
	assert.Equal(t, 4.0, res.Scenarios["eco"].SpeedKnots, "eco floors at 4 knots")
	assert.Equal(t, 4.0, res.Scenarios["balanced"].SpeedKnots)
	assert.Equal(t, 3.0, res.Scenarios["fastest"].SpeedKnots)

	fast := Calculate(Request{VesselType: "large_container", SpeedKnots: 40, DistanceNm: 50, FuelType: "LNG"})
	assert.Equal(t, 30.0, fast.Scenarios["fastest"].SpeedKnots, "fastest caps at 30 knots")
}
