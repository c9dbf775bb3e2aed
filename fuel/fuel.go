package fuel

import "math"

// Class describes a vessel class consumption profile, liters per nautical
// mile at nominal speed.
type Class struct {
	BaseRate     float64
	NominalSpeed float64
}

// DefaultClass absorbs unknown vessel types.
const DefaultClass = "medium_cargo"

var classes = map[string]Class{
	"small_coastal":   {BaseRate: 0.25, NominalSpeed: 10.0},
	"medium_cargo":    {BaseRate: 0.9, NominalSpeed: 12.0},
	"large_container": {BaseRate: 2.8, NominalSpeed: 18.0},
}

// Emission factors, kg CO2 per liter burned. Unknown fuels read as HFO.
var emissionFactors = map[string]float64{
	"HFO": 3.114,
	"MDO": 3.206,
	"LNG": 2.75,
}

const defaultFuelType = "HFO"

// Badge thresholds, percent CO2 reduction of the eco scenario against the
// nominal-speed baseline.
const (
	carbonCutterPct = 20.0
	lowEmissionPct  = 10.0
)

// Annex VI voyage CO2 caps in kg and eco-speed caps in knots, per class.
var (
	co2CapKg = map[string]float64{
		"small_coastal":   2500,
		"medium_cargo":    6000,
		"large_container": 20000,
	}
	ecoSpeedCapKn = map[string]float64{
		"small_coastal":   9,
		"medium_cargo":    12,
		"large_container": 18,
	}
)

// Request is the calculator input. WeatherResistance is an optional fuel
// multiplier, nil reads as 1.0.
type Request struct {
	VesselType        string   `json:"vessel_type"`
	SpeedKnots        float64  `json:"speed_knots"`
	DistanceNm        float64  `json:"distance_nm"`
	FuelType          string   `json:"fuel_type"`
	WeatherResistance *float64 `json:"weather_resistance,omitempty"`
}

// Compliance is one regulatory check outcome.
type Compliance struct {
	Message string `json:"message"`
	Passed  bool   `json:"passed"`
}

// Scenario is one speed profile with its burn, emissions and compliance.
type Scenario struct {
	SpeedKnots float64               `json:"speed_knots"`
	FuelLiters float64               `json:"fuel_liters"`
	CO2Kg      float64               `json:"co2_kg"`
	EtaHours   float64               `json:"eta_hours"`
	Marpol     map[string]Compliance `json:"marpol_compliance"`
}

// Result is the calculator output for one voyage.
type Result struct {
	VesselType        string              `json:"vessel_type"`
	DistanceNm        float64             `json:"distance_nm"`
	RequestedSpeed    float64             `json:"requested_speed"`
	FuelType          string              `json:"fuel_type"`
	WeatherResistance float64             `json:"weather_resistance"`
	BaselineCO2Kg     float64             `json:"baseline_co2_kg"`
	EcoImprovementPct float64             `json:"eco_improvement_pct"`
	EcoRatingBadge    string              `json:"eco_rating_badge"`
	Scenarios         map[string]Scenario `json:"scenarios"`
}

// Fuel is the burn model: base rate scaled by distance, by the speed factor
// relative to nominal (floored at 0.5, slowing down saves at most half) and
// by the weather resistance multiplier.
func Fuel(baseRate, nominalSpeed, actualSpeed, distanceNm, resistance float64) float64 {
	factor := 1.0
	if nominalSpeed > 0 {
		factor = math.Max(actualSpeed/nominalSpeed, 0.5)
	}
	return baseRate * distanceNm * factor * resistance
}

// Emissions converts burned liters to kg CO2 for the fuel type.
func Emissions(liters float64, fuelType string) float64 {
	ef, ok := emissionFactors[fuelType]
	if !ok {
		ef = emissionFactors[defaultFuelType]
	}
	return liters * ef
}

// Badge grades the eco scenario improvement.
func Badge(improvementPct float64) string {
	switch {
	case improvementPct >= carbonCutterPct:
		return "🌱 Carbon Cutter"
	case improvementPct >= lowEmissionPct:
		return "💨 Low Emission Rider"
	default:
		return "🚢 Standard Mode"
	}
}

// Marpol evaluates the Annex VI emission cap, the Annex I fuel restriction
// and the Annex VI eco-speed recommendation for one scenario.
func Marpol(vesselType, fuelType string, co2Kg, speedKnots float64) map[string]Compliance {
	compliance := make(map[string]Compliance, 3)

	if limit, ok := co2CapKg[vesselType]; ok && co2Kg > limit {
		compliance["annex_vi_Air_Pollution"] = Compliance{Message: "❌ Exceeds emission threshold (Annex VI)", Passed: false}
	} else {
		compliance["annex_vi_Air_Pollution"] = Compliance{Message: "✅ Within emission limits (Annex VI)", Passed: true}
	}

	if vesselType == "small_coastal" && fuelType == "HFO" {
		compliance["annex_i"] = Compliance{Message: "⚠️ HFO restricted for small coastal vessels (Annex I)", Passed: false}
	} else {
		compliance["annex_i"] = Compliance{Message: "✅ Fuel use compliant (Annex I)", Passed: true}
	}

	if limit, ok := ecoSpeedCapKn[vesselType]; ok && speedKnots > limit {
		compliance["annex_vi_eco_speed"] = Compliance{Message: "⚠️ Above eco-speed, may increase emissions (Annex VI)", Passed: false}
	} else {
		compliance["annex_vi_eco_speed"] = Compliance{Message: "✅ Speed within eco-recommendations (Annex VI)", Passed: true}
	}

	return compliance
}

// Calculate runs the eco, balanced and fastest scenarios for the request and
// grades the eco scenario against the nominal-speed baseline.
func Calculate(req Request) Result {
	vt := req.VesselType
	class, ok := classes[vt]
	if !ok {
		vt = DefaultClass
		class = classes[vt]
	}

	resistance := 1.0
	if req.WeatherResistance != nil {
		resistance = *req.WeatherResistance
	}

	requested := math.Max(req.SpeedKnots, 1.0)
	speeds := map[string]float64{
		"eco":      math.Max(requested-2.0, 4.0),
		"balanced": math.Max(math.Min(class.NominalSpeed, requested), 4.0),
		"fastest":  math.Min(requested+2.0, 30.0),
	}

	scenarios := make(map[string]Scenario, len(speeds))
	for label, speed := range speeds {
		liters := Fuel(class.BaseRate, class.NominalSpeed, speed, req.DistanceNm, resistance)
		co2 := Emissions(liters, req.FuelType)
		scenarios[label] = Scenario{
			SpeedKnots: round2(speed),
			FuelLiters: round2(liters),
			CO2Kg:      round2(co2),
			EtaHours:   round2(req.DistanceNm / speed),
			Marpol:     Marpol(vt, req.FuelType, co2, speed),
		}
	}

	baseline := Emissions(Fuel(class.BaseRate, class.NominalSpeed, class.NominalSpeed, req.DistanceNm, 1.0), req.FuelType)
	improvement := 0.0
	if baseline > 0 {
		improvement = round2((baseline - scenarios["eco"].CO2Kg) / baseline * 100)
	}

	return Result{
		VesselType:        vt,
		DistanceNm:        req.DistanceNm,
		RequestedSpeed:    requested,
		FuelType:          req.FuelType,
		WeatherResistance: resistance,
		BaselineCO2Kg:     round2(baseline),
		EcoImprovementPct: improvement,
		EcoRatingBadge:    Badge(improvement),
		Scenarios:         scenarios,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
