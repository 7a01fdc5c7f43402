// Package simulate produces synthetic measurement series for the estimators.
package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"

	"gonum.org/v1/gonum/stat/distuv"
)

// DischargeConfig describes a constant-current discharge.
type DischargeConfig struct {
	Duration     float64 // seconds
	Current      float64 // amps, positive drains the cell
	CurrentNoise float64 // std dev, amps
	VoltageNoise float64 // std dev, volts
	Seed         uint64
}

// AgingConfig describes a cycle-aging run from cycle 0 to LastCycle inclusive.
type AgingConfig struct {
	LastCycle       int
	CapacityNoise   float64 // std dev, Ah
	ResistanceNoise float64 // std dev, ohm
	Seed            uint64
}

func noise(sigma float64, seed, stream uint64) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewPCG(seed, stream)}
}

// Discharge simulates Duration/SamplePeriod+1 samples. The true SOC follows
// Coulomb counting from p.InitialSOC; measured voltage is OCV minus the IR
// drop plus noise.
func Discharge(p model.Parameters, cfg DischargeConfig) (*model.DischargeSeries, error) {
	if err := p.ValidateSOC(); err != nil {
		return nil, err
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("%w: negative duration %v", model.ErrInvalidInput, cfg.Duration)
	}

	n := int(math.Floor(cfg.Duration/p.SamplePeriod)) + 1
	s := &model.DischargeSeries{
		Time:    make([]float64, n),
		Current: make([]float64, n),
		Voltage: make([]float64, n),
	}

	iNoise := noise(cfg.CurrentNoise, cfg.Seed, 1)
	vNoise := noise(cfg.VoltageNoise, cfg.Seed, 2)

	soc := p.InitialSOC
	for k := 0; k < n; k++ {
		if k > 0 {
			soc = battery.Clamp01(soc - cfg.Current*p.SamplePeriod/(p.NominalCapacity*3600))
		}
		s.Time[k] = float64(k) * p.SamplePeriod
		s.Current[k] = cfg.Current + iNoise.Rand()
		s.Voltage[k] = p.OCV(soc) - cfg.Current*p.NominalResistance + vNoise.Rand()
	}
	return s, nil
}

// Aging simulates LastCycle+1 per-cycle capacity and resistance samples
// following the reference fade model.
func Aging(p model.Parameters, cfg AgingConfig) (*model.AgingSeries, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cfg.LastCycle < 0 {
		return nil, fmt.Errorf("%w: negative cycle count %d", model.ErrInvalidInput, cfg.LastCycle)
	}

	n := cfg.LastCycle + 1
	s := &model.AgingSeries{
		Cycles:     make([]float64, n),
		Capacity:   make([]float64, n),
		Resistance: make([]float64, n),
	}

	cNoise := noise(cfg.CapacityNoise, cfg.Seed, 3)
	rNoise := noise(cfg.ResistanceNoise, cfg.Seed, 4)

	for k := 0; k < n; k++ {
		c := float64(k)
		s.Cycles[k] = c
		s.Capacity[k] = math.Max(0, battery.CapacityAt(p.NominalCapacity, c, p.CycleLife)+cNoise.Rand())
		s.Resistance[k] = battery.ResistanceAt(p.NominalResistance, c, p.CycleLife) + rNoise.Rand()
	}
	return s, nil
}
