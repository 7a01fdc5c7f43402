package simulate

import (
	"testing"

	"BatterySentinel/internal/battery"
	"BatterySentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params() model.Parameters {
	return model.Parameters{
		NominalCapacity:   2.3,
		NominalResistance: 0.1,
		InitialSOC:        0.8,
		SamplePeriod:      1,
		CycleLife:         1000,
		OCV:               battery.ReferenceOCV.Voltage,
	}
}

func TestDischargeShape(t *testing.T) {
	s, err := Discharge(params(), DischargeConfig{Duration: 3600, Current: 1.0, VoltageNoise: 0.01, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, 3601, s.Len())
	require.NoError(t, s.Validate())
	assert.Equal(t, 0.0, s.Time[0])
	assert.Equal(t, 3600.0, s.Time[3600])
	assert.Less(t, s.Voltage[3600], s.Voltage[0])
}

func TestDischargeNoiseless(t *testing.T) {
	p := params()
	s, err := Discharge(p, DischargeConfig{Duration: 10, Current: 2.0})
	require.NoError(t, err)
	assert.InDelta(t, p.OCV(0.8)-0.2, s.Voltage[0], 1e-12)
	assert.Equal(t, 2.0, s.Current[5])
}

func TestDischargeDeterministic(t *testing.T) {
	cfg := DischargeConfig{Duration: 100, Current: 1, CurrentNoise: 0.05, VoltageNoise: 0.01, Seed: 7}
	a, err := Discharge(params(), cfg)
	require.NoError(t, err)
	b, err := Discharge(params(), cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAgingShape(t *testing.T) {
	s, err := Aging(params(), AgingConfig{LastCycle: 1000, CapacityNoise: 0.002, ResistanceNoise: 0.0005, Seed: 3})
	require.NoError(t, err)
	require.Equal(t, 1001, s.Len())
	require.NoError(t, s.Validate())
	assert.InDelta(t, 2.3*0.8, s.Capacity[1000], 0.01)
	assert.InDelta(t, 0.15, s.Resistance[1000], 0.003)
}

func TestRejectsInvalid(t *testing.T) {
	_, err := Discharge(params(), DischargeConfig{Duration: -1})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = Aging(params(), AgingConfig{LastCycle: -1})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	p := params()
	p.NominalCapacity = 0
	_, err = Aging(p, AgingConfig{LastCycle: 10})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
