package ledbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGameProfile(t *testing.T) {
	for alias, want := range map[string]GameProfile{
		"dirt-rally-2":    DiRTRally2,
		"DR2":             DiRTRally2,
		"dirt":            DiRTRally2,
		"forza-horizon-5": ForzaHorizon5,
		"FH5":             ForzaHorizon5,
		"forza":           ForzaHorizon5,
	} {
		got, err := ParseGameProfile(alias)
		assert.NoError(t, err)
		assert.Equal(t, want, got, alias)
	}

	_, err := ParseGameProfile("gran-turismo")
	assert.Error(t, err)
}

func TestGameProfileDefaults(t *testing.T) {
	assert.Equal(t, 20777, DiRTRally2.DefaultPort())
	assert.Equal(t, 9999, ForzaHorizon5.DefaultPort())
	assert.Equal(t, "DiRT Rally 2.0", DiRTRally2.String())
	assert.Equal(t, "Forza Horizon 5", ForzaHorizon5.String())
}

func TestStalenessTracker(t *testing.T) {
	tr := stalenessTracker{}
	r := Reading{CurrentRPM: 5000, MaxRPM: 7000, IdleRPM: 1000, SessionActive: true}

	tr.observe(r)
	assert.False(t, tr.stale())

	for i := 0; i < stalenessThreshold-1; i++ {
		tr.observe(r)
		assert.False(t, tr.stale(), "iteration %d", i)
	}
	tr.observe(r)
	assert.True(t, tr.stale())

	// stays capped
	tr.observe(r)
	assert.True(t, tr.stale())

	// any change resets
	r.CurrentRPM = 5001
	tr.observe(r)
	assert.False(t, tr.stale())
}
