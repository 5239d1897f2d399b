package audio

// ADSR is a linear attack-decay-sustain-release amplitude envelope.
// Attack, Decay and Release are in seconds; SustainLevel is in [0,1].
type ADSR struct {
	Attack       float64
	Decay        float64
	SustainLevel float64
	Release      float64
}

// DefaultADSR returns the envelope applied to every generated tone.
func DefaultADSR() ADSR {
	return ADSR{
		Attack:       0.05,
		Decay:        0.05,
		SustainLevel: 0.8,
		Release:      0.1,
	}
}

// Calculate returns the amplitude at time t of a note lasting duration seconds.
// The result is always in [0,1].
func (e ADSR) Calculate(t, duration float64) float64 {
	if t < 0 {
		return 0
	}

	attackEnd := e.Attack
	decayEnd := e.Attack + e.Decay
	releaseStart := duration - e.Release

	var v float64
	switch {
	case t < attackEnd:
		// Attack > 0 here since t >= 0.
		v = t / e.Attack
	case t < decayEnd:
		v = 1 - (1-e.SustainLevel)*(t-attackEnd)/e.Decay
	case t < releaseStart:
		v = e.SustainLevel
	case e.Release <= 0:
		v = 0
	default:
		v = e.SustainLevel * (1 - (t-releaseStart)/e.Release)
	}

	return clamp01(v)
}

// Samples evaluates the envelope at every sample instant of a note.
func (e ADSR) Samples(duration float64, sampleRate int) []float32 {
	n := sampleCount(duration, sampleRate)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(e.Calculate(t, duration))
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// sampleCount is floor(duration*rate), or 0 for non-positive inputs.
func sampleCount(duration float64, sampleRate int) int {
	if sampleRate <= 0 || !(duration > 0) {
		return 0
	}
	return int(duration * float64(sampleRate))
}
