package capture

import "math"

const (
	// BandCount is the number of frequency bands in a Levels sample.
	BandCount = 32
	// windowSize is how many of the latest mono samples are analysed.
	windowSize = 512

	minDecibels = -90.0
	maxDecibels = -10.0
	lowestBand  = 60.0
)

// Levels is one visualiser frame. Bands are normalised to 0..1 between
// -90 dB and -10 dB; Level is their mean.
type Levels struct {
	Bands [BandCount]float64
	Level float64
}

// ComputeLevels measures the bands of a mono window with a Goertzel filter
// per band after a Hann window. Band centres are spaced logarithmically from
// 60 Hz to just under the Nyquist frequency.
func ComputeLevels(samples []float32, sampleRate int) Levels {
	var out Levels
	n := len(samples)
	if n == 0 || sampleRate <= 0 {
		return out
	}

	windowed := make([]float64, n)
	for i, s := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		windowed[i] = float64(s) * w
	}

	var sum float64
	for b := 0; b < BandCount; b++ {
		mag := goertzel(windowed, bandFrequency(b, sampleRate), float64(sampleRate))
		// a full-scale sine through a Hann window peaks at n/4
		db := 20 * math.Log10(mag*4/float64(n))
		v := (db - minDecibels) / (maxDecibels - minDecibels)
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out.Bands[b] = v
		sum += v
	}
	out.Level = sum / BandCount
	return out
}

func goertzel(x []float64, freq, rate float64) float64 {
	coeff := 2 * math.Cos(2*math.Pi*freq/rate)
	var s1, s2 float64
	for _, v := range x {
		s0 := v + coeff*s1 - s2
		s2, s1 = s1, s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power)
}

// bandFrequency is the centre of band b for sampleRate.
func bandFrequency(b, sampleRate int) float64 {
	hi := 0.9 * float64(sampleRate) / 2
	return lowestBand * math.Pow(hi/lowestBand, float64(b)/float64(BandCount-1))
}
