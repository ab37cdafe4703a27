package harmonic

import "math"

// Predictor fits f(h) = f1·h + α·h² to observed harmonic frequencies by
// least squares. Only running sums are kept, so harmonics can be added one
// at a time while searching the spectrum
type Predictor struct {
	count    int
	sumFH    float64 // Σ f·h
	sumFH2   float64 // Σ f·h²
	sumH2    float64 // Σ h²
	sumH3    float64 // Σ h³
	sumH4    float64 // Σ h⁴
	f1       float64
	alpha    float64
	distinct map[int]struct{}
}

// NewPredictor creates an empty predictor
func NewPredictor() *Predictor {
	return &Predictor{distinct: make(map[int]struct{})}
}

// Add records the frequency of harmonic h (h >= 1)
func (p *Predictor) Add(h int, frequency float64) {
	if h < 1 || !(frequency > 0) || math.IsInf(frequency, 0) {
		return
	}
	x := float64(h)
	x2 := x * x
	p.count++
	p.sumFH += frequency * x
	p.sumFH2 += frequency * x2
	p.sumH2 += x2
	p.sumH3 += x2 * x
	p.sumH4 += x2 * x2
	p.distinct[h] = struct{}{}
	p.fit()
}

func (p *Predictor) fit() {
	if len(p.distinct) < 2 {
		// one harmonic number cannot separate f1 from α
		p.f1 = p.sumFH / p.sumH2
		p.alpha = 0
		return
	}
	det := p.sumH2*p.sumH4 - p.sumH3*p.sumH3
	if det == 0 {
		p.f1 = p.sumFH / p.sumH2
		p.alpha = 0
		return
	}
	p.f1 = (p.sumFH*p.sumH4 - p.sumH3*p.sumFH2) / det
	p.alpha = (p.sumH2*p.sumFH2 - p.sumH3*p.sumFH) / det
}

// Count returns the number of recorded harmonics
func (p *Predictor) Count() int {
	return p.count
}

// Fit returns the fitted fundamental and quadratic coefficient
func (p *Predictor) Fit() (f1, alpha float64) {
	return p.f1, p.alpha
}

// Predict returns the expected frequency of harmonic h, 0 while empty
func (p *Predictor) Predict(h int) float64 {
	if p.count == 0 {
		return 0
	}
	x := float64(h)
	return p.f1*x + p.alpha*x*x
}

// Reset forgets all harmonics
func (p *Predictor) Reset() {
	*p = Predictor{distinct: make(map[int]struct{})}
}
