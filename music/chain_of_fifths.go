package music

import (
	"sort"

	"github.com/pkg/errors"
)

// ChainOfFifths is a sequence of stacked, possibly tempered fifths. A chain
// of L fifths spans L+1 notes; RootIndex selects the note that acts as the
// unmodified 0 cent reference
type ChainOfFifths struct {
	fifths    []FifthModification
	rootIndex int
	ratios    []float64         // by chain position
	closing   FifthModification // ClosingCircleCorrection
}

// NewChainOfFifths validates and copies the chain
func NewChainOfFifths(fifths []FifthModification, rootIndex int) (*ChainOfFifths, error) {
	if len(fifths) == 0 {
		return nil, errors.Wrap(ErrInvalidChain, "chain needs at least one fifth")
	}
	if rootIndex < 0 || rootIndex > len(fifths) {
		return nil, errors.Wrapf(ErrInvalidChain, "root index %d outside [0, %d]", rootIndex, len(fifths))
	}
	c := &ChainOfFifths{
		fifths:    make([]FifthModification, len(fifths)),
		rootIndex: rootIndex,
	}
	for i, f := range fifths {
		simplified, err := f.Simplify()
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidChain, "fifth %d: %v", i, err)
		}
		c.fifths[i] = simplified
	}
	if err := c.accumulate(); err != nil {
		return nil, err
	}
	return c, nil
}

// accumulate sums the exact comma corrections along the chain once, so
// overflowing chains are rejected up front
func (c *ChainOfFifths) accumulate() error {
	c.ratios = make([]float64, c.NumNotes())
	c.ratios[c.rootIndex] = 1

	// pure fifths are accumulated via octave reduction, the comma correction
	// is tracked exactly and applied per position
	var err error
	pure := 1.0
	correction := FifthModification{}
	for i := c.rootIndex + 1; i < len(c.ratios); i++ {
		pure = reduceOctave(pure * PureFifth)
		if correction, err = correction.Add(c.fifths[i-1]); err != nil {
			return errors.Wrapf(ErrInvalidChain, "chain position %d: %v", i, err)
		}
		c.ratios[i] = reduceOctave(pure * correction.Ratio())
	}

	pure = 1.0
	correction = FifthModification{}
	for i := c.rootIndex - 1; i >= 0; i-- {
		pure = reduceOctave(pure / PureFifth)
		if correction, err = correction.Sub(c.fifths[i]); err != nil {
			return errors.Wrapf(ErrInvalidChain, "chain position %d: %v", i, err)
		}
		c.ratios[i] = reduceOctave(pure * correction.Ratio())
	}

	c.closing = FifthModification{Pythagorean: One}
	for i, f := range c.fifths {
		if c.closing, err = c.closing.Add(f); err != nil {
			return errors.Wrapf(ErrInvalidChain, "closing correction at fifth %d: %v", i, err)
		}
	}
	return nil
}

// Fifths returns a copy of the fifth modifications
func (c *ChainOfFifths) Fifths() []FifthModification {
	out := make([]FifthModification, len(c.fifths))
	copy(out, c.fifths)
	return out
}

// RootIndex returns the chain position of the reference note
func (c *ChainOfFifths) RootIndex() int { return c.rootIndex }

// NumNotes returns the number of notes spanned by the chain
func (c *ChainOfFifths) NumNotes() int { return len(c.fifths) + 1 }

// RatiosByChainPosition returns, for each chain position, the ratio reached
// from the root, reduced into [1, 2)
func (c *ChainOfFifths) RatiosByChainPosition() []float64 {
	return append([]float64(nil), c.ratios...)
}

// SortedChainPositions returns chain positions ordered by ascending ratio.
// The root always comes first
func (c *ChainOfFifths) SortedChainPositions() []int {
	ratios := c.RatiosByChainPosition()
	positions := make([]int, len(ratios))
	for i := range positions {
		positions[i] = i
	}
	sort.SliceStable(positions, func(a, b int) bool {
		return ratios[positions[a]] < ratios[positions[b]]
	})
	return positions
}

// Ratios returns the chain ratios sorted ascending, starting with 1
func (c *ChainOfFifths) Ratios() []float64 {
	ratios := c.RatiosByChainPosition()
	sort.Float64s(ratios)
	return ratios
}

// Cents returns the sorted cents of the chain followed by the closing octave
func (c *ChainOfFifths) Cents() []float64 {
	ratios := c.Ratios()
	cents := make([]float64, len(ratios)+1)
	for i, r := range ratios {
		cents[i] = RatioToCents(r)
	}
	cents[0] = 0
	cents[len(ratios)] = CentsPerOctave
	return cents
}

// ClosingCircleCorrection returns how far the chain, extended by one more
// pure fifth, overshoots seven octaves. For a twelve note chain of pure
// fifths this is exactly one Pythagorean comma; the fifth closing the circle
// has to be narrowed by this amount
func (c *ChainOfFifths) ClosingCircleCorrection() FifthModification {
	return c.closing
}

// ClosingFifth returns the modification of the fifth from the last chain
// note back to the first one
func (c *ChainOfFifths) ClosingFifth() FifthModification {
	return c.ClosingCircleCorrection().Neg()
}

func reduceOctave(ratio float64) float64 {
	for ratio >= 2 {
		ratio /= 2
	}
	for ratio < 1 {
		ratio *= 2
	}
	return ratio
}
