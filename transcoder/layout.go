package transcoder

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/retro-runtime/transcoder/internal/layout"
)

type LayoutInfo = layout.Info

type LayoutCalculator struct {
	calc *layout.Calculator
}

func NewLayoutCalculator() *LayoutCalculator {
	return &LayoutCalculator{
		calc: layout.NewCalculator(),
	}
}

func (lc *LayoutCalculator) Calculate(t wit.Type) LayoutInfo {
	return lc.calc.Calculate(t)
}

var alignTo = layout.AlignTo
