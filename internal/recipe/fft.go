package recipe

import (
	"factor/internal/parset"
)

// Names of the builtin FFT templates.
const (
	TemplateFFT         = "fft"
	TemplateFFTPipeline = "fft_pipeline"
)

// wplaneSteps maps image sizes (exclusive lower bounds) to w-projection plane
// counts, largest first.
var wplaneSteps = []struct {
	above   int
	wplanes int
}{
	{4095, 512},
	{3000, 448},
	{2047, 384},
	{1599, 256},
	{1023, 128},
	{799, 96},
	{512, 64},
}

// WPlanes returns the number of w-projection planes for an image of imsize
// pixels on a side.
func WPlanes(imsize int) int {
	for _, step := range wplaneSteps {
		if imsize > step.above {
			return step.wplanes
		}
	}
	return 1
}

// FFTParams are the inputs of the FFT step that predicts model visibilities
// into a measurement set.
type FFTParams struct {
	VisDatamap       []string
	ModelDatamap     []string
	CompletedDatamap []string
	ScriptName       string
	NTerms           int
	// WPlanes is derived from ImSize when zero.
	WPlanes int
	ImSize  int
	// NPerNode defaults to 1.
	NPerNode int
}

// WithParset fills NPerNode from the parset's cluster section when unset.
func (p FFTParams) WithParset(ps *parset.Parset) FFTParams {
	if ps != nil && p.NPerNode <= 0 {
		p.NPerNode = ps.Cluster.NDirPerNode
	}
	return p
}

// Bindings converts the parameters into template bindings. Unset datamaps,
// script name and w-planes (with no image size) stay unbound so rendering
// reports them.
func (p FFTParams) Bindings() Bindings {
	b := Bindings{}
	if len(p.VisDatamap) > 0 {
		b["vis_datamap"] = p.VisDatamap
	}
	if len(p.ModelDatamap) > 0 {
		b["model_datamap"] = p.ModelDatamap
	}
	if len(p.CompletedDatamap) > 0 {
		b["completed_datamap"] = p.CompletedDatamap
	}
	if p.ScriptName != "" {
		b["scriptname"] = p.ScriptName
	}
	nterms := p.NTerms
	if nterms <= 0 {
		nterms = 1
	}
	b["nterms"] = nterms
	switch {
	case p.WPlanes > 0:
		b["wplanes"] = p.WPlanes
	case p.ImSize > 0:
		b["wplanes"] = WPlanes(p.ImSize)
	}
	nPerNode := p.NPerNode
	if nPerNode <= 0 {
		nPerNode = 1
	}
	b["n_per_node"] = nPerNode
	return b
}
