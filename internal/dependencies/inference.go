package dependencies

import (
	"context"
	"io"
)

const ContentTypePNG = "image/png"

type Blob struct {
	Body        []byte
	ContentType string
}

// Input is what an inpainting model receives for a single run.
type Input struct {
	Prompt   string
	Image    Blob
	Mask     Blob
	NumSteps int
}

// Output holds the generated image as a stream. Callers must close Image.
type Output struct {
	Image io.ReadCloser
}

// Runner executes a model against an Input. Implementations must honour ctx
// cancellation and must not retry.
type Runner interface {
	Run(ctx context.Context, modelID string, in Input) (*Output, error)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, modelID string, in Input) (*Output, error)

func (f RunnerFunc) Run(ctx context.Context, modelID string, in Input) (*Output, error) {
	return f(ctx, modelID, in)
}
