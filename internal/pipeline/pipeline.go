package pipeline

import (
	"context"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/extract"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/prompt"
	"github.com/ziadkadry99/umlgen/internal/templates"
)

// Pipeline composes prompts, calls the model, extracts markup and encodes
// it for the rendering server.
type Pipeline struct {
	templates *templates.Store
	client    *generation.Client
	extractor extract.Extractor
	encoder   *plantuml.Encoder
}

// New creates a pipeline. A nil store uses the embedded templates and a nil
// encoder uses the public PlantUML server.
func New(store *templates.Store, client *generation.Client, encoder *plantuml.Encoder) *Pipeline {
	if store == nil {
		store = templates.Default()
	}
	if encoder == nil {
		encoder = plantuml.NewEncoder("")
	}
	return &Pipeline{
		templates: store,
		client:    client,
		extractor: extract.Extractor{Tag: extract.DefaultTag},
		encoder:   encoder,
	}
}

// Templates returns the template store used for prompts.
func (p *Pipeline) Templates() *templates.Store { return p.templates }

// Encoder returns the diagram encoder.
func (p *Pipeline) Encoder() *plantuml.Encoder { return p.encoder }

// GenerateDiagram turns a description into diagram markup. A reply without
// a diagram block yields Absent with a nil error. Model failures are
// returned as errors matching generation.ErrGenerationFailed; an empty
// description returns diagram.ErrEmptyDescription without calling the model.
func (p *Pipeline) GenerateDiagram(ctx context.Context, description string, t diagram.Type) (diagram.Markup, error) {
	markup, _, err := p.generate(ctx, diagram.Request{Description: description, Type: t}, nil)
	return markup, err
}

// ToResource encodes markup into a token and rendering URL.
func (p *Pipeline) ToResource(markup string) plantuml.Encoded {
	return p.encoder.Encode(markup)
}

func (p *Pipeline) generate(ctx context.Context, req diagram.Request, sink generation.StatusSink) (diagram.Markup, *generation.Result, error) {
	if err := req.Validate(); err != nil {
		return diagram.Absent(), nil, err
	}

	promptText := prompt.Compose(req.Description, req.Type, p.templates)
	res, err := p.client.GenerateResult(ctx, promptText, sink)
	if err != nil {
		return diagram.Absent(), nil, err
	}
	return p.extractor.Extract(res.Reply), res, nil
}
