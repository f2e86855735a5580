package viewer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
)

// Transform is the zoom and pan applied to the rendered image.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity is the transform Reset returns to.
var Identity = Transform{Scale: 1}

// Options bound the zoom behaviour.
type Options struct {
	MinScale float64 `json:"min_scale" yaml:"min_scale" koanf:"min_scale"`
	MaxScale float64 `json:"max_scale" yaml:"max_scale" koanf:"max_scale"`
	Step     float64 `json:"step" yaml:"step" koanf:"step"`
}

// DefaultOptions zoom by e^0.5 per step between a quarter and eight times
// the natural size.
func DefaultOptions() Options {
	return Options{MinScale: 0.25, MaxScale: 8, Step: math.Exp(0.5)}
}

// Validate checks 0 < MinScale <= 1 <= MaxScale and Step > 1.
func (o Options) Validate() error {
	switch {
	case o.MinScale <= 0:
		return errors.New("viewer min_scale must be positive")
	case o.MinScale > 1:
		return errors.New("viewer min_scale must not exceed 1")
	case o.MaxScale < 1:
		return errors.New("viewer max_scale must be at least 1")
	case o.Step <= 1:
		return errors.New("viewer step must be greater than 1")
	}
	return nil
}

// Display is what the viewport currently presents.
type Display string

const (
	DisplayLoading    Display = "loading"
	DisplayEmpty      Display = "empty"
	DisplayImage      Display = "image"
	DisplayImageError Display = "image_error"
)

// ImageState tracks the fetch of the current image URL.
type ImageState string

const (
	ImagePending ImageState = "pending"
	ImageLoaded  ImageState = "loaded"
	ImageFailed  ImageState = "failed"
)

// State is a snapshot of the controller.
type State struct {
	Transform  Transform      `json:"transform"`
	Status     diagram.Status `json:"status"`
	Display    Display        `json:"display"`
	ImageURL   string         `json:"image_url,omitempty"`
	Image      ImageState     `json:"image_state,omitempty"`
	ImageError string         `json:"image_error,omitempty"`
}

// Controller owns the viewer transform, the generation status gate and the
// image display state. All methods are safe for concurrent use; mutations
// are applied one at a time.
type Controller struct {
	opts Options

	mu        sync.Mutex
	transform Transform
	status    diagram.Status
	imageURL  string
	image     ImageState
	imageErr  string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// New creates a controller at the identity transform with status Idle.
func New(opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		opts:      opts,
		transform: Identity,
		status:    diagram.StatusIdle,
		subs:      make(map[int]func(State)),
	}, nil
}

// Options returns the zoom bounds in use.
func (c *Controller) Options() Options {
	return c.opts
}

// ZoomIn multiplies the scale by the step factor, up to MaxScale.
func (c *Controller) ZoomIn() State {
	return c.mutate(func() {
		c.transform.Scale = math.Min(c.transform.Scale*c.opts.Step, c.opts.MaxScale)
	})
}

// ZoomOut divides the scale by the step factor, down to MinScale.
func (c *Controller) ZoomOut() State {
	return c.mutate(func() {
		c.transform.Scale = math.Max(c.transform.Scale/c.opts.Step, c.opts.MinScale)
	})
}

// Reset restores the identity transform.
func (c *Controller) Reset() State {
	return c.mutate(func() {
		c.transform = Identity
	})
}

// Pan moves the image by the given offset. Panning is not bounded.
func (c *Controller) Pan(dx, dy float64) State {
	return c.mutate(func() {
		c.transform.TranslateX += dx
		c.transform.TranslateY += dy
	})
}

// SetStatus records the generation lifecycle state.
func (c *Controller) SetStatus(s diagram.Status) {
	c.mutate(func() {
		c.status = s
	})
}

// Show displays the image for enc. A different URL restarts the image fetch
// state; showing the same URL again keeps it.
func (c *Controller) Show(enc plantuml.Encoded) State {
	return c.mutate(func() {
		if enc.URL == c.imageURL {
			return
		}
		c.imageURL = enc.URL
		c.image = ImagePending
		c.imageErr = ""
	})
}

// Clear removes the current image.
func (c *Controller) Clear() State {
	return c.mutate(func() {
		c.imageURL = ""
		c.image = ""
		c.imageErr = ""
	})
}

// ImageLoaded marks url as displayed. Reports for any URL other than the
// current one are ignored.
func (c *Controller) ImageLoaded(url string) State {
	return c.mutate(func() {
		if url != c.imageURL || url == "" {
			return
		}
		c.image = ImageLoaded
		c.imageErr = ""
	})
}

// ImageFailed records a fetch failure for url. It affects neither the
// generation status nor the transform.
func (c *Controller) ImageFailed(url string, err error) State {
	return c.mutate(func() {
		if url != c.imageURL || url == "" {
			return
		}
		c.image = ImageFailed
		c.imageErr = "image could not be loaded"
		if err != nil {
			c.imageErr = err.Error()
		}
	})
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe registers fn to receive the state after every mutation. The
// returned function unregisters it.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) mutate(fn func()) State {
	c.mu.Lock()
	fn()
	st := c.snapshot()
	c.mu.Unlock()

	c.notify(st)
	return st
}

func (c *Controller) notify(st State) {
	c.subMu.Lock()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// snapshot must be called with mu held.
func (c *Controller) snapshot() State {
	st := State{
		Transform:  c.transform,
		Status:     c.status,
		ImageURL:   c.imageURL,
		Image:      c.image,
		ImageError: c.imageErr,
	}
	switch {
	case c.status == diagram.StatusGenerating:
		st.Display = DisplayLoading
	case c.imageURL == "":
		st.Display = DisplayEmpty
	case c.image == ImageFailed:
		st.Display = DisplayImageError
	default:
		st.Display = DisplayImage
	}
	return st
}

func (s State) String() string {
	return fmt.Sprintf("%s scale=%.2f pan=(%.0f,%.0f) status=%s", s.Display, s.Transform.Scale, s.Transform.TranslateX, s.Transform.TranslateY, s.Status)
}
