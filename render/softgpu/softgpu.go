// Package softgpu is a headless render.Backend rasterizing on the CPU with fauxgl.
// It draws the coordinate axes as the opaque pass and splats each tetrahedron's
// probability mass at its projected centroid for the volume pass.
package softgpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/orbital"
	"github.com/soypat/orbital/mesh"
	"github.com/soypat/orbital/render"
)

var _ render.Backend = (*Backend)(nil)

var errNoViewport = errors.New("softgpu: draw before Resize")

// Options configures a Backend. The zero value is valid.
type Options struct {
	// Supersample renders at this multiple of the viewport size and
	// downsamples when compositing. Defaults to 2.
	Supersample int
	// Exposure scales the splatted cloud before tone mapping. Defaults to 0.25.
	Exposure float64
}

type splat struct {
	pos  fauxgl.Vector
	mass float64 // fraction of total probability mass.
	rgb  [3]float32
}

type Backend struct {
	opts  Options
	w, h  int // supersampled size.
	ctx   *fauxgl.Context
	solid image.Image
	cloud []float32 // rgb triplets.
	axes  []*fauxgl.Mesh
	tints []fauxgl.Color

	splats []splat
	frame  image.Image
}

func New(opts Options) *Backend {
	if opts.Supersample <= 0 {
		opts.Supersample = 2
	}
	if opts.Exposure <= 0 {
		opts.Exposure = 0.25
	}
	b := &Backend{opts: opts}
	// Thin boxes along each axis and a nucleus at the origin.
	const thin, long = 0.02, 4.0
	for _, sz := range []fauxgl.Vector{
		fauxgl.V(long, thin, thin),
		fauxgl.V(thin, long, thin),
		fauxgl.V(thin, thin, long),
		fauxgl.V(0.15, 0.15, 0.15),
	} {
		m := fauxgl.NewCube()
		m.Transform(fauxgl.Scale(sz))
		b.axes = append(b.axes, m)
	}
	b.tints = []fauxgl.Color{
		fauxgl.HexColor("#B64926"),
		fauxgl.HexColor("#468966"),
		fauxgl.HexColor("#3B6EA5"),
		fauxgl.HexColor("#FFF0A5"),
	}
	return b
}

func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("softgpu: invalid viewport %dx%d", width, height)
	}
	ss := b.opts.Supersample
	b.w, b.h = width*ss, height*ss
	b.ctx = fauxgl.NewContext(b.w, b.h)
	b.cloud = make([]float32, 3*b.w*b.h)
	b.solid = nil
	return nil
}

// SetMesh precomputes the probability mass and phase color of every tetrahedron.
func (b *Backend) SetMesh(s mesh.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.splats = b.splats[:0]
	var total float64
	for i, tet := range s.Tetrahedra {
		var density float64
		var amp complex128
		for _, v := range tet {
			val := s.Vertices[v].Value
			density += orbital.Density(val)
			amp += val
		}
		t := s.Tetra(i)
		mass := density / 4 * t.Volume()
		if mass <= 0 {
			continue
		}
		c := t.Centroid()
		total += mass
		b.splats = append(b.splats, splat{
			pos:  fauxgl.V(c.X, c.Y, c.Z),
			mass: mass,
			rgb:  render.PhaseColor(orbital.Phase(amp)),
		})
	}
	for i := range b.splats {
		b.splats[i].mass /= total
	}
	return nil
}

func (b *Backend) DrawOpaque(v render.View) error {
	if b.ctx == nil {
		return errNoViewport
	}
	b.ctx.ClearColorBufferWith(fauxgl.HexColor("#000000"))
	b.ctx.ClearDepthBuffer()
	eye := fauxgl.V(v.Eye.X, v.Eye.Y, v.Eye.Z)
	light := eye.Normalize()
	for i, m := range b.axes {
		shader := fauxgl.NewPhongShader(v.MVP, light, eye)
		shader.ObjectColor = b.tints[i]
		b.ctx.Shader = shader
		b.ctx.DrawMesh(m)
	}
	b.solid = b.ctx.Image()
	return nil
}

func (b *Backend) DrawVolume(v render.View, brightness float64) error {
	if b.ctx == nil {
		return errNoViewport
	}
	for i := range b.cloud {
		b.cloud[i] = 0
	}
	gain := float32(brightness * b.opts.Exposure * float64(b.w*b.h) / 1000)
	for _, s := range b.splats {
		clip := v.MVP.MulPositionW(s.pos)
		if clip.W <= 0 {
			continue
		}
		x := (clip.X/clip.W + 1) / 2 * float64(b.w)
		y := (1 - clip.Y/clip.W) / 2 * float64(b.h)
		px, py := int(math.Floor(x)), int(math.Floor(y))
		if px < 0 || py < 0 || px >= b.w || py >= b.h {
			continue
		}
		m := float32(s.mass) * gain
		off := 3 * (py*b.w + px)
		b.cloud[off] += m * s.rgb[0]
		b.cloud[off+1] += m * s.rgb[1]
		b.cloud[off+2] += m * s.rgb[2]
	}
	return nil
}

// Composite adds the tone mapped cloud over the solid pass and downsamples
// to width by height.
func (b *Backend) Composite(width, height int) error {
	if b.ctx == nil {
		return errNoViewport
	}
	full := image.NewNRGBA(image.Rect(0, 0, b.w, b.h))
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			var base [3]float32
			if b.solid != nil {
				r, g, bl, _ := b.solid.At(x, y).RGBA()
				base = [3]float32{float32(r) / 0xffff, float32(g) / 0xffff, float32(bl) / 0xffff}
			}
			off := 3 * (y*b.w + x)
			var c [3]uint8
			for k := range c {
				v := base[k] + 1 - math32.Exp(-b.cloud[off+k])
				c[k] = uint8(255 * math32.Min(1, v))
			}
			full.SetNRGBA(x, y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	if b.opts.Supersample == 1 && width == b.w && height == b.h {
		b.frame = full
		return nil
	}
	b.frame = resize.Resize(uint(width), uint(height), full, resize.Bilinear)
	return nil
}

// Image returns the last composited frame or nil.
func (b *Backend) Image() image.Image { return b.frame }

// SavePNG writes the last composited frame to path.
func (b *Backend) SavePNG(path string) error {
	if b.frame == nil {
		return errors.New("softgpu: no frame composited")
	}
	return fauxgl.SavePNG(path, b.frame)
}
