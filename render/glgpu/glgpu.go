// Package glgpu is a render.Backend drawing with OpenGL 3.3 core. The caller
// owns the window and must make its context current on the calling thread
// before New and for every subsequent call.
package glgpu

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/orbital"
	"github.com/soypat/orbital/mesh"
	"github.com/soypat/orbital/render"
	"go.uber.org/zap"
)

var _ render.Backend = (*Backend)(nil)

const (
	volumeStride = 7 * 4
	axesStride   = 6 * 4
)

// Options configures a Backend.
type Options struct {
	// Exposure scales the normalized density before tone mapping. Defaults to 0.05.
	Exposure float32
	// AxisLength is the half length of the drawn coordinate axes. Defaults to 4.
	AxisLength float32
}

type program struct {
	id       uint32
	uniforms map[string]int32
}

// Backend renders the opaque pass into a color and depth texture pair, the
// volume pass additively into a floating point texture tested against the
// same depth, and composites both onto the default framebuffer.
type Backend struct {
	opts Options

	axes, volume, composite program

	axesVAO, axesVBO     uint32
	volumeVAO, volumeVBO uint32
	emptyVAO             uint32
	volumeCount          int32
	densityScale         float32

	w, h               int32
	solidTex, depthTex uint32
	cloudTex           uint32
	solidFBO, cloudFBO uint32
	buf                []render.VolumeVertex
}

// New compiles the shader programs and uploads the axes geometry.
func New(opts Options) (*Backend, error) {
	if opts.Exposure <= 0 {
		opts.Exposure = 0.05
	}
	if opts.AxisLength <= 0 {
		opts.AxisLength = 4
	}
	b := &Backend{opts: opts}
	var err error
	b.axes, err = compile(axesSource, "mvp")
	if err != nil {
		return nil, fmt.Errorf("axes program: %w", err)
	}
	b.volume, err = compile(volumeSource, "mvp", "gain")
	if err != nil {
		return nil, fmt.Errorf("volume program: %w", err)
	}
	b.composite, err = compile(compositeSource, "solid", "cloud")
	if err != nil {
		return nil, fmt.Errorf("composite program: %w", err)
	}

	l := opts.AxisLength
	axes := []float32{
		-l, 0, 0, 0.71, 0.29, 0.15, l, 0, 0, 0.71, 0.29, 0.15,
		0, -l, 0, 0.27, 0.54, 0.4, 0, l, 0, 0.27, 0.54, 0.4,
		0, 0, -l, 0.23, 0.43, 0.65, 0, 0, l, 0.23, 0.43, 0.65,
	}
	gl.GenVertexArrays(1, &b.axesVAO)
	gl.BindVertexArray(b.axesVAO)
	gl.GenBuffers(1, &b.axesVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.axesVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(axes), gl.Ptr(axes), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, axesStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, axesStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.GenVertexArrays(1, &b.volumeVAO)
	gl.BindVertexArray(b.volumeVAO)
	gl.GenBuffers(1, &b.volumeVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.volumeVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, volumeStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, volumeStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, volumeStride, gl.PtrOffset(4*4))
	gl.EnableVertexAttribArray(2)

	gl.GenVertexArrays(1, &b.emptyVAO)
	gl.BindVertexArray(0)
	return b, glError("init")
}

func compile(src string, uniforms ...string) (program, error) {
	combined, err := glgl.ParseCombined(strings.NewReader(src))
	if err != nil {
		return program{}, err
	}
	prog, err := glgl.CompileProgram(combined)
	if err != nil {
		return program{}, err
	}
	prog.Bind()
	var id int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &id)
	p := program{id: uint32(id), uniforms: make(map[string]int32)}
	for _, name := range uniforms {
		loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
		if loc < 0 {
			return program{}, fmt.Errorf("uniform %q not found", name)
		}
		p.uniforms[name] = loc
	}
	return p, nil
}

func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("glgpu: invalid viewport %dx%d", width, height)
	}
	b.release()
	b.w, b.h = int32(width), int32(height)
	b.solidTex = newTexture(gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, b.w, b.h)
	b.depthTex = newTexture(gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.FLOAT, b.w, b.h)
	b.cloudTex = newTexture(gl.RGBA16F, gl.RGBA, gl.FLOAT, b.w, b.h)

	var err error
	b.solidFBO, err = newFramebuffer(b.solidTex, b.depthTex)
	if err != nil {
		return err
	}
	b.cloudFBO, err = newFramebuffer(b.cloudTex, b.depthTex)
	if err != nil {
		return err
	}
	render.Logger().Debug("glgpu targets allocated", zap.Int("width", width), zap.Int("height", height))
	return glError("resize")
}

func newTexture(internal int32, format, xtype uint32, w, h int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, w, h, 0, format, xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func newFramebuffer(color, depth uint32) (uint32, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, depth, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return 0, fmt.Errorf("glgpu: incomplete framebuffer 0x%x", status)
	}
	return fbo, nil
}

// SetMesh uploads the faces of every tetrahedron with their corner densities.
func (b *Backend) SetMesh(s mesh.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.buf = render.AppendVolumeVertices(b.buf[:0], s)
	var maxDensity float64
	for _, v := range s.Vertices {
		maxDensity = max(maxDensity, orbital.Density(v.Value))
	}
	b.densityScale = 0
	if maxDensity > 0 {
		b.densityScale = float32(1 / maxDensity)
	}
	b.volumeCount = int32(len(b.buf))
	gl.BindBuffer(gl.ARRAY_BUFFER, b.volumeVBO)
	if len(b.buf) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, volumeStride*len(b.buf), gl.Ptr(&b.buf[0]), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return glError("set mesh")
}

func (b *Backend) DrawOpaque(v render.View) error {
	if b.solidFBO == 0 {
		return errNoViewport
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.solidFBO)
	gl.Viewport(0, 0, b.w, b.h)
	gl.ClearColor(0, 0, 0, 1)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.BLEND)

	mvp := render.ColumnMajor(v.MVP)
	gl.UseProgram(b.axes.id)
	gl.UniformMatrix4fv(b.axes.uniforms["mvp"], 1, false, &mvp[0])
	gl.BindVertexArray(b.axesVAO)
	gl.DrawArrays(gl.LINES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return glError("opaque pass")
}

func (b *Backend) DrawVolume(v render.View, brightness float64) error {
	if b.cloudFBO == 0 {
		return errNoViewport
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.cloudFBO)
	gl.Viewport(0, 0, b.w, b.h)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(false)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	gl.Disable(gl.CULL_FACE)

	if b.volumeCount > 0 {
		mvp := render.ColumnMajor(v.MVP)
		gl.UseProgram(b.volume.id)
		gl.UniformMatrix4fv(b.volume.uniforms["mvp"], 1, false, &mvp[0])
		gl.Uniform1f(b.volume.uniforms["gain"], float32(brightness)*b.opts.Exposure*b.densityScale)
		gl.BindVertexArray(b.volumeVAO)
		gl.DrawArrays(gl.TRIANGLES, 0, b.volumeCount)
		gl.BindVertexArray(0)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return glError("volume pass")
}

// Composite draws the tone mapped cloud over the solid pass onto the
// default framebuffer.
func (b *Backend) Composite(width, height int) error {
	if b.solidFBO == 0 {
		return errNoViewport
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(b.composite.id)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.solidTex)
	gl.Uniform1i(b.composite.uniforms["solid"], 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, b.cloudTex)
	gl.Uniform1i(b.composite.uniforms["cloud"], 1)
	gl.BindVertexArray(b.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
	return glError("composite")
}

// ReadImage reads back the default framebuffer, top row first.
func (b *Backend) ReadImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&img.Pix[0]))
	// GL rows start at the bottom.
	row := make([]byte, img.Stride)
	for y := 0; y < height/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(height-1-y)*img.Stride : (height-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
	return img
}

func (b *Backend) release() {
	for _, fbo := range []*uint32{&b.solidFBO, &b.cloudFBO} {
		if *fbo != 0 {
			gl.DeleteFramebuffers(1, fbo)
			*fbo = 0
		}
	}
	for _, tex := range []*uint32{&b.solidTex, &b.depthTex, &b.cloudTex} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
}

// Delete releases every GL object owned by b.
func (b *Backend) Delete() {
	b.release()
	gl.DeleteBuffers(1, &b.axesVBO)
	gl.DeleteBuffers(1, &b.volumeVBO)
	gl.DeleteVertexArrays(1, &b.axesVAO)
	gl.DeleteVertexArrays(1, &b.volumeVAO)
	gl.DeleteVertexArrays(1, &b.emptyVAO)
	for _, p := range []program{b.axes, b.volume, b.composite} {
		gl.DeleteProgram(p.id)
	}
}

var errNoViewport = errors.New("glgpu: draw before Resize")

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glgpu %s: GL error 0x%x", op, code)
	}
	return nil
}
