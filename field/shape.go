package field

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shape describes a solid density field assembled from distance primitives.
// It is comparable, and solids built from equal shapes are Equal fields.
type Shape struct {
	// Kind is one of sphere, box, cylinder, capsule, dumbbell or cored.
	Kind   string
	Radius float64
	Size   r3.Vec // box and cored.
	Height float64
	Round  float64
	// Blend joins the dumbbell lobes and carves the cored box:
	// sharp, poly, round or exp. round and exp only apply to dumbbell.
	Blend  string
	Smooth float64
	// Wall hollows the solid into a shell of this thickness when positive.
	Wall float64
	// Skin is the width of the density falloff at the surface.
	Skin float64
}

var errShape = errors.New("bad shape")

func (s Shape) String() string {
	return fmt.Sprintf("%s(r=%g h=%g skin=%g)", s.Kind, s.Radius, s.Height, s.Skin)
}

// NewShape builds the density field of shape.
func NewShape(shape Shape) (*Solid, error) {
	if shape.Skin <= 0 {
		return nil, fmt.Errorf("%w: skin %g must be positive", errShape, shape.Skin)
	}
	if shape.Wall < 0 || shape.Round < 0 || shape.Smooth < 0 {
		return nil, fmt.Errorf("%w: negative wall, round or smooth", errShape)
	}
	d, err := shape.sdf()
	if err != nil {
		return nil, err
	}
	if shape.Wall > 0 {
		d = Shell(d, shape.Wall)
	}
	f := FromSDF(d, shape.Skin)
	f.shape = &shape
	return f, nil
}

func (s Shape) sdf() (SDF3, error) {
	needRadius := s.Kind != "box"
	if needRadius && s.Radius <= 0 {
		return nil, fmt.Errorf("%w: %s radius %g must be positive", errShape, s.Kind, s.Radius)
	}
	needSize := s.Kind == "box" || s.Kind == "cored"
	if needSize && (s.Size.X <= 0 || s.Size.Y <= 0 || s.Size.Z <= 0) {
		return nil, fmt.Errorf("%w: %s size %v must be positive", errShape, s.Kind, s.Size)
	}
	switch s.Kind {
	case "sphere":
		return Sphere(r3.Vec{}, s.Radius), nil
	case "box":
		if 2*s.Round >= min(s.Size.X, s.Size.Y, s.Size.Z) {
			return nil, fmt.Errorf("%w: box round %g too large", errShape, s.Round)
		}
		return Box(s.Size, s.Round), nil
	case "cylinder":
		c, err := sdf.Cylinder3D(s.Height, s.Radius, s.Round)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errShape, err)
		}
		return sdfxAdapter{c}, nil
	case "capsule":
		c, err := sdf.Capsule3D(s.Height, s.Radius)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errShape, err)
		}
		return sdfxAdapter{c}, nil
	case "dumbbell":
		blend, err := s.minFunc()
		if err != nil {
			return nil, err
		}
		// Two lobes along X touching at the origin.
		lobe := r3.Vec{X: s.Radius}
		return Union(blend, Sphere(lobe, s.Radius), Sphere(r3.Scale(-1, lobe), s.Radius)), nil
	case "cored":
		if 2*s.Round >= min(s.Size.X, s.Size.Y, s.Size.Z) {
			return nil, fmt.Errorf("%w: box round %g too large", errShape, s.Round)
		}
		var carve MaxFunc
		switch s.Blend {
		case "", "sharp":
		case "poly":
			if s.Smooth <= 0 {
				return nil, fmt.Errorf("%w: poly blend needs positive smooth", errShape)
			}
			carve = PolyMax(s.Smooth)
		default:
			return nil, fmt.Errorf("%w: blend %q cannot carve", errShape, s.Blend)
		}
		return Difference(carve, Box(s.Size, s.Round), Sphere(r3.Vec{}, s.Radius)), nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", errShape, s.Kind)
}

func (s Shape) minFunc() (MinFunc, error) {
	if s.Blend != "" && s.Blend != "sharp" && s.Smooth <= 0 {
		return nil, fmt.Errorf("%w: %s blend needs positive smooth", errShape, s.Blend)
	}
	switch s.Blend {
	case "", "sharp":
		return nil, nil
	case "poly":
		return PolyMin(s.Smooth), nil
	case "round":
		return RoundMin(s.Smooth), nil
	case "exp":
		// ExpMin sharpness grows with k.
		return ExpMin(1 / s.Smooth), nil
	}
	return nil, fmt.Errorf("%w: unknown blend %q", errShape, s.Blend)
}
