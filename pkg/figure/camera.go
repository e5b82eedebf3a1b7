package figure

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view direction in degrees, matching the
// elevation/azimuth convention of common 3D plotting tools: azimuth turns
// about +Z from +X, elevation lifts the eye above the XY plane.
type Camera struct {
	Elevation float64
	Azimuth   float64
}

// Point2 is a projected point.
type Point2 struct {
	X, Y float64
}

// basis returns the screen right and up vectors and the eye direction.
func (c Camera) basis() (right, up, eye r3.Vec) {
	el := c.Elevation * math.Pi / 180
	az := c.Azimuth * math.Pi / 180
	sinEl, cosEl := math.Sincos(el)
	sinAz, cosAz := math.Sincos(az)

	right = r3.Vec{X: -sinAz, Y: cosAz}
	up = r3.Vec{X: -sinEl * cosAz, Y: -sinEl * sinAz, Z: cosEl}
	eye = r3.Vec{X: cosEl * cosAz, Y: cosEl * sinAz, Z: sinEl}
	return right, up, eye
}

// Project maps p onto the screen plane.
func (c Camera) Project(p r3.Vec) Point2 {
	right, up, _ := c.basis()
	return Point2{X: r3.Dot(p, right), Y: r3.Dot(p, up)}
}

// Depth is the distance of p towards the eye; larger is closer.
func (c Camera) Depth(p r3.Vec) float64 {
	_, _, eye := c.basis()
	return r3.Dot(p, eye)
}

// EqualBounds returns the cube centred on the middle of the points' extent
// whose half-side is half the largest extent, so that every axis has the
// same scale.
func EqualBounds(pts []r3.Vec) Box {
	if len(pts) == 0 {
		return Box{Min: r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, Max: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}}
	}

	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}

	origin := r3.Scale(0.5, r3.Add(lo, hi))
	radius := 0.5 * math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	if radius == 0 {
		radius = 0.5
	}

	half := r3.Vec{X: radius, Y: radius, Z: radius}
	return Box{Min: r3.Sub(origin, half), Max: r3.Add(origin, half)}
}

// Corners returns the eight vertices of b.
func (b Box) Corners() [8]r3.Vec {
	var out [8]r3.Vec
	for i := range out {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		out[i] = p
	}
	return out
}

// HeadBarbs returns the two barb endpoints of an arrow head drawn at tip,
// pointing away from tail, in screen space. size is the barb length and
// spread the half-angle in radians. A zero-length arrow has no barbs.
func HeadBarbs(tail, tip Point2, size, spread float64) (left, right Point2, ok bool) {
	dx, dy := tail.X-tip.X, tail.Y-tip.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return Point2{}, Point2{}, false
	}
	dx, dy = dx/n*size, dy/n*size

	sin, cos := math.Sincos(spread)
	left = Point2{X: tip.X + dx*cos - dy*sin, Y: tip.Y + dx*sin + dy*cos}
	right = Point2{X: tip.X + dx*cos + dy*sin, Y: tip.Y - dx*sin + dy*cos}
	return left, right, true
}

// Barbs3D returns the two barb endpoints of an arrow head in 3D, lying in
// a plane containing the arrow. frac is the barb length as a fraction of
// the arrow length.
func (a Arrow3D) Barbs3D(frac float64) (left, right r3.Vec, ok bool) {
	v := a.Vector()
	length := r3.Norm(v)
	if length == 0 {
		return r3.Vec{}, r3.Vec{}, false
	}
	dir := r3.Scale(1/length, v)

	// Any axis not parallel to dir gives a perpendicular.
	ref := r3.Vec{Z: 1}
	if math.Abs(dir.Z) > 0.9 {
		ref = r3.Vec{X: 1}
	}
	perp := r3.Unit(r3.Cross(dir, ref))

	back := r3.Scale(-frac*length, dir)
	side := r3.Scale(0.5*frac*length, perp)
	left = r3.Add(a.To, r3.Add(back, side))
	right = r3.Add(a.To, r3.Sub(back, side))
	return left, right, true
}
