package geom

import (
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestScaledRectIsLinear(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 300, Height: 150}
	once := ScaledRect(r, 1.5)
	twice := ScaledRect(r, 3)

	want := Rect{X: once.X * 2, Y: once.Y * 2, Width: once.Width * 2, Height: once.Height * 2}
	if diff := cmp.Diff(want, twice, approx); diff != "" {
		t.Errorf("doubling the factor did not double the rect (-want +got):\n%s", diff)
	}
}

func TestDisplayRect(t *testing.T) {
	tests := []struct {
		name      string
		container Rect
		image     Size
		want      Rect
	}{
		{
			name:      "wide image letterboxed",
			container: Rect{Width: 300, Height: 300},
			image:     Sz(600, 300),
			want:      Rect{X: 0, Y: 75, Width: 300, Height: 150},
		},
		{
			name:      "tall image pillarboxed",
			container: Rect{Width: 300, Height: 300},
			image:     Sz(100, 300),
			want:      Rect{X: 100, Y: 0, Width: 100, Height: 300},
		},
		{
			name:      "container offset is added",
			container: Rect{X: 40, Y: -10, Width: 200, Height: 100},
			image:     Sz(400, 200),
			want:      Rect{X: 40, Y: -10, Width: 200, Height: 100},
		},
		{
			name:      "empty image",
			container: Rect{Width: 200, Height: 100},
			image:     Sz(0, 200),
			want:      Rect{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayRect(tt.container, tt.image)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("DisplayRect mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %v, want 3", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1, 0, 3) = %v, want 0", got)
	}
	// Lower bound wins on an inverted range.
	if got := Clamp(2, 0, -4); got != 0 {
		t.Errorf("Clamp(2, 0, -4) = %v, want 0", got)
	}
}

func TestPixels(t *testing.T) {
	got := Rect{X: 10.4, Y: 9.6, Width: 20.2, Height: 0.8}.Pixels()
	want := image.Rect(10, 10, 31, 10)
	if got != want {
		t.Errorf("Pixels() = %v, want %v", got, want)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Scale(2, 4).Multiply(Translate(-10, 6))
	got := m.Transform(Pt(5, 5))
	if diff := cmp.Diff(Pt(0, 26), got, approx); diff != "" {
		t.Errorf("transform mismatch (-want +got):\n%s", diff)
	}
	back := m.Inverse().Transform(got)
	if diff := cmp.Diff(Pt(5, 5), back, approx); diff != "" {
		t.Errorf("inverse mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrixAff3(t *testing.T) {
	m := Scale(2, 3).Multiply(Translate(5, 7))
	a := m.Aff3()
	p := Pt(1, 1)
	want := m.Transform(p)
	x := a[0]*p.X + a[1]*p.Y + a[2]
	y := a[3]*p.X + a[4]*p.Y + a[5]
	if math.Abs(x-want.X) > 1e-9 || math.Abs(y-want.Y) > 1e-9 {
		t.Errorf("Aff3 transform = (%v, %v), want %v", x, y, want)
	}
}

func TestTransformRect(t *testing.T) {
	got := Scale(2, -3).Multiply(Translate(5, 7)).TransformRect(Rect{Width: 20, Height: 10})
	want := Rect{X: 5, Y: -23, Width: 40, Height: 30}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("TransformRect mismatch (-want +got):\n%s", diff)
	}
}
