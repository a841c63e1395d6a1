package vec

import (
	"testing"
)

var (
	NULL = Vec3{}
)

func TestFromArray(t *testing.T) {
	v := VFromA([3]float32{1, 2, 3})
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("Vector construction is not obvious")
	}
	if got := v.Array(); got != [3]float32{1, 2, 3} {
		t.Errorf("Array() = %v", got)
	}
}

func TestLength(t *testing.T) {
	if NULL.Length() != 0 {
		t.Errorf("Null vector has not 0 length")
	}
	v := Vec3{2, 2, 1}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{2, 1, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{1, 2, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
}

func TestScale(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := v.Scale(2)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("%v.Scale(2) = %v want %v", v, got, want)
	}
	if got := v.Scale(0); got != NULL {
		t.Errorf("%v.Scale(0) = %v want the null vector", v, got)
	}
}

func TestNormalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	got := v.Normalize()
	want := Vec3{0.6, 0, 0.8}
	if got != want {
		t.Errorf("%v.Normalize() = %v want %v", v, got, want)
	}
	if got := NULL.Normalize(); got != NULL {
		t.Errorf("normalizing the null vector gave %v", got)
	}
}

func TestDot(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}
	if got := Dot(a, b); got != 12 {
		t.Errorf("Dot(%v,%v) = %v want 12", a, b, got)
	}
	if got := Dot(a, NULL); got != 0 {
		t.Errorf("Dot(%v,null) = %v want 0", a, got)
	}
}
