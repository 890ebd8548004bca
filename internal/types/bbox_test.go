package types

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

func TestParseBoundingBox(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    BoundingBox
		wantErr bool
	}{
		{
			name:  "london",
			input: "-0.2,51.4,0.1,51.6",
			want:  BoundingBox{Left: -0.2, Bottom: 51.4, Right: 0.1, Top: 51.6},
		},
		{
			name:  "with spaces",
			input: "9.7, 52.3, 9.9, 52.4",
			want:  BoundingBox{Left: 9.7, Bottom: 52.3, Right: 9.9, Top: 52.4},
		},
		{
			name:  "antimeridian kept as given",
			input: "170,-10,-170,10",
			want:  BoundingBox{Left: 170, Bottom: -10, Right: -170, Top: 10},
		},
		{name: "too few values", input: "9.7,52.3,9.9", wantErr: true},
		{name: "too many values", input: "9.7,52.3,9.9,52.4,10.0", wantErr: true},
		{name: "invalid number", input: "abc,52.3,9.9,52.4", wantErr: true},
		{name: "not finite", input: "NaN,52.3,9.9,52.4", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoundingBox(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBoundingBox(%q) expected error, got nil", tt.input)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("ParseBoundingBox(%q) error %v is not ErrInvalidInput", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBoundingBox(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBoundingBox(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoundingBoxStringRoundTrip(t *testing.T) {
	b := BoundingBox{Left: -0.2, Bottom: 51.4, Right: 0.1, Top: 51.6}
	if got := b.String(); got != "-0.2,51.4,0.1,51.6" {
		t.Fatalf("String() = %q", got)
	}

	parsed, err := ParseBoundingBox(b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != b {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, b)
	}
}

func TestBoundingBoxCenter(t *testing.T) {
	b := BoundingBox{Left: 10, Bottom: 20, Right: 30, Top: 40}
	c := b.Center()
	if c.Lng != 20 || c.Lat != 30 {
		t.Fatalf("unexpected center: %+v", c)
	}

	wrapped := BoundingBox{Left: 170, Bottom: -10, Right: -170, Top: 10}
	if !wrapped.CrossesAntimeridian() {
		t.Fatal("expected antimeridian crossing")
	}
	c = wrapped.Center()
	if c.Lng != -180 || c.Lat != 0 {
		t.Fatalf("unexpected antimeridian center: %+v", c)
	}
}

func TestFromBound(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{9.7, 52.3}, Max: orb.Point{9.9, 52.4}}
	want := BoundingBox{Left: 9.7, Bottom: 52.3, Right: 9.9, Top: 52.4}
	if got := FromBound(bound); got != want {
		t.Fatalf("FromBound() = %+v, want %+v", got, want)
	}
}
