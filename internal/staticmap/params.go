package staticmap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/MeKo-Tech/mapstatic/internal/types"
	"github.com/MeKo-Tech/mapstatic/internal/viewport"
	"github.com/go-playground/validator/v10"
)

// Params are the construction options of a Map. Pointer fields distinguish "unset" from zero.
//
// Either BBox (with Width and Height) or Lat, Lng and Zoom must be given, never both.
// Width and Height are capped at 10000 pixels.
type Params struct {
	Width    int      `json:"width,omitempty" validate:"min=0,max=10000"`
	Height   int      `json:"height,omitempty" validate:"min=0,max=10000"`
	BBox     string   `json:"bbox,omitempty"`
	Lat      *float64 `json:"lat,omitempty" validate:"omitnil,gte=-90,lte=90"`
	Lng      *float64 `json:"lng,omitempty" validate:"omitnil,gte=-180,lte=180"`
	Zoom     *int     `json:"zoom,omitempty"`
	Provider string   `json:"provider,omitempty" validate:"max=2048"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report option names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field-level constraints. Mode rules are applied by Spec.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s is not a valid %s", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", types.ErrInvalidInput, strings.Join(msgs, "; "))
}

// Spec validates the parameters and selects the viewport mode.
func (p Params) Spec() (viewport.Spec, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var center []string
	if p.Lat != nil {
		center = append(center, "lat")
	}
	if p.Lng != nil {
		center = append(center, "lng")
	}
	if p.Zoom != nil {
		center = append(center, "zoom")
	}

	if p.BBox != "" {
		if len(center) > 0 {
			return nil, fmt.Errorf("%w: bbox cannot be combined with %s", types.ErrInvalidInput, strings.Join(center, ", "))
		}
		if p.Width == 0 || p.Height == 0 {
			return nil, fmt.Errorf("%w: bbox requires width and height", types.ErrInvalidInput)
		}
		bbox, err := types.ParseBoundingBox(p.BBox)
		if err != nil {
			return nil, err
		}
		return viewport.BBoxSpec{BBox: bbox, Width: p.Width, Height: p.Height}, nil
	}

	if len(center) == 0 {
		return nil, fmt.Errorf("%w: either bbox or lat, lng and zoom are required", types.ErrInvalidInput)
	}
	var missing []string
	if p.Lat == nil {
		missing = append(missing, "lat")
	}
	if p.Lng == nil {
		missing = append(missing, "lng")
	}
	if p.Zoom == nil {
		missing = append(missing, "zoom")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", types.ErrInvalidInput, strings.Join(missing, ", "))
	}

	return viewport.CenterSpec{
		Center: types.GeoPoint{Lng: *p.Lng, Lat: *p.Lat},
		Zoom:   *p.Zoom,
		Width:  p.Width,
		Height: p.Height,
	}, nil
}
