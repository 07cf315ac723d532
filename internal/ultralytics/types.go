package ultralytics

// Box holds the pixel-space corners of a detection. The coordinates are
// pointers so that a field the service omitted stays distinguishable from a
// legitimate zero.
type Box struct {
	X1 *float64 `json:"x1"`
	Y1 *float64 `json:"y1"`
	X2 *float64 `json:"x2"`
	Y2 *float64 `json:"y2"`
}

// Complete reports whether all four corners were present in the response.
func (b Box) Complete() bool {
	return b.X1 != nil && b.Y1 != nil && b.X2 != nil && b.Y2 != nil
}

// Detection is one labeled bounding box reported by the model.
type Detection struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// ImageResult groups the detections for a single input image.
type ImageResult struct {
	Results []Detection `json:"results"`
}

// InferenceResult is the top-level payload returned by the hosted endpoint.
// Raw keeps the undecoded body so callers can expose the model output
// verbatim.
type InferenceResult struct {
	Images []ImageResult `json:"images"`

	Raw []byte `json:"-"`
}
