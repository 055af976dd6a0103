package charts

// Fixed colors for the two-slice pies.
const (
	primaryColor       = "#F68B1F"
	primaryHighlight   = "#F4690C"
	secondaryColor     = "#A9A9A9"
	secondaryHighlight = "#8F9CA8"
)

// DefaultPalette is cycled, in order, over content-type and country bars.
var DefaultPalette = []string{
	"#F68B1F", "#4D4D4D", "#5DA5DA", "#60BD68", "#F17CB0",
	"#B2912F", "#B276B2", "#9BFFE4", "#DECF3F", "#F15854",
}

var (
	allStyle = LineStyle{
		FillColor:            "rgba(76,255,0,0.2)",
		StrokeColor:          "rgba(63,211,0,1)",
		PointColor:           "rgba(50,168,0,1)",
		PointStrokeColor:     "#fff",
		PointHighlightFill:   "#fff",
		PointHighlightStroke: "rgba(220,220,220,1)",
	}
	cachedStyle = LineStyle{
		FillColor:            "rgba(246,139,31,0.2)",
		StrokeColor:          "rgba(234,101,0,1)",
		PointColor:           "rgba(232,171,127,1)",
		PointStrokeColor:     "#fff",
		PointHighlightFill:   "#fff",
		PointHighlightStroke: "rgba(220,220,220,1)",
	}
	uncachedStyle = LineStyle{
		FillColor:            "rgba(129,129,129,0.2)",
		StrokeColor:          "rgba(143,156,168,1)",
		PointColor:           "rgba(118,128,137,1)",
		PointStrokeColor:     "#fff",
		PointHighlightFill:   "#fff",
		PointHighlightStroke: "rgba(220,220,220,1)",
	}
)
