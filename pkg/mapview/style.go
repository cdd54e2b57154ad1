package mapview

// Style is the paint set for one sign point.
type Style struct {
	Fill         string
	Outline      string
	OutlineWidth float64
}

// Status fill colors. Draft doubles as the fallback so unknown status values
// still render.
const (
	colorDraft     = "#e74c3c"
	colorPublished = "#ac4bc1"
	colorRusak     = "#f29d00"
	colorHilang    = "#000000"

	outlineDark  = "#7a1c1c"
	outlineLight = "#ffffff"
)

// StyleForStatus maps a status to its paint set. Total over any input:
// unknown or absent status falls back to draft styling.
func StyleForStatus(status string) Style {
	switch status {
	case "published":
		return Style{Fill: colorPublished, Outline: outlineLight, OutlineWidth: 1}
	case "rusak":
		return Style{Fill: colorRusak, Outline: outlineDark, OutlineWidth: 2.5}
	case "hilang":
		return Style{Fill: colorHilang, Outline: outlineDark, OutlineWidth: 3}
	default:
		return Style{Fill: colorDraft, Outline: outlineLight, OutlineWidth: 1}
	}
}
