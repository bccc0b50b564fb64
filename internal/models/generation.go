package models

// Source is a web page the model grounded its answer on.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Generation is the text a model produced, with any grounding sources.
type Generation struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Detection labels.
const (
	LabelHuman = "Humano"
	LabelMixed = "Misto"
	LabelAI    = "IA"
)

// Detection is the model's estimate that a text was machine written.
type Detection struct {
	Score     float64 `json:"score"`
	Label     string  `json:"label"`
	Reasoning string  `json:"reasoning"`
}

// Normalize clamps Score to [0, 100] and fills Label from the score when the
// model left it empty.
func (d *Detection) Normalize() {
	switch {
	case d.Score < 0:
		d.Score = 0
	case d.Score > 100:
		d.Score = 100
	}
	if d.Label != "" {
		return
	}
	switch {
	case d.Score > 70:
		d.Label = LabelAI
	case d.Score > 30:
		d.Label = LabelMixed
	default:
		d.Label = LabelHuman
	}
}
