// Package prompts holds the instructions sent to the model. A default catalog is
// compiled in; a YAML file can override any of its fields.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RichardoC/humaniza/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog is the full prompt set. Request templates use {{text}} and {{mode}}
// placeholders.
type Catalog struct {
	System          string                 `yaml:"system"`
	Search          string                 `yaml:"search"`
	Detection       string                 `yaml:"detection"`
	DetectRequest   string                 `yaml:"detect_request"`
	OCR             string                 `yaml:"ocr"`
	HumanizeRequest string                 `yaml:"humanize_request"`
	Modes           map[models.Mode]string `yaml:"modes"`
}

// Default returns the compiled-in catalog.
func Default() *Catalog {
	var c Catalog
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		panic(fmt.Sprintf("prompts: bad embedded catalog: %v", err))
	}
	return &c
}

// Load returns the default catalog with the fields present in the YAML file at
// path laid over it. An empty path returns the default.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	c.merge(&override)
	return c, nil
}

func (c *Catalog) merge(o *Catalog) {
	for dst, src := range map[*string]string{
		&c.System:          o.System,
		&c.Search:          o.Search,
		&c.Detection:       o.Detection,
		&c.DetectRequest:   o.DetectRequest,
		&c.OCR:             o.OCR,
		&c.HumanizeRequest: o.HumanizeRequest,
	} {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	for mode, label := range o.Modes {
		if c.Modes == nil {
			c.Modes = map[models.Mode]string{}
		}
		c.Modes[mode] = label
	}
}

// ModeLabel is the instruction-facing name of a mode, falling back to the raw tag.
func (c *Catalog) ModeLabel(m models.Mode) string {
	if label, ok := c.Modes[m]; ok && label != "" {
		return label
	}
	return string(m)
}

// Humanize builds the user turn for a rewrite request.
func (c *Catalog) Humanize(text string, mode models.Mode) string {
	return render(c.HumanizeRequest, text, c.ModeLabel(mode))
}

// Detect builds the user turn for a detection request.
func (c *Catalog) Detect(text string) string {
	return render(c.DetectRequest, text, "")
}

func render(tmpl, text, mode string) string {
	// mode first so that a literal "{{mode}}" inside user text is left alone
	out := strings.ReplaceAll(tmpl, "{{mode}}", mode)
	return strings.Replace(out, "{{text}}", text, 1)
}
