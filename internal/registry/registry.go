// Package registry defines the catalog of program fields the scraper
// extracts. The catalog ships with built-in definitions and can be
// extended or overridden from a YAML file.
package registry

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Kind describes a field's value shape.
type Kind string

const (
	KindText   Kind = "text"
	KindList   Kind = "list"
	KindNumber Kind = "number"
)

// Field describes one extractable program field.
type Field struct {
	Key                 string   `yaml:"key"`
	Label               string   `yaml:"label"`
	Kind                Kind     `yaml:"kind"`
	Aliases             []string `yaml:"aliases,omitempty"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold,omitempty"`
	Strategies          []string `yaml:"strategies,omitempty"` // preferred order before any learning
}

// Registry is the field catalog plus global defaults.
type Registry struct {
	Defaults DefaultConfig    `yaml:"defaults"`
	Fields   map[string]Field `yaml:"fields"`

	aliases map[string]string
}

// DefaultConfig holds catalog-wide fallbacks.
type DefaultConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// Default returns the built-in catalog of residential program fields.
func Default() *Registry {
	r := &Registry{
		Defaults: DefaultConfig{ConfidenceThreshold: 0.7},
		Fields: map[string]Field{
			"ages": {
				Key: "ages", Label: "Ages Served", Kind: KindText,
				Aliases:    []string{"age_range", "ages_served"},
				Strategies: []string{"regex-range", "dom-label"},
			},
			"insurance": {
				Key: "insurance", Label: "Insurance Accepted", Kind: KindList,
				Aliases:    []string{"payers", "insurance_accepted"},
				Strategies: []string{"dom-label", "keyword-scan"},
			},
			"therapies": {
				Key: "therapies", Label: "Therapies Offered", Kind: KindList,
				Aliases:    []string{"modalities", "treatment_modalities"},
				Strategies: []string{"keyword-scan", "dom-label"},
			},
			"phone": {
				Key: "phone", Label: "Phone", Kind: KindText,
				Aliases:    []string{"phone_number"},
				Strategies: []string{"regex-phone", "tel-link"},
			},
			"capacity": {
				Key: "capacity", Label: "Bed Capacity", Kind: KindNumber,
				Aliases:    []string{"beds", "bed_count"},
				Strategies: []string{"regex-number", "dom-label"},
			},
			"levels_of_care": {
				Key: "levels_of_care", Label: "Levels of Care", Kind: KindList,
				Aliases:    []string{"programs", "care_levels"},
				Strategies: []string{"keyword-scan"},
			},
		},
	}
	r.index()
	return r
}

// Load reads a catalog from a YAML file, layered over the built-in
// defaults: listed fields replace built-ins of the same key, new fields
// are added, and unlisted built-ins survive.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}

	// The YAML has a top-level "registry" key
	var wrapper struct {
		Registry Registry `yaml:"registry"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "registry: parse")
	}

	r := Default()
	if wrapper.Registry.Defaults.ConfidenceThreshold > 0 {
		r.Defaults = wrapper.Registry.Defaults
	}
	for key, f := range wrapper.Registry.Fields {
		if f.Key == "" {
			f.Key = key
		}
		if f.Kind == "" {
			f.Kind = KindText
		}
		r.Fields[key] = f
	}
	r.index()
	return r, nil
}

func (r *Registry) index() {
	r.aliases = make(map[string]string)
	for key, f := range r.Fields {
		r.aliases[key] = key
		for _, a := range f.Aliases {
			r.aliases[a] = key
		}
	}
}

// Resolve maps a field name or alias to its canonical key.
func (r *Registry) Resolve(name string) (string, bool) {
	key, ok := r.aliases[name]
	return key, ok
}

// Get returns a field's definition with the default threshold applied.
func (r *Registry) Get(name string) (Field, bool) {
	key, ok := r.aliases[name]
	if !ok {
		return Field{}, false
	}
	f := r.Fields[key]
	if f.ConfidenceThreshold == 0 {
		f.ConfidenceThreshold = r.Defaults.ConfidenceThreshold
	}
	return f, true
}

// Keys returns every canonical field key, sorted.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.Fields))
	for key := range r.Fields {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
