package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/okian/eeat/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// fileCatalog is the on-disk YAML shape of a catalog.
type fileCatalog struct {
	Version string      `yaml:"version"`
	Groups  []fileGroup `yaml:"groups"`
}

type fileGroup struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Scope       string       `yaml:"scope"`
	Source      string       `yaml:"source"`
	Signals     []fileSignal `yaml:"signals"`
}

type fileSignal struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Concept     string   `yaml:"concept"`
	Weight      int      `yaml:"weight"`
	Intents     []string `yaml:"intents"`
	Manual      bool     `yaml:"manual"`
	Key         string   `yaml:"key"`
	Remediation string   `yaml:"remediation"`
}

// Parse reads a YAML catalog. Unknown fields are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fc fileCatalog
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %w", ErrInvalidCatalog, err)
	}
	if len(fc.Groups) == 0 {
		return nil, fmt.Errorf("%w: no groups", ErrInvalidCatalog)
	}

	groups := make([]Group, 0, len(fc.Groups))
	for _, fg := range fc.Groups {
		g := Group{
			ID:          fg.ID,
			Name:        fg.Name,
			Description: fg.Description,
			Scope:       Scope(fg.Scope),
			Source:      fg.Source,
			Signals:     make([]Signal, 0, len(fg.Signals)),
		}
		for _, fs := range fg.Signals {
			intents := make([]model.Intent, 0, len(fs.Intents))
			for _, in := range fs.Intents {
				intents = append(intents, model.Intent(in))
			}
			g.Signals = append(g.Signals, Signal{
				ID:          fs.ID,
				Label:       fs.Label,
				Concept:     model.Concept(fs.Concept),
				Weight:      fs.Weight,
				Intents:     intents,
				ManualCheck: fs.Manual,
				Key:         fs.Key,
				Remediation: fs.Remediation,
			})
		}
		groups = append(groups, g)
	}
	return New(fc.Version, groups...)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Load returns the catalog at path, or Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Marshal renders c in the YAML shape accepted by Parse.
func Marshal(c *Catalog) ([]byte, error) {
	fc := fileCatalog{Version: c.version}
	for _, g := range c.groups {
		fg := fileGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Scope:       string(g.Scope),
			Source:      g.Source,
		}
		for _, s := range g.Signals {
			intents := make([]string, 0, len(s.Intents))
			for _, in := range s.Intents {
				intents = append(intents, string(in))
			}
			fg.Signals = append(fg.Signals, fileSignal{
				ID:          s.ID,
				Label:       s.Label,
				Concept:     string(s.Concept),
				Weight:      s.Weight,
				Intents:     intents,
				Manual:      s.ManualCheck,
				Key:         s.Key,
				Remediation: s.Remediation,
			})
		}
		fc.Groups = append(fc.Groups, fg)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}
