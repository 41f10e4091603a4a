package curriculum

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Subjects []Subject `yaml:"subjects"`
}

// ParseYAML builds a catalog from a document of the form
//
//	subjects:
//	  - name: Türkçe
//	    key: turkce
//	    max_questions: 20
//	    weight: 4
//	    topics: [Paragraf, Sözcükte Anlam]
func ParseYAML(content []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if len(f.Subjects) == 0 {
		return nil, fmt.Errorf("catalog has no subjects")
	}
	return NewCatalog(f.Subjects)
}

// Load reads a catalog file, or returns the built-in LGS catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LGS(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum %s: %w", path, err)
	}
	c, err := ParseYAML(content)
	if err != nil {
		return nil, fmt.Errorf("curriculum %s: %w", path, err)
	}
	return c, nil
}

// MarshalYAML renders the catalog in the format ParseYAML reads.
func (c *Catalog) MarshalYAML() (any, error) {
	return catalogFile{Subjects: c.Subjects()}, nil
}
