package curriculum

import (
	"fmt"
	"slices"
)

// LGS subject names as stored by clients.
const (
	Turkish  = "Türkçe"
	Math     = "Matematik"
	Science  = "Fen Bilgisi"
	Social   = "Sosyal Bilgiler"
	Religion = "Din Kültürü ve Ahlak Bilgisi"
	English  = "İngilizce"
)

// Question counts per subject section. Core subjects carry 20 questions, the rest 10.
const (
	CoreQuestions  = 20
	MinorQuestions = 10
)

// Subject is static reference data for one LGS subject.
type Subject struct {
	Name         string   `json:"name" yaml:"name"`
	Key          string   `json:"key" yaml:"key"` // column prefix in flat exam documents, e.g. "turkce"
	MaxQuestions int      `json:"max_questions" yaml:"max_questions"`
	Weight       float64  `json:"weight" yaml:"weight"`
	Topics       []string `json:"topics" yaml:"topics"`
}

// Catalog is an ordered, read-only subject table.
type Catalog struct {
	subjects []Subject
	byName   map[string]int
}

// NewCatalog validates subjects and builds a lookup table.
func NewCatalog(subjects []Subject) (*Catalog, error) {
	c := &Catalog{
		subjects: make([]Subject, 0, len(subjects)),
		byName:   make(map[string]int, len(subjects)),
	}
	keys := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		if s.Name == "" {
			return nil, fmt.Errorf("subject name required")
		}
		if s.Key == "" {
			return nil, fmt.Errorf("subject %q: key required", s.Name)
		}
		if s.MaxQuestions <= 0 {
			return nil, fmt.Errorf("subject %q: max questions must be positive", s.Name)
		}
		if s.Weight <= 0 {
			return nil, fmt.Errorf("subject %q: weight must be positive", s.Name)
		}
		if _, dup := c.byName[s.Name]; dup {
			return nil, fmt.Errorf("subject %q declared twice", s.Name)
		}
		if _, dup := keys[s.Key]; dup {
			return nil, fmt.Errorf("subject %q: key %q already used", s.Name, s.Key)
		}
		keys[s.Key] = struct{}{}
		c.byName[s.Name] = len(c.subjects)
		c.subjects = append(c.subjects, s)
	}
	return c, nil
}

// LGS returns the six-subject LGS catalog.
func LGS() *Catalog {
	c, err := NewCatalog(lgsSubjects())
	if err != nil {
		panic(err)
	}
	return c
}

// Subjects returns the subjects in curriculum order.
func (c *Catalog) Subjects() []Subject {
	return slices.Clone(c.subjects)
}

// Names returns subject names in curriculum order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.subjects))
	for i, s := range c.subjects {
		names[i] = s.Name
	}
	return names
}

// Lookup finds a subject by name.
func (c *Catalog) Lookup(name string) (Subject, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Subject{}, false
	}
	return c.subjects[i], true
}

// Meta returns the subject table keyed by name.
func (c *Catalog) Meta() map[string]Subject {
	out := make(map[string]Subject, len(c.subjects))
	for _, s := range c.subjects {
		out[s.Name] = s
	}
	return out
}

// MaxQuestions returns the section size of a subject.
func (c *Catalog) MaxQuestions(name string) (int, bool) {
	s, ok := c.Lookup(name)
	if !ok {
		return 0, false
	}
	return s.MaxQuestions, true
}

// Topics returns the topic list of a subject, or nil when unknown.
func (c *Catalog) Topics(name string) []string {
	s, ok := c.Lookup(name)
	if !ok {
		return nil
	}
	return slices.Clone(s.Topics)
}

// HasTopic reports whether topic belongs to the subject.
func (c *Catalog) HasTopic(subject, topic string) bool {
	s, ok := c.Lookup(subject)
	if !ok {
		return false
	}
	return slices.Contains(s.Topics, topic)
}
