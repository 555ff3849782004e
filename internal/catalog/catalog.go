// Package catalog holds the reference data of a review season: panels,
// their indicators, and the demo notifications shown to new champions.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type IndicatorDef struct {
	Slug     string `yaml:"slug" json:"slug"`
	Name     string `yaml:"name" json:"name"`
	Guidance string `yaml:"guidance" json:"guidance"`
}

type PanelDef struct {
	Slug        string         `yaml:"slug" json:"slug"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Indicators  []IndicatorDef `yaml:"indicators" json:"indicators"`
}

type DemoNotificationDef struct {
	Key     string `yaml:"key" json:"key"`
	Type    string `yaml:"type" json:"type"`
	Title   string `yaml:"title" json:"title"`
	Message string `yaml:"message" json:"message"`
}

type File struct {
	Panels            []PanelDef            `yaml:"panels" json:"panels"`
	DemoNotifications []DemoNotificationDef `yaml:"demo_notifications" json:"demo_notifications"`
}

// Catalog is the parsed, validated reference data.
type Catalog struct {
	mu    sync.RWMutex
	file  File
	panel map[string]*PanelDef
}

// Parse decodes a YAML document. JSON documents are valid YAML and parse
// through the same path.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("catalog: document is empty")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return New(f), nil
}

func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func New(f File) *Catalog {
	c := &Catalog{file: f, panel: make(map[string]*PanelDef, len(f.Panels))}
	for i := range c.file.Panels {
		c.panel[c.file.Panels[i].Slug] = &c.file.Panels[i]
	}
	return c
}

// Validate checks slugs are present and unique across the whole file.
func (f File) Validate() error {
	seen := make(map[string]bool)
	for _, p := range f.Panels {
		if strings.TrimSpace(p.Slug) == "" || strings.TrimSpace(p.Name) == "" {
			return errors.New("catalog: panel slug and name are required")
		}
		if seen["panel:"+p.Slug] {
			return fmt.Errorf("catalog: duplicate panel slug %q", p.Slug)
		}
		seen["panel:"+p.Slug] = true
		for _, ind := range p.Indicators {
			if strings.TrimSpace(ind.Slug) == "" || strings.TrimSpace(ind.Name) == "" {
				return fmt.Errorf("catalog: panel %q has an indicator without slug or name", p.Slug)
			}
			if seen["indicator:"+ind.Slug] {
				return fmt.Errorf("catalog: duplicate indicator slug %q", ind.Slug)
			}
			seen["indicator:"+ind.Slug] = true
		}
	}
	for _, d := range f.DemoNotifications {
		if d.Key == "" || d.Title == "" {
			return errors.New("catalog: demo notification key and title are required")
		}
		if seen["demo:"+d.Key] {
			return fmt.Errorf("catalog: duplicate demo notification key %q", d.Key)
		}
		seen["demo:"+d.Key] = true
	}
	return nil
}

func (c *Catalog) Panels() []PanelDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]PanelDef, len(c.file.Panels))
	copy(out, c.file.Panels)
	return out
}

func (c *Catalog) Panel(slug string) (PanelDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.panel[slug]
	if !ok {
		return PanelDef{}, false
	}
	return *p, true
}

func (c *Catalog) DemoNotifications() []DemoNotificationDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]DemoNotificationDef, len(c.file.DemoNotifications))
	copy(out, c.file.DemoNotifications)
	return out
}
