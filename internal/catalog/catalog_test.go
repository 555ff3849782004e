package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/testutil"
)

const sampleYAML = `
panels:
  - slug: climate
    name: Climate
    indicators:
      - slug: ghg-scope-1
        name: Scope 1 emissions
        guidance: Direct emissions from owned sources.
      - slug: ghg-scope-2
        name: Scope 2 emissions
  - slug: water
    name: Water
    indicators:
      - slug: water-withdrawal
        name: Water withdrawal
demo_notifications:
  - key: welcome
    type: welcome
    title: Welcome, champion
    message: Pick a panel to start reviewing.
`

func TestParseYAMLAndJSON(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse yaml: %v", err)
	}
	if len(c.Panels()) != 2 || len(c.DemoNotifications()) != 1 {
		t.Fatalf("panels=%d demo=%d", len(c.Panels()), len(c.DemoNotifications()))
	}
	p, ok := c.Panel("climate")
	if !ok || len(p.Indicators) != 2 {
		t.Fatalf("climate panel = %+v, %v", p, ok)
	}

	j := `{"panels":[{"slug":"social","name":"Social","indicators":[{"slug":"pay-gap","name":"Pay gap"}]}]}`
	c, err = Parse([]byte(j))
	if err != nil {
		t.Fatalf("Parse json: %v", err)
	}
	if _, ok := c.Panel("social"); !ok {
		t.Fatal("social panel missing")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":               "  ",
		"missing name":        "panels:\n  - slug: a\n",
		"duplicate panel":     "panels:\n  - {slug: a, name: A}\n  - {slug: a, name: B}\n",
		"duplicate indicator": "panels:\n  - {slug: a, name: A, indicators: [{slug: x, name: X}]}\n  - {slug: b, name: B, indicators: [{slug: x, name: Y}]}\n",
		"demo without title":  "demo_notifications:\n  - key: k\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read catalog") {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Seed(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	var before models.Panel
	if err := db.First(&before, "slug = ?", "climate").Error; err != nil {
		t.Fatal(err)
	}

	edited := strings.Replace(sampleYAML, "name: Climate\n", "name: Climate & Energy\n", 1)
	c2, err := Parse([]byte(edited))
	if err != nil {
		t.Fatal(err)
	}
	if err := c2.Seed(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if n := testutil.Count(t, db, &models.Panel{}, ""); n != 2 {
		t.Fatalf("panels = %d, want 2", n)
	}
	if n := testutil.Count(t, db, &models.Indicator{}, ""); n != 3 {
		t.Fatalf("indicators = %d, want 3", n)
	}

	store := NewStore(db)
	panel, err := store.GetPanel(ctx, before.ID)
	if err != nil {
		t.Fatalf("GetPanel: %v", err)
	}
	if panel.Name != "Climate & Energy" {
		t.Fatalf("name = %q, want edited name", panel.Name)
	}
	if len(panel.Indicators) != 2 || panel.Indicators[0].Slug != "ghg-scope-1" {
		t.Fatalf("indicators = %+v", panel.Indicators)
	}
	for _, ind := range panel.Indicators {
		if ind.PanelID != before.ID {
			t.Fatalf("indicator %s points at %s, want %s", ind.Slug, ind.PanelID, before.ID)
		}
	}

	panels, err := store.ListPanels(ctx)
	if err != nil || len(panels) != 2 || panels[0].Slug != "climate" {
		t.Fatalf("ListPanels = %+v, %v", panels, err)
	}
}

func TestSeedRejectsIndicatorMove(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Seed(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	var climate models.Panel
	if err := db.First(&climate, "slug = ?", "climate").Error; err != nil {
		t.Fatal(err)
	}

	moved := New(File{Panels: []PanelDef{
		{Slug: "climate", Name: "Climate", Indicators: []IndicatorDef{{Slug: "ghg-scope-1", Name: "Scope 1 emissions"}}},
		{Slug: "water", Name: "Water", Indicators: []IndicatorDef{
			{Slug: "water-withdrawal", Name: "Water withdrawal"},
			{Slug: "ghg-scope-2", Name: "Scope 2 emissions"},
		}},
	}})
	err = moved.Seed(ctx, db)
	if err == nil || !strings.Contains(err.Error(), "ghg-scope-2") {
		t.Fatalf("seed with moved indicator err = %v, want rejection naming ghg-scope-2", err)
	}

	var ind models.Indicator
	if err := db.First(&ind, "slug = ?", "ghg-scope-2").Error; err != nil {
		t.Fatal(err)
	}
	if ind.PanelID != climate.ID {
		t.Fatalf("ghg-scope-2 panel = %s, want %s", ind.PanelID, climate.ID)
	}
}
