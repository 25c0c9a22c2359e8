// Package catalog exposes the pre-baked merge texture catalog. The
// catalog itself is a build-time artifact; at runtime it is a read-only
// table mapping particle counts and geometry archetypes to opaque
// texture ids with a few baked variants each.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/pyre/systems"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// TextureID is an opaque key the render backend resolves to baked art.
type TextureID string

// FallbackID is returned on any catalog miss. A missing decorative
// texture is a degraded visual, never a frame abort.
const FallbackID TextureID = "scattered_v0"

// Archetype is one named geometry formation with baked variants.
type Archetype struct {
	Name     string `yaml:"name"`
	Variants int    `yaml:"variants"`
}

// countFamily lists the archetypes baked for one member count.
type countFamily struct {
	Count      int         `yaml:"count"`
	Archetypes []Archetype `yaml:"archetypes"`
}

// catalogFile is the on-disk catalog layout.
type catalogFile struct {
	Singles      []Archetype   `yaml:"singles"`
	PairVariants int           `yaml:"pair_variants"`
	Groups       []countFamily `yaml:"groups"`
	Extras       []Archetype   `yaml:"extras"`
}

// Catalog selects texture ids for singles and clusters. The random
// source is injected so selection is deterministic under test.
type Catalog struct {
	rng *rand.Rand

	singles      []Archetype
	pairVariants int
	groups       map[int][]Archetype
	maxCount     int
	extras       []Archetype

	scatterChance float32
}

// New loads the embedded default catalog.
func New(rng *rand.Rand, scatterChance float32) *Catalog {
	c, err := Load(defaultCatalogYAML, rng, scatterChance)
	if err != nil {
		// The embedded catalog is validated by tests; a parse failure
		// here is a build defect.
		panic(fmt.Sprintf("catalog: embedded catalog invalid: %v", err))
	}
	return c
}

// Load parses a catalog definition.
func Load(data []byte, rng *rand.Rand, scatterChance float32) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(file.Groups) == 0 {
		return nil, fmt.Errorf("catalog defines no group families")
	}

	c := &Catalog{
		rng:           rng,
		singles:       file.Singles,
		pairVariants:  file.PairVariants,
		groups:        make(map[int][]Archetype, len(file.Groups)),
		extras:        file.Extras,
		scatterChance: scatterChance,
	}
	if c.pairVariants < 1 {
		c.pairVariants = 1
	}
	for _, fam := range file.Groups {
		c.groups[fam.Count] = fam.Archetypes
		if fam.Count > c.maxCount {
			c.maxCount = fam.Count
		}
	}

	return c, nil
}

// SelectSingle maps a spawn-time size class and variant to a texture id.
// Nothing cluster-specific goes into singles; the class and variant are
// rolled once at spawn so the sprite never flickers between frames.
func (c *Catalog) SelectSingle(sizeClass, variant uint8) TextureID {
	if len(c.singles) == 0 {
		return FallbackID
	}
	arch := c.singles[int(sizeClass)%len(c.singles)]
	return TextureID(fmt.Sprintf("single_%s_v%d", arch.Name, int(variant)%max(arch.Variants, 1)))
}

// SelectGroup maps a cluster's geometry descriptor to a texture id.
// Pairs classify deterministically by orientation and distance bucket;
// larger counts draw uniformly from the count's archetype family, with
// a small chance of substituting a scattered/asymmetric archetype for
// variety. Unknown counts fall back to the nearest baked family.
func (c *Catalog) SelectGroup(d systems.Descriptor) TextureID {
	if d.Count < 2 {
		return FallbackID
	}

	if d.Count == 2 {
		return c.selectPair(d)
	}

	// Occasional substitution keeps repeated formations from reading
	// as baked art.
	if len(c.extras) > 0 && c.rng.Float32() < c.scatterChance {
		arch := c.extras[c.rng.Intn(len(c.extras))]
		return TextureID(fmt.Sprintf("%s_v%d", arch.Name, c.rng.Intn(max(arch.Variants, 1))))
	}

	count := d.Count
	if count > c.maxCount {
		count = c.maxCount
	}
	family, ok := c.groups[count]
	for !ok && count > 2 {
		count--
		family, ok = c.groups[count]
	}
	if !ok || len(family) == 0 {
		return FallbackID
	}
	return c.pick(count, family)
}

// selectPair classifies a two-particle cluster.
func (c *Catalog) selectPair(d systems.Descriptor) TextureID {
	family := d.Orientation.String()
	if d.Orientation == systems.OrientDiagonal {
		// Diagonals are angle-bucketed into the two slope directions
		if d.AngleDeg < 90 {
			family = "diag_desc"
		} else {
			family = "diag_asc"
		}
	}
	return TextureID(fmt.Sprintf("pair_%s_%s_v%d", family, d.Range, c.rng.Intn(c.pairVariants)))
}

// pick draws one archetype uniformly and one variant within it.
func (c *Catalog) pick(count int, family []Archetype) TextureID {
	arch := family[c.rng.Intn(len(family))]
	return TextureID(fmt.Sprintf("group%d_%s_v%d", count, arch.Name, c.rng.Intn(max(arch.Variants, 1))))
}
