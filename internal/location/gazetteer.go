// Package location resolves Costa Rican administrative names (provincia,
// cantón, distrito) to their canonical spelling and cadastral codes.
package location

import (
	_ "embed"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/remates-cli/internal/textnorm"
)

//go:embed costa_rica.yaml
var embeddedData []byte

// District is the smallest administrative unit.
type District struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Canton groups districts within a province.
type Canton struct {
	Code      string     `yaml:"code"`
	Name      string     `yaml:"name"`
	Aliases   []string   `yaml:"aliases"`
	Districts []District `yaml:"districts"`
}

// Province is one of the seven provinces.
type Province struct {
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Cantons []Canton `yaml:"cantons"`
}

type dataFile struct {
	Provinces []Province `yaml:"provinces"`
}

type cantonKey struct {
	key    string
	canton *Canton
}

// Gazetteer is a read-mostly lookup table built once on first use. It is
// safe for concurrent use.
type Gazetteer struct {
	load func() ([]byte, error)

	once      sync.Once
	err       error
	provinces map[string]*Province
	// cantons holds, per province code, the folded keys sorted longest first.
	cantons map[string][]cantonKey
	// districts is keyed by province code, canton code, folded name.
	districts map[string]map[string]map[string]District
}

// New returns a gazetteer over the embedded province and canton table.
func New() *Gazetteer {
	return &Gazetteer{load: func() ([]byte, error) { return embeddedData, nil }}
}

// NewFromFile returns a gazetteer that reads its table from path on first
// use. An empty path falls back to the embedded table.
func NewFromFile(path string) *Gazetteer {
	if path == "" {
		return New()
	}
	return &Gazetteer{load: func() ([]byte, error) {
		b, err := os.ReadFile(path)
		return b, eris.Wrapf(err, "location: read %s", path)
	}}
}

func (g *Gazetteer) build() {
	g.once.Do(func() {
		raw, err := g.load()
		if err != nil {
			g.err = err
			return
		}
		var f dataFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			g.err = eris.Wrap(err, "location: parse gazetteer")
			return
		}

		g.provinces = make(map[string]*Province, len(f.Provinces))
		g.cantons = make(map[string][]cantonKey, len(f.Provinces))
		g.districts = make(map[string]map[string]map[string]District, len(f.Provinces))

		for i := range f.Provinces {
			p := &f.Provinces[i]
			g.provinces[textnorm.Fold(p.Name)] = p

			var keys []cantonKey
			byCanton := make(map[string]map[string]District, len(p.Cantons))
			for j := range p.Cantons {
				c := &p.Cantons[j]
				keys = append(keys, cantonKey{key: textnorm.Fold(c.Name), canton: c})
				for _, alias := range c.Aliases {
					keys = append(keys, cantonKey{key: textnorm.Fold(alias), canton: c})
				}
				if len(c.Districts) > 0 {
					ds := make(map[string]District, len(c.Districts))
					for _, d := range c.Districts {
						ds[textnorm.Fold(d.Name)] = d
					}
					byCanton[c.Code] = ds
				}
			}
			sort.SliceStable(keys, func(a, b int) bool { return len(keys[a].key) > len(keys[b].key) })
			g.cantons[p.Code] = keys
			g.districts[p.Code] = byCanton
		}

		zap.L().Debug("location: gazetteer loaded", zap.Int("provinces", len(g.provinces)))
	})
}

// Err reports a failure to load the table. A gazetteer that failed to load
// resolves nothing.
func (g *Gazetteer) Err() error {
	g.build()
	return g.err
}

// Province resolves a province name, ignoring case, accents and a leading
// "provincia de".
func (g *Gazetteer) Province(name string) (Province, bool) {
	g.build()
	key := strings.TrimPrefix(textnorm.Collapse(textnorm.Fold(name)), "provincia de ")
	p, ok := g.provinces[key]
	if !ok {
		return Province{}, false
	}
	return *p, true
}

// Canton resolves a canton name within a province. An exact match (name or
// alias) wins; otherwise the longest name contained in, or containing, the
// input is used.
func (g *Gazetteer) Canton(provinceCode, name string) (Canton, bool) {
	g.build()
	key := textnorm.Collapse(textnorm.Fold(name))
	if key == "" {
		return Canton{}, false
	}
	keys := g.cantons[provinceCode]
	for _, k := range keys {
		if k.key == key {
			return *k.canton, true
		}
	}
	if len(key) < 4 {
		return Canton{}, false
	}
	for _, k := range keys {
		if strings.Contains(k.key, key) || strings.Contains(key, k.key) {
			return *k.canton, true
		}
	}
	return Canton{}, false
}

// District resolves a district within a canton. Only exact folded matches
// count.
func (g *Gazetteer) District(provinceCode, cantonCode, name string) (District, bool) {
	g.build()
	d, ok := g.districts[provinceCode][cantonCode][textnorm.Collapse(textnorm.Fold(name))]
	return d, ok
}

// Place is the resolved location of a notice. Empty names did not resolve.
type Place struct {
	Province string
	Canton   string
	District string
	// Code is the cadastral code as far as it resolved: "1", "103" or
	// "10301".
	Code string
}

// Resolve resolves the three administrative names top-down. Resolution
// stops at the first level that does not match.
func (g *Gazetteer) Resolve(province, canton, district string) Place {
	var pl Place
	p, ok := g.Province(province)
	if !ok {
		return pl
	}
	pl.Province, pl.Code = p.Name, p.Code

	c, ok := g.Canton(p.Code, canton)
	if !ok {
		return pl
	}
	pl.Canton = c.Name
	pl.Code += twoDigits(c.Code)

	d, ok := g.District(p.Code, c.Code, district)
	if !ok {
		return pl
	}
	pl.District = d.Name
	pl.Code += twoDigits(d.Code)
	return pl
}

// twoDigits keeps the last two digits of a code ("10301" → "01", "3" → "03").
func twoDigits(code string) string {
	if len(code) >= 2 {
		return code[len(code)-2:]
	}
	return strings.Repeat("0", 2-len(code)) + code
}
