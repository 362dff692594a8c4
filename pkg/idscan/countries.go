package idscan

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/notAvailable404/openID/pkg/ocr"
)

//go:embed countries.yaml
var countriesYAML []byte

// Country is one ISO 3166-1 record.
type Country struct {
	Alpha2 string `yaml:"alpha_2"`
	Alpha3 string `yaml:"alpha_3"`
	Name   string `yaml:"name"`

	upperName string
}

var (
	countriesOnce sync.Once
	countries     []Country
	countriesErr  error
)

// Countries returns the reference list in its canonical (alpha-3) order.
// The list is parsed once and shared read-only.
func Countries() ([]Country, error) {
	countriesOnce.Do(func() {
		countries, countriesErr = parseCountries(countriesYAML)
	})
	return countries, countriesErr
}

func parseCountries(data []byte) ([]Country, error) {
	var doc struct {
		Countries []Country `yaml:"countries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse country list: %w", err)
	}
	if len(doc.Countries) == 0 {
		return nil, fmt.Errorf("parse country list: empty")
	}
	for i := range doc.Countries {
		c := &doc.Countries[i]
		if len(c.Alpha3) != 3 || c.Name == "" {
			return nil, fmt.Errorf("parse country list: bad record %d (%q)", i, c.Alpha3)
		}
		c.upperName = ocr.Upper(c.Name)
	}
	return doc.Countries, nil
}
