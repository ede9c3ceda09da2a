// Package directory holds the trainer catalog and the specialty lookup used
// to pair a training need with an available trainer.
package directory

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gforma/lead-assistant/internal/model"
)

// Directory is a read-only trainer catalog. It is safe for concurrent use.
type Directory struct {
	teachers []model.Teacher
}

// New creates a directory over a copy of the given catalog. Catalog order is
// significant: the first matching entry wins.
func New(teachers []model.Teacher) *Directory {
	cp := make([]model.Teacher, len(teachers))
	copy(cp, teachers)
	return &Directory{teachers: cp}
}

// Default returns the built-in catalog.
func Default() *Directory {
	return New(defaultCatalog)
}

// catalogFile is the YAML layout accepted by LoadFile.
type catalogFile struct {
	Teachers []model.Teacher `yaml:"teachers"`
}

// LoadFile reads a YAML catalog of the form:
//
//	teachers:
//	  - id: T-001
//	    specialty: negociación
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Teachers) == 0 {
		return nil, errors.New("catalog has no teachers")
	}
	for i, t := range f.Teachers {
		if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Specialty) == "" {
			return nil, fmt.Errorf("catalog entry %d: id and specialty are required", i)
		}
	}

	return New(f.Teachers), nil
}

// FindMatch returns the first teacher whose specialty is contained in the
// query, or that contains the query, ignoring case.
func (d *Directory) FindMatch(query string) (model.Teacher, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return model.Teacher{}, false
	}
	for _, t := range d.teachers {
		s := strings.ToLower(strings.TrimSpace(t.Specialty))
		if s == "" {
			continue
		}
		if strings.Contains(q, s) || strings.Contains(s, q) {
			return t, true
		}
	}
	return model.Teacher{}, false
}

// Len returns the catalog size.
func (d *Directory) Len() int {
	return len(d.teachers)
}

var defaultCatalog = []model.Teacher{
	{ID: "T-101", Specialty: "negociación"},
	{ID: "T-102", Specialty: "ventas"},
	{ID: "T-103", Specialty: "liderazgo"},
	{ID: "T-104", Specialty: "gestión del tiempo"},
	{ID: "T-105", Specialty: "python"},
	{ID: "T-106", Specialty: "excel"},
	{ID: "T-107", Specialty: "atención al cliente"},
	{ID: "T-108", Specialty: "comunicación"},
	{ID: "T-109", Specialty: "ciberseguridad"},
	{ID: "T-110", Specialty: "inglés"},
	{ID: "T-111", Specialty: "prevención de riesgos"},
	{ID: "T-112", Specialty: "marketing digital"},
}
