// Package catalog holds the professions a mock interview can be run for.
package catalog

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultProfessions = []string{
	"Software Engineer",
	"Frontend Developer",
	"Backend Developer",
	"DevOps Engineer",
	"Data Scientist",
	"Data Analyst",
	"Product Manager",
	"UI/UX Designer",
	"QA Engineer",
	"Cybersecurity Analyst",
	"Cloud Architect",
	"Mobile Developer",
	"Project Manager",
	"Business Analyst",
	"Digital Marketing Specialist",
	"Accountant",
	"Human Resources Specialist",
	"Sales Representative",
	"Nurse",
	"Teacher",
}

type Catalog struct {
	names []string
	index map[string]string // lower-case -> canonical
}

type file struct {
	Professions []string `yaml:"professions"`
}

func New(names []string) *Catalog {
	c := &Catalog{index: map[string]string{}}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, dup := c.index[key]; dup {
			continue
		}
		c.index[key] = n
		c.names = append(c.names, n)
	}
	return c
}

func Default() *Catalog { return New(defaultProfessions) }

// Load reads a YAML catalog; an empty path yields the built-in list.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	c := New(f.Professions)
	if len(c.names) == 0 {
		return nil, errors.New("profession catalog is empty: " + path)
	}
	return c, nil
}

// Lookup returns the canonical spelling of name.
func (c *Catalog) Lookup(name string) (string, bool) {
	v, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

func (c *Catalog) List() []string {
	return append([]string(nil), c.names...)
}
