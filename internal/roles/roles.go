// Package roles holds the catalog of target roles a batch can be screened against.
package roles

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-ranker/internal/screening"
)

var builtin = []screening.Role{
	{Name: "Software Developer", Skills: []string{"Python", "JavaScript", "SQL", "Machine Learning", "Data Structures", "Algorithms"}},
	{Name: "Data Scientist", Skills: []string{"Python", "R", "SQL", "Machine Learning", "Data Analysis", "Statistics", "Deep Learning"}},
	{Name: "Web Developer", Skills: []string{"HTML", "CSS", "JavaScript", "React", "Node.js", "SQL", "API Development"}},
	{Name: "AI Engineer", Skills: []string{"Python", "Machine Learning", "Deep Learning", "Neural Networks", "TensorFlow", "PyTorch"}},
	{Name: "Product Manager", Skills: []string{"Product Management", "Agile", "Roadmap", "Stakeholder Management", "User Research"}},
}

// Catalog is an ordered set of roles with unique names.
type Catalog struct {
	roles []screening.Role
}

// Builtin returns the catalog of predefined roles.
func Builtin() *Catalog {
	c := &Catalog{}
	for _, r := range builtin {
		c.roles = append(c.roles, clone(r))
	}
	return c
}

// New returns the builtin catalog extended with configured roles. A configured
// role replaces a builtin one of the same name in place; new names are appended.
// Roles without a name or without skills are skipped with a warning.
func New(configured []screening.Role, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}

	c := Builtin()
	for i, r := range configured {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			log.Warn("skipping configured role without name", zap.Int("index", i))
			continue
		}
		if err := r.Validate(); err != nil {
			log.Warn("skipping configured role", zap.String("role", r.Name), zap.Error(err))
			continue
		}
		if idx := c.index(r.Name); idx >= 0 {
			c.roles[idx] = clone(r)
			continue
		}
		c.roles = append(c.roles, clone(r))
	}
	return c
}

// Decode converts raw configuration (for example viper.Get("roles")) into roles.
// Skills may be given as a list or as a comma separated string.
func Decode(raw any) ([]screening.Role, error) {
	if raw == nil {
		return nil, nil
	}

	var out []screening.Role
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	for i := range out {
		skills := make([]string, 0, len(out[i].Skills))
		for _, s := range out[i].Skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		out[i].Skills = skills
	}
	return out, nil
}

// Find returns the role with the given name, ignoring case.
func (c *Catalog) Find(name string) (screening.Role, bool) {
	if idx := c.index(name); idx >= 0 {
		return clone(c.roles[idx]), true
	}
	return screening.Role{}, false
}

// Names returns role names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.roles))
	for _, r := range c.roles {
		names = append(names, r.Name)
	}
	return names
}

// Roles returns a copy of all roles in catalog order.
func (c *Catalog) Roles() []screening.Role {
	out := make([]screening.Role, 0, len(c.roles))
	for _, r := range c.roles {
		out = append(out, clone(r))
	}
	return out
}

// YAML renders the catalog as a YAML list of roles.
func (c *Catalog) YAML() ([]byte, error) {
	return yaml.Marshal(c.roles)
}

func (c *Catalog) index(name string) int {
	name = strings.TrimSpace(name)
	for i, r := range c.roles {
		if strings.EqualFold(r.Name, name) {
			return i
		}
	}
	return -1
}

func clone(r screening.Role) screening.Role {
	return screening.Role{Name: r.Name, Skills: append([]string(nil), r.Skills...)}
}
