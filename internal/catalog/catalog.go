// Package catalog loads skill definitions from a versioned TOML file and
// serves them to the session orchestrator.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"

	"github.com/midolearning/village/internal/progression"
)

// SupportedMajor is the only catalog file major version understood.
const SupportedMajor = "v1"

// Catalog is an immutable set of validated skill definitions.
type Catalog struct {
	version string
	skills  map[string]progression.Definition
	order   []string
}

// New validates defs and builds a Catalog. Duplicate ids are rejected.
func New(version string, defs []progression.Definition) (*Catalog, error) {
	v, err := checkVersion(version)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		version: v,
		skills:  make(map[string]progression.Definition, len(defs)),
		order:   make([]string, 0, len(defs)),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, &progression.ConfigurationError{SkillID: d.ID, Err: err}
		}
		if _, dup := c.skills[d.ID]; dup {
			return nil, &progression.ConfigurationError{SkillID: d.ID, Err: errors.New("duplicate skill id")}
		}
		d.Stages = append([]progression.Stage(nil), d.Stages...)
		c.skills[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// Version returns the canonical semantic version of the catalog.
func (c *Catalog) Version() string {
	return c.version
}

// Lookup returns the definition for id. Unknown and inactive skills are
// configuration errors.
func (c *Catalog) Lookup(id string) (progression.Definition, error) {
	d, ok := c.skills[id]
	if !ok {
		return progression.Definition{}, &progression.ConfigurationError{SkillID: id, Err: progression.ErrUnknownSkill}
	}
	if !d.Active() {
		return progression.Definition{}, &progression.ConfigurationError{SkillID: id, Err: progression.ErrSkillUnavailable}
	}
	return clone(d), nil
}

// All returns every definition in file order, including inactive ones.
func (c *Catalog) All() []progression.Definition {
	out := make([]progression.Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.skills[id]))
	}
	return out
}

// IDs returns the sorted skill ids.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}

func clone(d progression.Definition) progression.Definition {
	d.Stages = append([]progression.Stage(nil), d.Stages...)
	return d
}

// Load reads a catalog from path. A missing file yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	c, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Builtin(), nil
	}
	return c, err
}

// LoadFile reads a catalog from path, which must exist.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog TOML.
func Parse(data string) (*Catalog, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("unknown key %q", undec[0].String())
	}
	if err := validate.Struct(f); err != nil {
		return nil, fieldError(err)
	}

	defs := make([]progression.Definition, 0, len(f.Skills))
	for _, s := range f.Skills {
		defs = append(defs, s.definition())
	}
	return New(f.Version, defs)
}

func (s SkillConfig) definition() progression.Definition {
	d := progression.Definition{
		ID:                     s.ID,
		Name:                   s.Name,
		Icon:                   s.Icon,
		Description:            s.Description,
		Category:               s.Category,
		Status:                 progression.Status(s.Status),
		BaseExperience:         s.BaseExperience,
		TimeBonusPerMinute:     s.TimeBonusPerMinute,
		AccuracyBonusThreshold: s.AccuracyBonusThreshold,
		AccuracyBonusAmount:    s.AccuracyBonusAmount,
		StreakBonusThreshold:   s.StreakBonusThreshold,
		StreakBonusAmount:      s.StreakBonusAmount,
		MinPlayTimeMinutes:     s.MinPlayTimeMinutes,
		RewardRange:            progression.RewardRange{Min: s.RewardRange.Min, Max: s.RewardRange.Max},
		DailyRewardLimit:       s.DailyRewardLimit,
		CooldownMinutes:        s.CooldownMinutes,
	}
	for _, st := range s.Stages {
		d.Stages = append(d.Stages, progression.Stage{
			ID:                   st.ID,
			Name:                 st.Name,
			Difficulty:           st.Difficulty,
			ExpMultiplier:        st.ExpMultiplier,
			RewardMultiplier:     st.RewardMultiplier,
			UnlockCharacterLevel: st.UnlockCharacterLevel,
			UnlockSkillLevel:     st.UnlockSkillLevel,
		})
	}
	return d
}

// fieldError turns the first validator failure into a ValidationError keyed
// by the TOML path.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	reason := fmt.Sprintf("failed %q constraint", fe.Tag())
	if fe.Param() != "" {
		reason = fmt.Sprintf("failed %q constraint (%s)", fe.Tag(), fe.Param())
	}
	return &progression.ValidationError{Field: field, Reason: reason}
}

func checkVersion(v string) (string, error) {
	if v == "" {
		return "", &progression.ValidationError{Field: "version", Reason: "must be set"}
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", &progression.ValidationError{Field: "version", Reason: fmt.Sprintf("%q is not a semantic version", v)}
	}
	if semver.Major(v) != SupportedMajor {
		return "", &progression.ValidationError{Field: "version", Reason: fmt.Sprintf("unsupported major version %s", semver.Major(v))}
	}
	return semver.Canonical(v), nil
}

// DefaultPath resolves the catalog file path in priority order:
// 1. VILLAGE_CATALOG environment variable
// 2. $XDG_CONFIG_HOME/village/skills.toml
// 3. ~/.config/village/skills.toml
func DefaultPath() (string, error) {
	if p := os.Getenv("VILLAGE_CATALOG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "village", "skills.toml"), nil
}
