package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind   = errors.New("unknown catalog kind")
	ErrUnknownOption = errors.New("unknown catalog option")
	ErrInvalidDoc    = errors.New("invalid catalog document")
)

//go:embed catalog.yaml
var defaultDoc []byte

//go:embed schema.json
var schemaDoc []byte

type Kind string

const (
	KindAppLanguages      Kind = "app_languages"
	KindLanguages         Kind = "languages"
	KindCraftCategories   Kind = "craft_categories"
	KindExperienceLevels  Kind = "experience_levels"
	KindProductTypes      Kind = "product_types"
	KindPriceTiers        Kind = "price_tiers"
	KindPlatforms         Kind = "platforms"
	KindPrimaryGoals      Kind = "primary_goals"
	KindAdditionalGoals   Kind = "additional_goals"
	KindProductCategories Kind = "product_categories"
	KindCarouselSlides    Kind = "carousel_slides"
)

var kindOrder = []Kind{
	KindAppLanguages,
	KindLanguages,
	KindCraftCategories,
	KindExperienceLevels,
	KindProductTypes,
	KindPriceTiers,
	KindPlatforms,
	KindPrimaryGoals,
	KindAdditionalGoals,
	KindProductCategories,
	KindCarouselSlides,
}

// Option is one selectable entry. Only ID and Name are always present.
type Option struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	NativeName  string   `yaml:"native_name,omitempty" json:"native_name,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Color       string   `yaml:"color,omitempty" json:"color,omitempty"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
	Range       string   `yaml:"range,omitempty" json:"range,omitempty"`
	Value       string   `yaml:"value,omitempty" json:"value,omitempty"`
	Popular     bool     `yaml:"popular,omitempty" json:"popular,omitempty"`
	Features    []string `yaml:"features,omitempty" json:"features,omitempty"`
}

type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

type Catalog struct {
	options map[Kind][]Option
	index   map[Kind]map[string]int
}

// Load parses the embedded catalog document.
func Load() (*Catalog, error) {
	return Parse(defaultDoc)
}

// MustLoad is Load for package level wiring and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse validates doc against the catalog schema before decoding it.
func Parse(doc []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDoc, err)
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDoc),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDoc, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDoc, strings.Join(msgs, "; "))
	}

	var decoded map[Kind][]Option
	if err := yaml.Unmarshal(doc, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDoc, err)
	}

	c := &Catalog{
		options: make(map[Kind][]Option, len(decoded)),
		index:   make(map[Kind]map[string]int, len(decoded)),
	}
	for kind, opts := range decoded {
		idx := make(map[string]int, len(opts))
		for i, o := range opts {
			if _, dup := idx[o.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate id %q in %s", ErrInvalidDoc, o.ID, kind)
			}
			idx[o.ID] = i
		}
		c.options[kind] = opts
		c.index[kind] = idx
	}
	return c, nil
}

func Kinds() []Kind {
	out := make([]Kind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kindOrder {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Options returns a copy of the options of kind in document order.
func (c *Catalog) Options(kind Kind) ([]Option, error) {
	if c == nil {
		return nil, ErrUnknownKind
	}
	opts, ok := c.options[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	out := make([]Option, len(opts))
	copy(out, opts)
	return out, nil
}

func (c *Catalog) Option(kind Kind, id string) (Option, error) {
	if c == nil {
		return Option{}, ErrUnknownKind
	}
	idx, ok := c.index[kind]
	if !ok {
		return Option{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	i, ok := idx[id]
	if !ok {
		return Option{}, fmt.Errorf("%w: %s %q", ErrUnknownOption, kind, id)
	}
	return c.options[kind][i], nil
}

func (c *Catalog) Has(kind Kind, id string) bool {
	_, err := c.Option(kind, id)
	return err == nil
}

func (c *Catalog) Count(kind Kind) int {
	if c == nil {
		return 0
	}
	return len(c.options[kind])
}

// Language resolves an identity-step language code.
func (c *Catalog) Language(code string) (Language, error) {
	return c.language(KindLanguages, code)
}

// AppLanguage resolves a code from the app language picker.
func (c *Catalog) AppLanguage(code string) (Language, error) {
	return c.language(KindAppLanguages, code)
}

func (c *Catalog) language(kind Kind, code string) (Language, error) {
	o, err := c.Option(kind, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		return Language{}, err
	}
	return Language{Code: o.ID, Name: o.Name, NativeName: o.NativeName}, nil
}
