package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arglo/storefront/internal/domain"
	apperrors "github.com/arglo/storefront/pkg/errors"
	"github.com/arglo/storefront/pkg/validator"
)

// document is the on-disk layout shared by every format.
type document struct {
	Products []domain.Product `json:"products" toml:"products" yaml:"products"`
}

// LoadFile reads a catalog from a .json, .toml, .yaml or .yml file.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	products, err := Decode(filepath.Ext(path), raw)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return Build(products)
}

// Decode parses raw catalog bytes for the given file extension. JSON may be
// either a bare array of products or a {"products": [...]} document.
func Decode(ext string, raw []byte) ([]domain.Product, error) {
	var doc document
	switch strings.ToLower(ext) {
	case ".json":
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &doc.Products); err != nil {
				return nil, err
			}
			break
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported catalog format %q", ext))
	}
	return doc.Products, nil
}

// Encode renders products in the format of the given file extension, using
// the same document layout Decode reads.
func Encode(ext string, products []domain.Product) ([]byte, error) {
	doc := document{Products: products}
	switch strings.ToLower(ext) {
	case ".json":
		return json.MarshalIndent(doc, "", "  ")
	case ".toml":
		return toml.Marshal(doc)
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported catalog format %q", ext))
	}
}

// Build sanitizes and validates products, then constructs the catalog.
// Products without images are rejected since every view needs a default image.
func Build(products []domain.Product) (*Catalog, error) {
	policy := bluemonday.StrictPolicy()
	clean := make([]domain.Product, 0, len(products))
	for _, p := range products {
		p = sanitize(policy, p)
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		clean = append(clean, p)
	}
	return New(clean)
}

func sanitize(policy *bluemonday.Policy, p domain.Product) domain.Product {
	strip := func(s string) string {
		return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
	}
	p.Title = strip(p.Title)
	p.Description = strip(p.Description)
	p.Categories = stripAll(strip, p.Categories)
	p.Tags = stripAll(strip, p.Tags)
	p.Colors = stripAll(strip, p.Colors)
	return p
}

func stripAll(strip func(string) string, in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strip(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type productRules struct {
	ID     int      `json:"id" validate:"gte=0"`
	Title  string   `json:"title" validate:"required"`
	Price  float64  `json:"price" validate:"gte=0"`
	Rating int      `json:"rating" validate:"gte=0,lte=5"`
	Images []string `json:"images" validate:"min=1,dive,required"`
}

func validateProduct(p domain.Product) error {
	return validator.Validate(productRules{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Rating: p.Rating,
		Images: p.Images,
	})
}
