package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/arglo/storefront/internal/domain"
)

// MinQueryLength is the shortest trimmed query that produces results.
const MinQueryLength = 2

type searchDoc struct {
	id          int
	title       string
	categories  string
	tags        string
	description string
}

func newSearchDoc(p domain.Product) searchDoc {
	return searchDoc{
		id:          p.ID,
		title:       fold(p.Title),
		categories:  fold(strings.Join(p.Categories, " > ")),
		tags:        fold(strings.Join(p.Tags, ", ")),
		description: fold(p.Description),
	}
}

func (d searchDoc) matches(term string) bool {
	return strings.Contains(d.title, term) ||
		strings.Contains(d.categories, term) ||
		strings.Contains(d.tags, term) ||
		strings.Contains(d.description, term)
}

// fold lowercases s and strips diacritics so "Camión" matches "camion".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Search returns the products whose title, categories, tags or description
// contain query, ignoring case and accents. Queries shorter than
// MinQueryLength after trimming yield no results.
func (c *Catalog) Search(query string) []domain.Product {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return []domain.Product{}
	}

	term := fold(query)
	out := make([]domain.Product, 0)
	for _, doc := range c.index {
		if doc.matches(term) {
			out = append(out, c.byID[doc.id])
		}
	}
	return out
}
