package catalog

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/arglo/storefront/internal/domain"
)

// section is a top-level shelf and its share of generated products.
type section struct {
	Name   string
	Weight float64
	Types  []string
}

var sections = []section{
	{Name: "Bolsos", Weight: 0.25, Types: []string{"Bolso", "Mochila", "Bandolera", "Cartera", "Tote"}},
	{Name: "Accesorios", Weight: 0.25, Types: []string{"Billetera", "Cinturón", "Llavero", "Tarjetero", "Estuche"}},
	{Name: "Calzado", Weight: 0.15, Types: []string{"Sandalia", "Bota", "Mocasín", "Alpargata"}},
	{Name: "Hogar", Weight: 0.20, Types: []string{"Taza", "Cojín", "Canasta", "Portavelas", "Individual"}},
	{Name: "Joyería", Weight: 0.15, Types: []string{"Collar", "Aretes", "Pulsera", "Anillo"}},
}

var (
	finishes = []string{
		"artesanal", "de cuero", "de lona", "tejido a mano", "bordado",
		"de madera", "de cerámica", "trenzado", "reciclado", "clásico",
	}
	palette = []string{
		"Negro", "Café", "Azul", "Rojo", "Verde", "Gris", "Beige", "Mostaza", "Vino", "Crema",
	}
	materials = []string{"cuero", "lona", "algodón", "madera", "cerámica", "yute", "plata"}

	descriptions = []string{
		"%s hecho por artesanos locales con materiales de primera calidad.",
		"%s de diseño atemporal, ideal para el día a día o para regalar.",
		"%s con acabados cuidados a mano. Cada pieza es única.",
		"%s resistente y liviano, pensado para durar muchos años.",
	}
)

// Generate builds n products with ids 1..n. The output depends only on seed,
// so re-runs produce the same catalog.
func Generate(n int, seed int64) []domain.Product {
	rng := rand.New(rand.NewSource(seed))
	products := make([]domain.Product, 0, n)

	// Products per section, the last one takes the rounding remainder.
	counts := make([]int, len(sections))
	remaining := n
	for i, sec := range sections {
		if i == len(sections)-1 {
			counts[i] = remaining
			break
		}
		counts[i] = int(float64(n) * sec.Weight)
		remaining -= counts[i]
	}

	id := 1
	for i, sec := range sections {
		for j := 0; j < counts[i]; j++ {
			products = append(products, generateOne(rng, id, sec, j))
			id++
		}
	}
	return products
}

func generateOne(rng *rand.Rand, id int, sec section, j int) domain.Product {
	kind := sec.Types[j%len(sec.Types)]
	finish := finishes[rng.Intn(len(finishes))]
	title := fmt.Sprintf("%s %s", kind, finish)

	// Prices from 5.00 to 120.00, on .50 steps.
	price := 5 + math.Round(rng.Float64()*230)/2

	p := domain.Product{
		ID:          id,
		Title:       title,
		Price:       price,
		Rating:      1 + rng.Intn(5),
		Reviews:     rng.Intn(200),
		Categories:  []string{sec.Name},
		Tags:        []string{materials[rng.Intn(len(materials))]},
		Description: fmt.Sprintf(descriptions[rng.Intn(len(descriptions))], title),
		Images: []string{
			fmt.Sprintf("https://img.arglo.example/products/%d-1.jpg", id),
			fmt.Sprintf("https://img.arglo.example/products/%d-2.jpg", id),
		},
	}

	// About one in four products is on sale.
	if rng.Intn(4) == 0 {
		old := domain.RoundCents(price * (1.15 + rng.Float64()*0.35))
		p.OldPrice = &old
	}

	// Two thirds of the products come in colors.
	if rng.Intn(3) > 0 {
		start := rng.Intn(len(palette))
		variants := 1 + rng.Intn(3)
		for k := 0; k < variants; k++ {
			p.Colors = append(p.Colors, palette[(start+k)%len(palette)])
		}
	}
	return p
}
