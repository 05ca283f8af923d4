package state

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/internal/storage"
	"github.com/arglo/storefront/pkg/logger"
)

var testKeys = Keys{Cart: "arglo_cart", Wishlist: "arglo_wishlist"}

func newTestState(t *testing.T) (*AppState, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	return New(storage.NewPersistent(mem, logger.Discard()), testKeys, logger.Discard()), mem
}

func product(id int, price float64) domain.Product {
	return domain.Product{
		ID:     id,
		Title:  "Producto",
		Price:  price,
		Images: []string{"https://img.example.com/p.jpg"},
		Colors: []string{"Azul", "Rojo"},
	}
}

func storedCart(t *testing.T, mem *storage.MemoryStore) domain.Cart {
	t.Helper()
	raw, err := mem.Get(context.Background(), testKeys.Cart)
	require.NoError(t, err)
	var cart domain.Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &cart))
	return cart
}

func storedWishlist(t *testing.T, mem *storage.MemoryStore) domain.Wishlist {
	t.Helper()
	raw, err := mem.Get(context.Background(), testKeys.Wishlist)
	require.NoError(t, err)
	var w domain.Wishlist
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	return w
}

func assertCartCount(t *testing.T, s *AppState) {
	t.Helper()
	assert.Equal(t, s.Cart().ItemCount(), s.CartCount())
}

func TestAddToCart_SameColorMerges(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	p := product(7, 10.50)

	s.AddToCart(ctx, p, 2, "Azul")
	line := s.AddToCart(ctx, p, 1, "Azul")

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.InDelta(t, 31.50, cart[0].LineTotal(), 0.001)
	assert.Equal(t, 3, s.CartCount())
	assert.Equal(t, cart, storedCart(t, mem))
}

func TestAddToCart_QuantitiesSum(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	p := product(1, 5)

	want := 0
	for _, q := range []int{1, 4, 2, 9, 1} {
		s.AddToCart(ctx, p, q, "Rojo")
		want += q
		assertCartCount(t, s)
	}

	require.Len(t, s.Cart(), 1)
	assert.Equal(t, want, s.Cart()[0].Quantity)
}

func TestAddToCart_DistinctColorsGetOwnLines(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	p := product(3, 20)

	s.AddToCart(ctx, p, 1, "Azul")
	s.AddToCart(ctx, p, 1, "Rojo")
	s.AddToCart(ctx, p, 1, "Azul")

	cart := s.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, "Azul", cart[0].Color)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, "Rojo", cart[1].Color)
	assert.Equal(t, 3, s.CartCount())
}

func TestAddToCart_SnapshotsProduct(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	p := product(4, 12)

	s.AddToCart(ctx, p, 1, "Azul")
	p.Price = 99
	p.Title = "Renamed"
	s.AddToCart(ctx, p, 1, "Azul")

	cart := s.Cart()
	assert.Equal(t, 12.0, cart[0].Price)
	assert.Equal(t, "Producto", cart[0].Title)
	assert.Equal(t, "https://img.example.com/p.jpg", cart[0].Image)
}

func TestRemoveFromCart(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	s.AddToCart(ctx, product(1, 1), 2, "Azul")
	s.AddToCart(ctx, product(2, 1), 3, "Azul")

	assert.True(t, s.RemoveFromCart(ctx, 0))

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].ProductID)
	assert.Equal(t, 3, s.CartCount())
	assert.Equal(t, cart, storedCart(t, mem))
}

func TestRemoveFromCart_OutOfRangeIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	s.AddToCart(ctx, product(1, 1), 2, "Azul")

	assert.False(t, s.RemoveFromCart(ctx, 1))
	assert.False(t, s.RemoveFromCart(ctx, -1))
	assert.Len(t, s.Cart(), 1)
	assert.Equal(t, 2, s.CartCount())
}

func TestAdjustQuantity_NeverBelowOne(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	s.AddToCart(ctx, product(1, 1), 2, "Azul")

	assert.True(t, s.AdjustQuantity(ctx, 0, -1))
	assert.False(t, s.AdjustQuantity(ctx, 0, -1))
	assert.False(t, s.AdjustQuantity(ctx, 0, -1))
	assert.Equal(t, 1, s.Cart()[0].Quantity)

	assert.True(t, s.AdjustQuantity(ctx, 0, -1+5))
	assert.Equal(t, 5, s.Cart()[0].Quantity)
	assert.Equal(t, 5, s.CartCount())
	assert.Equal(t, 5, storedCart(t, mem)[0].Quantity)

	assert.True(t, s.AdjustQuantity(ctx, 0, -100))
	assert.Equal(t, 1, s.Cart()[0].Quantity)
}

func TestAdjustQuantity_OutOfRangeIsNoop(t *testing.T) {
	s, _ := newTestState(t)
	assert.False(t, s.AdjustQuantity(context.Background(), 0, 1))
	assert.Equal(t, 0, s.CartCount())
}

func TestToggleWishlist_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	p := product(9, 15)
	s.ToggleWishlist(ctx, product(1, 1), "Rojo")
	before := s.Wishlist()

	assert.True(t, s.ToggleWishlist(ctx, p, "Azul"))
	assert.True(t, s.InWishlist(9, "Azul"))
	assert.False(t, s.InWishlist(9, "Rojo"))
	assert.Equal(t, 2, s.WishlistCount())

	assert.False(t, s.ToggleWishlist(ctx, p, "Azul"))
	assert.Equal(t, before, s.Wishlist())
	assert.Equal(t, 1, s.WishlistCount())
	assert.Equal(t, before, storedWishlist(t, mem))
}

func TestToggleWishlist_ColorIsPartOfIdentity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	p := product(9, 15)

	s.ToggleWishlist(ctx, p, "Azul")
	s.ToggleWishlist(ctx, p, "Rojo")

	assert.Equal(t, 2, s.WishlistCount())
}

func TestRemoveFromWishlist(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	s.ToggleWishlist(ctx, product(1, 1), "Azul")
	s.ToggleWishlist(ctx, product(2, 2), "Azul")

	entry, ok := s.RemoveFromWishlist(ctx, 0)
	require.True(t, ok)
	assert.Equal(t, 1, entry.ProductID)
	assert.Equal(t, 1, s.WishlistCount())

	_, ok = s.RemoveFromWishlist(ctx, 5)
	assert.False(t, ok)
	assert.Equal(t, 1, s.WishlistCount())
}

func TestLoadFromStorage(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	require.NoError(t, mem.Set(ctx, testKeys.Cart,
		`[{"id":7,"title":"Bolso","price":10.5,"quantity":3,"color":"Azul","image":"a.jpg"}]`))
	require.NoError(t, mem.Set(ctx, testKeys.Wishlist,
		`[{"id":2,"title":"Taza","price":4,"color":"Default","image":"b.jpg"}]`))

	s.LoadFromStorage(ctx)

	assert.Equal(t, 3, s.CartCount())
	assert.Equal(t, 1, s.WishlistCount())
	assert.InDelta(t, 31.5, s.CartTotal(), 0.001)
	assert.True(t, s.InWishlist(2, "Default"))
}

func TestLoadFromStorage_CorruptCartResetsBoth(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	require.NoError(t, mem.Set(ctx, testKeys.Cart, "not json"))
	require.NoError(t, mem.Set(ctx, testKeys.Wishlist,
		`[{"id":2,"title":"Taza","price":4,"color":"Default","image":"b.jpg"}]`))

	s.LoadFromStorage(ctx)

	assert.Empty(t, s.Cart())
	assert.Empty(t, s.Wishlist())
	assert.Equal(t, 0, s.CartCount())
	assert.Equal(t, 0, s.WishlistCount())
}

func TestLoadFromStorage_CorruptWishlistResetsBoth(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	require.NoError(t, mem.Set(ctx, testKeys.Cart,
		`[{"id":7,"title":"Bolso","price":10.5,"quantity":3,"color":"Azul","image":"a.jpg"}]`))
	require.NoError(t, mem.Set(ctx, testKeys.Wishlist, `{"broken":`))

	s.LoadFromStorage(ctx)

	assert.Empty(t, s.Cart())
	assert.Empty(t, s.Wishlist())
}

func TestLoadFromStorage_MissingAndNull(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	require.NoError(t, mem.Set(ctx, testKeys.Cart, "null"))

	s.LoadFromStorage(ctx)

	assert.NotNil(t, s.Cart())
	assert.Empty(t, s.Cart())
	assert.Empty(t, s.Wishlist())
}

func TestLoadFromStorage_ReplacesInMemoryState(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	s.AddToCart(ctx, product(1, 1), 1, "Azul")
	require.NoError(t, mem.Remove(ctx, testKeys.Cart))

	s.LoadFromStorage(ctx)

	assert.Empty(t, s.Cart())
	assert.Equal(t, 0, s.CartCount())
}

func TestResetStorage(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)
	s.AddToCart(ctx, product(1, 1), 2, "Azul")
	s.ToggleWishlist(ctx, product(1, 1), "Azul")

	s.ResetStorage(ctx)

	assert.Empty(t, s.Cart())
	assert.Empty(t, s.Wishlist())
	assert.Equal(t, 0, s.CartCount())
	assert.Equal(t, 0, s.WishlistCount())
	_, err := mem.Get(ctx, testKeys.Cart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mem.Get(ctx, testKeys.Wishlist)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMutationsSurviveStorageFailure(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore(storage.WithQuota(16))
	s := New(storage.NewPersistent(mem, logger.Discard()), testKeys, logger.Discard())

	s.AddToCart(ctx, product(1, 10), 2, "Azul")

	assert.Equal(t, 2, s.CartCount())
	_, err := mem.Get(ctx, testKeys.Cart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestApplyRemote_DoesNotPersist(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestState(t)

	s.ApplyRemoteCart(domain.Cart{{ProductID: 1, Quantity: 4, Color: "Azul"}})
	s.ApplyRemoteWishlist(domain.Wishlist{{ProductID: 2, Color: "Rojo"}})

	assert.Equal(t, 4, s.CartCount())
	assert.Equal(t, 1, s.WishlistCount())
	_, err := mem.Get(ctx, testKeys.Cart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t)
	s.AddToCart(ctx, product(1, 1), 1, "Azul")

	cart := s.Cart()
	cart[0].Quantity = 50

	assert.Equal(t, 1, s.Cart()[0].Quantity)
}

func TestViewFlags(t *testing.T) {
	s, _ := newTestState(t)

	s.SetCurrentProduct(12)
	s.SetSearchActive(true)

	assert.Equal(t, 12, s.CurrentProduct())
	assert.True(t, s.SearchActive())
}

func TestSnapshot_CopiesBoth(t *testing.T) {
	s, _ := newTestState(t)
	ctx := context.Background()
	s.AddToCart(ctx, product(1, 3), 2, "Azul")
	s.ToggleWishlist(ctx, product(1, 3), "Azul")

	cart, wishlist := s.Snapshot()
	require.Len(t, cart, 1)
	require.Len(t, wishlist, 1)

	cart[0].Quantity = 99
	assert.Equal(t, 2, s.Cart()[0].Quantity)
}
