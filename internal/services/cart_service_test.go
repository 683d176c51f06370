package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTwiceMergesIntoOneLine(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	p := e.products(t)[0]

	item, created, err := e.cart.Add(alice.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, item.Quantity)

	again, created, err := e.cart.Add(alice.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, item.ID, again.ID)
	assert.Equal(t, 2, again.Quantity)

	view, err := e.cart.View(alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 1, view.TotalItems)
}

func TestAddUnknownProduct(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.cart.Add(e.user(t, "alice").ID, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	ps := e.products(t)

	item, _, err := e.cart.Add(alice.ID, ps[0].ID)
	require.NoError(t, err)
	_, _, err = e.cart.Add(alice.ID, ps[1].ID)
	require.NoError(t, err)

	removed, err := e.cart.UpdateQuantity(alice.ID, item.ID, 0)
	require.NoError(t, err)
	assert.True(t, removed)

	view, err := e.cart.View(alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, ps[1].ID, view.Items[0].ProductID)
}

func TestUpdateQuantityBounds(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	item, _, err := e.cart.Add(alice.ID, e.products(t)[0].ID)
	require.NoError(t, err)

	_, err = e.cart.UpdateQuantity(alice.ID, item.ID, 100)
	assert.ErrorIs(t, err, ErrValidation)

	removed, err := e.cart.UpdateQuantity(alice.ID, item.ID, 5)
	require.NoError(t, err)
	assert.False(t, removed)

	view, err := e.cart.View(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestTotalsFollowCurrentPrices(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	staff := e.principal(t, "staff")
	ps := e.products(t)

	_, _, _ = e.cart.Add(alice.ID, ps[0].ID)
	_, _, _ = e.cart.Add(alice.ID, ps[0].ID)
	_, _, _ = e.cart.Add(alice.ID, ps[1].ID)

	view, err := e.cart.View(alice.ID)
	require.NoError(t, err)
	want := ps[0].Price.Mul(decimalOf(2)).Add(ps[1].Price)
	assert.True(t, want.Equal(view.TotalPrice), "got %s want %s", view.TotalPrice, want)

	_, err = e.catalog.Update(staff, ps[0].ID, ProductInput{Name: ps[0].Name, Price: "10.25", Category: ps[0].Category})
	require.NoError(t, err)

	view, err = e.cart.View(alice.ID)
	require.NoError(t, err)
	want = decimalOf(2).Mul(mustPrice(t, "10.25")).Add(ps[1].Price)
	assert.True(t, want.Equal(view.TotalPrice), "got %s want %s", view.TotalPrice, want)
}

func TestClearKeepsCartActive(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	ps := e.products(t)
	_, _, _ = e.cart.Add(alice.ID, ps[0].ID)
	_, _, _ = e.cart.Add(alice.ID, ps[1].ID)

	before, err := e.cart.View(alice.ID)
	require.NoError(t, err)

	n, err := e.cart.Clear(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	after, err := e.cart.View(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalItems)
	assert.True(t, after.TotalPrice.IsZero())
	assert.Equal(t, before.Cart.ID, after.Cart.ID)
	assert.True(t, after.Cart.IsActive)
}

func TestClearWithoutCart(t *testing.T) {
	e := newEnv(t)
	n, err := e.cart.Clear(e.user(t, "bob").ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCrossUserRemoveIsNotFound(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	bobs, _, err := e.cart.Add(bob.ID, e.products(t)[0].ID)
	require.NoError(t, err)

	err = e.cart.Remove(alice.ID, bobs.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)

	_, err = e.cart.UpdateQuantity(alice.ID, bobs.ID, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := e.cart.View(bob.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestRemoveMissingItem(t *testing.T) {
	e := newEnv(t)
	assert.ErrorIs(t, e.cart.Remove(e.user(t, "alice").ID, 4242), ErrNotFound)
}

func TestCountDoesNotCreateCart(t *testing.T) {
	e := newEnv(t)
	bob := e.user(t, "bob")

	n, err := e.cart.Count(bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	var carts int
	require.NoError(t, e.db.Get(&carts, `SELECT COUNT(*) FROM carts WHERE owner_id = ?`, bob.ID))
	assert.Zero(t, carts)

	_, _, _ = e.cart.Add(bob.ID, e.products(t)[0].ID)
	n, err = e.cart.Count(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOneActiveCartPerOwner(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	for i := 0; i < 3; i++ {
		_, err := e.cart.View(alice.ID)
		require.NoError(t, err)
	}
	var carts int
	require.NoError(t, e.db.Get(&carts, `SELECT COUNT(*) FROM carts WHERE owner_id = ? AND is_active`, alice.ID))
	assert.Equal(t, 1, carts)
}

func TestConcurrentAddsConverge(t *testing.T) {
	e := newFileEnv(t)
	alice := e.user(t, "alice")
	p := e.products(t)[0]

	const n = 20
	type result struct {
		created bool
		err     error
	}
	results := make(chan result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := e.cart.Add(alice.ID, p.ID)
			results <- result{created, err}
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for r := range results {
		require.NoError(t, r.err)
		if r.created {
			created++
		}
	}
	assert.Equal(t, 1, created)

	view, err := e.cart.View(alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, n, view.Items[0].Quantity)

	var carts int
	require.NoError(t, e.db.Get(&carts, `SELECT COUNT(*) FROM carts WHERE owner_id = ? AND is_active`, alice.ID))
	assert.Equal(t, 1, carts)
}
