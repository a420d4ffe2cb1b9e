package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"fandomia/internal/domain"
)

func TestCartLine_SameKey(t *testing.T) {
	a := domain.CartLine{ProductID: 1}
	b := domain.CartLine{ProductID: 1, VariantID: domain.Int64(2)}
	c := domain.CartLine{ProductID: 1, VariantID: domain.Int64(2), Quantity: 9}

	assert.True(t, a.SameKey(domain.CartLine{ProductID: 1, Quantity: 4}))
	assert.False(t, a.SameKey(b))
	assert.False(t, b.SameKey(a))
	assert.True(t, b.SameKey(c))
	assert.False(t, b.SameKey(domain.CartLine{ProductID: 2, VariantID: domain.Int64(2)}))
}

func TestMergeLines_KeepsFirstSeenOrder(t *testing.T) {
	in := []domain.CartLine{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, VariantID: domain.Int64(5), Quantity: 2},
		{ProductID: 3, Quantity: 4},
	}
	got := domain.MergeLines(in)
	assert.Equal(t, []domain.CartLine{
		{ProductID: 3, Quantity: 5},
		{ProductID: 1, VariantID: domain.Int64(5), Quantity: 2},
	}, got)
}

func TestQuantityBounds(t *testing.T) {
	big := domain.CartLine{ProductID: 1, Quantity: math.MaxInt}.Normalize()
	assert.Equal(t, domain.MaxQuantity, big.Quantity)
	assert.Equal(t, domain.MaxQuantity, domain.AddQuantity(domain.MaxQuantity, 1))
	assert.Equal(t, 5, domain.AddQuantity(2, 3))

	merged := domain.MergeLines([]domain.CartLine{
		{ProductID: 1, Quantity: domain.MaxQuantity},
		{ProductID: 1, Quantity: domain.MaxQuantity},
	})
	assert.Equal(t, domain.MaxQuantity, merged[0].Quantity)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, domain.RoleClient, domain.ParseRole("client"))
	assert.Equal(t, domain.RoleUnknown, domain.ParseRole(" client "))
	assert.Equal(t, domain.RoleUnknown, domain.ParseRole("client\n"))
	assert.Equal(t, domain.RoleOwner, domain.ParseRole("owner"))
	assert.Equal(t, domain.RoleUnknown, domain.ParseRole("Client"))
	assert.Equal(t, domain.RoleUnknown, domain.ParseRole("customer"))
	assert.Equal(t, domain.RoleUnknown, domain.ParseRole(""))
	assert.Equal(t, "unknown", domain.RoleUnknown.String())
	assert.True(t, domain.RoleAdmin.Staff())
	assert.False(t, domain.RoleClient.Staff())
}

func TestVariantLabel(t *testing.T) {
	assert.Equal(t, "M / Negro", domain.Variant{Size: "M", Color: "Negro"}.Label())
	assert.Equal(t, "Única", domain.Variant{}.Label())
}
