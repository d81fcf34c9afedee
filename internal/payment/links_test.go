package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-gifting/internal/payment"
)

func testLinks() map[int]string {
	return map[int]string{
		500:  "https://pay.example.com/t/tier500",
		1000: "https://pay.example.com/t/tier1000",
		5000: "https://pay.example.com/t/tier5000",
	}
}

func TestNewLinkTable_Validation(t *testing.T) {
	_, err := payment.NewLinkTable(nil, 500)
	assert.Error(t, err)

	_, err = payment.NewLinkTable(testLinks(), 300)
	assert.Error(t, err)

	table, err := payment.NewLinkTable(testLinks(), 500)
	assert.NoError(t, err)
	assert.NotNil(t, table)
}

func TestResolveLink(t *testing.T) {
	table, err := payment.NewLinkTable(testLinks(), 500)
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/t/tier1000", table.ResolveLink(1000))

	// Amounts without an exact tier fall back to the default tier's link.
	assert.Equal(t, "https://pay.example.com/t/tier500", table.ResolveLink(777))
	assert.Equal(t, "https://pay.example.com/t/tier500", table.ResolveLink(0))
}

func TestTiersSorted(t *testing.T) {
	table, err := payment.NewLinkTable(testLinks(), 500)
	require.NoError(t, err)

	assert.Equal(t, []int{500, 1000, 5000}, table.Tiers())
}
