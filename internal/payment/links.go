package payment

import (
	"fmt"
	"sort"
)

// LinkTable resolves a gift amount tier to its pre-provisioned external
// payment URL. The table is static: no dynamic amount or message is ever
// encoded into a link.
type LinkTable struct {
	links       map[int]string
	tiers       []int
	defaultTier int
}

// NewLinkTable builds a resolver over the configured tier -> URL map.
// defaultTier must be present in the map; amounts without an exact tier fall
// back to it.
func NewLinkTable(links map[int]string, defaultTier int) (*LinkTable, error) {
	if len(links) == 0 {
		return nil, fmt.Errorf("payment link table is empty")
	}
	if _, ok := links[defaultTier]; !ok {
		return nil, fmt.Errorf("default tier %d has no payment link", defaultTier)
	}

	tiers := make([]int, 0, len(links))
	for tier := range links {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)

	copied := make(map[int]string, len(links))
	for tier, url := range links {
		copied[tier] = url
	}

	return &LinkTable{links: copied, tiers: tiers, defaultTier: defaultTier}, nil
}

// ResolveLink returns the payment URL for the amount's tier, falling back to
// the default tier's link for amounts outside the table.
func (t *LinkTable) ResolveLink(amount int) string {
	if url, ok := t.links[amount]; ok {
		return url
	}
	return t.links[t.defaultTier]
}

// Tiers lists the configured amount tiers in ascending order.
func (t *LinkTable) Tiers() []int {
	out := make([]int, len(t.tiers))
	copy(out, t.tiers)
	return out
}
