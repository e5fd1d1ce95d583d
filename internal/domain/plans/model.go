package plans

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Plan is a subscription tier sold through a single Stripe price.
type Plan struct {
	PriceID string `json:"price_id"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
}

// Catalog maps Stripe price ids to plans. It is built once at startup and read-only afterwards.
type Catalog struct {
	byPrice map[string]Plan
}

// ParseCatalog reads "price_id:Name:points" entries separated by commas.
func ParseCatalog(raw string) (*Catalog, error) {
	c := &Catalog{byPrice: map[string]Plan{}}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("plan entry %q: want price_id:name:points", entry)
		}
		priceID := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		points, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil || points <= 0 {
			return nil, fmt.Errorf("plan entry %q: points must be a positive integer", entry)
		}
		if priceID == "" || name == "" {
			return nil, fmt.Errorf("plan entry %q: empty price id or name", entry)
		}
		if _, dup := c.byPrice[priceID]; dup {
			return nil, fmt.Errorf("plan entry %q: duplicate price id", entry)
		}
		c.byPrice[priceID] = Plan{PriceID: priceID, Name: name, Points: points}
	}
	if len(c.byPrice) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}
	return c, nil
}

func NewCatalog(plans ...Plan) *Catalog {
	c := &Catalog{byPrice: make(map[string]Plan, len(plans))}
	for _, p := range plans {
		c.byPrice[p.PriceID] = p
	}
	return c
}

// Lookup is total over known ids; unknown ids return false.
func (c *Catalog) Lookup(priceID string) (Plan, bool) {
	p, ok := c.byPrice[priceID]
	return p, ok
}

// List returns the plans ordered by points, then price id.
func (c *Catalog) List() []Plan {
	out := make([]Plan, 0, len(c.byPrice))
	for _, p := range c.byPrice {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points < out[j].Points
		}
		return out[i].PriceID < out[j].PriceID
	})
	return out
}
