package cards

import (
	"strconv"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// CurveBuckets is the number of mana cost buckets; the last one holds every
// cost of CurveBuckets-1 or more.
const CurveBuckets = 8

// CurvePoint is the number of cards at one mana cost.
type CurvePoint struct {
	Cost      int    `json:"cost"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
	Creatures int    `json:"creatures"`
	Spells    int    `json:"spells"`
}

// ManaCurve counts pool cards per mana cost bucket 0..7+.
func ManaCurve(pool []game.PoolEntry) []CurvePoint {
	curve := make([]CurvePoint, CurveBuckets)
	for i := range curve {
		curve[i].Cost = i
		curve[i].Label = strconv.Itoa(i)
	}
	curve[CurveBuckets-1].Label += "+"

	for _, entry := range pool {
		bucket := min(max(entry.Card.ManaCost, 0), CurveBuckets-1)
		curve[bucket].Count += entry.Quantity
		if entry.Card.Type == game.CardTypeSpell {
			curve[bucket].Spells += entry.Quantity
		} else {
			curve[bucket].Creatures += entry.Quantity
		}
	}
	return curve
}

// AverageCost is the mean mana cost of the pool, 0 for an empty pool.
func AverageCost(pool []game.PoolEntry) float64 {
	total, n := 0, 0
	for _, entry := range pool {
		total += entry.Card.ManaCost * entry.Quantity
		n += entry.Quantity
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}
