package ledger

import (
	"context"
	"sort"
	"strings"

	"ledger-backend/internal/models"
)

// Küsuratlı miktarlarda karşılaştırma toleransı
const epsilon = 1e-9

// stockPlan bir işlemin kalem bazlı toplam stok etkisini biriktirir.
// Geri alma ve yeniden uygulama aynı plan üzerinde toplanır, kontrol net
// sonuç üzerinden yapılır, sonra her kaleme tek bir delta yazılır.
type stockPlan struct {
	moves map[string]*plannedMove
}

type plannedMove struct {
	name, unit    string
	perUnitWeight float64
	hasDefaults   bool

	in, out             float64
	weightIn, weightOut float64
}

func newStockPlan() *stockPlan {
	return &stockPlan{moves: make(map[string]*plannedMove)}
}

func (p *stockPlan) move(l models.LineItem) *plannedMove {
	m, ok := p.moves[l.ItemKey]
	if !ok {
		m = &plannedMove{name: l.ItemName, unit: l.Unit, perUnitWeight: l.PerUnitWeight}
		p.moves[l.ItemKey] = m
	}
	return m
}

// add stoğa giren satırlar; yeni stok satırının varsayılanları bunlardan alınır
func (p *stockPlan) add(lines ...models.LineItem) {
	for _, l := range lines {
		m := p.move(l)
		if !m.hasDefaults {
			m.name, m.unit, m.perUnitWeight = l.ItemName, l.Unit, l.PerUnitWeight
			m.hasDefaults = true
		}
		m.in += l.Quantity
		m.weightIn += l.Weight
	}
}

// remove stoktan çıkan satırlar
func (p *stockPlan) remove(lines ...models.LineItem) {
	for _, l := range lines {
		m := p.move(l)
		m.out += l.Quantity
		m.weightOut += l.Weight
	}
}

func (p *stockPlan) keys() []string {
	keys := make([]string, 0, len(p.moves))
	for k := range p.moves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// shortages net sonucu sıfırın altına düşecek kalemleri döner.
// Available mevcut stok artı bu işlemin geri verdiği miktardır.
func (p *stockPlan) shortages(stock map[string]*models.StockEntry) []Shortage {
	var out []Shortage
	for _, key := range p.keys() {
		m := p.moves[key]
		current, name := 0.0, m.name
		if e := stock[key]; e != nil {
			current, name = e.Quantity, e.ItemName
		}
		if current+m.in-m.out < -epsilon {
			out = append(out, Shortage{ItemName: name, Available: current + m.in, Requested: m.out})
		}
	}
	return out
}

func (p *stockPlan) apply(ctx context.Context, tx Tx) error {
	for _, key := range p.keys() {
		m := p.moves[key]
		qty, weight := m.in-m.out, m.weightIn-m.weightOut
		if qty == 0 && weight == 0 {
			continue
		}
		unit := m.unit
		if unit == "" {
			unit = unknownUnit
		}
		if _, err := tx.Stock().ApplyDelta(ctx, StockDelta{
			Key:           key,
			Name:          m.name,
			Unit:          unit,
			PerUnitWeight: m.perUnitWeight,
			Quantity:      qty,
			Weight:        weight,
		}); err != nil {
			return err
		}
	}
	return nil
}

func shortageNames(sh []Shortage) string {
	names := make([]string, 0, len(sh))
	for _, s := range sh {
		names = append(names, s.ItemName)
	}
	return strings.Join(names, ", ")
}
