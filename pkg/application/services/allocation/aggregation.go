package allocation

import "github.com/vsinha/jvalloc/pkg/domain/entities"

// AggregateEntries collapses entries that share a partner into one entry per
// partner. Gross volumes are summed; BS&W, temperature and API gravity become
// gross-weighted averages. Partners keep first-seen order and partners with a
// single entry pass through untouched.
func AggregateEntries(entries []entities.ProductionEntry) []entities.ProductionEntry {
	type accumulator struct {
		count       int
		first       entities.ProductionEntry
		gross       float64
		bswWeighted float64
		tmpWeighted float64
		apiWeighted float64
	}

	order := make([]entities.PartnerID, 0, len(entries))
	byPartner := make(map[entities.PartnerID]*accumulator, len(entries))

	for _, entry := range entries {
		acc, ok := byPartner[entry.Partner]
		if !ok {
			acc = &accumulator{first: entry}
			byPartner[entry.Partner] = acc
			order = append(order, entry.Partner)
		}
		acc.count++
		acc.gross += entry.GrossVolumeBBL
		acc.bswWeighted += entry.BSWPercent * entry.GrossVolumeBBL
		acc.tmpWeighted += entry.TemperatureDegF * entry.GrossVolumeBBL
		acc.apiWeighted += entry.APIGravity * entry.GrossVolumeBBL
	}

	aggregated := make([]entities.ProductionEntry, 0, len(order))
	for _, partner := range order {
		acc := byPartner[partner]
		if acc.count == 1 || acc.gross == 0 {
			aggregated = append(aggregated, acc.first)
			continue
		}
		aggregated = append(aggregated, entities.ProductionEntry{
			Partner:         partner,
			GrossVolumeBBL:  acc.gross,
			BSWPercent:      acc.bswWeighted / acc.gross,
			TemperatureDegF: acc.tmpWeighted / acc.gross,
			APIGravity:      acc.apiWeighted / acc.gross,
		})
	}

	return aggregated
}
