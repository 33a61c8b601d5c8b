// Package allocation decide de qué lotes y cuánto de cada uno tomar para cubrir
// una cantidad pedida. Es lógica pura sobre un snapshot inmutable de
// disponibilidad: decidir queda separado de confirmar (la escritura transaccional
// re-valida contra el lote bloqueado).
package allocation

import "sort"

// LotSnapshot es la disponibilidad de un lote al momento de decidir.
type LotSnapshot struct {
	LotID     string
	Available int
}

// Allocation es una porción del plan: tomar Quantity cajas del lote LotID.
type Allocation struct {
	LotID    string
	Quantity int
}

// Allocate arma el plan de asignación para una cantidad pedida.
//
// Con lote preferido: toma min(disponible, pedido) de ese lote y se detiene.
// El remanente NO se reparte en otros lotes: el pin manual expresa la intención
// del usuario de no sustituir lote en silencio.
//
// Sin preferencia: ordena los lotes elegibles (disponible > 0) por disponible
// descendente, desempatando por LotID ascendente para que el plan sea
// reproducible, y toma greedy hasta agotar el pedido o los lotes. Un remanente
// sin asignar es un resultado normal (reserva parcial), no un error.
func Allocate(snapshot []LotSnapshot, requested int, preferredLotID string) []Allocation {
	if requested <= 0 {
		return nil
	}

	if preferredLotID != "" {
		for _, lot := range snapshot {
			if lot.LotID != preferredLotID {
				continue
			}
			take := min(lot.Available, requested)
			if take <= 0 {
				return nil
			}
			return []Allocation{{LotID: lot.LotID, Quantity: take}}
		}
		return nil
	}

	eligible := make([]LotSnapshot, 0, len(snapshot))
	for _, lot := range snapshot {
		if lot.Available > 0 {
			eligible = append(eligible, lot)
		}
	}
	// Mayor disponible primero para minimizar fragmentación; LotID asc desempata.
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Available != eligible[j].Available {
			return eligible[i].Available > eligible[j].Available
		}
		return eligible[i].LotID < eligible[j].LotID
	})

	var plan []Allocation
	remaining := requested
	for _, lot := range eligible {
		if remaining <= 0 {
			break
		}
		take := min(lot.Available, remaining)
		plan = append(plan, Allocation{LotID: lot.LotID, Quantity: take})
		remaining -= take
	}
	return plan
}

// Total suma las cantidades del plan.
func Total(plan []Allocation) int {
	var sum int
	for _, a := range plan {
		sum += a.Quantity
	}
	return sum
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
