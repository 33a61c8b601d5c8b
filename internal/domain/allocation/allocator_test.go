package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/revestimientos-api/internal/domain/allocation"
)

// ──────────────────────────────────────────────────────────────────────────────
// Asignación greedy sin preferencia de lote
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_LoteMasGrandePrimero(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-a", Available: 5},
		{LotID: "lote-b", Available: 40},
		{LotID: "lote-c", Available: 12},
	}

	plan := allocation.Allocate(snapshot, 45, "")

	require.Len(t, plan, 2)
	assert.Equal(t, "lote-b", plan[0].LotID, "debe empezar por el de mayor disponible")
	assert.Equal(t, 40, plan[0].Quantity)
	assert.Equal(t, "lote-c", plan[1].LotID)
	assert.Equal(t, 5, plan[1].Quantity)
	assert.Equal(t, 45, allocation.Total(plan))
}

func TestAllocate_CubiertoPorUnSoloLote(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-a", Available: 100},
		{LotID: "lote-b", Available: 3},
	}

	plan := allocation.Allocate(snapshot, 10, "")

	require.Len(t, plan, 1)
	assert.Equal(t, "lote-a", plan[0].LotID)
	assert.Equal(t, 10, plan[0].Quantity)
}

func TestAllocate_ParcialCuandoNoAlcanza(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-a", Available: 4},
		{LotID: "lote-b", Available: 3},
	}

	// Pide 20, solo hay 7: el plan cubre 7 y el resto queda sin asignar.
	plan := allocation.Allocate(snapshot, 20, "")

	assert.Equal(t, 7, allocation.Total(plan))
}

func TestAllocate_IgnoraLotesSinDisponible(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-vacio", Available: 0},
		{LotID: "lote-negativo", Available: -2},
		{LotID: "lote-ok", Available: 6},
	}

	plan := allocation.Allocate(snapshot, 10, "")

	require.Len(t, plan, 1)
	assert.Equal(t, "lote-ok", plan[0].LotID)
	assert.Equal(t, 6, plan[0].Quantity)
}

func TestAllocate_SinStockDevuelvePlanVacio(t *testing.T) {
	plan := allocation.Allocate(nil, 10, "")
	assert.Empty(t, plan)
}

func TestAllocate_PedidoCeroONegativo(t *testing.T) {
	snapshot := []allocation.LotSnapshot{{LotID: "lote-a", Available: 10}}
	assert.Empty(t, allocation.Allocate(snapshot, 0, ""))
	assert.Empty(t, allocation.Allocate(snapshot, -5, ""))
}

// ──────────────────────────────────────────────────────────────────────────────
// Determinismo: mismo snapshot ⇒ mismo plan (clave para reintentos idempotentes)
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_EmpateSeResuelvePorLotID(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-z", Available: 10},
		{LotID: "lote-a", Available: 10},
	}

	plan := allocation.Allocate(snapshot, 15, "")

	require.Len(t, plan, 2)
	assert.Equal(t, "lote-a", plan[0].LotID, "empate de disponible se rompe por LotID ascendente")
	assert.Equal(t, "lote-z", plan[1].LotID)
}

func TestAllocate_Reproducible(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "l3", Available: 7},
		{LotID: "l1", Available: 7},
		{LotID: "l2", Available: 20},
	}

	first := allocation.Allocate(snapshot, 30, "")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, allocation.Allocate(snapshot, 30, ""))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lote preferido: el pin manual nunca se derrama a otros lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_LotePreferidoCubreTodo(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-a", Available: 50},
		{LotID: "lote-b", Available: 50},
	}

	plan := allocation.Allocate(snapshot, 10, "lote-b")

	require.Len(t, plan, 1)
	assert.Equal(t, "lote-b", plan[0].LotID)
	assert.Equal(t, 10, plan[0].Quantity)
}

func TestAllocate_LotePreferidoParcialNoDerrama(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-a", Available: 100},
		{LotID: "lote-b", Available: 4},
	}

	// Pide 10 del lote-b que solo tiene 4: toma 4 y NO completa con lote-a.
	plan := allocation.Allocate(snapshot, 10, "lote-b")

	require.Len(t, plan, 1)
	assert.Equal(t, "lote-b", plan[0].LotID)
	assert.Equal(t, 4, plan[0].Quantity)
}

func TestAllocate_LotePreferidoAgotado(t *testing.T) {
	snapshot := []allocation.LotSnapshot{
		{LotID: "lote-a", Available: 100},
		{LotID: "lote-b", Available: 0},
	}

	plan := allocation.Allocate(snapshot, 10, "lote-b")
	assert.Empty(t, plan, "lote preferido sin disponible no asigna nada")
}

func TestAllocate_LotePreferidoInexistente(t *testing.T) {
	snapshot := []allocation.LotSnapshot{{LotID: "lote-a", Available: 100}}
	plan := allocation.Allocate(snapshot, 10, "lote-x")
	assert.Empty(t, plan)
}
