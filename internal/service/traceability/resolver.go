// Package traceability links a sale or container back to the milling batch
// and harvest it came from.
package traceability

import (
	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/derivation"
)

// Link names a hop of the provenance chain.
type Link string

const (
	LinkStorage Link = "storage"
	LinkMilling Link = "milling"
	LinkHarvest Link = "harvest"
)

// Chain is a provenance chain. A nil link means the referenced record is not in
// the loaded collections, either not fetched yet or orphaned.
type Chain struct {
	Sale    *models.Sale    `json:"sale,omitempty"`
	Storage *models.Storage `json:"storage,omitempty"`
	Milling *models.Milling `json:"milling,omitempty"`
	Harvest *models.Harvest `json:"harvest,omitempty"`
}

// Missing lists the links that could not be resolved, sale side first.
func (c Chain) Missing() []Link {
	var missing []Link
	if c.Storage == nil {
		missing = append(missing, LinkStorage)
	}
	if c.Milling == nil {
		missing = append(missing, LinkMilling)
	}
	if c.Harvest == nil {
		missing = append(missing, LinkHarvest)
	}
	return missing
}

// Complete reports whether every upstream link resolved.
func (c Chain) Complete() bool {
	return len(c.Missing()) == 0
}

// Profit prices the chain's sale; false when the chain cannot support it.
func (c Chain) Profit() (derivation.Profit, bool) {
	if c.Sale == nil {
		return derivation.Profit{}, false
	}
	return derivation.SaleProfit(*c.Sale, c.Storage, c.Milling, c.Harvest)
}

// Index is a read-only lookup over one snapshot of the loaded collections.
type Index struct {
	harvests    map[int64]models.Harvest
	millings    map[int64]models.Milling
	storages    map[int64]models.Storage
	byContainer map[string]int64
}

// NewIndex builds the lookup maps. Later duplicates of an id replace earlier ones.
func NewIndex(harvests []models.Harvest, millings []models.Milling, storages []models.Storage) *Index {
	idx := &Index{
		harvests:    make(map[int64]models.Harvest, len(harvests)),
		millings:    make(map[int64]models.Milling, len(millings)),
		storages:    make(map[int64]models.Storage, len(storages)),
		byContainer: make(map[string]int64, len(storages)),
	}
	for _, h := range harvests {
		idx.harvests[h.ID] = h
	}
	for _, m := range millings {
		idx.millings[m.ID] = m
	}
	for _, s := range storages {
		idx.storages[s.ID] = s
		if s.ContainerID != "" {
			idx.byContainer[s.ContainerID] = s.ID
		}
	}
	return idx
}

// Harvest looks a harvest up by id.
func (idx *Index) Harvest(id int64) (*models.Harvest, bool) {
	h, ok := idx.harvests[id]
	if !ok {
		return nil, false
	}
	return &h, true
}

// Milling looks a milling record up by id.
func (idx *Index) Milling(id int64) (*models.Milling, bool) {
	m, ok := idx.millings[id]
	if !ok {
		return nil, false
	}
	return &m, true
}

// Storage looks a container up by id.
func (idx *Index) Storage(id int64) (*models.Storage, bool) {
	s, ok := idx.storages[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

// StorageByContainer looks a container up by its human-readable identifier.
func (idx *Index) StorageByContainer(containerID string) (*models.Storage, bool) {
	id, ok := idx.byContainer[containerID]
	if !ok {
		return nil, false
	}
	return idx.Storage(id)
}

// ResolveChain walks sale, container, milling batch, harvest.
func (idx *Index) ResolveChain(sale models.Sale) Chain {
	chain := Chain{Sale: &sale}
	storage, ok := idx.Storage(sale.StorageID)
	if !ok {
		return chain
	}
	upstream := idx.ResolveStorage(*storage)
	chain.Storage = upstream.Storage
	chain.Milling = upstream.Milling
	chain.Harvest = upstream.Harvest
	return chain
}

// ResolveStorage walks container, milling batch, harvest. The returned chain has no sale.
func (idx *Index) ResolveStorage(storage models.Storage) Chain {
	chain := Chain{Storage: &storage}
	milling, ok := idx.Milling(storage.MillingID)
	if !ok {
		return chain
	}
	chain.Milling = milling
	if harvest, ok := idx.Harvest(milling.HarvestID); ok {
		chain.Harvest = harvest
	}
	return chain
}

// HarvestFor returns the harvest a milling batch consumed, if loaded.
func (idx *Index) HarvestFor(milling models.Milling) *models.Harvest {
	h, _ := idx.Harvest(milling.HarvestID)
	return h
}
