package importer

import "github.com/google/uuid"

// identity.go holds the per-run match index. The index is a snapshot of
// the persistent store taken once at the start of a run, then updated
// incrementally as the run creates vehicles, so repeated VINs within one
// file cannot create duplicates.

// matchIndex indexes vehicles by VIN and by lot number for one run.
// It is local to a single import run and never shared.
type matchIndex struct {
	vins         map[string]uuid.UUID
	auctionLots  map[string]uuid.UUID
	purchaseLots map[string]uuid.UUID
}

func newMatchIndex(identities []VehicleIdentity) *matchIndex {
	ix := &matchIndex{
		vins:         make(map[string]uuid.UUID, len(identities)),
		auctionLots:  make(map[string]uuid.UUID),
		purchaseLots: make(map[string]uuid.UUID),
	}
	for _, id := range identities {
		ix.insert(id)
	}
	return ix
}

func (ix *matchIndex) insert(id VehicleIdentity) {
	if id.VIN != "" {
		// First store match wins; an existing entry is authoritative.
		if _, ok := ix.vins[id.VIN]; !ok {
			ix.vins[id.VIN] = id.ID
		}
	}
	if id.AuctionLot != "" {
		if _, ok := ix.auctionLots[id.AuctionLot]; !ok {
			ix.auctionLots[id.AuctionLot] = id.ID
		}
	}
	if id.PurchaseLot != "" {
		if _, ok := ix.purchaseLots[id.PurchaseLot]; !ok {
			ix.purchaseLots[id.PurchaseLot] = id.ID
		}
	}
}

// byVIN returns the vehicle holding the exact VIN.
func (ix *matchIndex) byVIN(vin string) (uuid.UUID, bool) {
	if vin == "" {
		return uuid.UUID{}, false
	}
	id, ok := ix.vins[vin]
	return id, ok
}

// byLot matches a lot value against the union of the auction_lot and
// purchase_lot namespaces. An exact auction_lot match is preferred; when
// the value also matches a different vehicle's purchase_lot, collision is
// true so the caller can surface the ambiguity.
func (ix *matchIndex) byLot(lot string) (id uuid.UUID, ok bool, collision bool) {
	if lot == "" {
		return uuid.UUID{}, false, false
	}
	auctionID, inAuction := ix.auctionLots[lot]
	purchaseID, inPurchase := ix.purchaseLots[lot]

	switch {
	case inAuction && inPurchase && auctionID != purchaseID:
		return auctionID, true, true
	case inAuction:
		return auctionID, true, false
	case inPurchase:
		return purchaseID, true, false
	default:
		return uuid.UUID{}, false, false
	}
}
