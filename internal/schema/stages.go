package schema

// The four configured import stages. Purchase files arrive from both
// Copart and IAAI; inventory and sale exports are Copart only.

// CopartBuy is the Copart purchase export (step 1).
var CopartBuy = Stage{
	Key:    "copart_buy",
	Source: "copart",
	Phase:  PhasePurchase,
	Fields: []Field{
		{Key: FieldKeyVIN, Type: FieldVIN},
		{Key: FieldKeyPurchaseLot, Type: FieldLot},
		{Key: FieldKeyLocation, Type: FieldText},
		{Key: FieldKeyDescription, Type: FieldText},
		{Key: FieldKeyLeftLocation, Type: FieldDate},
		{Key: FieldKeyDatePaid, Type: FieldDate},
		{Key: FieldKeyInvoiceAmount, Type: FieldAmount},
	},
}

// IaaiBuy is the IAAI purchase export (step 1). IAAI splits the
// description into year/make/model cells and sometimes omits the pickup
// date, so left_location is optional here.
var IaaiBuy = Stage{
	Key:    "iaai_buy",
	Source: "iaai",
	Phase:  PhasePurchase,
	Fields: []Field{
		{Key: FieldKeyVIN, Type: FieldVIN},
		{Key: FieldKeyPurchaseLot, Type: FieldLot},
		{Key: FieldKeyLocation, Type: FieldText},
		{Key: FieldKeyYear, Type: FieldText},
		{Key: FieldKeyMake, Type: FieldText},
		{Key: FieldKeyModel, Type: FieldText},
		{Key: FieldKeyLeftLocation, Type: FieldDate, Optional: true},
		{Key: FieldKeyDatePaid, Type: FieldDate},
		{Key: FieldKeyInvoiceAmount, Type: FieldAmount},
	},
}

// CopartInventory is the Copart yard-intake export (step 2). Damage and
// title fields are optional: blank cells produce no metadata entry.
var CopartInventory = Stage{
	Key:    "copart_inventory",
	Source: "copart",
	Phase:  PhaseInventory,
	Fields: []Field{
		{Key: FieldKeyVIN, Type: FieldVIN},
		{Key: FieldKeyAuctionLot, Type: FieldLot},
		{Key: FieldKeyLocation, Type: FieldText},
		{Key: FieldKeyDescription, Type: FieldText},
		{Key: FieldKeyClaimNumber, Type: FieldText},
		{Key: FieldKeyStatus, Type: FieldText},
		{Key: FieldKeyPrimaryDamage, Type: FieldText},
		{Key: FieldKeySecondaryDamage, Type: FieldText, Optional: true},
		{Key: FieldKeyKeys, Type: FieldText},
		{Key: FieldKeyDrivabilityRating, Type: FieldText},
		{Key: FieldKeyOdometer, Type: FieldText},
		{Key: FieldKeyOdometerBrand, Type: FieldText},
		{Key: FieldKeySaleTitleType, Type: FieldText, Optional: true},
		{Key: FieldKeySaleTitleState, Type: FieldText, Optional: true},
		{Key: FieldKeyDaysInYard, Type: FieldText},
	},
}

// CopartSale is the Copart sale-results export (step 3).
var CopartSale = Stage{
	Key:    "copart_sale",
	Source: "copart",
	Phase:  PhaseSale,
	Fields: []Field{
		{Key: FieldKeyLot, Type: FieldLot},
		{Key: FieldKeyVIN, Type: FieldVIN, Optional: true},
		{Key: FieldKeySaleDate, Type: FieldDate},
		{Key: FieldKeySalePrice, Type: FieldAmount, Optional: true},
	},
}

var stages = []Stage{CopartBuy, IaaiBuy, CopartInventory, CopartSale}

// Stages returns all configured stages in pipeline order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// ByKey looks up a stage by its mapping key.
func ByKey(key string) (Stage, bool) {
	for _, s := range stages {
		if s.Key == key {
			return s, true
		}
	}
	return Stage{}, false
}
