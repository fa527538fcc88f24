package store

// Schema migrations. Text identity fields default to '' so the match
// index never deals with NULLs; dates and amounts stay nullable because
// absence is meaningful there.

const migrationCreateVehicles = `
CREATE TABLE IF NOT EXISTS vehicles (
	id             UUID PRIMARY KEY,
	vin            TEXT NOT NULL DEFAULT '',
	purchase_lot   TEXT NOT NULL DEFAULT '',
	auction_lot    TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	source         TEXT NOT NULL DEFAULT '',
	left_location  DATE,
	date_paid      DATE,
	invoice_amount NUMERIC(12,2),
	days_in_yard   INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_vehicles_vin ON vehicles (vin) WHERE vin <> '';
CREATE INDEX IF NOT EXISTS idx_vehicles_auction_lot ON vehicles (auction_lot) WHERE auction_lot <> '';
CREATE INDEX IF NOT EXISTS idx_vehicles_purchase_lot ON vehicles (purchase_lot) WHERE purchase_lot <> '';
`

const migrationCreateVehicleMetas = `
CREATE TABLE IF NOT EXISTS vehicle_metas (
	id         BIGSERIAL PRIMARY KEY,
	vehicle_id UUID NOT NULL REFERENCES vehicles (id) ON DELETE CASCADE,
	meta_key   TEXT NOT NULL,
	meta_value TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (vehicle_id, meta_key)
);
`

const migrationCreateCSVHeaders = `
CREATE TABLE IF NOT EXISTS csv_headers (
	id             BIGSERIAL PRIMARY KEY,
	filename       TEXT NOT NULL,
	database_field TEXT NOT NULL,
	csv_header     TEXT NOT NULL,
	position       INTEGER NOT NULL,
	UNIQUE (filename, database_field)
);
`

// migrationSeedCSVHeaders loads the literal header texts of current
// Copart and IAAI exports. Operators adjust these rows when a portal
// renames a column; no code change is needed.
const migrationSeedCSVHeaders = `
INSERT INTO csv_headers (filename, database_field, csv_header, position) VALUES
	('copart_buy', 'vin',            'VIN',            1),
	('copart_buy', 'purchase_lot',   'Lot/Inv #',      2),
	('copart_buy', 'location',       'Location',       3),
	('copart_buy', 'description',    'Description',    4),
	('copart_buy', 'left_location',  'Left Location',  5),
	('copart_buy', 'date_paid',      'Date Paid',      6),
	('copart_buy', 'invoice_amount', 'Invoice Amount', 7),

	('iaai_buy', 'vin',            'VIN',            1),
	('iaai_buy', 'purchase_lot',   'Stock #',        2),
	('iaai_buy', 'location',       'Branch',         3),
	('iaai_buy', 'year',           'Year',           4),
	('iaai_buy', 'make',           'Make',           5),
	('iaai_buy', 'model',          'Model',          6),
	('iaai_buy', 'left_location',  'Date Picked Up', 7),
	('iaai_buy', 'date_paid',      'Date Paid',      8),
	('iaai_buy', 'invoice_amount', 'Total Amount',   9),

	('copart_inventory', 'vin',                'VIN',                1),
	('copart_inventory', 'auction_lot',        'Lot #',              2),
	('copart_inventory', 'location',           'Location',           3),
	('copart_inventory', 'description',        'Description',        4),
	('copart_inventory', 'claim_number',       'Claim #',            5),
	('copart_inventory', 'status',             'Status',             6),
	('copart_inventory', 'primary_damage',     'Primary Damage',     7),
	('copart_inventory', 'secondary_damage',   'Secondary Damage',   8),
	('copart_inventory', 'keys',               'Keys',               9),
	('copart_inventory', 'drivability_rating', 'Drivability Rating', 10),
	('copart_inventory', 'odometer',           'Odometer',           11),
	('copart_inventory', 'odometer_brand',     'Odometer Brand',     12),
	('copart_inventory', 'sale_title_type',    'Sale Title Type',    13),
	('copart_inventory', 'sale_title_state',   'Sale Title State',   14),
	('copart_inventory', 'days_in_yard',       'Days in Yard',       15),

	('copart_sale', 'lot',        'Lot #',      1),
	('copart_sale', 'vin',        'VIN',        2),
	('copart_sale', 'sale_date',  'Sale Date',  3),
	('copart_sale', 'sale_price', 'Sale Price', 4)
ON CONFLICT (filename, database_field) DO NOTHING;
`
