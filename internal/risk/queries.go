package risk

// Detector queries. All are keyed by $buildingId and walk
// (Building)-[:COMPOSED_OF]->(BuildingElement)-[:USES_PRODUCT]->(Product).

const (
	// QuerySingleSource returns products with exactly one distinct supplier
	QuerySingleSource = `
		MATCH (b:Building {id: $buildingId})-[:COMPOSED_OF]->(:BuildingElement)-[:USES_PRODUCT]->(p:Product)-[:SUPPLIED_BY]->(m:Manufacturer)
		WITH p, count(DISTINCT m) AS supplierCount, collect(DISTINCT m.name) AS suppliers
		WHERE supplierCount = 1
		RETURN p.name AS product, suppliers[0] AS soleSupplier
	`

	// QueryExpiringCerts returns products whose EPD expires within the
	// window, soonest first. Already expired certifications are included.
	QueryExpiringCerts = `
		MATCH (b:Building {id: $buildingId})-[:COMPOSED_OF]->(:BuildingElement)-[:USES_PRODUCT]->(p:Product)-[:HAS_EPD]->(c:Certification)
		WHERE c.validUntil IS NOT NULL
		  AND date(c.validUntil) <= date() + duration({days: $windowDays})
		RETURN p.name AS product, toString(date(c.validUntil)) AS expiryDate
		ORDER BY date(c.validUntil) ASC
		LIMIT $limit
	`

	// QuerySupplierConcentration returns manufacturers supplying many products
	QuerySupplierConcentration = `
		MATCH (b:Building {id: $buildingId})-[:COMPOSED_OF]->(:BuildingElement)-[:USES_PRODUCT]->(p:Product)-[:SUPPLIED_BY]->(m:Manufacturer)
		WITH m, count(DISTINCT p) AS productCount
		WHERE productCount > $minProducts
		RETURN m.name AS manufacturer, productCount
		ORDER BY productCount DESC
		LIMIT $limit
	`

	// QueryGeographicConcentration returns plant countries sourcing many products
	QueryGeographicConcentration = `
		MATCH (b:Building {id: $buildingId})-[:COMPOSED_OF]->(:BuildingElement)-[:USES_PRODUCT]->(p:Product)-[:MANUFACTURED_AT]->(:Plant)-[:LOCATED_IN]->(l:Location)
		WITH l.country AS country, count(DISTINCT p) AS productCount
		WHERE productCount > $minProducts
		RETURN country, productCount
		ORDER BY productCount DESC
		LIMIT $limit
	`
)
