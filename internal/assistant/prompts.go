package assistant

// schemaContext describes the passport graph to the query generator
const schemaContext = `You are a Neo4j Cypher query expert for a building materials knowledge graph.

DATABASE SCHEMA:
- Building (id, name, address, type, completionDate, totalGWP)
- BuildingElement (id, name, category: Foundation|Structure|Envelope|Systems)
- Product (id, name, gtin, gwp, declaredUnit, quantity, epdNumber, recycledContent, category)
- Manufacturer (id, name, did, website, country)
- Plant (id, name, address, latitude, longitude)
- Certification (id, name, type, issuer, validFrom, validUntil)
- Material (id, name, recycledContent, category)
- Location (id, country, region)

RELATIONSHIPS:
- (Building)-[:COMPOSED_OF]->(BuildingElement)
- (BuildingElement)-[:USES_PRODUCT]->(Product)
- (Product)-[:SUPPLIED_BY]->(Manufacturer)
- (Product)-[:MANUFACTURED_AT]->(Plant)
- (Product)-[:HAS_EPD]->(Certification)
- (Product)-[:CERTIFIED_BY]->(Certification)
- (Product)-[:CONTAINS_MATERIAL]->(Material)
- (Plant)-[:LOCATED_IN]->(Location)
- (Manufacturer)-[:LOCATED_IN]->(Location)

NOTES:
- gwp is kg CO2e per declared unit; multiply by coalesce(quantity, 1) for totals.
- A negative gwp means carbon sequestration (for example timber products).
- Queries must be read-only.

The main building ID is: %s`

// queryInstructions asks for the structured answer parsed by GenerateQuery
const queryInstructions = `USER QUESTION: %q

Respond with a JSON object containing:
1. "cypher": The Cypher query to answer this question (use %s as the building ID)
2. "intent": A brief description of what the user wants (2-5 words)
3. "naturalResponse": A template for the response with {{result}} placeholder where the query result will go

Example response format:
{
  "cypher": "MATCH (b:Building {id: '%s'})-[:COMPOSED_OF]->(e:BuildingElement)-[:USES_PRODUCT]->(p:Product) RETURN sum(p.gwp * coalesce(p.quantity, 1)) as totalGWP",
  "intent": "total carbon footprint",
  "naturalResponse": "The total carbon footprint of the building is {{result}} kg CO2 equivalent."
}

If the question cannot be answered with the database, return:
{
  "cypher": null,
  "intent": "unknown",
  "naturalResponse": "%s"
}

Return ONLY the JSON object, no markdown or explanation.`

const formatInstructions = `Format this database result into a natural, conversational response. Be concise but informative.

Template: %q
Data: %s

Return ONLY the formatted response text, nothing else.`

const (
	resultPlaceholder = "{{result}}"
	noDataText        = "no data found"

	unknownResponse    = "I can help you with questions about building materials, carbon footprint, suppliers, and certifications. What would you like to know?"
	parseErrorResponse = "I didn't quite understand that. Could you rephrase your question about the building?"
)
