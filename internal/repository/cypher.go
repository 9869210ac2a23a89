package repository

const upsertPropertyCypher = `
MERGE (p:Property {propertyId: $propertyId})
ON CREATE SET p.createdAt = $props.updatedAt
SET p += $props
RETURN p.propertyId AS propertyId
`

const upsertAnalysisCypher = `
MATCH (p:Property {propertyId: $propertyId})
MERGE (a:Analysis {analysisId: $analysisId})
SET a += $props
MERGE (a)-[:DESCRIBES]->(p)
RETURN a.analysisId AS analysisId
`

const clearCurrentStateCypher = `
MATCH (p:Property {propertyId: $propertyId})
OPTIONAL MATCH (p)-[:ENCUMBERED_BY]->(r:Right)
DETACH DELETE r
WITH DISTINCT p
OPTIONAL MATCH (:Party)-[o:OWNS]->(p)
DELETE o
`

const createRightsCypher = `
MATCH (p:Property {propertyId: $propertyId})
UNWIND $rights AS right
MERGE (r:Right {rightId: right.id})
SET r += right.props,
    r.group = right.group,
    r.analysisId = $analysisId
MERGE (p)-[:ENCUMBERED_BY]->(r)
`

const linkPartiesCypher = `
MATCH (p:Property {propertyId: $propertyId})
UNWIND $links AS link
MERGE (party:Party {partyId: link.partyId})
SET party += link.props
WITH p, party, link
OPTIONAL MATCH (r:Right {rightId: link.rightId})
FOREACH (_ IN CASE WHEN link.role = "CREDITOR" AND r IS NOT NULL THEN [1] ELSE [] END |
	MERGE (party)-[:HOLDS]->(r)
)
FOREACH (_ IN CASE WHEN link.role = "DEBTOR" AND r IS NOT NULL THEN [1] ELSE [] END |
	MERGE (party)-[:OWES]->(r)
)
FOREACH (_ IN CASE WHEN link.role = "OWNER" THEN [1] ELSE [] END |
	MERGE (party)-[o:OWNS]->(p)
	SET o.numerator = link.numerator,
	    o.denominator = link.denominator
)
`

const listPropertiesCypherTemplate = `
MATCH (p:Property)
%s
RETURN p.propertyId AS propertyId,
       p.uniqueNumber AS uniqueNumber,
       p.address AS address,
       p.category AS category,
       p.lienCount AS lienCount,
       p.attachmentCount AS attachmentCount,
       p.ownerCount AS ownerCount,
       p.totalCeiling AS totalCeiling,
       p.stale AS stale,
       p.lastAnalysisId AS lastAnalysisId,
       p.updatedAt AS updatedAt
ORDER BY %s
SKIP $skip LIMIT $limit
`

const countPropertiesCypherTemplate = `
MATCH (p:Property)
%s
RETURN count(p) AS total
`

const propertyFilterClause = `
WHERE ($search = "" OR toLower(coalesce(p.address, "")) CONTAINS $search OR p.uniqueNumber CONTAINS $search OR p.propertyId CONTAINS $search)
  AND ($category = "" OR p.category = $category)
  AND ($staleOnly = false OR p.stale = true)
  AND ($minCeiling <= 0 OR coalesce(p.totalCeiling, 0) >= $minCeiling)
`

const fetchPropertyCypher = `
MATCH (p:Property {propertyId: $propertyId})
OPTIONAL MATCH (a:Analysis)-[:DESCRIBES]->(p)
WITH p, a ORDER BY a.createdAt DESC
RETURN p.propertyId AS propertyId,
       p.uniqueNumber AS uniqueNumber,
       p.address AS address,
       p.category AS category,
       p.detail AS detail,
       p.exclusiveArea AS exclusiveArea,
       p.lastAnalysisId AS lastAnalysisId,
       p.lastViewedAt AS lastViewedAt,
       p.stale AS stale,
       p.createdAt AS createdAt,
       p.updatedAt AS updatedAt,
       collect(a.analysisId) AS analysisIds
`

const propertyRightsCypher = `
MATCH (p:Property {propertyId: $propertyId})-[:ENCUMBERED_BY]->(r:Right)
OPTIONAL MATCH (creditor:Party)-[:HOLDS]->(r)
OPTIONAL MATCH (debtor:Party)-[:OWES]->(r)
RETURN r.rightId AS rightId,
       r.group AS group,
       r.rank AS rank,
       r.kind AS kind,
       r.rightType AS rightType,
       r.ceiling AS ceiling,
       r.claim AS claim,
       r.registrationDate AS registrationDate,
       r.debtorBackfilled AS debtorBackfilled,
       creditor.partyId AS creditorId,
       creditor.name AS creditor,
       debtor.partyId AS debtorId,
       debtor.name AS debtor
ORDER BY r.group, r.rankMain, r.rankVariant
`

const propertyOwnersCypher = `
MATCH (party:Party)-[o:OWNS]->(p:Property {propertyId: $propertyId})
RETURN party.partyId AS partyId,
       party.name AS name,
       party.birthPrefix AS birthPrefix,
       o.numerator AS numerator,
       o.denominator AS denominator
ORDER BY party.name
`

const creditorExposureCypher = `
MATCH (c:Party)-[:HOLDS]->(r:Right {group: "lien"})<-[:ENCUMBERED_BY]-(p:Property)
RETURN c.partyId AS partyId,
       c.name AS name,
       count(DISTINCT p) AS properties,
       count(r) AS rights,
       sum(coalesce(r.ceiling, 0)) AS totalCeiling
ORDER BY totalCeiling DESC, name
LIMIT $limit
`

const exportPropertiesCypher = `
MATCH (p:Property)
RETURN p.propertyId AS propertyId,
       p.uniqueNumber AS uniqueNumber,
       p.address AS address,
       p.category AS category,
       p.lienCount AS lienCount,
       p.attachmentCount AS attachmentCount,
       p.ownerCount AS ownerCount,
       p.totalCeiling AS totalCeiling,
       p.stale AS stale,
       p.lastAnalysisId AS lastAnalysisId,
       p.updatedAt AS updatedAt
ORDER BY p.propertyId
`

// schemaStatements create the uniqueness constraints every MERGE above relies
// on. They are idempotent.
var schemaStatements = []string{
	"CREATE CONSTRAINT property_id IF NOT EXISTS FOR (p:Property) REQUIRE p.propertyId IS UNIQUE",
	"CREATE CONSTRAINT analysis_id IF NOT EXISTS FOR (a:Analysis) REQUIRE a.analysisId IS UNIQUE",
	"CREATE CONSTRAINT right_id IF NOT EXISTS FOR (r:Right) REQUIRE r.rightId IS UNIQUE",
	"CREATE CONSTRAINT party_id IF NOT EXISTS FOR (p:Party) REQUIRE p.partyId IS UNIQUE",
}
