package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/graph"
	"github.com/young626-jang/ltv-flask/internal/registry"
)

// Right groups.
const (
	GroupLien       = "lien"
	GroupAttachment = "attachment"
)

// ErrPropertyNotFound is returned when no property node matches.
var ErrPropertyNotFound = errors.New("property not found")

// ListPropertiesOptions defines filters and pagination for property listing.
type ListPropertiesOptions struct {
	Offset     int
	Limit      int
	Search     string
	Category   string
	StaleOnly  bool
	MinCeiling int64
	SortField  string
	SortOrder  string
}

// Repository encapsulates graph persistence operations.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureSchema creates the graph constraints. Schema changes cannot share a
// transaction with data writes, so each runs on its own.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RightID is the graph key of a right: one per property, group and rank.
func RightID(propertyID, group string, rank registry.RankKey) string {
	return propertyID + "|" + group + "|" + rank.String()
}

// SaveAnalysis writes the analysis node and replaces the property's current
// rights and ownership with the ones the analysis reconstructed. Everything
// commits in one transaction.
func (r *Repository) SaveAnalysis(ctx context.Context, a domain.Analysis) error {
	if a.ID == "" {
		return errors.New("analysis id is required")
	}
	if a.PropertyID == "" {
		return errors.New("property id is required")
	}

	res := a.Result
	rights := make([]map[string]any, 0, len(res.Liens)+len(res.Attachments))
	rights = append(rights, rightParams(a.PropertyID, GroupLien, res.Liens)...)
	rights = append(rights, rightParams(a.PropertyID, GroupAttachment, res.Attachments)...)

	params := map[string]any{
		"propertyId": a.PropertyID,
		"analysisId": a.ID,
	}
	statements := []graph.Statement{
		{Cypher: upsertPropertyCypher, Params: merge(params, map[string]any{
			"props": propertyProperties(a),
		})},
		{Cypher: upsertAnalysisCypher, Params: merge(params, map[string]any{
			"props": analysisProperties(a),
		})},
		{Cypher: clearCurrentStateCypher, Params: params},
		{Cypher: createRightsCypher, Params: merge(params, map[string]any{
			"rights": rights,
		})},
		{Cypher: linkPartiesCypher, Params: merge(params, map[string]any{
			"links": partyParams(a.Parties),
		})},
	}

	if err := r.client.ExecuteBatch(ctx, statements); err != nil {
		return fmt.Errorf("save analysis %s: %w", a.ID, err)
	}
	return nil
}

// ListProperties returns paginated properties matching provided filters.
func (r *Repository) ListProperties(ctx context.Context, opts ListPropertiesOptions) (domain.PropertyListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	params := map[string]any{
		"search":     strings.ToLower(strings.TrimSpace(opts.Search)),
		"category":   strings.TrimSpace(opts.Category),
		"staleOnly":  opts.StaleOnly,
		"minCeiling": opts.MinCeiling,
		"skip":       offset,
		"limit":      limit,
	}

	query := fmt.Sprintf(listPropertiesCypherTemplate, propertyFilterClause, propertyOrderClause(opts.SortField, opts.SortOrder))
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return domain.PropertyListResult{}, fmt.Errorf("list properties query: %w", err)
	}

	items := make([]domain.PropertySummary, 0, len(res.Records))
	for _, record := range res.Records {
		items = append(items, propertySummary(record))
	}

	countQuery := fmt.Sprintf(countPropertiesCypherTemplate, propertyFilterClause)
	countRes, err := r.client.ExecuteRead(ctx, countQuery, params)
	if err != nil {
		return domain.PropertyListResult{}, fmt.Errorf("count properties query: %w", err)
	}

	var total int64
	if rec := countRes.First(); rec != nil {
		total = rec.Int("total")
	}

	return domain.PropertyListResult{
		Items: items,
		Total: total,
	}, nil
}

// FetchProperty returns the property with its current rights, owners and the
// analyses that described it.
func (r *Repository) FetchProperty(ctx context.Context, propertyID string) (domain.PropertyDetail, error) {
	if propertyID == "" {
		return domain.PropertyDetail{}, errors.New("property id is required")
	}
	params := map[string]any{"propertyId": propertyID}

	res, err := r.client.ExecuteRead(ctx, fetchPropertyCypher, params)
	if err != nil {
		return domain.PropertyDetail{}, fmt.Errorf("fetch property: %w", err)
	}
	record := res.First()
	if record == nil {
		return domain.PropertyDetail{}, ErrPropertyNotFound
	}

	detail := domain.PropertyDetail{
		Property:    propertyNode(record),
		AnalysisIDs: record.Strings("analysisIds"),
	}

	if err := r.fetchRights(ctx, propertyID, &detail); err != nil {
		return domain.PropertyDetail{}, err
	}
	if err := r.fetchOwners(ctx, propertyID, &detail); err != nil {
		return domain.PropertyDetail{}, err
	}
	return detail, nil
}

func (r *Repository) fetchRights(ctx context.Context, propertyID string, detail *domain.PropertyDetail) error {
	res, err := r.client.ExecuteRead(ctx, propertyRightsCypher, map[string]any{
		"propertyId": propertyID,
	})
	if err != nil {
		return fmt.Errorf("fetch property rights: %w", err)
	}

	for _, record := range res.Records {
		link := domain.RightLink{
			ID:               record.String("rightId"),
			Rank:             record.String("rank"),
			Kind:             record.String("kind"),
			RightType:        record.String("rightType"),
			Ceiling:          record.Int("ceiling"),
			Claim:            record.Int("claim"),
			RegistrationDate: record.String("registrationDate"),
			DebtorBackfilled: record.Bool("debtorBackfilled"),
			CreditorID:       record.String("creditorId"),
			Creditor:         record.String("creditor"),
			DebtorID:         record.String("debtorId"),
			Debtor:           record.String("debtor"),
		}
		if record.String("group") == GroupAttachment {
			detail.Attachments = append(detail.Attachments, link)
		} else {
			detail.Liens = append(detail.Liens, link)
		}
	}
	return nil
}

func (r *Repository) fetchOwners(ctx context.Context, propertyID string, detail *domain.PropertyDetail) error {
	res, err := r.client.ExecuteRead(ctx, propertyOwnersCypher, map[string]any{
		"propertyId": propertyID,
	})
	if err != nil {
		return fmt.Errorf("fetch property owners: %w", err)
	}

	for _, record := range res.Records {
		detail.Owners = append(detail.Owners, domain.OwnerLink{
			PartyID:     record.String("partyId"),
			Name:        record.String("name"),
			BirthPrefix: record.String("birthPrefix"),
			Numerator:   record.Int("numerator"),
			Denominator: record.Int("denominator"),
		})
	}
	return nil
}

// CreditorExposure ranks creditors by the total lien ceiling they hold.
func (r *Repository) CreditorExposure(ctx context.Context, limit int) ([]domain.CreditorExposure, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	res, err := r.client.ExecuteRead(ctx, creditorExposureCypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("creditor exposure query: %w", err)
	}

	out := make([]domain.CreditorExposure, 0, len(res.Records))
	for _, record := range res.Records {
		out = append(out, domain.CreditorExposure{
			PartyID:      record.String("partyId"),
			Name:         record.String("name"),
			Properties:   record.Int("properties"),
			Rights:       record.Int("rights"),
			TotalCeiling: record.Int("totalCeiling"),
		})
	}
	return out, nil
}

// ExportProperties returns every property for export purposes.
func (r *Repository) ExportProperties(ctx context.Context) ([]domain.PropertySummary, error) {
	res, err := r.client.ExecuteRead(ctx, exportPropertiesCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("export properties query: %w", err)
	}
	items := make([]domain.PropertySummary, 0, len(res.Records))
	for _, record := range res.Records {
		items = append(items, propertySummary(record))
	}
	return items, nil
}

func propertySummary(record graph.Record) domain.PropertySummary {
	item := domain.PropertySummary{
		ID:              record.String("propertyId"),
		UniqueNumber:    record.String("uniqueNumber"),
		Address:         record.String("address"),
		Category:        record.String("category"),
		LienCount:       int(record.Int("lienCount")),
		AttachmentCount: int(record.Int("attachmentCount")),
		OwnerCount:      int(record.Int("ownerCount")),
		TotalCeiling:    record.Int("totalCeiling"),
		Stale:           record.Bool("stale"),
		LastAnalysisID:  record.String("lastAnalysisId"),
	}
	if updated := toTimePtr(record["updatedAt"]); updated != nil {
		item.UpdatedAt = *updated
	}
	return item
}

func propertyNode(record graph.Record) domain.Property {
	p := domain.Property{
		ID:             record.String("propertyId"),
		UniqueNumber:   record.String("uniqueNumber"),
		Address:        record.String("address"),
		Category:       record.String("category"),
		Detail:         record.String("detail"),
		ExclusiveArea:  record.Float("exclusiveArea"),
		LastAnalysisID: record.String("lastAnalysisId"),
		LastViewedAt:   toTimePtr(record["lastViewedAt"]),
		Stale:          record.Bool("stale"),
	}
	if created := toTimePtr(record["createdAt"]); created != nil {
		p.CreatedAt = *created
	}
	if updated := toTimePtr(record["updatedAt"]); updated != nil {
		p.UpdatedAt = *updated
	}
	return p
}

func propertyProperties(a domain.Analysis) map[string]any {
	res := a.Result
	doc := res.Document
	props := map[string]any{
		"uniqueNumber":    doc.UniqueNumber,
		"address":         doc.Address,
		"category":        doc.PropertyCategory,
		"detail":          doc.PropertyDetail,
		"exclusiveArea":   doc.ExclusiveArea,
		"lastAnalysisId":  a.ID,
		"lastViewedAt":    formatTimePtr(doc.ViewedAt),
		"stale":           res.Age.Stale,
		"lienCount":       len(res.Liens),
		"attachmentCount": len(res.Attachments),
		"ownerCount":      len(res.Owners),
		"totalCeiling":    clampAmount(res.TotalCeiling()),
		"updatedAt":       formatTime(a.CreatedAt),
	}
	return props
}

func analysisProperties(a domain.Analysis) map[string]any {
	props := map[string]any{
		"documentHash":   a.DocumentHash,
		"sourceName":     a.SourceName,
		"createdAt":      formatTime(a.CreatedAt),
		"diagnostics":    len(a.Result.Diagnostics),
		"recentTransfer": a.Result.RecentTransfer,
	}
	if t := a.Result.Transfer; t != nil {
		props["transferRank"] = t.Rank.String()
		props["transferDate"] = t.Date
		props["transferReason"] = string(t.Reason)
		props["transferPrice"] = amount(t.Price)
	}
	return props
}

func rightParams(propertyID, group string, rights []registry.ReconstructedRight) []map[string]any {
	out := make([]map[string]any, 0, len(rights))
	for _, right := range rights {
		out = append(out, map[string]any{
			"id":    RightID(propertyID, group, right.Rank),
			"group": group,
			"props": map[string]any{
				"rank":             right.Rank.String(),
				"rankMain":         right.Rank.Main,
				"rankVariant":      right.Rank.Variant,
				"kind":             right.Kind.String(),
				"rightType":        right.RightType,
				"ceiling":          amount(right.Ceiling),
				"claim":            amount(right.Claim),
				"registrationDate": right.RegistrationDate,
				"debtorBackfilled": right.DebtorBackfilled,
			},
		})
	}
	return out
}

func partyParams(links []domain.PartyLink) []map[string]any {
	out := make([]map[string]any, 0, len(links))
	for _, link := range links {
		out = append(out, map[string]any{
			"partyId":     link.Party.ID,
			"role":        link.Role,
			"rightId":     link.RightID,
			"numerator":   link.Numerator,
			"denominator": link.Denominator,
			"props": map[string]any{
				"name":        link.Party.Name,
				"kind":        link.Party.Kind,
				"birthPrefix": link.Party.BirthPrefix,
			},
		})
	}
	return out
}

func merge(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func amount(v *uint64) int64 {
	if v == nil {
		return 0
	}
	return clampAmount(*v)
}

// Bolt integers are signed.
func clampAmount(v uint64) int64 {
	if v > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return formatTime(*t)
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}

func propertyOrderClause(field, order string) string {
	dir := "DESC"
	if strings.EqualFold(order, "ASC") {
		dir = "ASC"
	}
	switch strings.ToLower(field) {
	case "address":
		return fmt.Sprintf("p.address %s", dir)
	case "totalceiling":
		return fmt.Sprintf("coalesce(p.totalCeiling, 0) %s", dir)
	case "liencount":
		return fmt.Sprintf("coalesce(p.lienCount, 0) %s", dir)
	case "uniquenumber":
		return fmt.Sprintf("p.uniqueNumber %s", dir)
	default:
		return fmt.Sprintf("datetime(p.updatedAt) %s", dir)
	}
}
