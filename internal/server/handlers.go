package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/service"
)

const defaultMaxDocumentBytes = 8 << 20

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	service  *service.AnalysisService
	maxBytes int64
}

// NewAPIHandlers constructs an APIHandlers instance. maxBytes caps uploaded
// documents; zero selects 8 MiB.
func NewAPIHandlers(logger *slog.Logger, svc *service.AnalysisService, maxBytes int64) *APIHandlers {
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}
	return &APIHandlers{
		logger:   logger,
		service:  svc,
		maxBytes: maxBytes,
	}
}

// Register mounts the API routes on r.
func (h *APIHandlers) Register(r chi.Router) {
	r.Post("/analyses", h.createAnalysis)
	r.Get("/analyses/{analysisID}", h.getAnalysis)
	r.Get("/properties", h.listProperties)
	r.Get("/properties/{propertyID}", h.getProperty)
	r.Get("/properties/{propertyID}/analyses", h.listPropertyAnalyses)
	r.Get("/creditors/exposure", h.creditorExposure)
	r.Get("/export/properties", h.exportProperties)
}

// createAnalysis accepts either a JSON envelope or the raw document as the
// request body. Raw uploads name their source with ?source= or X-Source-Name.
func (h *APIHandlers) createAnalysis(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	defer body.Close()

	input, err := h.readDocument(r, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.service.Analyze(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err, "failed to analyse document", "source", input.SourceName)
		return
	}

	status := http.StatusCreated
	if analysis.Cached {
		status = http.StatusOK
	}
	respondJSON(w, status, toAnalysisResponse(analysis))
}

func (h *APIHandlers) readDocument(r *http.Request, body io.Reader) (service.AnalyzeInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var payload analysisRequest
		decoder := json.NewDecoder(body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			return service.AnalyzeInput{}, err
		}
		if strings.TrimSpace(payload.Text) == "" {
			return service.AnalyzeInput{}, errors.New("text is required")
		}
		return service.AnalyzeInput{SourceName: payload.SourceName, Content: []byte(payload.Text)}, nil
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return service.AnalyzeInput{}, err
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = r.Header.Get("X-Source-Name")
	}
	if source == "" && mediaType == "text/html" {
		source = "upload.html"
	}
	return service.AnalyzeInput{SourceName: source, Content: content}, nil
}

func (h *APIHandlers) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	analysis, err := h.service.GetAnalysis(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch analysis", "analysisId", id)
		return
	}
	respondJSON(w, http.StatusOK, toAnalysisResponse(analysis))
}

func (h *APIHandlers) listProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := service.ListPropertiesParams{
		Page:      parseInt(query.Get("page"), 1),
		PageSize:  parseInt(query.Get("pageSize"), 50),
		Search:    query.Get("search"),
		Category:  query.Get("category"),
		StaleOnly: parseBool(query.Get("staleOnly")),
		SortField: query.Get("sortField"),
		SortOrder: query.Get("sortOrder"),
	}
	if v := query.Get("minCeiling"); v != "" {
		minCeiling, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minCeiling")
			return
		}
		params.MinCeiling = minCeiling
	}

	page, err := h.service.ListProperties(r.Context(), params)
	if err != nil {
		h.writeServiceError(w, err, "failed to list properties")
		return
	}

	items := make([]propertySummaryResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, toPropertySummaryResponse(item))
	}
	respondJSON(w, http.StatusOK, propertiesPageResponse{
		Items:      items,
		Pagination: toPaginationResponse(page.Pagination),
	})
}

func (h *APIHandlers) getProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")
	detail, err := h.service.GetProperty(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch property", "propertyId", id)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyDetailResponse(detail))
}

func (h *APIHandlers) listPropertyAnalyses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")
	records, err := h.service.PropertyHistory(r.Context(), id, parseInt(r.URL.Query().Get("limit"), 50))
	if err != nil {
		h.writeServiceError(w, err, "failed to list property analyses", "propertyId", id)
		return
	}
	out := make([]analysisRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, analysisRecordResponse{
			ID:           rec.ID,
			PropertyID:   rec.PropertyID,
			DocumentHash: rec.DocumentHash,
			SourceName:   rec.SourceName,
			LienCount:    rec.LienCount,
			TotalCeiling: rec.TotalCeiling,
			Diagnostics:  rec.Diagnostics,
			CreatedAt:    formatTime(rec.CreatedAt),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *APIHandlers) creditorExposure(w http.ResponseWriter, r *http.Request) {
	exposure, err := h.service.CreditorExposure(r.Context(), parseInt(r.URL.Query().Get("limit"), 50))
	if err != nil {
		h.writeServiceError(w, err, "failed to compute creditor exposure")
		return
	}
	out := make([]creditorExposureResponse, 0, len(exposure))
	for _, e := range exposure {
		out = append(out, creditorExposureResponse{
			PartyID:      e.PartyID,
			Name:         e.Name,
			Properties:   e.Properties,
			Rights:       e.Rights,
			TotalCeiling: e.TotalCeiling,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *APIHandlers) exportProperties(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	items, err := h.service.ExportProperties(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to export properties")
		return
	}

	if format == "json" {
		out := make([]propertySummaryResponse, 0, len(items))
		for _, item := range items {
			out = append(out, toPropertySummaryResponse(item))
		}
		respondJSON(w, http.StatusOK, out)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="properties.csv"`)
	w.WriteHeader(http.StatusOK)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"propertyId", "uniqueNumber", "address", "category", "lienCount", "attachmentCount", "ownerCount", "totalCeiling", "stale", "lastAnalysisId", "updatedAt"})
	for _, item := range items {
		_ = cw.Write([]string{
			item.ID,
			item.UniqueNumber,
			item.Address,
			item.Category,
			strconv.Itoa(item.LienCount),
			strconv.Itoa(item.AttachmentCount),
			strconv.Itoa(item.OwnerCount),
			strconv.FormatInt(item.TotalCeiling, 10),
			strconv.FormatBool(item.Stale),
			item.LastAnalysisID,
			formatTime(item.UpdatedAt),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write csv export", "error", err)
	}
}

func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.logger.Error(msg, append([]any{"error", err}, attrs...)...)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func toAnalysisResponse(a domain.Analysis) analysisResponse {
	parties := make([]partyLinkResponse, 0, len(a.Parties))
	for _, p := range a.Parties {
		parties = append(parties, partyLinkResponse{
			PartyID:     p.Party.ID,
			Name:        p.Party.Name,
			Kind:        p.Party.Kind,
			Role:        p.Role,
			RightID:     p.RightID,
			Numerator:   p.Numerator,
			Denominator: p.Denominator,
		})
	}
	return analysisResponse{
		ID:           a.ID,
		PropertyID:   a.PropertyID,
		DocumentHash: a.DocumentHash,
		SourceName:   a.SourceName,
		CreatedAt:    formatTime(a.CreatedAt),
		Cached:       a.Cached,
		TotalCeiling: a.Result.TotalCeiling(),
		Result:       a.Result,
		Parties:      parties,
	}
}

func toPropertySummaryResponse(item domain.PropertySummary) propertySummaryResponse {
	return propertySummaryResponse{
		ID:              item.ID,
		UniqueNumber:    item.UniqueNumber,
		Address:         item.Address,
		Category:        item.Category,
		LienCount:       item.LienCount,
		AttachmentCount: item.AttachmentCount,
		OwnerCount:      item.OwnerCount,
		TotalCeiling:    item.TotalCeiling,
		Stale:           item.Stale,
		LastAnalysisID:  item.LastAnalysisID,
		UpdatedAt:       formatTime(item.UpdatedAt),
	}
}

func toPropertyDetailResponse(d domain.PropertyDetail) propertyDetailResponse {
	resp := propertyDetailResponse{
		ID:             d.Property.ID,
		UniqueNumber:   d.Property.UniqueNumber,
		Address:        d.Property.Address,
		Category:       d.Property.Category,
		Detail:         d.Property.Detail,
		ExclusiveArea:  d.Property.ExclusiveArea,
		LastAnalysisID: d.Property.LastAnalysisID,
		LastViewedAt:   formatTimePtr(d.Property.LastViewedAt),
		Stale:          d.Property.Stale,
		Liens:          toRightResponses(d.Liens),
		Attachments:    toRightResponses(d.Attachments),
		Owners:         make([]ownerResponse, 0, len(d.Owners)),
		AnalysisIDs:    d.AnalysisIDs,
	}
	if resp.AnalysisIDs == nil {
		resp.AnalysisIDs = []string{}
	}
	for _, o := range d.Owners {
		resp.Owners = append(resp.Owners, ownerResponse{
			PartyID:     o.PartyID,
			Name:        o.Name,
			Numerator:   o.Numerator,
			Denominator: o.Denominator,
		})
	}
	return resp
}

func toRightResponses(links []domain.RightLink) []rightResponse {
	out := make([]rightResponse, 0, len(links))
	for _, l := range links {
		out = append(out, rightResponse{
			ID:               l.ID,
			Rank:             l.Rank,
			Kind:             l.Kind,
			RightType:        l.RightType,
			Ceiling:          l.Ceiling,
			Claim:            l.Claim,
			RegistrationDate: l.RegistrationDate,
			DebtorBackfilled: l.DebtorBackfilled,
			Creditor:         l.Creditor,
			Debtor:           l.Debtor,
		})
	}
	return out
}

func toPaginationResponse(meta service.PaginationMeta) paginationResponse {
	return paginationResponse{
		Page:       meta.Page,
		PageSize:   meta.PageSize,
		TotalItems: meta.TotalItems,
		TotalPages: meta.TotalPages,
	}
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseBool(value string) bool {
	v, err := strconv.ParseBool(value)
	return err == nil && v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
