package server

import "github.com/young626-jang/ltv-flask/internal/registry"

type analysisRequest struct {
	SourceName string `json:"sourceName"`
	Text       string `json:"text"`
}

type analysisResponse struct {
	ID           string              `json:"analysisId"`
	PropertyID   string              `json:"propertyId"`
	DocumentHash string              `json:"documentHash"`
	SourceName   string              `json:"sourceName,omitempty"`
	CreatedAt    string              `json:"createdAt"`
	Cached       bool                `json:"cached"`
	TotalCeiling uint64              `json:"totalCeiling"`
	Result       registry.Result     `json:"result"`
	Parties      []partyLinkResponse `json:"parties"`
}

type partyLinkResponse struct {
	PartyID     string `json:"partyId"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Role        string `json:"role"`
	RightID     string `json:"rightId,omitempty"`
	Numerator   int64  `json:"numerator,omitempty"`
	Denominator int64  `json:"denominator,omitempty"`
}

type analysisRecordResponse struct {
	ID           string `json:"analysisId"`
	PropertyID   string `json:"propertyId"`
	DocumentHash string `json:"documentHash"`
	SourceName   string `json:"sourceName,omitempty"`
	LienCount    int    `json:"lienCount"`
	TotalCeiling int64  `json:"totalCeiling"`
	Diagnostics  int    `json:"diagnostics"`
	CreatedAt    string `json:"createdAt"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type propertySummaryResponse struct {
	ID              string `json:"propertyId"`
	UniqueNumber    string `json:"uniqueNumber,omitempty"`
	Address         string `json:"address"`
	Category        string `json:"category"`
	LienCount       int    `json:"lienCount"`
	AttachmentCount int    `json:"attachmentCount"`
	OwnerCount      int    `json:"ownerCount"`
	TotalCeiling    int64  `json:"totalCeiling"`
	Stale           bool   `json:"stale"`
	LastAnalysisID  string `json:"lastAnalysisId,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

type propertiesPageResponse struct {
	Items      []propertySummaryResponse `json:"items"`
	Pagination paginationResponse        `json:"pagination"`
}

type rightResponse struct {
	ID               string `json:"rightId"`
	Rank             string `json:"rank"`
	Kind             string `json:"kind"`
	RightType        string `json:"rightType"`
	Ceiling          int64  `json:"ceiling,omitempty"`
	Claim            int64  `json:"claim,omitempty"`
	RegistrationDate string `json:"registrationDate,omitempty"`
	DebtorBackfilled bool   `json:"debtorBackfilled,omitempty"`
	Creditor         string `json:"creditor,omitempty"`
	Debtor           string `json:"debtor,omitempty"`
}

type ownerResponse struct {
	PartyID     string `json:"partyId"`
	Name        string `json:"name"`
	Numerator   int64  `json:"numerator"`
	Denominator int64  `json:"denominator"`
}

type propertyDetailResponse struct {
	ID             string          `json:"propertyId"`
	UniqueNumber   string          `json:"uniqueNumber,omitempty"`
	Address        string          `json:"address"`
	Category       string          `json:"category"`
	Detail         string          `json:"detail,omitempty"`
	ExclusiveArea  float64         `json:"exclusiveArea,omitempty"`
	LastAnalysisID string          `json:"lastAnalysisId,omitempty"`
	LastViewedAt   string          `json:"lastViewedAt,omitempty"`
	Stale          bool            `json:"stale"`
	Liens          []rightResponse `json:"liens"`
	Attachments    []rightResponse `json:"attachments"`
	Owners         []ownerResponse `json:"owners"`
	AnalysisIDs    []string        `json:"analysisIds"`
}

type creditorExposureResponse struct {
	PartyID      string `json:"partyId"`
	Name         string `json:"name"`
	Properties   int64  `json:"properties"`
	Rights       int64  `json:"rights"`
	TotalCeiling int64  `json:"totalCeiling"`
}
