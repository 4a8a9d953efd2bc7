package tools

import "github.com/pickleton89/cbioportal-mcp/pkg/fanout"

// PageInfo is the pagination envelope returned alongside list results.
// TotalFound counts the items in this response, not a global total;
// the upstream API provides none, so HasMore is the full-page
// continuation heuristic.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalFound int  `json:"total_found"`
	HasMore    bool `json:"has_more"`
}

// StudyList is the envelope for study listings.
type StudyList struct {
	Studies    []map[string]any `json:"studies"`
	Pagination PageInfo         `json:"pagination"`
}

// CancerTypeList is the envelope for cancer type listings.
type CancerTypeList struct {
	CancerTypes []map[string]any `json:"cancer_types"`
	Pagination  PageInfo         `json:"pagination"`
}

// StudyDetails wraps a single study record.
type StudyDetails struct {
	Study map[string]any `json:"study"`
}

// MultiStudyResult is the aggregate of a per-study fan-out. Each map
// entry is the study record on success or an error placeholder.
type MultiStudyResult struct {
	Studies  map[string]fanout.Result `json:"studies"`
	Metadata fanout.Meta              `json:"metadata"`
}

// GeneList is the envelope for gene search results.
type GeneList struct {
	Genes      []map[string]any `json:"genes"`
	Pagination PageInfo         `json:"pagination"`
}

// GeneRecords wraps the records returned by the bulk gene endpoint.
type GeneRecords struct {
	Genes []map[string]any `json:"genes"`
}

// MultiGeneResult is the aggregate of a batched gene fan-out, keyed by
// the gene's symbol or entrez ID depending on the requested ID type.
type MultiGeneResult struct {
	Genes    map[string]fanout.Result `json:"genes"`
	Metadata fanout.Meta              `json:"metadata"`
}

// MutationList is the envelope for mutation listings.
type MutationList struct {
	Mutations  []map[string]any `json:"mutations"`
	Pagination PageInfo         `json:"pagination"`
}

// SampleList is the envelope for sample listings.
type SampleList struct {
	Samples    []map[string]any `json:"samples"`
	Pagination PageInfo         `json:"pagination"`
}

// MolecularProfileList is the envelope for molecular profile listings.
type MolecularProfileList struct {
	MolecularProfiles []map[string]any `json:"molecular_profiles"`
	Pagination        PageInfo         `json:"pagination"`
}

// ClinicalDataResult groups clinical data items by patient:
// patientId -> clinicalAttributeId -> value. TotalFound in the
// pagination envelope counts unique patients, consistent with the
// returned structure.
type ClinicalDataResult struct {
	ByPatient  map[string]map[string]any `json:"clinical_data_by_patient"`
	Pagination PageInfo                  `json:"pagination"`
}
