package tools

import (
	"context"
	"fmt"

	"github.com/pickleton89/cbioportal-mcp/pkg/pagination"
)

// GetMolecularProfiles lists the molecular profiles of a study. The
// upstream endpoint ignores paging parameters, so the full list is
// fetched once and sorted and sliced locally.
func (s *Service) GetMolecularProfiles(ctx context.Context, studyID string, args PageArgs) (*MolecularProfileList, error) {
	args = args.withDefaults()
	if err := ValidateStudyID(studyID); err != nil {
		return nil, err
	}
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	pageSize := args.PageSize
	if args.fetchAll() {
		pageSize = pagination.FetchAllPageSize
	}

	profiles, err := s.client.RequestList(ctx, "GET", "studies/"+studyID+"/molecular-profiles", nil, nil)
	if err != nil {
		return nil, err
	}
	if args.SortBy != "" {
		sortRecords(profiles, args.SortBy, args.Direction)
	}

	totalCount := len(profiles)
	start := args.PageNumber * pageSize
	end := start + pageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}
	page := applyLimit(profiles[start:end], args.Limit)

	return &MolecularProfileList{
		MolecularProfiles: page,
		Pagination: PageInfo{
			Page:       args.PageNumber,
			PageSize:   pageSize,
			TotalFound: totalCount,
			HasMore:    start+pageSize < totalCount,
		},
	}, nil
}

// GetClinicalData retrieves patient-level clinical data for a study,
// grouped by patient. With attribute IDs the filtered fetch endpoint is
// used, otherwise the plain listing.
func (s *Service) GetClinicalData(ctx context.Context, studyID string, attributeIDs []string, args PageArgs) (*ClinicalDataResult, error) {
	args = args.withDefaults()
	if err := ValidateStudyID(studyID); err != nil {
		return nil, err
	}
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	params := args.pageParams(map[string]string{"clinicalDataType": "PATIENT"})

	var (
		records []map[string]any
		err     error
	)
	if len(attributeIDs) > 0 {
		body := map[string]any{
			"attributeIds":     attributeIDs,
			"clinicalDataType": "PATIENT",
		}
		records, err = s.client.RequestList(ctx, "POST", "studies/"+studyID+"/clinical-data/fetch", params.Query(), body)
	} else {
		records, err = s.client.RequestList(ctx, "GET", "studies/"+studyID+"/clinical-data", params.Query(), nil)
	}
	if err != nil {
		return nil, err
	}

	hasMore := pagination.HasMore(len(records), params.PageSize)
	records = applyLimit(records, args.Limit)

	byPatient := make(map[string]map[string]any)
	for _, rec := range records {
		patientID, ok := rec["patientId"].(string)
		if !ok || patientID == "" {
			continue
		}
		attrs := byPatient[patientID]
		if attrs == nil {
			attrs = make(map[string]any)
			byPatient[patientID] = attrs
		}
		attrs[fieldString(rec, "clinicalAttributeId")] = rec["value"]
	}

	return &ClinicalDataResult{
		ByPatient: byPatient,
		Pagination: PageInfo{
			Page:       args.PageNumber,
			PageSize:   args.PageSize,
			TotalFound: len(byPatient),
			HasMore:    hasMore,
		},
	}, nil
}

// GetGenePanelsForStudy lists the gene panels of a study, gene lists
// included. With a limit set the walker collects across pages up to
// the limit (zero collects everything), otherwise a single page is
// returned as-is.
func (s *Service) GetGenePanelsForStudy(ctx context.Context, studyID string, args PageArgs) ([]map[string]any, error) {
	args = args.withDefaults()
	if args.SortBy == "" {
		args.SortBy = "genePanelId"
	}
	if err := ValidateStudyID(studyID); err != nil {
		return nil, err
	}
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	endpoint := "studies/" + studyID + "/gene-panels"
	params := args.pageParams(map[string]string{"projection": "DETAILED"})

	if args.Limit != nil {
		return s.walker.Collect(ctx, endpoint, params, "GET", nil, 0, *args.Limit)
	}
	return s.client.RequestList(ctx, "GET", endpoint, params.Query(), nil)
}

// GetGenePanelDetails returns one gene panel by ID. The fetch endpoint
// takes a list of IDs and answers with a list, so the single result is
// unwrapped here.
func (s *Service) GetGenePanelDetails(ctx context.Context, genePanelID, projection string) (map[string]any, error) {
	if genePanelID == "" {
		return nil, validationErrorf("gene_panel_id cannot be empty")
	}
	projection = upperProjection(projection)
	if err := ValidateProjection(projection); err != nil {
		return nil, err
	}

	q := query(map[string]string{"projection": projection})
	panels, err := s.client.RequestList(ctx, "POST", "gene-panels/fetch", q, []string{genePanelID})
	if err != nil {
		return nil, err
	}
	if len(panels) == 0 {
		return nil, fmt.Errorf("gene panel %s not found", genePanelID)
	}
	return panels[0], nil
}
