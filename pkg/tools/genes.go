package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pickleton89/cbioportal-mcp/pkg/pagination"
)

// SearchGenes searches genes by keyword in their symbol or name with
// pagination support.
func (s *Service) SearchGenes(ctx context.Context, keyword string, args PageArgs) (*GeneList, error) {
	args = args.withDefaults()
	if err := ValidateKeyword(keyword); err != nil {
		return nil, err
	}
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	items, page, err := s.pagedList(ctx, "genes", args, map[string]string{"keyword": keyword})
	if err != nil {
		return nil, err
	}
	return &GeneList{Genes: items, Pagination: page}, nil
}

// GetGenes looks up genes by Hugo symbol or Entrez ID through the bulk
// endpoint in a single call.
func (s *Service) GetGenes(ctx context.Context, geneIDs []string, geneIDType, projection string) (*GeneRecords, error) {
	if err := ValidateGeneIDs(geneIDs); err != nil {
		return nil, err
	}
	if err := ValidateGeneIDType(geneIDType); err != nil {
		return nil, err
	}
	if err := ValidateProjection(projection); err != nil {
		return nil, err
	}

	q := query(map[string]string{
		"geneIdType": geneIDType,
		"projection": projection,
	})
	records, err := s.client.RequestList(ctx, "POST", "genes/fetch", q, geneIDs)
	if err != nil {
		return nil, err
	}
	return &GeneRecords{Genes: records}, nil
}

// GetMultipleGenes fetches many genes concurrently, splitting the input
// into fixed-size batches with one bulk request per batch. Returned
// records are re-keyed by symbol or entrez ID depending on geneIDType;
// records missing that field are dropped. A failed batch costs its
// records but not the whole operation.
func (s *Service) GetMultipleGenes(ctx context.Context, geneIDs []string, geneIDType, projection string) (*MultiGeneResult, error) {
	if err := ValidateGeneIDType(geneIDType); err != nil {
		return nil, err
	}
	if err := ValidateProjection(projection); err != nil {
		return nil, err
	}

	keyField := "entrezGeneId"
	if geneIDType == "HUGO_GENE_SYMBOL" {
		keyField = "hugoGeneSymbol"
	}

	q := query(map[string]string{
		"geneIdType": geneIDType,
		"projection": projection,
	})
	agg := s.fanout.FetchBatched(ctx, geneIDs, s.batchSize, keyField, func(ctx context.Context, batch []string) ([]map[string]any, error) {
		return s.client.RequestList(ctx, "POST", "genes/fetch", q, batch)
	})

	return &MultiGeneResult{
		Genes:    agg.Results,
		Metadata: agg.Meta,
	}, nil
}

// GetMutationsInGene lists mutations in one gene for a study and
// sample list. The study's MUTATION_EXTENDED molecular profile is
// resolved first; without one the operation fails.
func (s *Service) GetMutationsInGene(ctx context.Context, geneID, studyID, sampleListID string, args PageArgs) (*MutationList, error) {
	args = args.withDefaults()
	if geneID == "" {
		return nil, validationErrorf("gene_id cannot be empty")
	}
	if err := ValidateStudyID(studyID); err != nil {
		return nil, err
	}
	if sampleListID == "" {
		return nil, validationErrorf("sample_list_id cannot be empty")
	}
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	profiles, err := s.client.RequestList(ctx, "GET", "studies/"+studyID+"/molecular-profiles", nil, nil)
	if err != nil {
		return nil, err
	}

	mutationProfileID := ""
	for _, profile := range profiles {
		if fieldString(profile, "molecularAlterationType") == "MUTATION_EXTENDED" {
			mutationProfileID = fieldString(profile, "molecularProfileId")
			break
		}
	}
	if mutationProfileID == "" {
		return nil, fmt.Errorf("no MUTATION_EXTENDED molecular profile found for study %s", studyID)
	}

	extra := map[string]string{
		"studyId":      studyID,
		"sampleListId": sampleListID,
	}
	// Numeric IDs are entrez gene IDs, anything else a Hugo symbol.
	if _, err := strconv.Atoi(geneID); err == nil {
		extra["entrezGeneId"] = geneID
	} else {
		extra["hugoGeneSymbol"] = geneID
	}

	params := args.pageParams(extra)
	endpoint := "molecular-profiles/" + mutationProfileID + "/mutations"
	mutations, err := s.client.RequestList(ctx, "GET", endpoint, params.Query(), nil)
	if err != nil {
		return nil, err
	}

	limited := applyLimit(mutations, args.Limit)
	return &MutationList{
		Mutations: limited,
		Pagination: PageInfo{
			Page:       args.PageNumber,
			PageSize:   args.PageSize,
			TotalFound: len(limited),
			HasMore:    pagination.HasMore(len(mutations), params.PageSize),
		},
	}, nil
}

// upperProjection normalizes a projection argument for query use.
func upperProjection(projection string) string {
	return strings.ToUpper(projection)
}
