package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// GetCancerStudies lists cancer studies with pagination support.
func (s *Service) GetCancerStudies(ctx context.Context, args PageArgs) (*StudyList, error) {
	args = args.withDefaults()
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	items, page, err := s.pagedList(ctx, "studies", args, nil)
	if err != nil {
		return nil, err
	}
	return &StudyList{Studies: items, Pagination: page}, nil
}

// GetCancerTypes lists all available cancer types with pagination
// support.
func (s *Service) GetCancerTypes(ctx context.Context, args PageArgs) (*CancerTypeList, error) {
	args = args.withDefaults()
	if err := ValidatePageArgs(args.PageNumber, args.PageSize, args.Limit); err != nil {
		return nil, err
	}
	if err := ValidateSortArgs(args.SortBy, args.Direction); err != nil {
		return nil, err
	}

	items, page, err := s.pagedList(ctx, "cancer-types", args, nil)
	if err != nil {
		return nil, err
	}
	return &CancerTypeList{CancerTypes: items, Pagination: page}, nil
}

// SearchStudies searches studies by keyword in their name or
// description. The upstream has no search endpoint for studies, so the
// full list is fetched and filtered, sorted, and sliced client-side.
func (s *Service) SearchStudies(ctx context.Context, keyword string, args PageArgs) (*StudyList, error) {
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

	all, err := s.client.RequestList(ctx, "GET", "studies", nil, nil)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	var matching []map[string]any
	for _, study := range all {
		name := strings.ToLower(fieldString(study, "name"))
		description := strings.ToLower(fieldString(study, "description"))
		if strings.Contains(name, needle) || strings.Contains(description, needle) {
			matching = append(matching, study)
		}
	}

	if args.SortBy != "" {
		sortRecords(matching, args.SortBy, args.Direction)
	}

	totalCount := len(matching)
	start := args.PageNumber * args.PageSize
	end := start + args.PageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}
	pageItems := matching[start:end]
	pageItems = applyLimit(pageItems, args.Limit)

	// When everything was requested, the page window is moot: report
	// the full count as the page size and no continuation.
	pageSize := args.PageSize
	hasMore := args.PageNumber*args.PageSize+args.PageSize < totalCount
	if args.fetchAll() {
		pageSize = totalCount
		hasMore = false
	}

	return &StudyList{
		Studies: pageItems,
		Pagination: PageInfo{
			Page:       args.PageNumber,
			PageSize:   pageSize,
			TotalFound: totalCount,
			HasMore:    hasMore,
		},
	}, nil
}

// GetStudyDetails returns detailed information for one study.
func (s *Service) GetStudyDetails(ctx context.Context, studyID string) (*StudyDetails, error) {
	if err := ValidateStudyID(studyID); err != nil {
		return nil, err
	}

	study, err := s.client.RequestObject(ctx, "GET", "studies/"+studyID, nil, nil)
	if err != nil {
		return nil, err
	}
	return &StudyDetails{Study: study}, nil
}

// GetMultipleStudies fetches several studies concurrently. Every input
// ID appears in the result map; failed lookups carry an error
// placeholder and never abort the rest.
func (s *Service) GetMultipleStudies(ctx context.Context, studyIDs []string) (*MultiStudyResult, error) {
	agg := s.fanout.FetchKeys(ctx, studyIDs, func(ctx context.Context, studyID string) (map[string]any, error) {
		return s.client.RequestObject(ctx, "GET", "studies/"+studyID, nil, nil)
	})

	return &MultiStudyResult{
		Studies:  agg.Results,
		Metadata: agg.Meta,
	}, nil
}

// fieldString reads a record field as a string, empty when absent.
func fieldString(record map[string]any, key string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// sortRecords orders records by the string form of one field.
func sortRecords(records []map[string]any, sortBy, direction string) {
	reverse := strings.ToUpper(direction) == "DESC"
	sort.SliceStable(records, func(i, j int) bool {
		a := fieldString(records[i], sortBy)
		b := fieldString(records[j], sortBy)
		if reverse {
			return a > b
		}
		return a < b
	})
}
