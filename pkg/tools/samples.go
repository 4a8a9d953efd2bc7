package tools

import "context"

// GetSamplesInStudy lists the samples of one study with pagination
// support.
func (s *Service) GetSamplesInStudy(ctx context.Context, studyID string, args PageArgs) (*SampleList, error) {
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

	items, page, err := s.pagedList(ctx, "studies/"+studyID+"/samples", args, nil)
	if err != nil {
		return nil, err
	}
	return &SampleList{Samples: items, Pagination: page}, nil
}

// GetSampleList returns the sample list record for one study and
// sample list ID.
func (s *Service) GetSampleList(ctx context.Context, studyID, sampleListID string) (map[string]any, error) {
	if err := ValidateStudyID(studyID); err != nil {
		return nil, err
	}
	if sampleListID == "" {
		return nil, validationErrorf("sample_list_id cannot be empty")
	}

	return s.client.RequestObject(ctx, "GET", "studies/"+studyID+"/sample_lists/"+sampleListID, nil, nil)
}
