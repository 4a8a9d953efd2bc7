package tools

import (
	"fmt"
	"strings"
)

// ValidationError marks a malformed argument. Unlike transport
// failures, validation errors are raised before any network call and
// are meant to surface to the caller as-is, never folded into an
// {"error": ...} envelope.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Accepted enum values for gene and projection arguments.
var (
	GeneIDTypes = []string{"ENTREZ_GENE_ID", "HUGO_GENE_SYMBOL"}
	Projections = []string{"ID", "SUMMARY", "DETAILED", "META"}
)

// ValidatePageArgs checks the shared pagination arguments.
func ValidatePageArgs(pageNumber, pageSize int, limit *int) error {
	if pageNumber < 0 {
		return validationErrorf("page_number must be non-negative")
	}
	if pageSize <= 0 {
		return validationErrorf("page_size must be positive")
	}
	if limit != nil && *limit < 0 {
		return validationErrorf("limit must be non-negative if provided")
	}
	return nil
}

// ValidateSortArgs checks the sort direction.
func ValidateSortArgs(sortBy, direction string) error {
	_ = sortBy // any string, including empty, is acceptable
	upper := strings.ToUpper(direction)
	if upper != "ASC" && upper != "DESC" {
		return validationErrorf("direction must be 'ASC' or 'DESC'")
	}
	return nil
}

// ValidateStudyID checks a study identifier.
func ValidateStudyID(studyID string) error {
	if studyID == "" {
		return validationErrorf("study_id cannot be empty")
	}
	return nil
}

// ValidateKeyword checks a search keyword.
func ValidateKeyword(keyword string) error {
	if keyword == "" {
		return validationErrorf("keyword cannot be empty")
	}
	return nil
}

// ValidateGeneIDs checks a gene identifier list.
func ValidateGeneIDs(geneIDs []string) error {
	if len(geneIDs) == 0 {
		return validationErrorf("gene_ids cannot be empty")
	}
	for _, id := range geneIDs {
		if id == "" {
			return validationErrorf("gene_ids cannot contain empty strings")
		}
	}
	return nil
}

// ValidateGeneIDType checks the gene ID type enum.
func ValidateGeneIDType(geneIDType string) error {
	for _, valid := range GeneIDTypes {
		if geneIDType == valid {
			return nil
		}
	}
	return validationErrorf("gene_id_type must be one of %v", GeneIDTypes)
}

// ValidateProjection checks the projection enum.
func ValidateProjection(projection string) error {
	upper := strings.ToUpper(projection)
	for _, valid := range Projections {
		if upper == valid {
			return nil
		}
	}
	return validationErrorf("projection must be one of %v", Projections)
}
