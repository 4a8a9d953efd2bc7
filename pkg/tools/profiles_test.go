package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/pickleton89/cbioportal-mcp/internal/testutil"
	"github.com/pickleton89/cbioportal-mcp/pkg/pagination"
)

func profileFixture(n int) []map[string]any {
	profiles := make([]map[string]any, n)
	for i := range profiles {
		profiles[i] = map[string]any{
			"molecularProfileId":      fmt.Sprintf("acc_tcga_profile_%02d", i),
			"molecularAlterationType": "MRNA_EXPRESSION",
		}
	}
	return profiles
}

func TestGetMolecularProfilesSortAndSlice(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()
	mock.SetJSON("/studies/acc_tcga/molecular-profiles", profileFixture(7))

	svc := newTestService(t, mock)

	res, err := svc.GetMolecularProfiles(context.Background(), "acc_tcga", PageArgs{
		PageNumber: 1,
		PageSize:   3,
		SortBy:     "molecularProfileId",
		Direction:  "DESC",
	})
	if err != nil {
		t.Fatalf("GetMolecularProfiles() error: %v", err)
	}

	if len(res.MolecularProfiles) != 3 {
		t.Fatalf("got %d profiles, want 3", len(res.MolecularProfiles))
	}
	// Descending sort puts profile_06 first, so page 1 starts at 03.
	if got := res.MolecularProfiles[0]["molecularProfileId"]; got != "acc_tcga_profile_03" {
		t.Errorf("first profile on page 1 = %v, want acc_tcga_profile_03", got)
	}
	if res.Pagination.TotalFound != 7 {
		t.Errorf("TotalFound = %d, want 7", res.Pagination.TotalFound)
	}
	if !res.Pagination.HasMore {
		t.Error("HasMore = false with one profile remaining")
	}
}

func TestGetMolecularProfilesLastPage(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()
	mock.SetJSON("/studies/acc_tcga/molecular-profiles", profileFixture(7))

	svc := newTestService(t, mock)

	res, err := svc.GetMolecularProfiles(context.Background(), "acc_tcga", PageArgs{PageNumber: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("GetMolecularProfiles() error: %v", err)
	}
	if len(res.MolecularProfiles) != 1 {
		t.Fatalf("got %d profiles on the last page, want 1", len(res.MolecularProfiles))
	}
	if res.Pagination.HasMore {
		t.Error("HasMore = true on the last page")
	}
}

func TestGetMolecularProfilesFetchAll(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()
	mock.SetJSON("/studies/acc_tcga/molecular-profiles", profileFixture(7))

	svc := newTestService(t, mock)

	zero := 0
	res, err := svc.GetMolecularProfiles(context.Background(), "acc_tcga", PageArgs{Limit: &zero})
	if err != nil {
		t.Fatalf("GetMolecularProfiles() error: %v", err)
	}

	if len(res.MolecularProfiles) != 7 {
		t.Fatalf("got %d profiles, want all 7", len(res.MolecularProfiles))
	}
	// Fetch-all widens the effective page size, which the envelope reports.
	if res.Pagination.PageSize != pagination.FetchAllPageSize {
		t.Errorf("PageSize = %d, want %d", res.Pagination.PageSize, pagination.FetchAllPageSize)
	}
	if res.Pagination.HasMore {
		t.Error("HasMore = true after fetching everything")
	}
}

func TestGetClinicalDataGroupsByPatient(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()
	mock.SetJSON("/studies/acc_tcga/clinical-data", []map[string]any{
		{"patientId": "TCGA-OR-A5J1", "clinicalAttributeId": "AGE", "value": "58"},
		{"patientId": "TCGA-OR-A5J1", "clinicalAttributeId": "SEX", "value": "Female"},
		{"patientId": "TCGA-OR-A5J2", "clinicalAttributeId": "AGE", "value": "44"},
		{"patientId": "", "clinicalAttributeId": "AGE", "value": "?"},
	})

	svc := newTestService(t, mock)

	res, err := svc.GetClinicalData(context.Background(), "acc_tcga", nil, PageArgs{})
	if err != nil {
		t.Fatalf("GetClinicalData() error: %v", err)
	}

	if len(res.ByPatient) != 2 {
		t.Fatalf("got %d patients, want 2", len(res.ByPatient))
	}
	if got := res.ByPatient["TCGA-OR-A5J1"]["AGE"]; got != "58" {
		t.Errorf("AGE for TCGA-OR-A5J1 = %v, want 58", got)
	}
	if got := res.ByPatient["TCGA-OR-A5J1"]["SEX"]; got != "Female" {
		t.Errorf("SEX for TCGA-OR-A5J1 = %v, want Female", got)
	}
	if res.Pagination.TotalFound != 2 {
		t.Errorf("TotalFound = %d, want unique patient count 2", res.Pagination.TotalFound)
	}
	if got := mock.LastQuery.Get("clinicalDataType"); got != "PATIENT" {
		t.Errorf("clinicalDataType query = %q, want PATIENT", got)
	}
}

func TestGetClinicalDataWithAttributes(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	var gotBody map[string]any
	mock.SetHandler("/studies/acc_tcga/clinical-data/fetch", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[{"patientId": "TCGA-OR-A5J1", "clinicalAttributeId": "AGE", "value": "58"}]`))
	})

	svc := newTestService(t, mock)

	res, err := svc.GetClinicalData(context.Background(), "acc_tcga", []string{"AGE"}, PageArgs{})
	if err != nil {
		t.Fatalf("GetClinicalData() error: %v", err)
	}

	if len(res.ByPatient) != 1 {
		t.Fatalf("got %d patients, want 1", len(res.ByPatient))
	}
	attrs, ok := gotBody["attributeIds"].([]any)
	if !ok || len(attrs) != 1 || attrs[0] != "AGE" {
		t.Errorf("attributeIds in body = %v, want [AGE]", gotBody["attributeIds"])
	}
	if gotBody["clinicalDataType"] != "PATIENT" {
		t.Errorf("clinicalDataType in body = %v, want PATIENT", gotBody["clinicalDataType"])
	}
}

func TestGetClinicalDataLimitAfterHasMore(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	records := make([]map[string]any, 4)
	for i := range records {
		records[i] = map[string]any{
			"patientId":           fmt.Sprintf("TCGA-OR-A5J%d", i),
			"clinicalAttributeId": "AGE",
			"value":               "50",
		}
	}
	mock.SetJSON("/studies/acc_tcga/clinical-data", records)

	svc := newTestService(t, mock)

	limit := 2
	res, err := svc.GetClinicalData(context.Background(), "acc_tcga", nil, PageArgs{PageSize: 4, Limit: &limit})
	if err != nil {
		t.Fatalf("GetClinicalData() error: %v", err)
	}

	if len(res.ByPatient) != 2 {
		t.Errorf("got %d patients, want limit of 2", len(res.ByPatient))
	}
	// A full page means more may exist even though the limit cut in.
	if !res.Pagination.HasMore {
		t.Error("HasMore = false, want the pre-limit full page to count")
	}
	if res.Pagination.PageSize != 4 {
		t.Errorf("PageSize = %d, want the requested 4", res.Pagination.PageSize)
	}
}

func TestGetGenePanelsForStudySinglePage(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()
	mock.SetJSON("/studies/acc_tcga/gene-panels", []map[string]any{
		{"genePanelId": "IMPACT341"},
		{"genePanelId": "IMPACT468"},
	})

	svc := newTestService(t, mock)

	panels, err := svc.GetGenePanelsForStudy(context.Background(), "acc_tcga", PageArgs{})
	if err != nil {
		t.Fatalf("GetGenePanelsForStudy() error: %v", err)
	}

	if len(panels) != 2 {
		t.Fatalf("got %d panels, want 2", len(panels))
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("requests = %d, want a single page fetch", mock.GetRequestCount())
	}
	if got := mock.LastQuery.Get("projection"); got != "DETAILED" {
		t.Errorf("projection query = %q, want DETAILED", got)
	}
	if got := mock.LastQuery.Get("sortBy"); got != "genePanelId" {
		t.Errorf("sortBy query = %q, want the genePanelId default", got)
	}
}

func TestGetGenePanelsForStudyCollectsWithLimit(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	panels := make([]map[string]any, 5)
	for i := range panels {
		panels[i] = map[string]any{"genePanelId": fmt.Sprintf("PANEL%d", i)}
	}
	mock.SetPagedDataset("/studies/acc_tcga/gene-panels", panels)

	svc := newTestService(t, mock)

	limit := 3
	got, err := svc.GetGenePanelsForStudy(context.Background(), "acc_tcga", PageArgs{PageSize: 2, Limit: &limit})
	if err != nil {
		t.Fatalf("GetGenePanelsForStudy() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d panels, want the limit of 3", len(got))
	}

	mock.Reset()
	mock.SetPagedDataset("/studies/acc_tcga/gene-panels", panels)

	zero := 0
	got, err = svc.GetGenePanelsForStudy(context.Background(), "acc_tcga", PageArgs{PageSize: 2, Limit: &zero})
	if err != nil {
		t.Fatalf("GetGenePanelsForStudy() error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d panels, want everything with a zero limit", len(got))
	}
}

func TestGetGenePanelDetails(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()

	var gotBody []string
	mock.SetHandler("/gene-panels/fetch", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[{"genePanelId": "IMPACT341", "genes": [{"hugoGeneSymbol": "TP53"}]}]`))
	})

	svc := newTestService(t, mock)

	panel, err := svc.GetGenePanelDetails(context.Background(), "IMPACT341", "detailed")
	if err != nil {
		t.Fatalf("GetGenePanelDetails() error: %v", err)
	}

	if panel["genePanelId"] != "IMPACT341" {
		t.Errorf("panel = %v", panel)
	}
	if len(gotBody) != 1 || gotBody[0] != "IMPACT341" {
		t.Errorf("request body = %v, want [IMPACT341]", gotBody)
	}
	// Lowercase projection input is normalized on the wire.
	if got := mock.LastQuery.Get("projection"); got != "DETAILED" {
		t.Errorf("projection query = %q, want DETAILED", got)
	}
}

func TestGetGenePanelDetailsNotFound(t *testing.T) {
	mock := testutil.NewMockPortal()
	defer mock.Close()
	mock.SetJSON("/gene-panels/fetch", []map[string]any{})

	svc := newTestService(t, mock)

	_, err := svc.GetGenePanelDetails(context.Background(), "NOPE", "DETAILED")
	if err == nil {
		t.Fatal("expected an error for an unknown panel")
	}
	if got := err.Error(); got != "gene panel NOPE not found" {
		t.Errorf("error = %q", got)
	}
}
