package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.registerStudyTools()
	s.registerGeneTools()
	s.registerSampleTools()
	s.registerProfileTools()
}

func (s *Server) registerStudyTools() {
	s.mcp.AddTool(mcp.NewTool("get_cancer_studies",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get a list of cancer studies in cBioPortal with pagination support"),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.svc.GetCancerStudies(ctx, pageArgs(request))
		return s.result("get cancer studies", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_cancer_types",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get a list of all available cancer types in cBioPortal with pagination support"),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.svc.GetCancerTypes(ctx, pageArgs(request))
		return s.result("get cancer types", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("search_studies",
		append([]mcp.ToolOption{
			mcp.WithDescription("Search for cancer studies by keyword in their name or description with pagination support"),
			mcp.WithString("keyword",
				mcp.Required(),
				mcp.Description("Keyword to search for in study names and descriptions"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword := request.GetString("keyword", "")
		res, err := s.svc.SearchStudies(ctx, keyword, pageArgs(request))
		return s.result("search studies", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_study_details",
		mcp.WithDescription("Get detailed information for a specific cancer study"),
		mcp.WithString("study_id",
			mcp.Required(),
			mcp.Description("The ID of the cancer study, e.g. acc_tcga"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyID := request.GetString("study_id", "")
		res, err := s.svc.GetStudyDetails(ctx, studyID)
		return s.result("get study details", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_multiple_studies",
		mcp.WithDescription("Get details for multiple studies concurrently"),
		mcp.WithArray("study_ids",
			mcp.Required(),
			mcp.Description("List of study IDs to fetch"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyIDs := request.GetStringSlice("study_ids", nil)
		res, err := s.svc.GetMultipleStudies(ctx, studyIDs)
		return s.result("get multiple studies", res, err)
	})
}

func (s *Server) registerGeneTools() {
	s.mcp.AddTool(mcp.NewTool("search_genes",
		append([]mcp.ToolOption{
			mcp.WithDescription("Search for genes by keyword in their symbol or name with pagination support"),
			mcp.WithString("keyword",
				mcp.Required(),
				mcp.Description("Keyword to search for in gene symbols and names"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword := request.GetString("keyword", "")
		res, err := s.svc.SearchGenes(ctx, keyword, pageArgs(request))
		return s.result("search genes", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_genes",
		mcp.WithDescription("Get information about specific genes by their Hugo symbol or Entrez ID using the batch endpoint"),
		mcp.WithArray("gene_ids",
			mcp.Required(),
			mcp.Description("List of gene identifiers"),
		),
		mcp.WithString("gene_id_type",
			mcp.Description("Type of the identifiers: ENTREZ_GENE_ID or HUGO_GENE_SYMBOL"),
		),
		mcp.WithString("projection",
			mcp.Description("Level of detail: ID, SUMMARY, DETAILED or META"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		geneIDs := request.GetStringSlice("gene_ids", nil)
		geneIDType := request.GetString("gene_id_type", "ENTREZ_GENE_ID")
		projection := request.GetString("projection", "SUMMARY")
		res, err := s.svc.GetGenes(ctx, geneIDs, geneIDType, projection)
		return s.result("get genes", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_multiple_genes",
		mcp.WithDescription("Get information about multiple genes concurrently, batching large requests"),
		mcp.WithArray("gene_ids",
			mcp.Required(),
			mcp.Description("List of gene identifiers"),
		),
		mcp.WithString("gene_id_type",
			mcp.Description("Type of the identifiers: ENTREZ_GENE_ID or HUGO_GENE_SYMBOL"),
		),
		mcp.WithString("projection",
			mcp.Description("Level of detail: ID, SUMMARY, DETAILED or META"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		geneIDs := request.GetStringSlice("gene_ids", nil)
		geneIDType := request.GetString("gene_id_type", "ENTREZ_GENE_ID")
		projection := request.GetString("projection", "SUMMARY")
		res, err := s.svc.GetMultipleGenes(ctx, geneIDs, geneIDType, projection)
		return s.result("get multiple genes", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_mutations_in_gene",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get mutations in a specific gene for a given study and sample list, with pagination support"),
			mcp.WithString("gene_id",
				mcp.Required(),
				mcp.Description("Gene identifier, numeric Entrez ID or Hugo symbol"),
			),
			mcp.WithString("study_id",
				mcp.Required(),
				mcp.Description("The ID of the cancer study"),
			),
			mcp.WithString("sample_list_id",
				mcp.Required(),
				mcp.Description("The sample list to query mutations for"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		geneID := request.GetString("gene_id", "")
		studyID := request.GetString("study_id", "")
		sampleListID := request.GetString("sample_list_id", "")
		res, err := s.svc.GetMutationsInGene(ctx, geneID, studyID, sampleListID, pageArgs(request))
		return s.result("get mutations in gene", res, err)
	})
}

func (s *Server) registerSampleTools() {
	s.mcp.AddTool(mcp.NewTool("get_samples_in_study",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get a list of samples associated with a specific cancer study with pagination support"),
			mcp.WithString("study_id",
				mcp.Required(),
				mcp.Description("The ID of the cancer study"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyID := request.GetString("study_id", "")
		res, err := s.svc.GetSamplesInStudy(ctx, studyID, pageArgs(request))
		return s.result("get samples in study", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_sample_list_id",
		mcp.WithDescription("Get sample list information for a specific study and sample list ID"),
		mcp.WithString("study_id",
			mcp.Required(),
			mcp.Description("The ID of the cancer study"),
		),
		mcp.WithString("sample_list_id",
			mcp.Required(),
			mcp.Description("The ID of the sample list"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyID := request.GetString("study_id", "")
		sampleListID := request.GetString("sample_list_id", "")
		res, err := s.svc.GetSampleList(ctx, studyID, sampleListID)
		return s.result("get sample list", res, err)
	})
}

func (s *Server) registerProfileTools() {
	s.mcp.AddTool(mcp.NewTool("get_molecular_profiles",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get a list of molecular profiles available for a specific cancer study with pagination support"),
			mcp.WithString("study_id",
				mcp.Required(),
				mcp.Description("The ID of the cancer study"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyID := request.GetString("study_id", "")
		res, err := s.svc.GetMolecularProfiles(ctx, studyID, pageArgs(request))
		return s.result("get molecular profiles", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_clinical_data",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get clinical data for patients in a study with pagination support, for specific attributes or all"),
			mcp.WithString("study_id",
				mcp.Required(),
				mcp.Description("The ID of the cancer study"),
			),
			mcp.WithArray("attribute_ids",
				mcp.Description("Optional clinical attribute IDs to fetch; all attributes when omitted"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyID := request.GetString("study_id", "")
		attributeIDs := request.GetStringSlice("attribute_ids", nil)
		res, err := s.svc.GetClinicalData(ctx, studyID, attributeIDs, pageArgs(request))
		return s.result("get clinical data", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_gene_panels_for_study",
		append([]mcp.ToolOption{
			mcp.WithDescription("Get all gene panels in a specific study with pagination support"),
			mcp.WithString("study_id",
				mcp.Required(),
				mcp.Description("The ID of the cancer study"),
			),
		}, pageOptions()...)...,
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		studyID := request.GetString("study_id", "")
		res, err := s.svc.GetGenePanelsForStudy(ctx, studyID, pageArgs(request))
		return s.result("get gene panels for study", res, err)
	})

	s.mcp.AddTool(mcp.NewTool("get_gene_panel_details",
		mcp.WithDescription("Get detailed information for a specific gene panel, including the list of genes"),
		mcp.WithString("gene_panel_id",
			mcp.Required(),
			mcp.Description("The ID of the gene panel, e.g. IMPACT341"),
		),
		mcp.WithString("projection",
			mcp.Description("Level of detail: ID, SUMMARY, DETAILED or META"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		genePanelID := request.GetString("gene_panel_id", "")
		projection := request.GetString("projection", "DETAILED")
		res, err := s.svc.GetGenePanelDetails(ctx, genePanelID, projection)
		return s.result("get gene panel details", res, err)
	})
}
