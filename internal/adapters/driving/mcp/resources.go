package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for answerdesk resources.
	uriScheme = "answerdesk://"

	// inquiryListLimit caps the inquiries resource.
	inquiryListLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "inquiries",
		Name:        "inquiries",
		Description: "Most recent customer inquiries",
		MIMEType:    "application/json",
	}, s.handleInquiriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-text",
		Description: "Extracted text of a document",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "inquiries/{inquiryId}/answers",
		Name:        "inquiry-answers",
		Description: "Every answer version drafted for an inquiry, newest first",
		MIMEType:    "application/json",
	}, s.handleInquiryAnswersResource)
}

func (s *Server) handleInquiriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Inquiry == nil {
		return jsonResource(req.Params.URI, []any{})
	}

	inquiries, err := s.ports.Inquiry.List(ctx, inquiryListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}

	type inquiryInfo struct {
		ID       string `json:"id"`
		Customer string `json:"customer"`
		Subject  string `json:"subject"`
		Channel  string `json:"channel"`
		Created  string `json:"created_at"`
	}
	infos := make([]inquiryInfo, len(inquiries))
	for i := range inquiries {
		infos[i] = inquiryInfo{
			ID:       inquiries[i].ID,
			Customer: inquiries[i].CustomerName,
			Subject:  inquiries[i].Subject,
			Channel:  string(inquiries[i].Channel),
			Created:  inquiries[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := trimURI(req.Params.URI, "documents/", "")
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Text,
		}},
	}, nil
}

func (s *Server) handleInquiryAnswersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	inquiryID := trimURI(req.Params.URI, "inquiries/", "/answers")
	if inquiryID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	answers, err := s.ports.Answer.List(ctx, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}

	out := make([]AnswerOutput, len(answers))
	for i := range answers {
		out[i] = answerOutput(&answers[i])
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// trimURI extracts the id between answerdesk://{prefix} and suffix.
func trimURI(uri, prefix, suffix string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+prefix)
	if !ok {
		return ""
	}
	if suffix != "" {
		if rest, ok = strings.CutSuffix(rest, suffix); !ok {
			return ""
		}
	}
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
