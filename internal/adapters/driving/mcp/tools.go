package mcp

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// defaultListLimit caps list_documents when no limit is given.
const defaultListLimit = 50

// ==================== Inputs ====================

// IngestDocumentInput is the input schema for the ingest_document tool.
type IngestDocumentInput struct {
	DocumentID string `json:"document_id,omitempty" jsonschema:"id of an uploaded document to (re-)ingest"`
	Path       string `json:"path,omitempty" jsonschema:"local file to upload and ingest when document_id is empty"`
	InquiryID  string `json:"inquiry_id,omitempty" jsonschema:"attach the uploaded file to this inquiry; empty adds it to the knowledge base"`
}

// RetrieveAndVerifyInput is the input schema for the retrieve_and_verify tool.
type RetrieveAndVerifyInput struct {
	InquiryID string `json:"inquiry_id" jsonschema:"inquiry the question belongs to"`
	Question  string `json:"question" jsonschema:"the claim or question to verify"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5, max 50)"`
}

// ComposeAnswerInput is the input schema for the compose_answer tool.
type ComposeAnswerInput struct {
	InquiryID string `json:"inquiry_id" jsonschema:"inquiry to answer"`
	Question  string `json:"question,omitempty" jsonschema:"question to answer; defaults to the inquiry's question"`
	Tone      string `json:"tone,omitempty" jsonschema:"brief, technical or professional (default)"`
	Channel   string `json:"channel,omitempty" jsonschema:"email or messenger; defaults to the inquiry's channel"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve"`
}

// AnswerIDInput identifies a draft.
type AnswerIDInput struct {
	AnswerID string `json:"answer_id" jsonschema:"answer draft id"`
}

// ApproveAnswerInput is the input schema for the approve_answer tool.
type ApproveAnswerInput struct {
	AnswerID string `json:"answer_id" jsonschema:"answer draft id"`
	Auto     bool   `json:"auto,omitempty" jsonschema:"run the automated approval gate instead of a human approval"`
	Approver string `json:"approver,omitempty" jsonschema:"name of the human approver"`
	Comment  string `json:"comment,omitempty" jsonschema:"approval comment"`
}

// SendAnswerInput is the input schema for the send_answer tool.
type SendAnswerInput struct {
	AnswerID      string `json:"answer_id" jsonschema:"approved answer draft id"`
	Channel       string `json:"channel,omitempty" jsonschema:"override the draft's channel"`
	SendRequestID string `json:"send_request_id,omitempty" jsonschema:"idempotency key; repeating it never sends twice"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	InquiryID string `json:"inquiry_id,omitempty" jsonschema:"only documents attached to this inquiry"`
	Status    string `json:"status,omitempty" jsonschema:"only documents in this status, e.g. INDEXED or FAILED"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of documents (default 50)"`
}

// ==================== Outputs ====================

// DocumentOutput describes a document.
type DocumentOutput struct {
	ID         string   `json:"id"`
	InquiryID  string   `json:"inquiry_id,omitempty"`
	FileName   string   `json:"file_name"`
	SourceType string   `json:"source_type"`
	Status     string   `json:"status"`
	ChunkCount int      `json:"chunk_count"`
	OCR        *float64 `json:"ocr_confidence,omitempty"`
	LastError  string   `json:"last_error,omitempty"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// EvidenceOutput is one retrieved chunk.
type EvidenceOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Excerpt    string  `json:"excerpt"`
	SourceType string  `json:"source_type"`
}

// VerificationOutput is the output schema for the retrieve_and_verify tool.
type VerificationOutput struct {
	Verdict    string           `json:"verdict"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason"`
	RiskFlags  []string         `json:"risk_flags"`
	Evidence   []EvidenceOutput `json:"evidence"`
}

// ReviewOutput is one review row.
type ReviewOutput struct {
	ID           string   `json:"id"`
	Reviewer     string   `json:"reviewer"`
	Decision     string   `json:"decision"`
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	RevisedDraft string   `json:"revised_draft,omitempty"`
	Issues       []string `json:"issues,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// AnswerOutput describes a draft.
type AnswerOutput struct {
	ID               string         `json:"id"`
	InquiryID        string         `json:"inquiry_id"`
	Version          int            `json:"version"`
	Status           string         `json:"status"`
	Verdict          string         `json:"verdict"`
	Confidence       float64        `json:"confidence"`
	Tone             string         `json:"tone"`
	Channel          string         `json:"channel"`
	Text             string         `json:"text"`
	Citations        []string       `json:"citations"`
	RiskFlags        []string       `json:"risk_flags"`
	ReviewScore      *int           `json:"review_score,omitempty"`
	ReviewDecision   string         `json:"review_decision,omitempty"`
	ApprovalDecision string         `json:"approval_decision,omitempty"`
	MessageID        string         `json:"message_id,omitempty"`
	Reviews          []ReviewOutput `json:"reviews,omitempty"`
}

// ApprovalOutput is the output schema for the approve_answer tool.
type ApprovalOutput struct {
	Decision    string       `json:"decision"`
	Reason      string       `json:"reason,omitempty"`
	FailedGates []string     `json:"failed_gates,omitempty"`
	Answer      AnswerOutput `json:"answer"`
}

// SendOutput is the output schema for the send_answer tool.
type SendOutput struct {
	Outcome       string `json:"outcome"`
	SendRequestID string `json:"send_request_id"`
	Provider      string `json:"provider"`
	MessageID     string `json:"message_id"`
	Duplicate     bool   `json:"duplicate"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Upload a local file (or re-run an uploaded document) through extraction, chunking and indexing",
	}, s.handleIngestDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_and_verify",
		Description: "Retrieve evidence for a question and judge it SUPPORTED, CONDITIONAL or REFUTED",
	}, s.handleRetrieveAndVerify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compose_answer",
		Description: "Verify a question and create a new DRAFT reply for an inquiry",
	}, s.handleComposeAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "review_answer",
		Description: "Run the automated reviewer on a draft; moves it to REVIEWED",
	}, s.handleReviewAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "approve_answer",
		Description: "Approve a REVIEWED draft as a human, or run the automated approval gate",
	}, s.handleApproveAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_answer",
		Description: "Dispatch an APPROVED draft; idempotent per send_request_id",
	}, s.handleSendAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_answer",
		Description: "Get an answer draft with its review history",
	}, s.handleGetAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List documents, newest first",
	}, s.handleListDocuments)
}

func (s *Server) handleIngestDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, DocumentOutput{}, errIngestionDisabled
	}

	docID := input.DocumentID
	if docID == "" {
		if input.Path == "" {
			return nil, DocumentOutput{}, toolError("ingest_document",
				fmt.Errorf("document_id or path is required: %w", domain.ErrInvalidInput))
		}
		doc, err := s.upload(ctx, input.Path, input.InquiryID)
		if err != nil {
			return nil, DocumentOutput{}, toolError("ingest_document", err)
		}
		docID = doc.ID
	}

	doc, err := s.ports.Ingestion.Ingest(ctx, docID)
	if err != nil {
		return nil, DocumentOutput{}, toolError("ingest_document", err)
	}
	return nil, documentOutput(doc), nil
}

func (s *Server) upload(ctx context.Context, path, inquiryID string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrInvalidInput)
	}
	defer f.Close()

	return s.ports.Document.Upload(ctx, driving.UploadRequest{
		InquiryID: inquiryID,
		FileName:  filepath.Base(path),
		MIMEType:  mime.TypeByExtension(filepath.Ext(path)),
		Content:   f,
	})
}

func (s *Server) handleRetrieveAndVerify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveAndVerifyInput,
) (*mcp.CallToolResult, VerificationOutput, error) {
	res, err := s.ports.Verification.RetrieveAndVerify(ctx, input.InquiryID, input.Question, input.TopK)
	if err != nil {
		return nil, VerificationOutput{}, toolError("retrieve_and_verify", err)
	}

	out := VerificationOutput{
		Verdict:    string(res.Verdict),
		Confidence: res.Confidence,
		Reason:     res.Reason,
		RiskFlags:  flagStrings(res.RiskFlags),
		Evidence:   make([]EvidenceOutput, len(res.Evidence)),
	}
	for i, ev := range res.Evidence {
		out.Evidence[i] = EvidenceOutput{
			ChunkID:    ev.ChunkID,
			DocumentID: ev.DocumentID,
			Score:      ev.Score,
			Excerpt:    ev.Excerpt,
			SourceType: string(ev.SourceType),
		}
	}
	return nil, out, nil
}

func (s *Server) handleComposeAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComposeAnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	req := driving.ComposeRequest{
		InquiryID: input.InquiryID,
		Question:  input.Question,
		Tone:      domain.ParseTone(input.Tone),
		TopK:      input.TopK,
	}
	if input.Channel != "" {
		req.Channel = domain.ParseChannel(input.Channel)
	}

	draft, err := s.ports.Answer.Compose(ctx, req)
	if err != nil {
		return nil, AnswerOutput{}, toolError("compose_answer", err)
	}
	return nil, answerOutput(draft), nil
}

func (s *Server) handleReviewAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerIDInput,
) (*mcp.CallToolResult, ReviewOutput, error) {
	res, err := s.ports.Answer.Review(ctx, input.AnswerID)
	if err != nil {
		return nil, ReviewOutput{}, toolError("review_answer", err)
	}
	return nil, reviewOutput(res), nil
}

func (s *Server) handleApproveAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ApproveAnswerInput,
) (*mcp.CallToolResult, ApprovalOutput, error) {
	if input.Auto {
		decision, err := s.ports.Answer.AutoApprove(ctx, input.AnswerID)
		if err != nil {
			return nil, ApprovalOutput{}, toolError("approve_answer", err)
		}
		draft, err := s.ports.Answer.Get(ctx, input.AnswerID)
		if err != nil {
			return nil, ApprovalOutput{}, toolError("approve_answer", err)
		}
		return nil, ApprovalOutput{
			Decision:    string(decision.Outcome),
			Reason:      decision.Reason,
			FailedGates: decision.FailedGates(),
			Answer:      answerOutput(draft),
		}, nil
	}

	approver := input.Approver
	if approver == "" {
		approver = "mcp"
	}
	draft, err := s.ports.Answer.Approve(ctx, input.AnswerID, approver, input.Comment)
	if err != nil {
		return nil, ApprovalOutput{}, toolError("approve_answer", err)
	}
	return nil, ApprovalOutput{
		Decision: string(draft.ApprovalDecision),
		Answer:   answerOutput(draft),
	}, nil
}

func (s *Server) handleSendAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendAnswerInput,
) (*mcp.CallToolResult, SendOutput, error) {
	if s.ports.Dispatch == nil {
		return nil, SendOutput{}, errDispatchDisabled
	}

	req := driving.SendRequest{AnswerID: input.AnswerID, SendRequestID: input.SendRequestID}
	if input.Channel != "" {
		req.Channel = domain.ParseChannel(input.Channel)
	}
	res, err := s.ports.Dispatch.Send(ctx, req)
	if err != nil {
		return nil, SendOutput{}, toolError("send_answer", err)
	}
	return nil, SendOutput{
		Outcome:       string(res.Outcome),
		SendRequestID: res.SendRequestID,
		Provider:      res.Provider,
		MessageID:     res.MessageID,
		Duplicate:     res.Duplicate,
	}, nil
}

func (s *Server) handleGetAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerIDInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	draft, err := s.ports.Answer.Get(ctx, input.AnswerID)
	if err != nil {
		return nil, AnswerOutput{}, toolError("get_answer", err)
	}
	reviews, err := s.ports.Answer.Reviews(ctx, input.AnswerID)
	if err != nil {
		return nil, AnswerOutput{}, toolError("get_answer", err)
	}

	out := answerOutput(draft)
	for i := range reviews {
		out.Reviews = append(out.Reviews, reviewOutput(&reviews[i]))
	}
	return nil, out, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	docs, err := s.ports.Document.List(ctx, domain.DocumentFilter{
		InquiryID: input.InquiryID,
		Status:    domain.DocumentStatus(input.Status),
		Limit:     limit,
	})
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", err)
	}

	out := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		out.Documents[i] = documentOutput(&docs[i])
	}
	return nil, out, nil
}

// ==================== Conversion ====================

func documentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         d.ID,
		InquiryID:  d.InquiryID,
		FileName:   d.FileName,
		SourceType: string(d.SourceType),
		Status:     string(d.Status),
		ChunkCount: d.ChunkCount,
		OCR:        d.OCRConfidence,
		LastError:  d.LastError,
	}
}

func answerOutput(a *domain.AnswerDraft) AnswerOutput {
	return AnswerOutput{
		ID:               a.ID,
		InquiryID:        a.InquiryID,
		Version:          a.Version,
		Status:           string(a.Status),
		Verdict:          string(a.Verdict),
		Confidence:       a.Confidence,
		Tone:             string(a.Tone),
		Channel:          string(a.Channel),
		Text:             a.Text,
		Citations:        a.Citations,
		RiskFlags:        flagStrings(a.RiskFlags),
		ReviewScore:      a.ReviewScore,
		ReviewDecision:   string(a.ReviewDecision),
		ApprovalDecision: string(a.ApprovalDecision),
		MessageID:        a.MessageID,
	}
}

func reviewOutput(r *domain.AIReviewResult) ReviewOutput {
	out := ReviewOutput{
		ID:           r.ID,
		Reviewer:     r.Reviewer,
		Decision:     string(r.Decision),
		Score:        r.Score,
		Summary:      r.Summary,
		RevisedDraft: r.RevisedDraft,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	for _, is := range r.Issues {
		out.Issues = append(out.Issues, fmt.Sprintf("[%s] %s", is.Severity, is.Message))
	}
	return out
}

func flagStrings(flags []domain.RiskFlag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}
