package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

type inquiryModel struct {
	bun.BaseModel `bun:"table:inquiries"`

	ID              string    `bun:"id,pk"`
	CustomerName    string    `bun:"customer_name,notnull"`
	CustomerContact string    `bun:"customer_contact,notnull"`
	Subject         string    `bun:"subject,notnull"`
	Question        string    `bun:"question,notnull"`
	Channel         string    `bun:"channel,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

func inquiryFromDomain(i *domain.Inquiry) *inquiryModel {
	return &inquiryModel{
		ID:              i.ID,
		CustomerName:    i.CustomerName,
		CustomerContact: i.CustomerContact,
		Subject:         i.Subject,
		Question:        i.Question,
		Channel:         string(i.Channel),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func (m *inquiryModel) toDomain() domain.Inquiry {
	return domain.Inquiry{
		ID:              m.ID,
		CustomerName:    m.CustomerName,
		CustomerContact: m.CustomerContact,
		Subject:         m.Subject,
		Question:        m.Question,
		Channel:         domain.Channel(m.Channel),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type documentModel struct {
	bun.BaseModel `bun:"table:documents"`

	ID            string    `bun:"id,pk"`
	InquiryID     string    `bun:"inquiry_id,notnull"`
	SourceType    string    `bun:"source_type,notnull"`
	FileName      string    `bun:"file_name,notnull"`
	MIMEType      string    `bun:"mime_type,notnull"`
	ContentRef    string    `bun:"content_ref,notnull"`
	Size          int64     `bun:"size,notnull"`
	Text          string    `bun:"text,notnull"`
	Status        string    `bun:"status,notnull"`
	OCRConfidence *float64  `bun:"ocr_confidence"`
	ChunkCount    int       `bun:"chunk_count,notnull"`
	VectorCount   int       `bun:"vector_count,notnull"`
	LastError     string    `bun:"last_error,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

func documentFromDomain(d *domain.Document) *documentModel {
	return &documentModel{
		ID:            d.ID,
		InquiryID:     d.InquiryID,
		SourceType:    string(d.SourceType),
		FileName:      d.FileName,
		MIMEType:      d.MIMEType,
		ContentRef:    d.ContentRef,
		Size:          d.Size,
		Text:          d.Text,
		Status:        string(d.Status),
		OCRConfidence: d.OCRConfidence,
		ChunkCount:    d.ChunkCount,
		VectorCount:   d.VectorCount,
		LastError:     d.LastError,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (m *documentModel) toDomain() domain.Document {
	return domain.Document{
		ID:            m.ID,
		InquiryID:     m.InquiryID,
		SourceType:    domain.SourceType(m.SourceType),
		FileName:      m.FileName,
		MIMEType:      m.MIMEType,
		ContentRef:    m.ContentRef,
		Size:          m.Size,
		Text:          m.Text,
		Status:        domain.DocumentStatus(m.Status),
		OCRConfidence: m.OCRConfidence,
		ChunkCount:    m.ChunkCount,
		VectorCount:   m.VectorCount,
		LastError:     m.LastError,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type chunkModel struct {
	bun.BaseModel `bun:"table:chunks"`

	ID              string `bun:"id,pk"`
	DocumentID      string `bun:"document_id,notnull"`
	Position        int    `bun:"position,notnull"`
	StartOffset     int    `bun:"start_offset,notnull"`
	EndOffset       int    `bun:"end_offset,notnull"`
	Content         string `bun:"content,notnull"`
	ContextPrefix   string `bun:"context_prefix,notnull"`
	EnrichedContent string `bun:"enriched_content,notnull"`
	Level           string `bun:"level,notnull"`
	ParentChunkID   string `bun:"parent_chunk_id,notnull"`
	SourceType      string `bun:"source_type,notnull"`
}

func chunkFromDomain(documentID string, c *domain.Chunk) *chunkModel {
	level := c.Level
	if level == "" {
		level = domain.ChunkFlat
	}
	return &chunkModel{
		ID:              c.ID,
		DocumentID:      documentID,
		Position:        c.Index,
		StartOffset:     c.StartOffset,
		EndOffset:       c.EndOffset,
		Content:         c.Content,
		ContextPrefix:   c.ContextPrefix,
		EnrichedContent: c.EnrichedContent,
		Level:           string(level),
		ParentChunkID:   c.ParentChunkID,
		SourceType:      string(c.SourceType),
	}
}

func (m *chunkModel) toDomain() domain.Chunk {
	return domain.Chunk{
		ID:              m.ID,
		DocumentID:      m.DocumentID,
		Index:           m.Position,
		StartOffset:     m.StartOffset,
		EndOffset:       m.EndOffset,
		Content:         m.Content,
		ContextPrefix:   m.ContextPrefix,
		EnrichedContent: m.EnrichedContent,
		Level:           domain.ChunkLevel(m.Level),
		ParentChunkID:   m.ParentChunkID,
		SourceType:      domain.SourceType(m.SourceType),
	}
}

type evidenceModel struct {
	bun.BaseModel `bun:"table:retrieval_evidence"`

	Seq       int64     `bun:"seq,pk,autoincrement"`
	ID        string    `bun:"id,notnull,unique"`
	InquiryID string    `bun:"inquiry_id,notnull"`
	ChunkID   string    `bun:"chunk_id,notnull"`
	Score     float64   `bun:"score,notnull"`
	Rank      int       `bun:"rank,notnull"`
	Question  string    `bun:"question,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers"`

	ID               string     `bun:"id,pk"`
	InquiryID        string     `bun:"inquiry_id,notnull,unique:answers_inquiry_version"`
	Version          int        `bun:"version,notnull,unique:answers_inquiry_version"`
	Question         string     `bun:"question,notnull"`
	Verdict          string     `bun:"verdict,notnull"`
	Confidence       float64    `bun:"confidence,notnull"`
	Reason           string     `bun:"reason,notnull"`
	Tone             string     `bun:"tone,notnull"`
	Channel          string     `bun:"channel,notnull"`
	Status           string     `bun:"status,notnull"`
	Text             string     `bun:"text,notnull"`
	Citations        []string   `bun:"citations,type:jsonb,notnull"`
	RiskFlags        []string   `bun:"risk_flags,type:jsonb,notnull"`
	ReviewScore      *int       `bun:"review_score"`
	ReviewDecision   string     `bun:"review_decision,notnull"`
	ReviewedBy       string     `bun:"reviewed_by,notnull"`
	ReviewComment    string     `bun:"review_comment,notnull"`
	ReviewedAt       *time.Time `bun:"reviewed_at"`
	ApprovalDecision string     `bun:"approval_decision,notnull"`
	ApprovedBy       string     `bun:"approved_by,notnull"`
	ApprovalComment  string     `bun:"approval_comment,notnull"`
	ApprovedAt       *time.Time `bun:"approved_at"`
	SentBy           string     `bun:"sent_by,notnull"`
	SentChannel      string     `bun:"sent_channel,notnull"`
	MessageID        string     `bun:"message_id,notnull"`
	SendRequestID    string     `bun:"send_request_id,notnull"`
	SentAt           *time.Time `bun:"sent_at"`
	CreatedAt        time.Time  `bun:"created_at,notnull"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull"`
}

func answerFromDomain(a *domain.AnswerDraft) *answerModel {
	flags := make([]string, len(a.RiskFlags))
	for i, f := range a.RiskFlags {
		flags[i] = string(f)
	}
	citations := a.Citations
	if citations == nil {
		citations = []string{}
	}
	return &answerModel{
		ID:               a.ID,
		InquiryID:        a.InquiryID,
		Version:          a.Version,
		Question:         a.Question,
		Verdict:          string(a.Verdict),
		Confidence:       a.Confidence,
		Reason:           a.Reason,
		Tone:             string(a.Tone),
		Channel:          string(a.Channel),
		Status:           string(a.Status),
		Text:             a.Text,
		Citations:        citations,
		RiskFlags:        flags,
		ReviewScore:      a.ReviewScore,
		ReviewDecision:   string(a.ReviewDecision),
		ReviewedBy:       a.ReviewedBy,
		ReviewComment:    a.ReviewComment,
		ReviewedAt:       a.ReviewedAt,
		ApprovalDecision: string(a.ApprovalDecision),
		ApprovedBy:       a.ApprovedBy,
		ApprovalComment:  a.ApprovalComment,
		ApprovedAt:       a.ApprovedAt,
		SentBy:           a.SentBy,
		SentChannel:      string(a.SentChannel),
		MessageID:        a.MessageID,
		SendRequestID:    a.SendRequestID,
		SentAt:           a.SentAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (m *answerModel) toDomain() domain.AnswerDraft {
	var flags []domain.RiskFlag
	for _, f := range m.RiskFlags {
		flags = append(flags, domain.RiskFlag(f))
	}
	return domain.AnswerDraft{
		ID:               m.ID,
		InquiryID:        m.InquiryID,
		Version:          m.Version,
		Question:         m.Question,
		Verdict:          domain.Verdict(m.Verdict),
		Confidence:       m.Confidence,
		Reason:           m.Reason,
		Tone:             domain.Tone(m.Tone),
		Channel:          domain.Channel(m.Channel),
		Status:           domain.AnswerStatus(m.Status),
		Text:             m.Text,
		Citations:        m.Citations,
		RiskFlags:        flags,
		ReviewScore:      m.ReviewScore,
		ReviewDecision:   domain.ReviewDecision(m.ReviewDecision),
		ReviewedBy:       m.ReviewedBy,
		ReviewComment:    m.ReviewComment,
		ReviewedAt:       m.ReviewedAt,
		ApprovalDecision: domain.ApprovalOutcome(m.ApprovalDecision),
		ApprovedBy:       m.ApprovedBy,
		ApprovalComment:  m.ApprovalComment,
		ApprovedAt:       m.ApprovedAt,
		SentBy:           m.SentBy,
		SentChannel:      domain.Channel(m.SentChannel),
		MessageID:        m.MessageID,
		SendRequestID:    m.SendRequestID,
		SentAt:           m.SentAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type answerVersionModel struct {
	bun.BaseModel `bun:"table:answer_versions"`

	InquiryID   string `bun:"inquiry_id,pk"`
	LastVersion int    `bun:"last_version,notnull"`
}

type reviewModel struct {
	bun.BaseModel `bun:"table:reviews"`

	Seq          int64                `bun:"seq,pk,autoincrement"`
	ID           string               `bun:"id,notnull,unique"`
	AnswerID     string               `bun:"answer_id,notnull"`
	InquiryID    string               `bun:"inquiry_id,notnull"`
	Reviewer     string               `bun:"reviewer,notnull"`
	Decision     string               `bun:"decision,notnull"`
	Score        int                  `bun:"score,notnull"`
	Summary      string               `bun:"summary,notnull"`
	RevisedDraft string               `bun:"revised_draft,notnull"`
	Issues       []domain.ReviewIssue `bun:"issues,type:jsonb,notnull"`
	CreatedAt    time.Time            `bun:"created_at,notnull"`
}

func reviewFromDomain(r *domain.AIReviewResult) *reviewModel {
	issues := r.Issues
	if issues == nil {
		issues = []domain.ReviewIssue{}
	}
	return &reviewModel{
		ID:           r.ID,
		AnswerID:     r.AnswerID,
		InquiryID:    r.InquiryID,
		Reviewer:     r.Reviewer,
		Decision:     string(r.Decision),
		Score:        r.Score,
		Summary:      r.Summary,
		RevisedDraft: r.RevisedDraft,
		Issues:       issues,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *reviewModel) toDomain() domain.AIReviewResult {
	return domain.AIReviewResult{
		ID:           m.ID,
		AnswerID:     m.AnswerID,
		InquiryID:    m.InquiryID,
		Reviewer:     m.Reviewer,
		Decision:     domain.ReviewDecision(m.Decision),
		Score:        m.Score,
		Summary:      m.Summary,
		RevisedDraft: m.RevisedDraft,
		Issues:       m.Issues,
		CreatedAt:    m.CreatedAt,
	}
}

type sendAttemptModel struct {
	bun.BaseModel `bun:"table:send_attempts"`

	Seq           int64     `bun:"seq,pk,autoincrement"`
	ID            string    `bun:"id,notnull,unique"`
	InquiryID     string    `bun:"inquiry_id,notnull"`
	AnswerID      string    `bun:"answer_id,notnull"`
	SendRequestID string    `bun:"send_request_id,notnull"`
	Outcome       string    `bun:"outcome,notnull"`
	Channel       string    `bun:"channel,notnull"`
	Provider      string    `bun:"provider,notnull"`
	MessageID     string    `bun:"message_id,notnull"`
	Detail        string    `bun:"detail,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func sendAttemptFromDomain(a *domain.SendAttempt) *sendAttemptModel {
	return &sendAttemptModel{
		ID:            a.ID,
		InquiryID:     a.InquiryID,
		AnswerID:      a.AnswerID,
		SendRequestID: a.SendRequestID,
		Outcome:       string(a.Outcome),
		Channel:       string(a.Channel),
		Provider:      a.Provider,
		MessageID:     a.MessageID,
		Detail:        a.Detail,
		CreatedAt:     a.CreatedAt,
	}
}

func (m *sendAttemptModel) toDomain() domain.SendAttempt {
	return domain.SendAttempt{
		ID:            m.ID,
		InquiryID:     m.InquiryID,
		AnswerID:      m.AnswerID,
		SendRequestID: m.SendRequestID,
		Outcome:       domain.SendOutcome(m.Outcome),
		Channel:       domain.Channel(m.Channel),
		Provider:      m.Provider,
		MessageID:     m.MessageID,
		Detail:        m.Detail,
		CreatedAt:     m.CreatedAt,
	}
}
