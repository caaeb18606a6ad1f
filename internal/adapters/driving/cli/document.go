package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long:  `Upload, ingest, inspect and delete knowledge-base documents and inquiry attachments.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Upload a file",
	Long: `Upload a file to the knowledge base, or attach it to an inquiry with --inquiry.
The document is ingested right away unless --no-ingest is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print a document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document with its chunks and vectors",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentIngestCmd = &cobra.Command{
	Use:   "ingest [doc-id]",
	Short: "Run (or re-run) ingestion for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentIngest,
}

var (
	documentInquiry  string
	documentNoIngest bool
	documentForce    bool
	documentStatus   string
	documentLimit    int
)

func init() {
	documentUploadCmd.Flags().StringVar(&documentInquiry, "inquiry", "", "Attach the document to this inquiry")
	documentUploadCmd.Flags().BoolVar(&documentNoIngest, "no-ingest", false, "Upload only, do not ingest")
	documentListCmd.Flags().StringVar(&documentInquiry, "inquiry", "", "Only documents attached to this inquiry")
	documentListCmd.Flags().StringVar(&documentStatus, "status", "", "Only documents in this status")
	documentListCmd.Flags().IntVarP(&documentLimit, "limit", "n", 50, "Maximum number of documents")

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentIngestCmd.Flags().BoolVar(&documentForce, "force", false,
		"Restart even if another run still holds the document")
	documentCmd.AddCommand(documentIngestCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	ctx := commandContext(cmd)

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", path, domain.ErrInvalidInput, err)
	}
	defer f.Close()

	doc, err := documentService.Upload(ctx, driving.UploadRequest{
		InquiryID: documentInquiry,
		FileName:  filepath.Base(path),
		MIMEType:  mime.TypeByExtension(filepath.Ext(path)),
		Content:   f,
	})
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	cmd.Printf("Uploaded %s as %s\n", doc.FileName, doc.ID)

	if documentNoIngest || ingestionService == nil {
		return nil
	}
	return ingest(cmd, doc.ID, false)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd), domain.DocumentFilter{
		InquiryID: documentInquiry,
		Status:    domain.DocumentStatus(documentStatus),
		Limit:     documentLimit,
	})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %-10s %-14s %4d chunks  %s\n", docs[i].ID, docs[i].Status,
			docs[i].SourceType, docs[i].ChunkCount, docs[i].FileName)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:     %s (%s, %d bytes)\n", doc.FileName, doc.MIMEType, doc.Size)
	cmd.Printf("  Source:   %s\n", doc.SourceType)
	if doc.InquiryID != "" {
		cmd.Printf("  Inquiry:  %s\n", doc.InquiryID)
	}
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Chunks:   %d (%d vectors)\n", doc.ChunkCount, doc.VectorCount)
	if doc.OCRConfidence != nil {
		cmd.Printf("  OCR:      %.2f confidence\n", *doc.OCRConfidence)
	}
	if doc.LastError != "" {
		cmd.Printf("  Error:    %s\n", doc.LastError)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.Chunks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}
	if len(chunks) == 0 {
		cmd.Println("No chunks.")
		return nil
	}

	for i := range chunks {
		c := &chunks[i]
		cmd.Printf("[%d] %s %s [%d:%d]\n", c.Index, c.ID, c.Level, c.StartOffset, c.EndOffset)
		if c.ContextPrefix != "" {
			cmd.Printf("    context: %s\n", c.ContextPrefix)
		}
		cmd.Printf("    %s\n\n", truncate(c.Content, 200))
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	return ingest(cmd, args[0], documentForce)
}

func ingest(cmd *cobra.Command, docID string, force bool) error {
	cmd.Printf("Ingesting %s...\n", docID)
	run := ingestionService.Ingest
	if force {
		run = ingestionService.ForceIngest
	}
	doc, err := run(commandContext(cmd), docID)
	if err != nil {
		return fmt.Errorf("ingest document: %w", err)
	}
	if doc.Status == domain.DocumentFailed {
		cmd.Printf("Ingestion failed: %s\n", doc.LastError)
		return nil
	}
	cmd.Printf("Document %s %s with %d chunks.\n", doc.ID, doc.Status, doc.ChunkCount)
	return nil
}
