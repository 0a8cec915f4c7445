package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/pricesheet"
)

type Repository interface {
	CreateClient(ctx context.Context, client entity.Client) error
	Clients(ctx context.Context) ([]entity.Client, error)
	ClientByName(ctx context.Context, name string) (entity.Client, error)
	DeleteClient(ctx context.Context, name string) error
	ReplacePriceSheet(ctx context.Context, sheet entity.PriceSheet) error
	PriceSheetByClientName(ctx context.Context, clientName string) (entity.PriceSheet, error)
}

type Resolver interface {
	FileID(link string) (string, error)
	ResolveTitle(ctx context.Context, link string) (string, error)
}

type Webhook interface {
	Submit(ctx context.Context, payload entity.SubmissionPayload) error
}

type Publisher interface {
	SubmissionCompleted(ctx context.Context, submissionID uuid.UUID, clientName string, fileCount int)
}

type Service struct {
	repo      Repository
	resolver  Resolver
	webhook   Webhook
	publisher Publisher
}

func New(repo Repository, resolver Resolver, webhook Webhook, publisher Publisher) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		webhook:   webhook,
		publisher: publisher,
	}
}

func (s *Service) AddClient(ctx context.Context, client entity.Client) error {
	err := ValidateClient(client)
	if err != nil {
		return err
	}

	client.Name = strings.TrimSpace(client.Name)
	client.PriceSheetLink = strings.TrimSpace(client.PriceSheetLink)
	client.CustomerNumber = strings.TrimSpace(client.CustomerNumber)

	err = s.repo.CreateClient(ctx, client)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "client added", "client", client.Name)

	return nil
}

func (s *Service) Clients(ctx context.Context) ([]entity.Client, error) {
	return s.repo.Clients(ctx)
}

// DeleteClient refuses to touch the store until the caller has confirmed the
// deletion.
func (s *Service) DeleteClient(ctx context.Context, name string, confirmed bool) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: client name is required", entity.ErrInvalidInput)
	}

	if !confirmed {
		return entity.ErrNotConfirmed
	}

	err := s.repo.DeleteClient(ctx, name)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "client deleted", "client", name)

	return nil
}

// ClientDetails resolves the spreadsheet title behind the stored link. A
// failed resolution degrades to an empty title, it never fails the lookup.
func (s *Service) ClientDetails(ctx context.Context, name string) (entity.ClientDetails, error) {
	if strings.TrimSpace(name) == "" {
		return entity.ClientDetails{}, fmt.Errorf("%w: client name is required", entity.ErrInvalidInput)
	}

	client, err := s.repo.ClientByName(ctx, name)
	if err != nil {
		return entity.ClientDetails{}, err
	}

	title, err := s.resolver.ResolveTitle(ctx, client.PriceSheetLink)
	if err != nil {
		slog.WarnContext(ctx, "spreadsheet title resolution failed", "client", client.Name, "error", err)

		title = ""
	}

	return entity.ClientDetails{
		Client:           client,
		SpreadsheetTitle: title,
	}, nil
}

// AssembleSubmission collects everything known about the client into a
// payload. Title resolution and the pricing schema are best effort: their
// absence degrades the payload instead of blocking the submission.
func (s *Service) AssembleSubmission(ctx context.Context, clientName string, files []entity.SubmissionFile) (entity.SubmissionPayload, error) {
	if len(files) == 0 {
		return entity.SubmissionPayload{}, entity.ErrNoFilesProvided
	}

	client, err := s.repo.ClientByName(ctx, clientName)
	if err != nil {
		return entity.SubmissionPayload{}, fmt.Errorf("get client %q: %w", clientName, err)
	}

	payload := entity.SubmissionPayload{
		ID:             uuid.Must(uuid.NewV4()),
		ClientName:     client.Name,
		CustomerNumber: client.CustomerNumber,
		Files:          files,
	}

	fileID, err := s.resolver.FileID(client.PriceSheetLink)
	if err != nil {
		slog.WarnContext(ctx, "price sheet link not recognized", "client", client.Name, "error", err)
	} else {
		payload.PriceSheetID = fileID
	}

	title, err := s.resolver.ResolveTitle(ctx, client.PriceSheetLink)
	if err != nil {
		slog.WarnContext(ctx, "spreadsheet title resolution failed", "client", client.Name, "error", err)
	} else {
		payload.SpreadsheetTitle = title
	}

	sheet, err := s.repo.PriceSheetByClientName(ctx, client.Name)

	switch {
	case err == nil:
		schema, err := json.Marshal(sheet.PricingSchema())
		if err != nil {
			return entity.SubmissionPayload{}, fmt.Errorf("marshal pricing schema: %w", err)
		}

		payload.Schema = schema
	case errors.Is(err, entity.ErrNotFound):
		// no imported price sheet for this client yet
	default:
		return entity.SubmissionPayload{}, fmt.Errorf("get price sheet: %w", err)
	}

	return payload, nil
}

func (s *Service) Submit(ctx context.Context, payload entity.SubmissionPayload) error {
	err := s.webhook.Submit(ctx, payload)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "submission delivered",
		"submission_id", payload.ID,
		"client", payload.ClientName,
		"files", len(payload.Files),
	)

	s.publisher.SubmissionCompleted(ctx, payload.ID, payload.ClientName, len(payload.Files))

	return nil
}

// ImportPriceSheets reads an Excel workbook where every worksheet is one
// client's price list. Each successfully parsed sheet replaces that client's
// stored sheet; broken sheets are reported without failing the whole import.
func (s *Service) ImportPriceSheets(ctx context.Context, filename string, r io.Reader, currency, validFrom, validTo string) (entity.ImportSummary, error) {
	sheets, failures, err := pricesheet.ParseWorkbook(r)
	if err != nil {
		return entity.ImportSummary{}, fmt.Errorf("%w: %s", entity.ErrInvalidInput, err)
	}

	if currency == "" {
		currency = "EUR"
	}

	summary := entity.ImportSummary{
		Imported: []entity.ImportedSheet{},
		Failed:   []entity.FailedSheet{},
	}

	for _, failure := range failures {
		summary.Failed = append(summary.Failed, entity.FailedSheet{
			SheetName: failure.Sheet,
			Reason:    failure.Err.Error(),
		})
	}

	now := time.Now()

	for _, parsed := range sheets {
		sheet := entity.PriceSheet{
			ID:         uuid.Must(uuid.NewV4()),
			ClientName: parsed.Name,
			SheetName:  parsed.Name,
			Currency:   currency,
			ValidFrom:  validFrom,
			ValidTo:    validTo,
			Metadata: entity.SheetMetadata{
				SourceFile: filename,
				ImportedAt: now,
				SheetName:  parsed.Name,
			},
			CreatedAt: now,
			UpdatedAt: now,
			Items:     parsed.Items,
		}

		err = s.repo.ReplacePriceSheet(ctx, sheet)
		if err != nil {
			slog.ErrorContext(ctx, "price sheet import failed", "sheet", parsed.Name, "error", err)

			summary.Failed = append(summary.Failed, entity.FailedSheet{
				SheetName: parsed.Name,
				Reason:    err.Error(),
			})

			continue
		}

		summary.Imported = append(summary.Imported, entity.ImportedSheet{
			ClientName: parsed.Name,
			Items:      len(parsed.Items),
		})

		slog.InfoContext(ctx, "price sheet imported", "client", parsed.Name, "items", len(parsed.Items))
	}

	return summary, nil
}
