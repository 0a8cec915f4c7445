package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/config"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/transport"
)

// Client delivers assembled submissions to the invoicing webhook. One request
// per submission, no retry: the endpoint triggers downstream processing and a
// second attempt could duplicate an invoice.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		client: &http.Client{
			Timeout:   cfg.WebhookTimeout,
			Transport: transport.NewLoggingRoundTripper(http.DefaultTransport),
		},
		url: cfg.WebhookURL,
	}
}

func (c *Client) Submit(ctx context.Context, payload entity.SubmissionPayload) error {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":            payload.ClientName,
		"customer_number": payload.CustomerNumber,
		"drive_file":      payload.SpreadsheetTitle,
		"price_sheet_id":  payload.PriceSheetID,
	}

	for name, value := range fields {
		err := mw.WriteField(name, value)
		if err != nil {
			return fmt.Errorf("write field %q: %w", name, err)
		}
	}

	if len(payload.Schema) > 0 {
		err := mw.WriteField("schema", string(payload.Schema))
		if err != nil {
			return fmt.Errorf("write schema field: %w", err)
		}
	}

	for _, file := range payload.Files {
		part, err := mw.CreatePart(filePartHeader(file))
		if err != nil {
			return fmt.Errorf("create file part %q: %w", file.Name, err)
		}

		_, err = part.Write(file.Data)
		if err != nil {
			return fmt.Errorf("write file part %q: %w", file.Name, err)
		}
	}

	err := mw.Close()
	if err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request: %s", entity.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("%w: unexpected code %d: %s",
			entity.ErrSubmissionFailed, resp.StatusCode, bytes.TrimSpace(detail))
	}

	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func filePartHeader(file entity.SubmissionFile) textproto.MIMEHeader {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)

	return h
}
