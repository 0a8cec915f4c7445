package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/httpclients/webhook"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/config"
)

func testPayload() entity.SubmissionPayload {
	return entity.SubmissionPayload{
		ID:               uuid.Must(uuid.NewV4()),
		ClientName:       "Gasthaus Adler",
		CustomerNumber:   "K-1001",
		SpreadsheetTitle: "Preisliste Adler 2026",
		PriceSheetID:     "sheet123",
		Schema:           json.RawMessage(`{"client_name":"Gasthaus Adler","items":[]}`),
		Files: []entity.SubmissionFile{
			{Name: "rechnung.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
			{Name: "lieferschein.jpg", Data: []byte{0xFF, 0xD8}},
		},
	}
}

func TestClient_Submit(t *testing.T) {
	t.Parallel()

	type uploadedFile struct {
		name        string
		contentType string
		data        []byte
	}

	var (
		gotFields map[string]string
		gotFiles  []uploadedFile
		requests  int
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		require.NoError(t, r.ParseMultipartForm(32<<20))

		gotFields = make(map[string]string)
		for name, values := range r.MultipartForm.Value {
			gotFields[name] = values[0]
		}

		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			require.NoError(t, err)

			data, err := io.ReadAll(f)
			require.NoError(t, err)
			require.NoError(t, f.Close())

			gotFiles = append(gotFiles, uploadedFile{
				name:        fh.Filename,
				contentType: fh.Header.Get("Content-Type"),
				data:        data,
			})
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := webhook.NewClient(config.Config{
		WebhookURL:     srv.URL,
		WebhookTimeout: 5 * time.Second,
	})

	payload := testPayload()

	err := client.Submit(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, 1, requests)

	require.Equal(t, "Gasthaus Adler", gotFields["name"])
	require.Equal(t, "K-1001", gotFields["customer_number"])
	require.Equal(t, "Preisliste Adler 2026", gotFields["drive_file"])
	require.Equal(t, "sheet123", gotFields["price_sheet_id"])
	require.JSONEq(t, string(payload.Schema), gotFields["schema"])

	require.Len(t, gotFiles, 2)
	require.Equal(t, "rechnung.pdf", gotFiles[0].name)
	require.Equal(t, "application/pdf", gotFiles[0].contentType)
	require.Equal(t, []byte("%PDF-1.4"), gotFiles[0].data)
	require.Equal(t, "application/octet-stream", gotFiles[1].contentType)
}

func TestClient_Submit_SchemaOmittedWhenEmpty(t *testing.T) {
	t.Parallel()

	var hasSchema bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))

		_, hasSchema = r.MultipartForm.Value["schema"]

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := webhook.NewClient(config.Config{
		WebhookURL:     srv.URL,
		WebhookTimeout: 5 * time.Second,
	})

	payload := testPayload()
	payload.Schema = nil

	err := client.Submit(context.Background(), payload)
	require.NoError(t, err)
	require.False(t, hasSchema)
}

func TestClient_Submit_RejectedWithoutRetry(t *testing.T) {
	t.Parallel()

	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++

		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("processing failed"))
	}))
	defer srv.Close()

	client := webhook.NewClient(config.Config{
		WebhookURL:     srv.URL,
		WebhookTimeout: 5 * time.Second,
	})

	err := client.Submit(context.Background(), testPayload())
	require.ErrorIs(t, err, entity.ErrSubmissionFailed)
	require.ErrorContains(t, err, "500")
	require.ErrorContains(t, err, "processing failed")
	require.Equal(t, 1, requests)
}

func TestClient_Submit_TransportError(t *testing.T) {
	t.Parallel()

	client := webhook.NewClient(config.Config{
		WebhookURL:     "http://127.0.0.1:1",
		WebhookTimeout: time.Second,
	})

	err := client.Submit(context.Background(), testPayload())
	require.ErrorIs(t, err, entity.ErrSubmissionFailed)
}
