package drive_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/httpclients/drive"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/config"
)

func TestExtractFileID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "sheets url",
			link: "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit#gid=0",
			want: "1AbC-dEf_123",
		},
		{
			name: "drive file url",
			link: "https://drive.google.com/file/d/1AbC-dEf_123/view",
			want: "1AbC-dEf_123",
		},
		{
			name: "open with id param",
			link: "https://drive.google.com/open?id=1AbC-dEf_123",
			want: "1AbC-dEf_123",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := drive.ExtractFileID(tt.link)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := drive.ExtractFileID("https://example.com/not-a-drive-link")
	require.ErrorIs(t, err, entity.ErrInvalidLink)
}

func TestClient_ResolveTitle(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "Preisliste Adler 2026"}`))
	}))
	defer srv.Close()

	client := drive.NewClient(config.Drive{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})

	title, err := client.ResolveTitle(context.Background(), "https://docs.google.com/spreadsheets/d/sheet123/edit")
	require.NoError(t, err)
	require.Equal(t, "Preisliste Adler 2026", title)
	require.Equal(t, "/files/sheet123", gotPath)
	require.Contains(t, gotQuery, "fields=name")
	require.Contains(t, gotQuery, "key=test-key")
}

func TestClient_ResolveTitle_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := drive.NewClient(config.Drive{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})

	_, err := client.ResolveTitle(context.Background(), "https://docs.google.com/spreadsheets/d/missing/edit")
	require.ErrorIs(t, err, entity.ErrResolutionUnavailable)
}

func TestClient_ResolveTitle_MissingAPIKey(t *testing.T) {
	t.Parallel()

	called := false

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := drive.NewClient(config.Drive{BaseURL: srv.URL})

	_, err := client.ResolveTitle(context.Background(), "https://docs.google.com/spreadsheets/d/sheet123/edit")
	require.ErrorIs(t, err, entity.ErrResolutionUnavailable)
	require.False(t, called)
}

func TestClient_ResolveTitle_InvalidLink(t *testing.T) {
	t.Parallel()

	client := drive.NewClient(config.Drive{BaseURL: "http://127.0.0.1:1", APIKey: "test-key"})

	_, err := client.ResolveTitle(context.Background(), "not a link")
	require.ErrorIs(t, err, entity.ErrInvalidLink)
}
