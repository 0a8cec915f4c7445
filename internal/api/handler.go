package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
)

type Service interface {
	AddClient(ctx context.Context, client entity.Client) error
	Clients(ctx context.Context) ([]entity.Client, error)
	DeleteClient(ctx context.Context, name string, confirmed bool) error
	ClientDetails(ctx context.Context, name string) (entity.ClientDetails, error)
	AssembleSubmission(ctx context.Context, clientName string, files []entity.SubmissionFile) (entity.SubmissionPayload, error)
	Submit(ctx context.Context, payload entity.SubmissionPayload) error
	ImportPriceSheets(ctx context.Context, filename string, r io.Reader, currency, validFrom, validTo string) (entity.ImportSummary, error)
}

type Handler struct {
	s Service
}

func NewHandler(s Service) *Handler {
	return &Handler{
		s,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	SendJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type ListClientsResponse struct {
	Clients []entity.Client `json:"clients"`
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.s.Clients(ctx)
	if err != nil {
		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to list clients")
		return
	}

	if clients == nil {
		clients = []entity.Client{}
	}

	SendJSON(ctx, w, http.StatusOK, ListClientsResponse{Clients: clients})
}

type AddClientRequest struct {
	Name           string `json:"name"`
	PriceSheetLink string `json:"priceSheetLink"`
	CustomerNumber string `json:"customerNumber"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) AddClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddClientRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendErr(ctx, w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	err = h.s.AddClient(ctx, entity.Client{
		Name:           req.Name,
		PriceSheetLink: req.PriceSheetLink,
		CustomerNumber: req.CustomerNumber,
	})
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			SendErr(ctx, w, http.StatusBadRequest, err, "invalid request body")
			return
		}

		if errors.Is(err, entity.ErrAlreadyExists) {
			SendErr(ctx, w, http.StatusConflict, err, "client with this name already exists")
			return
		}

		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to add client")

		return
	}

	SendJSON(ctx, w, http.StatusCreated, MessageResponse{
		Message: "client added",
	})
}

// deleteConfirmToken must be sent verbatim by the caller. Anything else is
// treated as an unconfirmed request.
const deleteConfirmToken = "CONFIRM"

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.URL.Query().Get("name")
	confirmed := r.URL.Query().Get("confirm") == deleteConfirmToken

	err := h.s.DeleteClient(ctx, name, confirmed)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			SendErr(ctx, w, http.StatusBadRequest, err, "client name is required")
			return
		}

		if errors.Is(err, entity.ErrNotConfirmed) {
			SendErr(ctx, w, http.StatusBadRequest, err, "deletion not confirmed, pass confirm=CONFIRM")
			return
		}

		if errors.Is(err, entity.ErrNotFound) {
			SendErr(ctx, w, http.StatusNotFound, err, "client with this name does not exist")
			return
		}

		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to delete client")

		return
	}

	SendJSON(ctx, w, http.StatusOK, MessageResponse{
		Message: "client deleted",
	})
}

func (h *Handler) ClientDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := h.s.ClientDetails(ctx, r.URL.Query().Get("name"))
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			SendErr(ctx, w, http.StatusBadRequest, err, "client name is required")
			return
		}

		if errors.Is(err, entity.ErrNotFound) {
			SendErr(ctx, w, http.StatusNotFound, err, "client with this name does not exist")
			return
		}

		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to get client details")

		return
	}

	SendJSON(ctx, w, http.StatusOK, details)
}

type CreateSubmissionResponse struct {
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
}

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		SendErr(ctx, w, http.StatusBadRequest, err, "invalid multipart body")
		return
	}

	clientName := r.FormValue("client_name")

	files, err := readUploadedFiles(r, "files")
	if err != nil {
		SendErr(ctx, w, http.StatusBadRequest, err, "failed to read uploaded files")
		return
	}

	payload, err := h.s.AssembleSubmission(ctx, clientName, files)
	if err != nil {
		if errors.Is(err, entity.ErrNoFilesProvided) {
			SendErr(ctx, w, http.StatusBadRequest, err, "at least one file is required")
			return
		}

		if errors.Is(err, entity.ErrNotFound) {
			SendErr(ctx, w, http.StatusNotFound, err, "client with this name does not exist")
			return
		}

		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to assemble submission")

		return
	}

	err = h.s.Submit(ctx, payload)
	if err != nil {
		if errors.Is(err, entity.ErrSubmissionFailed) {
			SendErr(ctx, w, http.StatusBadGateway, err, "submission was not accepted")
			return
		}

		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to submit")

		return
	}

	SendJSON(ctx, w, http.StatusOK, CreateSubmissionResponse{
		SubmissionID: payload.ID.String(),
		Message:      "submission delivered",
	})
}

func (h *Handler) ImportPriceSheets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		SendErr(ctx, w, http.StatusBadRequest, err, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		SendErr(ctx, w, http.StatusBadRequest, err, "an Excel file is required")
		return
	}

	defer file.Close()

	summary, err := h.s.ImportPriceSheets(ctx, header.Filename, file,
		r.FormValue("currency"), r.FormValue("valid_from"), r.FormValue("valid_to"))
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			SendErr(ctx, w, http.StatusBadRequest, err, "workbook could not be parsed")
			return
		}

		SendErr(ctx, w, http.StatusInternalServerError, err, "failed to import price sheets")

		return
	}

	SendJSON(ctx, w, http.StatusOK, summary)
}

func readUploadedFiles(r *http.Request, field string) ([]entity.SubmissionFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[field]
	files := make([]entity.SubmissionFile, 0, len(headers))

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(f)

		f.Close()

		if err != nil {
			return nil, err
		}

		files = append(files, entity.SubmissionFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return files, nil
}
