package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/receipt"
)

// maxImportBodySize allows for the multipart envelope around a file of
// aisleimport.MaxImportSize bytes. The service enforces the file limit.
const maxImportBodySize = aisleimport.MaxImportSize + 64<<10

// ReceiptLister pages through the import history. *receipt.SQLiteRepository
// satisfies it.
type ReceiptLister interface {
	List(ctx context.Context, filter receipt.Filter) (*receipt.ListResult, error)
}

// importRowsRequest is the JSON form of an aisle import.
type importRowsRequest struct {
	Source string            `json:"source"`
	Rows   []aisleimport.Row `json:"rows"`
}

// handleImportAisles applies an aisle definition file to a facility,
// creating the facility when it does not exist.
//
// The file is accepted three ways:
//   - multipart/form-data with a "file" field
//   - a raw text/csv body, with ?source= naming it
//   - application/json with {"source": ..., "rows": [...]}
//
// Row problems are reported as warnings in the 200 response; only
// unreadable input fails the request.
func (s *Server) handleImportAisles(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "facility")

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "text/csv"
	}

	var res *aisleimport.ImportResult
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxImportBodySize); err != nil {
			writeBadRequest(w, "failed to parse multipart form: file may be too large")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeBadRequest(w, "missing required 'file' field in form data")
			return
		}
		defer file.Close()

		s.logger.Info("aisle file received", "facility", facilityID, "filename", header.Filename, "size", header.Size)
		res, err = s.importer.ImportCSV(r.Context(), facilityID, header.Filename, file)
		if err != nil {
			s.writeImportError(w, r, err)
			return
		}

	case "application/json":
		var req importRowsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Rows) == 0 {
			s.writeDomainError(w, r, aisleimport.ErrNoRows)
			return
		}
		if req.Source == "" {
			req.Source = "api"
		}
		res, err = s.importer.ImportRows(r.Context(), facilityID, req.Source, req.Rows)
		if err != nil {
			s.writeImportError(w, r, err)
			return
		}

	case "text/csv", "text/plain", "application/octet-stream":
		source := r.URL.Query().Get("source")
		if source == "" {
			source = "api"
		}
		res, err = s.importer.ImportCSV(r.Context(), facilityID, source, r.Body)
		if err != nil {
			s.writeImportError(w, r, err)
			return
		}

	default:
		writeError(w, http.StatusUnsupportedMediaType, ErrCodeUnsupportedType,
			"content type must be multipart/form-data, text/csv or application/json")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// writeImportError reports a failed import. A body cut off by the size
// limit is 413 like an oversized file.
func (s *Server) writeImportError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = aisleimport.ErrFileTooLarge
	}
	s.logger.Warn("aisle import failed", "facility", chi.URLParam(r, "facility"), "error", err)
	s.writeDomainError(w, r, err)
}

// handleListImports returns the facility's import receipts, most recent
// first. Query parameters: status, limit (max 200) and offset.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	if s.receipts == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "import history is not recorded")
		return
	}

	q := r.URL.Query()
	filter := receipt.Filter{
		Facility: chi.URLParam(r, "facility"),
		Status:   receipt.Status(q.Get("status")),
	}
	switch filter.Status {
	case "", receipt.StatusCompleted, receipt.StatusPartial, receipt.StatusFailed:
	default:
		writeBadRequest(w, "status must be completed, partial or failed")
		return
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	res, err := s.receipts.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing import receipts failed", "error", err)
		writeInternalError(w, "failed to list import receipts")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
