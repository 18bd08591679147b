package web

import (
	"net/http"

	"github.com/BluesFiend/siq-verification/internal/imports"
	"github.com/BluesFiend/siq-verification/internal/logging"
	"github.com/BluesFiend/siq-verification/internal/web/templates"
)

// handleUploadForm renders the CSV upload page.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "Upload", templates.UploadPage(templates.UploadPageData{
		Kinds: kindOptions(),
	}))
}

// handleUpload processes a CSV file upload. The file is streamed through
// the importer row by row; results are rendered directly on the upload
// page rather than behind a redirect.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.renderUploadError(w, r, "", "file too large or invalid form")
		return
	}

	rawKind := r.FormValue("kind")
	kind, err := imports.ParseKind(rawKind)
	if err != nil {
		s.renderUploadError(w, r, rawKind, "unknown file type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderUploadError(w, r, rawKind, "no file provided")
		return
	}
	defer file.Close()

	result, err := s.importer.Run(ctx, kind, file)
	if err != nil {
		// Header-level failures abort the whole file.
		logging.FromContext(ctx).Error("import rejected",
			"kind", kind, "filename", header.Filename, "error", err)
		s.renderUploadError(w, r, rawKind, err.Error())
		return
	}

	logging.FromContext(ctx).Info("import finished",
		"run_id", result.RunID,
		"kind", kind,
		"filename", header.Filename,
		"rows", result.Rows,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	s.renderPage(w, r, "Upload", templates.UploadPage(templates.UploadPageData{
		Kinds:    kindOptions(),
		Selected: string(kind),
		Result:   uploadResultView(result),
	}))
}

func (s *Server) renderUploadError(w http.ResponseWriter, r *http.Request, selected, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	s.renderPage(w, r, "Upload", templates.UploadPage(templates.UploadPageData{
		Kinds:    kindOptions(),
		Selected: selected,
		Error:    msg,
	}))
}

// kindOptions returns the import kinds as select options.
func kindOptions() []templates.Option {
	var opts []templates.Option
	for _, k := range imports.Kinds() {
		opts = append(opts, templates.Option{Value: string(k), Label: k.Label()})
	}
	return opts
}

// uploadResultView converts an import result to its view model. Skipped
// rows surface as warnings, failed rows as errors.
func uploadResultView(result *imports.Result) *templates.UploadResultView {
	v := &templates.UploadResultView{
		Kind:     result.Kind.Label(),
		Rows:     result.Rows,
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
	}
	for _, out := range result.Outcomes {
		if out.Message == "" {
			continue
		}
		level := "warn"
		if out.Kind == imports.OutcomeFailed {
			level = "error"
		}
		v.Notifications = append(v.Notifications, templates.Notification{
			Level:   level,
			Message: out.Message,
		})
	}
	return v
}
