package handler

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/careerlens/careerlens/internal/api/response"
	"github.com/careerlens/careerlens/internal/extract"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// NewExtractTextHandler returns an http.HandlerFunc for
// POST /api/v1/extract-text. It accepts a multipart upload under the
// "file" field and returns the extracted plain text.
func NewExtractTextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"A file upload under the \"file\" field is required", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
					"File exceeds the 10 MB upload limit", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to read upload", nil)
			return
		}

		text, err := extract.Text(header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			switch {
			case errors.Is(err, extract.ErrUnsupportedType):
				response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE",
					"Only PDF, DOCX and plain text files are supported", nil)
			case errors.Is(err, extract.ErrEmptyDocument):
				response.Error(w, http.StatusUnprocessableEntity, "EMPTY_DOCUMENT",
					"No text could be extracted from the file", nil)
			default:
				response.Error(w, http.StatusUnprocessableEntity, "EXTRACTION_FAILED",
					"The file could not be parsed", nil)
			}
			return
		}

		response.JSON(w, map[string]any{
			"text":  text,
			"chars": utf8.RuneCountInString(text),
		})
	}
}
