package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/duelrank/internal/errors"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

// confirmed reports whether a destructive request carries confirm=true.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewValidationError(key, "must be an integer")
	}
	return i, nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errors.NewValidationError(key, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}

// uploadBody returns the uploaded file for multipart requests and the raw
// body otherwise, together with a name for logging.
func uploadBody(w http.ResponseWriter, r *http.Request) (io.Reader, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", errors.NewBadRequestError("missing file field")
		}
		return file, header.Filename, nil
	}
	return r.Body, "request body", nil
}
