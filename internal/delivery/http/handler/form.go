package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/taherx7/Medi-connect/internal/delivery/dto"
)

const maxUploadSize = 5 << 20

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// decodeBody fills dst from a JSON, urlencoded or multipart request body.
func decodeBody(r *http.Request, dst interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return err
		}
		return formDecoder.Decode(dst, r.MultipartForm.Value)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		return formDecoder.Decode(dst, r.PostForm)
	default:
		return json.NewDecoder(r.Body).Decode(dst)
	}
}

func decodeQuery(values url.Values, dst interface{}) error {
	return formDecoder.Decode(dst, values)
}

// formFile returns the named upload of a parsed multipart request, or nil
// when the request carries none. The caller closes it with closeUpload.
func formFile(r *http.Request, field string) (*dto.FileUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &dto.FileUpload{Filename: header.Filename, Content: file}, nil
}

func closeUpload(upload *dto.FileUpload) {
	if upload == nil {
		return
	}
	if closer, ok := upload.Content.(io.Closer); ok {
		closer.Close()
	}
}
