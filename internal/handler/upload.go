package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/voceapacientilor/vocea/internal/validation"
)

// maxFieldSize caps a single text field of a multipart form.
const maxFieldSize = 64 << 10

// readPostForm streams a post form part by part. The form lists its text
// fields before the file input, so a body cut short by the request cap still
// yields the post text. Images are screened as they arrive; only the ones
// kept stay in memory.
func readPostForm(r *http.Request) (url.Values, *validation.ImageSelection, error) {
	images := &validation.ImageSelection{}

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
		return r.PostForm, images, err
	}
	if err != nil {
		return url.Values{}, images, err
	}

	values := url.Values{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return values, images, nil
		}
		if err != nil {
			return values, images, err
		}

		switch {
		case part.FormName() == "images":
			err = images.Add(part.FileName(), part)
		case part.FileName() != "":
			// unknown file inputs are skipped
		default:
			var b strings.Builder
			_, err = io.Copy(&b, io.LimitReader(part, maxFieldSize))
			values.Add(part.FormName(), b.String())
		}
		_ = part.Close()

		if err != nil {
			return values, images, err
		}
	}
}

// truncatedUpload reports whether err means the body hit the request cap.
func truncatedUpload(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
