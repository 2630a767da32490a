package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/voceapacientilor/vocea/internal/model"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// PostImageConstraints accepts JPEG and PNG photos up to 5MB
var PostImageConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	},
	MaxSize: model.MaxAttachmentSize,
}

var (
	ErrFileTooLarge = errors.New("Fiecare imagine trebuie să fie mai mică de 5MB")
	ErrFileType     = errors.New("Doar imagini JPEG și PNG sunt permise")
)

// Image is an uploaded file that passed validation, held in memory.
type Image struct {
	Filename string
	// ContentType is sniffed from the bytes, never taken from the name.
	ContentType string
	Data        []byte
}

func (i *Image) Size() int64 {
	return int64(len(i.Data))
}

// ReadImage reads one upload and checks size, content (magic numbers) and
// extension. At most MaxSize+1 bytes are read from r.
func ReadImage(filename string, r io.Reader, constraints FileConstraints) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, constraints.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if int64(len(data)) > constraints.MaxSize {
		return nil, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	if !constraints.AllowedMimeTypes[contentType] {
		return nil, ErrFileType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !constraints.AllowedExtensions[ext] {
		return nil, ErrFileType
	}

	return &Image{Filename: filename, ContentType: contentType, Data: data}, nil
}

// ImageSelection screens a post's uploads as they arrive and keeps the
// first five valid images in upload order. Invalid images are excluded
// with a warning and never block the post.
type ImageSelection struct {
	Accepted []*Image
	warnings []string
	dropped  int
}

// Add reads and screens one upload. Only read failures are returned.
func (s *ImageSelection) Add(filename string, r io.Reader) error {
	if filename == "" {
		return nil
	}

	img, err := ReadImage(filename, r, PostImageConstraints)
	if errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrFileType) {
		s.Warn(fmt.Sprintf("%s: %s", filename, err.Error()))
		return nil
	}
	if err != nil {
		return err
	}

	if len(s.Accepted) >= model.MaxAttachmentsPerPost {
		s.dropped++
		return nil
	}
	s.Accepted = append(s.Accepted, img)
	return nil
}

func (s *ImageSelection) Warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Warnings lists per-file problems followed by the count of images past the limit.
func (s *ImageSelection) Warnings() []string {
	if s == nil {
		return nil
	}
	warnings := append([]string(nil), s.warnings...)
	if s.dropped > 0 {
		warnings = append(warnings,
			fmt.Sprintf("Se pot atașa maximum %d imagini; %d au fost ignorate", model.MaxAttachmentsPerPost, s.dropped))
	}
	return warnings
}
