// internals/helpers/oss/image_upload.go
package helper

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
)

/* =======================================================================
   Image validation (decode only, never re-encoded)
======================================================================= */

// ValidateImage sniffs the payload and decodes it. maxSide <= 0 disables the dimension check.
func ValidateImage(data []byte, maxSide int) (string, error) {
	if len(data) == 0 {
		return "", apperror.Validation("empty file", nil)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	var (
		cfg image.Config
		err error
	)
	switch ct {
	case "image/jpeg", "image/png":
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
		if err == nil {
			// full decode catches truncated bodies that DecodeConfig accepts
			_, err = imaging.Decode(bytes.NewReader(data))
		}
	case "image/webp":
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	default:
		return "", apperror.Validation(fmt.Sprintf("unsupported image format %q (use jpg/png/webp)", ct), nil)
	}
	if err != nil {
		return "", apperror.Validation("file is not a readable image", nil).WithErr(err)
	}
	if maxSide > 0 && (cfg.Width > maxSide || cfg.Height > maxSide) {
		return "", apperror.Validation(fmt.Sprintf("image too large (max %dpx per side)", maxSide), nil)
	}
	return ct, nil
}

// ReadImageUpload reads and validates a multipart image. maxBytes <= 0 disables the size check.
func ReadImageUpload(fh *multipart.FileHeader, maxBytes int64, maxSide int) (Upload, error) {
	if fh == nil {
		return Upload{}, apperror.Validation("file is required", nil)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return Upload{}, apperror.Validation(fmt.Sprintf("file too large (max %d bytes)", maxBytes), nil)
	}
	src, err := fh.Open()
	if err != nil {
		return Upload{}, apperror.Validation("cannot open file", nil).WithErr(err)
	}
	defer src.Close()

	r := io.Reader(src)
	if maxBytes > 0 {
		r = io.LimitReader(src, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Upload{}, apperror.Validation("cannot read file", nil).WithErr(err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Upload{}, apperror.Validation(fmt.Sprintf("file too large (max %d bytes)", maxBytes), nil)
	}

	ct, err := ValidateImage(data, maxSide)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}

// IsMultipart reports whether the request body is multipart/form-data.
func IsMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// GetImageFile returns the first file under one of fieldNames, or nil when none was sent.
func GetImageFile(c *fiber.Ctx, fieldNames ...string) *multipart.FileHeader {
	if !IsMultipart(c) {
		return nil
	}
	if len(fieldNames) == 0 {
		fieldNames = []string{"image", "file"}
	}
	for _, name := range fieldNames {
		if fh, err := c.FormFile(name); err == nil && fh != nil && fh.Filename != "" {
			return fh
		}
	}
	return nil
}

// UploadLimits bundles the per-request image constraints handed to controllers.
type UploadLimits struct {
	MaxBytes int64
	MaxSide  int
}

// ReadOptional returns (nil, nil) when none of fieldNames carries a file.
func (l UploadLimits) ReadOptional(c *fiber.Ctx, fieldNames ...string) (*Upload, error) {
	fh := GetImageFile(c, fieldNames...)
	if fh == nil {
		return nil, nil
	}
	up, err := ReadImageUpload(fh, l.MaxBytes, l.MaxSide)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// ReadRequired is ReadOptional with a validation error on the first field name when absent.
func (l UploadLimits) ReadRequired(c *fiber.Ctx, fieldNames ...string) (Upload, error) {
	up, err := l.ReadOptional(c, fieldNames...)
	if err != nil {
		return Upload{}, err
	}
	if up == nil {
		field := "image"
		if len(fieldNames) > 0 {
			field = fieldNames[0]
		}
		return Upload{}, apperror.ValidationField(field, field+" file is required")
	}
	return *up, nil
}
