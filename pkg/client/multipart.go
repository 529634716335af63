package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// multipartPayload encodes values for the named keys. Empty strings and nil
// files are skipped; files are read through their Open func.
func multipartPayload(values model.Values, keys ...string) (*payload, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, key := range keys {
		switch value := values[key].(type) {
		case nil:
		case *model.File:
			if value == nil {
				continue
			}
			if err := writeFilePart(writer, key, value); err != nil {
				return nil, err
			}
		case []string:
			for _, item := range value {
				if err := writer.WriteField(key, item); err != nil {
					return nil, fmt.Errorf("client: encode %s: %w", key, err)
				}
			}
		default:
			text := strings.TrimSpace(model.StringValue(value))
			if text == "" {
				continue
			}
			if err := writer.WriteField(key, text); err != nil {
				return nil, fmt.Errorf("client: encode %s: %w", key, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("client: encode multipart: %w", err)
	}
	return &payload{contentType: writer.FormDataContentType(), data: buf.Bytes()}, nil
}

func writeFilePart(writer *multipart.Writer, key string, file *model.File) error {
	if file.Open == nil {
		return fmt.Errorf("client: file %q for %s has no content", file.Name, key)
	}
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("client: open %s: %w", file.Name, err)
	}
	defer src.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(key), escapeQuotes(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", key, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("client: copy %s: %w", file.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
