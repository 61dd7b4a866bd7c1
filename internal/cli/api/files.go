package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFile sends one file as multipart field "file". The body is streamed
// through a pipe so large files are never buffered in memory.
func (c *Client) UploadFile(ctx context.Context, token string, f UploadFile, description string) (*Envelope[FileItem], error) {
	if f.Open == nil {
		return nil, fmt.Errorf("upload %s: no content", f.Name)
	}
	src, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer src.Close()
		pw.CloseWithError(writeUploadBody(mw, f, src, description))
	}()

	env, err := Request[FileItem](ctx, c, http.MethodPost, "/files/upload",
		&Multipart{ContentType: mw.FormDataContentType(), Body: pr}, token)
	// разблокируем писателя, если сервер не дочитал тело
	_ = pr.Close()
	return env, err
}

func writeUploadBody(mw *multipart.Writer, f UploadFile, src io.Reader, description string) error {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if description != "" {
		if err := mw.WriteField("description", description); err != nil {
			return err
		}
	}
	return mw.Close()
}

// ListFiles returns one page of files. An empty Type means "all".
func (c *Client) ListFiles(ctx context.Context, token string, q ListQuery) (*Envelope[FileList], error) {
	return Request[FileList](ctx, c, http.MethodGet, "/files?"+q.Values().Encode(), nil, token)
}

// Values encodes the query the way the backend expects it.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	typ := q.Type
	if typ == "" {
		typ = "all"
	}
	v.Set("type", typ)
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

func (c *Client) GetFile(ctx context.Context, token, id string) (*Envelope[FileItem], error) {
	return Request[FileItem](ctx, c, http.MethodGet, "/files/"+url.PathEscape(id), nil, token)
}

func (c *Client) DeleteFile(ctx context.Context, token, id string) (*MessageEnvelope, error) {
	return Request[json.RawMessage](ctx, c, http.MethodDelete, "/files/"+url.PathEscape(id), nil, token)
}

func (c *Client) StorageUsage(ctx context.Context, token string) (*Envelope[StorageUsage], error) {
	return Request[StorageUsage](ctx, c, http.MethodGet, "/files/usage", nil, token)
}
