// Package ingest forwards uploaded documents to the ingestion backend, which
// answers with ready-made cards.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cardgen-server/core"
	"cardgen-server/transport"

	"github.com/sirupsen/logrus"
)

// FormField is the multipart field files are sent under.
const FormField = "files"

var (
	// ErrUnsupportedKind is returned for a file that is not a PDF, PowerPoint, Word or video file.
	ErrUnsupportedKind = errors.New("unsupported file type")

	// ErrNoFiles is returned when an upload carries no files.
	ErrNoFiles = errors.New("no files to upload")
)

// Kind groups accepted file extensions.
type Kind string

const (
	KindPDF        Kind = "pdf"
	KindPowerPoint Kind = "powerpoint"
	KindWord       Kind = "word"
	KindVideo      Kind = "video"
)

var kinds = map[string]Kind{
	".pdf":  KindPDF,
	".ppt":  KindPowerPoint,
	".pptx": KindPowerPoint,
	".doc":  KindWord,
	".docx": KindWord,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".avi":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
}

// KindOf reports the kind of a file by its name.
func KindOf(name string) (Kind, error) {
	k, ok := kinds[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedKind)
	}
	return k, nil
}

// File is one document to upload.
type File struct {
	Name string
	Body io.Reader
}

// Client uploads files to the ingestion backend.
type Client struct {
	url       string
	statusURL string
	token     string
	client    *http.Client
}

func New(url, statusURL, token string) *Client {
	if statusURL == "" {
		statusURL = url
	}
	return &Client{url: url, statusURL: statusURL, token: token, client: transport.NewClient()}
}

// FromEnv builds a client from UPLOAD_URL, UPLOAD_STATUS_URL and UPLOAD_TOKEN.
func FromEnv() *Client {
	url := os.Getenv("UPLOAD_URL")
	if url == "" {
		logrus.Warn("UPLOAD_URL environment variable not set. Uploads will not work.")
	}
	return New(url, os.Getenv("UPLOAD_STATUS_URL"), os.Getenv("UPLOAD_TOKEN"))
}

// Upload sends files in one multipart request and returns the drafts the
// backend produced. Every file is checked before anything is sent.
func (c *Client) Upload(ctx context.Context, files []File) ([]core.Draft, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, f := range files {
		if _, err := KindOf(f.Name); err != nil {
			return nil, err
		}
	}
	if c.url == "" {
		return nil, transport.SetupError(errors.New("upload URL is not configured"))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(FormField, filepath.Base(f.Name))
		if err != nil {
			return nil, transport.SetupError(err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, transport.SetupError(fmt.Errorf("read %s: %w", f.Name, err))
		}
	}
	if err := mw.Close(); err != nil {
		return nil, transport.SetupError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return nil, transport.SetupError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	log := logrus.WithFields(logrus.Fields{"file_count": len(files), "data_length": buf.Len()})
	log.Debug("Sending upload request")

	body, err := transport.Do(c.client, req, c.token)
	if err != nil {
		log.WithError(err).Error("Upload request failed")
		return nil, err
	}

	var drafts []core.Draft
	if err := json.Unmarshal(body, &drafts); err != nil {
		log.WithError(err).Error("Failed to decode upload response")
		return nil, transport.StatusError(http.StatusBadGateway, "ingestion response is not a card array")
	}

	log.WithField("card_count", len(drafts)).Info("Upload request completed")
	return drafts, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return transport.Ping(ctx, c.client, c.statusURL, c.token)
}
