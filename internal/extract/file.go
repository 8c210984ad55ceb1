package extract

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const fileDownloadTimeout = 15 * time.Second

// FileDownloader fetches private Slack file URLs with the bot credential and
// returns their bytes base64-encoded for the analyzer's multimodal request.
type FileDownloader struct {
	logger *slog.Logger
	client *http.Client
	token  string
}

// NewFileDownloader creates a FileDownloader authenticating with token.
func NewFileDownloader(log *slog.Logger, token string) *FileDownloader {
	if log == nil {
		log = slog.Default()
	}
	return &FileDownloader{
		logger: log.With(slog.String("component", "file_downloader")),
		client: &http.Client{Timeout: fileDownloadTimeout},
		token:  token,
	}
}

// Download performs a bearer-authenticated GET and returns the body as
// base64. It returns "" on any failure; callers treat that as "no attachment
// available", never as an error to propagate.
func (d *FileDownloader) Download(ctx context.Context, fileURL string) string {
	if strings.TrimSpace(fileURL) == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		d.logger.Warn("build download request failed", slog.String("url", fileURL), slog.Any("error", err))
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("file download failed", slog.String("url", fileURL), slog.Any("error", err))
		return ""
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		d.logger.Warn("file download status", slog.String("url", fileURL), slog.Int("status", resp.StatusCode))
		return ""
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.logger.Warn("read file body failed", slog.String("url", fileURL), slog.Any("error", err))
		return ""
	}
	return base64.StdEncoding.EncodeToString(body)
}
