package handlers

import (
	"context"
	"fmt"

	pkgHTTP "github.com/futig/blueprint-backend/pkg/http"
)

// FileURLResolver turns a Telegram file id into a download URL
type FileURLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// TelegramFiles downloads user files from the Bot API file endpoint
type TelegramFiles struct {
	resolver  FileURLResolver
	connector *pkgHTTP.Connector
	limit     int64
}

func NewTelegramFiles(resolver FileURLResolver, connector *pkgHTTP.Connector, limit int64) *TelegramFiles {
	return &TelegramFiles{
		resolver:  resolver,
		connector: connector,
		limit:     limit,
	}
}

// Download implements FileDownloader. Bodies over the limit come back one byte too long.
func (f *TelegramFiles) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	url, err := f.resolver.GetFileDirectURL(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	data, contentType, err := f.connector.Download(ctx, url, f.limit)
	if err != nil {
		return nil, "", fmt.Errorf("download file %s: %w", fileID, err)
	}
	return data, contentType, nil
}
