// Package collector enumerates vault documents and turns each into a
// normalized, immutable asset record: relative path, raw content, and
// parsed front matter.
package collector

import (
	"log/slog"
	"path/filepath"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Collector reads vault documents through a storage provider.
type Collector struct {
	store  storage.Provider
	logger *slog.Logger
}

// New creates a collector over the given vault.
func New(store storage.Provider, logger *slog.Logger) *Collector {
	return &Collector{store: store, logger: logger}
}

// Collect reads every document in the vault and returns one asset per
// file. An unreadable file is logged and skipped so a single bad file
// never aborts the pass.
func (c *Collector) Collect() ([]*models.Asset, error) {
	infos, err := c.store.List("")
	if err != nil {
		return nil, err
	}

	assets := make([]*models.Asset, 0, len(infos))
	for _, info := range infos {
		data, err := c.store.Read(info.Path)
		if err != nil {
			c.logger.Warn("collector: read failed",
				slog.String("path", info.Path),
				slog.String("error", err.Error()))
			continue
		}
		assets = append(assets, NewAsset(info.Path, filepath.Join(c.store.Root(), filepath.FromSlash(info.Path)), data))
	}
	return assets, nil
}

// NewAsset builds one asset record from raw file content.
func NewAsset(relPath, absPath string, data []byte) *models.Asset {
	fm, body := splitFrontMatter(data)
	return &models.Asset{
		RelPath:  relPath,
		AbsPath:  absPath,
		Raw:      data,
		Body:     body,
		Meta:     fm,
		Checksum: checksum.Sum(data),
	}
}
