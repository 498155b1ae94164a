package config

import (
	"github.com/hyperjump/erabu/internal/page"
)

// ApplyDefaults fills unset fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8086
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/erabu/data/db/files.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/erabu/data/indices/bleve"
	}
	if len(cfg.Discover.Extensions) == 0 {
		cfg.Discover.Extensions = []string{"md", "txt", "pdf", "doc", "docx", "xlsx", "pptx", "odp", "ods"}
	}
	if cfg.Discover.PreviewMaxChars == 0 {
		cfg.Discover.PreviewMaxChars = 2000
	}
	cfg.Relevance.ApplyDefaults()
	if cfg.List.PageSize == 0 {
		cfg.List.PageSize = page.DefaultPageSize
	}
	if len(cfg.List.PageSizeOptions) == 0 {
		cfg.List.PageSizeOptions = append([]int(nil), page.PageSizeOptions...)
	}
	if cfg.List.AnalyzeDelayMS == 0 {
		cfg.List.AnalyzeDelayMS = 100
	}
}
