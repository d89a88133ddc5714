/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Page          PageConfig     `yaml:"page"`
	Defaults      DefaultsConfig `yaml:"defaults"`
	History       HistoryConfig  `yaml:"history"`
	Logging       LoggingConfig  `yaml:"logging"`
	Export        ExportConfig   `yaml:"export"`
}

// PageConfig is the canvas page geometry in CSS pixels.
type PageConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Gap          float64 `yaml:"gap"`
	HeaderHeight float64 `yaml:"header_height"`
	CanvasLeft   float64 `yaml:"canvas_left"`
	Count        int     `yaml:"count"`
}

// SizeConfig is a width/height pair.
type SizeConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DefaultsConfig holds the initial values of newly added components.
type DefaultsConfig struct {
	LabelText   string     `yaml:"label_text"`
	Label       SizeConfig `yaml:"label"`
	Image       SizeConfig `yaml:"image"`
	TableRows   int        `yaml:"table_rows"`
	TableCols   int        `yaml:"table_cols"`
	Cell        SizeConfig `yaml:"cell"`
	MinCellSize float64    `yaml:"min_cell"`
}

type HistoryConfig struct {
	MaxDepth int `yaml:"max_depth"` // 0 keeps every step
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type ExportConfig struct {
	DPI           float64 `yaml:"dpi"`
	IncludeGuides bool    `yaml:"include_guides"`
	Font          string  `yaml:"font"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Page:          PageConfig{Width: 794, Height: 1123, Gap: 20, HeaderHeight: 50, CanvasLeft: 0, Count: 1},
		Defaults: DefaultsConfig{
			LabelText:   "New Label",
			Label:       SizeConfig{Width: 120, Height: 40},
			Image:       SizeConfig{Width: 120, Height: 120},
			TableRows:   2,
			TableCols:   2,
			Cell:        SizeConfig{Width: 100, Height: 24},
			MinCellSize: 20,
		},
		History: HistoryConfig{MaxDepth: 0},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Export:  ExportConfig{DPI: 96, IncludeGuides: false, Font: "Helvetica"},
	}
}

// Env var names used as overrides.
const (
	EnvPageWidth       = "RD_PAGE_WIDTH"
	EnvPageHeight      = "RD_PAGE_HEIGHT"
	EnvPageCount       = "RD_PAGE_COUNT"
	EnvHistoryMaxDepth = "RD_HISTORY_MAX_DEPTH"
	EnvExportDPI       = "RD_EXPORT_DPI"
	EnvExportFont      = "RD_EXPORT_FONT"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "RD_LOG_LEVEL"
	EnvLogFormat = "RD_LOG_FORMAT"
	EnvLogSource = "RD_LOG_SOURCE"
	EnvLogFile   = "RD_LOG_FILE"
)

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid configuration")

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ReportDesigner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ReportDesigner")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "reportdesigner")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the per-user config file if present, applies defaults and
// merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	return cfg, err
}

// LoadFile is Load for an explicit path. A missing file yields the defaults
// (with env overrides) and an error wrapping os.ErrNotExist; a malformed one
// is reported.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	mergeInto(&cfg, &fileCfg)
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the per-user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate rejects geometry the editor cannot work with.
func (c AppConfig) Validate() error {
	switch {
	case c.Page.Width <= 0 || c.Page.Height <= 0:
		return fmt.Errorf("%w: page size %vx%v", ErrInvalid, c.Page.Width, c.Page.Height)
	case c.Page.Gap < 0 || c.Page.HeaderHeight < 0:
		return fmt.Errorf("%w: negative page gap or header", ErrInvalid)
	case c.Defaults.TableRows < 1 || c.Defaults.TableCols < 1:
		return fmt.Errorf("%w: default table %dx%d", ErrInvalid, c.Defaults.TableRows, c.Defaults.TableCols)
	case c.Defaults.MinCellSize < 0:
		return fmt.Errorf("%w: negative min_cell", ErrInvalid)
	case c.History.MaxDepth < 0:
		return fmt.Errorf("%w: negative history.max_depth", ErrInvalid)
	case c.Export.DPI <= 0:
		return fmt.Errorf("%w: export dpi %v", ErrInvalid, c.Export.DPI)
	}
	return nil
}

func mergeSize(dst *SizeConfig, src SizeConfig) {
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// page
	if src.Page.Width != 0 {
		dst.Page.Width = src.Page.Width
	}
	if src.Page.Height != 0 {
		dst.Page.Height = src.Page.Height
	}
	if src.Page.Gap != 0 {
		dst.Page.Gap = src.Page.Gap
	}
	if src.Page.HeaderHeight != 0 {
		dst.Page.HeaderHeight = src.Page.HeaderHeight
	}
	if src.Page.CanvasLeft != 0 {
		dst.Page.CanvasLeft = src.Page.CanvasLeft
	}
	if src.Page.Count != 0 {
		dst.Page.Count = src.Page.Count
	}
	// component defaults
	if src.Defaults.LabelText != "" {
		dst.Defaults.LabelText = src.Defaults.LabelText
	}
	mergeSize(&dst.Defaults.Label, src.Defaults.Label)
	mergeSize(&dst.Defaults.Image, src.Defaults.Image)
	mergeSize(&dst.Defaults.Cell, src.Defaults.Cell)
	if src.Defaults.TableRows != 0 {
		dst.Defaults.TableRows = src.Defaults.TableRows
	}
	if src.Defaults.TableCols != 0 {
		dst.Defaults.TableCols = src.Defaults.TableCols
	}
	if src.Defaults.MinCellSize != 0 {
		dst.Defaults.MinCellSize = src.Defaults.MinCellSize
	}
	if src.History.MaxDepth != 0 {
		dst.History.MaxDepth = src.History.MaxDepth
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// export
	if src.Export.DPI != 0 {
		dst.Export.DPI = src.Export.DPI
	}
	dst.Export.IncludeGuides = src.Export.IncludeGuides
	if strings.TrimSpace(src.Export.Font) != "" {
		dst.Export.Font = strings.TrimSpace(src.Export.Font)
	}
}

func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvPageWidth, &cfg.Page.Width)
	envFloat(EnvPageHeight, &cfg.Page.Height)
	envInt(EnvPageCount, &cfg.Page.Count)
	envInt(EnvHistoryMaxDepth, &cfg.History.MaxDepth)
	envFloat(EnvExportDPI, &cfg.Export.DPI)
	if v := strings.TrimSpace(os.Getenv(EnvExportFont)); v != "" {
		cfg.Export.Font = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"page.width":        EnvPageWidth,
	"page.height":       EnvPageHeight,
	"page.count":        EnvPageCount,
	"history.max_depth": EnvHistoryMaxDepth,
	"export.dpi":        EnvExportDPI,
	"export.font":       EnvExportFont,
	"logging.level":     EnvLogLevel,
	"logging.format":    EnvLogFormat,
	"logging.source":    EnvLogSource,
	"logging.file":      EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by
// environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
