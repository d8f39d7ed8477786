// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// config.go - configuration command handler.
package cli

import (
	"fmt"
	"strconv"

	"recipechat/internal/config"
)

// HandleConfig shows or modifies the configuration file.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow()
	case "path":
		return configPath()
	case "set":
		return configSet(args.ConfigKey, args.ConfigVal)
	default:
		fmt.Fprintln(errWriter, errorStyle.Render("Usage: recipechat config [show|path|set key value]"))
		return 1
	}
}

func configShow() int {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		return 1
	}

	fmt.Fprintln(outWriter, headerStyle.Render("Backend"))
	fmt.Fprintf(outWriter, "  url:                %s\n", cfg.Backend.URL)
	fmt.Fprintf(outWriter, "  timeout:            %ds\n", cfg.Backend.TimeoutSecs)
	fmt.Fprintf(outWriter, "  query timeout:      %ds\n", cfg.Backend.QueryTimeoutSecs)
	fmt.Fprintf(outWriter, "  max attempts:       %d\n", cfg.Backend.MaxAttempts)
	fmt.Fprintf(outWriter, "  retry delay:        %dms\n", cfg.Backend.RetryDelayMillis)

	fmt.Fprintln(outWriter, headerStyle.Render("Storage"))
	fmt.Fprintf(outWriter, "  kind:               %s\n", cfg.Storage.Kind)
	if path, err := cfg.StoragePath(); err == nil {
		fmt.Fprintf(outWriter, "  path:               %s\n", path)
	}

	fmt.Fprintln(outWriter, headerStyle.Render("UI"))
	fmt.Fprintf(outWriter, "  theme:              %s\n", cfg.UI.Theme)
	fmt.Fprintf(outWriter, "  markdown:           %v\n", cfg.UI.Markdown)
	fmt.Fprintf(outWriter, "  show sources:       %v\n", cfg.UI.ShowSources)
	fmt.Fprintf(outWriter, "  show routing:       %v\n", cfg.UI.ShowRouting)
	return 0
}

func configPath() int {
	path, err := config.Path()
	if err != nil {
		printError(err)
		return 1
	}
	fmt.Fprintln(outWriter, path)
	return 0
}

// configSet updates one key and writes the file back.
func configSet(key, value string) int {
	if key == "" {
		fmt.Fprintln(errWriter, errorStyle.Render("Usage: recipechat config set key value"))
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		return 1
	}

	if err := applySet(cfg, key, value); err != nil {
		printError(err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		printError(err)
		return 1
	}
	if err := config.Save(cfg); err != nil {
		printError(err)
		return 1
	}
	fmt.Fprintln(outWriter, infoStyle.Render(fmt.Sprintf("Set %s = %s", key, value)))
	return 0
}

// applySet maps dotted keys onto config fields.
func applySet(cfg *config.Config, key, value string) error {
	switch key {
	case "backend.url":
		cfg.Backend.URL = value
	case "backend.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s needs an integer, got %q", key, value)
		}
		cfg.Backend.TimeoutSecs = n
	case "backend.query_timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s needs an integer, got %q", key, value)
		}
		cfg.Backend.QueryTimeoutSecs = n
	case "backend.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s needs an integer, got %q", key, value)
		}
		cfg.Backend.MaxAttempts = n
	case "storage.kind":
		cfg.Storage.Kind = value
	case "storage.path":
		cfg.Storage.Path = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.markdown":
		cfg.UI.Markdown = value == "true" || value == "1"
	case "ui.show_sources":
		cfg.UI.ShowSources = value == "true" || value == "1"
	case "ui.show_routing":
		cfg.UI.ShowRouting = value == "true" || value == "1"
	case "logging.debug":
		cfg.Logging.Debug = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
