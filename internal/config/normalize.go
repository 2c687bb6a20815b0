package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeTemplates(); err != nil {
		return err
	}
	return c.normalizeRender()
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv(logLevelEnv); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if len(c.Logging.ComponentLevels) > 0 {
		levels := make(map[string]string, len(c.Logging.ComponentLevels))
		for component, level := range c.Logging.ComponentLevels {
			component = strings.ToLower(strings.TrimSpace(component))
			if component == "" {
				continue
			}
			levels[component] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.ComponentLevels = levels
	}

	output := strings.TrimSpace(c.Logging.Output)
	switch strings.ToLower(output) {
	case "":
		c.Logging.Output = defaultLogOutput
	case "stderr", "stdout":
		c.Logging.Output = strings.ToLower(output)
	default:
		expanded, err := ExpandPath(output)
		if err != nil {
			return fmt.Errorf("logging.output: %w", err)
		}
		c.Logging.Output = expanded
	}
	return nil
}

func (c *Config) normalizeTemplates() error {
	if value, ok := os.LookupEnv(templatesDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Templates.Dir = value
	}
	var err error
	if c.Templates.Dir, err = ExpandPath(c.Templates.Dir); err != nil {
		return fmt.Errorf("templates.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() error {
	if strings.TrimSpace(c.Render.OutputDir) == "" {
		c.Render.OutputDir = defaultOutputDir
	}
	var err error
	if c.Render.OutputDir, err = ExpandPath(c.Render.OutputDir); err != nil {
		return fmt.Errorf("render.output_dir: %w", err)
	}
	if c.Logging.File != "" {
		if c.Logging.File, err = ExpandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
