package config

import (
	"fmt"
	"os"
	"sort"
)

var validLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTemplates()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	components := make([]string, 0, len(c.Logging.ComponentLevels))
	for component := range c.Logging.ComponentLevels {
		components = append(components, component)
	}
	sort.Strings(components)
	for _, component := range components {
		level := c.Logging.ComponentLevels[component]
		if _, ok := validLevels[level]; !ok {
			return fmt.Errorf("logging.component_levels.%s: invalid level %q", component, level)
		}
	}
	return nil
}

func (c *Config) validateTemplates() error {
	if c.Templates.Dir == "" {
		return nil
	}
	info, err := os.Stat(c.Templates.Dir)
	if err != nil {
		return fmt.Errorf("templates.dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("templates.dir %q is not a directory", c.Templates.Dir)
	}
	return nil
}
