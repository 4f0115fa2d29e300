package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/tacc/pkg/cli"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatInlineLabels
	FeatStrictDecl
	FeatCount
)

type Warning int

const (
	WarnRedecl Warning = iota
	WarnShadow
	WarnEmptyBody
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	StdName    string
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		StdName:    "modern",
	}

	features := map[Feature]Info{
		FeatCComments:    {"c-comments", true, "Recognize C-style '//' line and '/* */' block comments."},
		FeatInlineLabels: {"inline-labels", false, "Print a label definition on the same line as the instruction that follows it."},
		FeatStrictDecl:   {"strict-decl", false, "Reject a second declaration of a name in the same block."},
	}

	warnings := map[Warning]Info{
		WarnRedecl:    {"redecl", true, "Warn when a declaration replaces one made earlier in the same block."},
		WarnShadow:    {"shadow", false, "Warn when a declaration hides one from an enclosing block."},
		WarnEmptyBody: {"empty-body", false, "Warn about an 'if', 'else' or loop whose body is an empty statement."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyStd switches between the classic layout, which matches the textbook
// translator byte for byte, and the modern default.
func (c *Config) ApplyStd(stdName string) error {
	switch stdName {
	case "classic":
		c.SetFeature(FeatCComments, false)
		c.SetFeature(FeatInlineLabels, true)
	case "modern", "":
		stdName = "modern"
		c.SetFeature(FeatCComments, true)
		c.SetFeature(FeatInlineLabels, false)
	default:
		return fmt.Errorf("unsupported standard '%s'. Supported: 'classic', 'modern'", stdName)
	}
	c.StdName = stdName
	return nil
}

func (c *Config) applyFlag(flag string) {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	isWarning := true
	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		isWarning = false
	default:
		name = trimmed
	}
	if isNo {
		name = strings.TrimPrefix(name, "no-")
	}

	if name == "all" && isWarning {
		for i := Warning(0); i < WarnCount; i++ {
			c.SetWarning(i, enable)
		}
		return
	}

	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
		}
	} else if f, ok := c.FeatureMap[name]; ok {
		c.SetFeature(f, enable)
	}
}

// ProcessDirectiveFlags applies a space separated list such as "-Wall -Fno-c-comments".
func (c *Config) ProcessDirectiveFlags(flagStr string) {
	for _, flag := range strings.Fields(flagStr) {
		c.applyFlag(flag)
	}
}

// SetupFlagGroups registers -W/-Wno- and -F/-Fno- flags for every warning and
// feature. The returned entries are indexed by Warning and Feature.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}
	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}

	fs.AddFlagGroup("Warnings", "Diagnostics printed while compiling", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Features", "Language and output features", "feature", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies parsed group flags onto the configuration. Explicit
// flags win over the standard applied before.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
