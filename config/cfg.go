package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	PresentationConfig struct {
		MetaLineBackground string  `yaml:"meta_line_background"`
		MetaLineHeight     float64 `yaml:"meta_line_height" validate:"gt=0"`
		TagsColumn         int     `yaml:"tags_column"`
		Spellcheck         bool    `yaml:"spellcheck"`
	}

	ShowConfig struct {
		SlideTag      string             `yaml:"slide_tag" validate:"required,excludesall=:"`
		HideTags      HideTagsMode       `yaml:"hide_tags" validate:"gte=0"`
		TextScale     float64            `yaml:"text_scale" validate:"gt=0"`
		TypesetScale  float64            `yaml:"typeset_scale" validate:"gt=0"`
		FragmentKind  string             `yaml:"fragment_kind" validate:"required"`
		TitleTemplate string             `yaml:"title_template"`
		Presentation  PresentationConfig `yaml:"presentation"`
	}

	MediaConfig struct {
		MaxWidth     int     `yaml:"max_width" validate:"gte=0"`
		MaxHeight    int     `yaml:"max_height" validate:"gte=0"`
		ScaleFactor  float64 `yaml:"scale_factor" validate:"gte=0.0"`
		JPEGQuality  int     `yaml:"jpeg_quality" validate:"min=40,max=100"`
		ArtifactsDir string  `yaml:"artifacts_dir"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Show      ShowConfig     `yaml:"show"`
		Media     MediaConfig    `yaml:"media"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	TitleTemplateFieldName TemplateFieldName = "title_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(TitleTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we know about are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template and
// validates the result. Empty path means defaults only.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
