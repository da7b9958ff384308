package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/harplay/pkg/cli/internal/output"
	"github.com/getmockd/harplay/pkg/config"
)

func newConfigCommand(o *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "config [har-file]",
		Short: "Show the resolved configuration and where each value came from",
		Long: "Print the configuration harplay would run with, after layering defaults,\n" +
			"the --config file, HARPLAY_* environment variables and flags.\n\n" +
			"Config file keys:\n  " + strings.Join(configKeys(), "\n  ") + "\n\n" +
			"Environment variables:\n  " + strings.Join(config.EnvNames(), "\n  "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args, o)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				output.Warn(cmd.ErrOrStderr(), "%v", err)
			}
			if jsonOut {
				return output.JSON(cmd.OutOrStdout(), cfg)
			}
			return printConfig(cmd, cfg)
		},
	}
	addServeFlags(cmd, o)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

// printConfig writes cfg as YAML with each leaf annotated by its source.
func printConfig(cmd *cobra.Command, cfg *config.Config) error {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return err
	}
	annotate(&doc, cfg, "")
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}

func annotate(node *yaml.Node, cfg *config.Config, prefix string) {
	if node.Kind == yaml.DocumentNode {
		for _, c := range node.Content {
			annotate(c, cfg, prefix)
		}
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		path := prefix + key.Value
		if value.Kind == yaml.MappingNode {
			annotate(value, cfg, path+".")
			continue
		}
		value.LineComment = cfg.Source(path)
	}
}

// configKeys lists the dotted YAML keys of Config, for help output.
func configKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := range t.NumField() {
			f := t.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+name+".")
				continue
			}
			keys = append(keys, prefix+name)
		}
	}
	walk(reflect.TypeFor[config.Config](), "")
	return keys
}
