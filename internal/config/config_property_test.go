//go:build property
// +build property

package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestServerConfigProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("port validation", prop.ForAll(
		func(port int) bool {
			err := validateServerConfig(&ServerConfig{Port: port, Host: "localhost"})
			if port >= 0 && port <= 65535 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-1000, 70000),
	))

	properties.Property("path validation is deterministic", prop.ForAll(
		func(path string) bool {
			first := validatePath(path) == nil
			second := validatePath(path) == nil
			return first == second
		},
		gen.OneConstOf("pages", "../pages", "dist/out", "a;b", "", ".monetizer/pages.db"),
	))

	properties.Property("render policy validation", prop.ForAll(
		func(policy string) bool {
			err := validateRenderConfig(
				&RenderConfig{CustomCode: policy, MissingRating: MissingRatingHide},
				&PreviewConfig{MissingRating: MissingRatingFive},
			)
			switch policy {
			case CustomCodeTrusted, CustomCodeSandboxed, CustomCodeDisabled:
				return err == nil
			default:
				return err != nil
			}
		},
		gen.OneConstOf("trusted", "sandboxed", "disabled", "", "TRUSTED", "iframe"),
	))

	properties.TestingRun(t)
}
