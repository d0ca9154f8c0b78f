package config_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/gwrecon/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigNew(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.CIPAPIBaseURL, convey.ShouldEqual, "https://cipapi.genomicsengland.nhs.uk")
			convey.So(cfg.CIPAPITimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RegistryName, convey.ShouldEqual, "GeneWorks")
			convey.So(cfg.RegistryDriver, convey.ShouldEqual, "sqlserver")
			convey.So(cfg.RegistryParticipantsQuery, convey.ShouldEqual, config.DefaultParticipantsQuery)
			convey.So(cfg.RegistryDemographics, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the registry view should carry the connection fields", func() {
			cfg.RegistryHost = "db.local"
			cfg.RegistryUser = "moka"
			reg := cfg.Registry()
			convey.So(reg.Driver, convey.ShouldEqual, "sqlserver")
			convey.So(reg.Host, convey.ShouldEqual, "db.local")
			convey.So(reg.User, convey.ShouldEqual, "moka")
			convey.So(reg.Database, convey.ShouldEqual, "geneworks")
			convey.So(reg.ParticipantsQuery, convey.ShouldEqual, config.DefaultParticipantsQuery)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.RegistryDriver, convey.ShouldEqual, "sqlserver")
				convey.So(cfg.CIPAPITimeoutMS, convey.ShouldEqual, 30_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GWRECON_CIPAPI_BASE_URL", "http://localhost:9080")
			_ = os.Setenv("GWRECON_CIPAPI_TIMEOUT_MS", "500")
			_ = os.Setenv("GWRECON_REGISTRY_DRIVER", "postgres")
			_ = os.Setenv("GWRECON_REGISTRY_PORT", "5433")
			_ = os.Setenv("GWRECON_REGISTRY_DEMOGRAPHICS", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CIPAPIBaseURL, convey.ShouldEqual, "http://localhost:9080")
				convey.So(cfg.CIPAPITimeout(), convey.ShouldEqual, 500*time.Millisecond)
				convey.So(cfg.RegistryDriver, convey.ShouldEqual, "postgres")
				convey.So(cfg.RegistryPort, convey.ShouldEqual, 5433)
				convey.So(cfg.RegistryDemographics, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
cipapi_base_url: "http://cip.test"
registry_driver: sqlite
registry_database: /tmp/registry.db
registry_name: TestRegistry
registry_participants_query: "SELECT * FROM gmc_participants"
metrics_textfile: /tmp/gwrecon.prom
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GWRECON_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CIPAPIBaseURL, convey.ShouldEqual, "http://cip.test")
				convey.So(cfg.RegistryDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.RegistryDatabase, convey.ShouldEqual, "/tmp/registry.db")
				convey.So(cfg.RegistryName, convey.ShouldEqual, "TestRegistry")
				convey.So(cfg.RegistryParticipantsQuery, convey.ShouldEqual, "SELECT * FROM gmc_participants")
				convey.So(cfg.MetricsTextfile, convey.ShouldEqual, "/tmp/gwrecon.prom")
				convey.So(cfg.CIPAPITimeoutMS, convey.ShouldEqual, 30_000) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
registry_driver: sqlite
registry_database: from-file.db
registry_user: file-user
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GWRECON_CONFIG", tmpFile)
			_ = os.Setenv("GWRECON_REGISTRY_DATABASE", "from-env.db")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RegistryDatabase, convey.ShouldEqual, "from-env.db") // Overridden by env
				convey.So(cfg.RegistryUser, convey.ShouldEqual, "file-user")       // From file
				convey.So(cfg.RegistryDriver, convey.ShouldEqual, "sqlite")        // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GWRECON_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GWRECON_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GWRECON_CIPAPI_TIMEOUT_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		cases := map[string]func(*config.Config){
			"empty base url":        func(c *config.Config) { c.CIPAPIBaseURL = " " },
			"zero timeout":          func(c *config.Config) { c.CIPAPITimeoutMS = 0 },
			"empty registry name":   func(c *config.Config) { c.RegistryName = "" },
			"unknown driver":        func(c *config.Config) { c.RegistryDriver = "oracle" },
			"empty primary query":   func(c *config.Config) { c.RegistryParticipantsQuery = "" },
			"demographics template": func(c *config.Config) { c.RegistryDemographics = true; c.RegistryDemographicsQuery = "SELECT 1" },
		}

		for name, mutate := range cases {
			name, mutate := name, mutate
			convey.Convey("When the config has "+name, func() {
				cfg := config.New()
				mutate(cfg)

				convey.Convey("Then it should be rejected", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When an invalid value comes from the environment", func() {
			_ = os.Setenv("GWRECON_REGISTRY_DRIVER", "oracle")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then Load should fail validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unsupported registry_driver")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"GWRECON_CONFIG",
		"GWRECON_CIPAPI_BASE_URL",
		"GWRECON_CIPAPI_TIMEOUT_MS",
		"GWRECON_REGISTRY_DRIVER",
		"GWRECON_REGISTRY_PORT",
		"GWRECON_REGISTRY_DATABASE",
		"GWRECON_REGISTRY_DEMOGRAPHICS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "gwrecon-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
