package sandbox

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/okian/gwrecon/internal/adapters/registry"
)

// WriteInput writes the request list in the CLI input format.
func WriteInput(path string, requests []Request) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"request_id", "family_id"}); err != nil {
		return err
	}
	for _, r := range requests {
		if err := w.Write([]string{r.RequestID, r.FamilyID}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteConfig writes a gwrecon YAML config pointing at the sandbox.
func WriteConfig(path, baseURL, token, registryPath string) error {
	values := map[string]interface{}{
		"log_level":                   "debug",
		"cipapi_base_url":             baseURL,
		"cipapi_timeout_ms":           5000,
		"registry_name":               "GeneWorks",
		"registry_driver":             registry.DriverSQLite,
		"registry_database":           registryPath,
		"registry_participants_query": ParticipantsQuery,
		"registry_demographics":       true,
		"registry_demographics_query": DemographicsQuery,
	}
	if token != "" {
		values["cipapi_token"] = token
	}

	data, err := yaml.Parser().Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
