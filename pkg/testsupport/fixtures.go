// Package testsupport holds fixtures shared by package tests: a vehicle model
// artifact, a complete form submission, and golden file helpers.
package testsupport

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgmodel "github.com/goliatone/go-carvalue/pkg/model"
)

// SubmissionPrice is what the fixture artifact predicts for Submission.
const (
	SubmissionPrice     = 37365.0
	SubmissionFormatted = "$37,365.00"
)

//go:embed testdata/vehicle_model.yaml
var fixtures embed.FS

// VehicleArtifact returns the linear model artifact covering every schema
// column.
func VehicleArtifact() []byte {
	data, err := fixtures.ReadFile("testdata/vehicle_model.yaml")
	if err != nil {
		panic(fmt.Sprintf("testsupport: read vehicle artifact: %v", err))
	}
	return data
}

// WriteArtifact writes data to a model file in a temp dir and returns its path.
func WriteArtifact(t *testing.T, name string, data []byte) string {
	t.Helper()
	if name == "" {
		name = "model.yaml"
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// Submission returns a complete, well-typed form submission. CarAge is left
// blank so it is derived from Year.
func Submission() url.Values {
	return url.Values{
		"Brand":                   {"Toyota"},
		"Model":                   {"Corolla"},
		"Year":                    {"2020"},
		"CarAge":                  {""},
		"Condition":               {"Used"},
		"Mileage(km)":             {"45000"},
		"EngineSize(L)":           {"1.8"},
		"FuelType":                {"Gasoline"},
		"Horsepower":              {"139"},
		"Torque":                  {"173"},
		"Transmission":            {"Automatic"},
		"DriveType":               {"FWD"},
		"BodyType":                {"Sedan"},
		"Doors":                   {"4"},
		"Seats":                   {"5"},
		"Color":                   {"White"},
		"Interior":                {"Cloth"},
		"City":                    {"Tokyo"},
		"AccidentHistory":         {"No"},
		"Insurance":               {"Valid"},
		"RegistrationStatus":      {"Complete"},
		"FuelEfficiency(L/100km)": {"6.5"},
	}
}

// MustLoadFormModel loads a JSON golden file into a FormModel structure.
func MustLoadFormModel(t *testing.T, path string) pkgmodel.FormModel {
	t.Helper()

	form, err := LoadFormModel(path)
	if err != nil {
		t.Fatalf("load form model: %v", err)
	}
	return form
}

// LoadFormModel reads a JSON fixture into a FormModel, returning an error for
// callers managing setup outside of *testing.T.
func LoadFormModel(path string) (pkgmodel.FormModel, error) {
	if path == "" {
		return pkgmodel.FormModel{}, errors.New("testsupport: form model path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: read form model: %w", err)
	}
	var out pkgmodel.FormModel
	if err := json.Unmarshal(data, &out); err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: unmarshal form model: %w", err)
	}
	return out, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}
