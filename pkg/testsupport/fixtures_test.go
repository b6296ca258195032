package testsupport_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-carvalue/pkg/estimator"
	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/record"
	"github.com/goliatone/go-carvalue/pkg/schema"
	"github.com/goliatone/go-carvalue/pkg/testsupport"
)

func TestVehicleArtifactPredictsSubmissionPrice(t *testing.T) {
	s, err := schema.Default()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	m, err := estimator.Decode(testsupport.VehicleArtifact(), estimator.WithExpectedColumns(s.Columns()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec, err := record.Harvest(s, testsupport.Submission(), record.WithDerivedFields())
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	got, err := m.Predict(context.Background(), rec)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-testsupport.SubmissionPrice) > 1e-6 {
		t.Fatalf("prediction: want %v, got %v", testsupport.SubmissionPrice, got)
	}
}

func TestWriteArtifactAndGoldens(t *testing.T) {
	path := testsupport.WriteArtifact(t, "", testsupport.VehicleArtifact())
	if filepath.Base(path) != "model.yaml" {
		t.Fatalf("unexpected artifact name %s", path)
	}
	if _, err := estimator.LoadFile(path); err != nil {
		t.Fatalf("load written artifact: %v", err)
	}

	golden := filepath.Join(t.TempDir(), "form.json")
	t.Setenv("UPDATE_GOLDENS", "1")
	want := model.FormModel{ID: "vehicle", Endpoint: "/predict", Method: "POST", Fields: []model.Field{{Name: "Year", Type: model.FieldTypeNumber, Numeric: true}}}
	testsupport.WriteGolden(t, golden, want)

	got := testsupport.MustLoadFormModel(t, golden)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("golden mismatch (-want +got):\n%s", diff)
	}
	if _, err := testsupport.LoadFormModel(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
