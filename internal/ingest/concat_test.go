package ingest

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const employersCSV = `id,name,alt_name,logo_url,fh,jobscount,jobscount_online
1,Testfirma GmbH,Testfirma,https://example.org/logo.png,true,3,2
2,Andere AG,,,false,1,1
`

const sourcesCSV = `jobsource_id,jobsource,description
1,Website,Direkt von der Unternehmensseite
`

const activeJobsCSV = `id,job_title,description,url,location,employer_id,jobsource_id,Archived,clicks,CategorizedData
1,Mitarbeiter:in Lager,"Wir suchen dich!
Komm ins Team.",https://example.org/1,Berlin,1,1,false,12.0,
2,Assistenz,Bürotätigkeit,https://example.org/2,Hamburg,2,,false,3,"{""Arbeitszeit"": ""Teilzeit""}"
`

const archivedJobsCSV = `id,job_title,description,url,location,employer_id,jobsource_id,Archived,original_id,CategorizedData
10,Koch/Köchin,Küche,https://example.org/10,München,1,1,true,4,not-json
`

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"jobs_rows.csv":            activeJobsCSV,
		"jobs_archiviert_rows.csv": archivedJobsCSV,
		"employers_rows.csv":       employersCSV,
		"jobsource_rows.csv":       sourcesCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runConcat(t *testing.T, opts ConcatOptions) (ConcatSummary, unifiedOutput) {
	t.Helper()
	summary, err := Concat(opts, discardLogger())
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}

	data, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	var out unifiedOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return summary, out
}

func TestConcat_MergesTables(t *testing.T) {
	dir := writeDataDir(t)
	opts := ConcatOptions{
		DataDir:             dir,
		OutputPath:          filepath.Join(dir, "out.json"),
		IncludeDescriptions: true,
	}

	summary, out := runConcat(t, opts)

	if summary.TotalJobs != 3 || summary.ActiveJobs != 2 || summary.ArchivedJobs != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Employers != 2 || summary.JobSources != 1 {
		t.Errorf("relations summary = %+v", summary)
	}
	if len(out.Jobs) != 3 {
		t.Fatalf("output has %d jobs", len(out.Jobs))
	}
	if out.Metadata.TotalJobs != 3 || out.Metadata.GeneratedAt == "" {
		t.Errorf("metadata section = %+v", out.Metadata)
	}
}

func TestConcat_ResolvesRelations(t *testing.T) {
	dir := writeDataDir(t)
	opts := ConcatOptions{
		DataDir:             dir,
		OutputPath:          filepath.Join(dir, "out.json"),
		IncludeDescriptions: true,
	}

	_, out := runConcat(t, opts)

	first := out.Jobs[0]
	if first.Employer == nil || first.Employer.Name != "Testfirma GmbH" {
		t.Errorf("employer relation not resolved: %+v", first.Employer)
	}
	if first.JobSource == nil || first.JobSource.JobSource != "Website" {
		t.Errorf("jobsource relation not resolved: %+v", first.JobSource)
	}
	// The float-form id column parses.
	if first.Clicks != 12 {
		t.Errorf("clicks = %d, want 12", first.Clicks)
	}

	// Job 2 has no jobsource_id value.
	second := out.Jobs[1]
	if second.JobSource != nil {
		t.Errorf("expected nil jobsource, got %+v", second.JobSource)
	}
	if second.CategorizedData["Arbeitszeit"] != "Teilzeit" {
		t.Errorf("CategorizedData column not parsed: %+v", second.CategorizedData)
	}
}

func TestConcat_ArchivedRows(t *testing.T) {
	dir := writeDataDir(t)
	opts := ConcatOptions{
		DataDir:             dir,
		OutputPath:          filepath.Join(dir, "out.json"),
		IncludeDescriptions: true,
	}

	_, out := runConcat(t, opts)

	archived := out.Jobs[2]
	if !archived.Archived || archived.SourceTable != "archived" {
		t.Errorf("archived flags: Archived=%v SourceTable=%q", archived.Archived, archived.SourceTable)
	}
	if archived.OriginalID == nil || *archived.OriginalID != 4 {
		t.Errorf("OriginalID = %v, want 4", archived.OriginalID)
	}
	// Unparseable CategorizedData column becomes null instead of failing.
	if archived.CategorizedData != nil {
		t.Errorf("invalid CategorizedData should be dropped, got %+v", archived.CategorizedData)
	}
}

func TestConcat_ExcludeDescriptions(t *testing.T) {
	dir := writeDataDir(t)
	opts := ConcatOptions{
		DataDir:    dir,
		OutputPath: filepath.Join(dir, "out.json"),
	}

	_, out := runConcat(t, opts)

	for _, job := range out.Jobs {
		if job.Description != "" {
			t.Errorf("job %d carries a description despite exclusion", job.ID)
		}
	}
}

func TestConcat_MissingTableFails(t *testing.T) {
	dir := t.TempDir()
	opts := ConcatOptions{DataDir: dir, OutputPath: filepath.Join(dir, "out.json")}
	if _, err := Concat(opts, discardLogger()); err == nil {
		t.Fatal("expected error when csv exports are missing")
	}
}

func TestFreshDataset_ClearsMetadata(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.json")
	output := filepath.Join(dir, "out.json")

	in := unifiedOutput{
		Metadata:   datasetMeta{GeneratedAt: "2025-09-01T00:00:00Z", TotalJobs: 2},
		Employers:  []model.Employer{{ID: 1, Name: "Testfirma GmbH"}},
		JobSources: []model.JobSource{{JobSourceID: 1, JobSource: "Website"}},
		Jobs: []*model.JobListing{
			{ID: 1, JobTitle: "A", CategorizedData: model.Metadata{"Arbeitszeit": "Vollzeit"}},
			{ID: 2, JobTitle: "B"},
		},
	}
	if err := writeJSON(input, in); err != nil {
		t.Fatal(err)
	}

	count, err := FreshDataset(input, output, discardLogger())
	if err != nil {
		t.Fatalf("FreshDataset: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["metadata"]; ok {
		t.Error("fresh dataset must not carry the metadata section")
	}

	var out freshOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	for _, job := range out.Jobs {
		if job.CategorizedData != nil {
			t.Errorf("job %d still has CategorizedData", job.ID)
		}
	}
	if len(out.Employers) != 1 || len(out.JobSources) != 1 {
		t.Errorf("relations dropped: %d employers, %d sources", len(out.Employers), len(out.JobSources))
	}
}

func TestFreshDataset_MissingInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := FreshDataset(filepath.Join(dir, "nope.json"), filepath.Join(dir, "out.json"), discardLogger()); err == nil {
		t.Fatal("expected error for missing input")
	}
}
