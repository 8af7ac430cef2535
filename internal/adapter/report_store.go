package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "gollate.dev/pkg/gollate/internal/model"
)

const reportExt = ".yaml"

// ReportStore persists collation reports, one YAML file per job fingerprint.
type ReportStore interface {
	SaveReport(dir m.Path, report m.Report) (m.Path, error)
	LoadReport(dir m.Path, fingerprint string) (m.Report, bool, error)
	LoadReports(dir m.Path) ([]m.Report, []ReportFailure, error)
}

// ReportFailure is a report file that could not be read back.
type ReportFailure struct {
	Path m.Path
	Err  error
}

type yamlReportStore struct{}

// NewReportStore returns a ReportStore writing `<dir>/<fingerprint>.yaml`.
func NewReportStore() ReportStore {
	return &yamlReportStore{}
}

func reportPath(dir m.Path, fingerprint string) m.Path {
	return m.Path(filepath.Join(string(dir), fingerprint+reportExt))
}

func (s *yamlReportStore) SaveReport(dir m.Path, report m.Report) (m.Path, error) {
	if strings.TrimSpace(report.Fingerprint) == "" {
		return "", errors.New("report has no fingerprint")
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	target := reportPath(dir, report.Fingerprint)

	tmp, err := os.CreateTemp(string(dir), ".report-*"+reportExt)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("write report: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close report: %w", err)
	}

	if err := os.Rename(tmp.Name(), string(target)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store report: %w", err)
	}

	slog.Debug("Saved report", "path", target, "witnesses", len(report.Witnesses))

	return target, nil
}

func (s *yamlReportStore) LoadReport(dir m.Path, fingerprint string) (m.Report, bool, error) {
	path := reportPath(dir, fingerprint)

	report, err := readReport(path)
	if errors.Is(err, os.ErrNotExist) {
		return m.Report{}, false, nil
	}

	if err != nil {
		return m.Report{}, false, err
	}

	if report.Fingerprint != fingerprint {
		slog.Warn("Report fingerprint does not match its file name", "path", path, "fingerprint", report.Fingerprint)
		return m.Report{}, false, nil
	}

	return report, true, nil
}

// LoadReports reads every report in dir, oldest first. Files that cannot be
// decoded are returned as failures, in directory order, next to the good
// reports. A missing directory holds no reports.
func (s *yamlReportStore) LoadReports(dir m.Path) ([]m.Report, []ReportFailure, error) {
	entries, err := os.ReadDir(string(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}

	if err != nil {
		return nil, nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]m.Report, 0, len(entries))

	var failures []ReportFailure

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != reportExt || strings.HasPrefix(name, ".") {
			continue
		}

		path := m.Path(filepath.Join(string(dir), name))

		report, err := readReport(path)
		if err != nil {
			slog.Warn("Skipping unreadable report", "path", path, "error", err)
			failures = append(failures, ReportFailure{Path: path, Err: err})

			continue
		}

		reports = append(reports, report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.Before(reports[j].CreatedAt)
		}

		return reports[i].Name < reports[j].Name
	})

	return reports, failures, nil
}

func readReport(path m.Path) (m.Report, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Report{}, err
	}

	var report m.Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
