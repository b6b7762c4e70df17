package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	cryptoutil "kpm/internal/platform/crypto"
)

type Service struct {
	store  *Store
	crypto *cryptoutil.Service
}

func NewService(store *Store, crypto *cryptoutil.Service) *Service {
	return &Service{store: store, crypto: crypto}
}

func (s *Service) Summary(ctx context.Context, filter Filter) (Summary, error) {
	rows, err := s.store.LoadRows(ctx, filter.CycleID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(Apply(rows, filter)), nil
}

func (s *Service) Departments(ctx context.Context, filter Filter) ([]DepartmentBreakdown, error) {
	rows, err := s.store.LoadRows(ctx, filter.CycleID)
	if err != nil {
		return nil, err
	}
	return ByDepartment(Apply(rows, filter)), nil
}

func (s *Service) Individuals(ctx context.Context, filter Filter) ([]Row, error) {
	rows, err := s.store.LoadRows(ctx, filter.CycleID)
	if err != nil {
		return nil, err
	}
	return Apply(rows, filter), nil
}

// GenerateEvaluationPDF renders one evaluation to a PDF on disk and
// returns the file path. The file is encrypted at rest when a key is
// configured.
func (s *Service) GenerateEvaluationPDF(ctx context.Context, evaluationID string) (string, error) {
	export, err := s.store.LoadEvaluationExport(ctx, evaluationID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll("storage/evaluations", 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join("storage/evaluations", export.EvaluationID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Evaluation")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", export.UserName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", export.UserEmail))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Cycle: %s (%s to %s)", export.CycleName,
		export.CycleStart.Format("2006-01-02"), export.CycleEnd.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(80, 8, "KPI")
	pdf.Cell(25, 8, "Weight")
	pdf.Cell(25, 8, "Target")
	pdf.Cell(25, 8, "Actual")
	pdf.Cell(20, 8, "Score")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, k := range export.Kpis {
		pdf.Cell(80, 7, k.Title)
		pdf.Cell(25, 7, fmt.Sprintf("%.0f%%", k.Weight))
		pdf.Cell(25, 7, fmt.Sprintf("%.2f", k.Target))
		pdf.Cell(25, 7, fmt.Sprintf("%.2f", k.Actual))
		pdf.Cell(20, 7, fmt.Sprintf("%d", k.Score))
		pdf.Ln(7)
	}

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Overall: %.2f (%.2f%% achievement)", export.OverallScore, export.OverallPercentage))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Final score: %.2f", export.FinalScore))
	if export.ManagerComment != "" {
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, fmt.Sprintf("Manager comment: %s", export.ManagerComment))
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}
