// Package exporter renders a campaign's submitted responses as CSV or JSON
// and records each generated file.
package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/policy/respondentpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/tokens"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Recorder persists export records.
type Recorder interface {
	Create(ctx context.Context, e models.ExportRecord) (models.ExportRecord, error)
}

// Dataset is the input to one export. IncludeIdentifying is the privacy
// gate result, computed once for the whole export.
type Dataset struct {
	Campaign           models.Campaign
	Respondents        []models.Respondent
	IncludeIdentifying bool
}

// Result is a generated export with its stored record.
type Result struct {
	Record  models.ExportRecord
	Content []byte
}

// Service writes export files under Dir.
type Service struct {
	Dir     string
	Records Recorder
	Log     *zap.Logger
}

// New creates an export Service.
func New(dir string, records Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Dir: dir, Records: records, Log: logger}
}

// Generate renders d in format, writes it to disk and stores the record.
func (s *Service) Generate(ctx context.Context, generatedBy primitive.ObjectID, format models.ExportFormat, d Dataset) (Result, error) {
	if !format.Valid() {
		return Result{}, apperr.InvalidInput("format must be csv or json")
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case models.ExportCSV:
		err = WriteCSV(&buf, d)
	case models.ExportJSON:
		err = WriteJSON(&buf, d)
	}
	if err != nil {
		return Result{}, fmt.Errorf("render %s export: %w", format, err)
	}

	name := tokens.ExportFileName(string(format))
	path := filepath.Join(s.Dir, d.Campaign.ID.Hex(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o640); err != nil {
		return Result{}, fmt.Errorf("write export file: %w", err)
	}

	rec, err := s.Records.Create(ctx, models.ExportRecord{
		CampaignID:                d.Campaign.ID,
		Format:                    format,
		FilePath:                  path,
		GeneratedBy:               generatedBy,
		RecordCount:               countSubmitted(d.Respondents),
		IncludesIdentifyingFields: d.IncludeIdentifying,
	})
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.Log.Warn("remove orphaned export file", zap.String("path", path), zap.Error(rmErr))
		}
		return Result{}, err
	}

	s.Log.Info("export generated",
		zap.String("campaign_id", d.Campaign.ID.Hex()),
		zap.String("format", string(format)),
		zap.Int("rows", rec.RecordCount),
		zap.Bool("identifying", rec.IncludesIdentifyingFields))
	return Result{Record: rec, Content: buf.Bytes()}, nil
}

// RemoveCampaign deletes every export file written for campaignID.
func (s *Service) RemoveCampaign(campaignID primitive.ObjectID) error {
	if s.Dir == "" || campaignID.IsZero() {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(s.Dir, campaignID.Hex())); err != nil {
		return fmt.Errorf("remove export files: %w", err)
	}
	return nil
}

// Open returns the stored content of an export record.
func (s *Service) Open(rec models.ExportRecord) ([]byte, error) {
	b, err := os.ReadFile(rec.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("export file not found")
		}
		return nil, fmt.Errorf("read export file: %w", err)
	}
	return b, nil
}

// Header returns the CSV header for d: the fixed columns from the privacy
// gate followed by the question texts in display order.
func Header(d Dataset) []string {
	cols := respondentpolicy.ExportColumns(d.IncludeIdentifying)
	for _, q := range orderedQuestions(d.Campaign) {
		cols = append(cols, q.Text)
	}
	return cols
}

// WriteCSV writes d as RFC 4180 CSV. Only submitted respondents are written.
func WriteCSV(w io.Writer, d Dataset) error {
	questions := orderedQuestions(d.Campaign)
	cw := csv.NewWriter(w)

	if err := cw.Write(Header(d)); err != nil {
		return err
	}
	for _, r := range d.Respondents {
		if !r.Submitted() {
			continue
		}
		r = respondentpolicy.Redact(r, d.IncludeIdentifying)
		row := []string{r.ID.Hex(), r.SubmittedAt.UTC().Format(time.RFC3339), fmt.Sprint(r.Anonymous)}
		if d.IncludeIdentifying {
			var f models.IdentifiableFields
			if r.IdentifiableFields != nil {
				f = *r.IdentifiableFields
			}
			row = append(row, sanitizeCSVField(f.Name), sanitizeCSVField(f.Email), sanitizeCSVField(f.Phone))
		}
		answers := answersByQuestion(r)
		for _, q := range questions {
			row = append(row, csvValue(answers[q.ID]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes d as an indented JSON array of row objects keyed by the
// same column names WriteCSV uses.
func WriteJSON(w io.Writer, d Dataset) error {
	questions := orderedQuestions(d.Campaign)
	rows := make([]map[string]any, 0, len(d.Respondents))
	for _, r := range d.Respondents {
		if !r.Submitted() {
			continue
		}
		r = respondentpolicy.Redact(r, d.IncludeIdentifying)
		row := map[string]any{
			"respondentId": r.ID.Hex(),
			"submittedAt":  r.SubmittedAt.UTC().Format(time.RFC3339),
			"anonymous":    r.Anonymous,
		}
		if d.IncludeIdentifying {
			var f models.IdentifiableFields
			if r.IdentifiableFields != nil {
				f = *r.IdentifiableFields
			}
			row["name"], row["email"], row["phone"] = f.Name, f.Email, f.Phone
		}
		answers := answersByQuestion(r)
		for _, q := range questions {
			v, ok := answers[q.ID]
			if !ok || v == nil {
				v = ""
			}
			row[q.Text] = v
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func orderedQuestions(c models.Campaign) []models.Question {
	qs := append([]models.Question(nil), c.Questions...)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
	return qs
}

func answersByQuestion(r models.Respondent) map[primitive.ObjectID]any {
	m := make(map[primitive.ObjectID]any, len(r.Answers))
	for _, a := range r.Answers {
		m[a.QuestionID] = a.Value
	}
	return m
}

func countSubmitted(rs []models.Respondent) int {
	n := 0
	for _, r := range rs {
		if r.Submitted() {
			n++
		}
	}
	return n
}

// csvValue flattens an answer into one cell. Lists and objects are written
// as JSON.
func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return sanitizeCSVField(x)
	case bool, float64, float32, int, int32, int64:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// sanitizeCSVField neutralizes spreadsheet formula injection.
func sanitizeCSVField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
