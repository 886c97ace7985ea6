// internal/domain/models/export.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportFormat is the serialization of an export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// Valid reports whether f is a supported format.
func (f ExportFormat) Valid() bool { return f == ExportCSV || f == ExportJSON }

// ExportRecord remembers who exported what, and whether the export carried
// respondent-identifying columns.
type ExportRecord struct {
	ID                        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID                primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	Format                    ExportFormat       `bson:"format" json:"format"`
	FilePath                  string             `bson:"file_path" json:"file_path"`
	GeneratedBy               primitive.ObjectID `bson:"generated_by" json:"generated_by"`
	RecordCount               int                `bson:"record_count" json:"record_count"`
	IncludesIdentifyingFields bool               `bson:"includes_identifying_fields" json:"includes_identifying_fields"`
	CreatedAt                 time.Time          `bson:"created_at" json:"created_at"`
}
