// internal/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hiring-pipeline/internal/common/logger"
	"hiring-pipeline/internal/models"
	"hiring-pipeline/internal/pipeline"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const applicationsIndex = "applications"

// applicationDoc is the denormalized search document the staff dashboard
// queries. One document per application, replaced on every transition.
type applicationDoc struct {
	ApplicationID   string  `json:"applicationId"`
	PersonID        string  `json:"personId,omitempty"`
	Email           string  `json:"email,omitempty"`
	FullName        string  `json:"fullName,omitempty"`
	Position        string  `json:"position"`
	Stage           string  `json:"stage"`
	Status          string  `json:"status"`
	UpdatedAt       string  `json:"updatedAt"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
}

// Indexer writes application documents to Elasticsearch. Indexing is
// best-effort: the caller logs and drops errors.
type Indexer struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, log logger.Logger) *Indexer {
	return &Indexer{client: client, logger: log}
}

func (ix *Indexer) IndexApplication(ctx context.Context, app *models.Application, person *models.Person) error {
	doc := applicationDoc{
		ApplicationID:   app.ID,
		PersonID:        app.PersonID,
		Position:        app.Position,
		Stage:           string(app.CurrentStage),
		Status:          string(app.Status),
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
		RejectionReason: app.RejectionReason,
	}
	if person != nil {
		doc.Email = person.Email
		doc.FullName = person.FullName()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal application document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      applicationsIndex,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("index application %s: %w", app.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index application %s: %s", app.ID, res.Status())
	}

	ix.logger.Debug("application indexed", map[string]interface{}{
		"application_id": app.ID,
		"stage":          doc.Stage,
		"status":         doc.Status,
	})
	return nil
}

var _ pipeline.Indexer = (*Indexer)(nil)
