// Package firestoredb reads recent documents from a Cloud Firestore collection
// using the Firebase Admin SDK and a service-account key file.
package firestoredb

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/recentdocs/internal/model"
	"github.com/recentdocs/internal/runner"
)

// Source implements runner.Source for Firestore.
type Source struct {
	credentialsFile string
	projectID       string
	logger          *zap.Logger

	app    *firebase.App
	client *firestore.Client
}

// New returns a Source that will authenticate with the key file at credentialsFile.
// projectID may be empty; the key file's project_id is used then.
func New(credentialsFile, projectID string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{credentialsFile: credentialsFile, projectID: projectID, logger: logger}
}

// FromApp wraps an already initialised app; Init is then a no-op.
func FromApp(app *firebase.App, logger *zap.Logger) *Source {
	s := New("", "", logger)
	s.app = app
	return s
}

func (s *Source) Names() runner.Names {
	return runner.Names{App: "Firebase", Client: "Firestore"}
}

// Init loads the credential and creates the firebase app once.
func (s *Source) Init(ctx context.Context) error {
	if s.app != nil {
		return nil
	}
	data, sa, err := loadCredential(s.credentialsFile)
	if err != nil {
		return err
	}
	projectID := s.projectID
	if projectID == "" {
		projectID = sa.ProjectID
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(data))
	if err != nil {
		return err
	}
	s.app = app
	s.logger.Debug("firebase app initialised",
		zap.String("project_id", projectID),
		zap.String("client_email", sa.ClientEmail))
	return nil
}

// Connect creates the Firestore client.
func (s *Source) Connect(ctx context.Context) error {
	if s.app == nil {
		return errors.New("firebase app not initialised")
	}
	if s.client != nil {
		return nil
	}
	client, err := s.app.Firestore(ctx)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

// Recent streams the newest q.Limit documents ordered by q.OrderBy descending.
func (s *Source) Recent(ctx context.Context, q model.Query) ([]model.Record, error) {
	if s.client == nil {
		return nil, errors.New("firestore client not connected")
	}
	iter := s.client.Collection(q.Collection).
		OrderBy(q.OrderBy, firestore.Desc).
		Limit(q.Limit).
		Documents(ctx)
	defer iter.Stop()

	var out []model.Record
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, toRecord(doc.Ref.ID, doc.Data()))
	}
	return out, nil
}

// Close closes the client if one was created.
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// toRecord copies snapshot data into a Record; a nil map becomes an empty one.
func toRecord(id string, data map[string]interface{}) model.Record {
	if data == nil {
		data = map[string]interface{}{}
	}
	return model.Record{ID: id, Fields: data}
}
