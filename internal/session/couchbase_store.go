package session

import (
	"context"
	"errors"
	"time"

	"stealthcompany.com/wardconsole/internal/couchbase"
)

// DocumentStore is the slice of the Couchbase client the session store needs.
type DocumentStore interface {
	UpsertDocument(ctx context.Context, docID string, data interface{}) error
	GetDocument(ctx context.Context, docID string, result interface{}) error
	DeleteDocument(ctx context.Context, docID string) error
}

// CouchbaseStore keeps the session of shared ward terminals in a Couchbase bucket.
type CouchbaseStore struct {
	docs    DocumentStore
	profile string
	timeout time.Duration
}

type sessionDocument struct {
	Type         string    `json:"type"`
	Profile      string    `json:"profile"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewCouchbaseStore(docs DocumentStore, profile string) *CouchbaseStore {
	return &CouchbaseStore{docs: docs, profile: profile, timeout: 5 * time.Second}
}

func (s *CouchbaseStore) docID() string {
	return "session::" + s.profile
}

func (s *CouchbaseStore) Load() (Credentials, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var doc sessionDocument
	err := s.docs.GetDocument(ctx, s.docID(), &doc)
	if errors.Is(err, couchbase.ErrNotFound) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken}, nil
}

func (s *CouchbaseStore) Save(creds Credentials) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.docs.UpsertDocument(ctx, s.docID(), sessionDocument{
		Type:         "session",
		Profile:      s.profile,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	})
}

func (s *CouchbaseStore) Delete() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.docs.DeleteDocument(ctx, s.docID())
}
