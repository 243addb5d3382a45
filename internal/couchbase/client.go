package couchbase

import "context"

// Client bundles the connection and document managers
type Client struct {
	connManager *ConnectionManager
	docManager  *DocumentManager
}

// NewClient connects to Couchbase and prepares the document manager
func NewClient(url, username, password, bucketName string) (*Client, error) {
	connManager, err := NewConnectionManager(url, username, password, bucketName)
	if err != nil {
		return nil, err
	}

	return &Client{
		connManager: connManager,
		docManager:  NewDocumentManager(connManager.GetBucket()),
	}, nil
}

// Close closes the Couchbase connection
func (c *Client) Close() error {
	return c.connManager.Close()
}

// UpsertDocument stores or updates a document in Couchbase
func (c *Client) UpsertDocument(ctx context.Context, docID string, data interface{}) error {
	return c.docManager.UpsertDocument(ctx, docID, data)
}

// GetDocument retrieves a document from Couchbase
func (c *Client) GetDocument(ctx context.Context, docID string, result interface{}) error {
	return c.docManager.GetDocument(ctx, docID, result)
}

// DeleteDocument removes a document from Couchbase
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	return c.docManager.DeleteDocument(ctx, docID)
}
