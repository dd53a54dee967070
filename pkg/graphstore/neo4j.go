package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/duograph/duograph/pkg/types"
)

// Cypher statements used by the document operations. Kept as constants so
// their shape is testable without a live database.
const (
	mergeDocumentQuery = `
		MERGE (d:Document {id: $id})
		SET d.name = $id, d.subject = $subject
		MERGE (s:Subject {name: $subject})
		MERGE (d)-[:IS_ABOUT]->(s)`

	searchByPropertyQuery = `
		MATCH (n)
		WHERE any(prop IN keys(n) WHERE toString(n[prop]) CONTAINS $term)
		RETURN n
		LIMIT $limit`

	deleteNodeQuery = `
		MATCH (n {id: $id})
		DETACH DELETE n`
)

// Neo4jStore implements Store for Neo4j databases.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a new Neo4j store instance.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{
		client:   client,
		database: database,
	}, nil
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// Init creates the id index on Document nodes.
func (s *Neo4jStore) Init(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "CREATE INDEX document_id IF NOT EXISTS FOR (d:Document) ON (d.id)", nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create document index: %w", err)
	}
	return nil
}

// MergeDocumentNode merges the Document node and its Subject linkage.
func (s *Neo4jStore) MergeDocumentNode(ctx context.Context, id, subject string) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, mergeDocumentQuery, map[string]any{
			"id":      id,
			"subject": subject,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to merge document node %s: %w", id, err)
	}
	return nil
}

// MergeNode creates or updates a node with the given label and properties.
func (s *Neo4jStore) MergeNode(ctx context.Context, node types.GraphNode) error {
	if !ValidIdentifier(node.Label) {
		return fmt.Errorf("%w: label %q", ErrInvalidIdentifier, node.Label)
	}

	props := make(map[string]any, len(node.Properties)+1)
	for k, v := range node.Properties {
		props[k] = v
	}
	if _, ok := props["name"]; !ok {
		props["name"] = node.ID
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	// Labels cannot be parameterized; node.Label is validated above.
	query := fmt.Sprintf(`
		MERGE (n:%s {id: $id})
		SET n += $properties`, node.Label)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{
			"id":         node.ID,
			"properties": props,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to merge node %s: %w", node.ID, err)
	}
	return nil
}

// MergeEdge merges the typed directed edge between two existing nodes.
func (s *Neo4jStore) MergeEdge(ctx context.Context, edge types.GraphEdge) error {
	if !ValidIdentifier(edge.Type) {
		return fmt.Errorf("%w: relationship type %q", ErrInvalidIdentifier, edge.Type)
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	// Relationship types cannot be parameterized; edge.Type is
	// validated above.
	query := fmt.Sprintf(`
		MATCH (a {id: $source}), (b {id: $target})
		MERGE (a)-[:%s]->(b)`, edge.Type)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{
			"source": edge.SourceID,
			"target": edge.TargetID,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to merge edge %s-[%s]->%s: %w", edge.SourceID, edge.Type, edge.TargetID, err)
	}
	return nil
}

// SearchByProperty substring-matches term against every node property.
func (s *Neo4jStore) SearchByProperty(ctx context.Context, term string, limit int) ([]types.GraphHit, error) {
	if limit < 1 {
		return nil, fmt.Errorf("search limit must be >= 1, got %d", limit)
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, searchByPropertyQuery, map[string]any{
			"term":  term,
			"limit": limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("graph property search failed: %w", err)
	}

	records := result.([]*db.Record)
	hits := make([]types.GraphHit, 0, len(records))
	for _, record := range records {
		value, found := record.Get("n")
		if !found {
			continue
		}
		node, ok := value.(dbtype.Node)
		if !ok {
			continue
		}
		hits = append(hits, types.GraphHit(node.Props))
	}

	return hits, nil
}

// DeleteNode detaches and deletes the node, returning the deleted count.
func (s *Neo4jStore) DeleteNode(ctx context.Context, id string) (int64, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, deleteNodeQuery, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return int64(summary.Counters().NodesDeleted()), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete node %s: %w", id, err)
	}

	return result.(int64), nil
}

// Close releases the driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
