package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/olehluchkiv/javadeps/internal/analysis"
	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/model"
)

// Neo4jConfig holds connection settings for the graph exporter.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string // "" uses the server default
}

// Neo4j loads the dependency graph into Neo4j as JavaType nodes joined by
// DEPENDS_ON relationships, using batched UNWIND queries.
type Neo4j struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4j creates the driver and checks connectivity.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig, logger *slog.Logger) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable at %s: %w", cfg.URI, err)
	}
	return &Neo4j{
		driver:   driver,
		database: cfg.Database,
		logger:   logger.With("component", "export.neo4j"),
	}, nil
}

// Close releases the driver.
func (n *Neo4j) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

func (n *Neo4j) run(ctx context.Context, cypher string, params map[string]any) error {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if n.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(n.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, n.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	return err
}

// Export writes res. Nodes are merged on identity, so exporting the same
// tree twice leaves one node per type and one relationship per edge.
func (n *Neo4j) Export(ctx context.Context, res *analysis.Result) error {
	if err := n.run(ctx, "CREATE INDEX java_type_identity IF NOT EXISTS FOR (t:JavaType) ON (t.identity)", nil); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	types := typeRows(res.Types)
	n.logger.Info("loading types", "count", len(types))
	if err := n.run(ctx, mergeTypesCypher, map[string]any{"batch": types, "run_id": res.RunID}); err != nil {
		return fmt.Errorf("load types: %w", err)
	}

	edges := edgeRows(res.Graph)
	n.logger.Info("loading edges", "count", len(edges))
	if err := n.run(ctx, mergeEdgesCypher, map[string]any{"batch": edges, "run_id": res.RunID}); err != nil {
		return fmt.Errorf("load edges: %w", err)
	}
	return nil
}

const mergeTypesCypher = `UNWIND $batch AS row
MERGE (t:JavaType {identity: row.identity})
SET t.name = row.name, t.package = row.package, t.kind = row.kind,
    t.modifiers = row.modifiers, t.file = row.file, t.line = row.line,
    t.fields = row.fields, t.methods = row.methods, t.declared = true,
    t.run_id = $run_id`

// Targets outside the project (JDK and known library types) are created as
// undeclared nodes.
const mergeEdgesCypher = `UNWIND $batch AS row
MERGE (s:JavaType {identity: row.source})
MERGE (t:JavaType {identity: row.target})
ON CREATE SET t.declared = false, t.package = row.target_package
MERGE (s)-[r:DEPENDS_ON]->(t)
SET r.run_id = $run_id`

func typeRows(decls []model.TypeDecl) []map[string]any {
	rows := make([]map[string]any, 0, len(decls))
	for _, d := range decls {
		rows = append(rows, map[string]any{
			"identity":  d.Identity,
			"name":      d.Name,
			"package":   d.Package,
			"kind":      d.Kind.String(),
			"modifiers": []string(d.Modifiers),
			"file":      d.File,
			"line":      int64(d.Line),
			"fields":    int64(len(d.Fields)),
			"methods":   int64(len(d.Methods)),
		})
	}
	return rows
}

func edgeRows(g *graph.Graph) []map[string]any {
	edges := g.Edges(graph.Sorted)
	rows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, map[string]any{
			"source":         e.Source,
			"target":         e.Target,
			"target_package": model.NamespaceOf(e.Target),
		})
	}
	return rows
}
