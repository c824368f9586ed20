// Command seed loads the sample fire-alarm product catalog into Neo4j.
// Upserts are idempotent, so re-running refreshes attributes in place.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/pyrite/internal/config"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/driver"
)

func sampleNodes() []model.Node {
	return []model.Node{
		{
			ID: "4007ES", Type: model.NodePanel, Name: "4007ES Fire Alarm Control Panel",
			Attributes: map[string]interface{}{
				"description":    "Compact addressable fire alarm control panel for small buildings",
				"max_points":     159,
				"building_scale": "small",
			},
		},
		{
			ID: "4010ES", Type: model.NodePanel, Name: "4010ES Fire Alarm Control Panel",
			Attributes: map[string]interface{}{
				"description":    "Mid-size addressable fire alarm control panel",
				"max_points":     318,
				"building_scale": "medium",
			},
		},
		{
			ID: "4100ES", Type: model.NodePanel, Name: "4100ES Fire Alarm Control Panel",
			Attributes: map[string]interface{}{
				"description":    "Large networked fire alarm control panel for campus installations",
				"max_points":     2500,
				"building_scale": "large",
			},
		},
		{
			ID: "4100-1431", Type: model.NodeInternalModule, Name: "IDNet Addressable Loop Card",
			Attributes: map[string]interface{}{
				"description": "Addressable device loop interface, 250 points per loop",
			},
		},
		{
			ID: "4100-1432", Type: model.NodeInternalModule, Name: "NAC Power Module",
			Attributes: map[string]interface{}{
				"description": "Notification appliance circuit power module, 4 class B circuits",
			},
		},
		{
			ID: "4100-1433", Type: model.NodeInternalModule, Name: "Network Interface Card",
			Attributes: map[string]interface{}{
				"description": "Panel-to-panel network communication card",
			},
		},
		{
			ID: "4100-1434", Type: model.NodeInternalModule, Name: "City Circuit Module",
			Attributes: map[string]interface{}{
				"description": "Municipal tie and reverse polarity output module",
			},
		},
		{
			ID: "4090-9001", Type: model.NodeDevice, Name: "TrueAlarm Photoelectric Smoke Detector",
			Attributes: map[string]interface{}{
				"description": "Addressable photoelectric smoke sensor",
				"device_kind": "smoke_detector",
			},
		},
		{
			ID: "4090-9788", Type: model.NodeDevice, Name: "TrueAlarm Heat Detector",
			Attributes: map[string]interface{}{
				"description": "Addressable fixed-temperature and rate-of-rise heat sensor",
				"device_kind": "heat_detector",
			},
		},
		{
			ID: "4098-9714", Type: model.NodeDevice, Name: "Addressable Manual Pull Station",
			Attributes: map[string]interface{}{
				"description": "Dual-action addressable manual fire alarm pull station",
				"device_kind": "pull_station",
			},
		},
		{
			ID: "4098-9792", Type: model.NodeBase, Name: "TrueAlarm Sensor Base",
			Attributes: map[string]interface{}{
				"description": "Standard mounting base for TrueAlarm sensors",
			},
		},
	}
}

func sampleEdges() []model.Edge {
	panels := []string{"4007ES", "4010ES", "4100ES"}
	devices := []string{"4090-9001", "4090-9788", "4098-9714"}
	modules := []string{"4100-1431", "4100-1432", "4100-1433", "4100-1434"}

	var edges []model.Edge
	for _, m := range modules {
		edges = append(edges, model.Edge{SourceID: "4100ES", TargetID: m, Type: model.EdgeHasInternalModule})
	}
	for _, p := range panels {
		for _, d := range devices {
			edges = append(edges, model.Edge{SourceID: p, TargetID: d, Type: model.EdgeCompatibleWith})
		}
	}
	edges = append(edges,
		model.Edge{SourceID: "4090-9001", TargetID: "4098-9792", Type: model.EdgeRequiresBase},
		model.Edge{SourceID: "4090-9788", TargetID: "4098-9792", Type: model.EdgeRequiresBase},
		model.Edge{SourceID: "4090-9001", TargetID: "4090-9788", Type: model.EdgeAlternativeTo},
		model.Edge{SourceID: "4090-9788", TargetID: "4090-9001", Type: model.EdgeAlternativeTo},
	)
	return edges
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := driver.NewNeo4jStore(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		slog.Error("failed to connect to neo4j", "uri", cfg.Graph.URI, "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	if err := store.BuildIndices(ctx); err != nil {
		slog.Error("failed to build indices", "error", err)
		os.Exit(1)
	}

	nodes := sampleNodes()
	for _, n := range nodes {
		if err := store.UpsertNode(ctx, n); err != nil {
			slog.Error("failed to upsert node", "id", n.ID, "error", err)
			os.Exit(1)
		}
	}

	edges := sampleEdges()
	for _, e := range edges {
		if err := store.UpsertEdge(ctx, e); err != nil {
			slog.Error("failed to upsert edge", "source", e.SourceID, "target", e.TargetID, "type", e.Type, "error", err)
			os.Exit(1)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		slog.Error("failed to read graph stats", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete",
		"nodes_written", len(nodes), "edges_written", len(edges),
		"total_nodes", stats.TotalNodes, "total_edges", stats.TotalEdges)
}
