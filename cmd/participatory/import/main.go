package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/cmd/participatory/internal/bootstrap"
)

func main() {
	if err := runImport(os.Args[1:]); err != nil {
		log.Fatalf("participatory import: %v", err)
	}
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("participatory-import", flag.ExitOnError)
	dbPath := fs.String("db", "participatory.db", "Path to the sqlite database")
	file := fs.String("file", "", "Markdown document to import")
	container := fs.String("container", "", "Container ID to populate (defaults to a new UUID)")
	actor := fs.String("actor", "", "Actor ID recorded on created nodes")
	publish := fs.Bool("publish", false, "Publish the text immediately after import")
	logLevel := fs.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, console, pretty)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file == "" {
		return fmt.Errorf("file is required")
	}
	source, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	containerID, err := bootstrap.ParseUUID(*container)
	if err != nil {
		return fmt.Errorf("parse container: %w", err)
	}
	if containerID == uuid.Nil {
		containerID = uuid.New()
	}

	actorID, err := bootstrap.ParseUUID(*actor)
	if err != nil {
		return fmt.Errorf("parse actor: %w", err)
	}
	if actorID == uuid.Nil {
		actorID = uuid.New()
	}

	ctx := context.Background()

	module, err := bootstrap.BuildModule(ctx, bootstrap.Options{
		DatabasePath: *dbPath,
		LogLevel:     *logLevel,
		LogFormat:    *logFormat,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.DB.Close()

	result, err := module.ImportDocument(ctx, containerID, actorID, source)
	if err != nil {
		return fmt.Errorf("import document: %w", err)
	}

	if result.Metadata.Title != "" {
		fmt.Printf("document: %s\n", result.Metadata.Title)
	}
	fmt.Printf("container: %s\n", containerID)
	for _, node := range result.Nodes {
		fmt.Printf("%3d  %-12s %s\n", node.Position, node.Level, node.Title)
	}

	if *publish {
		published, err := module.Publish(ctx, containerID, actorID, nil)
		if err != nil {
			return fmt.Errorf("publish text: %w", err)
		}
		fmt.Printf("published %d nodes at %s\n", len(published.Nodes), published.PublishedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
